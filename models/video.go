package models

import (
	"time"

	"github.com/google/uuid"
)

// Video upload lifecycle statuses.
const (
	VideoStatusPendingUpload = "pending_upload"
	VideoStatusUploaded      = "uploaded"
	VideoStatusFailed        = "failed"
)

// Video represents the structure of an uploaded video in the database.
// Every video row is owned by exactly one user; queries must always be
// scoped by user_id.
type Video struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	StoragePath  string    `json:"storage_path"`
	Duration     *float64  `json:"duration,omitempty"`  // Nullable FLOAT, seconds
	FileSize     *int64    `json:"file_size,omitempty"` // Nullable BIGINT
	Width        *int      `json:"width,omitempty"`     // Nullable INTEGER
	Height       *int      `json:"height,omitempty"`    // Nullable INTEGER
	Format       *string   `json:"format,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
