package models

import (
	"time"

	"github.com/google/uuid"
)

// Project represents the structure of a project in the database.
// A project aggregates videos through the project_videos join table.
// Public projects are readable by anyone; private projects only by
// their owner.
type Project struct {
	ID           uuid.UUID `json:"id,omitempty"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`   // Use a pointer for nullable TEXT fields
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"` // Use a pointer for nullable TEXT fields
	IsPublic     bool      `json:"is_public"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectVideo is the many-to-many association between projects and videos.
type ProjectVideo struct {
	ProjectID uuid.UUID `json:"project_id"`
	VideoID   uuid.UUID `json:"video_id"`
	AddedAt   time.Time `json:"added_at"`
}
