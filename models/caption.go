package models

import (
	"time"

	"github.com/google/uuid"
)

// Caption represents the structure of a caption for a video in the database.
// start_time must be non-negative and end_time strictly greater than
// start_time. Captions may overlap; display picks the first match by
// ascending start_time.
type Caption struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	StartTime float64   `json:"start_time"`
	EndTime   float64   `json:"end_time"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
