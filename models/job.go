package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job lifecycle statuses shared by transcription and export jobs.
// The only legal transitions are pending -> processing -> completed
// and pending -> processing -> failed. There is no transition back to
// pending and no cancellation transition.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// TranscriptionJob represents one invocation of the local Whisper tool.
// Segments holds the raw segment collection once the job completes.
type TranscriptionJob struct {
	ID           uuid.UUID       `json:"id"`
	VideoID      uuid.UUID       `json:"video_id"`
	UserID       uuid.UUID       `json:"user_id"`
	Status       string          `json:"status"`
	Progress     *float64        `json:"progress,omitempty"` // Nullable FLOAT, 0-100
	Language     *string         `json:"language,omitempty"` // Detected or declared language code
	Model        string          `json:"model"`
	Segments     json.RawMessage `json:"segments,omitempty"` // Nullable JSONB
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`   // Nullable TIMESTAMPTZ
	CompletedAt  *time.Time      `json:"completed_at,omitempty"` // Nullable TIMESTAMPTZ
}

// ExportJob represents one caption burn-in invocation of ffmpeg.
type ExportJob struct {
	ID           uuid.UUID  `json:"id"`
	VideoID      uuid.UUID  `json:"video_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Status       string     `json:"status"`
	Progress     *float64   `json:"progress,omitempty"` // Nullable FLOAT, 0-100
	Quality      string     `json:"quality"`
	Format       string     `json:"format"`
	OutputPath   *string    `json:"output_path,omitempty"`
	OutputSize   *int64     `json:"output_size,omitempty"` // Bytes, nullable BIGINT
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// TranscriptSegment is a single recognized speech segment. Words carry
// the per-word timestamps the editor uses for caption splitting.
type TranscriptSegment struct {
	Text      string           `json:"text"`
	StartTime float64          `json:"start_time"`
	EndTime   float64          `json:"end_time"`
	Words     []TranscriptWord `json:"words,omitempty"`
}

// TranscriptWord is one word with its own time interval.
type TranscriptWord struct {
	Word      string  `json:"word"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// TranscriptionData is the completed transcription payload stored on a job.
type TranscriptionData struct {
	Text     string              `json:"text"`
	Language string              `json:"language"`
	Segments []TranscriptSegment `json:"segments"`
}
