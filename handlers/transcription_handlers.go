package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/middleware"
	"github.com/cgchiraggupta/kalakar/models"
	"github.com/cgchiraggupta/kalakar/utils"
)

// StartTranscriptionRequest selects the language and model for a run.
// Both are optional; language defaults to auto-detection.
type StartTranscriptionRequest struct {
	Language string `json:"language"`
	Model    string `json:"model"`
}

// StartTranscription spends credits and queues a Whisper run for the
// video. The response carries the pending job; progress is available by
// polling the job endpoint or over the websocket.
func (h *ApplicationHandler) StartTranscription(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id")
	}

	// An empty or absent body is fine; both fields have defaults.
	req := new(StartTranscriptionRequest)
	if err := c.BodyParser(req); err != nil {
		req = &StartTranscriptionRequest{}
	}

	job, err := h.Transcription.Start(userID, videoID, req.Language, req.Model)
	if err != nil {
		status, message := transcriptionStartStatus(err)
		if status == fiber.StatusInternalServerError {
			h.Logger.Errorf("Error starting transcription for video %s: %v", videoID, err)
		}
		return utils.RespondWithError(c, status, message)
	}

	return utils.RespondWithJSON(c, fiber.StatusAccepted, job)
}

// GetTranscriptionJob returns the current job row, including segments
// once the run completes.
func (h *ApplicationHandler) GetTranscriptionJob(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job id")
	}

	job, err := h.Store.GetTranscriptionJob(userID, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Transcription job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve transcription job")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}

// progressMessage is one websocket frame during a watched job.
type progressMessage struct {
	JobID    uuid.UUID                  `json:"job_id"`
	Status   string                     `json:"status"`
	Progress float64                    `json:"progress"`
	Segments []models.TranscriptSegment `json:"segments,omitempty"`
	Error    string                     `json:"error,omitempty"`
}

// WatchTranscription streams job progress over a websocket until the
// job reaches a terminal state, then sends the final frame and closes.
func (h *ApplicationHandler) WatchTranscription(conn *websocket.Conn) {
	defer conn.Close()

	userID, _ := conn.Locals("user_id").(uuid.UUID)
	jobID, err := uuid.Parse(conn.Params("jobId"))
	if err != nil {
		_ = conn.WriteJSON(progressMessage{Error: "invalid job id"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The read pump only serves to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	segments, err := h.Transcription.WaitForCompletion(ctx, userID, jobID, func(progress float64) {
		_ = conn.WriteJSON(progressMessage{JobID: jobID, Status: models.JobStatusProcessing, Progress: progress})
	})
	if err != nil {
		h.Logger.WithField("job_id", jobID).Warnf("Watched transcription ended with error: %v", err)
		_ = conn.WriteJSON(progressMessage{JobID: jobID, Status: models.JobStatusFailed, Error: err.Error()})
		return
	}

	_ = conn.WriteJSON(progressMessage{
		JobID:    jobID,
		Status:   models.JobStatusCompleted,
		Progress: 100,
		Segments: segments,
	})
}
