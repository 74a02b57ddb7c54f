package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/middleware"
	"github.com/cgchiraggupta/kalakar/models"
	"github.com/cgchiraggupta/kalakar/utils"
)

// CaptionPayload is one caption in a replace request. The id is
// optional; omitted ids are generated server-side.
type CaptionPayload struct {
	ID        uuid.UUID `json:"id,omitempty"`
	StartTime float64   `json:"start_time"`
	EndTime   float64   `json:"end_time"`
	Text      string    `json:"text"`
}

// ListCaptions returns a video's captions ordered by start time.
func (h *ApplicationHandler) ListCaptions(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id")
	}

	captions, err := h.Store.ListCaptions(userID, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve captions")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, captions)
}

// ReplaceCaptions swaps the whole caption collection of a video. The
// editor saves its session through this endpoint. Every caption must
// have a non-negative start strictly below its end.
func (h *ApplicationHandler) ReplaceCaptions(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id")
	}

	var payload []CaptionPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse captions JSON")
	}

	captions := make([]models.Caption, 0, len(payload))
	for i, p := range payload {
		if p.StartTime < 0 || p.EndTime <= p.StartTime {
			return utils.RespondWithError(c, fiber.StatusBadRequest,
				fmt.Sprintf("Caption %d has an invalid interval [%v, %v)", i, p.StartTime, p.EndTime))
		}
		captions = append(captions, models.Caption{
			ID:        p.ID,
			StartTime: p.StartTime,
			EndTime:   p.EndTime,
			Text:      p.Text,
		})
	}

	saved, err := h.Store.ReplaceCaptions(userID, videoID, captions)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not save captions")
	}

	h.Logger.WithFields(map[string]interface{}{"video_id": videoID, "count": len(saved)}).Info("Captions replaced")
	return utils.RespondWithJSON(c, fiber.StatusOK, saved)
}

// UpdateCaption edits a single caption's text or timing. Unknown caption
// ids are a 404; a timing change that would leave start >= end is a 400.
func (h *ApplicationHandler) UpdateCaption(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id")
	}
	captionID, err := uuid.Parse(c.Params("captionId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid caption id")
	}

	var payload struct {
		Text      *string  `json:"text"`
		StartTime *float64 `json:"start_time"`
		EndTime   *float64 `json:"end_time"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse caption JSON")
	}

	fields := make(map[string]interface{})
	if payload.Text != nil {
		fields["text"] = *payload.Text
	}
	if payload.StartTime != nil || payload.EndTime != nil {
		// Timing edits are validated against the caption's current values
		// so a single-endpoint change cannot invert the interval.
		current, err := h.Store.ListCaptions(userID, videoID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
			}
			return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve captions")
		}
		var existing *models.Caption
		for i := range current {
			if current[i].ID == captionID {
				existing = &current[i]
				break
			}
		}
		if existing == nil {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Caption not found")
		}

		start, end := existing.StartTime, existing.EndTime
		if payload.StartTime != nil {
			start = *payload.StartTime
		}
		if payload.EndTime != nil {
			end = *payload.EndTime
		}
		if start < 0 || end <= start {
			return utils.RespondWithError(c, fiber.StatusBadRequest,
				fmt.Sprintf("Invalid caption interval [%v, %v)", start, end))
		}
		if payload.StartTime != nil {
			fields["start_time"] = start
		}
		if payload.EndTime != nil {
			fields["end_time"] = end
		}
	}
	if len(fields) == 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No updatable fields provided")
	}

	caption, err := h.Store.UpdateCaption(userID, videoID, captionID, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Caption not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not update caption")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, caption)
}
