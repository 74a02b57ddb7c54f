package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/cgchiraggupta/kalakar/internal/billing"
	"github.com/cgchiraggupta/kalakar/internal/export"
	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/internal/transcription"
)

// The mappers below translate service errors into HTTP responses.
// Known validation and precondition errors are surfaced with their
// specific message; anything unrecognized is an internal failure whose
// detail must be logged, never returned to the caller.

func transcriptionStartStatus(err error) (int, string) {
	switch {
	case errors.Is(err, transcription.ErrNoVideoSelected):
		return fiber.StatusBadRequest, "No video selected"
	case errors.Is(err, transcription.ErrUnsupportedModel):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, transcription.ErrVideoNotReady):
		return fiber.StatusConflict, "Video upload is not complete"
	case errors.Is(err, store.ErrInsufficientCredits):
		return fiber.StatusPaymentRequired, "Not enough credits for this video"
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound, "Video not found"
	default:
		return fiber.StatusInternalServerError, "Could not start transcription"
	}
}

func exportStartStatus(err error) (int, string) {
	switch {
	case errors.Is(err, export.ErrNoVideoSelected):
		return fiber.StatusBadRequest, "No video selected"
	case errors.Is(err, export.ErrNoCaptions):
		return fiber.StatusBadRequest, "Cannot export without captions"
	case errors.Is(err, export.ErrUnsupportedQuality),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, export.ErrInvalidStyle):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, export.ErrVideoNotReady):
		return fiber.StatusConflict, "Video upload is not complete"
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound, "Video not found"
	default:
		return fiber.StatusInternalServerError, "Could not start export"
	}
}

func verifyOrderStatus(err error) (int, string) {
	switch {
	case errors.Is(err, billing.ErrOrderNotFound):
		return fiber.StatusNotFound, "Order not found"
	case errors.Is(err, billing.ErrPaymentIncomplete):
		return fiber.StatusConflict, "Payment is not completed yet"
	case errors.Is(err, store.ErrOrderAlreadyRedeemed):
		return fiber.StatusConflict, "Order has already been redeemed"
	default:
		return fiber.StatusInternalServerError, "Could not verify order"
	}
}
