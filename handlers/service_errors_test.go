package handlers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/cgchiraggupta/kalakar/internal/billing"
	"github.com/cgchiraggupta/kalakar/internal/export"
	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/internal/transcription"
)

func TestTranscriptionStartStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"no video selected", transcription.ErrNoVideoSelected, fiber.StatusBadRequest, "No video selected"},
		{"unsupported model", fmt.Errorf("%w %q", transcription.ErrUnsupportedModel, "gigantic"), fiber.StatusBadRequest, `unsupported whisper model "gigantic"`},
		{"video not ready", transcription.ErrVideoNotReady, fiber.StatusConflict, "Video upload is not complete"},
		{"insufficient credits", store.ErrInsufficientCredits, fiber.StatusPaymentRequired, "Not enough credits for this video"},
		{"not found", store.ErrNotFound, fiber.StatusNotFound, "Video not found"},
		{"wrapped storage failure stays generic", fmt.Errorf("fetch video: %v", `(23505) duplicate key value violates unique constraint "videos_pkey"`), fiber.StatusInternalServerError, "Could not start transcription"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := transcriptionStartStatus(tt.err)
			if status != tt.wantStatus || msg != tt.wantMsg {
				t.Errorf("got (%d, %q), want (%d, %q)", status, msg, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestExportStartStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"no captions", export.ErrNoCaptions, fiber.StatusBadRequest, "Cannot export without captions"},
		{"unsupported quality", fmt.Errorf("%w %q", export.ErrUnsupportedQuality, "8k"), fiber.StatusBadRequest, `unsupported quality "8k"`},
		{"unsupported format", fmt.Errorf("%w %q", export.ErrUnsupportedFormat, "wmv"), fiber.StatusBadRequest, `unsupported format "wmv"`},
		{"invalid style", fmt.Errorf("%w: font size out of range", export.ErrInvalidStyle), fiber.StatusBadRequest, "invalid caption style: font size out of range"},
		{"video not ready", export.ErrVideoNotReady, fiber.StatusConflict, "Video upload is not complete"},
		{"not found", store.ErrNotFound, fiber.StatusNotFound, "Video not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := exportStartStatus(tt.err)
			if status != tt.wantStatus || msg != tt.wantMsg {
				t.Errorf("got (%d, %q), want (%d, %q)", status, msg, tt.wantStatus, tt.wantMsg)
			}
		})
	}

	// Unrecognized failures must not leak their detail to the client.
	status, msg := exportStartStatus(fmt.Errorf("create export job: connection refused"))
	if status != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	if strings.Contains(msg, "connection refused") {
		t.Errorf("message %q leaks internal detail", msg)
	}
}

func TestVerifyOrderStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"order not found", billing.ErrOrderNotFound, fiber.StatusNotFound, "Order not found"},
		{"payment incomplete", billing.ErrPaymentIncomplete, fiber.StatusConflict, "Payment is not completed yet"},
		{"already redeemed", store.ErrOrderAlreadyRedeemed, fiber.StatusConflict, "Order has already been redeemed"},
		{"wrapped stripe failure stays generic", fmt.Errorf("fetch checkout session: stripe: request failed, key sk_live_123"), fiber.StatusInternalServerError, "Could not verify order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := verifyOrderStatus(tt.err)
			if status != tt.wantStatus || msg != tt.wantMsg {
				t.Errorf("got (%d, %q), want (%d, %q)", status, msg, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}
