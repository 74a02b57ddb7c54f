package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/cgchiraggupta/kalakar/internal/billing"
	"github.com/cgchiraggupta/kalakar/internal/export"
	"github.com/cgchiraggupta/kalakar/internal/storage"
	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/internal/transcription"
)

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger        *logrus.Logger
	Validate      *validator.Validate
	Store         *store.Store
	Storage       *storage.LocalStorage
	Transcription *transcription.Service
	Export        *export.Service
	Billing       *billing.Service
	MaxUploadMB   int64
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(
	logger *logrus.Logger,
	st *store.Store,
	storage *storage.LocalStorage,
	transcriptionSvc *transcription.Service,
	exportSvc *export.Service,
	billingSvc *billing.Service,
	maxUploadMB int64,
) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:        logger,
		Validate:      validator.New(),
		Store:         st,
		Storage:       storage,
		Transcription: transcriptionSvc,
		Export:        exportSvc,
		Billing:       billingSvc,
		MaxUploadMB:   maxUploadMB,
	}
}
