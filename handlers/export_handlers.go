package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/internal/export"
	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/internal/style"
	"github.com/cgchiraggupta/kalakar/internal/timeline"
	"github.com/cgchiraggupta/kalakar/middleware"
	"github.com/cgchiraggupta/kalakar/models"
	"github.com/cgchiraggupta/kalakar/utils"
)

// StartExportRequest selects the output encoding and, optionally, the
// project whose caption style should be burned in. Without a project
// the default style is used.
type StartExportRequest struct {
	Quality   string     `json:"quality"`
	Format    string     `json:"format"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
}

// StartExport queues a caption burn-in for the video. The captions are
// the persisted collection; exporting with none is an immediate error,
// not a failed job.
func (h *ApplicationHandler) StartExport(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id")
	}

	req := new(StartExportRequest)
	if err := c.BodyParser(req); err != nil {
		req = &StartExportRequest{}
	}

	stored, err := h.Store.ListCaptions(userID, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve captions")
	}
	// Run the stored rows through a timeline so the burn-in sees them in
	// start order, with any row violating start < end dropped.
	rows := make([]timeline.Caption, 0, len(stored))
	for _, row := range stored {
		rows = append(rows, timeline.Caption{
			ID:        row.ID,
			Text:      row.Text,
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
		})
	}
	tl := timeline.New()
	tl.ReplaceAll(tl.BeginRun(), rows)
	captions := tl.Captions()

	cs := style.Default()
	if req.ProjectID != nil {
		loaded, err := h.Store.GetStyle(userID, *req.ProjectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
			}
			return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve caption style")
		}
		cs = *loaded
	}

	job, err := h.Export.Export(userID, videoID, captions, cs, export.Options{
		Quality: req.Quality,
		Format:  req.Format,
	})
	if err != nil {
		status, message := exportStartStatus(err)
		if status == fiber.StatusInternalServerError {
			h.Logger.Errorf("Error starting export for video %s: %v", videoID, err)
		}
		return utils.RespondWithError(c, status, message)
	}

	return utils.RespondWithJSON(c, fiber.StatusAccepted, job)
}

// GetExportJob returns the job row; completed jobs carry the artifact
// path and a human-readable size.
func (h *ApplicationHandler) GetExportJob(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job id")
	}

	job, err := h.Store.GetExportJob(userID, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Export job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve export job")
	}

	resp := fiber.Map{"job": job}
	if job.Status == models.JobStatusCompleted && job.OutputSize != nil {
		resp["output_size_human"] = export.HumanSize(*job.OutputSize)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, resp)
}

// DownloadExport streams the finished artifact as an attachment.
func (h *ApplicationHandler) DownloadExport(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job id")
	}

	job, err := h.Store.GetExportJob(userID, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Export job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve export job")
	}
	if job.Status != models.JobStatusCompleted || job.OutputPath == nil {
		return utils.RespondWithError(c, fiber.StatusConflict, "Export is not finished")
	}

	filename := fmt.Sprintf("captioned_%s.%s", job.VideoID, job.Format)
	return c.Download(*job.OutputPath, filename)
}

// DeleteExportJob removes a job row and its artifact file.
func (h *ApplicationHandler) DeleteExportJob(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job id")
	}

	job, err := h.Store.GetExportJob(userID, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Export job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve export job")
	}

	if err := h.Store.DeleteExportJob(userID, jobID); err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not delete export job")
	}
	if job.OutputPath != nil {
		if err := h.Storage.Remove(*job.OutputPath); err != nil {
			h.Logger.Warnf("Could not remove artifact for export job %s: %v", jobID, err)
		}
	}

	h.Logger.WithField("job_id", jobID).Info("Export job deleted")
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"deleted": jobID})
}
