package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/internal/ffmpeg"
	"github.com/cgchiraggupta/kalakar/internal/storage"
	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/middleware"
	"github.com/cgchiraggupta/kalakar/models"
	"github.com/cgchiraggupta/kalakar/utils"
)

// UploadVideo receives a multipart upload, stores the file locally and
// probes it for metadata. The video row is created in pending_upload
// first so a crash mid-write leaves an inspectable record, then flipped
// to uploaded once the file is fully on disk and probed.
func (h *ApplicationHandler) UploadVideo(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	fileHeader, err := c.FormFile("video")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Missing 'video' file field")
	}
	if !storage.ValidVideoFormat(fileHeader.Filename) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Unsupported video format: %s", fileHeader.Filename))
	}
	if fileHeader.Size > h.MaxUploadMB*1024*1024 {
		return utils.RespondWithError(c, fiber.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d MB upload limit", h.MaxUploadMB))
	}

	title := utils.SanitizeInput(c.FormValue("title"))
	if title == "" {
		title = fileHeader.Filename
	}

	videoID := uuid.New()
	storagePath, err := h.Storage.VideoPath(userID, videoID, fileHeader.Filename)
	if err != nil {
		h.Logger.Errorf("Error allocating storage path for upload: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not store the uploaded file")
	}

	now := time.Now()
	if _, err := h.Store.CreateVideo(models.Video{
		ID:          videoID,
		UserID:      userID,
		Title:       title,
		StoragePath: storagePath,
		Status:      models.VideoStatusPendingUpload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create video record")
	}

	if err := c.SaveFile(fileHeader, storagePath); err != nil {
		h.Logger.Errorf("Error saving upload for video %s: %v", videoID, err)
		h.markVideoFailed(userID, videoID, "could not persist the uploaded file")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not store the uploaded file")
	}

	probe, err := ffmpeg.Probe(c.Context(), storagePath)
	if err != nil {
		h.Logger.Warnf("Probe failed for video %s: %v", videoID, err)
		h.markVideoFailed(userID, videoID, "uploaded file is not a readable video")
		_ = h.Storage.Remove(storagePath)
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Uploaded file is not a readable video")
	}

	updated, err := h.Store.UpdateVideo(userID, videoID, map[string]interface{}{
		"status":    models.VideoStatusUploaded,
		"duration":  probe.Duration,
		"file_size": probe.Size,
		"width":     probe.Width,
		"height":    probe.Height,
		"format":    probe.Format,
	})
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not finalize the upload")
	}

	h.Logger.WithField("video_id", videoID).Info("Video uploaded")
	return utils.RespondWithJSON(c, fiber.StatusCreated, updated)
}

func (h *ApplicationHandler) markVideoFailed(userID, videoID uuid.UUID, message string) {
	if _, err := h.Store.UpdateVideo(userID, videoID, map[string]interface{}{
		"status":        models.VideoStatusFailed,
		"error_message": message,
	}); err != nil {
		h.Logger.Errorf("Error marking video %s failed: %v", videoID, err)
	}
}

// GetVideo returns a single video owned by the caller.
func (h *ApplicationHandler) GetVideo(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id")
	}

	video, err := h.Store.GetVideo(userID, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve video")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, video)
}

// ListVideos returns every video owned by the caller.
func (h *ApplicationHandler) ListVideos(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	videos, err := h.Store.ListVideos(userID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve videos")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, videos)
}

// DeleteVideo removes the video row, its captions and the stored file.
func (h *ApplicationHandler) DeleteVideo(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id")
	}

	video, err := h.Store.GetVideo(userID, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve video")
	}

	if err := h.Store.DeleteVideo(userID, videoID); err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not delete video")
	}
	if err := h.Storage.Remove(video.StoragePath); err != nil {
		// Row is gone; an orphaned file is only a cleanup concern.
		h.Logger.Warnf("Could not remove file for deleted video %s: %v", videoID, err)
	}

	h.Logger.WithField("video_id", videoID).Info("Video deleted")
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"deleted": videoID})
}
