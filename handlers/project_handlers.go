package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/middleware"
	"github.com/cgchiraggupta/kalakar/models"
	"github.com/cgchiraggupta/kalakar/utils"
)

// CreateProjectRequest defines the expected request body for creating a project.
// Name is required. Description and ThumbnailURL are optional.
type CreateProjectRequest struct {
	Name         string  `json:"name" validate:"required"`
	Description  *string `json:"description,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	IsPublic     bool    `json:"is_public"`
}

// CreateProject creates a project owned by the caller.
func (h *ApplicationHandler) CreateProject(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	req := new(CreateProjectRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse project JSON")
	}
	if err := h.Validate.Struct(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	now := time.Now()
	project, err := h.Store.CreateProject(models.Project{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         utils.SanitizeInput(req.Name),
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		IsPublic:     req.IsPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create project")
	}

	h.Logger.WithField("project_id", project.ID).Info("Project created")
	return utils.RespondWithJSON(c, fiber.StatusCreated, project)
}

// GetProjects lists the caller's projects.
func (h *ApplicationHandler) GetProjects(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	projects, err := h.Store.ListProjects(userID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve projects")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, projects)
}

// GetProject retrieves one project: the caller's own, or any public one.
func (h *ApplicationHandler) GetProject(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid project id")
	}

	project, err := h.Store.GetProject(userID, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve project")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, project)
}

// UpdateProject applies a partial update to a project owned by the caller.
func (h *ApplicationHandler) UpdateProject(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid project id")
	}

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	fields := make(map[string]interface{})
	if val, ok := payload["name"]; ok {
		name, typeOK := val.(string)
		if !typeOK || utils.SanitizeInput(name) == "" {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "'name' must be a non-empty string")
		}
		fields["name"] = utils.SanitizeInput(name)
	}
	if val, exists := payload["description"]; exists {
		if val == nil {
			fields["description"] = nil
		} else if desc, typeOK := val.(string); typeOK {
			fields["description"] = desc
		} else {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "'description' must be a string or null")
		}
	}
	if val, exists := payload["thumbnail_url"]; exists {
		if val == nil {
			fields["thumbnail_url"] = nil
		} else if thumb, typeOK := val.(string); typeOK {
			fields["thumbnail_url"] = thumb
		} else {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "'thumbnail_url' must be a string or null")
		}
	}
	if val, exists := payload["is_public"]; exists {
		public, typeOK := val.(bool)
		if !typeOK {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "'is_public' must be a boolean")
		}
		fields["is_public"] = public
	}
	if len(fields) == 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No updatable fields provided")
	}

	project, err := h.Store.UpdateProject(userID, projectID, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not update project")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, project)
}

// DeleteProject removes a project owned by the caller. Videos linked to
// the project are kept; only the associations go.
func (h *ApplicationHandler) DeleteProject(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid project id")
	}

	if err := h.Store.DeleteProject(userID, projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not delete project")
	}

	h.Logger.WithField("project_id", projectID).Info("Project deleted")
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"deleted": projectID})
}

// AddVideoToProjectRequest names the video to associate.
type AddVideoToProjectRequest struct {
	VideoID uuid.UUID `json:"video_id" validate:"required"`
}

// AddVideoToProject links a video into a project. Both must belong to
// the caller.
func (h *ApplicationHandler) AddVideoToProject(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid project id")
	}

	req := new(AddVideoToProjectRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request JSON")
	}
	if err := h.Validate.Struct(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	assoc, err := h.Store.AddVideoToProject(userID, projectID, req.VideoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project or video not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not add video to project")
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, assoc)
}

// RemoveVideoFromProject unlinks a video from a project.
func (h *ApplicationHandler) RemoveVideoFromProject(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid project id")
	}
	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id")
	}

	if err := h.Store.RemoveVideoFromProject(userID, projectID, videoID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project or video not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not remove video from project")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"removed": videoID})
}

// ListProjectVideos returns the video associations of a readable project.
func (h *ApplicationHandler) ListProjectVideos(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid project id")
	}

	assocs, err := h.Store.ListProjectVideos(userID, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not list project videos")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, assocs)
}
