package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/internal/style"
	"github.com/cgchiraggupta/kalakar/middleware"
	"github.com/cgchiraggupta/kalakar/models"
	"github.com/cgchiraggupta/kalakar/utils"
)

// GetStyle returns the caption style of a project, falling back to the
// default when nothing is persisted yet.
func (h *ApplicationHandler) GetStyle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid project id")
	}

	cs, err := h.Store.GetStyle(userID, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve caption style")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, cs)
}

// SaveStyle persists a full caption style for a project.
func (h *ApplicationHandler) SaveStyle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid project id")
	}

	cs := new(models.CaptionStyle)
	if err := c.BodyParser(cs); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse style JSON")
	}

	saved, err := h.Store.SaveStyle(userID, projectID, *cs)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
		}
		// Validation failures come back with the offending field named.
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	h.Logger.WithField("project_id", projectID).Info("Caption style saved")
	return utils.RespondWithJSON(c, fiber.StatusOK, saved)
}

// ListTemplates returns the static preset catalog.
func (h *ApplicationHandler) ListTemplates(c *fiber.Ctx) error {
	return utils.RespondWithJSON(c, fiber.StatusOK, style.Templates())
}

// ListFonts returns the font families the editor and export support.
func (h *ApplicationHandler) ListFonts(c *fiber.Ctx) error {
	return utils.RespondWithJSON(c, fiber.StatusOK, style.FontCatalog)
}

// ApplyTemplateRequest names the preset to overlay.
type ApplyTemplateRequest struct {
	Name string `json:"name" validate:"required"`
}

// ApplyTemplate overlays a named preset onto the project's current
// style and persists the result. Fields the template does not name keep
// their values.
func (h *ApplicationHandler) ApplyTemplate(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid project id")
	}

	req := new(ApplyTemplateRequest)
	if err := c.BodyParser(req); err != nil || req.Name == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "'name' is required")
	}

	current, err := h.Store.GetStyle(userID, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve caption style")
	}

	styled, err := style.ApplyTemplate(*current, req.Name)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	saved, err := h.Store.SaveStyle(userID, projectID, styled)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not save caption style")
	}

	h.Logger.WithFields(map[string]interface{}{"project_id": projectID, "template": req.Name}).Info("Template applied")
	return utils.RespondWithJSON(c, fiber.StatusOK, saved)
}
