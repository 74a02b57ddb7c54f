package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/middleware"
	"github.com/cgchiraggupta/kalakar/utils"
)

// GetMe returns the caller's account, including the credit balance the
// editor shows next to the transcribe button.
func (h *ApplicationHandler) GetMe(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	user, err := h.Store.GetUser(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "User not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve account")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, user)
}

// ListPlans returns the purchasable credit bundles.
func (h *ApplicationHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.Store.ListPlans()
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve plans")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, plans)
}

// CreateOrderRequest names the plan to purchase.
type CreateOrderRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// CreateOrder opens a checkout session for a credit bundle.
func (h *ApplicationHandler) CreateOrder(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	req := new(CreateOrderRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse order JSON")
	}
	if err := h.Validate.Struct(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	order, err := h.Billing.CreateOrder(userID, req.PlanID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Plan not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create order")
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, order)
}

// VerifyOrderRequest carries the checkout session id returned by
// CreateOrder.
type VerifyOrderRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// VerifyOrder confirms payment and credits the account.
func (h *ApplicationHandler) VerifyOrder(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	req := new(VerifyOrderRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse order JSON")
	}
	if err := h.Validate.Struct(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	credits, err := h.Billing.Verify(userID, req.OrderID)
	if err != nil {
		status, message := verifyOrderStatus(err)
		if status == fiber.StatusInternalServerError {
			h.Logger.Errorf("Error verifying order %s: %v", req.OrderID, err)
		}
		return utils.RespondWithError(c, status, message)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"credits_added": credits})
}
