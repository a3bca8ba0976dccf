package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/utils"
)

type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

// GET /api/notifications
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	items, err := h.Notifications.FindByUser(c.Context(), userID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, items)
}

// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	err = h.Notifications.MarkRead(c.Context(), id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("notification")
	}
	if err != nil {
		return err
	}
	return utils.JSONMessage(c, fiber.StatusOK, "marked read")
}

// PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	if err := h.Notifications.MarkAllRead(c.Context(), userID); err != nil {
		return err
	}
	return utils.JSONMessage(c, fiber.StatusOK, "all marked read")
}
