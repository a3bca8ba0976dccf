package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/email"
	"github.com/kinhub/kinhub/internal/utils"
)

type EmailHandler struct {
	Email email.Sender
}

type testEmailRequest struct {
	To string `json:"to"`
}

// POST /api/email/test: sends a probe through the configured provider so
// operators can verify credentials without triggering a real notification.
func (h *EmailHandler) SendTest(c *fiber.Ctx) error {
	var req testEmailRequest
	if err := c.BodyParser(&req); err != nil || req.To == "" {
		return apperr.Validation("to is required")
	}
	subject, html := email.TestEmail()
	if err := h.Email.Send(c.Context(), req.To, subject, html); err != nil {
		return apperr.Upstream("email provider failed", err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "test email sent")
}
