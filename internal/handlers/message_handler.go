package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/utils"
)

type MessageHandler struct {
	Messages *repository.MessageRepo
	Users    *repository.UserRepo
	Families *services.FamilyService
	Notifier *services.Notifier
}

type sendMessageRequest struct {
	FamilyID string `json:"familyId"`
	Content  string `json:"content"`
}

// POST /api/messages
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Content == "" {
		return apperr.Validation("content is required")
	}
	familyID, err := primitive.ObjectIDFromHex(req.FamilyID)
	if err != nil {
		return apperr.Validation("invalid familyId")
	}
	family, err := h.Families.RequireMember(c.Context(), familyID, userID)
	if err != nil {
		return err
	}
	msg := &models.Message{
		FamilyID: familyID,
		SenderID: userID,
		Content:  req.Content,
	}
	if err := h.Messages.Create(c.Context(), msg); err != nil {
		return apperr.Upstream("database unavailable", err)
	}
	if actor, aerr := h.Users.FindByID(c.Context(), userID); aerr == nil {
		h.Notifier.MessageSent(family, actor, msg)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, msg)
}

// GET /api/messages/family/:familyID?limit=&offset=
func (h *MessageHandler) ListByFamily(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "familyID")
	if err != nil {
		return err
	}
	if _, err := h.Families.RequireMember(c.Context(), familyID, userID); err != nil {
		return err
	}
	limit, _ := strconv.ParseInt(c.Query("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.Query("offset", "0"), 10, 64)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	msgs, err := h.Messages.FindByFamily(c.Context(), familyID, limit, offset)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, msgs)
}
