package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/utils"
)

type EventHandler struct {
	Events   *repository.EventRepo
	Users    *repository.UserRepo
	Families *services.FamilyService
	Notifier *services.Notifier
}

type eventRequest struct {
	FamilyID    string     `json:"familyId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

// POST /api/events
func (h *EventHandler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Title == "" {
		return apperr.Validation("title is required")
	}
	if req.StartsAt == nil {
		return apperr.Validation("startsAt is required")
	}
	familyID, err := primitive.ObjectIDFromHex(req.FamilyID)
	if err != nil {
		return apperr.Validation("invalid familyId")
	}
	family, err := h.Families.RequireMember(c.Context(), familyID, userID)
	if err != nil {
		return err
	}
	event := &models.Event{
		FamilyID:    familyID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    *req.StartsAt,
		CreatedBy:   userID,
	}
	if req.EndsAt != nil {
		event.EndsAt = *req.EndsAt
	}
	if err := h.Events.Create(c.Context(), event); err != nil {
		return apperr.Upstream("database unavailable", err)
	}
	if actor, aerr := h.Users.FindByID(c.Context(), userID); aerr == nil {
		h.Notifier.EventCreated(family, actor, event)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, event)
}

// GET /api/events/family/:familyID
func (h *EventHandler) ListByFamily(c *fiber.Ctx) error {
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
	events, err := h.Events.FindByFamily(c.Context(), familyID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, events)
}

// GET /api/events/:id
func (h *EventHandler) Get(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	eventID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	event, err := h.Events.FindByID(c.Context(), eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("event")
	}
	if err != nil {
		return err
	}
	if _, err := h.Families.RequireMember(c.Context(), event.FamilyID, userID); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, event)
}

// PUT /api/events/:id
func (h *EventHandler) Update(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	eventID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	event, err := h.Events.FindByID(c.Context(), eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("event")
	}
	if err != nil {
		return err
	}
	if _, err := h.Families.RequireMember(c.Context(), event.FamilyID, userID); err != nil {
		return err
	}
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	set := bson.M{}
	if req.Title != "" {
		set["title"] = req.Title
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.Location != "" {
		set["location"] = req.Location
	}
	if req.StartsAt != nil {
		set["starts_at"] = req.StartsAt
	}
	if req.EndsAt != nil {
		set["ends_at"] = req.EndsAt
	}
	if len(set) == 0 {
		return apperr.Validation("nothing to update")
	}
	if err := h.Events.Update(c.Context(), eventID, set); err != nil {
		return err
	}
	updated, err := h.Events.FindByID(c.Context(), eventID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, updated)
}

// DELETE /api/events/:id
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	eventID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	event, err := h.Events.FindByID(c.Context(), eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("event")
	}
	if err != nil {
		return err
	}
	family, err := h.Families.RequireMember(c.Context(), event.FamilyID, userID)
	if err != nil {
		return err
	}
	if event.CreatedBy != userID && family.MemberRole(userID) != models.FamilyRoleAdmin {
		return apperr.Forbidden("not allowed to delete this event")
	}
	if err := h.Events.Delete(c.Context(), eventID); err != nil {
		return err
	}
	return utils.JSONMessage(c, fiber.StatusOK, "event deleted")
}
