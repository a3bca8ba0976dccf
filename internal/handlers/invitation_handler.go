package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/email"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/tasks"
	"github.com/kinhub/kinhub/internal/utils"
)

const invitationTTL = 7 * 24 * time.Hour

type InvitationHandler struct {
	Invitations *repository.InvitationRepo
	Users       *repository.UserRepo
	Families    *services.FamilyService
	Email       email.Sender
	Queue       *tasks.Queue
	ClientURL   string
}

type inviteRequest struct {
	FamilyID string `json:"familyId"`
	Email    string `json:"email"`
}

// POST /api/invitations: emails a join link carrying a one-time token.
func (h *InvitationHandler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Email == "" {
		return apperr.Validation("email is required")
	}
	familyID, err := primitive.ObjectIDFromHex(req.FamilyID)
	if err != nil {
		return apperr.Validation("invalid familyId")
	}
	family, err := h.Families.RequireMember(c.Context(), familyID, userID)
	if err != nil {
		return err
	}

	inv := &models.Invitation{
		FamilyID:  familyID,
		Email:     req.Email,
		InvitedBy: userID,
		Token:     utils.RandomToken(),
		Status:    models.InviteStatusPending,
		ExpiresAt: time.Now().UTC().Add(invitationTTL),
	}
	if err := h.Invitations.Create(c.Context(), inv); err != nil {
		return apperr.Upstream("database unavailable", err)
	}

	inviterName := ""
	if inviter, ierr := h.Users.FindByID(c.Context(), userID); ierr == nil {
		inviterName = inviter.Name
	}
	link := h.ClientURL + "/invite/" + inv.Token
	subject, html := email.InvitationEmail(inviterName, family.Name, link)
	to := inv.Email
	h.Queue.Enqueue("invitation-email", func(ctx context.Context) error {
		return h.Email.Send(ctx, to, subject, html)
	})
	return utils.JSONSuccess(c, fiber.StatusCreated, inv)
}

type acceptInviteRequest struct {
	Token string `json:"token"`
}

// checkInvitation gates acceptance: pending, unexpired, and addressed to the
// caller's email. The token alone is not enough; a forwarded or leaked link
// must not let a stranger in.
func checkInvitation(inv *models.Invitation, callerEmail string, now time.Time) error {
	if inv.Status != models.InviteStatusPending {
		return apperr.Conflict("invitation already used")
	}
	if now.After(inv.ExpiresAt) {
		return apperr.Validation("invitation has expired")
	}
	if !strings.EqualFold(inv.Email, callerEmail) {
		return apperr.Forbidden("invitation was issued to a different email")
	}
	return nil
}

// POST /api/invitations/accept: joins the caller to the invited family.
func (h *InvitationHandler) Accept(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req acceptInviteRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return apperr.Validation("token is required")
	}
	inv, err := h.Invitations.FindByToken(c.Context(), req.Token)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("invitation")
	}
	if err != nil {
		return err
	}
	user, err := h.Users.FindByID(c.Context(), userID)
	if err != nil {
		return apperr.NotFound("user")
	}
	if err := checkInvitation(inv, user.Email, time.Now().UTC()); err != nil {
		if time.Now().UTC().After(inv.ExpiresAt) && inv.Status == models.InviteStatusPending {
			_ = h.Invitations.SetStatus(c.Context(), inv.ID, models.InviteStatusExpired)
		}
		return err
	}

	family, err := h.Families.JoinByID(c.Context(), inv.FamilyID, userID)
	if err != nil {
		return err
	}
	if err := h.Invitations.SetStatus(c.Context(), inv.ID, models.InviteStatusAccepted); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, family)
}
