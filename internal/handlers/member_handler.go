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

type MemberHandler struct {
	Members  *repository.MemberRepo
	Users    *repository.UserRepo
	Families *services.FamilyService
	Notifier *services.Notifier
}

type memberRequest struct {
	FamilyID  string     `json:"familyId"`
	Name      string     `json:"name"`
	Birthday  *time.Time `json:"birthday"`
	Avatar    string     `json:"avatar"`
	ParentIDs []string   `json:"parentIds"`
	SpouseID  string     `json:"spouseId"`
}

// POST /api/members
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Name == "" {
		return apperr.Validation("name is required")
	}
	familyID, err := primitive.ObjectIDFromHex(req.FamilyID)
	if err != nil {
		return apperr.Validation("invalid familyId")
	}
	family, err := h.Families.RequireMember(c.Context(), familyID, userID)
	if err != nil {
		return err
	}

	member := &models.Member{
		FamilyID:  familyID,
		Name:      req.Name,
		Birthday:  req.Birthday,
		Avatar:    req.Avatar,
		CreatedBy: userID,
	}
	for _, p := range req.ParentIDs {
		pid, perr := primitive.ObjectIDFromHex(p)
		if perr != nil {
			return apperr.Validation("invalid parent id %q", p)
		}
		member.ParentIDs = append(member.ParentIDs, pid)
	}
	if req.SpouseID != "" {
		sid, serr := primitive.ObjectIDFromHex(req.SpouseID)
		if serr != nil {
			return apperr.Validation("invalid spouseId")
		}
		member.SpouseID = &sid
	}
	if err := h.Members.Create(c.Context(), member); err != nil {
		return apperr.Upstream("database unavailable", err)
	}

	if actor, aerr := h.Users.FindByID(c.Context(), userID); aerr == nil {
		h.Notifier.MemberAdded(family, actor, member)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, member)
}

// GET /api/members/family/:familyID
func (h *MemberHandler) ListByFamily(c *fiber.Ctx) error {
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
	members, err := h.Members.FindByFamily(c.Context(), familyID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, members)
}

// PUT /api/members/:id
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	memberID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	member, err := h.Members.FindByID(c.Context(), memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("member")
	}
	if err != nil {
		return err
	}
	if _, err := h.Families.RequireMember(c.Context(), member.FamilyID, userID); err != nil {
		return err
	}

	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Birthday != nil {
		set["birthday"] = req.Birthday
	}
	if req.Avatar != "" {
		set["avatar"] = req.Avatar
	}
	if req.SpouseID != "" {
		sid, serr := primitive.ObjectIDFromHex(req.SpouseID)
		if serr != nil {
			return apperr.Validation("invalid spouseId")
		}
		set["spouse_id"] = sid
	}
	if req.ParentIDs != nil {
		parents := make([]primitive.ObjectID, 0, len(req.ParentIDs))
		for _, p := range req.ParentIDs {
			pid, perr := primitive.ObjectIDFromHex(p)
			if perr != nil {
				return apperr.Validation("invalid parent id %q", p)
			}
			parents = append(parents, pid)
		}
		set["parent_ids"] = parents
	}
	if len(set) == 0 {
		return apperr.Validation("nothing to update")
	}
	if err := h.Members.Update(c.Context(), memberID, set); err != nil {
		return err
	}
	updated, err := h.Members.FindByID(c.Context(), memberID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, updated)
}

// DELETE /api/members/:id
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	memberID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	member, err := h.Members.FindByID(c.Context(), memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("member")
	}
	if err != nil {
		return err
	}
	if _, err := h.Families.RequireMember(c.Context(), member.FamilyID, userID); err != nil {
		return err
	}
	if err := h.Members.Delete(c.Context(), memberID); err != nil {
		return err
	}
	return utils.JSONMessage(c, fiber.StatusOK, "member removed")
}
