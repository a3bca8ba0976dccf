package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/utils"
)

type FamilyHandler struct {
	Families *services.FamilyService
	Users    *repository.UserRepo
}

type createFamilyRequest struct {
	Name string `json:"name"`
}

// POST /api/families
func (h *FamilyHandler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req createFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	family, err := h.Families.Create(c.Context(), req.Name, userID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, family)
}

// GET /api/families: families the caller belongs to.
func (h *FamilyHandler) Mine(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	families, err := h.Families.Families.FindByMember(c.Context(), userID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, families)
}

// GET /api/families/:id
func (h *FamilyHandler) Get(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	family, err := h.Families.RequireMember(c.Context(), familyID, userID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, family)
}

type joinFamilyRequest struct {
	Passcode string `json:"passcode"`
}

// POST /api/families/join
func (h *FamilyHandler) Join(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req joinFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	family, err := h.Families.Join(c.Context(), userID, req.Passcode)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, family)
}

// GET /api/families/:id/members: membership roster with user profiles.
func (h *FamilyHandler) Members(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	family, err := h.Families.RequireMember(c.Context(), familyID, userID)
	if err != nil {
		return err
	}
	ids := make([]primitive.ObjectID, 0, len(family.Members))
	for _, m := range family.Members {
		ids = append(ids, m.UserID)
	}
	users, err := h.Users.FindByIDs(c.Context(), ids)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"members": family.Members, "users": users})
}

// PUT /api/families/:id
func (h *FamilyHandler) Update(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	var req createFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	family, err := h.Families.Update(c.Context(), familyID, userID, req.Name)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, family)
}

// DELETE /api/families/:id
func (h *FamilyHandler) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Families.Delete(c.Context(), familyID, userID); err != nil {
		return err
	}
	return utils.JSONMessage(c, fiber.StatusOK, "family deleted")
}

// POST /api/families/:id/regenerate-passcode
func (h *FamilyHandler) RegeneratePasscode(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	passcode, err := h.Families.RegeneratePasscode(c.Context(), familyID, userID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"passcode": passcode})
}
