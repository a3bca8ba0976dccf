package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/utils"
)

// AdminHandler serves the superadmin surface. Route-level RequireRole guards
// access; handlers assume the caller is already authorized.
type AdminHandler struct {
	Users    *repository.UserRepo
	Families *repository.FamilyRepo
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Users.List(c.Context())
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, users)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// PUT /api/admin/users/:id/role
func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	userID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	var req setRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	switch req.Role {
	case models.RoleMember, models.RoleAdmin, models.RoleSuperAdmin:
	default:
		return apperr.Validation("unknown role %q", req.Role)
	}
	err = h.Users.Update(c.Context(), userID, bson.M{"role": req.Role})
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user")
	}
	if err != nil {
		return err
	}
	return utils.JSONMessage(c, fiber.StatusOK, "role updated")
}

// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	err = h.Users.Delete(c.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user")
	}
	if err != nil {
		return err
	}
	return utils.JSONMessage(c, fiber.StatusOK, "user deleted")
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	userCount, err := h.Users.Count(c.Context())
	if err != nil {
		return err
	}
	familyCount, err := h.Families.Count(c.Context())
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"users":    userCount,
		"families": familyCount,
	})
}
