package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/utils"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	user, err := h.Auth.Register(c.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	pair, user, err := h.Auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"tokens": pair, "user": user})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return apperr.Validation("refreshToken is required")
	}
	pair, err := h.Auth.RefreshTokens(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, pair)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	if err := h.Auth.Logout(c.Context(), userID); err != nil {
		return err
	}
	return utils.JSONMessage(c, fiber.StatusOK, "logged out")
}

type updateMeRequest struct {
	Name     string           `json:"name"`
	Avatar   string           `json:"avatar"`
	S3Config *models.S3Config `json:"s3Config"`
}

// PUT /api/auth/me: profile fields and per-user S3 settings.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req updateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Avatar != "" {
		set["avatar"] = req.Avatar
	}
	if req.S3Config != nil {
		if req.S3Config.Enabled && !req.S3Config.Usable() {
			return apperr.Validation("s3Config requires accessKeyId, secretAccessKey and bucket")
		}
		set["s3_config"] = req.S3Config
	}
	if len(set) == 0 {
		return apperr.Validation("nothing to update")
	}
	if err := h.Auth.Users.Update(c.Context(), userID, set); err != nil {
		return apperr.Upstream("database unavailable", err)
	}
	user, err := h.Auth.Users.FindByID(c.Context(), userID)
	if err != nil {
		return apperr.NotFound("user")
	}
	return utils.JSONSuccess(c, fiber.StatusOK, user)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	user, err := h.Auth.Users.FindByID(c.Context(), userID)
	if err != nil {
		return apperr.NotFound("user")
	}
	return utils.JSONSuccess(c, fiber.StatusOK, user)
}
