package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/utils"
)

// DriveHandler runs the Google Drive OAuth connect flow. The state parameter
// is a short-lived JWT naming the user, since the callback arrives from
// Google without our Authorization header.
type DriveHandler struct {
	Users     *repository.UserRepo
	OAuth     *oauth2.Config
	JWTSecret string
	ClientURL string
}

const driveStateTTL = 10 * time.Minute

// GET /api/google-drive/auth-url
func (h *DriveHandler) AuthURL(c *fiber.Ctx) error {
	if h.OAuth == nil {
		return apperr.Validation("google drive is not configured")
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	state, _, err := auth.IssueAccessToken(userID.Hex(), auth.Role(c), h.JWTSecret, driveStateTTL)
	if err != nil {
		return apperr.Internal(err)
	}
	// AccessTypeOffline + ApprovalForce so Google returns a refresh token
	// even on re-connects.
	url := h.OAuth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"url": url})
}

// GET /api/google-drive/callback?code=&state=
func (h *DriveHandler) Callback(c *fiber.Ctx) error {
	if h.OAuth == nil {
		return apperr.Validation("google drive is not configured")
	}
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return apperr.Validation("code and state are required")
	}
	claims, err := auth.ParseAccessToken(state, h.JWTSecret)
	if err != nil {
		return apperr.Auth("invalid state")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return apperr.Auth("invalid state")
	}

	tok, err := h.OAuth.Exchange(c.Context(), code)
	if err != nil {
		return apperr.Upstream("google token exchange failed", err)
	}
	tokens := models.GoogleDriveTokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if err := h.Users.SaveDriveTokens(c.Context(), userID, tokens); err != nil {
		return apperr.Upstream("database unavailable", err)
	}
	if h.ClientURL != "" {
		return c.Redirect(h.ClientURL + "/settings/storage?drive=connected")
	}
	return utils.JSONMessage(c, fiber.StatusOK, "google drive connected")
}

// DELETE /api/google-drive/disconnect
func (h *DriveHandler) Disconnect(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	if err := h.Users.ClearDriveTokens(c.Context(), userID); err != nil {
		return apperr.Upstream("database unavailable", err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "google drive disconnected")
}

// GET /api/google-drive/status
func (h *DriveHandler) Status(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	user, err := h.Users.FindByID(c.Context(), userID)
	if err != nil {
		return apperr.NotFound("user")
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"connected": user.GoogleDriveTokens.Connected(),
		"expiry":    user.GoogleDriveTokens.Expiry,
	})
}
