package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/utils"
)

type WebsiteHandler struct {
	Websites *services.WebsiteService
}

type generateSiteRequest struct {
	FamilyID string `json:"familyId"`
	Prompt   string `json:"prompt"`
	Theme    string `json:"theme"`
}

// POST /api/website-admin/generate
func (h *WebsiteHandler) Generate(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req generateSiteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	familyID, err := objectIDFromHexField(req.FamilyID, "familyId")
	if err != nil {
		return err
	}
	site, err := h.Websites.GenerateSite(c.Context(), familyID, userID, req.Prompt, req.Theme)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, site)
}

// GET /api/website-admin/:familyID
func (h *WebsiteHandler) Get(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "familyID")
	if err != nil {
		return err
	}
	site, err := h.Websites.GetSite(c.Context(), familyID, userID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, site)
}

// PUT /api/website-admin/:familyID/publish
func (h *WebsiteHandler) Publish(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "familyID")
	if err != nil {
		return err
	}
	if err := h.Websites.PublishSite(c.Context(), familyID, userID); err != nil {
		return err
	}
	return utils.JSONMessage(c, fiber.StatusOK, "website published")
}
