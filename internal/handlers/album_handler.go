package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/storage"
	"github.com/kinhub/kinhub/internal/utils"
)

type AlbumHandler struct {
	Albums    *repository.AlbumRepo
	Users     *repository.UserRepo
	Families  *services.FamilyService
	Media     *services.MediaService
	MaxSizeMB int
}

type createAlbumRequest struct {
	FamilyID    string `json:"familyId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// POST /api/albums
func (h *AlbumHandler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req createAlbumRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Name == "" {
		return apperr.Validation("album name is required")
	}
	familyID, err := primitive.ObjectIDFromHex(req.FamilyID)
	if err != nil {
		return apperr.Validation("invalid familyId")
	}
	if _, err := h.Families.RequireMember(c.Context(), familyID, userID); err != nil {
		return err
	}
	album := &models.Album{
		FamilyID:    familyID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := h.Albums.Create(c.Context(), album); err != nil {
		return apperr.Upstream("database unavailable", err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, album)
}

// POST /api/albums/:id/media: multipart append.
func (h *AlbumHandler) AddMedia(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	albumID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	album, err := h.Albums.FindByID(c.Context(), albumID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("album")
	}
	if err != nil {
		return err
	}
	family, err := h.Families.RequireMember(c.Context(), album.FamilyID, userID)
	if err != nil {
		return err
	}
	files, err := readUploadedFiles(c, h.MaxSizeMB)
	if err != nil {
		return err
	}
	user, err := h.Users.FindByID(c.Context(), userID)
	if err != nil {
		return apperr.NotFound("user")
	}
	descriptors, err := h.Media.UploadForUser(c.Context(), user,
		storage.UploadContext{FamilyName: family.Name, FolderName: album.Name}, files)
	if err != nil {
		return err
	}
	if err := h.Albums.PushMedia(c.Context(), albumID, descriptors); err != nil {
		h.Media.RemoveForUser(c.Context(), user, descriptors)
		return apperr.Upstream("database unavailable", err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, descriptors)
}

// GET /api/albums/family/:familyID
func (h *AlbumHandler) ListByFamily(c *fiber.Ctx) error {
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
	albums, err := h.Albums.FindByFamily(c.Context(), familyID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, albums)
}

// GET /api/albums/:id
func (h *AlbumHandler) Get(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	albumID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	album, err := h.Albums.FindByID(c.Context(), albumID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("album")
	}
	if err != nil {
		return err
	}
	if _, err := h.Families.RequireMember(c.Context(), album.FamilyID, userID); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, album)
}

// DELETE /api/albums/:id
func (h *AlbumHandler) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	albumID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	album, err := h.Albums.FindByID(c.Context(), albumID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("album")
	}
	if err != nil {
		return err
	}
	family, err := h.Families.RequireMember(c.Context(), album.FamilyID, userID)
	if err != nil {
		return err
	}
	if album.CreatedBy != userID && family.MemberRole(userID) != models.FamilyRoleAdmin {
		return apperr.Forbidden("not allowed to delete this album")
	}
	if err := h.Albums.Delete(c.Context(), albumID); err != nil {
		return err
	}
	if owner, oerr := h.Users.FindByID(c.Context(), album.CreatedBy); oerr == nil {
		h.Media.RemoveForUser(c.Context(), owner, album.Media)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "album deleted")
}

// DELETE /api/albums/:id/media/:index
func (h *AlbumHandler) RemoveMedia(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	albumID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return apperr.Validation("invalid media index")
	}
	album, err := h.Albums.FindByID(c.Context(), albumID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("album")
	}
	if err != nil {
		return err
	}
	if _, err := h.Families.RequireMember(c.Context(), album.FamilyID, userID); err != nil {
		return err
	}
	if index >= len(album.Media) {
		return apperr.Validation("media index out of range")
	}
	removed := album.Media[index]
	if err := h.Albums.RemoveMediaAt(c.Context(), albumID, index); err != nil {
		return err
	}
	if owner, oerr := h.Users.FindByID(c.Context(), album.CreatedBy); oerr == nil {
		h.Media.RemoveForUser(c.Context(), owner, []models.MediaDescriptor{removed})
	}
	return utils.JSONMessage(c, fiber.StatusOK, "media removed")
}
