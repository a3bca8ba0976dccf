package handlers

import (
	"errors"

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

type MemoryHandler struct {
	Memories  *repository.MemoryRepo
	Users     *repository.UserRepo
	Families  *services.FamilyService
	Media     *services.MediaService
	Notifier  *services.Notifier
	MaxSizeMB int
}

// POST /api/memories: multipart: familyId, title, description?, files.
func (h *MemoryHandler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDFromForm(c, "familyId")
	if err != nil {
		return err
	}
	title := c.FormValue("title")
	if title == "" {
		return apperr.Validation("title is required")
	}
	family, err := h.Families.RequireMember(c.Context(), familyID, userID)
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
		storage.UploadContext{FamilyName: family.Name, FolderName: "memories"}, files)
	if err != nil {
		return err
	}

	memory := &models.Memory{
		FamilyID:    familyID,
		Title:       title,
		Description: c.FormValue("description"),
		Media:       descriptors,
		CreatedBy:   userID,
	}
	if err := h.Memories.Create(c.Context(), memory); err != nil {
		// storage write succeeded but the document didn't; don't leak files
		h.Media.RemoveForUser(c.Context(), user, descriptors)
		return apperr.Upstream("database unavailable", err)
	}

	h.Notifier.MemoryCreated(family, user, memory)
	return utils.JSONSuccess(c, fiber.StatusCreated, memory)
}

// GET /api/memories/family/:familyID
func (h *MemoryHandler) ListByFamily(c *fiber.Ctx) error {
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
	memories, err := h.Memories.FindByFamily(c.Context(), familyID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, memories)
}

// GET /api/memories/:id
func (h *MemoryHandler) Get(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	memoryID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	memory, err := h.Memories.FindByID(c.Context(), memoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("memory")
	}
	if err != nil {
		return err
	}
	if _, err := h.Families.RequireMember(c.Context(), memory.FamilyID, userID); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, memory)
}

// DELETE /api/memories/:id: also best-effort deletes the backing files.
func (h *MemoryHandler) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	memoryID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	memory, err := h.Memories.FindByID(c.Context(), memoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("memory")
	}
	if err != nil {
		return err
	}
	family, err := h.Families.RequireMember(c.Context(), memory.FamilyID, userID)
	if err != nil {
		return err
	}
	// only the author or a family admin may delete
	if memory.CreatedBy != userID && family.MemberRole(userID) != models.FamilyRoleAdmin {
		return apperr.Forbidden("not allowed to delete this memory")
	}
	if err := h.Memories.Delete(c.Context(), memoryID); err != nil {
		return err
	}

	// backing objects belong to the uploader's storage, not the caller's
	if owner, oerr := h.Users.FindByID(c.Context(), memory.CreatedBy); oerr == nil {
		h.Media.RemoveForUser(c.Context(), owner, memory.Media)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "memory deleted")
}

func objectIDFromForm(c *fiber.Ctx, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.FormValue(field))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid %s", field)
	}
	return id, nil
}
