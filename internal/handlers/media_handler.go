package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/storage"
	"github.com/kinhub/kinhub/internal/utils"
)

type MediaHandler struct {
	Users     *repository.UserRepo
	Media     *services.MediaService
	SystemS3  *storage.S3Store
	Migration *services.MigrationService
	MaxSizeMB int
}

// POST /api/media/upload: bare upload, returns descriptors without
// attaching them to a document.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
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
		storage.UploadContext{FolderName: c.FormValue("folder")}, files)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, descriptors)
}

// GET /api/media/signed-url?key=: presigned GET for private S3 objects.
func (h *MediaHandler) SignedURL(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	key := c.Query("key")
	if key == "" {
		return apperr.Validation("key is required")
	}
	user, err := h.Users.FindByID(c.Context(), userID)
	if err != nil {
		return apperr.NotFound("user")
	}

	store := h.SystemS3
	if user.S3Config.Usable() {
		region := user.S3Config.Region
		if region == "" {
			region = "us-east-1"
		}
		us, serr := storage.NewS3Store(c.Context(), user.S3Config.AccessKeyID,
			user.S3Config.SecretAccessKey, user.S3Config.Bucket, region, false)
		if serr != nil {
			return apperr.Upstream("s3 unavailable", serr)
		}
		store = us
	}
	if store == nil {
		return apperr.Validation("no s3 storage configured")
	}
	url, err := store.PresignGet(c.Context(), key, 15*time.Minute)
	if err != nil {
		return apperr.Upstream("s3 unavailable", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"url": url})
}

// POST /api/s3-to-drive/migrate
func (h *MediaHandler) MigrateToDrive(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	report, err := h.Migration.Migrate(c.Context(), userID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, report)
}
