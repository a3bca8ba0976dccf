package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/storage"
)

// MediaService runs the storage slice end to end for one upload request:
// snapshot the user, select a backend once, upload all files through it, and
// persist any credential refresh the Drive branch produced.
type MediaService struct {
	Users      *repository.UserRepo
	Uploader   *storage.Uploader
	SystemS3   bool
	Logger     *zap.SugaredLogger
}

func snapshot(user *models.User) storage.UserStorage {
	return storage.UserStorage{
		DriveTokens:   user.GoogleDriveTokens,
		DriveFolderID: user.GoogleDriveFolderID,
		S3:            user.S3Config,
	}
}

func (s *MediaService) UploadForUser(ctx context.Context, user *models.User, uc storage.UploadContext, files []storage.FileInput) ([]models.MediaDescriptor, error) {
	snap := snapshot(user)
	backend := storage.Select(snap, s.SystemS3)

	res, err := s.Uploader.Upload(ctx, backend, snap, uc, files)
	if err != nil {
		return nil, apperr.Upstream("file storage unavailable", err)
	}

	// The Drive transport may have rotated the access token; losing the
	// refresh would strand the user with a dead token.
	persistDriveRefresh(ctx, s.Users, user, res.RefreshedToken, s.Logger)
	if res.DriveFolderID != "" {
		if err := s.Users.SaveDriveFolderID(ctx, user.ID, res.DriveFolderID); err != nil {
			s.Logger.Warnw("failed to cache drive folder id", "user", user.ID.Hex(), "error", err)
		}
	}
	return res.Descriptors, nil
}

func persistDriveRefresh(ctx context.Context, users *repository.UserRepo, user *models.User, tok *oauth2.Token, logger *zap.SugaredLogger) {
	if tok == nil {
		return
	}
	tokens := models.GoogleDriveTokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = user.GoogleDriveTokens.RefreshToken
	}
	if err := users.SaveDriveTokens(ctx, user.ID, tokens); err != nil {
		logger.Warnw("failed to persist refreshed drive tokens", "user", user.ID.Hex(), "error", err)
	}
}

// RemoveForUser best-effort deletes the backing objects of descriptors.
func (s *MediaService) RemoveForUser(ctx context.Context, user *models.User, descriptors []models.MediaDescriptor) {
	s.Uploader.Remove(ctx, snapshot(user), descriptors)
}
