package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/storage"
	"github.com/kinhub/kinhub/internal/utils"
)

// objectSource is the read surface of an S3 store, split out so tests can
// fake the bucket.
type objectSource interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

type driveTarget interface {
	EnsureAppRoot(ctx context.Context, cachedID string) (string, error)
	Put(ctx context.Context, folderID, name, contentType string, data []byte) (string, string, error)
	RefreshedToken() *oauth2.Token
}

// MigrationService copies a user's S3-sourced media into their Google Drive
// and rewrites the descriptors in place. Files that fail to copy keep their
// S3 descriptor so the migration can be re-run.
type MigrationService struct {
	Users    *repository.UserRepo
	Memories *repository.MemoryRepo
	Albums   *repository.AlbumRepo
	SystemS3 objectSource // nil unless system-wide S3 is configured
	Logger   *zap.SugaredLogger

	NewUserS3 func(ctx context.Context, cfg models.S3Config) (objectSource, error)
	NewDrive  func(ctx context.Context, tokens models.GoogleDriveTokens) (driveTarget, error)
}

func NewMigrationService(users *repository.UserRepo, memories *repository.MemoryRepo, albums *repository.AlbumRepo,
	systemS3 *storage.S3Store, oauthConf *oauth2.Config, logger *zap.SugaredLogger) *MigrationService {
	s := &MigrationService{
		Users:    users,
		Memories: memories,
		Albums:   albums,
		Logger:   logger,
		NewUserS3: func(ctx context.Context, cfg models.S3Config) (objectSource, error) {
			region := cfg.Region
			if region == "" {
				region = "us-east-1"
			}
			store, err := storage.NewS3Store(ctx, cfg.AccessKeyID, cfg.SecretAccessKey, cfg.Bucket, region, true)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
		NewDrive: func(ctx context.Context, tokens models.GoogleDriveTokens) (driveTarget, error) {
			client, err := storage.NewDriveClient(ctx, oauthConf, tokens)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
	if systemS3 != nil {
		s.SystemS3 = systemS3
	}
	return s
}

type MigrationReport struct {
	Migrated int `json:"migrated"`
	Failed   int `json:"failed"`
	Updated  int `json:"documentsUpdated"`
}

// Migrate walks every memory and album the user created and moves each
// S3-sourced descriptor to Drive.
func (s *MigrationService) Migrate(ctx context.Context, userID primitive.ObjectID) (*MigrationReport, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.NotFound("user")
	}
	if !user.GoogleDriveTokens.Connected() {
		return nil, apperr.Validation("google drive is not connected")
	}

	source, err := s.sourceFor(ctx, user)
	if err != nil {
		return nil, err
	}
	drive, err := s.NewDrive(ctx, user.GoogleDriveTokens)
	if err != nil {
		return nil, apperr.Upstream("google drive unavailable", err)
	}
	rootID, err := drive.EnsureAppRoot(ctx, user.GoogleDriveFolderID)
	if err != nil {
		return nil, apperr.Upstream("google drive unavailable", err)
	}

	report := &MigrationReport{}

	memories, err := s.Memories.FindByCreatorAndSource(ctx, userID, models.SourceS3)
	if err != nil {
		return nil, err
	}
	for i := range memories {
		media, changed := s.migrateMedia(ctx, source, drive, rootID, memories[i].Media, report)
		if !changed {
			continue
		}
		if err := s.Memories.SetMedia(ctx, memories[i].ID, media); err != nil {
			s.Logger.Errorw("failed to save migrated memory", "memory", memories[i].ID.Hex(), "error", err)
			continue
		}
		report.Updated++
	}

	albums, err := s.Albums.FindByCreatorAndSource(ctx, userID, models.SourceS3)
	if err != nil {
		return nil, err
	}
	for i := range albums {
		media, changed := s.migrateMedia(ctx, source, drive, rootID, albums[i].Media, report)
		if !changed {
			continue
		}
		if err := s.Albums.SetMedia(ctx, albums[i].ID, media); err != nil {
			s.Logger.Errorw("failed to save migrated album", "album", albums[i].ID.Hex(), "error", err)
			continue
		}
		report.Updated++
	}

	persistDriveRefresh(ctx, s.Users, user, drive.RefreshedToken(), s.Logger)
	if rootID != user.GoogleDriveFolderID {
		if err := s.Users.SaveDriveFolderID(ctx, userID, rootID); err != nil {
			s.Logger.Warnw("failed to cache drive folder id", "user", userID.Hex(), "error", err)
		}
	}
	return report, nil
}

func (s *MigrationService) sourceFor(ctx context.Context, user *models.User) (objectSource, error) {
	if user.S3Config.Usable() {
		src, err := s.NewUserS3(ctx, user.S3Config)
		if err != nil {
			return nil, apperr.Upstream("s3 unavailable", err)
		}
		return src, nil
	}
	if s.SystemS3 == nil {
		return nil, apperr.Validation("no s3 storage to migrate from")
	}
	return s.SystemS3, nil
}

// migrateMedia copies each S3 descriptor to Drive, returning the rewritten
// slice in place. Order and non-S3 entries are untouched.
func (s *MigrationService) migrateMedia(ctx context.Context, source objectSource, drive driveTarget, rootID string,
	media []models.MediaDescriptor, report *MigrationReport) ([]models.MediaDescriptor, bool) {
	changed := false
	for i, d := range media {
		if d.Source != models.SourceS3 || d.S3Key == "" {
			continue
		}
		data, contentType, err := source.Get(ctx, d.S3Key)
		if err != nil {
			s.Logger.Warnw("failed to read s3 object", "key", d.S3Key, "error", err)
			report.Failed++
			continue
		}
		if contentType == "" {
			contentType = d.ContentType
		}
		name := d.Filename
		if name == "" {
			name = utils.UniqueFilename(d.S3Key)
		}
		fileID, url, err := drive.Put(ctx, rootID, name, contentType, data)
		if err != nil {
			s.Logger.Warnw("failed to copy object to drive", "key", d.S3Key, "error", err)
			report.Failed++
			continue
		}

		oldKey := d.S3Key
		media[i].Source = models.SourceGoogleDrive
		media[i].GoogleDriveID = fileID
		media[i].URL = url
		media[i].Thumbnail = url
		media[i].S3Key = ""

		// The S3 copy is redundant once Drive holds the file.
		if err := source.Delete(ctx, oldKey); err != nil {
			s.Logger.Warnw("failed to delete migrated s3 object", "key", oldKey, "error", err)
		} else {
			_ = source.Delete(ctx, oldKey+"_thumb.jpg")
		}

		report.Migrated++
		changed = true
	}
	return media, changed
}
