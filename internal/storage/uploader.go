package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/utils"
)

// remotePutter is the write surface shared by the user and system S3 stores.
type remotePutter interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// driveWriter is the write surface of DriveClient, split out so tests can
// fake the Drive branch.
type driveWriter interface {
	EnsureAppRoot(ctx context.Context, cachedID string) (string, error)
	EnsureFolder(ctx context.Context, name, parentID string) (string, error)
	Put(ctx context.Context, folderID, name, contentType string, data []byte) (string, string, error)
	Delete(ctx context.Context, fileID string) error
	RefreshedToken() *oauth2.Token
}

// Result is one upload request's outcome: descriptors in input order plus
// any credential refresh the caller must persist.
type Result struct {
	Descriptors []models.MediaDescriptor

	// RefreshedToken is non-nil when the Drive branch rotated the user's
	// access token; the caller persists it to the user record.
	RefreshedToken *oauth2.Token

	// DriveFolderID is the app-root folder id to cache on the user record
	// when it was just created.
	DriveFolderID string
}

// Uploader dispatches one upload request to the selected backend. Any remote
// write failure falls back to local storage for that file; the request only
// fails when the local write fails too. The same policy applies to every
// upload route.
type Uploader struct {
	Local    *LocalStore
	SystemS3 remotePutter // nil unless system-wide S3 is configured
	Logger   *zap.SugaredLogger

	NewUserS3 func(ctx context.Context, cfg models.S3Config) (remotePutter, error)
	NewDrive  func(ctx context.Context, tokens models.GoogleDriveTokens) (driveWriter, error)
}

// NewUploader wires the production backend constructors.
func NewUploader(local *LocalStore, systemS3 *S3Store, oauthConf *oauth2.Config, logger *zap.SugaredLogger) *Uploader {
	u := &Uploader{
		Local:  local,
		Logger: logger,
		NewUserS3: func(ctx context.Context, cfg models.S3Config) (remotePutter, error) {
			region := cfg.Region
			if region == "" {
				region = "us-east-1"
			}
			store, err := NewS3Store(ctx, cfg.AccessKeyID, cfg.SecretAccessKey, cfg.Bucket, region, true)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
		NewDrive: func(ctx context.Context, tokens models.GoogleDriveTokens) (driveWriter, error) {
			client, err := NewDriveClient(ctx, oauthConf, tokens)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
	if systemS3 != nil {
		u.SystemS3 = systemS3
	}
	return u
}

// Upload writes files to the selected backend and returns descriptors in
// input order.
func (u *Uploader) Upload(ctx context.Context, backend Backend, user UserStorage, uc UploadContext, files []FileInput) (*Result, error) {
	switch backend {
	case BackendGoogleDrive:
		return u.uploadDrive(ctx, user, uc, files)
	case BackendS3User:
		store, err := u.NewUserS3(ctx, user.S3)
		if err != nil {
			u.Logger.Warnw("user s3 client init failed, falling back to local", "error", err)
			return u.uploadLocal(files)
		}
		return u.uploadS3(ctx, store, uc, files)
	case BackendS3System:
		if u.SystemS3 == nil {
			return u.uploadLocal(files)
		}
		return u.uploadS3(ctx, u.SystemS3, uc, files)
	default:
		return u.uploadLocal(files)
	}
}

func (u *Uploader) uploadLocal(files []FileInput) (*Result, error) {
	res := &Result{}
	for _, f := range files {
		d, err := u.localDescriptor(f)
		if err != nil {
			return nil, err
		}
		res.Descriptors = append(res.Descriptors, d)
	}
	return res, nil
}

func (u *Uploader) localDescriptor(f FileInput) (models.MediaDescriptor, error) {
	filename, url, err := u.Local.Save(f.Name, f.Data)
	if err != nil {
		return models.MediaDescriptor{}, fmt.Errorf("local write: %w", err)
	}
	thumb := url
	if thumbData, ok := thumbnail(f); ok {
		if tURL, err := u.Local.SaveThumb(filename, thumbData); err == nil {
			thumb = tURL
		}
	}
	return models.MediaDescriptor{
		Type:        utils.MediaType(f.ContentType),
		URL:         url,
		Thumbnail:   thumb,
		Source:      models.SourceLocal,
		Filename:    filename,
		Size:        int64(len(f.Data)),
		ContentType: f.ContentType,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

func (u *Uploader) uploadS3(ctx context.Context, store remotePutter, uc UploadContext, files []FileInput) (*Result, error) {
	prefix := keyPrefix(uc)
	res := &Result{}
	for _, f := range files {
		key := prefix + utils.UniqueFilename(f.Name)
		url, err := store.Put(ctx, key, f.ContentType, f.Data)
		if err != nil {
			u.Logger.Warnw("s3 write failed, falling back to local", "key", key, "error", err)
			d, lerr := u.localDescriptor(f)
			if lerr != nil {
				return nil, lerr
			}
			res.Descriptors = append(res.Descriptors, d)
			continue
		}
		thumb := url
		if thumbData, ok := thumbnail(f); ok {
			if tURL, terr := store.Put(ctx, key+"_thumb.jpg", "image/jpeg", thumbData); terr == nil {
				thumb = tURL
			}
		}
		res.Descriptors = append(res.Descriptors, models.MediaDescriptor{
			Type:        utils.MediaType(f.ContentType),
			URL:         url,
			Thumbnail:   thumb,
			Source:      models.SourceS3,
			S3Key:       key,
			Size:        int64(len(f.Data)),
			ContentType: f.ContentType,
			UploadedAt:  time.Now().UTC(),
		})
	}
	return res, nil
}

func (u *Uploader) uploadDrive(ctx context.Context, user UserStorage, uc UploadContext, files []FileInput) (*Result, error) {
	client, err := u.NewDrive(ctx, user.DriveTokens)
	if err != nil {
		u.Logger.Warnw("drive client init failed, falling back to local", "error", err)
		return u.uploadLocal(files)
	}

	rootID, err := client.EnsureAppRoot(ctx, user.DriveFolderID)
	if err != nil {
		u.Logger.Warnw("drive root folder failed, falling back to local", "error", err)
		res, lerr := u.uploadLocal(files)
		if lerr != nil {
			return nil, lerr
		}
		res.RefreshedToken = client.RefreshedToken()
		return res, nil
	}

	folderID := rootID
	if uc.FolderName != "" {
		if subID, ferr := client.EnsureFolder(ctx, uc.FolderName, rootID); ferr == nil {
			folderID = subID
		} else {
			u.Logger.Warnw("drive subfolder failed, using root", "folder", uc.FolderName, "error", ferr)
		}
	}

	res := &Result{}
	if rootID != user.DriveFolderID {
		res.DriveFolderID = rootID
	}
	for _, f := range files {
		name := utils.UniqueFilename(f.Name)
		fileID, url, err := client.Put(ctx, folderID, name, f.ContentType, f.Data)
		if err != nil {
			u.Logger.Warnw("drive write failed, falling back to local", "name", name, "error", err)
			d, lerr := u.localDescriptor(f)
			if lerr != nil {
				return nil, lerr
			}
			res.Descriptors = append(res.Descriptors, d)
			continue
		}
		res.Descriptors = append(res.Descriptors, models.MediaDescriptor{
			Type:          utils.MediaType(f.ContentType),
			URL:           url,
			Thumbnail:     url,
			Source:        models.SourceGoogleDrive,
			GoogleDriveID: fileID,
			Size:          int64(len(f.Data)),
			ContentType:   f.ContentType,
			UploadedAt:    time.Now().UTC(),
		})
	}
	res.RefreshedToken = client.RefreshedToken()
	return res, nil
}

func keyPrefix(uc UploadContext) string {
	parts := []string{}
	if uc.FamilyName != "" {
		parts = append(parts, utils.Slug(uc.FamilyName))
	}
	if uc.FolderName != "" {
		parts = append(parts, utils.Slug(uc.FolderName))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "/") + "/"
}

// thumbnail renders a 320px-wide JPEG for image inputs; non-images and
// undecodable buffers report ok=false.
func thumbnail(f FileInput) ([]byte, bool) {
	if utils.MediaType(f.ContentType) != "image" {
		return nil, false
	}
	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, false
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
