// Package storage implements backend selection and the upload pipeline:
// one backend is chosen per request (never per file), files are written in
// input order, and every write is normalized into a MediaDescriptor.
package storage

import (
	"github.com/kinhub/kinhub/internal/models"
)

type Backend int

const (
	BackendLocal Backend = iota
	BackendS3User
	BackendS3System
	BackendGoogleDrive
)

func (b Backend) String() string {
	switch b {
	case BackendS3User:
		return "s3-user"
	case BackendS3System:
		return "s3-system"
	case BackendGoogleDrive:
		return "google-drive"
	default:
		return "local"
	}
}

// UserStorage is the storage-relevant snapshot of a user record. Select
// reads it instead of the live document so the decision stays a pure
// function of state at call time.
type UserStorage struct {
	DriveTokens   models.GoogleDriveTokens
	DriveFolderID string
	S3            models.S3Config
}

// Select picks the backend for an upload request. First match wins:
// Google Drive connection, then per-user S3 credentials, then system-wide
// S3, then local disk. No capability probing, no side effects.
func Select(u UserStorage, systemS3Configured bool) Backend {
	if u.DriveTokens.Connected() {
		return BackendGoogleDrive
	}
	if u.S3.Usable() {
		return BackendS3User
	}
	if systemS3Configured {
		return BackendS3System
	}
	return BackendLocal
}

// FileInput is one in-memory upload buffer with its declared metadata.
type FileInput struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadContext carries the naming context for object keys and Drive
// folders: family name plus the event/album/memory grouping, as slugs.
type UploadContext struct {
	FamilyName string
	FolderName string
}
