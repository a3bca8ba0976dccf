package storage

import (
	"context"

	"github.com/kinhub/kinhub/internal/models"
)

// Remove best-effort deletes the backing objects of descriptors on whichever
// backend wrote them. Failures are logged and swallowed; document deletion
// never blocks on storage cleanup.
func (u *Uploader) Remove(ctx context.Context, user UserStorage, descriptors []models.MediaDescriptor) {
	var drive driveWriter
	var userS3 remotePutter

	for _, d := range descriptors {
		switch d.Source {
		case models.SourceLocal:
			if err := u.Local.Delete(d.Filename); err != nil {
				u.Logger.Warnw("local delete failed", "filename", d.Filename, "error", err)
			}
			_ = u.Local.Delete(d.Filename + "_thumb.jpg")

		case models.SourceS3:
			store := u.SystemS3
			if user.S3.Usable() {
				if userS3 == nil {
					s, err := u.NewUserS3(ctx, user.S3)
					if err != nil {
						u.Logger.Warnw("user s3 client init failed during delete", "error", err)
						continue
					}
					userS3 = s
				}
				store = userS3
			}
			if store == nil {
				continue
			}
			if err := store.Delete(ctx, d.S3Key); err != nil {
				u.Logger.Warnw("s3 delete failed", "key", d.S3Key, "error", err)
			}
			_ = store.Delete(ctx, d.S3Key+"_thumb.jpg")

		case models.SourceGoogleDrive:
			if !user.DriveTokens.Connected() {
				continue
			}
			if drive == nil {
				c, err := u.NewDrive(ctx, user.DriveTokens)
				if err != nil {
					u.Logger.Warnw("drive client init failed during delete", "error", err)
					continue
				}
				drive = c
			}
			if err := drive.Delete(ctx, d.GoogleDriveID); err != nil {
				u.Logger.Warnw("drive delete failed", "fileId", d.GoogleDriveID, "error", err)
			}
		}
	}
}
