package models

import "time"

const (
	SourceLocal       = "local"
	SourceS3          = "s3"
	SourceGoogleDrive = "googleDrive"
)

// MediaDescriptor is the normalized record of one uploaded file, embedded in
// a Memory or Album. Exactly one source tag, set by whichever backend branch
// performed the write, immutable afterwards.
type MediaDescriptor struct {
	Type          string    `bson:"type" json:"type"` // image|video
	URL           string    `bson:"url" json:"url"`
	Thumbnail     string    `bson:"thumbnail" json:"thumbnail"`
	Source        string    `bson:"source" json:"source"`
	S3Key         string    `bson:"s3_key,omitempty" json:"s3Key,omitempty"`
	GoogleDriveID string    `bson:"google_drive_id,omitempty" json:"googleDriveId,omitempty"`
	Filename      string    `bson:"filename,omitempty" json:"filename,omitempty"`
	Size          int64     `bson:"size" json:"size"`
	ContentType   string    `bson:"content_type" json:"contentType"`
	UploadedAt    time.Time `bson:"uploaded_at" json:"uploadedAt"`
}
