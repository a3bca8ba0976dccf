package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleMember     = "member"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// GoogleDriveTokens is the per-user OAuth bundle for the Drive backend.
type GoogleDriveTokens struct {
	AccessToken  string    `bson:"access_token,omitempty" json:"-"`
	RefreshToken string    `bson:"refresh_token,omitempty" json:"-"`
	Expiry       time.Time `bson:"expiry,omitempty" json:"-"`
}

func (t GoogleDriveTokens) Connected() bool {
	return t.AccessToken != ""
}

// S3Config is the per-user S3 credential set, taking priority over the
// system-wide configuration when enabled.
type S3Config struct {
	AccessKeyID     string `bson:"access_key_id,omitempty" json:"accessKeyId,omitempty"`
	SecretAccessKey string `bson:"secret_access_key,omitempty" json:"-"`
	Bucket          string `bson:"bucket,omitempty" json:"bucket,omitempty"`
	Region          string `bson:"region,omitempty" json:"region,omitempty"`
	Enabled         bool   `bson:"enabled" json:"enabled"`
}

func (c S3Config) Usable() bool {
	return c.Enabled && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Bucket != ""
}

type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email               string             `bson:"email" json:"email"`
	PasswordHash        string             `bson:"password_hash" json:"-"`
	Name                string             `bson:"name" json:"name"`
	Avatar              string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role                string             `bson:"role" json:"role"`
	GoogleDriveTokens   GoogleDriveTokens  `bson:"google_drive_tokens,omitempty" json:"-"`
	GoogleDriveFolderID string             `bson:"google_drive_folder_id,omitempty" json:"-"`
	S3Config            S3Config           `bson:"s3_config,omitempty" json:"s3Config,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updatedAt"`
}
