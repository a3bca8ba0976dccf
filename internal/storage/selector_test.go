package storage

import (
	"testing"
	"time"

	"github.com/kinhub/kinhub/internal/models"
)

func driveUser() UserStorage {
	return UserStorage{
		DriveTokens: models.GoogleDriveTokens{
			AccessToken:  "ya29.token",
			RefreshToken: "1//refresh",
			Expiry:       time.Now().Add(time.Hour),
		},
	}
}

func s3User() UserStorage {
	return UserStorage{
		S3: models.S3Config{
			Enabled:         true,
			AccessKeyID:     "AKIA",
			SecretAccessKey: "secret",
			Bucket:          "my-bucket",
			Region:          "eu-west-1",
		},
	}
}

func TestSelectPriority(t *testing.T) {
	cases := []struct {
		name     string
		user     UserStorage
		systemS3 bool
		want     Backend
	}{
		{"drive wins over everything", func() UserStorage {
			u := driveUser()
			u.S3 = s3User().S3
			return u
		}(), true, BackendGoogleDrive},
		{"user s3 beats system s3", s3User(), true, BackendS3User},
		{"system s3 when user has nothing", UserStorage{}, true, BackendS3System},
		{"local when nothing configured", UserStorage{}, false, BackendLocal},
		{"disabled user s3 is ignored", func() UserStorage {
			u := s3User()
			u.S3.Enabled = false
			return u
		}(), true, BackendS3System},
		{"incomplete user s3 is ignored", func() UserStorage {
			u := s3User()
			u.S3.Bucket = ""
			return u
		}(), false, BackendLocal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Select(tc.user, tc.systemS3); got != tc.want {
				t.Fatalf("Select = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	u := driveUser()
	first := Select(u, true)
	for i := 0; i < 10; i++ {
		if got := Select(u, true); got != first {
			t.Fatalf("Select changed its mind on call %d: %v then %v", i, first, got)
		}
	}
}
