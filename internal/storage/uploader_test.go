package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/kinhub/kinhub/internal/models"
)

type fakePutter struct {
	puts    []string
	deletes []string
	failOn  map[string]bool // fail Put when key contains this fragment
}

func (f *fakePutter) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	for frag := range f.failOn {
		if strings.Contains(key, frag) {
			return "", errors.New("simulated s3 outage")
		}
	}
	f.puts = append(f.puts, key)
	return "https://bucket.s3.test/" + key, nil
}

func (f *fakePutter) Delete(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

type fakeDrive struct {
	rootID    string
	putFail   bool
	refreshed *oauth2.Token
	files     int
}

func (f *fakeDrive) EnsureAppRoot(ctx context.Context, cachedID string) (string, error) {
	if cachedID != "" {
		return cachedID, nil
	}
	return f.rootID, nil
}

func (f *fakeDrive) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	return parentID + "/" + name, nil
}

func (f *fakeDrive) Put(ctx context.Context, folderID, name, contentType string, data []byte) (string, string, error) {
	if f.putFail {
		return "", "", errors.New("simulated drive outage")
	}
	f.files++
	id := fmt.Sprintf("drive-file-%d", f.files)
	return id, DriveViewURL(id), nil
}

func (f *fakeDrive) Delete(ctx context.Context, fileID string) error { return nil }

func (f *fakeDrive) RefreshedToken() *oauth2.Token { return f.refreshed }

func testUploader(t *testing.T) *Uploader {
	t.Helper()
	local, err := NewLocalStore(t.TempDir(), "http://localhost:5000")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return &Uploader{Local: local, Logger: zap.NewNop().Sugar()}
}

func inputs(names ...string) []FileInput {
	files := make([]FileInput, 0, len(names))
	for _, n := range names {
		files = append(files, FileInput{Name: n, ContentType: "video/mp4", Data: []byte("data-" + n)})
	}
	return files
}

func TestUploadS3OrderPreserved(t *testing.T) {
	u := testUploader(t)
	store := &fakePutter{}

	names := []string{"a.mp4", "b.mp4", "c.mp4", "d.mp4"}
	res, err := u.uploadS3(context.Background(), store, UploadContext{FamilyName: "The Smiths"}, inputs(names...))
	if err != nil {
		t.Fatalf("uploadS3: %v", err)
	}
	if len(res.Descriptors) != len(names) {
		t.Fatalf("got %d descriptors, want %d", len(res.Descriptors), len(names))
	}
	for i, d := range res.Descriptors {
		if d.Source != models.SourceS3 {
			t.Fatalf("descriptor %d source = %q", i, d.Source)
		}
		if !strings.HasPrefix(d.S3Key, "the-smiths/") {
			t.Fatalf("descriptor %d key %q missing family prefix", i, d.S3Key)
		}
		if d.URL != "https://bucket.s3.test/"+d.S3Key {
			t.Fatalf("descriptor %d url %q does not match key %q", i, d.URL, d.S3Key)
		}
	}
	if len(store.puts) != len(names) {
		t.Fatalf("store saw %d puts, want %d", len(store.puts), len(names))
	}
}

func TestUploadS3FallbackToLocalPerFile(t *testing.T) {
	u := testUploader(t)
	store := &fakePutter{failOn: map[string]bool{".bad": true}}

	files := []FileInput{
		{Name: "ok1.mp4", ContentType: "video/mp4", Data: []byte("1")},
		{Name: "broken.bad", ContentType: "video/mp4", Data: []byte("2")},
		{Name: "ok2.mp4", ContentType: "video/mp4", Data: []byte("3")},
	}
	res, err := u.uploadS3(context.Background(), store, UploadContext{}, files)
	if err != nil {
		t.Fatalf("uploadS3: %v", err)
	}
	if len(res.Descriptors) != 3 {
		t.Fatalf("got %d descriptors, want 3", len(res.Descriptors))
	}
	wantSources := []string{models.SourceS3, models.SourceLocal, models.SourceS3}
	for i, d := range res.Descriptors {
		if d.Source != wantSources[i] {
			t.Fatalf("descriptor %d source = %q, want %q", i, d.Source, wantSources[i])
		}
	}
	if res.Descriptors[1].URL == "" || !strings.Contains(res.Descriptors[1].URL, "/uploads/") {
		t.Fatalf("fallback descriptor has no local url: %q", res.Descriptors[1].URL)
	}
}

func TestUploadDriveCapturesRefreshedToken(t *testing.T) {
	u := testUploader(t)
	refreshed := &oauth2.Token{AccessToken: "new-access"}
	drive := &fakeDrive{rootID: "root-123", refreshed: refreshed}
	u.NewDrive = func(ctx context.Context, tokens models.GoogleDriveTokens) (driveWriter, error) {
		return drive, nil
	}

	user := UserStorage{DriveTokens: models.GoogleDriveTokens{AccessToken: "old"}}
	res, err := u.Upload(context.Background(), BackendGoogleDrive, user, UploadContext{FolderName: "Birthday"}, inputs("a.mp4"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.RefreshedToken != refreshed {
		t.Fatalf("refreshed token not surfaced")
	}
	if res.DriveFolderID != "root-123" {
		t.Fatalf("new root folder id not surfaced, got %q", res.DriveFolderID)
	}
	if got := res.Descriptors[0].Source; got != models.SourceGoogleDrive {
		t.Fatalf("source = %q", got)
	}
	if res.Descriptors[0].GoogleDriveID == "" {
		t.Fatalf("drive file id missing")
	}
}

func TestUploadDriveCachedRootNotResurfaced(t *testing.T) {
	u := testUploader(t)
	u.NewDrive = func(ctx context.Context, tokens models.GoogleDriveTokens) (driveWriter, error) {
		return &fakeDrive{rootID: "ignored"}, nil
	}
	user := UserStorage{
		DriveTokens:   models.GoogleDriveTokens{AccessToken: "tok"},
		DriveFolderID: "cached-root",
	}
	res, err := u.Upload(context.Background(), BackendGoogleDrive, user, UploadContext{}, inputs("a.mp4"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.DriveFolderID != "" {
		t.Fatalf("cached root should not be resurfaced, got %q", res.DriveFolderID)
	}
}

func TestUploadDriveFallbackToLocal(t *testing.T) {
	u := testUploader(t)
	u.NewDrive = func(ctx context.Context, tokens models.GoogleDriveTokens) (driveWriter, error) {
		return &fakeDrive{rootID: "root", putFail: true}, nil
	}
	user := UserStorage{DriveTokens: models.GoogleDriveTokens{AccessToken: "tok"}}
	res, err := u.Upload(context.Background(), BackendGoogleDrive, user, UploadContext{}, inputs("a.mp4", "b.mp4"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	for i, d := range res.Descriptors {
		if d.Source != models.SourceLocal {
			t.Fatalf("descriptor %d source = %q, want local fallback", i, d.Source)
		}
	}
}

func TestRemoveDeletesLocalFiles(t *testing.T) {
	u := testUploader(t)
	res, err := u.uploadLocal(inputs("a.mp4"))
	if err != nil {
		t.Fatalf("uploadLocal: %v", err)
	}
	d := res.Descriptors[0]
	path := filepath.Join(u.Local.Dir, d.Filename)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("uploaded file missing before Remove: %v", err)
	}

	u.Remove(context.Background(), UserStorage{}, []models.MediaDescriptor{d})

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still present after Remove")
	}
}
