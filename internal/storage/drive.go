package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/kinhub/kinhub/internal/models"
)

const driveRootFolderName = "KinHub"

// DriveClient is a per-call Google Drive client built from one user's token
// bundle. Token refresh is performed by the oauth2 transport; RefreshedToken
// reports it so the caller can persist the new bundle instead of dropping it.
type DriveClient struct {
	svc     *drive.Service
	source  oauth2.TokenSource
	initial models.GoogleDriveTokens
}

// NewDriveClient wires the user's tokens into an auto-refreshing service.
func NewDriveClient(ctx context.Context, conf *oauth2.Config, tokens models.GoogleDriveTokens) (*DriveClient, error) {
	tok := &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Expiry:       tokens.Expiry,
	}
	source := conf.TokenSource(ctx, tok)
	svc, err := drive.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &DriveClient{svc: svc, source: source, initial: tokens}, nil
}

// RefreshedToken returns the refreshed token bundle if the transport rotated
// the access token during this client's lifetime, or nil.
func (d *DriveClient) RefreshedToken() *oauth2.Token {
	tok, err := d.source.Token()
	if err != nil {
		return nil
	}
	if tok.AccessToken == d.initial.AccessToken {
		return nil
	}
	return tok
}

// EnsureFolder finds or creates a folder by name under parentID (empty for
// Drive root) and returns its id.
func (d *DriveClient) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.folder' and trashed = false",
		escapeDriveQuery(name))
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", parentID)
	}
	list, err := d.svc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive folder lookup %q: %w", name, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}
	meta := &drive.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	created, err := d.svc.Files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive folder create %q: %w", name, err)
	}
	return created.Id, nil
}

// EnsureAppRoot returns the cached application root folder id, creating it
// once when absent. The returned id should be written back to the user
// record by the caller.
func (d *DriveClient) EnsureAppRoot(ctx context.Context, cachedID string) (string, error) {
	if cachedID != "" {
		return cachedID, nil
	}
	return d.EnsureFolder(ctx, driveRootFolderName, "")
}

// Put uploads the buffer into folderID, grants public read access, and
// returns (file id, direct-view URL).
func (d *DriveClient) Put(ctx context.Context, folderID, name, contentType string, data []byte) (string, string, error) {
	meta := &drive.File{
		Name:     name,
		Parents:  []string{folderID},
		MimeType: contentType,
	}
	created, err := d.svc.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id, webViewLink").
		Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("drive upload %q: %w", name, err)
	}
	_, err = d.svc.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("drive permission %q: %w", name, err)
	}
	return created.Id, DriveViewURL(created.Id), nil
}

// Delete removes a Drive file; callers treat failures as best effort.
func (d *DriveClient) Delete(ctx context.Context, fileID string) error {
	return d.svc.Files.Delete(fileID).Context(ctx).Do()
}

// DriveViewURL is the direct-view location for a public Drive file.
func DriveViewURL(fileID string) string {
	return "https://drive.google.com/uc?export=view&id=" + fileID
}

func escapeDriveQuery(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
