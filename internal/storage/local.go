package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kinhub/kinhub/internal/utils"
)

// LocalStore writes upload buffers under a fixed directory and serves them
// back through the static /uploads route.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes data under a generated collision-resistant filename and
// returns (filename, fetchable URL).
func (s *LocalStore) Save(originalName string, data []byte) (string, string, error) {
	filename := utils.UniqueFilename(originalName)
	path := filepath.Join(s.Dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", filename, err)
	}
	return filename, s.URLFor(filename), nil
}

// SaveThumb writes a thumbnail next to its original as <filename>_thumb.jpg.
func (s *LocalStore) SaveThumb(filename string, data []byte) (string, error) {
	thumbName := filename + "_thumb.jpg"
	if err := os.WriteFile(filepath.Join(s.Dir, thumbName), data, 0o644); err != nil {
		return "", err
	}
	return s.URLFor(thumbName), nil
}

func (s *LocalStore) URLFor(filename string) string {
	return s.BaseURL + "/uploads/" + filename
}

// Delete removes a stored file. Missing files are not an error; deletion is
// best effort.
func (s *LocalStore) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
