package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestLocalStoreSaveAndURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:5000/")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	filename, url, err := store.Save("holiday photo.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// <millis>-<8 hex chars><ext>
	pattern := regexp.MustCompile(`^\d+-[0-9a-f]{8}\.png$`)
	if !pattern.MatchString(filename) {
		t.Fatalf("unexpected filename %q", filename)
	}
	if want := "http://localhost:5000/uploads/" + filename; url != want {
		t.Fatalf("url = %q, want %q", url, want)
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("round trip mismatch: %q", data)
	}
}

func TestLocalStoreDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:5000")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	filename, _, err := store.Save("a.jpg", []byte("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(filename); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filename)); !os.IsNotExist(err) {
		t.Fatalf("file still present after delete")
	}
	// deleting again is not an error
	if err := store.Delete(filename); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestLocalStoreDistinctFilenames(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:5000")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		filename, _, err := store.Save("same-name.jpg", []byte("x"))
		if err != nil {
			t.Fatalf("Save #%d: %v", i, err)
		}
		if seen[filename] {
			t.Fatalf("filename collision: %q", filename)
		}
		if !strings.HasSuffix(filename, ".jpg") {
			t.Fatalf("extension lost: %q", filename)
		}
		seen[filename] = true
	}
}
