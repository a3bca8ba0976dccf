package utils

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/kinhub/kinhub/internal/apperr"
)

func header(contentType string, size int64) *multipart.FileHeader {
	h := &multipart.FileHeader{
		Filename: "f",
		Size:     size,
		Header:   textproto.MIMEHeader{},
	}
	h.Header.Set("Content-Type", contentType)
	return h
}

func TestValidateFileHeader(t *testing.T) {
	if err := ValidateFileHeader(header("image/png", 1024), 10); err != nil {
		t.Fatalf("valid png rejected: %v", err)
	}
	if err := ValidateFileHeader(header("video/mp4", 9*1024*1024), 10); err != nil {
		t.Fatalf("valid mp4 rejected: %v", err)
	}
	if err := ValidateFileHeader(header("image/png", 0), 10); err == nil {
		t.Fatal("empty file accepted")
	}
	if err := ValidateFileHeader(header("image/png", 11*1024*1024), 10); err == nil {
		t.Fatal("oversized file accepted")
	}
	if err := ValidateFileHeader(header("application/pdf", 1024), 10); err == nil {
		t.Fatal("pdf accepted")
	}
	if err := ValidateFileHeader(header("", 1024), 10); err == nil {
		t.Fatal("missing content type accepted")
	}
}

// Rejections must map to 400, not 500: they reach clients through the
// fiber error handler.
func TestValidateFileHeaderRejectionsAreBadRequests(t *testing.T) {
	for name, h := range map[string]*multipart.FileHeader{
		"empty":     header("image/png", 0),
		"oversized": header("image/png", 11*1024*1024),
		"pdf":       header("application/pdf", 1024),
	} {
		err := ValidateFileHeader(h, 10)
		if err == nil {
			t.Fatalf("%s accepted", name)
		}
		if got := apperr.Status(err); got != 400 {
			t.Fatalf("%s: status = %d, want 400", name, got)
		}
	}
}
