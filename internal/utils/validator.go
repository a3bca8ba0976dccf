package utils

import (
	"mime/multipart"
	"strings"

	"github.com/kinhub/kinhub/internal/apperr"
)

var allowedTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
}

func ValidateFileHeader(h *multipart.FileHeader, maxSizeMB int) error {
	if h.Size == 0 {
		return apperr.Validation("empty file %s", h.Filename)
	}
	if h.Size > int64(maxSizeMB)*1024*1024 {
		return apperr.Validation("file %s exceeds the %dMB limit", h.Filename, maxSizeMB)
	}
	ct := h.Header.Get("Content-Type")
	if !allowedTypes[ct] {
		return apperr.Validation("unsupported content type %s", ct)
	}
	return nil
}

// MediaType maps a MIME type to the descriptor type tag.
func MediaType(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "image"
}
