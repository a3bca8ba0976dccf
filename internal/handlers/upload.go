package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/storage"
	"github.com/kinhub/kinhub/internal/utils"
)

// readUploadedFiles pulls the "files" field out of a multipart form, enforces
// the size and type limits, and buffers each file.
func readUploadedFiles(c *fiber.Ctx, maxSizeMB int) ([]storage.FileInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.Validation("multipart form expected")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		// single-file clients use "file"
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		return nil, apperr.Validation("at least one file is required")
	}

	files := make([]storage.FileInput, 0, len(headers))
	for _, h := range headers {
		if err := utils.ValidateFileHeader(h, maxSizeMB); err != nil {
			return nil, err
		}
		f, err := readOne(h)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readOne(h *multipart.FileHeader) (storage.FileInput, error) {
	f, err := h.Open()
	if err != nil {
		return storage.FileInput{}, apperr.Internal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return storage.FileInput{}, apperr.Internal(err)
	}
	ct := h.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return storage.FileInput{Name: h.Filename, ContentType: ct, Data: data}, nil
}
