package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/kinhub/kinhub/internal/apperr"
)

func newUploadApp(maxSizeMB int) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          apperr.FiberHandler(zap.NewNop().Sugar()),
	})
	app.Post("/upload", func(c *fiber.Ctx) error {
		files, err := readUploadedFiles(c, maxSizeMB)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"count": len(files)})
	})
	return app
}

func multipartFile(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func postUpload(t *testing.T, app *fiber.App, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp
}

func TestUploadOversizedFileIsBadRequest(t *testing.T) {
	app := newUploadApp(1)
	body, ct := multipartFile(t, "big.png", "image/png", bytes.Repeat([]byte{0xAB}, 2*1024*1024))
	resp := postUpload(t, app, body, ct)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadUnsupportedTypeIsBadRequest(t *testing.T) {
	app := newUploadApp(10)
	body, ct := multipartFile(t, "doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	resp := postUpload(t, app, body, ct)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadMissingFilesIsBadRequest(t *testing.T) {
	app := newUploadApp(10)
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("title", "no files here")
	_ = w.Close()
	resp := postUpload(t, app, &buf, w.FormDataContentType())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadValidFileAccepted(t *testing.T) {
	app := newUploadApp(10)
	body, ct := multipartFile(t, "pic.png", "image/png", []byte{0x89, 0x50, 0x4E, 0x47})
	resp := postUpload(t, app, body, ct)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
