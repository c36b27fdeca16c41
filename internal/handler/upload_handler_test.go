package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/db"
)

func multipartImage(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func uploadThumbnail(t *testing.T, api *API, pageID string, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartImage(t, filename, data)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/pages/"+pageID+"/thumbnail", body)
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = idParam(pageID)
	c.Set(actorContextKey, testMaker)

	api.UploadThumbnail(c)
	return w
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadThumbnailStoresImageAndUpdatesPage(t *testing.T) {
	api, _ := setupTestAPI(t)
	page := createTestPage(t, api, "With thumb")

	w := uploadThumbnail(t, api, page.ID, "cover.bin", pngBytes(t))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[struct {
		URL  string  `json:"url"`
		Page db.Page `json:"page"`
	}](t, w)
	if !strings.HasPrefix(resp.URL, "/uploads/") || !strings.HasSuffix(resp.URL, ".png") {
		t.Fatalf("unexpected url %q", resp.URL)
	}
	if resp.Page.Thumbnail == nil || *resp.Page.Thumbnail != resp.URL {
		t.Fatalf("expected page thumbnail to be set, got %v", resp.Page.Thumbnail)
	}

	stored := filepath.Join(api.uploadDir, strings.TrimPrefix(resp.URL, "/uploads/"))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("expected uploaded file on disk: %v", err)
	}

	versions, err := api.pages.ListVersions(context.Background(), page.ID)
	if err != nil {
		t.Fatalf("ListVersions returned error: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected thumbnail change not to be versioned, got %d versions", len(versions))
	}
}

func TestUploadThumbnailRejectsNonImages(t *testing.T) {
	api, _ := setupTestAPI(t)
	page := createTestPage(t, api, "No thumb")

	w := uploadThumbnail(t, api, page.ID, "fake.png", []byte("not really a png"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUploadThumbnailForMissingPageCleansUp(t *testing.T) {
	api, _ := setupTestAPI(t)

	w := uploadThumbnail(t, api, "missing", "cover.png", pngBytes(t))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	entries, err := os.ReadDir(api.uploadDir)
	if err != nil {
		t.Fatalf("failed to read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected orphaned upload to be removed, found %d files", len(entries))
	}
}
