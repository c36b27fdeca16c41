package handler

import (
	"net/http"
	"testing"

	"github.com/pageflow/internal/service"
)

func TestExportSiteEndpoint(t *testing.T) {
	api, _ := setupTestAPI(t)

	w := perform(t, api.ExportSite, testRequest{
		method: http.MethodPost,
		path:   "/api/export",
		body:   map[string]interface{}{"includeLiveOnly": true},
		actor:  &testMaker,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if result := decode[service.ExportResult](t, w); result.Success {
		t.Fatalf("expected unsuccessful export without live pages, got %+v", result)
	}

	createTestPage(t, api, "Exported")
	w = perform(t, api.ExportSite, testRequest{
		method: http.MethodPost,
		path:   "/api/export",
		body:   map[string]interface{}{"exportDirectory": "out", "generateSitemap": true},
		actor:  &testMaker,
	})
	result := decode[service.ExportResult](t, w)
	if !result.Success || result.FileCount != 2 {
		t.Fatalf("expected page and sitemap to be written, got %+v", result)
	}
}

func TestExportSiteRejectsEscapingDirectory(t *testing.T) {
	api, _ := setupTestAPI(t)
	createTestPage(t, api, "Exported")

	w := perform(t, api.ExportSite, testRequest{
		method: http.MethodPost,
		path:   "/api/export",
		body:   map[string]interface{}{"exportDirectory": "../outside"},
		actor:  &testMaker,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
