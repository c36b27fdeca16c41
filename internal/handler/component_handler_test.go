package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/service"
)

func TestGetClickableElements(t *testing.T) {
	api, _ := setupTestAPI(t)
	page := createTestPage(t, api, "Home")

	w := perform(t, api.GetClickableElements, testRequest{method: http.MethodGet, path: "/", params: idParam(page.ID), actor: &testMaker})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[[]service.ClickableElement](t, w); len(got) != 0 {
		t.Fatalf("expected no clickable elements in plain page, got %+v", got)
	}

	w = perform(t, api.GetClickableElements, testRequest{method: http.MethodGet, path: "/", params: idParam("missing"), actor: &testMaker})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestComponentEndpoints(t *testing.T) {
	api, _ := setupTestAPI(t)
	source := createTestPage(t, api, "Source")
	target := createTestPage(t, api, "Target")

	w := perform(t, api.CreateComponent, testRequest{
		method: http.MethodPost,
		path:   "/api/components",
		body:   map[string]string{"name": "Intro", "sourcePageId": source.ID, "selector": "p"},
		actor:  &testMaker,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	component := decode[db.Component](t, w)
	if component.HTML != "<p>Source</p>" {
		t.Fatalf("unexpected component html %q", component.HTML)
	}

	w = perform(t, api.CreateComponent, testRequest{
		method: http.MethodPost,
		path:   "/api/components",
		body:   map[string]string{"name": "Intro", "sourcePageId": source.ID},
		actor:  &testMaker,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without selector, got %d", w.Code)
	}

	w = perform(t, api.ListComponentsBySource, testRequest{
		method: http.MethodGet,
		path:   "/",
		params: gin.Params{{Key: "pageId", Value: source.ID}},
		actor:  &testMaker,
	})
	if got := decode[[]db.Component](t, w); len(got) != 1 || got[0].ID != component.ID {
		t.Fatalf("unexpected components for source page %+v", got)
	}

	w = perform(t, api.AddPageComponent, testRequest{
		method: http.MethodPost,
		path:   "/",
		params: idParam(target.ID),
		body:   map[string]interface{}{"componentId": component.ID},
		actor:  &testMaker,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	placement := decode[db.PageComponent](t, w)

	w = perform(t, api.AddPageComponent, testRequest{
		method: http.MethodPost,
		path:   "/",
		params: idParam(target.ID),
		body:   map[string]interface{}{"componentId": "missing"},
		actor:  &testMaker,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown component, got %d", w.Code)
	}

	w = perform(t, api.ListPageComponents, testRequest{method: http.MethodGet, path: "/", params: idParam(target.ID), actor: &testMaker})
	if got := decode[[]db.PageComponent](t, w); len(got) != 1 || got[0].ID != placement.ID {
		t.Fatalf("unexpected placements %+v", got)
	}

	params := gin.Params{{Key: "id", Value: target.ID}, {Key: "placementId", Value: placement.ID}}
	w = perform(t, api.RemovePageComponent, testRequest{method: http.MethodDelete, path: "/", params: params, actor: &testMaker})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = perform(t, api.RemovePageComponent, testRequest{method: http.MethodDelete, path: "/", params: params, actor: &testMaker})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second remove, got %d", w.Code)
	}

	w = perform(t, api.DeleteComponent, testRequest{method: http.MethodDelete, path: "/", params: idParam(component.ID), actor: &testMaker})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = perform(t, api.DeleteComponent, testRequest{method: http.MethodDelete, path: "/", params: idParam(component.ID), actor: &testMaker})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}

	w = perform(t, api.ListComponents, testRequest{method: http.MethodGet, path: "/api/components", actor: &testMaker})
	if got := decode[[]db.Component](t, w); len(got) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(got))
	}
}
