package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pageflow/internal/db"
)

func TestRollbackFromLiveRestoresContentAndReturnsToDraft(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	page := env.createPage(t, "Pricing", "<p>v0</p>")

	if _, err := env.pages.UpdatePage(ctx, page.ID, PageUpdate{HTML: ptr("<p>v1</p>")}, maker); err != nil {
		t.Fatalf("UpdatePage returned error: %v", err)
	}
	live := env.moveTo(t, page, db.StateLive)
	if live.HTML != "<p>v1</p>" {
		t.Fatalf("expected live html v1, got %q", live.HTML)
	}

	versions, err := env.pages.ListVersions(ctx, page.ID)
	if err != nil {
		t.Fatalf("ListVersions returned error: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("expected one version before rollback, got %d", len(versions))
	}
	v1 := versions[0]

	restored, target, err := env.pages.Rollback(ctx, page.ID, v1.ID, maker)
	if err != nil {
		t.Fatalf("Rollback returned error: %v", err)
	}
	if target.ID != v1.ID {
		t.Fatalf("expected target version %s, got %s", v1.ID, target.ID)
	}
	if restored.HTML != "<p>v0</p>" || restored.Name != "Pricing" {
		t.Fatalf("expected v0 content restored, got %+v", restored)
	}
	if restored.State != db.StateDraft {
		t.Fatalf("expected Draft after rollback, got %s", restored.State)
	}
	if restored.PublishAt == nil {
		t.Fatal("expected rollback to leave workflow timestamps alone")
	}

	versions, err = env.pages.ListVersions(ctx, page.ID)
	if err != nil {
		t.Fatalf("ListVersions returned error: %v", err)
	}
	got := make([]int, 0, len(versions))
	for _, version := range versions {
		got = append(got, version.VersionNumber)
	}
	if diff := cmp.Diff([]int{2, 1}, got); diff != "" {
		t.Fatalf("unexpected version numbers (-want +got):\n%s", diff)
	}

	preRollback := versions[0]
	if preRollback.HTML != "<p>v1</p>" || preRollback.State != db.StateLive {
		t.Fatalf("expected pre-rollback snapshot of live v1, got %+v", preRollback)
	}
	if preRollback.ChangeDescription == nil || *preRollback.ChangeDescription != "Rollback to version 1" {
		t.Fatalf("unexpected change description %v", preRollback.ChangeDescription)
	}

	// Rolling back to the pre-rollback snapshot brings v1 back.
	again, _, err := env.pages.Rollback(ctx, page.ID, preRollback.ID, maker)
	if err != nil {
		t.Fatalf("second Rollback returned error: %v", err)
	}
	if again.HTML != "<p>v1</p>" {
		t.Fatalf("expected v1 html after second rollback, got %q", again.HTML)
	}
}

func TestRollbackRejectsVersionOfAnotherPage(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	first := env.createPage(t, "First", "<p>a</p>")
	second := env.createPage(t, "Second", "<p>b</p>")

	if _, err := env.pages.UpdatePage(ctx, first.ID, PageUpdate{HTML: ptr("<p>a2</p>")}, maker); err != nil {
		t.Fatalf("UpdatePage returned error: %v", err)
	}
	versions, err := env.pages.ListVersions(ctx, first.ID)
	if err != nil || len(versions) != 1 {
		t.Fatalf("expected one version, got %d (%v)", len(versions), err)
	}

	_, _, err = env.pages.Rollback(ctx, second.ID, versions[0].ID, maker)
	if !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}

	stored, err := env.pages.GetPage(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetPage returned error: %v", err)
	}
	if stored.HTML != "<p>b</p>" {
		t.Fatalf("expected second page untouched, got %q", stored.HTML)
	}
	others, err := env.pages.ListVersions(ctx, second.ID)
	if err != nil {
		t.Fatalf("ListVersions returned error: %v", err)
	}
	if len(others) != 0 {
		t.Fatalf("expected no snapshot for failed rollback, got %d", len(others))
	}
}

func TestRollbackUnknownVersion(t *testing.T) {
	env := setupPageServiceTest(t)
	page := env.createPage(t, "Lonely", "")

	_, _, err := env.pages.Rollback(context.Background(), page.ID, "missing", maker)
	if !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	page := env.createPage(t, "Docs", "<p>a</p>")

	if _, err := env.pages.UpdatePage(ctx, page.ID, PageUpdate{Name: ptr("Docs v2")}, maker); err != nil {
		t.Fatalf("UpdatePage returned error: %v", err)
	}
	versions, err := env.pages.ListVersions(ctx, page.ID)
	if err != nil || len(versions) != 1 {
		t.Fatalf("expected one version, got %d (%v)", len(versions), err)
	}

	version, err := env.pages.GetVersion(ctx, versions[0].ID)
	if err != nil {
		t.Fatalf("GetVersion returned error: %v", err)
	}
	if version.Name != "Docs" {
		t.Fatalf("expected snapshot name Docs, got %q", version.Name)
	}

	if _, err := env.pages.GetVersion(ctx, "missing"); !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}
