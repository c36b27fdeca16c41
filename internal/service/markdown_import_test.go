package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pageflow/internal/db"
)

func TestImportMarkdownCreatesSanitizedDraft(t *testing.T) {
	env := setupPageServiceTest(t)

	page, err := env.pages.ImportMarkdown(context.Background(), MarkdownImport{
		Markdown: "# Release Notes\n\n- fast\n- safe\n\n<script>alert(1)</script>",
		PageType: "article",
	}, maker)
	if err != nil {
		t.Fatalf("ImportMarkdown returned error: %v", err)
	}

	if page.Name != "Release Notes" {
		t.Fatalf("expected name from heading, got %q", page.Name)
	}
	if page.State != db.StateDraft || page.PageType != "article" {
		t.Fatalf("unexpected page %+v", page)
	}
	if !strings.Contains(page.HTML, "<li>fast</li>") {
		t.Fatalf("expected rendered list, got %q", page.HTML)
	}
	if strings.Contains(page.HTML, "<script>") {
		t.Fatalf("expected script to be stripped, got %q", page.HTML)
	}
}

func TestImportMarkdownRequiresContent(t *testing.T) {
	env := setupPageServiceTest(t)

	_, err := env.pages.ImportMarkdown(context.Background(), MarkdownImport{Name: "Empty"}, maker)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
