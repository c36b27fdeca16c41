package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
	"github.com/pageflow/internal/db"
)

func TestExportStaticSiteWithSitemap(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	root := t.TempDir()

	home, err := env.pages.CreatePage(ctx, PageInput{
		Name: "Home",
		HTML: "<html><head><title>Home</title></head><body><h1>Welcome</h1></body></html>",
		CSS:  "h1{color:blue}",
		JS:   "console.log(1)",
	}, maker)
	if err != nil {
		t.Fatalf("CreatePage returned error: %v", err)
	}
	env.moveTo(t, home, db.StateLive)
	env.createPage(t, "Draft Only", "<p>draft</p>")

	exporter := NewExportService(env.pages, root, "https://pages.example.com/")
	result, err := exporter.Export(ctx, ExportOptions{
		ExportDirectory: "site",
		IncludeLiveOnly: true,
		GenerateSitemap: true,
	}, maker)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if !result.Success || result.FileCount != 2 {
		t.Fatalf("unexpected result %+v", result)
	}

	entries, err := os.ReadDir(filepath.Join(root, "site"))
	if err != nil {
		t.Fatalf("failed to read export dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	var total int64
	for _, entry := range entries {
		names = append(names, entry.Name())
		info, err := entry.Info()
		if err != nil {
			t.Fatalf("stat %s: %v", entry.Name(), err)
		}
		total += info.Size()
	}
	if diff := cmp.Diff([]string{"home.html", "sitemap.xml"}, names); diff != "" {
		t.Fatalf("unexpected export files (-want +got):\n%s", diff)
	}
	if total != result.TotalSize {
		t.Fatalf("expected total size %d, got %d", total, result.TotalSize)
	}

	page, err := os.ReadFile(filepath.Join(root, "site", "home.html"))
	if err != nil {
		t.Fatalf("failed to read exported page: %v", err)
	}
	doc := string(page)
	if strings.Index(doc, "h1{color:blue}") > strings.Index(doc, "</head>") {
		t.Fatalf("expected css before </head>:\n%s", doc)
	}
	if strings.Index(doc, "console.log(1)") > strings.Index(doc, "</body>") {
		t.Fatalf("expected js before </body>:\n%s", doc)
	}

	sitemap, err := os.ReadFile(filepath.Join(root, "site", "sitemap.xml"))
	if err != nil {
		t.Fatalf("failed to read sitemap: %v", err)
	}
	if !strings.Contains(string(sitemap), "<loc>https://pages.example.com</loc>") {
		t.Fatalf("expected home page at site root in sitemap:\n%s", sitemap)
	}
}

func TestExportZipDeduplicatesFilenames(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	root := t.TempDir()
	env.createPage(t, "Contact Us", "<p>one</p>")
	env.createPage(t, "Contact us!", "<p>two</p>")

	exporter := NewExportService(env.pages, root, "https://pages.example.com")
	result, err := exporter.Export(ctx, ExportOptions{
		Format:          ExportFormatZip,
		ExportDirectory: "bundle",
		MinifyAssets:    true,
	}, maker)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if result.ExportPath != "bundle.zip" {
		t.Fatalf("expected export path relative to the root, got %q", result.ExportPath)
	}

	archive, err := zip.OpenReader(filepath.Join(root, result.ExportPath))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	names := make(map[string]bool)
	for _, file := range archive.File {
		names[file.Name] = true
	}
	if len(names) != 2 || !names["contact-us.html"] || !names["contact-us-2.html"] {
		t.Fatalf("unexpected archive entries %v", names)
	}
}

func TestExportWithoutPages(t *testing.T) {
	env := setupPageServiceTest(t)
	exporter := NewExportService(env.pages, t.TempDir(), "")

	result, err := exporter.Export(context.Background(), ExportOptions{IncludeLiveOnly: true}, maker)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if result.Success || result.Message != "No pages to export" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestExportRemovesPagesNoLongerLive(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	root := t.TempDir()
	home := env.moveTo(t, env.createPage(t, "Home", "<p>home</p>"), db.StateLive)
	promo := env.moveTo(t, env.createPage(t, "Promo", "<p>sale</p>"), db.StateLive)

	exporter := NewExportService(env.pages, root, "")
	opts := ExportOptions{ExportDirectory: "nightly/site", IncludeLiveOnly: true}
	first, err := exporter.Run(ctx, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if first.FileCount != 2 || first.ExportPath != "nightly/site" {
		t.Fatalf("unexpected first result %+v", first)
	}

	if _, err := env.pages.MarkExpired(ctx, promo.ID, maker); err != nil {
		t.Fatalf("MarkExpired returned error: %v", err)
	}
	second, err := exporter.Run(ctx, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if second.FileCount != 1 {
		t.Fatalf("expected one file, got %+v", second)
	}
	if _, err := os.Stat(filepath.Join(root, "nightly", "site", "promo.html")); !os.IsNotExist(err) {
		t.Fatalf("expected expired page removed from export, stat err: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "nightly", "site", "home.html")); err != nil {
		t.Fatalf("expected live page kept: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "nightly"))
	if err != nil {
		t.Fatalf("failed to read export parent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected staging directories cleaned up, got %d entries", len(entries))
	}

	if _, err := env.pages.MoveToDraft(ctx, home.ID, maker); err != nil {
		t.Fatalf("MoveToDraft returned error: %v", err)
	}
	empty, err := exporter.Run(ctx, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if empty.Success {
		t.Fatalf("expected unsuccessful result, got %+v", empty)
	}
	if _, err := os.Stat(filepath.Join(root, "nightly", "site")); !os.IsNotExist(err) {
		t.Fatalf("expected stale export removed, stat err: %v", err)
	}
}

func TestExportDirectoryMustStayInsideRoot(t *testing.T) {
	env := setupPageServiceTest(t)
	env.createPage(t, "Page", "")
	exporter := NewExportService(env.pages, t.TempDir(), "")

	for _, dir := range []string{"../escape", "/tmp/abs", "a/../../b"} {
		_, err := exporter.Export(context.Background(), ExportOptions{ExportDirectory: dir}, maker)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", dir, err)
		}
	}
}

func TestCombinePageAssetsWithoutDocumentShell(t *testing.T) {
	got := combinePageAssets("<p>x</p>", "p{}", "run()")
	want := "<style>\np{}\n</style>\n<p>x</p>\n<script>\nrun()\n</script>"
	if got != want {
		t.Fatalf("unexpected document:\n%s", got)
	}
}
