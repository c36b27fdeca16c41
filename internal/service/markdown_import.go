package service

import (
	"bytes"
	"context"
	"strings"

	"github.com/pageflow/internal/db"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	markdownSanitizer = newMarkdownSanitizer()
)

// MarkdownImport is a markdown document to turn into a Draft page.
type MarkdownImport struct {
	Name     string
	Markdown string
	PageType string
}

// ImportMarkdown renders the document to sanitized HTML and creates a page from it.
// When no name is given the first level-one heading is used. A line holding only a
// YouTube or Bilibili URL becomes an embedded player.
func (s *PageService) ImportMarkdown(ctx context.Context, input MarkdownImport, actor Actor) (*db.Page, error) {
	source := strings.TrimSpace(input.Markdown)
	if source == "" {
		return nil, invalid("markdown", "markdown content is required")
	}

	rendered, err := renderMarkdown(source)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = firstHeading(source)
	}

	return s.CreatePage(ctx, PageInput{
		Name:     name,
		HTML:     rendered,
		PageType: input.PageType,
	}, actor)
}

func renderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(embedVideoLines(source)), &buf); err != nil {
		return "", err
	}
	return markdownSanitizer.Sanitize(buf.String()), nil
}

func firstHeading(source string) string {
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}
