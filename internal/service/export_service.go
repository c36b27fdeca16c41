package service

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/klauspost/compress/zip"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/rbac"
	"github.com/rs/zerolog"
	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/css"
	"github.com/tdewolff/minify/html"
	"github.com/tdewolff/minify/js"
)

// Export formats.
const (
	ExportFormatStatic = "static"
	ExportFormatZip    = "zip"
)

var validJS = regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$")

// ExportOptions controls a static site export.
type ExportOptions struct {
	Format          string `json:"format"`
	SiteName        string `json:"siteName"`
	ExportDirectory string `json:"exportDirectory"`
	IncludeLiveOnly bool   `json:"includeLiveOnly"`
	GenerateSitemap bool   `json:"generateSitemap"`
	MinifyAssets    bool   `json:"minifyAssets"`
}

// ExportResult summarises an export run. An empty page set is reported as an
// unsuccessful result rather than an error.
type ExportResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ExportPath string `json:"exportPath,omitempty"`
	FileCount  int    `json:"fileCount"`
	TotalSize  int64  `json:"totalSize"`
}

type exportFile struct {
	name string
	body []byte
}

// ExportService writes pages out as standalone HTML files.
type ExportService struct {
	pages   *PageService
	root    string
	baseURL string
	log     zerolog.Logger
	minify  *minify.M
}

// NewExportService confines every export below root. baseURL prefixes sitemap entries.
func NewExportService(pages *PageService, root, baseURL string) *ExportService {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFuncRegexp(validJS, js.Minify)

	return &ExportService{
		pages:   pages,
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     pages.log.With().Str("component", "export").Logger(),
		minify:  m,
	}
}

// Export checks the actor's permission and runs the export.
func (s *ExportService) Export(ctx context.Context, opts ExportOptions, actor Actor) (*ExportResult, error) {
	if err := actor.Authorize(rbac.ActionExport); err != nil {
		return nil, err
	}
	return s.Run(ctx, opts)
}

// Run performs the export without an actor. It backs scheduled exports.
func (s *ExportService) Run(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = ExportFormatStatic
	}
	if format != ExportFormatStatic && format != ExportFormatZip {
		return nil, invalid("format", "unsupported export format")
	}

	root, target, err := s.resolveDirectory(opts.ExportDirectory)
	if err != nil {
		return nil, err
	}
	if format == ExportFormatZip {
		target += ".zip"
	}

	var pages []db.Page
	if opts.IncludeLiveOnly {
		pages, err = s.pages.ListPagesByState(ctx, db.StateLive)
	} else {
		pages, err = s.pages.ListPages(ctx)
	}
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		// 上一次导出的结果不能继续对外提供
		if err := os.RemoveAll(target); err != nil {
			s.log.Error().Err(err).Str("path", target).Msg("failed to remove stale export")
			return nil, err
		}
		return &ExportResult{Success: false, Message: "No pages to export"}, nil
	}

	files, err := s.buildFiles(pages, opts)
	if err != nil {
		return nil, err
	}

	var result *ExportResult
	if format == ExportFormatZip {
		result, err = writeZip(target, files)
	} else {
		result, err = writeStatic(target, files)
	}
	if err != nil {
		s.log.Error().Err(err).Str("path", target).Msg("export failed")
		return nil, err
	}

	result.ExportPath = relativeExportPath(root, target)
	s.log.Info().
		Str("path", target).
		Str("format", format).
		Int("files", result.FileCount).
		Int64("bytes", result.TotalSize).
		Msg("export finished")
	return result, nil
}

// resolveDirectory keeps the export below the configured root. It returns the
// absolute root and target.
func (s *ExportService) resolveDirectory(requested string) (string, string, error) {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = "site"
	}
	if filepath.IsAbs(name) {
		return "", "", invalid("exportDirectory", "export directory must be relative")
	}

	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", "", err
	}
	target := filepath.Join(root, name)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", invalid("exportDirectory", "export directory escapes the export root")
	}
	return root, target, nil
}

// relativeExportPath hides the server filesystem layout from API clients.
func relativeExportPath(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return filepath.Base(target)
	}
	return filepath.ToSlash(rel)
}

func (s *ExportService) buildFiles(pages []db.Page, opts ExportOptions) ([]exportFile, error) {
	names := exportFilenames(pages)
	files := make([]exportFile, 0, len(pages)+1)

	for i, page := range pages {
		body := []byte(combinePageAssets(page.HTML, page.CSS, page.JS))
		if opts.MinifyAssets {
			minified, err := s.minify.Bytes("text/html", body)
			if err != nil {
				return nil, fmt.Errorf("minify %s: %w", names[i], err)
			}
			body = minified
		}
		files = append(files, exportFile{name: names[i], body: body})
	}

	if opts.GenerateSitemap {
		sitemap, err := buildSitemap(s.sitemapBase(opts.SiteName), pages, names)
		if err != nil {
			return nil, err
		}
		files = append(files, exportFile{name: "sitemap.xml", body: sitemap})
	}
	return files, nil
}

func (s *ExportService) sitemapBase(siteName string) string {
	siteName = strings.TrimSpace(siteName)
	if siteName != "" {
		return "https://" + slug.Make(siteName) + ".com"
	}
	return s.baseURL
}

// exportFilenames derives a unique <slug>.html per page, in page order.
func exportFilenames(pages []db.Page) []string {
	taken := make(map[string]bool, len(pages))
	names := make([]string, len(pages))
	for i, page := range pages {
		base := slug.Make(page.Name)
		if base == "" {
			base = "page-" + shortID(page.ID)
		}
		candidate := base
		for n := 2; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		taken[candidate] = true
		names[i] = candidate + ".html"
	}
	return names
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// combinePageAssets inlines css before </head> and js before </body>, falling back to
// the start and end of the document.
func combinePageAssets(markup, styles, script string) string {
	combined := markup
	if strings.TrimSpace(styles) != "" {
		tag := "<style>\n" + styles + "\n</style>"
		if idx := strings.Index(combined, "</head>"); idx >= 0 {
			combined = combined[:idx] + tag + "\n" + combined[idx:]
		} else {
			combined = tag + "\n" + combined
		}
	}
	if strings.TrimSpace(script) != "" {
		tag := "<script>\n" + script + "\n</script>"
		if idx := strings.LastIndex(combined, "</body>"); idx >= 0 {
			combined = combined[:idx] + tag + "\n" + combined[idx:]
		} else {
			combined = combined + "\n" + tag
		}
	}
	return combined
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func buildSitemap(baseURL string, pages []db.Page, names []string) ([]byte, error) {
	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for i, page := range pages {
		loc := baseURL + "/" + names[i]
		if names[i] == "home.html" || names[i] == "index.html" {
			loc = baseURL
		}
		lastMod := page.UpdatedAt
		if lastMod.IsZero() {
			lastMod = page.CreatedAt
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        loc,
			LastMod:    lastMod.UTC().Format(time.DateOnly),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// writeStatic builds the site in a staging directory next to dir and swaps it in,
// so files from earlier runs never survive.
func writeStatic(dir string, files []exportFile) (*ExportResult, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, err
	}
	staging, err := os.MkdirTemp(filepath.Dir(dir), "."+filepath.Base(dir)+"-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(staging)

	var total int64
	for _, file := range files {
		if err := os.WriteFile(filepath.Join(staging, file.name), file.body, 0o644); err != nil {
			return nil, err
		}
		total += int64(len(file.body))
	}
	if err := os.Chmod(staging, 0o755); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(dir); err != nil {
		return nil, err
	}
	if err := os.Rename(staging, dir); err != nil {
		return nil, err
	}

	return &ExportResult{
		Success:    true,
		Message:    fmt.Sprintf("Successfully exported %d files", len(files)),
		ExportPath: dir,
		FileCount:  len(files),
		TotalSize:  total,
	}, nil
}

func writeZip(path string, files []exportFile) (*ExportResult, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	for _, file := range files {
		w, err := archive.Create(file.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(file.body); err != nil {
			return nil, err
		}
	}
	if err := archive.Close(); err != nil {
		return nil, err
	}

	staging := path + ".tmp"
	if err := os.WriteFile(staging, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	if err := os.Rename(staging, path); err != nil {
		_ = os.Remove(staging)
		return nil, err
	}

	return &ExportResult{
		Success:    true,
		Message:    fmt.Sprintf("Successfully exported %d files", len(files)),
		ExportPath: path,
		FileCount:  len(files),
		TotalSize:  int64(buf.Len()),
	}, nil
}
