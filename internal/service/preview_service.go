package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/pageflow/internal/cache"
	"github.com/pageflow/internal/db"
	"github.com/rs/zerolog"
)

// ErrPageExpired is returned when previewing a retired page.
var ErrPageExpired = errors.New("page expired")

const navigationScript = `(function () {
  var links = %s;
  function matches(el, text) {
    var own = (el.textContent || "").trim().toLowerCase();
    return own !== "" && own === text;
  }
  function bind(el, link) {
    el.style.cursor = "pointer";
    el.addEventListener("click", function (e) {
      e.preventDefault();
      e.stopPropagation();
      window.location.href = "/preview/" + encodeURIComponent(link.target);
    });
  }
  document.addEventListener("DOMContentLoaded", function () {
    var selectors = "button, a, input[type=submit], input[type=button], [role=button], [role=link], .btn, .button, .link, [onclick], [data-action]";
    links.forEach(function (link) {
      if (link.element) {
        var byId = document.getElementById(link.element);
        if (byId) { bind(byId, link); return; }
      }
      if (!link.trigger) { return; }
      var text = link.trigger.toLowerCase();
      var found = Array.prototype.filter.call(document.querySelectorAll(selectors), function (el) {
        return matches(el, text);
      });
      found.forEach(function (el) { bind(el, link); });
    });
  });
})();`

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>{{.CSS}}</style>
</head>
<body>
{{.Body}}
<script>
{{.JS}}
</script>
{{- if .Navigation}}
<script>
{{.Navigation}}
</script>
{{- end}}
</body>
</html>
`))

type previewDocument struct {
	Title      string
	CSS        template.CSS
	Body       template.HTML
	JS         template.JS
	Navigation template.JS
}

type navigationTarget struct {
	Element string `json:"element,omitempty"`
	Trigger string `json:"trigger,omitempty"`
	Type    string `json:"type"`
	Target  string `json:"target"`
}

// PreviewService renders pages as standalone documents with working navigation.
type PreviewService struct {
	pages *PageService
	links *LinkService
	cache cache.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewPreviewService returns a preview renderer. A nil cache disables caching.
func NewPreviewService(pages *PageService, links *LinkService, ttl time.Duration) *PreviewService {
	return &PreviewService{
		pages: pages,
		links: links,
		cache: pages.cache,
		ttl:   ttl,
		log:   pages.log.With().Str("component", "preview").Logger(),
	}
}

// Render returns the preview document for the page.
func (s *PreviewService) Render(ctx context.Context, pageID string) ([]byte, error) {
	key := previewCacheKey(pageID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Str("page_id", pageID).Msg("preview cache read failed")
		}
	}

	// Held so a concurrent write cannot land between our read and the cache fill.
	unlock := s.pages.locks.Lock(pageID)
	defer unlock()

	page, err := s.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page.State == db.StateExpired {
		return nil, ErrPageExpired
	}

	links, err := s.links.OutgoingLinks(ctx, pageID)
	if err != nil {
		return nil, err
	}

	body, err := renderPreview(page, links)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("page_id", pageID).Msg("preview cache write failed")
		}
	}
	return body, nil
}

func renderPreview(page *db.Page, links []db.Link) ([]byte, error) {
	nav, err := buildNavigationScript(links)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = previewTemplate.Execute(&buf, previewDocument{
		Title:      page.Name,
		CSS:        template.CSS(page.CSS),
		Body:       template.HTML(page.HTML),
		JS:         template.JS(page.JS),
		Navigation: template.JS(nav),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildNavigationScript(links []db.Link) (string, error) {
	if len(links) == 0 {
		return "", nil
	}

	targets := make([]navigationTarget, 0, len(links))
	for _, link := range links {
		target := navigationTarget{Type: link.LinkType, Target: link.ToPageID}
		if link.FromElementID != nil {
			target.Element = *link.FromElementID
		}
		if link.TriggerText != nil {
			target.Trigger = *link.TriggerText
		}
		targets = append(targets, target)
	}

	// json.Marshal escapes <, > and & so the payload cannot close the script element.
	payload, err := json.Marshal(targets)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(navigationScript, payload), nil
}
