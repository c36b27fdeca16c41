package service

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	videoLinePattern   = regexp.MustCompile(`^<?((?:https?://)?\S+?)>?$`)
	videoSrcPattern    = regexp.MustCompile(`^https://(?:www\.youtube\.com/embed/|player\.bilibili\.com/player\.html\?)`)
	videoTimePattern   = regexp.MustCompile(`(?i)(\d+)([hms])`)
	orderedListPattern = regexp.MustCompile(`^\d+\.\s+`)
)

// videoPlayer is an iframe embed derived from a bare video URL.
type videoPlayer struct {
	platform string
	source   string
	src      string
}

// newMarkdownSanitizer 在 UGC 策略基础上只放行已知播放器的 iframe
func newMarkdownSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class", "data-video-platform", "data-video-source").OnElements("div")
	policy.AllowAttrs("src").Matching(videoSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "loading", "referrerpolicy", "sandbox").OnElements("iframe")
	return policy
}

// embedVideoLines replaces lines holding nothing but a YouTube or Bilibili URL
// with a player. Code blocks, quotes and list items are left alone.
func embedVideoLines(markdown string) string {
	lines := strings.Split(markdown, "\n")
	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || skipVideoLine(line, trimmed) {
			continue
		}

		match := videoLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		if player, ok := videoPlayerFor(match[1]); ok {
			lines[i] = player.markup()
		}
	}
	return strings.Join(lines, "\n")
}

func fenceMarker(line string) string {
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, marker) {
			return marker
		}
	}
	return ""
}

func skipVideoLine(line, trimmed string) bool {
	if trimmed == "" || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
		return true
	}
	for _, prefix := range []string{">", "- ", "* ", "+ "} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return orderedListPattern.MatchString(trimmed)
}

func videoPlayerFor(raw string) (videoPlayer, bool) {
	if lower := strings.ToLower(raw); !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return videoPlayer{}, false
	}

	host := strings.ToLower(u.Hostname())
	var src string
	switch {
	case host == "youtu.be" || hostWithin(host, "youtube.com"):
		src = youtubeSrc(host, u)
	case hostWithin(host, "bilibili.com"):
		src = bilibiliSrc(u)
	}
	if src == "" {
		return videoPlayer{}, false
	}

	platform := "youtube"
	if strings.HasPrefix(src, "https://player.bilibili.com/") {
		platform = "bilibili"
	}
	return videoPlayer{platform: platform, source: raw, src: src}, true
}

func youtubeSrc(host string, u *url.URL) string {
	path := strings.Trim(u.Path, "/")
	var id string
	if host == "youtu.be" {
		id = path
	} else if path == "watch" {
		id = u.Query().Get("v")
	} else {
		for _, prefix := range []string{"shorts/", "embed/", "live/"} {
			if strings.HasPrefix(path, prefix) {
				id = strings.TrimPrefix(path, prefix)
				break
			}
		}
	}
	id, _, _ = strings.Cut(id, "/")
	if id == "" {
		return ""
	}

	params := url.Values{}
	params.Set("rel", "0")
	params.Set("playsinline", "1")
	if start := youtubeStart(u.Query()); start > 0 {
		params.Set("start", strconv.Itoa(start))
	}
	return "https://www.youtube.com/embed/" + url.PathEscape(id) + "?" + params.Encode()
}

// youtubeStart accepts t=90, start=90 and t=1m30s.
func youtubeStart(query url.Values) int {
	value := query.Get("start")
	if value == "" {
		value = query.Get("t")
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return seconds
	}

	total := 0
	for _, match := range videoTimePattern.FindAllStringSubmatch(value, -1) {
		n, _ := strconv.Atoi(match[1])
		switch strings.ToLower(match[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		default:
			total += n
		}
	}
	return total
}

func bilibiliSrc(u *url.URL) string {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] != "video" || segments[1] == "" {
		return ""
	}

	params := url.Values{}
	id := segments[1]
	switch lower := strings.ToLower(id); {
	case strings.HasPrefix(lower, "bv"):
		params.Set("bvid", id)
	case strings.HasPrefix(lower, "av"):
		params.Set("aid", strings.TrimPrefix(lower, "av"))
	default:
		return ""
	}
	page := 1
	if p, err := strconv.Atoi(u.Query().Get("p")); err == nil && p > 0 {
		page = p
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("autoplay", "0")
	return "https://player.bilibili.com/player.html?" + params.Encode()
}

func (p videoPlayer) markup() string {
	// bilibili 的播放器会尝试跳转顶层页面
	sandbox := ""
	if p.platform == "bilibili" {
		sandbox = ` sandbox="allow-scripts allow-same-origin allow-presentation"`
	}
	return fmt.Sprintf(
		`<div class="video-embed" data-video-platform="%s" data-video-source="%s">`+
			`<iframe src="%s" title="%s video player" loading="lazy" allow="clipboard-write; encrypted-media; picture-in-picture" allowfullscreen referrerpolicy="strict-origin-when-cross-origin"%s></iframe>`+
			`</div>`,
		p.platform,
		html.EscapeString(p.source),
		html.EscapeString(p.src),
		p.platform,
		sandbox,
	)
}

func hostWithin(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
