package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	maxClickableText = 50
	selectorTextLen  = 20
)

// ClickableElement is a candidate trigger for a navigation link.
type ClickableElement struct {
	Text     string `json:"text"`
	Type     string `json:"type"`
	Selector string `json:"selector"`
	TagName  string `json:"tagName"`
}

var clickableClasses = map[string]bool{
	"btn":         true,
	"button":      true,
	"clickable":   true,
	"interactive": true,
	"click":       true,
}

// ClickableElements lists the buttons and links in a page's markup, first occurrence
// of each label only.
func (s *PageService) ClickableElements(ctx context.Context, id string) ([]ClickableElement, error) {
	page, err := s.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	elements, err := findClickableElements(page.HTML)
	if err != nil {
		s.log.Warn().Err(err).Str("page_id", id).Msg("failed to parse page html")
		return nil, invalid("html", "page markup could not be parsed")
	}
	return elements, nil
}

func findClickableElements(markup string) ([]ClickableElement, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	elements := make([]ClickableElement, 0)
	seen := make(map[string]bool)
	walkElements(doc, func(n *html.Node) {
		kind, ok := clickableKind(n)
		if !ok {
			return
		}
		text := nodeText(n)
		if n.DataAtom == atom.Input {
			text = strings.TrimSpace(attr(n, "value"))
		}
		if text == "" || utf8.RuneCountInString(text) >= maxClickableText || seen[text] {
			return
		}
		seen[text] = true
		elements = append(elements, ClickableElement{
			Text:     text,
			Type:     kind,
			Selector: uniqueSelector(n, text),
			TagName:  n.Data,
		})
	})
	return elements, nil
}

// clickableKind classifies n as a "link" or "button" trigger.
func clickableKind(n *html.Node) (string, bool) {
	switch n.DataAtom {
	case atom.A:
		return "link", true
	case atom.Button:
		return "button", true
	case atom.Input:
		t := strings.ToLower(attr(n, "type"))
		return "button", t == "submit" || t == "button"
	}

	switch strings.ToLower(attr(n, "role")) {
	case "link":
		return "link", true
	case "button":
		return "button", true
	}
	if hasAttr(n, "onclick") || hasAttr(n, "data-action") || hasAttr(n, "data-click") {
		return "button", true
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		if clickableClasses[class] {
			return "button", true
		}
	}
	return "", false
}

// uniqueSelector prefers #id, then the first class, then tag:contains("text").
func uniqueSelector(n *html.Node, text string) string {
	if id := strings.TrimSpace(attr(n, "id")); id != "" {
		return "#" + id
	}
	if classes := strings.Fields(attr(n, "class")); len(classes) > 0 {
		return "." + classes[0]
	}
	runes := []rune(text)
	if len(runes) > selectorTextLen {
		runes = runes[:selectorTextLen]
	}
	return fmt.Sprintf("%s:contains(%q)", n.Data, string(runes))
}

// simpleSelector is a single compound selector: tag, #id and .class parts.
type simpleSelector struct {
	tag     string
	id      string
	classes []string
}

func parseSimpleSelector(raw string) (simpleSelector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return simpleSelector{}, errors.New("empty selector")
	}
	if strings.ContainsAny(raw, " >+~[]:,*") {
		return simpleSelector{}, fmt.Errorf("unsupported selector %q", raw)
	}

	var sel simpleSelector
	i := 0
	for i < len(raw) && raw[i] != '#' && raw[i] != '.' {
		i++
	}
	sel.tag = strings.ToLower(raw[:i])
	for i < len(raw) {
		marker := raw[i]
		j := i + 1
		for j < len(raw) && raw[j] != '#' && raw[j] != '.' {
			j++
		}
		part := raw[i+1 : j]
		if part == "" {
			return simpleSelector{}, fmt.Errorf("unsupported selector %q", raw)
		}
		if marker == '#' {
			sel.id = part
		} else {
			sel.classes = append(sel.classes, part)
		}
		i = j
	}
	return sel, nil
}

func (sel simpleSelector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if sel.tag != "" && n.Data != sel.tag {
		return false
	}
	if sel.id != "" && attr(n, "id") != sel.id {
		return false
	}
	if len(sel.classes) > 0 {
		have := make(map[string]bool)
		for _, class := range strings.Fields(attr(n, "class")) {
			have[class] = true
		}
		for _, class := range sel.classes {
			if !have[class] {
				return false
			}
		}
	}
	return true
}

// extractFragment renders the first element in markup matching selector.
func extractFragment(markup, selector string) (string, bool, error) {
	sel, err := parseSimpleSelector(selector)
	if err != nil {
		return "", false, err
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", false, err
	}

	var found *html.Node
	walkElements(doc, func(n *html.Node) {
		if found == nil && sel.matches(n) {
			found = n
		}
	})
	if found == nil {
		return "", false, nil
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, found); err != nil {
		return "", false, err
	}
	return buf.String(), true, nil
}

func walkElements(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walkElements(child, visit)
	}
}

// nodeText collapses the element's text content to single spaces.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
