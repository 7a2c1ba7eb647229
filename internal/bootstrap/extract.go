package bootstrap

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"

	"github.com/nao1215/ucomment/internal/model"
)

// Payload locates the initial-data script in an HTML document and returns its
// JSON text with the fixed-length prefix and the trailing character cut off.
func Payload(r io.Reader, marker string, prefixLen int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %w", ErrTokenNotFound, err)
	}

	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, marker) {
			script = strings.TrimSpace(text)
			return false
		}
		return true
	})
	if script == "" {
		return "", fmt.Errorf("%w: no script contains %q", ErrTokenNotFound, marker)
	}
	if len(script) <= prefixLen+1 {
		return "", fmt.Errorf("%w: script shorter than its prefix", ErrTokenNotFound)
	}
	return script[prefixLen : len(script)-1], nil
}

// Decode parses payload as generic JSON, retrying with the JSON5 decoder
// when strict decoding fails.
func Decode(payload string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err == nil {
		return data, nil
	}
	data = nil
	if err := json5.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %w", ErrTokenNotFound, err)
	}
	return data, nil
}

// FindToken walks data["engagementPanels"] in order. For each panel the sort
// sub-menu is consulted before the content section; the first non-empty
// token wins.
func FindToken(data map[string]any) (model.Token, error) {
	panels, _ := data["engagementPanels"].([]any)
	for _, panel := range panels {
		if tok, ok := subMenuToken(panel); ok {
			return tok, nil
		}
		if tok, ok := contentToken(panel); ok {
			return tok, nil
		}
	}
	return "", ErrTokenNotFound
}

func subMenuToken(panel any) (model.Token, bool) {
	return tokenAt(panel,
		"engagementPanelSectionListRenderer", "header", "engagementPanelTitleHeaderRenderer",
		"menu", "sortFilterSubMenuRenderer", "subMenuItems", 0,
		"serviceEndpoint", "continuationCommand", "token")
}

func contentToken(panel any) (model.Token, bool) {
	section, ok := lookup(panel,
		"engagementPanelSectionListRenderer", "content", "sectionListRenderer", "contents", 0,
		"itemSectionRenderer", "contents")
	if !ok {
		return "", false
	}

	items, isList := section.([]any)
	if !isList {
		items = []any{section}
	}
	for _, item := range items {
		if tok, ok := tokenAt(item, "continuationItemRenderer", "continuationEndpoint", "continuationCommand", "token"); ok {
			return tok, true
		}
	}
	return "", false
}

func tokenAt(v any, path ...any) (model.Token, bool) {
	leaf, ok := lookup(v, path...)
	if !ok {
		return "", false
	}
	s, ok := leaf.(string)
	if !ok || s == "" {
		return "", false
	}
	return model.Token(s), true
}

// lookup follows path through nested maps (string keys) and slices (int
// indexes).
func lookup(v any, path ...any) (any, bool) {
	cur := v
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[key]; !ok {
				return nil, false
			}
		case int:
			s, ok := cur.([]any)
			if !ok || key < 0 || key >= len(s) {
				return nil, false
			}
			cur = s[key]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}
