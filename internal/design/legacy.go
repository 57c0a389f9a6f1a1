package design

import (
	"regexp"
	"strings"
)

// legacyDesignFields are the field names the previous storefront used to
// stash extra design URLs on a record. They survive only in legacy_fields.
var legacyDesignFields = []string{
	"design_urls",
	"designUrls",
	"uploaded_files",
	"uploadedFiles",
	"canvas_designs",
	"canvasDesigns",
	"design_files",
	"designFiles",
	"all_designs",
	"image_urls",
}

var urlPattern = regexp.MustCompile(`https?://[^\s,|"'<>]+`)

// LegacyScanner extracts design URLs from the unknown-field bag of records
// imported from the previous schema.
type LegacyScanner struct {
	fields []string
}

func NewLegacyScanner() *LegacyScanner {
	return &LegacyScanner{fields: legacyDesignFields}
}

// Scan returns URLs in field order, then value order. Duplicates are kept;
// the caller de-duplicates against the rest of the record.
func (s *LegacyScanner) Scan(legacy map[string]any) []string {
	if len(legacy) == 0 {
		return nil
	}
	var out []string
	for _, field := range s.fields {
		if v, ok := legacy[field]; ok {
			out = appendURLs(out, v)
		}
	}
	return out
}

func appendURLs(out []string, v any) []string {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if strings.HasPrefix(strings.ToLower(s), "data:") {
			return append(out, s)
		}
		return append(out, extractURLs(s)...)
	case []string:
		for _, item := range val {
			out = appendURLs(out, item)
		}
	case []any:
		for _, item := range val {
			out = appendURLs(out, item)
		}
	case map[string]any:
		for _, key := range []string{"url", "image_url", "imageUrl"} {
			if u, ok := val[key]; ok {
				return appendURLs(out, u)
			}
		}
	}
	return out
}

func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m = trimURL(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// trimURL drops sentence punctuation picked up after a URL in prose.
func trimURL(u string) string {
	return strings.TrimRight(u, ".;:)]")
}
