package design

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"custom-print-backend/internal/models"
)

// DefaultCDNHosts are image hosts the design editor exports canvas renders to.
var DefaultCDNHosts = []string{"ik.imagekit.io"}

type ClassifierConfig struct {
	// CDNHosts are matched by suffix, so "imagekit.io" also covers subdomains.
	CDNHosts []string
	// StorageHost is the Supabase project host, e.g. "abc.supabase.co".
	StorageHost string
	// StorageBucket restricts storage matches to public objects of one bucket.
	StorageBucket string
}

// Classification is the result of classifying one design URL.
type Classification struct {
	Origin      models.ArtifactOrigin
	Filename    string
	Description string
}

type target struct {
	raw    string
	lower  string
	parsed *url.URL
}

type rule struct {
	name     string
	origin   models.ArtifactOrigin
	match    func(t target) bool
	describe func(t target) (filename, description string)
}

// Classifier maps a URL to an origin by walking an ordered rule table. The
// first matching rule wins.
type Classifier struct {
	rules []rule
}

var savedDesignPattern = regexp.MustCompile(`(?i)(saved[-_]?design|canvas|design[-_]\d+)`)

func NewClassifier(cfg ClassifierConfig) *Classifier {
	hosts := cfg.CDNHosts
	if len(hosts) == 0 {
		hosts = DefaultCDNHosts
	}
	cdnHosts := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			cdnHosts = append(cdnHosts, h)
		}
	}
	storageHost := strings.ToLower(strings.TrimSpace(cfg.StorageHost))
	storagePrefix := "/storage/v1/object/"
	if cfg.StorageBucket != "" {
		storagePrefix = "/storage/v1/object/public/" + cfg.StorageBucket + "/"
	}

	return &Classifier{rules: []rule{
		{
			name:   "cdn-image",
			origin: models.OriginCanvas,
			match: func(t target) bool {
				return isHTTP(t) && hostMatches(t.parsed.Hostname(), cdnHosts)
			},
			describe: describeCanvas,
		},
		{
			name:   "project-storage",
			origin: models.OriginCanvas,
			match: func(t target) bool {
				return storageHost != "" && isHTTP(t) &&
					strings.EqualFold(t.parsed.Hostname(), storageHost) &&
					strings.HasPrefix(t.parsed.Path, storagePrefix)
			},
			describe: describeCanvas,
		},
		{
			name:     "embedded-data",
			origin:   models.OriginEmbeddedData,
			match:    func(t target) bool { return strings.HasPrefix(t.lower, "data:") },
			describe: describeData,
		},
		{
			name:   "external-link",
			origin: models.OriginExternalLink,
			match:  isHTTP,
			describe: func(t target) (string, string) {
				name := baseName(t)
				return name, "Linked design from " + t.parsed.Hostname()
			},
		},
		{
			name:   "uploaded",
			origin: models.OriginUploaded,
			match:  func(target) bool { return true },
			describe: func(t target) (string, string) {
				if strings.HasPrefix(t.lower, "blob:") {
					return "uploaded-design", "Uploaded design (session only)"
				}
				name := path.Base(strings.TrimSpace(t.raw))
				if name == "." || name == "/" {
					name = "uploaded-design"
				}
				return name, "Uploaded design file"
			},
		},
	}}
}

// Classify maps raw to its origin, display filename and description.
func (c *Classifier) Classify(raw string) Classification {
	t := newTarget(raw)
	for _, r := range c.rules {
		if !r.match(t) {
			continue
		}
		name, desc := r.describe(t)
		return Classification{Origin: r.origin, Filename: name, Description: desc}
	}
	return Classification{Origin: models.OriginUploaded}
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

func newTarget(raw string) target {
	raw = strings.TrimSpace(raw)
	t := target{raw: raw, lower: strings.ToLower(raw)}
	if strings.HasPrefix(t.lower, "http://") || strings.HasPrefix(t.lower, "https://") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			t.parsed = u
		}
	}
	return t
}

func isHTTP(t target) bool {
	return t.parsed != nil
}

func hostMatches(host string, hosts []string) bool {
	host = strings.ToLower(host)
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func baseName(t target) string {
	name := path.Base(t.parsed.Path)
	if name == "." || name == "/" || name == "" {
		return t.parsed.Hostname()
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func describeCanvas(t target) (string, string) {
	name := baseName(t)
	if savedDesignPattern.MatchString(name) {
		return name, "Saved canvas design"
	}
	return name, "Design image"
}

// describeData sizes a data URI from its base64 payload.
func describeData(t target) (string, string) {
	header, payload, _ := strings.Cut(t.raw, ",")
	mediaType := strings.TrimPrefix(strings.ToLower(header), "data:")
	mediaType, _, _ = strings.Cut(mediaType, ";")

	ext := "png"
	if _, sub, ok := strings.Cut(mediaType, "/"); ok && sub != "" {
		ext = strings.TrimSuffix(sub, "+xml")
	}

	size := len(payload)
	if strings.Contains(strings.ToLower(header), ";base64") {
		size = len(payload) * 3 / 4
	}
	kb := (size + 1023) / 1024
	return "embedded-design." + ext, fmt.Sprintf("Embedded image data (~%d KB)", kb)
}
