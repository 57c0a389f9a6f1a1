// Package design collects the design artifacts of a customization request and
// rebuilds them from persisted records.
package design

import (
	"strings"

	"custom-print-backend/internal/models"
)

// SavePayload is one save event from the design step. A bulk "submit all"
// event fills one or more of the named lists; a single save fills one of the
// URL fields.
type SavePayload struct {
	URL        string `json:"url,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	DataURL    string `json:"data_url,omitempty"`
	Filename   string `json:"filename,omitempty"`

	CanvasDesigns []string `json:"canvas_designs,omitempty"`
	UploadedFiles []string `json:"uploaded_files,omitempty"`
	ExternalLinks []string `json:"external_links,omitempty"`
}

// IsBulk reports whether p carries named file lists.
func (p SavePayload) IsBulk() bool {
	return p.CanvasDesigns != nil || p.UploadedFiles != nil || p.ExternalLinks != nil
}

// Collector holds the ordered, de-duplicated artifacts of one draft. It is not
// safe for concurrent use.
type Collector struct {
	classifier *Classifier
	artifacts  []models.DesignArtifact
	seen       map[string]struct{}
}

// NewCollector starts a collector seeded with previously collected artifacts.
func NewCollector(classifier *Classifier, existing []models.DesignArtifact) *Collector {
	c := &Collector{
		classifier: classifier,
		seen:       make(map[string]struct{}, len(existing)),
	}
	for _, a := range existing {
		c.append(a)
	}
	return c
}

// Add normalizes p into artifacts and appends the ones with unseen URLs. It
// returns how many were appended. Payloads without a usable URL are ignored.
func (c *Collector) Add(p SavePayload) int {
	if p.IsBulk() {
		added := 0
		for _, u := range p.CanvasDesigns {
			added += c.addURL(u, "", models.OriginCanvas)
		}
		for _, u := range p.UploadedFiles {
			added += c.addURL(u, "", models.OriginUploaded)
		}
		for _, u := range p.ExternalLinks {
			added += c.addURL(u, "", models.OriginExternalLink)
		}
		return added
	}

	for _, u := range []string{p.URL, p.ImageURL, p.PreviewURL, p.DataURL} {
		if strings.TrimSpace(u) != "" {
			return c.addURL(u, p.Filename, "")
		}
	}
	return 0
}

// AddArtifact appends an already classified artifact, such as a fresh upload.
func (c *Collector) AddArtifact(a models.DesignArtifact) int {
	if !usable(a.URL) {
		return 0
	}
	return c.append(a)
}

func (c *Collector) Artifacts() []models.DesignArtifact {
	out := make([]models.DesignArtifact, len(c.artifacts))
	copy(out, c.artifacts)
	return out
}

func (c *Collector) Len() int {
	return len(c.artifacts)
}

func (c *Collector) addURL(raw, filename string, hint models.ArtifactOrigin) int {
	raw = strings.TrimSpace(raw)
	if !usable(raw) {
		return 0
	}
	cl := c.classifier.Classify(raw)
	// The list a URL came from says more about its origin than its host,
	// except for inline data.
	if hint != "" && cl.Origin != models.OriginEmbeddedData {
		cl.Origin = hint
	}
	if name := strings.TrimSpace(filename); name != "" {
		cl.Filename = name
	}
	return c.append(models.DesignArtifact{
		URL:         raw,
		Filename:    cl.Filename,
		Origin:      cl.Origin,
		Description: cl.Description,
	})
}

func (c *Collector) append(a models.DesignArtifact) int {
	if a.Placeholder {
		return 0
	}
	if _, ok := c.seen[a.URL]; ok {
		return 0
	}
	c.seen[a.URL] = struct{}{}
	c.artifacts = append(c.artifacts, a)
	return 1
}

func usable(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw != "" && !models.IsPlaceholder(raw)
}
