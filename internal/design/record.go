package design

import (
	"strings"

	"custom-print-backend/internal/budget"
	"custom-print-backend/internal/models"
)

// Parser rebuilds the design file list of a persisted request.
type Parser struct {
	classifier *Classifier
	legacy     *LegacyScanner
}

func NewParser(classifier *Classifier) *Parser {
	return &Parser{classifier: classifier, legacy: NewLegacyScanner()}
}

// ParseFromRecord collects the design artifacts referenced by r: the primary
// and secondary design fields and the admin_notes encoding, then legacy
// fields. Records written without an admin_notes encoding fall back to the
// URL clause of the notes. When admin_notes counted more artifacts than were
// recovered from it, a single placeholder entry states how many are missing.
func (p *Parser) ParseFromRecord(r *models.CustomizationRequest) []models.DesignArtifact {
	c := NewCollector(p.classifier, nil)

	for _, u := range []string{r.DesignURL, r.ImageURL} {
		c.addURL(u, "", "")
	}

	decoded := budget.DecodeAdminNotes(r.AdminNotes)
	for i, u := range decoded.URLs {
		name := ""
		if i < len(decoded.Filenames) {
			name = decoded.Filenames[i]
		}
		if c.addURL(u, name, "") == 0 && name != "" {
			c.nameURL(u, name)
		}
	}
	recovered := c.Len()

	if decoded.Total == 0 {
		for _, u := range notesURLs(r.Notes) {
			c.addURL(u, "", "")
		}
	}

	for _, u := range p.legacy.Scan(r.LegacyFields) {
		c.addURL(u, "", "")
	}

	artifacts := c.Artifacts()
	if missing := decoded.Total - recovered; missing > 0 {
		artifacts = append(artifacts, models.DesignArtifact{
			Placeholder: true,
			Description: budget.MissingDescription(missing),
		})
	}
	return artifacts
}

// nameURL fills in the filename of an already collected artifact.
func (c *Collector) nameURL(u, name string) {
	for i := range c.artifacts {
		if c.artifacts[i].URL == u {
			c.artifacts[i].Filename = name
			return
		}
	}
}

// notesURLs finds the URLs listed in the additional design URLs clause of
// the notes, skipping one cut off by truncation. Customer free text is not
// scanned.
func notesURLs(notes string) []string {
	idx := strings.Index(notes, budget.NotesURLsLabel)
	if idx < 0 {
		return nil
	}
	start := idx + len(budget.NotesURLsLabel)
	end := len(notes)
	if i := strings.Index(notes[start:], " "+budget.NotesCustomerLabel); i >= 0 {
		end = start + i
	}
	truncated := end == len(notes) &&
		strings.HasSuffix(notes, "...") && len(notes) >= budget.FieldLimit-len("...")

	clause := notes[start:end]
	matches := urlPattern.FindAllStringIndex(clause, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if truncated && start+m[1] == len(notes) {
			continue
		}
		if u := trimURL(clause[m[0]:m[1]]); u != "" {
			out = append(out, u)
		}
	}
	return out
}
