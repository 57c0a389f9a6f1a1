package models

import (
	"fmt"
	"strings"
)

type ArtifactOrigin string

const (
	OriginCanvas       ArtifactOrigin = "canvas"
	OriginUploaded     ArtifactOrigin = "uploaded"
	OriginEmbeddedData ArtifactOrigin = "embedded-data"
	OriginExternalLink ArtifactOrigin = "external-link"
)

// DesignArtifact is one design file contributed while building a request.
// Placeholder entries stand in for files whose URL could not be recovered.
type DesignArtifact struct {
	URL         string         `json:"url,omitempty"`
	Filename    string         `json:"filename,omitempty"`
	Origin      ArtifactOrigin `json:"origin,omitempty"`
	Description string         `json:"description"`
	Placeholder bool           `json:"placeholder,omitempty"`
}

// DesignPlaceholderPrefix marks a design_url that is not a loadable resource.
const DesignPlaceholderPrefix = "design-placeholder:"

// Markers written into design_url by the previous storefront when no URL
// could be produced.
var legacyPlaceholderMarkers = []string{
	"design submitted",
	"no design url",
	"design uploaded - see",
	"[placeholder]",
	"canvas design saved",
}

// DesignPlaceholder builds the design_url value used when none of the
// collected artifacts has a persistent URL.
func DesignPlaceholder(artifactCount int) string {
	if artifactCount == 0 {
		return DesignPlaceholderPrefix + " no design file attached"
	}
	return fmt.Sprintf("%s %d design file(s) submitted without a stored URL, see admin notes", DesignPlaceholderPrefix, artifactCount)
}

// IsPlaceholder reports whether value is placeholder text rather than a URL.
func IsPlaceholder(value string) bool {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(v, DesignPlaceholderPrefix) {
		return true
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return false
	}
	for _, marker := range legacyPlaceholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
