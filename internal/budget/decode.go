package budget

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Decoded is the content recovered from an admin_notes value.
type Decoded struct {
	URLs []string
	// Filenames align positionally with URLs and may be shorter.
	Filenames []string
	// Total is the number of artifacts at encode time. It equals len(URLs)
	// when the value carried no TOTAL segment.
	Total int
}

// File is one entry of a decoded design file list.
type File struct {
	URL         string
	Filename    string
	Placeholder bool
	Description string
}

// DecodeAdminNotes parses the micro-format written by EncodeAdminNotes.
// Values without a DESIGN_URLS segment decode to the zero Decoded.
func DecodeAdminNotes(adminNotes string) Decoded {
	first, _, _ := strings.Cut(adminNotes, "\n")
	rest, ok := strings.CutPrefix(strings.TrimSpace(first), labelURLs)
	if !ok {
		return Decoded{}
	}
	line := strings.TrimSpace(rest)

	// Truncate backs off at most utf8.UTFMax-1 bytes from the limit.
	truncated := strings.HasSuffix(first, ellipsis) && len(first) > adminNotesLimit-utf8.UTFMax
	if truncated {
		line = strings.TrimSuffix(line, ellipsis)
	}

	segments := strings.Split(line, segmentSep)
	last := len(segments) - 1

	var d Decoded
	d.URLs = splitList(segments[0], truncated && last == 0)
	for i, u := range d.URLs {
		d.URLs[i] = unescapeURL(u)
	}
	totalSeen := false
	for i, seg := range segments[1:] {
		partial := truncated && i+1 == last
		seg = strings.TrimSpace(seg)
		switch {
		case strings.HasPrefix(seg, labelTotal):
			if partial {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(seg, labelTotal)))
			if err == nil && n > 0 {
				d.Total = n
				totalSeen = true
			}
		case strings.HasPrefix(seg, labelFilenames):
			d.Filenames = splitList(strings.TrimPrefix(seg, labelFilenames), partial)
		}
	}

	if !totalSeen || d.Total < len(d.URLs) {
		d.Total = len(d.URLs)
	}
	return d
}

// Missing is the number of artifacts that were counted but not stored inline.
func (d Decoded) Missing() int {
	if m := d.Total - len(d.URLs); m > 0 {
		return m
	}
	return 0
}

// Files lists the decoded URLs with their filenames, plus one placeholder
// entry summarising the artifacts that could not be stored inline.
func (d Decoded) Files() []File {
	files := make([]File, 0, len(d.URLs)+1)
	for i, u := range d.URLs {
		f := File{URL: u}
		if i < len(d.Filenames) {
			f.Filename = d.Filenames[i]
		}
		files = append(files, f)
	}
	if missing := d.Missing(); missing > 0 {
		files = append(files, File{Placeholder: true, Description: MissingDescription(missing)})
	}
	return files
}

// MissingDescription describes design files whose URLs are not recoverable
// from the record.
func MissingDescription(missing int) string {
	return fmt.Sprintf("%d additional design file(s) - contact customer for access", missing)
}

// splitList splits a "|" list. When the list was cut by truncation its last
// entry is incomplete and is dropped.
func splitList(raw string, partial bool) []string {
	parts := strings.Split(strings.TrimSpace(raw), listSep)
	if partial && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func unescapeURL(u string) string {
	return strings.ReplaceAll(u, escapedSep, listSep)
}
