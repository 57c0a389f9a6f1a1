// Package budget fits design references and request metadata into the two
// bounded text fields of a customization request.
//
// admin_notes carries a pipe-delimited micro-format on its first line:
//
//	DESIGN_URLS: <url>|<url>|<url>[ | TOTAL: <n>][ | FILENAMES: <name>|<name>|<name>]
//
// Only the first three URLs are stored inline. TOTAL is present when more
// artifacts were collected, so a decoder can report how many are missing.
package budget

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"custom-print-backend/internal/models"
)

// FieldLimit is the backend's maximum length of a text attribute.
const FieldLimit = 1000

const (
	adminNotesLimit = 950
	filenamesRoom   = 800
	notesClauseRoom = 950
	inlineURLs      = 3
)

const (
	labelURLs      = "DESIGN_URLS:"
	labelTotal     = "TOTAL:"
	labelFilenames = "FILENAMES:"
	segmentSep     = " | "
	listSep        = "|"
	ellipsis       = "..."
	escapedSep     = "%7C"
)

// Clause labels of the notes field.
const (
	NotesURLsLabel     = "Additional design URLs:"
	NotesCustomerLabel = "Customer notes:"
)

// EncodeAdminNotes renders the machine-readable admin_notes value.
func EncodeAdminNotes(artifacts []models.DesignArtifact) string {
	if len(artifacts) == 0 {
		return ""
	}

	inline := artifacts
	if len(inline) > inlineURLs {
		inline = inline[:inlineURLs]
	}

	urls := make([]string, len(inline))
	names := make([]string, len(inline))
	hasNames := false
	for i, a := range inline {
		urls[i] = escapeURL(a.URL)
		names[i] = cleanFilename(a.Filename)
		if names[i] != "" {
			hasNames = true
		}
	}

	out := labelURLs + " " + strings.Join(urls, listSep)
	if len(artifacts) > inlineURLs {
		out += segmentSep + labelTotal + " " + strconv.Itoa(len(artifacts))
	}
	if len(out) > adminNotesLimit {
		return Truncate(out, adminNotesLimit)
	}

	if hasNames && len(out) < filenamesRoom {
		out += segmentSep + labelFilenames + " " + strings.Join(names, listSep)
	}
	return Truncate(out, adminNotesLimit)
}

// NotesInput is what the human-readable notes field is built from.
type NotesInput struct {
	DesignCount   int
	TechniqueName string
	// ExtraURLs are design URLs not already stored in design_url/image_url.
	ExtraURLs     []string
	CustomerNotes string
}

// EncodeNotes renders the notes field, adding optional clauses only while
// there is room and capping the result at FieldLimit.
func EncodeNotes(in NotesInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customization request submitted with %d design file(s).", in.DesignCount)

	if name := oneLine(in.TechniqueName); name != "" && b.Len() < notesClauseRoom {
		fmt.Fprintf(&b, " Technique: %s.", name)
	}
	if len(in.ExtraURLs) > 0 && b.Len() < notesClauseRoom {
		fmt.Fprintf(&b, " %s %s.", NotesURLsLabel, strings.Join(in.ExtraURLs, ", "))
	}
	if note := oneLine(in.CustomerNotes); note != "" && b.Len() < notesClauseRoom {
		fmt.Fprintf(&b, " %s %s", NotesCustomerLabel, note)
	}

	return Truncate(b.String(), FieldLimit)
}

// Annotate appends a reviewer entry to admin_notes on its own line. The
// encoded first line is always kept; older entries are dropped and the new
// entry is shortened when the field would exceed FieldLimit.
func Annotate(adminNotes, entry string) string {
	entry = oneLine(entry)
	if entry == "" {
		return adminNotes
	}
	if adminNotes == "" {
		return Truncate(entry, FieldLimit)
	}

	combined := adminNotes + "\n" + entry
	if len(combined) <= FieldLimit {
		return combined
	}

	encoded, _, _ := strings.Cut(adminNotes, "\n")
	head := encoded + "\n"
	if len(head)+len(ellipsis) >= FieldLimit {
		return Truncate(encoded, FieldLimit)
	}
	return head + Truncate(entry, FieldLimit-len(head))
}

// Truncate shortens s to at most max bytes, replacing the tail with "..." and
// never splitting a UTF-8 sequence.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - len(ellipsis)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

// "|" delimits the inline lists, so it must not appear inside an entry.
func escapeURL(u string) string {
	return strings.ReplaceAll(strings.TrimSpace(u), listSep, escapedSep)
}

func cleanFilename(name string) string {
	name = strings.ReplaceAll(oneLine(name), listSep, "_")
	return name
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
