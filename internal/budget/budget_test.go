package budget_test

import (
	"fmt"
	"strings"
	"testing"

	"custom-print-backend/internal/budget"
	"custom-print-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func artifacts(n int) []models.DesignArtifact {
	out := make([]models.DesignArtifact, n)
	for i := range out {
		out[i] = models.DesignArtifact{
			URL:      fmt.Sprintf("https://ik.imagekit.io/x/saved-design-%d.png", i+1),
			Filename: fmt.Sprintf("saved-design-%d.png", i+1),
			Origin:   models.OriginCanvas,
		}
	}
	return out
}

func urlsOf(a []models.DesignArtifact) []string {
	out := make([]string, len(a))
	for i := range a {
		out[i] = a[i].URL
	}
	return out
}

func TestEncodeAdminNotes_Empty(t *testing.T) {
	assert.Equal(t, "", budget.EncodeAdminNotes(nil))
	assert.Equal(t, budget.Decoded{}, budget.DecodeAdminNotes(""))
}

func TestEncodeAdminNotes_Format(t *testing.T) {
	got := budget.EncodeAdminNotes(artifacts(1))
	assert.Equal(t,
		"DESIGN_URLS: https://ik.imagekit.io/x/saved-design-1.png | FILENAMES: saved-design-1.png",
		got)

	got = budget.EncodeAdminNotes(artifacts(4))
	assert.True(t, strings.HasPrefix(got, "DESIGN_URLS: https://ik.imagekit.io/x/saved-design-1.png|"))
	assert.Contains(t, got, "saved-design-3.png | TOTAL: 4 | FILENAMES: ")
	assert.NotContains(t, got, "saved-design-4")
}

func TestRoundTrip_UpToThree(t *testing.T) {
	for n := 1; n <= 3; n++ {
		list := artifacts(n)
		d := budget.DecodeAdminNotes(budget.EncodeAdminNotes(list))

		assert.Equal(t, urlsOf(list), d.URLs, "n=%d", n)
		assert.Equal(t, n, d.Total)
		for i := range list {
			assert.Equal(t, list[i].Filename, d.Filenames[i])
		}
		assert.Len(t, d.Files(), n)
	}
}

func TestRoundTrip_URLWithPipe(t *testing.T) {
	list := []models.DesignArtifact{
		{URL: "https://example.com/render?layers=front|back", Filename: "front.png"},
		{URL: "https://example.com/b.png", Filename: "b.png"},
	}
	encoded := budget.EncodeAdminNotes(list)
	assert.Contains(t, encoded, "front%7Cback")

	d := budget.DecodeAdminNotes(encoded)
	assert.Equal(t, urlsOf(list), d.URLs)
	assert.Equal(t, []string{"front.png", "b.png"}, d.Filenames)
	assert.Equal(t, 2, d.Total)
}

func TestRoundTrip_WithoutFilenames(t *testing.T) {
	list := artifacts(2)
	for i := range list {
		list[i].Filename = ""
	}
	encoded := budget.EncodeAdminNotes(list)
	assert.NotContains(t, encoded, "FILENAMES")

	d := budget.DecodeAdminNotes(encoded)
	assert.Equal(t, urlsOf(list), d.URLs)
	assert.Empty(t, d.Filenames)
}

func TestRoundTrip_MoreThanThree(t *testing.T) {
	for _, n := range []int{4, 5, 9, 40} {
		list := artifacts(n)
		d := budget.DecodeAdminNotes(budget.EncodeAdminNotes(list))

		require.Equal(t, urlsOf(list[:3]), d.URLs, "n=%d", n)
		assert.Equal(t, n, d.Total)
		assert.Equal(t, n-3, d.Missing())

		files := d.Files()
		require.Len(t, files, 4)
		assert.True(t, files[3].Placeholder)
		assert.Contains(t, files[3].Description, fmt.Sprintf("%d additional", n-3))
	}
}

func TestFiveArtifacts_DecodedListHasPlaceholder(t *testing.T) {
	files := budget.DecodeAdminNotes(budget.EncodeAdminNotes(artifacts(5))).Files()

	require.Len(t, files, 4)
	for _, f := range files[:3] {
		assert.False(t, f.Placeholder)
		assert.NotEmpty(t, f.URL)
	}
	assert.Contains(t, files[3].Description, "2 additional")
}

func TestEncode_NeverExceedsFieldLimit(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 2000) + ".png"
	cases := [][]models.DesignArtifact{
		{{URL: long, Filename: strings.Repeat("n", 900)}},
		{{URL: long}, {URL: long}, {URL: long}, {URL: long}},
		artifacts(200),
		{{URL: "https://example.com/" + strings.Repeat("é", 600)}},
	}
	for _, list := range cases {
		adminNotes := budget.EncodeAdminNotes(list)
		assert.LessOrEqual(t, len(adminNotes), 950)
		assert.LessOrEqual(t, len(adminNotes), budget.FieldLimit)

		extra := urlsOf(list)
		notes := budget.EncodeNotes(budget.NotesInput{
			DesignCount:   len(list),
			TechniqueName: strings.Repeat("T", 1200),
			ExtraURLs:     extra,
			CustomerNotes: strings.Repeat("note ", 400),
		})
		assert.LessOrEqual(t, len(notes), budget.FieldLimit)
	}
}

func TestEncodeAdminNotes_TruncatedDecodesCleanly(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 400) + ".png"
	list := []models.DesignArtifact{{URL: long}, {URL: long + "?2"}, {URL: long + "?3"}}

	encoded := budget.EncodeAdminNotes(list)
	require.True(t, strings.HasSuffix(encoded, "..."))
	assert.Len(t, encoded, 950)

	d := budget.DecodeAdminNotes(encoded)
	assert.Equal(t, []string{long, long + "?2"}, d.URLs)
}

func TestEncodeNotes_Clauses(t *testing.T) {
	notes := budget.EncodeNotes(budget.NotesInput{
		DesignCount:   4,
		TechniqueName: "DTF Printing",
		ExtraURLs:     []string{"https://a.example/3.png", "https://a.example/4.png"},
		CustomerNotes: "Please center\nthe logo",
	})
	assert.Equal(t,
		"Customization request submitted with 4 design file(s). Technique: DTF Printing. "+
			"Additional design URLs: https://a.example/3.png, https://a.example/4.png. "+
			"Customer notes: Please center the logo",
		notes)
}

func TestEncodeNotes_SkipsClausesWithoutRoom(t *testing.T) {
	notes := budget.EncodeNotes(budget.NotesInput{
		DesignCount:   1,
		TechniqueName: strings.Repeat("x", 960),
		ExtraURLs:     []string{"https://a.example/3.png"},
	})
	assert.NotContains(t, notes, "Additional design URLs")
	assert.LessOrEqual(t, len(notes), budget.FieldLimit)
}

func TestAnnotate(t *testing.T) {
	encoded := budget.EncodeAdminNotes(artifacts(5))

	annotated := budget.Annotate(encoded, "[approved by admin] looks good")
	assert.Equal(t, encoded+"\n[approved by admin] looks good", annotated)
	assert.Equal(t, budget.DecodeAdminNotes(encoded), budget.DecodeAdminNotes(annotated))

	assert.Equal(t, encoded, budget.Annotate(encoded, "   "))
	assert.Equal(t, "[rejected by admin]", budget.Annotate("", "[rejected by admin]"))
}

func TestDecodeAdminNotes_LabelMustLeadFirstLine(t *testing.T) {
	// A record without artifacts starts admin_notes with the first reviewer entry.
	notes := budget.Annotate("", "[rejected by admin] customer pasted DESIGN_URLS: https://example.com/x.png | TOTAL: 4")
	assert.Equal(t, budget.Decoded{}, budget.DecodeAdminNotes(notes))
	assert.Empty(t, budget.DecodeAdminNotes(notes).Files())

	d := budget.DecodeAdminNotes("  DESIGN_URLS: https://example.com/x.png")
	assert.Equal(t, []string{"https://example.com/x.png"}, d.URLs)
}

func TestAnnotate_StaysWithinLimit(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 400) + ".png"
	encoded := budget.EncodeAdminNotes([]models.DesignArtifact{{URL: long}, {URL: long + "?2"}, {URL: long + "?3"}})

	notes := encoded
	for i := 0; i < 5; i++ {
		notes = budget.Annotate(notes, strings.Repeat("review ", 40))
		assert.LessOrEqual(t, len(notes), budget.FieldLimit)
		assert.True(t, strings.HasPrefix(notes, encoded))
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := strings.Repeat("é", 10) // 20 bytes
	out := budget.Truncate(s, 8)
	assert.LessOrEqual(t, len(out), 8)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Equal(t, "éé...", out)
}
