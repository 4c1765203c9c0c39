package casestudy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = "\r\n  Granier Brand Identity\r\n" +
	"A lifestyle bakery brand\r\n" +
	"Client: Granier\r\n" +
	"Year: 2024\r\n" +
	"\r\n" +
	"Some intro text before any heading.\r\n" +
	"\r\n" +
	"Brief:\r\n" +
	"Granier needed an identity that felt warm and artisanal while scaling across shop fronts, packaging, digital channels and a growing wholesale range of products.\r\n" +
	"\r\n" +
	"Objectives\r\n" +
	"1. Distinctive identity\r\n" +
	"2. Scalable logo system\r\n" +
	"\r\n" +
	"Production Notes:\r\n" +
	"- Print on recycled stock\r\n" +
	"• Foil on premium lines\r\n" +
	"\r\n" +
	"Empty Section:\r\n" +
	"\r\n"

func TestParse(t *testing.T) {
	t.Parallel()

	doc := Parse(sample)
	require.NotNil(t, doc)
	require.Equal(t, "Granier Brand Identity", doc.Title)
	require.Equal(t, "A lifestyle bakery brand", doc.Subtitle)
	require.Equal(t, map[string]string{"client": "Granier", "year": "2024"}, doc.Meta)

	ids := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		ids = append(ids, s.ID)
	}
	require.Equal(t, []string{"overview", "brief", "objectives", "production-notes"}, ids)

	overview, ok := doc.Section("overview")
	require.True(t, ok)
	require.Equal(t, KindParagraphs, overview.Kind)
	require.Equal(t, []string{"Some intro text before any heading."}, overview.Paragraphs)

	brief, _ := doc.Section("brief")
	require.Equal(t, KindParagraphs, brief.Kind)
	require.Len(t, brief.Paragraphs, 1)
	require.True(t, strings.HasPrefix(brief.Paragraphs[0], "Granier needed"))

	objectives, _ := doc.Section("objectives")
	require.Equal(t, KindList, objectives.Kind)
	require.Equal(t, []string{"Distinctive identity", "Scalable logo system"}, objectives.Items)

	notes, _ := doc.Section("production-notes")
	require.Equal(t, "Production Notes", notes.Heading)
	require.Equal(t, KindList, notes.Kind)
	require.Equal(t, []string{"Print on recycled stock", "Foil on premium lines"}, notes.Items)

	_, ok = doc.Section("empty-section")
	require.False(t, ok, "sections without content are dropped")
}

func TestParseBlank(t *testing.T) {
	t.Parallel()

	require.Nil(t, Parse(""))
	require.Nil(t, Parse(" \n\t\n"))
}

func TestParseSkipsHeadingAsSubtitle(t *testing.T) {
	t.Parallel()

	doc := Parse("Title\nOutcome:\nSales doubled.")
	require.Empty(t, doc.Subtitle)
	require.Len(t, doc.Sections, 1)
	require.Equal(t, "outcome", doc.Sections[0].ID)
	require.Equal(t, []string{"Sales doubled."}, doc.Sections[0].Paragraphs)
}

func TestParagraphsJoinWrappedLines(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 40)
	doc := Parse("Title\nSubtitle\nApproach:\n" + long + "\n" + long + "\n\nSecond   paragraph.")
	approach, ok := doc.Section("approach")
	require.True(t, ok)
	require.Equal(t, KindParagraphs, approach.Kind)
	require.Len(t, approach.Paragraphs, 2)
	require.NotContains(t, approach.Paragraphs[0], "  ")
	require.Equal(t, "Second paragraph.", approach.Paragraphs[1])
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	require.Equal(t, "my-role", slugify(" My Role "))
	require.Equal(t, "r-d-notes", slugify("R&D / Notes"))
	require.Equal(t, "section", slugify("!!!"))
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	out := string(RenderMarkdown("A **modern** brand. <script>alert(1)</script>"))
	require.Contains(t, out, "<strong>modern</strong>")
	require.NotContains(t, out, "<script>")
	require.Empty(t, RenderMarkdown("   "))
}
