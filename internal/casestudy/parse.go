// Package casestudy turns the free-form text of a case study into structured
// sections and renders short markdown fields for the detail view.
package casestudy

import (
	"regexp"
	"strings"
)

// SectionKind tells the template how to lay out a section body.
type SectionKind string

const (
	KindList       SectionKind = "list"
	KindParagraphs SectionKind = "paragraphs"
)

// Section is one headed block of a case study.
type Section struct {
	ID         string
	Heading    string
	Kind       SectionKind
	Items      []string
	Paragraphs []string
}

// Document is a parsed case study.
type Document struct {
	Title    string
	Subtitle string
	Meta     map[string]string
	Sections []Section
}

// overviewHeading names the section that collects text appearing before the first heading.
const overviewHeading = "Overview"

var knownHeadings = map[string]bool{
	"brief":           true,
	"objectives":      true,
	"my role":         true,
	"outcome":         true,
	"results":         true,
	"solution":        true,
	"approach":        true,
	"challenge":       true,
	"target audience": true,
	"insights":        true,
	"deliverables":    true,
	"scope":           true,
	"impact":          true,
}

var (
	metaLineRe     = regexp.MustCompile(`(?i)^(client|project|year)\s*:`)
	colonHeadingRe = regexp.MustCompile(`^[\w\s&'()/-]{2,80}:$`)
	slugRe         = regexp.MustCompile(`[^a-z0-9]+`)
	itemPrefixRe   = regexp.MustCompile(`^[-•\d.\s]+`)
	bulletRe       = regexp.MustCompile(`^[-•]`)
	spacesRe       = regexp.MustCompile(`\s+`)
)

// maxListLine is the longest line still considered a list item when a section
// has no explicit bullets.
const maxListLine = 160

// Parse splits text into title, subtitle, meta fields and sections. It
// returns nil for blank input.
//
// Layout: the first non-blank line is the title, the next one the subtitle
// unless it is a meta or heading line, then "Client:/Project:/Year:" lines,
// then sections introduced by a known heading or a short line ending in ':'.
func Parse(text string) *Document {
	lines := strings.Split(strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text), "\n")
	i := 0
	skipBlank := func() {
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
	}

	skipBlank()
	if i >= len(lines) {
		return nil
	}

	doc := &Document{Meta: map[string]string{}}
	doc.Title = strings.TrimSpace(lines[i])
	i++

	skipBlank()
	if i < len(lines) {
		if line := strings.TrimSpace(lines[i]); !isMetaLine(line) && !isHeading(line) {
			doc.Subtitle = line
			i++
		}
	}

	skipBlank()
	for i < len(lines) && isMetaLine(lines[i]) {
		label, value, _ := strings.Cut(strings.TrimSpace(lines[i]), ":")
		if value = strings.TrimSpace(value); value != "" {
			doc.Meta[strings.ToLower(strings.TrimSpace(label))] = value
		}
		i++
	}

	var cur *pending
	for ; i < len(lines); i++ {
		line := lines[i]
		if isHeading(line) {
			doc.commit(cur)
			cur = newPending(strings.TrimSpace(line))
			continue
		}
		if cur == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			cur = newPending(overviewHeading)
		}
		cur.lines = append(cur.lines, line)
	}
	doc.commit(cur)
	return doc
}

// Section returns the section with the given id.
func (d *Document) Section(id string) (Section, bool) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

type pending struct {
	heading string
	lines   []string
}

func newPending(heading string) *pending {
	return &pending{heading: strings.TrimSpace(strings.TrimSuffix(heading, ":"))}
}

func (d *Document) commit(p *pending) {
	if p == nil {
		return
	}
	var nonEmpty []string
	for _, l := range p.lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) == 0 {
		return
	}

	s := Section{ID: slugify(p.heading), Heading: p.heading}
	if renderAsList(p.heading, nonEmpty) {
		s.Kind = KindList
		for _, l := range nonEmpty {
			if item := strings.TrimSpace(itemPrefixRe.ReplaceAllString(l, "")); item != "" {
				s.Items = append(s.Items, item)
			}
		}
	} else {
		s.Kind = KindParagraphs
		s.Paragraphs = paragraphs(p.lines)
	}
	d.Sections = append(d.Sections, s)
}

func isMetaLine(line string) bool {
	return metaLineRe.MatchString(strings.TrimSpace(line))
}

func isHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || isMetaLine(trimmed) {
		return false
	}
	bare := strings.TrimSpace(strings.TrimSuffix(trimmed, ":"))
	if knownHeadings[strings.ToLower(bare)] {
		return true
	}
	return colonHeadingRe.MatchString(trimmed)
}

func renderAsList(heading string, lines []string) bool {
	h := strings.ToLower(heading)
	if strings.Contains(h, "objective") || strings.Contains(h, "deliverable") || strings.Contains(h, "target audience") {
		return true
	}
	for _, l := range lines {
		if bulletRe.MatchString(strings.TrimSpace(l)) {
			return true
		}
	}
	if len(lines) < 2 {
		return false
	}
	for _, l := range lines {
		if len(strings.TrimSpace(l)) > maxListLine {
			return false
		}
	}
	return true
}

func paragraphs(lines []string) []string {
	var out, buf []string
	flush := func() {
		if len(buf) > 0 {
			out = append(out, strings.TrimSpace(spacesRe.ReplaceAllString(strings.Join(buf, " "), " ")))
			buf = buf[:0]
		}
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			flush()
			continue
		}
		buf = append(buf, strings.TrimSpace(l))
	}
	flush()
	return out
}

func slugify(s string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
	if slug == "" {
		return "section"
	}
	return slug
}
