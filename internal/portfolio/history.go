package portfolio

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/studio-sirbu/portfolio/internal/catalog"
)

// Query parameter names mirrored into the page URL.
const (
	ParamCategory = "category"
	ParamWork     = "work"
	ParamImage    = "image"
)

// Snapshot is the full navigation state carried by one history entry.
type Snapshot struct {
	Category string
	Work     string
	Image    int
}

// Snapshot captures the current state.
func (n *Navigator) Snapshot() Snapshot {
	s := Snapshot{Category: n.filter.Active(), Image: NoImage}
	if n.work != nil {
		s.Work = n.work.ID
		s.Image = n.image
	}
	return s
}

// Restore replaces the state with s. Anything that no longer resolves fails
// open: an unknown category shows All, an unknown work returns to Browsing
// and an out-of-range image leaves the case study open.
func (n *Navigator) Restore(s Snapshot) {
	n.SetCategory(s.Category)
	n.CloseWork()
	if s.Work == "" || !n.SelectWork(s.Work) {
		return
	}
	if s.Image != NoImage {
		n.OpenImage(s.Image)
	}
}

// Query encodes s. Defaults are omitted, so Browsing on All is the empty query.
func (s Snapshot) Query() url.Values {
	v := url.Values{}
	if s.Category != "" && s.Category != catalog.All {
		v.Set(ParamCategory, s.Category)
	}
	if s.Work != "" {
		v.Set(ParamWork, s.Work)
		if s.Image >= 0 {
			v.Set(ParamImage, strconv.Itoa(s.Image))
		}
	}
	return v
}

// URL returns path with s encoded as its query string.
func (s Snapshot) URL(path string) string {
	q := s.Query().Encode()
	if q == "" {
		return path
	}
	return path + "?" + q
}

// ParseSnapshot reads a snapshot from query parameters. Malformed values are
// dropped rather than rejected.
func ParseSnapshot(v url.Values) Snapshot {
	s := Snapshot{
		Category: strings.TrimSpace(v.Get(ParamCategory)),
		Work:     strings.TrimSpace(v.Get(ParamWork)),
		Image:    NoImage,
	}
	if s.Category == "" {
		s.Category = catalog.All
	}
	if raw := strings.TrimSpace(v.Get(ParamImage)); raw != "" && s.Work != "" {
		if i, err := strconv.Atoi(raw); err == nil && i >= 0 {
			s.Image = i
		}
	}
	return s
}

// FromQuery builds a navigator positioned at the state encoded in v.
func FromQuery(idx *Index, v url.Values) *Navigator {
	n := NewNavigator(idx)
	n.Restore(ParseSnapshot(v))
	return n
}

// Links builds snapshot URLs for the transitions reachable from the current
// state without mutating it. Templates use them as link targets.
type Links struct {
	path string
	base Snapshot
	size int
}

// Links returns a link builder rooted at path.
func (n *Navigator) Links(path string) Links {
	return Links{path: path, base: n.Snapshot(), size: n.work.GallerySize()}
}

// Current is the URL of the current state.
func (l Links) Current() string { return l.base.URL(l.path) }

// Category links to the same selection under another category.
func (l Links) Category(name string) string {
	s := l.base
	s.Category = name
	return s.URL(l.path)
}

// Work links to the case study of id.
func (l Links) Work(id string) string {
	s := l.base
	s.Work = id
	s.Image = NoImage
	return s.URL(l.path)
}

// Image links to gallery image i of the selected work.
func (l Links) Image(i int) string {
	s := l.base
	s.Image = i
	return s.URL(l.path)
}

// CloseWork links back to Browsing.
func (l Links) CloseWork() string {
	s := l.base
	s.Work = ""
	s.Image = NoImage
	return s.URL(l.path)
}

// CloseImage links back to the case study.
func (l Links) CloseImage() string {
	s := l.base
	s.Image = NoImage
	return s.URL(l.path)
}

// Next links to the image after the open one, wrapping at the end.
func (l Links) Next() string {
	if l.base.Image < 0 || l.size == 0 {
		return l.Current()
	}
	return l.Image((l.base.Image + 1) % l.size)
}

// Prev links to the image before the open one, wrapping at the start.
func (l Links) Prev() string {
	if l.base.Image < 0 || l.size == 0 {
		return l.Current()
	}
	return l.Image((l.base.Image - 1 + l.size) % l.size)
}
