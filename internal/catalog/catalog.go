// Package catalog holds the portfolio works shown on the site.
//
// The catalog is loaded once at start-up and never changes afterwards, so the
// values it hands out can be shared freely between requests.
package catalog

// All is the pseudo-category that disables filtering.
const All = "All"

// Image is a static asset reference.
type Image struct {
	Src string `yaml:"src"`
	Alt string `yaml:"alt"`
}

// CaseStudy is the detail record attached to a work.
type CaseStudy struct {
	Client     string   `yaml:"client"`
	Project    string   `yaml:"project"`
	Year       string   `yaml:"year"`
	Summary    string   `yaml:"summary"`
	Role       string   `yaml:"role"`
	Objectives []string `yaml:"objectives"`
	Tags       []string `yaml:"tags"`
	Gallery    []Image  `yaml:"gallery"`
	// Brief is optional free-form text split into sections by the casestudy package.
	Brief string `yaml:"brief"`

	GalleryPattern    string `yaml:"gallery_pattern"`
	GalleryAltPattern string `yaml:"gallery_alt"`
	GalleryCount      int    `yaml:"gallery_count"`
}

// WorkItem is one portfolio entry.
type WorkItem struct {
	ID        string     `yaml:"id"`
	Title     string     `yaml:"title"`
	Category  string     `yaml:"category"`
	Cover     Image      `yaml:"cover"`
	CaseStudy *CaseStudy `yaml:"case_study"`
	// Collage lists curated preview images; it takes priority over the gallery
	// when category previews are picked.
	Collage []Image `yaml:"collage"`
}

// GallerySize returns the number of images in the work's case-study gallery.
func (w *WorkItem) GallerySize() int {
	if w == nil || w.CaseStudy == nil {
		return 0
	}
	return len(w.CaseStudy.Gallery)
}

// Catalog is the immutable list of works plus the closed category set.
type Catalog struct {
	works      []*WorkItem
	categories []string
	index      map[string]*WorkItem
}

// All returns the works in catalog order.
func (c *Catalog) All() []*WorkItem {
	out := make([]*WorkItem, len(c.works))
	copy(out, c.works)
	return out
}

// Categories returns the category enumeration with All first.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.categories)+1)
	out = append(out, All)
	return append(out, c.categories...)
}

// HasCategory reports whether name is All or a member of the enumeration.
func (c *Catalog) HasCategory(name string) bool {
	if name == All {
		return true
	}
	for _, cat := range c.categories {
		if cat == name {
			return true
		}
	}
	return false
}

// ByID looks up a work by its stable id.
func (c *Catalog) ByID(id string) (*WorkItem, bool) {
	w, ok := c.index[id]
	return w, ok
}

// Contains reports whether w is an element of this catalog (identity, not equality).
func (c *Catalog) Contains(w *WorkItem) bool {
	if w == nil {
		return false
	}
	got, ok := c.index[w.ID]
	return ok && got == w
}

// Len returns the number of works.
func (c *Catalog) Len() int { return len(c.works) }

// IndexedImage is a gallery image paired with its position in the full gallery.
type IndexedImage struct {
	Index int
	Image
}

// VisibleGallery returns the case-study gallery without its leading
// description sheet. Indexes refer to the full gallery so they can be passed
// straight to the image viewer.
func VisibleGallery(w *WorkItem) []IndexedImage {
	if w.GallerySize() < 2 {
		return nil
	}
	gallery := w.CaseStudy.Gallery
	out := make([]IndexedImage, 0, len(gallery)-1)
	for i := 1; i < len(gallery); i++ {
		out = append(out, IndexedImage{Index: i, Image: gallery[i]})
	}
	return out
}
