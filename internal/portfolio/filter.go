// Package portfolio implements the gallery navigation state: the category
// filter, the case-study selection and the image viewer, plus the query
// string snapshot that lets a browser history entry restore all of it.
package portfolio

import (
	"github.com/studio-sirbu/portfolio/internal/catalog"
)

// MaxPreviews caps the number of thumbnails shown on a category card.
const MaxPreviews = 3

// Index pairs the catalog with the values derived from it once: per-category
// counts and preview images. It is read-only and shared by every request.
type Index struct {
	catalog  *catalog.Catalog
	counts   map[string]int
	previews map[string][]catalog.Image
}

// NewIndex derives counts and previews for c.
func NewIndex(c *catalog.Catalog) *Index {
	idx := &Index{
		catalog:  c,
		counts:   make(map[string]int),
		previews: make(map[string][]catalog.Image),
	}
	for _, name := range c.Categories() {
		idx.counts[name] = 0
	}

	allSeen := map[string]bool{}
	for _, w := range c.All() {
		idx.counts[w.Category]++
		idx.counts[catalog.All]++

		img := previewImage(w)
		if len(idx.previews[w.Category]) < MaxPreviews {
			idx.previews[w.Category] = append(idx.previews[w.Category], img)
		}
		// All mixes categories: at most one image from each.
		if !allSeen[w.Category] && len(idx.previews[catalog.All]) < MaxPreviews {
			allSeen[w.Category] = true
			idx.previews[catalog.All] = append(idx.previews[catalog.All], img)
		}
	}
	return idx
}

// Catalog returns the indexed catalog.
func (i *Index) Catalog() *catalog.Catalog { return i.catalog }

// Filter derives the visible subset of the catalog from the active category.
type Filter struct {
	index  *Index
	active string
}

// NewFilter returns a filter showing every work.
func NewFilter(idx *Index) *Filter {
	return &Filter{index: idx, active: catalog.All}
}

// Catalog returns the underlying catalog.
func (f *Filter) Catalog() *catalog.Catalog { return f.index.catalog }

// Active returns the selected category.
func (f *Filter) Active() string { return f.active }

// SetCategory selects a category. Names outside the closed set fall back to All.
func (f *Filter) SetCategory(category string) {
	if !f.index.catalog.HasCategory(category) {
		category = catalog.All
	}
	f.active = category
}

// FilteredWorks returns the works in the active category, in catalog order.
func (f *Filter) FilteredWorks() []*catalog.WorkItem {
	works := f.index.catalog.All()
	if f.active == catalog.All {
		return works
	}
	out := make([]*catalog.WorkItem, 0, len(works))
	for _, w := range works {
		if w.Category == f.active {
			out = append(out, w)
		}
	}
	return out
}

// CategoryCounts returns the number of works per category, including All.
func (f *Filter) CategoryCounts() map[string]int {
	return f.index.counts
}

// CategoryPreviews returns up to MaxPreviews representative images per category.
func (f *Filter) CategoryPreviews() map[string][]catalog.Image {
	return f.index.previews
}

// CategoryCard is one entry of the category picker.
type CategoryCard struct {
	Name     string
	Count    int
	Previews []catalog.Image
	Active   bool
}

// Categories lists the category cards in display order.
func (f *Filter) Categories() []CategoryCard {
	counts := f.CategoryCounts()
	previews := f.CategoryPreviews()
	names := f.index.catalog.Categories()
	out := make([]CategoryCard, 0, len(names))
	for _, name := range names {
		out = append(out, CategoryCard{
			Name:     name,
			Count:    counts[name],
			Previews: previews[name],
			Active:   name == f.active,
		})
	}
	return out
}

// previewImage picks a work's representative image: its first curated collage
// image, else the first gallery image after the description sheet, else the cover.
func previewImage(w *catalog.WorkItem) catalog.Image {
	if len(w.Collage) > 0 {
		return w.Collage[0]
	}
	if visible := catalog.VisibleGallery(w); len(visible) > 0 {
		return visible[0].Image
	}
	return w.Cover
}
