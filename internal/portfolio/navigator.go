package portfolio

import (
	"github.com/studio-sirbu/portfolio/internal/catalog"
	"github.com/studio-sirbu/portfolio/internal/viewport"
)

// NoImage marks the absence of an open image.
const NoImage = -1

// Phase is the state of the selection state machine.
type Phase int

const (
	// Browsing: no work selected.
	Browsing Phase = iota
	// CaseStudyOpen: a work's case study is shown, no image enlarged.
	CaseStudyOpen
	// ImageOpen: one gallery image is shown full-size.
	ImageOpen
)

func (p Phase) String() string {
	switch p {
	case CaseStudyOpen:
		return "case-study"
	case ImageOpen:
		return "image"
	default:
		return "browsing"
	}
}

// Navigator owns the view state of one page session: the category filter,
// the selected work and the image viewer position.
//
// Invariant: image is NoImage whenever work is nil, and otherwise lies in
// [0, gallery size) or is NoImage.
type Navigator struct {
	filter *Filter
	work   *catalog.WorkItem
	image  int
	zoom   Zoom

	// The case study and the viewer each hold one scroll-lock reference
	// while they are open.
	scroll        viewport.ScrollLock
	releaseCase   func()
	releaseViewer func()
}

// NewNavigator starts in Browsing with the All category.
func NewNavigator(idx *Index) *Navigator {
	return &Navigator{filter: NewFilter(idx), image: NoImage, zoom: Identity}
}

// Filter exposes the category filter.
func (n *Navigator) Filter() *Filter { return n.filter }

// SetCategory changes the active category. Selection state is left untouched.
func (n *Navigator) SetCategory(category string) { n.filter.SetCategory(category) }

// Phase reports the current state.
func (n *Navigator) Phase() Phase {
	switch {
	case n.work == nil:
		return Browsing
	case n.image == NoImage:
		return CaseStudyOpen
	default:
		return ImageOpen
	}
}

// SelectedWork returns the open work or nil.
func (n *Navigator) SelectedWork() *catalog.WorkItem { return n.work }

// ImageIndex returns the open image index, if any.
func (n *Navigator) ImageIndex() (int, bool) {
	if n.image == NoImage {
		return 0, false
	}
	return n.image, true
}

// CurrentImage returns the image shown by the viewer.
func (n *Navigator) CurrentImage() (catalog.Image, bool) {
	i, ok := n.ImageIndex()
	if !ok {
		return catalog.Image{}, false
	}
	return n.work.CaseStudy.Gallery[i], true
}

// ScrollLocked reports whether an overlay is open and the page must not scroll.
func (n *Navigator) ScrollLocked() bool { return n.scroll.Locked() }

// LockDepth is the number of open overlays.
func (n *Navigator) LockDepth() int { return n.scroll.Depth() }

// Zoom returns the pinch-zoom transform applied to the open image.
func (n *Navigator) Zoom() Zoom { return n.zoom }

// SelectWork opens the case study of the work with the given id. Unknown ids
// and works without a case study are ignored.
func (n *Navigator) SelectWork(id string) bool {
	w, ok := n.filter.Catalog().ByID(id)
	if !ok {
		return false
	}
	return n.Select(w)
}

// Select opens w's case study. Any open image is closed, so switching works
// always lands on the case study view.
func (n *Navigator) Select(w *catalog.WorkItem) bool {
	if w == nil || w.CaseStudy == nil || !n.filter.Catalog().Contains(w) {
		return false
	}
	n.work = w
	n.setImage(NoImage)
	return true
}

// CloseWork returns to Browsing, clearing the work and image together.
func (n *Navigator) CloseWork() {
	n.work = nil
	n.setImage(NoImage)
}

// OpenImage enlarges gallery image i of the selected work.
func (n *Navigator) OpenImage(i int) bool {
	if n.work == nil || i < 0 || i >= n.work.GallerySize() {
		return false
	}
	n.setImage(i)
	return true
}

// CloseImageViewer goes back to the case study of the same work.
func (n *Navigator) CloseImageViewer() {
	if n.Phase() != ImageOpen {
		return
	}
	n.setImage(NoImage)
}

// NextImage advances the viewer by one, wrapping from the last image to the first.
func (n *Navigator) NextImage() {
	if n.Phase() != ImageOpen {
		return
	}
	size := n.work.GallerySize()
	n.setImage((n.image + 1) % size)
}

// PrevImage steps the viewer back by one, wrapping from the first image to the last.
func (n *Navigator) PrevImage() {
	if n.Phase() != ImageOpen {
		return
	}
	size := n.work.GallerySize()
	n.setImage((n.image - 1 + size) % size)
}

// setImage is the single place the index changes; the zoom transform belongs
// to one displayed image and is reset with it.
func (n *Navigator) setImage(i int) {
	n.image = i
	n.zoom = Identity
	n.syncScrollLock()
}

// syncScrollLock acquires or releases the overlay references so they match
// the phase. setImage runs after every selection change, so this is the one
// place they move.
func (n *Navigator) syncScrollLock() {
	n.releaseCase = hold(&n.scroll, n.releaseCase, n.work != nil)
	n.releaseViewer = hold(&n.scroll, n.releaseViewer, n.image != NoImage)
}

func hold(l *viewport.ScrollLock, release func(), open bool) func() {
	switch {
	case open && release == nil:
		return l.Acquire()
	case !open && release != nil:
		release()
		return nil
	}
	return release
}
