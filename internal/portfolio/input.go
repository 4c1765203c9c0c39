package portfolio

import (
	"fmt"
	"math"
)

// Keyboard keys bound to the viewer, named as in KeyboardEvent.key.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// SwipeThreshold is the minimum horizontal travel, in CSS pixels, for a swipe.
const SwipeThreshold = 50.0

// HandleKey applies a key press and reports whether the state changed.
// Escape closes the topmost overlay; arrows move the viewer only while an
// image is open.
func (n *Navigator) HandleKey(key string) bool {
	switch key {
	case KeyEscape:
		switch n.Phase() {
		case ImageOpen:
			n.CloseImageViewer()
			return true
		case CaseStudyOpen:
			n.CloseWork()
			return true
		}
	case KeyArrowLeft:
		if n.Phase() == ImageOpen {
			n.PrevImage()
			return true
		}
	case KeyArrowRight:
		if n.Phase() == ImageOpen {
			n.NextImage()
			return true
		}
	}
	return false
}

// MaxRepeat bounds how many queued presses one request may apply.
const MaxRepeat = 64

// HandleKeyRepeat applies key as if it had been pressed that many times in a row.
// Clients queue presses made while a previous response is in flight, so every
// press advances the viewer by exactly one. Escape is applied once.
func (n *Navigator) HandleKeyRepeat(key string, times int) bool {
	if key == KeyEscape || times < 1 {
		times = 1
	}
	times = min(times, MaxRepeat)
	changed := false
	for range times {
		if !n.HandleKey(key) {
			break
		}
		changed = true
	}
	return changed
}

// Swipe is the outcome of classifying a touch gesture.
type Swipe int

const (
	SwipeNone Swipe = iota
	// SwipeLeft: finger moved right to left, shows the next image.
	SwipeLeft
	// SwipeRight: finger moved left to right, shows the previous image.
	SwipeRight
)

// ClassifySwipe turns a gesture displacement into a swipe. Mostly vertical
// gestures are scrolls and never count.
func ClassifySwipe(dx, dy float64) Swipe {
	if !finite(dx) || !finite(dy) {
		return SwipeNone
	}
	if math.Abs(dx) <= math.Abs(dy) || math.Abs(dx) < SwipeThreshold {
		return SwipeNone
	}
	if dx < 0 {
		return SwipeLeft
	}
	return SwipeRight
}

// HandleSwipe applies a touch gesture and reports whether the state changed.
func (n *Navigator) HandleSwipe(dx, dy float64) bool {
	if n.Phase() != ImageOpen {
		return false
	}
	switch ClassifySwipe(dx, dy) {
	case SwipeLeft:
		n.NextImage()
		return true
	case SwipeRight:
		n.PrevImage()
		return true
	}
	return false
}

// Zoom limits.
const (
	MinZoom = 1.0
	MaxZoom = 4.0
)

// Zoom is the visual transform of the open image. Offsets are percentages of
// the image size.
type Zoom struct {
	Scale float64
	X, Y  float64
}

// Identity is the untransformed view.
var Identity = Zoom{Scale: MinZoom}

// IsIdentity reports whether z leaves the image untouched.
func (z Zoom) IsIdentity() bool { return z == Identity }

// CSS renders z as a CSS transform value.
func (z Zoom) CSS() string {
	return fmt.Sprintf("scale(%.2f) translate(%.1f%%, %.1f%%)", z.Scale, z.X, z.Y)
}

func (z Zoom) maxOffset() float64 { return (z.Scale - 1) * 50 / z.Scale }

func (z Zoom) clampOffsets() Zoom {
	limit := z.maxOffset()
	z.X = math.Max(-limit, math.Min(limit, z.X))
	z.Y = math.Max(-limit, math.Min(limit, z.Y))
	return z
}

// Pinch multiplies the zoom scale by factor. It only affects the open image
// and never changes which image is shown.
func (n *Navigator) Pinch(factor float64) bool {
	if n.Phase() != ImageOpen || factor <= 0 || !finite(factor) {
		return false
	}
	z := n.zoom
	z.Scale = math.Max(MinZoom, math.Min(MaxZoom, z.Scale*factor))
	if z.Scale == MinZoom {
		z = Identity
	} else {
		z = z.clampOffsets()
	}
	n.zoom = z
	return true
}

// Pan moves a zoomed image. It has no effect at identity scale.
func (n *Navigator) Pan(dx, dy float64) bool {
	if n.Phase() != ImageOpen || n.zoom.Scale <= MinZoom || !finite(dx) || !finite(dy) {
		return false
	}
	z := n.zoom
	z.X += dx
	z.Y += dy
	n.zoom = z.clampOffsets()
	return true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
