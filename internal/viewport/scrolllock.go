// Package viewport models page-level environment state shared by overlays.
package viewport

import "sync"

// ScrollLock keeps the page from scrolling while at least one overlay is open.
// Overlays acquire it when they open and call the returned release when they
// close, so nested overlays balance out.
type ScrollLock struct {
	mu    sync.Mutex
	count int
}

// Acquire takes one reference. The returned release func drops it and is safe
// to call more than once.
func (l *ScrollLock) Acquire() (release func()) {
	l.mu.Lock()
	l.count++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			if l.count > 0 {
				l.count--
			}
			l.mu.Unlock()
		})
	}
}

// Locked reports whether any overlay holds the lock.
func (l *ScrollLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count > 0
}

// Depth returns the number of outstanding references.
func (l *ScrollLock) Depth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
