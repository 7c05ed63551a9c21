package variety

import "garden-guide/internal/calendar"

// Window is an optional inclusive range of week ordinals. It is either
// absent or holds both bounds.
type Window struct {
	start, end int
	present    bool
}

// NewWindow returns a present window from start to end.
func NewWindow(start, end int) Window {
	return Window{start: start, end: end, present: true}
}

// NoWindow returns an absent window.
func NoWindow() Window {
	return Window{}
}

// Bounds returns the window's ordinals and whether it is present.
func (w Window) Bounds() (start, end int, ok bool) {
	return w.start, w.end, w.present
}

// Present reports whether the window holds bounds.
func (w Window) Present() bool {
	return w.present
}

// Contains reports whether week falls inside a present window.
func (w Window) Contains(week int) bool {
	return w.present && calendar.IsWithin(week, w.start, w.end)
}
