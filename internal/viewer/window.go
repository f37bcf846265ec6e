package viewer

import "sync"

// Window is the surface the viewer fills when no fixed size is configured.
type Window interface {
	// InnerSize returns the drawable size in pixels.
	InnerSize() (width, height int)
	// OnResize registers fn to run after the size changes.
	OnResize(fn func())
}

// HeadlessWindow is a Window whose size is set by its host: an ebiten
// Layout call, a test, or nothing at all for offline rendering.
type HeadlessWindow struct {
	mu        sync.Mutex
	w, h      int
	listeners []func()
}

// NewHeadlessWindow returns a window of the given size.
func NewHeadlessWindow(w, h int) *HeadlessWindow {
	return &HeadlessWindow{w: w, h: h}
}

func (hw *HeadlessWindow) InnerSize() (int, int) {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	return hw.w, hw.h
}

func (hw *HeadlessWindow) OnResize(fn func()) {
	hw.mu.Lock()
	hw.listeners = append(hw.listeners, fn)
	hw.mu.Unlock()
}

// Resize changes the size and notifies listeners. Listeners run on the
// calling goroutine and only when the size actually changed.
func (hw *HeadlessWindow) Resize(w, h int) {
	hw.mu.Lock()
	if w == hw.w && h == hw.h {
		hw.mu.Unlock()
		return
	}
	hw.w, hw.h = w, h
	listeners := append([]func(){}, hw.listeners...)
	hw.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
