// Package nativewindow wraps platform surfaces in reference-counted windows
// that track their dirty region and own a canvas.
package nativewindow

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/nativewm/internal/canvas"
	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/platform"
)

// Window is one OS-level surface shared by the window widgets bound to it.
type Window struct {
	factory *Factory
	logger  *slog.Logger

	surface platform.Surface
	handle  event.Handle
	canvas  *canvas.Image
	title   string

	bounds    platform.Rect
	dirty     platform.Rect
	lastDirty platform.Rect

	refs   int
	closed bool
}

func newWindow(f *Factory, s platform.Surface, title string, bounds platform.Rect) *Window {
	return &Window{
		factory: f,
		logger:  f.logger,
		surface: s,
		handle:  s.Handle(),
		canvas:  canvas.New(s),
		title:   title,
		bounds:  bounds,
		refs:    1,
	}
}

// Handle returns the native handle events from this window carry.
func (w *Window) Handle() event.Handle { return w.handle }

func (w *Window) Title() string { return w.title }

// Bounds returns the last known position and size.
func (w *Window) Bounds() platform.Rect { return w.bounds }

// Canvas returns the canvas bound to this window.
func (w *Window) Canvas() canvas.Canvas { return w.canvas }

// Image returns the concrete canvas, for callers that need its statistics.
func (w *Window) Image() *canvas.Image { return w.canvas }

// Surface returns the underlying platform surface, nil once closed.
func (w *Window) Surface() platform.Surface { return w.surface }

// Refs returns the current reference count.
func (w *Window) Refs() int { return w.refs }

func (w *Window) Closed() bool { return w.closed }

// Move records the new position and moves the OS window only when the OS
// reports a different position.
func (w *Window) Move(x, y int) error {
	w.bounds.X = x
	w.bounds.Y = y
	if w.closed {
		return platform.ErrClosed
	}
	cur, err := w.surface.Geometry()
	if err != nil {
		return fmt.Errorf("query geometry: %w", err)
	}
	if cur.X == x && cur.Y == y {
		return nil
	}
	return w.surface.Move(x, y)
}

// Resize records the new size and resizes the OS window only when the OS
// reports a different size.
func (w *Window) Resize(width, height int) error {
	w.bounds.Width = width
	w.bounds.Height = height
	if w.closed {
		return platform.ErrClosed
	}
	cur, err := w.surface.Geometry()
	if err != nil {
		return fmt.Errorf("query geometry: %w", err)
	}
	if cur.Width == width && cur.Height == height {
		return nil
	}
	return w.surface.Resize(width, height)
}

// Geometry reads the authoritative geometry from the OS.
func (w *Window) Geometry() (platform.Rect, error) {
	if w.closed {
		return platform.Rect{}, platform.ErrClosed
	}
	return w.surface.Geometry()
}

// SyncGeometry records geometry reported by the OS without calling back into it.
func (w *Window) SyncGeometry(r platform.Rect) {
	w.bounds = r
	w.dirty = w.dirty.Intersect(w.local())
	w.lastDirty = w.lastDirty.Intersect(w.local())
}

func (w *Window) local() platform.Rect {
	return platform.Rect{Width: w.bounds.Width, Height: w.bounds.Height}
}

// Invalidate adds r, in surface coordinates, to the dirty region.
func (w *Window) Invalidate(r platform.Rect) {
	w.dirty = w.dirty.Union(r.Intersect(w.local()))
}

// DirtyRect returns the region invalidated since the last paint.
func (w *Window) DirtyRect() platform.Rect { return w.dirty }

// LastDirtyRect returns the region painted by the previous frame.
func (w *Window) LastDirtyRect() platform.Rect { return w.lastDirty }

// CalcDirtyRect returns the region to repaint this frame: the new
// invalidations plus the previous frame's region, since the back buffer may
// be one frame behind.
func (w *Window) CalcDirtyRect() platform.Rect {
	return w.dirty.Union(w.lastDirty).Intersect(w.local())
}

// UpdateLastDirtyRect records the painted region and clears the dirty region.
func (w *Window) UpdateLastDirtyRect() {
	w.lastDirty = w.dirty
	w.dirty = platform.Rect{}
}

// Close releases the OS surface. Calling it again is a no-op.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	s := w.surface
	w.surface = nil
	if s == nil {
		return nil
	}
	return s.Close()
}

// Ref adds a reference and returns w.
func (w *Window) Ref() *Window {
	w.refs++
	return w
}

// Unref drops a reference and destroys the window when none remain. It
// reports whether the window was destroyed.
func (w *Window) Unref() bool {
	if w.refs <= 0 {
		return false
	}
	w.refs--
	if w.refs > 0 {
		return false
	}

	w.logger.Debug("close native window", "handle", w.handle, "title", w.title)
	if err := w.Close(); err != nil {
		w.logger.Warn("close native window failed", "handle", w.handle, "error", err)
	}
	w.factory.forget(w)
	return true
}
