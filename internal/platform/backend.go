package platform

import (
	"errors"
	"image"

	"github.com/1broseidon/nativewm/internal/event"
)

// ErrClosed is returned by surface operations after Close.
var ErrClosed = errors.New("surface closed")

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether (x, y) lies inside r. Right and bottom edges are
// inclusive, matching toolkit hit-testing.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x <= r.X+r.Width && y <= r.Y+r.Height
}

// Union returns the smallest rect containing both r and o. Empty rects are
// ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.X+r.Width, o.X+o.Width)
	y1 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.Width, o.X+o.Width)
	y1 := min(r.Y+r.Height, o.Y+o.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// SurfaceRequest describes a native surface to create.
type SurfaceRequest struct {
	Title     string
	Bounds    Rect
	Resizable bool
}

// Surface is one OS-level window and its pixel buffer.
type Surface interface {
	Handle() event.Handle
	// Geometry reports the geometry the OS currently holds for the surface.
	Geometry() (Rect, error)
	Move(x, y int) error
	Resize(w, h int) error
	// Pixels returns the back buffer. It is reallocated when the surface
	// size changes, so callers must not retain it across frames.
	Pixels() *image.RGBA
	// Present copies the given region of the back buffer to the screen.
	Present(r Rect) error
	Close() error
}

// CursorSetter is implemented by surfaces that can change the pointer cursor.
type CursorSetter interface {
	SetCursor(name string) error
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Name() string
	CreateSurface(req SurfaceRequest) (Surface, error)
	// ScreenSize reports the usable display size.
	ScreenSize() (int, int, error)
	// Events delivers native input and window events. The channel is
	// closed when the backend shuts down.
	Events() <-chan event.Event
	Close() error
}
