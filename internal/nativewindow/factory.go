package nativewindow

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/platform"
)

// ErrSharedExists is returned by InitShared when a shared window is already set up.
var ErrSharedExists = errors.New("shared native window already initialized")

// Request describes the native window a window widget needs.
type Request struct {
	Title     string
	Bounds    platform.Rect
	Resizable bool
	// Shared asks for the factory's shared window when one exists.
	Shared bool
}

// Factory creates native windows on a backend. In single-window mode it
// owns one preallocated shared window that every request reuses.
type Factory struct {
	backend platform.Backend
	logger  *slog.Logger

	shared *Window
	live   map[*Window]struct{}
}

// NewFactory creates a factory for backend.
func NewFactory(backend platform.Backend, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		backend: backend,
		logger:  logger,
		live:    make(map[*Window]struct{}),
	}
}

// Backend returns the backend windows are created on.
func (f *Factory) Backend() platform.Backend { return f.backend }

// InitShared preallocates the shared window used in single-window mode.
func (f *Factory) InitShared(title string, width, height int) error {
	if f.shared != nil {
		return ErrSharedExists
	}
	w, err := f.create(title, platform.Rect{Width: width, Height: height}, false)
	if err != nil {
		return err
	}
	f.shared = w
	return nil
}

// Shared returns the shared window, or nil outside single-window mode.
func (f *Factory) Shared() *Window { return f.shared }

// Create returns a native window for req. A shared request is satisfied by
// the shared window, with an added reference, when one exists.
func (f *Factory) Create(req Request) (*Window, error) {
	if req.Shared && f.shared != nil {
		return f.shared.Ref(), nil
	}
	return f.create(req.Title, req.Bounds, req.Resizable)
}

func (f *Factory) create(title string, bounds platform.Rect, resizable bool) (*Window, error) {
	s, err := f.backend.CreateSurface(platform.SurfaceRequest{
		Title:     title,
		Bounds:    bounds,
		Resizable: resizable,
	})
	if err != nil {
		return nil, fmt.Errorf("create native window %q: %w", title, err)
	}
	w := newWindow(f, s, title, bounds)
	f.live[w] = struct{}{}
	f.logger.Debug("created native window", "handle", w.handle, "title", title,
		"x", bounds.X, "y", bounds.Y, "w", bounds.Width, "h", bounds.Height)
	return w, nil
}

// Live returns the number of native windows not yet destroyed.
func (f *Factory) Live() int { return len(f.live) }

// Lookup finds a live native window by handle.
func (f *Factory) Lookup(h event.Handle) (*Window, bool) {
	for w := range f.live {
		if w.handle == h {
			return w, true
		}
	}
	return nil, false
}

func (f *Factory) forget(w *Window) {
	delete(f.live, w)
	if f.shared == w {
		f.shared = nil
	}
}

// Deinit releases the factory's reference to the shared window.
func (f *Factory) Deinit() {
	if f.shared != nil {
		f.shared.Unref()
		f.shared = nil
	}
}
