//go:build linux

package platform

import (
	"fmt"
	"image"
	"sync"

	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/x11"
)

// LinuxBackend creates toolkit surfaces as X11 top-level windows.
type LinuxBackend struct {
	conn   *x11.Connection
	events chan event.Event
	done   chan struct{}
	once   sync.Once
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	b := &LinuxBackend{
		conn:   conn,
		events: make(chan event.Event, 256),
		done:   make(chan struct{}),
	}
	go func() {
		conn.ReadEvents(b.events, b.done)
		close(b.events)
	}()
	return b
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh
// X11 connection to display ("" for $DISPLAY).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

func (b *LinuxBackend) Name() string { return "x11" }

// CreateSurface creates and maps an X11 window backed by a client-side pixel buffer.
func (b *LinuxBackend) CreateSurface(req SurfaceRequest) (Surface, error) {
	r := req.Bounds
	win, err := b.conn.CreateWindow(req.Title, r.X, r.Y, r.Width, r.Height, req.Resizable)
	if err != nil {
		return nil, err
	}
	return &x11Surface{
		conn:   b.conn,
		win:    win,
		pixels: newPixels(r.Width, r.Height),
	}, nil
}

// ScreenSize returns the size of the primary monitor.
func (b *LinuxBackend) ScreenSize() (int, int, error) {
	w, h := b.conn.ScreenSize()
	return w, h, nil
}

func (b *LinuxBackend) Events() <-chan event.Event {
	return b.events
}

// Close stops the event reader and disconnects from the X server.
func (b *LinuxBackend) Close() error {
	b.once.Do(func() {
		close(b.done)
		b.conn.Close()
	})
	return nil
}

type x11Surface struct {
	conn *x11.Connection
	win  *x11.Window

	mu     sync.Mutex
	pixels *image.RGBA
}

var (
	_ Surface      = (*x11Surface)(nil)
	_ CursorSetter = (*x11Surface)(nil)
)

func (s *x11Surface) Handle() event.Handle {
	if s.win == nil {
		return 0
	}
	return event.Handle(s.win.ID)
}

func (s *x11Surface) Geometry() (Rect, error) {
	if s.win == nil || s.win.ID == 0 {
		return Rect{}, ErrClosed
	}
	x, y, w, h, err := s.conn.WindowGeometry(s.win)
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

func (s *x11Surface) Move(x, y int) error {
	if s.win == nil || s.win.ID == 0 {
		return ErrClosed
	}
	return s.conn.MoveWindow(s.win, x, y)
}

func (s *x11Surface) Resize(w, h int) error {
	if s.win == nil || s.win.ID == 0 {
		return ErrClosed
	}
	if err := s.conn.ResizeWindow(s.win, w, h); err != nil {
		return err
	}
	s.resizeBuffer(w, h)
	return nil
}

func (s *x11Surface) resizeBuffer(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pixels.Rect.Dx() != w || s.pixels.Rect.Dy() != h {
		s.pixels = newPixels(w, h)
	}
}

// Pixels returns the back buffer, growing it to the server-side size first
// so OS-driven resizes are picked up on the next frame.
func (s *x11Surface) Pixels() *image.RGBA {
	if r, err := s.Geometry(); err == nil {
		s.resizeBuffer(r.Width, r.Height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pixels
}

func (s *x11Surface) Present(r Rect) error {
	if s.win == nil || s.win.ID == 0 {
		return ErrClosed
	}
	s.mu.Lock()
	pixels := s.pixels
	s.mu.Unlock()
	return s.conn.PutImage(s.win, pixels, r.Image())
}

func (s *x11Surface) SetCursor(name string) error {
	if s.win == nil || s.win.ID == 0 {
		return ErrClosed
	}
	return s.conn.SetCursor(s.win, name)
}

// Close destroys the X window; it is safe to call more than once.
func (s *x11Surface) Close() error {
	if s.win == nil {
		return nil
	}
	s.conn.DestroyWindow(s.win)
	s.win = nil
	return nil
}
