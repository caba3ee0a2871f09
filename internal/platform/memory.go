package platform

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/1broseidon/nativewm/internal/event"
)

// ErrSurfaceLimit is returned when a MemoryBackend refuses to allocate more
// surfaces than configured.
var ErrSurfaceLimit = errors.New("surface limit reached")

// MemoryBackend is a pixel-surface backend that keeps every surface in
// memory. It is used for headless and embedded targets and in tests, where
// its call counters make OS round-trips observable.
type MemoryBackend struct {
	mu          sync.Mutex
	width       int
	height      int
	maxSurfaces int
	nextHandle  event.Handle
	surfaces    map[event.Handle]*MemorySurface
	events      chan event.Event
	closed      bool
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates a backend whose screen is w x h pixels.
func NewMemoryBackend(w, h int) *MemoryBackend {
	return &MemoryBackend{
		width:      w,
		height:     h,
		nextHandle: 1,
		surfaces:   make(map[event.Handle]*MemorySurface),
		events:     make(chan event.Event, 256),
	}
}

// SetMaxSurfaces limits the number of live surfaces; 0 means unlimited.
func (b *MemoryBackend) SetMaxSurfaces(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maxSurfaces = n
}

func (b *MemoryBackend) Name() string { return "memory" }

// CreateSurface allocates a new in-memory surface.
func (b *MemoryBackend) CreateSurface(req SurfaceRequest) (Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.maxSurfaces > 0 && b.liveSurfacesLocked() >= b.maxSurfaces {
		return nil, fmt.Errorf("create surface %q: %w", req.Title, ErrSurfaceLimit)
	}

	s := &MemorySurface{
		backend:   b,
		handle:    b.nextHandle,
		title:     req.Title,
		resizable: req.Resizable,
		geometry:  req.Bounds,
		pixels:    newPixels(req.Bounds.Width, req.Bounds.Height),
	}
	b.nextHandle++
	b.surfaces[s.handle] = s
	return s, nil
}

func (b *MemoryBackend) liveSurfacesLocked() int {
	n := 0
	for _, s := range b.surfaces {
		if !s.closed {
			n++
		}
	}
	return n
}

// ScreenSize reports the configured screen size.
func (b *MemoryBackend) ScreenSize() (int, int, error) {
	return b.width, b.height, nil
}

// Events returns the native event channel.
func (b *MemoryBackend) Events() <-chan event.Event {
	return b.events
}

// Inject queues a native event as if the OS had raised it. It never blocks;
// events are dropped when the buffer is full.
func (b *MemoryBackend) Inject(e event.Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	select {
	case b.events <- e:
		return true
	default:
		return false
	}
}

// Surface returns the surface with the given handle, if it was created by b.
func (b *MemoryBackend) Surface(h event.Handle) (*MemorySurface, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfaces[h]
	return s, ok
}

// Close closes every surface and the event channel.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	surfaces := make([]*MemorySurface, 0, len(b.surfaces))
	for _, s := range b.surfaces {
		surfaces = append(surfaces, s)
	}
	close(b.events)
	b.mu.Unlock()

	for _, s := range surfaces {
		s.Close()
	}
	return nil
}

// MemorySurface is a Surface backed by an in-memory RGBA buffer.
type MemorySurface struct {
	backend   *MemoryBackend
	handle    event.Handle
	title     string
	resizable bool

	mu       sync.Mutex
	geometry Rect
	pixels   *image.RGBA
	cursor   string
	closed   bool

	moveCalls    int
	resizeCalls  int
	presentCalls int
	closeCalls   int
	presented    []Rect
}

var (
	_ Surface      = (*MemorySurface)(nil)
	_ CursorSetter = (*MemorySurface)(nil)
)

func newPixels(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
}

func (s *MemorySurface) Handle() event.Handle { return s.handle }

// Title returns the title the surface was created with.
func (s *MemorySurface) Title() string { return s.title }

// Resizable reports whether the surface was requested as user-resizable.
func (s *MemorySurface) Resizable() bool { return s.resizable }

func (s *MemorySurface) Geometry() (Rect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Rect{}, ErrClosed
	}
	return s.geometry, nil
}

func (s *MemorySurface) Move(x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.moveCalls++
	s.geometry.X = x
	s.geometry.Y = y
	return nil
}

func (s *MemorySurface) Resize(w, h int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.resizeCalls++
	s.setSizeLocked(w, h)
	return nil
}

func (s *MemorySurface) setSizeLocked(w, h int) {
	s.geometry.Width = w
	s.geometry.Height = h
	if s.pixels.Rect.Dx() != w || s.pixels.Rect.Dy() != h {
		s.pixels = newPixels(w, h)
	}
}

// SetOSGeometry changes the geometry as the OS would when the user drags a
// border, without counting it as a toolkit-issued call.
func (s *MemorySurface) SetOSGeometry(r Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry.X = r.X
	s.geometry.Y = r.Y
	s.setSizeLocked(r.Width, r.Height)
}

func (s *MemorySurface) Pixels() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pixels
}

func (s *MemorySurface) Present(r Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.presentCalls++
	s.presented = append(s.presented, r)
	return nil
}

func (s *MemorySurface) SetCursor(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.cursor = name
	return nil
}

// Cursor returns the last cursor name set on the surface.
func (s *MemorySurface) Cursor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *MemorySurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *MemorySurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Calls reports how many times each OS-level operation reached the surface.
type Calls struct {
	Move    int
	Resize  int
	Present int
	Close   int
}

// Calls returns the surface's call counters.
func (s *MemorySurface) Calls() Calls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Calls{
		Move:    s.moveCalls,
		Resize:  s.resizeCalls,
		Present: s.presentCalls,
		Close:   s.closeCalls,
	}
}

// Presented returns the regions passed to Present, oldest first.
func (s *MemorySurface) Presented() []Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Rect(nil), s.presented...)
}
