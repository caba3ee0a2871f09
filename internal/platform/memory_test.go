package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/nativewm/internal/event"
)

func TestRect_UnionIgnoresEmpty(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 5, Height: 5}
	assert.Equal(t, r, r.Union(Rect{}))
	assert.Equal(t, r, Rect{}.Union(r))
	assert.Equal(t, Rect{X: 0, Y: 10, Width: 15, Height: 10}, r.Union(Rect{X: 0, Y: 15, Width: 1, Height: 5}))
}

func TestRect_IntersectDisjointIsEmpty(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 10, Y: 0, Width: 10, Height: 10}
	assert.True(t, a.Intersect(b).Empty())
	assert.Equal(t, Rect{X: 5, Y: 5, Width: 5, Height: 5}, a.Intersect(Rect{X: 5, Y: 5, Width: 20, Height: 20}))
}

func TestRect_ContainsIncludesFarEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	assert.True(t, r.Contains(10, 20))
	assert.True(t, r.Contains(40, 60))
	assert.False(t, r.Contains(41, 60))
	assert.False(t, r.Contains(9, 20))
}

func TestMemoryBackend_CreateAssignsDistinctHandles(t *testing.T) {
	b := NewMemoryBackend(800, 600)
	s1, err := b.CreateSurface(SurfaceRequest{Title: "a", Bounds: Rect{Width: 10, Height: 10}})
	require.NoError(t, err)
	s2, err := b.CreateSurface(SurfaceRequest{Title: "b", Bounds: Rect{Width: 10, Height: 10}})
	require.NoError(t, err)

	assert.NotEqual(t, s1.Handle(), s2.Handle())
	got, ok := b.Surface(s2.Handle())
	require.True(t, ok)
	assert.Equal(t, "b", got.Title())
}

func TestMemoryBackend_SurfaceLimit(t *testing.T) {
	b := NewMemoryBackend(800, 600)
	b.SetMaxSurfaces(1)
	_, err := b.CreateSurface(SurfaceRequest{Bounds: Rect{Width: 1, Height: 1}})
	require.NoError(t, err)
	_, err = b.CreateSurface(SurfaceRequest{Bounds: Rect{Width: 1, Height: 1}})
	assert.ErrorIs(t, err, ErrSurfaceLimit)
}

func TestMemorySurface_OSGeometryIsNotCounted(t *testing.T) {
	b := NewMemoryBackend(800, 600)
	s, err := b.CreateSurface(SurfaceRequest{Bounds: Rect{Width: 10, Height: 10}})
	require.NoError(t, err)
	ms := s.(*MemorySurface)

	ms.SetOSGeometry(Rect{X: 1, Y: 2, Width: 30, Height: 40})

	geom, err := ms.Geometry()
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 1, Y: 2, Width: 30, Height: 40}, geom)
	assert.Equal(t, Calls{}, ms.Calls())
	assert.Equal(t, 30, ms.Pixels().Rect.Dx())
}

func TestMemorySurface_ClosedRejectsOperations(t *testing.T) {
	b := NewMemoryBackend(800, 600)
	s, err := b.CreateSurface(SurfaceRequest{Bounds: Rect{Width: 10, Height: 10}})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Move(1, 1), ErrClosed)
	assert.ErrorIs(t, s.Present(Rect{Width: 1, Height: 1}), ErrClosed)
}

func TestMemoryBackend_InjectDeliversEvents(t *testing.T) {
	b := NewMemoryBackend(800, 600)
	require.True(t, b.Inject(event.Event{Type: event.PointerDown, X: 3}))
	e := <-b.Events()
	assert.Equal(t, event.PointerDown, e.Type)

	require.NoError(t, b.Close())
	_, open := <-b.Events()
	assert.False(t, open)
	assert.False(t, b.Inject(event.Event{Type: event.PointerUp}))
}
