package nativewindow

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/nativewm/internal/platform"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWindow(t *testing.T) (*Window, *platform.MemorySurface, *Factory) {
	t.Helper()
	backend := platform.NewMemoryBackend(800, 600)
	f := NewFactory(backend, quietLogger())
	w, err := f.Create(Request{Title: "main", Bounds: platform.Rect{X: 10, Y: 20, Width: 100, Height: 50}})
	require.NoError(t, err)
	ms, ok := backend.Surface(w.Handle())
	require.True(t, ok)
	return w, ms, f
}

func TestWindow_MoveToCurrentPositionSkipsOS(t *testing.T) {
	w, ms, _ := newTestWindow(t)

	require.NoError(t, w.Move(10, 20))
	require.NoError(t, w.Resize(100, 50))
	assert.Equal(t, platform.Calls{}, ms.Calls())

	require.NoError(t, w.Move(11, 20))
	require.NoError(t, w.Move(11, 20))
	assert.Equal(t, 1, ms.Calls().Move)
	assert.Equal(t, platform.Rect{X: 11, Y: 20, Width: 100, Height: 50}, w.Bounds())
}

func TestWindow_ResizeOnlyWhenSizeChanges(t *testing.T) {
	w, ms, _ := newTestWindow(t)

	require.NoError(t, w.Resize(200, 50))
	require.NoError(t, w.Resize(200, 50))
	assert.Equal(t, 1, ms.Calls().Resize)
}

func TestWindow_CloseIsIdempotent(t *testing.T) {
	w, ms, _ := newTestWindow(t)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, ms.Calls().Close)
	assert.Nil(t, w.Surface())
	assert.True(t, w.Closed())
}

func TestWindow_DirtyRectLifecycle(t *testing.T) {
	w, _, _ := newTestWindow(t)

	w.Invalidate(platform.Rect{X: 90, Y: 40, Width: 50, Height: 50})
	assert.Equal(t, platform.Rect{X: 90, Y: 40, Width: 10, Height: 10}, w.DirtyRect())

	w.UpdateLastDirtyRect()
	assert.True(t, w.DirtyRect().Empty())
	assert.Equal(t, platform.Rect{X: 90, Y: 40, Width: 10, Height: 10}, w.LastDirtyRect())

	w.Invalidate(platform.Rect{X: 0, Y: 0, Width: 5, Height: 5})
	assert.Equal(t, platform.Rect{X: 0, Y: 0, Width: 100, Height: 50}, w.CalcDirtyRect())
}

func TestWindow_SyncGeometryDoesNotCallOS(t *testing.T) {
	w, ms, _ := newTestWindow(t)

	w.SyncGeometry(platform.Rect{X: 0, Y: 0, Width: 300, Height: 200})
	assert.Equal(t, platform.Rect{Width: 300, Height: 200}, w.Bounds())
	assert.Equal(t, platform.Calls{}, ms.Calls())
}

func TestWindow_UnrefDestroysOnLastReference(t *testing.T) {
	w, ms, f := newTestWindow(t)

	w.Ref()
	w.Ref()
	assert.False(t, w.Unref())
	assert.False(t, w.Unref())
	assert.False(t, ms.Closed())
	assert.Equal(t, 1, f.Live())

	assert.True(t, w.Unref())
	assert.True(t, ms.Closed())
	assert.Equal(t, 0, f.Live())
	assert.False(t, w.Unref(), "unref past zero must be a no-op")
	assert.Equal(t, 1, ms.Calls().Close)
}

func TestFactory_SharedWindowIsReused(t *testing.T) {
	backend := platform.NewMemoryBackend(320, 240)
	f := NewFactory(backend, quietLogger())
	require.NoError(t, f.InitShared("app", 320, 240))
	assert.ErrorIs(t, f.InitShared("app", 320, 240), ErrSharedExists)

	a, err := f.Create(Request{Title: "a", Shared: true})
	require.NoError(t, err)
	b, err := f.Create(Request{Title: "b", Shared: true})
	require.NoError(t, err)

	assert.Same(t, f.Shared(), a)
	assert.Same(t, a, b)
	assert.Equal(t, 3, a.Refs())

	a.Unref()
	b.Unref()
	f.Deinit()
	assert.True(t, a.Closed())
	assert.Nil(t, f.Shared())
}

func TestFactory_UnsharedRequestGetsOwnSurface(t *testing.T) {
	backend := platform.NewMemoryBackend(320, 240)
	f := NewFactory(backend, quietLogger())
	require.NoError(t, f.InitShared("app", 320, 240))

	w, err := f.Create(Request{Title: "own", Bounds: platform.Rect{Width: 10, Height: 10}})
	require.NoError(t, err)
	assert.NotSame(t, f.Shared(), w)

	got, ok := f.Lookup(w.Handle())
	require.True(t, ok)
	assert.Same(t, w, got)
}

func TestFactory_CreateFailureIsReturned(t *testing.T) {
	backend := platform.NewMemoryBackend(320, 240)
	backend.SetMaxSurfaces(1)
	f := NewFactory(backend, quietLogger())

	_, err := f.Create(Request{Title: "one"})
	require.NoError(t, err)
	_, err = f.Create(Request{Title: "two"})
	assert.ErrorIs(t, err, platform.ErrSurfaceLimit)
}
