package wm

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/nativewindow"
	"github.com/1broseidon/nativewm/internal/platform"
	"github.com/1broseidon/nativewm/internal/widget"
)

type fixture struct {
	m       *Native
	backend *platform.MemoryBackend
	factory *nativewindow.Factory
	fatal   []error
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		backend: platform.NewMemoryBackend(800, 600),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	t.Cleanup(func() { fx.backend.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fx.factory = nativewindow.NewFactory(fx.backend, logger)
	fx.m = NewNative(Options{
		Logger:  logger,
		Factory: fx.factory,
		Now:     func() time.Time { return fx.clock },
		OnFatal: func(err error) { fx.fatal = append(fx.fatal, err) },
	})
	require.NoError(t, fx.m.PostInit(800, 600))
	return fx
}

func (fx *fixture) open(t *testing.T, typ widget.Type, name string, r platform.Rect) *widget.Widget {
	t.Helper()
	win := widget.New(typ, name)
	win.MoveResize(r.X, r.Y, r.Width, r.Height)
	require.NoError(t, fx.m.OpenWindow(win))
	return win
}

// openNow opens win and drains the idle queue so it is fully open.
func (fx *fixture) openNow(t *testing.T, typ widget.Type, name string, r platform.Rect) *widget.Widget {
	t.Helper()
	win := fx.open(t, typ, name, r)
	fx.m.Idle().Drain()
	require.Equal(t, widget.StageOpen, win.Stage())
	return win
}

func (fx *fixture) surface(t *testing.T, win *widget.Widget) *platform.MemorySurface {
	t.Helper()
	nw, ok := win.NativeWindow()
	require.True(t, ok, "%s has no native window", win)
	s, ok := fx.backend.Surface(nw.Handle())
	require.True(t, ok)
	return s
}

func handleOf(t *testing.T, win *widget.Widget) event.Handle {
	t.Helper()
	nw, ok := win.NativeWindow()
	require.True(t, ok)
	return nw.Handle()
}

func recordEvents(w *widget.Widget, log *[]string, types ...event.Type) {
	for _, typ := range types {
		w.On(typ, func(_ *widget.Widget, e event.Event) bool {
			*log = append(*log, w.Name+":"+e.Type.String())
			return false
		})
	}
}

func TestOpenWindow_IsDeferredUntilIdleDrain(t *testing.T) {
	fx := newFixture(t)
	var log []string
	recordEvents(fx.m.Root(), &log, event.WindowWillOpen, event.WindowOpen)

	win := widget.New(widget.NormalWindow, "main")
	recordEvents(win, &log, event.WindowWillOpen, event.WindowOpen)
	require.NoError(t, fx.m.OpenWindow(win))

	assert.Same(t, fx.m.Root(), win.Parent())
	assert.Equal(t, widget.StageOpening, win.Stage())
	_, bound := win.NativeWindow()
	assert.False(t, bound)
	require.NoError(t, fx.m.Paint())
	assert.Equal(t, 0, fx.factory.Live())

	fx.m.Idle().Drain()

	nw, bound := win.NativeWindow()
	require.True(t, bound)
	assert.Equal(t, widget.StageOpen, win.Stage())
	assert.Equal(t, 800, win.W, "zero width fills the parent")
	assert.Equal(t, 600, win.H)
	assert.Equal(t, 1, win.Layouts())
	assert.Equal(t, []string{
		"main:window_will_open", "window_manager:window_will_open",
		"main:window_open", "window_manager:window_open",
	}, log)

	require.NoError(t, fx.m.Paint())
	assert.Equal(t, 1, nw.Image().Frames())
	assert.Equal(t, platform.Rect{Width: 800, Height: 600}, nw.Image().Dirty())
}

func TestOpenWindow_RejectsNonWindows(t *testing.T) {
	fx := newFixture(t)
	err := fx.m.OpenWindow(widget.New(widget.Generic, "label"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, fx.m.OpenWindow(nil), ErrInvalidArgument)
}

func TestOpenWindow_DialogCentredOverParent(t *testing.T) {
	fx := newFixture(t)
	fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	dlg := fx.openNow(t, widget.Dialog, "dlg", platform.Rect{Width: 200, Height: 100})

	assert.Equal(t, 300, dlg.X)
	assert.Equal(t, 250, dlg.Y)
}

func TestCloseWindowForce_DetachesNowDestroysLater(t *testing.T) {
	fx := newFixture(t)
	win := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	s := fx.surface(t, win)

	require.NoError(t, fx.m.CloseWindowForce(win))

	assert.Equal(t, 0, fx.m.Root().ChildCount())
	assert.Nil(t, win.Parent())
	assert.Equal(t, widget.StageClosing, win.Stage())
	assert.False(t, win.Destroyed())
	assert.False(t, s.Closed())

	fx.m.Idle().Drain()

	assert.True(t, win.Destroyed())
	assert.True(t, s.Closed())
	assert.Equal(t, 0, fx.factory.Live())
	assert.ErrorIs(t, fx.m.CloseWindowForce(win), ErrNotFound)
}

func TestCloseWindow_BeforeOpenCompletes(t *testing.T) {
	fx := newFixture(t)
	win := fx.open(t, widget.NormalWindow, "main", platform.Rect{})
	require.NoError(t, fx.m.CloseWindow(win))

	fx.m.Idle().Drain()

	assert.True(t, win.Destroyed())
	_, ok := fx.backend.Surface(1)
	assert.False(t, ok, "no surface is created for a window closed before opening")
}

func TestOpenWindow_RejectsClosingWindow(t *testing.T) {
	fx := newFixture(t)
	fx.openNow(t, widget.NormalWindow, "home", platform.Rect{})
	win := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	require.NoError(t, fx.m.CloseWindowForce(win))

	assert.ErrorIs(t, fx.m.OpenWindow(win), ErrInvalidArgument)

	fx.m.Idle().Drain()
	assert.True(t, win.Destroyed())
	assert.ErrorIs(t, fx.m.OpenWindow(win), ErrInvalidArgument)
	assert.Equal(t, 1, fx.m.Root().ChildCount())
	assert.Equal(t, 1, fx.factory.Live())
}

func TestSharedNativeWindow_ReleasedAfterLastDialog(t *testing.T) {
	fx := newFixture(t)
	main := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	s := fx.surface(t, main)
	require.NoError(t, fx.m.DispatchInputEvent(event.Event{
		Type: event.PointerDown, NativeHandle: handleOf(t, main), X: 10, Y: 10,
	}))

	d1 := fx.openNow(t, widget.Dialog, "d1", platform.Rect{Width: 100, Height: 100})
	d2 := fx.openNow(t, widget.Dialog, "d2", platform.Rect{Width: 100, Height: 100})

	nw, _ := main.NativeWindow()
	for _, d := range []*widget.Widget{d1, d2} {
		got, ok := d.NativeWindow()
		require.True(t, ok)
		assert.Same(t, nw, got)
	}
	assert.Equal(t, 3, nw.Refs())

	require.NoError(t, fx.m.CloseWindow(d1))
	fx.m.Idle().Drain()
	assert.False(t, s.Closed())
	assert.Equal(t, 2, nw.Refs())

	require.NoError(t, fx.m.CloseWindow(main))
	fx.m.Idle().Drain()
	assert.False(t, s.Closed(), "d2 still holds the surface")

	require.NoError(t, fx.m.CloseWindow(d2))
	fx.m.Idle().Drain()
	assert.True(t, s.Closed())
	assert.Equal(t, 1, s.Calls().Close)
}

func TestSharedNativeWindow_DestroyedOnceInAnyCloseOrder(t *testing.T) {
	orders := [][]int{
		{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1},
	}
	for _, order := range orders {
		fx := newFixture(t)
		wins := []*widget.Widget{fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})}
		s := fx.surface(t, wins[0])
		for _, name := range []string{"a", "b", "c"} {
			wins = append(wins, fx.openNow(t, widget.Popup, name, platform.Rect{Width: 10, Height: 10}))
		}

		for i, idx := range order {
			require.NoError(t, fx.m.CloseWindowForce(wins[idx]))
			fx.m.Idle().Drain()
			if i < len(order)-1 {
				assert.False(t, s.Closed(), "order %v: closed after %d windows", order, i+1)
			}
		}
		assert.True(t, s.Closed(), "order %v", order)
		assert.Equal(t, 1, s.Calls().Close, "order %v", order)
	}
}

func TestDialog_StalePrevWindowFallsBackToTopMainWindow(t *testing.T) {
	fx := newFixture(t)
	first := fx.openNow(t, widget.NormalWindow, "first", platform.Rect{})
	require.NoError(t, fx.m.DispatchInputEvent(event.Event{
		Type: event.PointerDown, NativeHandle: handleOf(t, first), X: 5, Y: 5,
	}))
	prev, err := fx.m.PrevWindow()
	require.NoError(t, err)
	assert.Same(t, first, prev)

	require.NoError(t, fx.m.CloseWindow(first))
	_, err = fx.m.PrevWindow()
	assert.ErrorIs(t, err, ErrNotFound)

	second := fx.openNow(t, widget.NormalWindow, "second", platform.Rect{})
	dlg := fx.openNow(t, widget.Dialog, "dlg", platform.Rect{Width: 50, Height: 50})

	want, _ := second.NativeWindow()
	got, ok := dlg.NativeWindow()
	require.True(t, ok)
	assert.Same(t, want, got)
}

func TestDialog_WithoutPointerInteractionUsesTopMainWindow(t *testing.T) {
	fx := newFixture(t)
	fx.openNow(t, widget.NormalWindow, "bottom", platform.Rect{})
	top := fx.openNow(t, widget.NormalWindow, "top", platform.Rect{})
	popup := fx.openNow(t, widget.Popup, "menu", platform.Rect{Width: 50, Height: 50})

	want, _ := top.NativeWindow()
	got, _ := popup.NativeWindow()
	assert.Same(t, want, got)
}

func TestDialog_NoOwnerWindowLeavesItUnbacked(t *testing.T) {
	fx := newFixture(t)
	dlg := fx.openNow(t, widget.Dialog, "orphan", platform.Rect{Width: 50, Height: 50})

	_, ok := dlg.NativeWindow()
	assert.False(t, ok)
	assert.Empty(t, fx.fatal)
	require.NoError(t, fx.m.Paint())
}

func TestOpenWindow_CreationFailureIsFatal(t *testing.T) {
	fx := newFixture(t)
	fx.backend.SetMaxSurfaces(1)
	fx.openNow(t, widget.NormalWindow, "one", platform.Rect{})
	fx.open(t, widget.NormalWindow, "two", platform.Rect{})
	fx.m.Idle().Drain()

	require.Len(t, fx.fatal, 1)
	assert.ErrorIs(t, fx.fatal[0], platform.ErrSurfaceLimit)
}

func TestBack_StopsAtHome(t *testing.T) {
	fx := newFixture(t)
	home := fx.openNow(t, widget.NormalWindow, "home", platform.Rect{})
	a := fx.openNow(t, widget.NormalWindow, "a", platform.Rect{})
	b := fx.openNow(t, widget.Dialog, "b", platform.Rect{Width: 10, Height: 10})

	require.NoError(t, fx.m.Back())
	assert.Nil(t, b.Parent())
	require.NoError(t, fx.m.Back())
	assert.Nil(t, a.Parent())
	assert.ErrorIs(t, fx.m.Back(), ErrAtHome)

	top, err := fx.m.TopWindow()
	require.NoError(t, err)
	assert.Same(t, home, top)
}

func TestBackToHome_ClosesEverythingAboveHome(t *testing.T) {
	fx := newFixture(t)
	home := fx.openNow(t, widget.NormalWindow, "home", platform.Rect{})
	fx.openNow(t, widget.NormalWindow, "a", platform.Rect{})
	fx.openNow(t, widget.Popup, "b", platform.Rect{Width: 10, Height: 10})

	require.NoError(t, fx.m.BackToHome())
	fx.m.Idle().Drain()

	assert.Equal(t, []*widget.Widget{home}, fx.m.Root().Children())
}

func TestBack_NoWindows(t *testing.T) {
	fx := newFixture(t)
	assert.ErrorIs(t, fx.m.Back(), ErrNotFound)
	assert.ErrorIs(t, fx.m.BackToHome(), ErrNotFound)
	_, err := fx.m.TopMainWindow()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetCursor_AppliedToExistingAndNewWindows(t *testing.T) {
	fx := newFixture(t)
	a := fx.openNow(t, widget.NormalWindow, "a", platform.Rect{})
	require.NoError(t, fx.m.SetCursor("hand"))
	b := fx.openNow(t, widget.NormalWindow, "b", platform.Rect{})

	assert.Equal(t, "hand", fx.surface(t, a).Cursor())
	assert.Equal(t, "hand", fx.surface(t, b).Cursor())
	assert.Equal(t, "hand", fx.m.Cursor())
}

func TestCheckScreenSaver_FiresOncePerIdlePeriod(t *testing.T) {
	fx := newFixture(t)
	win := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	var log []string
	recordEvents(win, &log, event.ScreenSaver)

	require.NoError(t, fx.m.SetScreenSaverTime(time.Minute))
	assert.False(t, fx.m.CheckScreenSaver(fx.clock.Add(30*time.Second)))
	assert.True(t, fx.m.CheckScreenSaver(fx.clock.Add(61*time.Second)))
	assert.False(t, fx.m.CheckScreenSaver(fx.clock.Add(2*time.Minute)))
	assert.Equal(t, []string{"main:screen_saver"}, log)

	fx.clock = fx.clock.Add(3 * time.Minute)
	require.NoError(t, fx.m.DispatchInputEvent(event.Event{Type: event.KeyDown, Key: "a"}))
	assert.False(t, fx.m.CheckScreenSaver(fx.clock.Add(59*time.Second)))
	assert.True(t, fx.m.CheckScreenSaver(fx.clock.Add(time.Minute)))

	assert.ErrorIs(t, fx.m.SetScreenSaverTime(-time.Second), ErrInvalidArgument)
}

func TestResize_LaysOutRoot(t *testing.T) {
	fx := newFixture(t)
	win := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	before := win.Layouts()

	require.NoError(t, fx.m.Resize(1024, 768))
	assert.Equal(t, 1024, fx.m.Root().W)
	assert.Equal(t, before+1, win.Layouts())
	assert.ErrorIs(t, fx.m.Resize(-1, 5), ErrInvalidArgument)
}

func TestMeasureText_UsesScratchCanvas(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, 35, fx.m.MeasureText("hello"))
}

func TestClose_ReleasesEverything(t *testing.T) {
	fx := newFixture(t)
	fx.openNow(t, widget.NormalWindow, "a", platform.Rect{})
	fx.openNow(t, widget.Dialog, "b", platform.Rect{Width: 10, Height: 10})

	fx.m.Close()
	assert.Equal(t, 0, fx.m.Root().ChildCount())
	assert.Equal(t, 0, fx.factory.Live())
}

func TestErrorsWrapSentinels(t *testing.T) {
	fx := newFixture(t)
	err := fx.m.CloseWindow(widget.New(widget.Dialog, "stranger"))
	assert.True(t, errors.Is(err, ErrNotFound))
}
