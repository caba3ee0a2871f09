package wm

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/nativewm/internal/canvas"
	"github.com/1broseidon/nativewm/internal/platform"
	"github.com/1broseidon/nativewm/internal/widget"
)

func TestPaint_SkipsWindowsWithEmptyDirtyRect(t *testing.T) {
	fx := newFixture(t)
	win := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	s := fx.surface(t, win)
	nw, _ := win.NativeWindow()

	painted := 0
	win.OnPaint = func(*widget.Widget, canvas.Canvas) { painted++ }

	require.NoError(t, fx.m.Paint())
	assert.Equal(t, 1, nw.Image().Frames())
	assert.Equal(t, 1, painted)
	assert.Equal(t, 1, s.Calls().Present)

	require.NoError(t, fx.m.Paint())
	assert.Equal(t, 1, nw.Image().Frames(), "no begin on a clean window")
	assert.Equal(t, 1, painted)
	assert.Equal(t, 1, s.Calls().Present)
	assert.False(t, nw.Canvas().InFrame())
}

func TestPaint_RepaintsPreviousRegionWithNewDamage(t *testing.T) {
	fx := newFixture(t)
	win := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	nw, _ := win.NativeWindow()
	require.NoError(t, fx.m.Paint())

	nw.Invalidate(platform.Rect{X: 10, Y: 10, Width: 5, Height: 5})
	require.NoError(t, fx.m.Paint())
	assert.Equal(t, platform.Rect{Width: 800, Height: 600}, nw.Image().Dirty(),
		"last frame's region is included")
	assert.Equal(t, platform.Rect{X: 10, Y: 10, Width: 5, Height: 5}, nw.LastDirtyRect())

	nw.Invalidate(platform.Rect{X: 40, Y: 40, Width: 5, Height: 5})
	require.NoError(t, fx.m.Paint())
	assert.Equal(t, platform.Rect{X: 10, Y: 10, Width: 35, Height: 35}, nw.Image().Dirty())
}

func TestPaint_SharedSurfaceBracketedOnceAndPaintedInOrder(t *testing.T) {
	fx := newFixture(t)
	main := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	dlg := fx.openNow(t, widget.Dialog, "dlg", platform.Rect{Width: 100, Height: 50})
	s := fx.surface(t, main)
	nw, _ := main.NativeWindow()

	var order []string
	var origins [][2]int
	record := func(w *widget.Widget, c canvas.Canvas) {
		order = append(order, w.Name)
		x, y := c.Origin()
		origins = append(origins, [2]int{x, y})
	}
	main.OnPaint = record
	dlg.OnPaint = record

	require.NoError(t, fx.m.Paint())

	assert.Equal(t, []string{"main", "dlg"}, order)
	assert.Equal(t, [][2]int{{0, 0}, {350, 275}}, origins)
	assert.Equal(t, 1, nw.Image().Frames())
	assert.Equal(t, 1, s.Calls().Present)
}

func TestPaint_DialogDamageRepaintsOwnerSurface(t *testing.T) {
	fx := newFixture(t)
	main := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	require.NoError(t, fx.m.Paint())
	require.NoError(t, fx.m.Paint())
	nw, _ := main.NativeWindow()
	require.True(t, nw.DirtyRect().Empty())

	dlg := fx.openNow(t, widget.Dialog, "dlg", platform.Rect{Width: 100, Height: 50})
	assert.Equal(t, platform.Rect{X: 350, Y: 275, Width: 100, Height: 50}, nw.DirtyRect())

	require.NoError(t, fx.m.CloseWindow(dlg))
	require.NoError(t, fx.m.Paint())
	require.NoError(t, fx.m.Paint())
	require.True(t, nw.DirtyRect().Empty())
}

func TestPaint_ClosedWindowAreaInvalidatedOnSharedSurface(t *testing.T) {
	fx := newFixture(t)
	main := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	popup := fx.openNow(t, widget.Popup, "menu", platform.Rect{X: 20, Y: 20, Width: 30, Height: 30})
	require.NoError(t, fx.m.Paint())
	require.NoError(t, fx.m.Paint())

	require.NoError(t, fx.m.CloseWindowForce(popup))
	nw, _ := main.NativeWindow()
	assert.Equal(t, platform.Rect{X: 20, Y: 20, Width: 30, Height: 30}, nw.DirtyRect())
}

func TestPaint_InvisibleAndPendingWindowsSkipped(t *testing.T) {
	fx := newFixture(t)
	hidden := fx.openNow(t, widget.NormalWindow, "hidden", platform.Rect{})
	hidden.Visible = false
	pending := fx.open(t, widget.NormalWindow, "pending", platform.Rect{})

	require.NoError(t, fx.m.Paint())

	nw, _ := hidden.NativeWindow()
	assert.Equal(t, 0, nw.Image().Frames())
	_, bound := pending.NativeWindow()
	assert.False(t, bound)
}

func TestPaint_DrawsWindowBackground(t *testing.T) {
	fx := newFixture(t)
	win := widget.New(widget.NormalWindow, "main")
	win.Resize(4, 4)
	win.Background = color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}
	require.NoError(t, fx.m.OpenWindow(win))
	fx.m.Idle().Drain()

	require.NoError(t, fx.m.Paint())
	px := fx.surface(t, win).Pixels().RGBAAt(2, 2)
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, px)
}

func TestPaint_FPSOverlayKeepsCornerDirty(t *testing.T) {
	fx := newFixture(t)
	win := fx.openNow(t, widget.NormalWindow, "main", platform.Rect{})
	nw, _ := win.NativeWindow()
	require.NoError(t, fx.m.SetShowFPS(true))

	for range 3 {
		fx.clock = fx.clock.Add(500 * time.Millisecond)
		require.NoError(t, fx.m.Paint())
	}

	assert.Equal(t, 3, nw.Image().Frames())
	assert.False(t, nw.DirtyRect().Empty())
	assert.Equal(t, 0, nw.DirtyRect().X)
	assert.Equal(t, 0, nw.DirtyRect().Y)
}

func TestFPSCounter(t *testing.T) {
	var f fpsCounter
	start := time.Unix(0, 0)
	for i := range 20 {
		f.tick(start.Add(time.Duration(i) * 50 * time.Millisecond))
	}
	assert.Equal(t, 20, f.tick(start.Add(time.Second)))
}
