package widget

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/nativewm/internal/canvas"
	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/platform"
)

func names(seq func(func(*Widget) bool)) []string {
	var out []string
	for w := range seq {
		out = append(out, w.Name)
	}
	return out
}

func TestIterators_Direction(t *testing.T) {
	root := New(WindowManager, "wm")
	for _, n := range []string{"a", "b", "c"} {
		root.AddChild(New(NormalWindow, n))
	}

	assert.Equal(t, []string{"c", "b", "a"}, names(root.FrontToBack()))
	assert.Equal(t, []string{"a", "b", "c"}, names(root.BackToFront()))
}

func TestIterators_SnapshotSurvivesRemoval(t *testing.T) {
	root := New(WindowManager, "wm")
	a, b := New(NormalWindow, "a"), New(NormalWindow, "b")
	root.AddChild(a)
	root.AddChild(b)

	var seen []string
	for w := range root.FrontToBack() {
		seen = append(seen, w.Name)
		root.RemoveChild(w)
	}
	assert.Equal(t, []string{"b", "a"}, seen)
	assert.Equal(t, 0, root.ChildCount())
}

func TestAddChild_Reparents(t *testing.T) {
	p1, p2 := New(Generic, "p1"), New(Generic, "p2")
	c := New(Generic, "c")
	p1.AddChild(c)
	p2.AddChild(c)

	assert.Equal(t, 0, p1.ChildCount())
	assert.Same(t, p2, c.Parent())
	assert.False(t, p1.RemoveChild(c))
}

func TestTarget_DeepestAcceptingChild(t *testing.T) {
	win := New(NormalWindow, "win")
	win.Resize(200, 200)
	panel := New(Generic, "panel")
	panel.MoveResize(50, 50, 100, 100)
	button := New(Generic, "button")
	button.MoveResize(10, 10, 20, 20)
	panel.AddChild(button)
	win.AddChild(panel)

	assert.Same(t, button, win.Target(65, 65))
	assert.Same(t, panel, win.Target(120, 120))
	assert.Same(t, win, win.Target(5, 5))

	button.Enabled = false
	assert.Same(t, panel, win.Target(65, 65))
}

func TestBubble_StopsAtConsumerAndManager(t *testing.T) {
	root := New(WindowManager, "wm")
	win := New(NormalWindow, "win")
	child := New(Generic, "child")
	win.AddChild(child)
	root.AddChild(win)

	var got []string
	record := func(w *Widget, e event.Event) bool {
		got = append(got, w.Name)
		return false
	}
	child.On(event.KeyDown, record)
	win.On(event.KeyDown, record)
	root.On(event.KeyDown, record)

	assert.False(t, child.Bubble(event.Event{Type: event.KeyDown}))
	assert.Equal(t, []string{"child", "win"}, got)

	got = nil
	child.On(event.KeyDown, func(*Widget, event.Event) bool { return true })
	assert.True(t, child.Bubble(event.Event{Type: event.KeyDown}))
	assert.Equal(t, []string{"child"}, got)
}

func TestGrab_StoredOnRoot(t *testing.T) {
	root := New(WindowManager, "wm")
	win := New(Popup, "menu")
	root.AddChild(win)

	win.Grab()
	assert.Same(t, win, root.GrabWidget())

	New(Generic, "other").Ungrab()
	assert.Same(t, win, root.GrabWidget())

	win.Ungrab()
	assert.Nil(t, root.GrabWidget())
}

func TestLayout_RunsHookRecursively(t *testing.T) {
	win := New(NormalWindow, "win")
	child := New(Generic, "child")
	win.AddChild(child)
	win.OnLayout = func(w *Widget) {
		child.MoveResize(0, 0, w.W, 10)
	}
	win.Resize(120, 80)
	win.Layout()

	assert.Equal(t, 1, win.Layouts())
	assert.Equal(t, 1, child.Layouts())
	assert.Equal(t, 120, child.W)
}

func TestPaint_AppliesChildOrigin(t *testing.T) {
	c := canvas.NewOffscreen(50, 50)
	require.NoError(t, c.BeginFrame(platform.Rect{Width: 50, Height: 50}))

	win := New(NormalWindow, "win")
	win.Resize(50, 50)
	win.Background = color.RGBA{A: 255}
	child := New(Generic, "child")
	child.MoveResize(10, 20, 5, 5)
	child.Background = color.RGBA{R: 255, A: 255}
	win.AddChild(child)

	win.Paint(c)
	require.NoError(t, c.EndFrame())

	ox, oy := c.Origin()
	assert.Equal(t, [2]int{0, 0}, [2]int{ox, oy})

	var painted []string
	hidden := New(Generic, "hidden")
	hidden.Visible = false
	hidden.OnPaint = func(w *Widget, _ canvas.Canvas) { painted = append(painted, w.Name) }
	win.AddChild(hidden)
	require.NoError(t, c.BeginFrame(platform.Rect{Width: 50, Height: 50}))
	win.Paint(c)
	require.NoError(t, c.EndFrame())
	assert.Empty(t, painted)
}

func TestDestroy_DetachesAndMarksWindow(t *testing.T) {
	root := New(WindowManager, "wm")
	win := New(Dialog, "dlg")
	win.AddChild(New(Generic, "label"))
	root.AddChild(win)
	win.On(event.WindowOpen, func(*Widget, event.Event) bool { return true })

	win.Destroy()

	assert.True(t, win.Destroyed())
	assert.Equal(t, StageDestroyed, win.Stage())
	assert.Equal(t, 0, root.ChildCount())
	assert.False(t, win.Dispatch(event.Event{Type: event.WindowOpen}))
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{Generic, WindowManager, NormalWindow, Dialog, Popup} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseType("toast")
	assert.Error(t, err)
}
