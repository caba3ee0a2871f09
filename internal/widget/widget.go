// Package widget is the minimal widget tree the window manager drives:
// geometry, state flags, event handlers and a typed native-window binding.
package widget

import (
	"fmt"
	"image/color"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/1broseidon/nativewm/internal/canvas"
	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/nativewindow"
	"github.com/1broseidon/nativewm/internal/platform"
)

// Type classifies a widget for the window manager.
type Type int

const (
	Generic Type = iota
	WindowManager
	NormalWindow
	Dialog
	Popup
)

var typeNames = map[Type]string{
	Generic:       "widget",
	WindowManager: "window_manager",
	NormalWindow:  "normal_window",
	Dialog:        "dialog",
	Popup:         "popup",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType returns the window type with the given name.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return Generic, fmt.Errorf("unknown widget type %q", name)
}

// IsWindow reports whether t is a top-level window type.
func (t Type) IsWindow() bool {
	return t == NormalWindow || t == Dialog || t == Popup
}

// Stage is the lifecycle position of a window widget.
type Stage int

const (
	StagePending Stage = iota
	StageOpening
	StageOpen
	StageClosing
	StageDestroyed
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageOpening:
		return "opening"
	case StageOpen:
		return "open"
	case StageClosing:
		return "closing"
	case StageDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Handler handles an event delivered to w. Returning true stops bubbling.
type Handler func(w *Widget, e event.Event) bool

var lastID atomic.Uint64

// Widget is one node of the tree. Coordinates are relative to the parent.
type Widget struct {
	id   uint64
	Type Type
	Name string

	X, Y, W, H int

	Visible   bool
	Sensitive bool
	Enabled   bool

	// Background fills the widget before OnPaint runs. Nil paints nothing.
	Background color.Color

	// OnLayout positions children; nil leaves them where they are.
	OnLayout func(w *Widget)
	// OnPaint draws the widget's content with the canvas origin at its
	// top-left corner.
	OnPaint func(w *Widget, c canvas.Canvas)

	parent   *Widget
	children []*Widget
	handlers map[event.Type][]Handler

	native *nativewindow.Window
	stage  Stage

	// grab is only used on the root.
	grab *Widget

	layouts   int
	destroyed bool
}

// New creates a visible, sensitive and enabled widget.
func New(typ Type, name string) *Widget {
	return &Widget{
		id:        lastID.Add(1),
		Type:      typ,
		Name:      name,
		Visible:   true,
		Sensitive: true,
		Enabled:   true,
	}
}

// ID returns the process-unique widget id.
func (w *Widget) ID() uint64 { return w.id }

func (w *Widget) String() string {
	if w == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %q #%d", w.Type, w.Name, w.id)
}

func (w *Widget) IsDialog() bool { return w.Type == Dialog }
func (w *Widget) IsPopup() bool  { return w.Type == Popup }

// Rect returns the widget's bounds in parent coordinates.
func (w *Widget) Rect() platform.Rect {
	return platform.Rect{X: w.X, Y: w.Y, Width: w.W, Height: w.H}
}

// Move sets the position.
func (w *Widget) Move(x, y int) {
	w.X, w.Y = x, y
}

// Resize sets the size.
func (w *Widget) Resize(width, height int) {
	w.W, w.H = width, height
}

// MoveResize sets position and size.
func (w *Widget) MoveResize(x, y, width, height int) {
	w.Move(x, y)
	w.Resize(width, height)
}

// Parent returns the parent, or nil for a detached widget or the root.
func (w *Widget) Parent() *Widget { return w.parent }

// Root returns the top of the tree w belongs to.
func (w *Widget) Root() *Widget {
	r := w
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Window returns the top-level window containing w, or nil if w is not
// inside one.
func (w *Widget) Window() *Widget {
	for n := w; n != nil; n = n.parent {
		if n.Type.IsWindow() {
			return n
		}
	}
	return nil
}

// IsAncestorOf reports whether o is w or a descendant of w.
func (w *Widget) IsAncestorOf(o *Widget) bool {
	for n := o; n != nil; n = n.parent {
		if n == w {
			return true
		}
	}
	return false
}

// AddChild appends c on top of w's children, detaching it from any previous
// parent.
func (w *Widget) AddChild(c *Widget) {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = w
	w.children = append(w.children, c)
}

// RemoveChild detaches c from w. It reports whether c was a child.
func (w *Widget) RemoveChild(c *Widget) bool {
	i := slices.Index(w.children, c)
	if i < 0 {
		return false
	}
	w.children = slices.Delete(w.children, i, i+1)
	c.parent = nil
	return true
}

// ChildCount returns the number of children.
func (w *Widget) ChildCount() int { return len(w.children) }

// Children returns a copy of the children, bottom-most first.
func (w *Widget) Children() []*Widget {
	return slices.Clone(w.children)
}

// FrontToBack yields children top-most first. It iterates over a snapshot so
// the tree may change during iteration.
func (w *Widget) FrontToBack() iter.Seq[*Widget] {
	snapshot := slices.Clone(w.children)
	return func(yield func(*Widget) bool) {
		for i := len(snapshot) - 1; i >= 0; i-- {
			if !yield(snapshot[i]) {
				return
			}
		}
	}
}

// BackToFront yields children bottom-most first, over a snapshot.
func (w *Widget) BackToFront() iter.Seq[*Widget] {
	snapshot := slices.Clone(w.children)
	return func(yield func(*Widget) bool) {
		for _, c := range snapshot {
			if !yield(c) {
				return
			}
		}
	}
}

// NativeWindow returns the bound native window, if any.
func (w *Widget) NativeWindow() (*nativewindow.Window, bool) {
	return w.native, w.native != nil
}

// SetNativeWindow binds nw to w; nil clears the binding.
func (w *Widget) SetNativeWindow(nw *nativewindow.Window) {
	w.native = nw
}

func (w *Widget) Stage() Stage { return w.stage }

func (w *Widget) SetStage(s Stage) { w.stage = s }

// On registers h for events of type t.
func (w *Widget) On(t event.Type, h Handler) {
	if w.handlers == nil {
		w.handlers = make(map[event.Type][]Handler)
	}
	w.handlers[t] = append(w.handlers[t], h)
}

// Dispatch delivers e to w's own handlers. It reports whether one of them
// consumed the event.
func (w *Widget) Dispatch(e event.Event) bool {
	if w.destroyed {
		return false
	}
	for _, h := range w.handlers[e.Type] {
		if h(w, e) {
			return true
		}
	}
	return false
}

// Bubble delivers e to w and then to its ancestors up to, but excluding, the
// window manager, stopping at the first widget that consumes it.
func (w *Widget) Bubble(e event.Event) bool {
	for n := w; n != nil && n.Type != WindowManager; n = n.parent {
		if n.Dispatch(e) {
			return true
		}
	}
	return false
}

// Accepts reports whether w can receive pointer input.
func (w *Widget) Accepts() bool {
	return w.Visible && w.Sensitive && w.Enabled
}

// Target returns the deepest descendant of w accepting input at (x, y),
// given in w's coordinates, or w itself when no child matches.
func (w *Widget) Target(x, y int) *Widget {
	for c := range w.FrontToBack() {
		if c.Accepts() && c.Rect().Contains(x, y) {
			return c.Target(x-c.X, y-c.Y)
		}
	}
	return w
}

// Offset returns w's position relative to the top of its tree.
func (w *Widget) Offset() (int, int) {
	x, y := 0, 0
	for n := w; n != nil; n = n.parent {
		x += n.X
		y += n.Y
	}
	return x, y
}

// Layout runs OnLayout and then lays out every child.
func (w *Widget) Layout() {
	w.layouts++
	if w.OnLayout != nil {
		w.OnLayout(w)
	}
	for _, c := range w.children {
		c.Layout()
	}
}

// Layouts returns how many times Layout ran on w.
func (w *Widget) Layouts() int { return w.layouts }

// Invalidate marks w's area dirty on the native window it is painted on.
func (w *Widget) Invalidate() {
	win := w.Window()
	if win == nil {
		return
	}
	nw, ok := win.NativeWindow()
	if !ok {
		return
	}
	x, y := w.Offset()
	b := nw.Bounds()
	nw.Invalidate(platform.Rect{X: x - b.X, Y: y - b.Y, Width: w.W, Height: w.H})
}

// Paint draws w and its visible children. The canvas origin must be at w's
// top-left corner and is restored before returning.
func (w *Widget) Paint(c canvas.Canvas) {
	if !w.Visible {
		return
	}
	if w.Background != nil {
		c.FillRect(platform.Rect{Width: w.W, Height: w.H}, w.Background)
	}
	if w.OnPaint != nil {
		w.OnPaint(w, c)
	}
	ox, oy := c.Origin()
	for _, ch := range w.children {
		c.SetOrigin(ox+ch.X, oy+ch.Y)
		ch.Paint(c)
	}
	c.SetOrigin(ox, oy)
}

// Grab routes all input in w's tree to w until Ungrab.
func (w *Widget) Grab() {
	w.Root().grab = w
}

// Ungrab releases a grab held by w.
func (w *Widget) Ungrab() {
	r := w.Root()
	if r.grab == w {
		r.grab = nil
	}
}

// GrabWidget returns the widget holding the grab in w's tree, if any.
func (w *Widget) GrabWidget() *Widget {
	return w.Root().grab
}

// ClearGrab drops the grab unconditionally.
func (w *Widget) ClearGrab() {
	w.Root().grab = nil
}

// Destroy detaches w and releases its children and handlers.
func (w *Widget) Destroy() {
	if w.destroyed {
		return
	}
	if w.parent != nil {
		w.parent.RemoveChild(w)
	}
	for _, c := range slices.Clone(w.children) {
		c.Destroy()
	}
	w.children = nil
	w.handlers = nil
	w.native = nil
	w.destroyed = true
	if w.Type.IsWindow() {
		w.stage = StageDestroyed
	}
}

// Destroyed reports whether Destroy has run.
func (w *Widget) Destroyed() bool { return w.destroyed }
