package wm

import (
	"errors"
	"fmt"

	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/platform"
	"github.com/1broseidon/nativewm/internal/widget"
)

// DispatchInputEvent resolves the target of e and hands both to the input
// status, which delivers the event.
func (m *Native) DispatchInputEvent(e event.Event) error {
	if m.ignoreUserInput {
		if !(m.status.Pressed() && e.Type == event.PointerUp) {
			m.logger.Debug("input ignored", "event", e.String())
			return nil
		}
		m.logger.Debug("input ignored except final pointer up")
	}
	m.lastInput = m.now()
	m.screenSaverFired = false

	var target *widget.Widget
	if e.Type.IsPointer() {
		target = m.findTarget(e)
	} else if g := m.root.GrabWidget(); g != nil {
		target = g
	} else {
		target = m.windowByHandle(e.NativeHandle)
	}

	m.status.OnInputEvent(target, e)

	if e.Type == event.PointerDown && target != nil {
		if win := target.Window(); win != nil && win.Parent() == m.root {
			m.prevWin = win
		}
	}
	return nil
}

// findTarget hit-tests a pointer event. A grab wins outright. Otherwise the
// windows on the event's native window are scanned front to back; dialogs
// and popups take the event even outside their bounds.
func (m *Native) findTarget(e event.Event) *widget.Widget {
	if g := m.root.GrabWidget(); g != nil {
		return g
	}
	for win := range m.root.FrontToBack() {
		nw, ok := win.NativeWindow()
		if !ok || nw.Handle() != e.NativeHandle {
			continue
		}
		b := nw.Bounds()
		x, y := e.X+b.X, e.Y+b.Y
		if win.Accepts() && win.Rect().Contains(x, y) {
			return win.Target(x-win.X, y-win.Y)
		}
		if win.IsDialog() || win.IsPopup() {
			return win
		}
	}
	return nil
}

// windowByHandle returns the front-most window bound to handle h.
func (m *Native) windowByHandle(h event.Handle) *widget.Widget {
	for win := range m.root.FrontToBack() {
		if nw, ok := win.NativeWindow(); ok && nw.Handle() == h {
			return win
		}
	}
	return nil
}

func (m *Native) windowsByHandle(h event.Handle) []*widget.Widget {
	var out []*widget.Widget
	for win := range m.root.FrontToBack() {
		if nw, ok := win.NativeWindow(); ok && nw.Handle() == h {
			out = append(out, win)
		}
	}
	return out
}

// DispatchNativeWindowEvent applies a notification raised by the OS for a
// native window. Events for unknown handles are ignored.
func (m *Native) DispatchNativeWindowEvent(e event.Event) error {
	switch e.Type {
	case event.NativeWindowDestroy:
		for win := m.windowByHandle(e.NativeHandle); win != nil; win = m.windowByHandle(e.NativeHandle) {
			if err := m.CloseWindowForce(win); err != nil {
				return err
			}
		}
		return nil
	case event.NativeWindowResized:
		return m.reconcileGeometry(e.NativeHandle)
	case event.NativeWindowExpose:
		win := m.windowByHandle(e.NativeHandle)
		if win == nil {
			return nil
		}
		nw, _ := win.NativeWindow()
		r := platform.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
		if r.Empty() {
			b := nw.Bounds()
			r = platform.Rect{Width: b.Width, Height: b.Height}
		}
		nw.Invalidate(r)
		return nil
	case event.NativeWindowCloseRequest:
		var errs []error
		for _, win := range m.windowsByHandle(e.NativeHandle) {
			errs = append(errs, m.CloseWindow(win))
		}
		return errors.Join(errs...)
	}
	return fmt.Errorf("native window event %s: %w", e.Type, ErrInvalidArgument)
}

// reconcileGeometry adopts a geometry change made by the OS: the native
// window's state is updated from the OS and the normal windows on it are
// resized and laid out, without calling back into the OS.
func (m *Native) reconcileGeometry(h event.Handle) error {
	wins := m.windowsByHandle(h)
	if len(wins) == 0 {
		return nil
	}
	nw, _ := wins[0].NativeWindow()
	r, err := nw.Geometry()
	if err != nil {
		return fmt.Errorf("native window %d geometry: %w", h, err)
	}
	nw.SyncGeometry(r)

	for _, win := range wins {
		if win.Type != widget.NormalWindow {
			continue
		}
		win.MoveResize(r.X, r.Y, r.Width, r.Height)
		win.Layout()
	}
	nw.Invalidate(platform.Rect{Width: r.Width, Height: r.Height})
	m.logger.Debug("native window resized", "handle", h,
		"x", r.X, "y", r.Y, "w", r.Width, "h", r.Height)
	return nil
}
