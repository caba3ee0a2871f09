// Package inputstatus tracks pointer and keyboard state and delivers input
// events to their target widget.
package inputstatus

import (
	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/widget"
)

var modifierKeys = map[string]event.Modifier{
	"Shift_L":   event.ModShift,
	"Shift_R":   event.ModShift,
	"Control_L": event.ModCtrl,
	"Control_R": event.ModCtrl,
	"Alt_L":     event.ModAlt,
	"Alt_R":     event.ModAlt,
}

// Status is the last known state of the input devices.
//
// Widget references are not owning; Forget must be called before a widget
// they point into is destroyed.
type Status struct {
	x, y    int
	pressed bool
	mods    event.Modifier

	target     *widget.Widget
	downTarget *widget.Widget
}

// New returns an idle status.
func New() *Status {
	return &Status{}
}

func (s *Status) X() int        { return s.x }
func (s *Status) Y() int        { return s.y }
func (s *Status) Pressed() bool { return s.pressed }

// Modifiers returns the keyboard modifiers currently held.
func (s *Status) Modifiers() event.Modifier { return s.mods }

// Target returns the widget the pointer is over, if known.
func (s *Status) Target() *widget.Widget { return s.target }

// OnInputEvent records e and delivers it to target, which may be nil when
// no window accepted the event. Pointer crossings raise PointerLeave and
// PointerEnter, and a PointerUp on the widget that saw the PointerDown is
// followed by a Click. It reports whether target consumed e.
func (s *Status) OnInputEvent(target *widget.Widget, e event.Event) bool {
	switch e.Type {
	case event.PointerDown, event.PointerMove, event.PointerUp:
		return s.onPointer(target, e)
	case event.KeyDown, event.KeyUp:
		s.onKey(e)
	}
	if target == nil {
		return false
	}
	return target.Bubble(e)
}

func (s *Status) onPointer(target *widget.Widget, e event.Event) bool {
	s.x, s.y = e.X, e.Y
	s.cross(target, e)

	handled := false
	if target != nil {
		handled = target.Bubble(e)
	}

	switch e.Type {
	case event.PointerDown:
		s.pressed = true
		s.downTarget = target
	case event.PointerUp:
		s.pressed = false
		down := s.downTarget
		s.downTarget = nil
		if target != nil && down == target {
			click := e
			click.Type = event.Click
			target.Bubble(click)
		}
	}
	return handled
}

func (s *Status) cross(target *widget.Widget, e event.Event) {
	if target == s.target {
		return
	}
	if s.target != nil {
		leave := e
		leave.Type = event.PointerLeave
		s.target.Dispatch(leave)
	}
	s.target = target
	if target != nil {
		enter := e
		enter.Type = event.PointerEnter
		target.Dispatch(enter)
	}
}

func (s *Status) onKey(e event.Event) {
	s.mods = e.Modifiers
	bit, ok := modifierKeys[e.Key]
	if !ok {
		return
	}
	if e.Type == event.KeyDown {
		s.mods |= bit
	} else {
		s.mods &^= bit
	}
}

// Forget drops every reference into w's subtree.
func (s *Status) Forget(w *widget.Widget) {
	if w == nil {
		return
	}
	if s.target != nil && w.IsAncestorOf(s.target) {
		s.target = nil
	}
	if s.downTarget != nil && w.IsAncestorOf(s.downTarget) {
		s.downTarget = nil
	}
}
