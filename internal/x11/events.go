package x11

import (
	"log"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/nativewm/internal/event"
)

// ReadEvents blocks reading X events and forwards the ones the window manager
// understands to out. It returns when the connection is closed, or when done
// is closed and out has stopped draining.
func (c *Connection) ReadEvents(out chan<- event.Event, done <-chan struct{}) {
	wmProtocols, _ := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	wmDelete, _ := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")

	for {
		ev, err := c.XUtil.Conn().WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			log.Printf("X11 event error: %v", err)
			continue
		}

		var e event.Event
		switch xe := ev.(type) {
		case xproto.ButtonPressEvent:
			e = pointerEvent(event.PointerDown, xe.Event, xe.EventX, xe.EventY, xe.State)
			e.Button = int(xe.Detail)
		case xproto.ButtonReleaseEvent:
			e = pointerEvent(event.PointerUp, xe.Event, xe.EventX, xe.EventY, xe.State)
			e.Button = int(xe.Detail)
		case xproto.MotionNotifyEvent:
			e = pointerEvent(event.PointerMove, xe.Event, xe.EventX, xe.EventY, xe.State)
		case xproto.KeyPressEvent:
			e = event.Event{
				Type:         event.KeyDown,
				NativeHandle: event.Handle(xe.Event),
				Key:          keybind.LookupString(c.XUtil, xe.State, xe.Detail),
				Modifiers:    modifiers(xe.State),
			}
		case xproto.KeyReleaseEvent:
			e = event.Event{
				Type:         event.KeyUp,
				NativeHandle: event.Handle(xe.Event),
				Key:          keybind.LookupString(c.XUtil, xe.State, xe.Detail),
				Modifiers:    modifiers(xe.State),
			}
		case xproto.ExposeEvent:
			e = event.Event{
				Type:         event.NativeWindowExpose,
				NativeHandle: event.Handle(xe.Window),
				X:            int(xe.X),
				Y:            int(xe.Y),
				Width:        int(xe.Width),
				Height:       int(xe.Height),
			}
		case xproto.ConfigureNotifyEvent:
			e = event.Event{
				Type:         event.NativeWindowResized,
				NativeHandle: event.Handle(xe.Window),
				X:            int(xe.X),
				Y:            int(xe.Y),
				Width:        int(xe.Width),
				Height:       int(xe.Height),
			}
		case xproto.DestroyNotifyEvent:
			e = event.Event{
				Type:         event.NativeWindowDestroy,
				NativeHandle: event.Handle(xe.Window),
			}
		case xproto.ClientMessageEvent:
			if xe.Type != wmProtocols || len(xe.Data.Data32) == 0 || xproto.Atom(xe.Data.Data32[0]) != wmDelete {
				continue
			}
			e = event.Event{
				Type:         event.NativeWindowCloseRequest,
				NativeHandle: event.Handle(xe.Window),
			}
		default:
			continue
		}
		if !send(out, done, e) {
			return
		}
	}
}

// send delivers e unless done is closed first.
func send(out chan<- event.Event, done <-chan struct{}, e event.Event) bool {
	select {
	case out <- e:
		return true
	case <-done:
		return false
	}
}

func pointerEvent(t event.Type, win xproto.Window, x, y int16, state uint16) event.Event {
	return event.Event{
		Type:         t,
		NativeHandle: event.Handle(win),
		X:            int(x),
		Y:            int(y),
		Modifiers:    modifiers(state),
	}
}

func modifiers(state uint16) event.Modifier {
	var m event.Modifier
	if state&xproto.ModMaskShift != 0 {
		m |= event.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= event.ModCtrl
	}
	if state&xproto.ModMask1 != 0 {
		m |= event.ModAlt
	}
	return m
}
