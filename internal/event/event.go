// Package event defines the input and window events routed by the window
// manager.
package event

import "fmt"

// Handle identifies the native window an event originated from.
type Handle uint32

// Type is the kind of an event.
type Type int

const (
	None Type = iota

	PointerDown
	PointerMove
	PointerUp
	PointerEnter
	PointerLeave
	Click

	KeyDown
	KeyUp

	WindowWillOpen
	WindowOpen
	WindowClose
	ScreenSaver

	// Native window notifications raised by the backend.
	NativeWindowDestroy
	NativeWindowResized
	NativeWindowExpose
	NativeWindowCloseRequest
)

var typeNames = map[Type]string{
	None:                     "none",
	PointerDown:              "pointer_down",
	PointerMove:              "pointer_move",
	PointerUp:                "pointer_up",
	PointerEnter:             "pointer_enter",
	PointerLeave:             "pointer_leave",
	Click:                    "click",
	KeyDown:                  "key_down",
	KeyUp:                    "key_up",
	WindowWillOpen:           "window_will_open",
	WindowOpen:               "window_open",
	WindowClose:              "window_close",
	ScreenSaver:              "screen_saver",
	NativeWindowDestroy:      "native_window_destroy",
	NativeWindowResized:      "native_window_resized",
	NativeWindowExpose:       "native_window_expose",
	NativeWindowCloseRequest: "native_window_close_request",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// ParseType returns the Type with the given name.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return None, fmt.Errorf("unknown event type %q", name)
}

// IsPointer reports whether t carries pointer coordinates used for hit-testing.
func (t Type) IsPointer() bool {
	return t == PointerDown || t == PointerMove || t == PointerUp
}

// IsNative reports whether t is a native window notification.
func (t Type) IsNative() bool {
	return t >= NativeWindowDestroy && t <= NativeWindowCloseRequest
}

// Modifier is a keyboard modifier bit set.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// Event is a single input or window event.
//
// X and Y are relative to the originating native window for pointer events.
// For NativeWindowResized they carry the new position, with Width and Height
// the new size. WindowID names the window a lifecycle event concerns.
type Event struct {
	Type         Type
	NativeHandle Handle

	X, Y          int
	Width, Height int
	Button        int
	Key           string
	Modifiers     Modifier

	WindowID uint64
}

func (e Event) String() string {
	switch {
	case e.Type.IsPointer():
		return fmt.Sprintf("%s(%d,%d)@%d", e.Type, e.X, e.Y, e.NativeHandle)
	case e.Type == KeyDown || e.Type == KeyUp:
		return fmt.Sprintf("%s(%s)@%d", e.Type, e.Key, e.NativeHandle)
	default:
		return fmt.Sprintf("%s@%d", e.Type, e.NativeHandle)
	}
}
