// Package wm coordinates top-level windows: their native surfaces, input
// routing and per-frame painting.
package wm

import (
	"fmt"
	"time"

	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/widget"
)

// Each capability is one operation a strategy may support.
type (
	Resizer interface {
		Resize(w, h int) error
	}
	PostIniter interface {
		PostInit(w, h int) error
	}
	WindowOpener interface {
		OpenWindow(win *widget.Widget) error
	}
	WindowCloser interface {
		CloseWindow(win *widget.Widget) error
	}
	WindowForceCloser interface {
		CloseWindowForce(win *widget.Widget) error
	}
	Painter interface {
		Paint() error
	}
	InputDispatcher interface {
		DispatchInputEvent(e event.Event) error
	}
	NativeEventDispatcher interface {
		DispatchNativeWindowEvent(e event.Event) error
	}
	FPSSetter interface {
		SetShowFPS(show bool) error
	}
	ScreenSaverSetter interface {
		SetScreenSaverTime(d time.Duration) error
	}
	CursorSetter interface {
		SetCursor(name string) error
	}
	Backer interface {
		Back() error
	}
	HomeBacker interface {
		BackToHome() error
	}
	TopWindowGetter interface {
		TopWindow() (*widget.Widget, error)
	}
	TopMainWindowGetter interface {
		TopMainWindow() (*widget.Widget, error)
	}
	PrevWindowGetter interface {
		PrevWindow() (*widget.Widget, error)
	}
	PointerGetter interface {
		Pointer() (x, y int, pressed bool)
	}
)

// Core forwards window-manager operations to a strategy. Operations the
// strategy does not implement fail with ErrInvalidArgument and have no
// side effects.
type Core struct {
	strategy any
	showFPS  bool
}

// NewCore wraps strategy, which implements any subset of the capability
// interfaces.
func NewCore(strategy any) *Core {
	return &Core{strategy: strategy}
}

// Strategy returns the wrapped strategy.
func (c *Core) Strategy() any {
	if c == nil {
		return nil
	}
	return c.strategy
}

func capability[T any](c *Core, op string) (T, error) {
	var zero T
	if c == nil || c.strategy == nil {
		return zero, fmt.Errorf("%s: no window manager: %w", op, ErrInvalidArgument)
	}
	impl, ok := c.strategy.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unsupported by %T: %w", op, c.strategy, ErrInvalidArgument)
	}
	return impl, nil
}

func checkWindow(op string, win *widget.Widget) error {
	if win == nil {
		return fmt.Errorf("%s: nil window: %w", op, ErrInvalidArgument)
	}
	return nil
}

func (c *Core) Resize(w, h int) error {
	impl, err := capability[Resizer](c, "resize")
	if err != nil {
		return err
	}
	return impl.Resize(w, h)
}

func (c *Core) PostInit(w, h int) error {
	impl, err := capability[PostIniter](c, "post init")
	if err != nil {
		return err
	}
	return impl.PostInit(w, h)
}

func (c *Core) OpenWindow(win *widget.Widget) error {
	impl, err := capability[WindowOpener](c, "open window")
	if err != nil {
		return err
	}
	if err := checkWindow("open window", win); err != nil {
		return err
	}
	return impl.OpenWindow(win)
}

// CloseWindow closes win through the strategy's regular close path.
func (c *Core) CloseWindow(win *widget.Widget) error {
	impl, err := capability[WindowCloser](c, "close window")
	if err != nil {
		return err
	}
	if err := checkWindow("close window", win); err != nil {
		return err
	}
	return impl.CloseWindow(win)
}

// CloseWindowForce detaches win immediately, skipping any close transition.
func (c *Core) CloseWindowForce(win *widget.Widget) error {
	impl, err := capability[WindowForceCloser](c, "close window force")
	if err != nil {
		return err
	}
	if err := checkWindow("close window force", win); err != nil {
		return err
	}
	return impl.CloseWindowForce(win)
}

func (c *Core) Paint() error {
	impl, err := capability[Painter](c, "paint")
	if err != nil {
		return err
	}
	return impl.Paint()
}

// DispatchInputEvent routes e to its target window. An event without a type
// is rejected.
func (c *Core) DispatchInputEvent(e event.Event) error {
	impl, err := capability[InputDispatcher](c, "dispatch input event")
	if err != nil {
		return err
	}
	if e.Type == event.None {
		return fmt.Errorf("dispatch input event: empty event: %w", ErrInvalidArgument)
	}
	return impl.DispatchInputEvent(e)
}

func (c *Core) DispatchNativeWindowEvent(e event.Event) error {
	impl, err := capability[NativeEventDispatcher](c, "dispatch native window event")
	if err != nil {
		return err
	}
	if !e.Type.IsNative() {
		return fmt.Errorf("dispatch native window event: %s: %w", e.Type, ErrInvalidArgument)
	}
	return impl.DispatchNativeWindowEvent(e)
}

// SetShowFPS records the flag and forwards it to the strategy.
func (c *Core) SetShowFPS(show bool) error {
	impl, err := capability[FPSSetter](c, "set show fps")
	if err != nil {
		return err
	}
	c.showFPS = show
	return impl.SetShowFPS(show)
}

// ShowFPS reports the last flag passed to SetShowFPS.
func (c *Core) ShowFPS() bool {
	return c != nil && c.showFPS
}

func (c *Core) SetScreenSaverTime(d time.Duration) error {
	impl, err := capability[ScreenSaverSetter](c, "set screen saver time")
	if err != nil {
		return err
	}
	return impl.SetScreenSaverTime(d)
}

func (c *Core) SetCursor(name string) error {
	impl, err := capability[CursorSetter](c, "set cursor")
	if err != nil {
		return err
	}
	return impl.SetCursor(name)
}

func (c *Core) Back() error {
	impl, err := capability[Backer](c, "back")
	if err != nil {
		return err
	}
	return impl.Back()
}

func (c *Core) BackToHome() error {
	impl, err := capability[HomeBacker](c, "back to home")
	if err != nil {
		return err
	}
	return impl.BackToHome()
}

func (c *Core) TopWindow() (*widget.Widget, error) {
	impl, err := capability[TopWindowGetter](c, "top window")
	if err != nil {
		return nil, err
	}
	return impl.TopWindow()
}

func (c *Core) TopMainWindow() (*widget.Widget, error) {
	impl, err := capability[TopMainWindowGetter](c, "top main window")
	if err != nil {
		return nil, err
	}
	return impl.TopMainWindow()
}

func (c *Core) PrevWindow() (*widget.Widget, error) {
	impl, err := capability[PrevWindowGetter](c, "prev window")
	if err != nil {
		return nil, err
	}
	return impl.PrevWindow()
}

// PointerX returns the last pointer x, or 0 when unsupported.
func (c *Core) PointerX() int {
	x, _, _ := c.pointer()
	return x
}

// PointerY returns the last pointer y, or 0 when unsupported.
func (c *Core) PointerY() int {
	_, y, _ := c.pointer()
	return y
}

// PointerPressed reports whether the pointer is down; false when unsupported.
func (c *Core) PointerPressed() bool {
	_, _, pressed := c.pointer()
	return pressed
}

func (c *Core) pointer() (int, int, bool) {
	impl, err := capability[PointerGetter](c, "pointer")
	if err != nil {
		return 0, 0, false
	}
	return impl.Pointer()
}
