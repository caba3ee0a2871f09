package wm

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/1broseidon/nativewm/internal/canvas"
	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/idle"
	"github.com/1broseidon/nativewm/internal/inputstatus"
	"github.com/1broseidon/nativewm/internal/nativewindow"
	"github.com/1broseidon/nativewm/internal/platform"
	"github.com/1broseidon/nativewm/internal/widget"
)

// Options configures a Native manager.
type Options struct {
	Logger  *slog.Logger
	Factory *nativewindow.Factory
	Idle    *idle.Queue

	// Resizable requests user-resizable native windows (desktop apps).
	Resizable bool
	// Shared makes normal windows use the factory's shared window when one
	// exists (single-window embedded mode).
	Shared bool

	// Now defaults to time.Now.
	Now func() time.Time
	// OnFatal handles a failure to create a native window. It defaults to
	// logging the error and exiting with status 1.
	OnFatal func(error)
}

// Native binds every top-level window to a native window, opening and
// closing them across idle iterations. All methods must be called from the
// loop goroutine.
type Native struct {
	logger  *slog.Logger
	root    *widget.Widget
	factory *nativewindow.Factory
	idle    *idle.Queue
	status  *inputstatus.Status
	scratch *canvas.Image

	resizable bool
	shared    bool
	now       func() time.Time
	onFatal   func(error)

	prevWin         *widget.Widget
	showFPS         bool
	fps             fpsCounter
	cursor          string
	ignoreUserInput bool

	screenSaverTime  time.Duration
	lastInput        time.Time
	screenSaverFired bool
}

// NewNative creates a manager with an empty window_manager root.
func NewNative(opts Options) *Native {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	q := opts.Idle
	if q == nil {
		q = idle.New()
	}
	m := &Native{
		logger:    logger,
		root:      widget.New(widget.WindowManager, "window_manager"),
		factory:   opts.Factory,
		idle:      q,
		status:    inputstatus.New(),
		scratch:   canvas.NewOffscreen(1, 1),
		resizable: opts.Resizable,
		shared:    opts.Shared,
		now:       now,
		onFatal:   opts.OnFatal,
	}
	if m.onFatal == nil {
		m.onFatal = func(err error) {
			logger.Error("cannot continue without a native window", "error", err)
			os.Exit(1)
		}
	}
	m.lastInput = now()
	return m
}

// Root returns the window_manager widget whose children are the windows.
func (m *Native) Root() *widget.Widget { return m.root }

// Idle returns the queue open and close work is deferred to.
func (m *Native) Idle() *idle.Queue { return m.idle }

// Status returns the input device status.
func (m *Native) Status() *inputstatus.Status { return m.status }

// Resize sets the root to w x h and lays out the windows.
func (m *Native) Resize(w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("resize %dx%d: %w", w, h, ErrInvalidArgument)
	}
	m.root.MoveResize(0, 0, w, h)
	m.root.Layout()
	return nil
}

// PostInit sizes the root after construction.
func (m *Native) PostInit(w, h int) error {
	return m.Resize(w, h)
}

// OpenWindow attaches win to the root now and finishes opening it on the
// next idle drain.
func (m *Native) OpenWindow(win *widget.Widget) error {
	if win == nil || !win.Type.IsWindow() {
		return fmt.Errorf("open %s: %w", win, ErrInvalidArgument)
	}
	if win.Destroyed() || win.Stage() >= widget.StageClosing {
		return fmt.Errorf("open %s: window is %s: %w", win, win.Stage(), ErrInvalidArgument)
	}
	if win.Parent() == m.root {
		return fmt.Errorf("open %s: already open: %w", win, ErrInvalidArgument)
	}

	m.root.AddChild(win)
	win.SetStage(widget.StageOpening)
	m.idle.Add(func() idle.Result {
		m.completeOpen(win)
		return idle.Remove
	})
	m.logger.Debug("window opening", "window", win.String())
	return nil
}

func (m *Native) completeOpen(win *widget.Widget) {
	if win.Stage() != widget.StageOpening || win.Parent() != m.root {
		m.logger.Debug("skip open of closed window", "window", win.String())
		return
	}

	parent := win.Parent()
	if win.W <= 0 {
		win.W = parent.W
	}
	if win.H <= 0 {
		win.H = parent.H
	}
	if win.IsDialog() {
		win.Move((parent.W-win.W)/2, (parent.H-win.H)/2)
	}
	win.Layout()

	if err := m.bindNativeWindow(win); err != nil {
		if !errors.Is(err, ErrNoOwnerWindow) {
			m.onFatal(err)
			return
		}
		m.logger.Warn("window has no native window", "window", win.String(), "error", err)
	}

	m.dispatchWindowEvent(win, event.WindowWillOpen)
	m.dispatchWindowEvent(win, event.WindowOpen)
	win.SetStage(widget.StageOpen)
	win.Invalidate()
	m.logger.Debug("window open", "window", win.String())
}

func (m *Native) bindNativeWindow(win *widget.Widget) error {
	if win.Type == widget.NormalWindow {
		nw, err := m.factory.Create(nativewindow.Request{
			Title:     win.Name,
			Bounds:    win.Rect(),
			Resizable: m.resizable,
			Shared:    m.shared,
		})
		if err != nil {
			return err
		}
		win.SetNativeWindow(nw)
		if m.cursor != "" {
			m.applyCursor(nw)
		}
		return nil
	}

	owner := m.ownerWindow(win)
	if owner == nil {
		return fmt.Errorf("bind %s: %w", win, ErrNoOwnerWindow)
	}
	nw, _ := owner.NativeWindow()
	win.SetNativeWindow(nw.Ref())
	return nil
}

// ownerWindow picks the window whose surface a dialog or popup shares: the
// previous window when it is still open and backed, else the top main window.
func (m *Native) ownerWindow(win *widget.Widget) *widget.Widget {
	if p := m.prevWin; p != nil && p != win && p.Parent() == m.root {
		if _, ok := p.NativeWindow(); ok {
			return p
		}
	}
	for c := range m.root.FrontToBack() {
		if c.Type != widget.NormalWindow || c == win {
			continue
		}
		if _, ok := c.NativeWindow(); ok {
			return c
		}
	}
	return nil
}

func (m *Native) dispatchWindowEvent(win *widget.Widget, typ event.Type) {
	e := event.Event{Type: typ, WindowID: win.ID()}
	if nw, ok := win.NativeWindow(); ok {
		e.NativeHandle = nw.Handle()
	}
	win.Dispatch(e)
	if p := win.Parent(); p != nil {
		p.Dispatch(e)
	} else {
		m.root.Dispatch(e)
	}
}

// CloseWindow closes win. There is no close transition, so it is the same
// as CloseWindowForce.
func (m *Native) CloseWindow(win *widget.Widget) error {
	return m.CloseWindowForce(win)
}

// CloseWindowForce detaches win now and releases its native window and the
// widget itself on the next idle drain.
func (m *Native) CloseWindowForce(win *widget.Widget) error {
	if win == nil {
		return fmt.Errorf("close: %w", ErrInvalidArgument)
	}
	if win.Parent() != m.root {
		return fmt.Errorf("close %s: %w", win, ErrNotFound)
	}

	if g := m.root.GrabWidget(); g != nil && win.IsAncestorOf(g) {
		m.root.ClearGrab()
	}
	m.status.Forget(win)
	if m.prevWin != nil && win.IsAncestorOf(m.prevWin) {
		m.prevWin = nil
	}

	m.root.RemoveChild(win)
	win.SetStage(widget.StageClosing)

	if nw, ok := win.NativeWindow(); ok {
		b := nw.Bounds()
		nw.Invalidate(win.Rect().Translate(-b.X, -b.Y))
	}

	e := event.Event{Type: event.WindowClose, WindowID: win.ID()}
	win.Dispatch(e)
	m.root.Dispatch(e)

	m.idle.Once(func() {
		if nw, ok := win.NativeWindow(); ok {
			nw.Unref()
		}
		win.Destroy()
		m.logger.Debug("window destroyed", "window", win.String())
	})
	m.logger.Debug("window closing", "window", win.String())
	return nil
}

// MoveResizeWindow sets win's geometry. A normal window that owns its native
// window takes the OS window with it; windows drawn on a shared surface only
// repaint the area they left and the area they now cover. A window still
// opening is bound at the new geometry.
func (m *Native) MoveResizeWindow(win *widget.Widget, x, y, w, h int) error {
	if win == nil || w <= 0 || h <= 0 {
		return fmt.Errorf("move %s to %dx%d: %w", win, w, h, ErrInvalidArgument)
	}
	if win.Parent() != m.root || win.Stage() >= widget.StageClosing {
		return fmt.Errorf("move %s: %w", win, ErrNotFound)
	}

	nw, bound := win.NativeWindow()
	if bound {
		b := nw.Bounds()
		nw.Invalidate(win.Rect().Translate(-b.X, -b.Y))
	}
	win.MoveResize(x, y, w, h)
	win.Layout()
	if !bound {
		return nil
	}

	if win.Type == widget.NormalWindow && !m.shared {
		if err := nw.Move(x, y); err != nil {
			return fmt.Errorf("move native window %d: %w", nw.Handle(), err)
		}
		if err := nw.Resize(w, h); err != nil {
			return fmt.Errorf("resize native window %d: %w", nw.Handle(), err)
		}
		nw.SyncGeometry(win.Rect())
	}
	b := nw.Bounds()
	nw.Invalidate(win.Rect().Translate(-b.X, -b.Y))
	m.logger.Debug("window moved", "window", win.String(), "x", x, "y", y, "w", w, "h", h)
	return nil
}

// home returns the bottom-most normal window.
func (m *Native) home() *widget.Widget {
	for c := range m.root.BackToFront() {
		if c.Type == widget.NormalWindow {
			return c
		}
	}
	return nil
}

// Back closes the top window unless it is the home window.
func (m *Native) Back() error {
	top, err := m.TopWindow()
	if err != nil {
		return fmt.Errorf("back: %w", err)
	}
	if top == m.home() {
		return ErrAtHome
	}
	return m.CloseWindow(top)
}

// BackToHome closes every window above the home window.
func (m *Native) BackToHome() error {
	home := m.home()
	if home == nil {
		return fmt.Errorf("back to home: %w", ErrNotFound)
	}
	var errs []error
	for c := range m.root.FrontToBack() {
		if c == home {
			break
		}
		errs = append(errs, m.CloseWindow(c))
	}
	return errors.Join(errs...)
}

// TopWindow returns the front-most window.
func (m *Native) TopWindow() (*widget.Widget, error) {
	for c := range m.root.FrontToBack() {
		return c, nil
	}
	return nil, fmt.Errorf("top window: %w", ErrNotFound)
}

// TopMainWindow returns the front-most normal window.
func (m *Native) TopMainWindow() (*widget.Widget, error) {
	for c := range m.root.FrontToBack() {
		if c.Type == widget.NormalWindow {
			return c, nil
		}
	}
	return nil, fmt.Errorf("top main window: %w", ErrNotFound)
}

// PrevWindow returns the window that last received a pointer-down.
func (m *Native) PrevWindow() (*widget.Widget, error) {
	if m.prevWin == nil {
		return nil, fmt.Errorf("prev window: %w", ErrNotFound)
	}
	return m.prevWin, nil
}

func (m *Native) Pointer() (int, int, bool) {
	return m.status.X(), m.status.Y(), m.status.Pressed()
}

// SetShowFPS toggles the frame-rate overlay.
func (m *Native) SetShowFPS(show bool) error {
	m.showFPS = show
	m.fps = fpsCounter{}
	return nil
}

func (m *Native) ShowFPS() bool { return m.showFPS }

// SetIgnoreUserInput drops user input while set, except the pointer-up that
// ends a press already in progress.
func (m *Native) SetIgnoreUserInput(ignore bool) {
	m.ignoreUserInput = ignore
}

func (m *Native) IgnoreUserInput() bool { return m.ignoreUserInput }

// SetCursor applies the named cursor to every native window that supports
// cursors, and to native windows created later.
func (m *Native) SetCursor(name string) error {
	m.cursor = name
	var errs []error
	for _, nw := range m.nativeWindows() {
		errs = append(errs, m.applyCursor(nw))
	}
	return errors.Join(errs...)
}

func (m *Native) Cursor() string { return m.cursor }

func (m *Native) applyCursor(nw *nativewindow.Window) error {
	cs, ok := nw.Surface().(platform.CursorSetter)
	if !ok {
		return nil
	}
	if err := cs.SetCursor(m.cursor); err != nil {
		m.logger.Warn("set cursor failed", "cursor", m.cursor, "handle", nw.Handle(), "error", err)
		return fmt.Errorf("set cursor %q: %w", m.cursor, err)
	}
	return nil
}

// nativeWindows returns the distinct native windows bound to open windows,
// bottom-most first.
func (m *Native) nativeWindows() []*nativewindow.Window {
	var out []*nativewindow.Window
	seen := make(map[*nativewindow.Window]bool)
	for c := range m.root.BackToFront() {
		nw, ok := c.NativeWindow()
		if !ok || seen[nw] || nw.Closed() {
			continue
		}
		seen[nw] = true
		out = append(out, nw)
	}
	return out
}

// SetScreenSaverTime sets the idle time after which a ScreenSaver event is
// raised; zero disables it.
func (m *Native) SetScreenSaverTime(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("screen saver time %s: %w", d, ErrInvalidArgument)
	}
	m.screenSaverTime = d
	m.lastInput = m.now()
	m.screenSaverFired = false
	return nil
}

func (m *Native) ScreenSaverTime() time.Duration { return m.screenSaverTime }

// CheckScreenSaver raises a ScreenSaver event on the top window and the root
// once the input has been idle for the screen-saver time. It fires once per
// idle period and reports whether it fired.
func (m *Native) CheckScreenSaver(now time.Time) bool {
	if m.screenSaverTime <= 0 || m.screenSaverFired {
		return false
	}
	if now.Sub(m.lastInput) < m.screenSaverTime {
		return false
	}
	m.screenSaverFired = true
	e := event.Event{Type: event.ScreenSaver}
	if top, err := m.TopWindow(); err == nil {
		e.WindowID = top.ID()
		top.Dispatch(e)
	}
	m.root.Dispatch(e)
	m.logger.Debug("screen saver", "idle", now.Sub(m.lastInput).String())
	return true
}

// MeasureText returns the width of text in the default font, for use
// outside of painting.
func (m *Native) MeasureText(text string) int {
	return m.scratch.MeasureText(text)
}

// Close force-closes every window and runs the pending idle work.
func (m *Native) Close() {
	for c := range m.root.FrontToBack() {
		_ = m.CloseWindowForce(c)
	}
	m.idle.Drain()
}
