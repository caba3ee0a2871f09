package app

import (
	"fmt"
	"time"

	"github.com/1broseidon/nativewm/internal/config"
	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/ipc"
	"github.com/1broseidon/nativewm/internal/widget"
	"github.com/1broseidon/nativewm/internal/wm"
	"github.com/1broseidon/nativewm/internal/workspace"
)

var _ ipc.Handler = (*App)(nil)

// Status reports the manager state.
func (a *App) Status() (ipc.StatusData, error) {
	return callValue(a, func() (ipc.StatusData, error) {
		x, y, pressed := a.native.Pointer()
		st := ipc.StatusData{
			AppName:         a.cfg.AppName,
			Backend:         a.backend.Name(),
			WindowCount:     a.native.Root().ChildCount(),
			NativeWindows:   a.factory.Live(),
			PointerX:        x,
			PointerY:        y,
			PointerPressed:  pressed,
			ShowFPS:         a.core.ShowFPS(),
			Cursor:          a.native.Cursor(),
			ScreenSaverTime: a.native.ScreenSaverTime().String(),
			PendingIdle:     a.native.Idle().Len(),
			IgnoreUserInput: a.native.IgnoreUserInput(),
		}
		if top, err := a.core.TopWindow(); err == nil {
			st.TopWindow = top.Name
		}
		if prev, err := a.core.PrevWindow(); err == nil {
			st.PrevWindow = prev.Name
		}
		return st, nil
	})
}

// Windows lists the top-level windows, bottom-most first.
func (a *App) Windows() ([]ipc.WindowInfo, error) {
	return callValue(a, func() ([]ipc.WindowInfo, error) {
		var out []ipc.WindowInfo
		for w := range a.native.Root().BackToFront() {
			out = append(out, windowInfo(w))
		}
		return out, nil
	})
}

func windowInfo(w *widget.Widget) ipc.WindowInfo {
	info := ipc.WindowInfo{
		ID:      w.ID(),
		Name:    w.Name,
		Type:    w.Type.String(),
		Stage:   w.Stage().String(),
		X:       w.X,
		Y:       w.Y,
		Width:   w.W,
		Height:  w.H,
		Visible: w.Visible,
	}
	if nw, ok := w.NativeWindow(); ok {
		info.Handle = uint32(nw.Handle())
		info.Refs = nw.Refs()
	}
	return info
}

// OpenWindow opens a window described by p.
func (a *App) OpenWindow(p ipc.OpenWindowPayload) (ipc.WindowInfo, error) {
	return callValue(a, func() (ipc.WindowInfo, error) {
		win, err := a.openSpec(config.WindowSpec{
			Name:       p.Name,
			Type:       p.Type,
			X:          p.X,
			Y:          p.Y,
			Width:      p.Width,
			Height:     p.Height,
			Background: p.Background,
		})
		if err != nil {
			return ipc.WindowInfo{}, err
		}
		return windowInfo(win), nil
	})
}

// CloseWindow closes the front-most window matching p.
func (a *App) CloseWindow(p ipc.CloseWindowPayload) error {
	return a.call(func() error {
		win := a.findWindow(p.ID, p.Name)
		if win == nil {
			return fmt.Errorf("window %s: %w", selector(p.ID, p.Name), wm.ErrNotFound)
		}
		if p.Force {
			return a.core.CloseWindowForce(win)
		}
		return a.core.CloseWindow(win)
	})
}

// MoveWindow moves and resizes the front-most window matching p. A zero
// width or height keeps the current one.
func (a *App) MoveWindow(p ipc.MoveWindowPayload) (ipc.WindowInfo, error) {
	return callValue(a, func() (ipc.WindowInfo, error) {
		win := a.findWindow(p.ID, p.Name)
		if win == nil {
			return ipc.WindowInfo{}, fmt.Errorf("window %s: %w", selector(p.ID, p.Name), wm.ErrNotFound)
		}
		w, h := p.Width, p.Height
		if w == 0 {
			w = win.W
		}
		if h == 0 {
			h = win.H
		}
		if err := a.native.MoveResizeWindow(win, p.X, p.Y, w, h); err != nil {
			return ipc.WindowInfo{}, err
		}
		return windowInfo(win), nil
	})
}

func selector(id uint64, name string) string {
	if id != 0 {
		return fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%q", name)
}

func (a *App) findWindow(id uint64, name string) *widget.Widget {
	for w := range a.native.Root().FrontToBack() {
		if id != 0 && w.ID() == id {
			return w
		}
		if id == 0 && w.Name == name {
			return w
		}
	}
	return nil
}

func (a *App) Back() error {
	return a.call(a.core.Back)
}

func (a *App) BackToHome() error {
	return a.call(a.core.BackToHome)
}

// InjectInput routes a synthetic event as if the backend had delivered it.
func (a *App) InjectInput(p ipc.InjectInputPayload) error {
	typ, err := event.ParseType(p.Type)
	if err != nil {
		return err
	}
	e := event.Event{
		Type:         typ,
		NativeHandle: event.Handle(p.Handle),
		X:            p.X,
		Y:            p.Y,
		Button:       p.Button,
		Key:          p.Key,
		Modifiers:    event.Modifier(p.Modifiers),
	}
	return a.call(func() error {
		if e.NativeHandle == 0 {
			h, err := a.topHandle()
			if err != nil {
				return err
			}
			e.NativeHandle = h
		} else if _, ok := a.factory.Lookup(e.NativeHandle); !ok {
			return fmt.Errorf("native window %d: %w", e.NativeHandle, wm.ErrNotFound)
		}
		if typ.IsNative() {
			return a.core.DispatchNativeWindowEvent(e)
		}
		if a.keys.Handle(e) {
			return nil
		}
		return a.core.DispatchInputEvent(e)
	})
}

func (a *App) topHandle() (event.Handle, error) {
	for w := range a.native.Root().FrontToBack() {
		if nw, ok := w.NativeWindow(); ok {
			return nw.Handle(), nil
		}
	}
	return 0, fmt.Errorf("no open native window: %w", wm.ErrNotFound)
}

func (a *App) SetShowFPS(show bool) error {
	return a.call(func() error { return a.core.SetShowFPS(show) })
}

// SetIgnoreUserInput gates user input. Injected input passes the same gate.
func (a *App) SetIgnoreUserInput(ignore bool) error {
	return a.call(func() error {
		a.native.SetIgnoreUserInput(ignore)
		return nil
	})
}

func (a *App) SetCursor(name string) error {
	return a.call(func() error { return a.core.SetCursor(name) })
}

func (a *App) SetScreenSaverTime(d time.Duration) error {
	return a.call(func() error { return a.core.SetScreenSaverTime(d) })
}

// Reload re-reads the config file and applies its runtime settings.
func (a *App) Reload() error {
	if a.cfgPath == "" {
		return fmt.Errorf("no config file to reload")
	}
	res, err := config.LoadFromPath(a.cfgPath)
	if err != nil {
		return err
	}
	return a.call(func() error { return a.reloadSettings(res.Config) })
}

// SaveWorkspace snapshots the open windows, bottom-most first, under name.
// Windows already closing are left out.
func (a *App) SaveWorkspace(name string) (int, error) {
	store, err := a.workspaceStore()
	if err != nil {
		return 0, err
	}
	specs, err := callValue(a, func() ([]config.WindowSpec, error) {
		var specs []config.WindowSpec
		for w := range a.native.Root().BackToFront() {
			if w.Stage() >= widget.StageClosing {
				continue
			}
			specs = append(specs, windowSpec(w))
		}
		return specs, nil
	})
	if err != nil {
		return 0, err
	}
	snap := &workspace.Snapshot{Name: name, SavedAt: time.Now().UTC(), Windows: specs}
	if err := store.Write(snap); err != nil {
		return 0, err
	}
	return len(snap.Windows), nil
}

// LoadWorkspace opens the windows saved under name above the current stack.
func (a *App) LoadWorkspace(name string) (int, error) {
	store, err := a.workspaceStore()
	if err != nil {
		return 0, err
	}
	snap, err := store.Read(name)
	if err != nil {
		return 0, err
	}
	return callValue(a, func() (int, error) {
		for _, spec := range snap.Windows {
			if _, err := a.openSpec(spec); err != nil {
				return 0, fmt.Errorf("open %q: %w", spec.Name, err)
			}
		}
		return len(snap.Windows), nil
	})
}

func (a *App) workspaceStore() (*workspace.Store, error) {
	if a.workspaces == nil {
		return nil, fmt.Errorf("no workspace directory")
	}
	return a.workspaces, nil
}

func windowSpec(w *widget.Widget) config.WindowSpec {
	spec := config.WindowSpec{
		Name:   w.Name,
		Type:   w.Type.String(),
		X:      w.X,
		Y:      w.Y,
		Width:  w.W,
		Height: w.H,
	}
	if w.Background != nil {
		spec.Background = config.FormatColor(w.Background)
	}
	return spec
}
