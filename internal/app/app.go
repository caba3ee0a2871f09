// Package app wires the configured backend, window manager, main loop and
// control surfaces into one runtime context.
package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/1broseidon/nativewm/internal/canvas"
	"github.com/1broseidon/nativewm/internal/config"
	"github.com/1broseidon/nativewm/internal/daemon"
	"github.com/1broseidon/nativewm/internal/hotkeys"
	"github.com/1broseidon/nativewm/internal/ipc"
	"github.com/1broseidon/nativewm/internal/nativewindow"
	"github.com/1broseidon/nativewm/internal/platform"
	"github.com/1broseidon/nativewm/internal/widget"
	"github.com/1broseidon/nativewm/internal/wm"
	"github.com/1broseidon/nativewm/internal/workspace"
)

// callTimeout is the default for Options.CallTimeout.
const callTimeout = 5 * time.Second

var titleColor = color.RGBA{R: 0xec, G: 0xef, B: 0xf4, A: 0xff}

// LevelSetter changes the log level on reload.
type LevelSetter interface {
	SetLevel(level string)
}

// Options configures New.
type Options struct {
	Config *config.Config
	// ConfigPath is re-read by Reload and watched when Watch is set.
	ConfigPath string
	Logger     *slog.Logger
	Levels     LevelSetter

	// Backend overrides the backend named in Config.
	Backend platform.Backend
	// IPC starts the control socket server in Run.
	IPC bool
	// Watch reloads settings when ConfigPath changes.
	Watch bool
	// OnFatal is passed through to the window manager.
	OnFatal func(error)
	// Workspaces stores saved window stacks. Defaults to the user store.
	Workspaces *workspace.Store
	// CallTimeout bounds how long a control request waits for the loop.
	CallTimeout time.Duration
}

// App is the explicit runtime context: one backend, one window manager and
// the loop that owns it.
type App struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	levels  LevelSetter

	backend platform.Backend
	factory *nativewindow.Factory
	native  *wm.Native
	core    *wm.Core
	loop    *daemon.Loop
	keys    *hotkeys.Handler

	workspaces  *workspace.Store
	callTimeout time.Duration

	ipc   bool
	watch bool
}

// New builds the runtime context and queues the configured windows for
// opening. Nothing is painted until Run.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backend := opts.Backend
	if backend == nil {
		b, err := NewBackend(cfg)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	a := &App{
		cfg:         cfg,
		cfgPath:     opts.ConfigPath,
		logger:      logger,
		levels:      opts.Levels,
		backend:     backend,
		workspaces:  opts.Workspaces,
		callTimeout: opts.CallTimeout,
		ipc:         opts.IPC,
		watch:       opts.Watch,
	}
	if a.callTimeout <= 0 {
		a.callTimeout = callTimeout
	}

	if a.workspaces == nil {
		if store, err := workspace.DefaultStore(); err == nil {
			a.workspaces = store
		} else {
			logger.Warn("workspaces disabled", "error", err)
		}
	}

	width, height, err := a.screenSize()
	if err != nil {
		backend.Close()
		return nil, err
	}

	a.factory = nativewindow.NewFactory(backend, logger)
	if cfg.Shared() {
		if err := a.factory.InitShared(cfg.AppName, width, height); err != nil {
			backend.Close()
			return nil, fmt.Errorf("init shared window: %w", err)
		}
	}

	a.native = wm.NewNative(wm.Options{
		Logger:    logger,
		Factory:   a.factory,
		Resizable: cfg.Resizable(),
		Shared:    cfg.Shared(),
		OnFatal:   opts.OnFatal,
	})
	a.core = wm.NewCore(a.native)
	if err := a.core.PostInit(width, height); err != nil {
		a.shutdown()
		return nil, err
	}
	if err := a.applySettings(cfg); err != nil {
		a.shutdown()
		return nil, err
	}

	a.keys = hotkeys.NewHandler(logger)
	if err := a.bindShortcuts(cfg); err != nil {
		a.shutdown()
		return nil, err
	}

	a.loop = daemon.NewLoop(daemon.LoopConfig{
		FrameInterval: cfg.FrameInterval(),
		Logger:        logger,
		Shortcuts:     a.keys,
	}, a.core, a.native.Idle(), backend.Events(), a.native)

	for _, spec := range cfg.Windows {
		if _, err := a.openSpec(spec); err != nil {
			a.shutdown()
			return nil, fmt.Errorf("open window %q: %w", spec.Name, err)
		}
	}

	return a, nil
}

// NewBackend creates the backend selected by cfg.
func NewBackend(cfg *config.Config) (platform.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return platform.NewMemoryBackend(cfg.Width, cfg.Height), nil
	case config.BackendX11, "":
		b, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func (a *App) screenSize() (int, int, error) {
	w, h := a.cfg.Width, a.cfg.Height
	if w > 0 && h > 0 {
		return w, h, nil
	}
	sw, sh, err := a.backend.ScreenSize()
	if err != nil {
		return 0, 0, fmt.Errorf("query screen size: %w", err)
	}
	if w <= 0 {
		w = sw
	}
	if h <= 0 {
		h = sh
	}
	return w, h, nil
}

func (a *App) Core() *wm.Core           { return a.core }
func (a *App) Native() *wm.Native       { return a.native }
func (a *App) Loop() *daemon.Loop       { return a.loop }
func (a *App) Backend() platform.Backend { return a.backend }

// Run drives the loop until ctx is cancelled, then closes every window and
// the backend.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.ipc {
		srv, err := ipc.NewServer(a, a.logger)
		if err != nil {
			a.shutdown()
			return err
		}
		if err := srv.Start(); err != nil {
			a.shutdown()
			return err
		}
		defer srv.Stop()
	}

	if a.watch && a.cfgPath != "" {
		go func() {
			err := config.Watch(ctx, a.cfgPath, a.logger, func(cfg *config.Config) {
				if err := a.loop.Post(func() { _ = a.reloadSettings(cfg) }); err != nil {
					a.logger.Debug("config change dropped", "error", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	err := a.loop.Run(ctx)
	a.shutdown()
	if errors.Is(err, daemon.ErrEventSourceClosed) {
		a.logger.Info("backend closed, exiting")
		return nil
	}
	return err
}

// shutdown runs after the loop has stopped, so it may touch the manager.
func (a *App) shutdown() {
	if a.native != nil {
		a.native.Close()
	}
	if a.factory != nil {
		a.factory.Deinit()
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("backend close failed", "error", err)
	}
}

// applySettings pushes the runtime-adjustable settings into the manager.
func (a *App) applySettings(cfg *config.Config) error {
	if err := a.core.SetShowFPS(cfg.ShowFPS); err != nil {
		return err
	}
	if err := a.core.SetScreenSaverTime(cfg.ScreenSaverTime); err != nil {
		return err
	}
	if cfg.Cursor != "" {
		if err := a.core.SetCursor(cfg.Cursor); err != nil {
			return err
		}
	}
	return nil
}

// reloadSettings applies a reloaded config. Structural settings such as the
// backend or app type need a restart and are only reported.
func (a *App) reloadSettings(cfg *config.Config) error {
	if cfg.Backend != a.cfg.Backend || cfg.AppType != a.cfg.AppType || cfg.Shared() != a.cfg.Shared() {
		a.logger.Warn("backend and app type changes take effect after restart")
	}
	if err := a.applySettings(cfg); err != nil {
		a.logger.Warn("reload rejected", "error", err)
		return err
	}
	if err := a.bindShortcuts(cfg); err != nil {
		a.logger.Warn("shortcuts rejected", "error", err)
		return err
	}
	if a.levels != nil {
		a.levels.SetLevel(cfg.GetLoggingConfig().Level)
	}
	a.cfg = cfg
	a.logger.Info("settings reloaded", "show_fps", cfg.ShowFPS, "screen_saver_time", cfg.ScreenSaverTime, "cursor", cfg.Cursor)
	return nil
}

// bindShortcuts replaces the shortcut table with cfg's. Callbacks run on
// the loop goroutine.
func (a *App) bindShortcuts(cfg *config.Config) error {
	actions := map[string]func(){
		config.ActionBack: func() {
			if err := a.core.Back(); err != nil {
				a.logger.Debug("back shortcut ignored", "error", err)
			}
		},
		config.ActionHome: func() {
			if err := a.core.BackToHome(); err != nil {
				a.logger.Debug("home shortcut ignored", "error", err)
			}
		},
		config.ActionToggleFPS: func() {
			if err := a.core.SetShowFPS(!a.core.ShowFPS()); err != nil {
				a.logger.Warn("toggle fps failed", "error", err)
			}
		},
	}

	a.keys.Reset()
	for action, seq := range cfg.Shortcuts {
		fn, ok := actions[action]
		if !ok || seq == "" {
			continue
		}
		if err := a.keys.RegisterFunc(action, seq, fn); err != nil {
			return fmt.Errorf("shortcut %s: %w", action, err)
		}
	}
	return nil
}

// openSpec creates a window widget for spec and opens it. Loop goroutine only.
func (a *App) openSpec(spec config.WindowSpec) (*widget.Widget, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	typ, err := widget.ParseType(spec.Type)
	if err != nil {
		return nil, err
	}
	win := widget.New(typ, spec.Name)
	win.MoveResize(spec.X, spec.Y, spec.Width, spec.Height)
	if spec.Background != "" {
		bg, err := config.ParseColor(spec.Background)
		if err != nil {
			return nil, err
		}
		win.Background = bg
	}
	win.OnPaint = paintTitle
	if err := a.core.OpenWindow(win); err != nil {
		return nil, err
	}
	return win, nil
}

func paintTitle(w *widget.Widget, c canvas.Canvas) {
	c.DrawText(w.Name, 8, 8, titleColor)
}

// call runs fn on the loop with the control timeout.
func (a *App) call(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.callTimeout)
	defer cancel()
	return a.loop.Call(ctx, fn)
}

// callValue runs fn on the loop and hands its result back over a channel, so
// a caller that times out never shares memory with a closure still running.
func callValue[T any](a *App, fn func() (T, error)) (T, error) {
	out := make(chan T, 1)
	err := a.call(func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out <- v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return <-out, nil
}
