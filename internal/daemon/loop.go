package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/idle"
	"github.com/1broseidon/nativewm/internal/wm"
)

var (
	// ErrStopped is returned when posting to a loop that is not running.
	ErrStopped = errors.New("loop stopped")
	// ErrEventSourceClosed is returned by Run when the backend stops
	// delivering events.
	ErrEventSourceClosed = errors.New("native event source closed")
)

// ScreenSaverChecker raises the screen-saver event once input has been idle
// long enough.
type ScreenSaverChecker interface {
	CheckScreenSaver(now time.Time) bool
}

// ShortcutHandler consumes key events bound to application shortcuts.
type ShortcutHandler interface {
	Handle(e event.Event) bool
}

// LoopConfig holds configuration for the loop.
type LoopConfig struct {
	FrameInterval       time.Duration
	ScreenSaverInterval time.Duration
	Logger              *slog.Logger
	// Shortcuts sees input events before the window tree. Optional.
	Shortcuts ShortcutHandler
}

// Loop is the UI thread. It owns the window manager: native events,
// posted closures, idle work and painting all run on the goroutine
// executing Run.
type Loop struct {
	core        *wm.Core
	idle        *idle.Queue
	events      <-chan event.Event
	screenSaver ScreenSaverChecker
	shortcuts   ShortcutHandler

	frameInterval       time.Duration
	screenSaverInterval time.Duration
	logger              *slog.Logger

	posts chan func()
	done  chan struct{}

	frames int
}

// NewLoop creates a loop driving core. screenSaver may be nil.
func NewLoop(cfg LoopConfig, core *wm.Core, q *idle.Queue, events <-chan event.Event, screenSaver ScreenSaverChecker) *Loop {
	frame := cfg.FrameInterval
	if frame <= 0 {
		frame = time.Second / 60
	}
	ss := cfg.ScreenSaverInterval
	if ss <= 0 {
		ss = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		core:                core,
		idle:                q,
		events:              events,
		screenSaver:         screenSaver,
		shortcuts:           cfg.Shortcuts,
		frameInterval:       frame,
		screenSaverInterval: ss,
		logger:              logger,
		posts:               make(chan func(), 64),
		done:                make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled or the event source closes.
// It may be called once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	frames := time.NewTicker(l.frameInterval)
	defer frames.Stop()
	saver := time.NewTicker(l.screenSaverInterval)
	defer saver.Stop()

	l.logger.Info("loop started", "frame_interval", l.frameInterval)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped")
			return nil
		case e, ok := <-l.events:
			if !ok {
				l.logger.Warn("native event source closed")
				return ErrEventSourceClosed
			}
			l.guard("dispatch", func() { l.dispatch(e) })
		case fn := <-l.posts:
			l.guard("posted call", fn)
		case <-frames.C:
			l.guard("frame", l.frame)
		case now := <-saver.C:
			if l.screenSaver != nil {
				l.guard("screen saver", func() { l.screenSaver.CheckScreenSaver(now) })
			}
		}
	}
}

// guard runs fn, recovering from panics so one bad callback does not take
// the UI down.
func (l *Loop) guard(what string, fn func()) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("loop panic recovered", "in", what, "error", err)
		}
	}()
	fn()
}

func (l *Loop) dispatch(e event.Event) {
	var err error
	switch {
	case e.Type.IsNative():
		err = l.core.DispatchNativeWindowEvent(e)
	case l.shortcuts != nil && l.shortcuts.Handle(e):
		return
	default:
		err = l.core.DispatchInputEvent(e)
	}
	if err != nil {
		l.logger.Warn("dispatch failed", "event", e.String(), "error", err)
	}
}

func (l *Loop) frame() {
	l.idle.Drain()
	if err := l.core.Paint(); err != nil {
		l.logger.Warn("paint failed", "error", err)
	}
	l.frames++
}

// Step drains the idle queue and paints once. It must only be used when
// Run is not executing, as tests and one-shot tools do.
func (l *Loop) Step() {
	l.frame()
}

// Frames returns the number of frames processed. Loop goroutine only.
func (l *Loop) Frames() int { return l.frames }

// Post schedules fn on the loop goroutine.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.posts <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Call runs fn on the loop goroutine and waits for its result.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	err := l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("panic: %v", r)
			}
		}()
		result <- fn()
	})
	if err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	}
}
