package wm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/platform"
	"github.com/1broseidon/nativewm/internal/widget"
)

// paintOnly supports a single capability.
type paintOnly struct {
	paints int
}

func (p *paintOnly) Paint() error {
	p.paints++
	return nil
}

func TestCore_NilCoreAndStrategy(t *testing.T) {
	var nilCore *Core
	assert.ErrorIs(t, nilCore.Paint(), ErrInvalidArgument)
	assert.ErrorIs(t, nilCore.SetShowFPS(true), ErrInvalidArgument)
	assert.False(t, nilCore.ShowFPS())
	assert.Equal(t, 0, nilCore.PointerX())
	assert.Nil(t, nilCore.Strategy())

	empty := NewCore(nil)
	assert.ErrorIs(t, empty.Back(), ErrInvalidArgument)
	_, err := empty.TopWindow()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCore_MissingCapabilityHasNoSideEffects(t *testing.T) {
	p := &paintOnly{}
	c := NewCore(p)

	require.NoError(t, c.Paint())
	assert.Equal(t, 1, p.paints)

	win := widget.New(widget.NormalWindow, "main")
	assert.ErrorIs(t, c.OpenWindow(win), ErrInvalidArgument)
	assert.ErrorIs(t, c.CloseWindow(win), ErrInvalidArgument)
	assert.ErrorIs(t, c.CloseWindowForce(win), ErrInvalidArgument)
	assert.ErrorIs(t, c.Resize(10, 10), ErrInvalidArgument)
	assert.ErrorIs(t, c.PostInit(10, 10), ErrInvalidArgument)
	assert.ErrorIs(t, c.SetCursor("hand"), ErrInvalidArgument)
	assert.ErrorIs(t, c.SetScreenSaverTime(time.Second), ErrInvalidArgument)
	assert.ErrorIs(t, c.BackToHome(), ErrInvalidArgument)
	assert.ErrorIs(t, c.DispatchInputEvent(event.Event{Type: event.KeyDown}), ErrInvalidArgument)
	assert.ErrorIs(t, c.DispatchNativeWindowEvent(event.Event{Type: event.NativeWindowExpose}), ErrInvalidArgument)
	_, err := c.TopMainWindow()
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.PrevWindow()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.ErrorIs(t, c.SetShowFPS(true), ErrInvalidArgument)
	assert.False(t, c.ShowFPS(), "flag is not recorded when unsupported")

	assert.Nil(t, win.Parent())
	assert.Equal(t, 0, c.PointerY())
	assert.False(t, c.PointerPressed())
}

func TestCore_RejectsNilWindowAndEmptyEvents(t *testing.T) {
	fx := newFixture(t)
	c := NewCore(fx.m)

	assert.ErrorIs(t, c.OpenWindow(nil), ErrInvalidArgument)
	assert.ErrorIs(t, c.CloseWindow(nil), ErrInvalidArgument)
	assert.ErrorIs(t, c.CloseWindowForce(nil), ErrInvalidArgument)
	assert.ErrorIs(t, c.DispatchInputEvent(event.Event{}), ErrInvalidArgument)
	assert.ErrorIs(t, c.DispatchNativeWindowEvent(event.Event{Type: event.PointerDown}), ErrInvalidArgument)
	assert.Equal(t, 0, fx.m.Idle().Len())
}

func TestCore_ForwardsToNative(t *testing.T) {
	fx := newFixture(t)
	c := NewCore(fx.m)
	assert.Same(t, fx.m, c.Strategy())

	win := widget.New(widget.NormalWindow, "main")
	require.NoError(t, c.OpenWindow(win))
	fx.m.Idle().Drain()

	top, err := c.TopWindow()
	require.NoError(t, err)
	assert.Same(t, win, top)
	main, err := c.TopMainWindow()
	require.NoError(t, err)
	assert.Same(t, win, main)

	require.NoError(t, c.SetShowFPS(true))
	assert.True(t, c.ShowFPS())
	assert.True(t, fx.m.ShowFPS())

	require.NoError(t, c.SetScreenSaverTime(time.Minute))
	assert.Equal(t, time.Minute, fx.m.ScreenSaverTime())

	require.NoError(t, c.Paint())
	require.NoError(t, c.Resize(640, 480))
	assert.Equal(t, platform.Rect{Width: 640, Height: 480}, fx.m.Root().Rect())

	assert.ErrorIs(t, c.Back(), ErrAtHome)
	require.NoError(t, c.CloseWindow(win))
	assert.Equal(t, 0, fx.m.Root().ChildCount())
}
