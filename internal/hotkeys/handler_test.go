package hotkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/nativewm/internal/event"
)

func TestParse(t *testing.T) {
	b, err := Parse("ctrl+shift+F12")
	require.NoError(t, err)
	assert.Equal(t, event.ModCtrl|event.ModShift, b.Mods)
	assert.Equal(t, "F12", b.Key)
	assert.Equal(t, "ctrl+shift+F12", b.String())

	b, err = Parse("Mod1-Left")
	require.NoError(t, err)
	assert.Equal(t, Binding{Mods: event.ModAlt, Key: "Left"}, b)

	b, err = Parse("Escape")
	require.NoError(t, err)
	assert.Equal(t, Binding{Key: "Escape"}, b)

	_, err = Parse("")
	assert.Error(t, err)
	_, err = Parse("super+x")
	assert.Error(t, err)
}

func TestParse_SeparatorKeys(t *testing.T) {
	tests := []struct {
		seq  string
		want Binding
	}{
		{"ctrl+-", Binding{Mods: event.ModCtrl, Key: "minus"}},
		{"ctrl++", Binding{Mods: event.ModCtrl, Key: "plus"}},
		{"ctrl-shift--", Binding{Mods: event.ModCtrl | event.ModShift, Key: "minus"}},
		{"-", Binding{Key: "minus"}},
		{"ctrl+minus", Binding{Mods: event.ModCtrl, Key: "minus"}},
	}
	for _, tt := range tests {
		t.Run(tt.seq, func(t *testing.T) {
			b, err := Parse(tt.seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)

			again, err := Parse(b.String())
			require.NoError(t, err)
			assert.Equal(t, b, again)
		})
	}

	_, err := Parse("ctrl+")
	assert.Error(t, err)
}

func TestHandle_MinusKey(t *testing.T) {
	h := NewHandler(nil)
	zoomOut := 0
	require.NoError(t, h.RegisterFunc("zoom_out", "ctrl+-", func() { zoomOut++ }))

	assert.True(t, h.Handle(event.Event{Type: event.KeyDown, Key: "-", Modifiers: event.ModCtrl}))
	assert.True(t, h.Handle(event.Event{Type: event.KeyDown, Key: "minus", Modifiers: event.ModCtrl}))
	assert.Equal(t, 2, zoomOut)
}

func TestHandleRunsMatchingCallback(t *testing.T) {
	h := NewHandler(nil)
	backs := 0
	require.NoError(t, h.RegisterFunc("back", "alt+Left", func() { backs++ }))

	assert.True(t, h.Handle(event.Event{Type: event.KeyDown, Key: "left", Modifiers: event.ModAlt}))
	assert.Equal(t, 1, backs)

	// Modifiers must match exactly and only key presses count.
	assert.False(t, h.Handle(event.Event{Type: event.KeyDown, Key: "Left", Modifiers: event.ModAlt | event.ModShift}))
	assert.False(t, h.Handle(event.Event{Type: event.KeyUp, Key: "Left", Modifiers: event.ModAlt}))
	assert.False(t, h.Handle(event.Event{Type: event.PointerDown}))
	assert.Equal(t, 1, backs)
}

func TestRegisterReplacesSameSequence(t *testing.T) {
	h := NewHandler(nil)
	var got string
	require.NoError(t, h.RegisterFunc("a", "ctrl+F", func() { got = "a" }))
	require.NoError(t, h.RegisterFunc("b", "alt+F", func() { got = "b" }))
	assert.Equal(t, 2, h.Len())

	require.NoError(t, h.RegisterFunc("c", "control-f", func() { got = "c" }))
	assert.Equal(t, 2, h.Len())
	h.Handle(event.Event{Type: event.KeyDown, Key: "F", Modifiers: event.ModCtrl})
	assert.Equal(t, "c", got)

	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.Handle(event.Event{Type: event.KeyDown, Key: "F", Modifiers: event.ModCtrl}))
}
