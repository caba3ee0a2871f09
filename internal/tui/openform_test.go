package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/nativewm/internal/ipc"
)

func TestOpenFields_Payload(t *testing.T) {
	p, err := openFields{Name: " about ", Type: "dialog", X: "10", Width: "200", Height: " 100", Background: "#123"}.payload()
	require.NoError(t, err)
	assert.Equal(t, ipc.OpenWindowPayload{Name: "about", Type: "dialog", X: 10, Width: 200, Height: 100, Background: "#123"}, p)

	p, err = openFields{Name: "main"}.payload()
	require.NoError(t, err)
	assert.Equal(t, "normal_window", p.Type, "type defaults to a normal window")

	_, err = openFields{Name: "x", Background: "red"}.payload()
	assert.Error(t, err)
}

func TestOpenForm_Validators(t *testing.T) {
	assert.NoError(t, validateInt(""))
	assert.NoError(t, validateInt("-5"))
	assert.Error(t, validateInt("ten"))
	assert.Error(t, validateSize("-1"))
	assert.NoError(t, validateColor("#aabbcc"))
	assert.Error(t, validateColor("aabbcc"))

	f := &openFields{}
	assert.NotNil(t, newOpenForm(f))
}
