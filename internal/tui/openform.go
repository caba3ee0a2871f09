package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/nativewm/internal/config"
	"github.com/1broseidon/nativewm/internal/ipc"
)

// openFields holds the raw form values; huh inputs bind to strings.
type openFields struct {
	Name       string
	Type       string
	X, Y       string
	Width      string
	Height     string
	Background string
}

func validateInt(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}

func validateSize(s string) error {
	if err := validateInt(s); err != nil {
		return err
	}
	if n, _ := strconv.Atoi(strings.TrimSpace(s)); n < 0 {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}

func validateColor(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := config.ParseColor(strings.TrimSpace(s))
	return err
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// payload converts validated form values into an open request.
func (f openFields) payload() (ipc.OpenWindowPayload, error) {
	p := ipc.OpenWindowPayload{
		Name:       strings.TrimSpace(f.Name),
		Type:       f.Type,
		X:          atoi(f.X),
		Y:          atoi(f.Y),
		Width:      atoi(f.Width),
		Height:     atoi(f.Height),
		Background: strings.TrimSpace(f.Background),
	}
	if p.Type == "" {
		p.Type = "normal_window"
	}
	spec := config.WindowSpec{Name: p.Name, Type: p.Type, Width: p.Width, Height: p.Height, Background: p.Background}
	if err := spec.Validate(); err != nil {
		return ipc.OpenWindowPayload{}, err
	}
	return p, nil
}

func newOpenForm(f *openFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Description("Window name").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}).
				Value(&f.Name),

			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Description("Dialogs and popups share the window below them").
				Options(huh.NewOptions("normal_window", "dialog", "popup")...).
				Value(&f.Type),

			huh.NewInput().
				Key("background").
				Title("Background").
				Description("#rgb, #rrggbb or #rrggbbaa; empty paints nothing").
				Validate(validateColor).
				Value(&f.Background),
		),
		huh.NewGroup(
			huh.NewInput().Key("x").Title("X").Validate(validateInt).Value(&f.X),
			huh.NewInput().Key("y").Title("Y").Validate(validateInt).Value(&f.Y),
			huh.NewInput().
				Key("width").
				Title("Width").
				Description("0 fills the screen").
				Validate(validateSize).
				Value(&f.Width),
			huh.NewInput().
				Key("height").
				Title("Height").
				Description("0 fills the screen").
				Validate(validateSize).
				Value(&f.Height),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// PromptOpenWindow asks for a window description on the terminal.
// defaults pre-fills the form.
func PromptOpenWindow(ctx context.Context, defaults ipc.OpenWindowPayload) (ipc.OpenWindowPayload, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ipc.OpenWindowPayload{}, fmt.Errorf("interactive open requires a terminal")
	}
	f := &openFields{
		Name:       defaults.Name,
		Type:       defaults.Type,
		Background: defaults.Background,
	}
	if defaults.X != 0 {
		f.X = strconv.Itoa(defaults.X)
	}
	if defaults.Y != 0 {
		f.Y = strconv.Itoa(defaults.Y)
	}
	if defaults.Width != 0 {
		f.Width = strconv.Itoa(defaults.Width)
	}
	if defaults.Height != 0 {
		f.Height = strconv.Itoa(defaults.Height)
	}

	if err := newOpenForm(f).RunWithContext(ctx); err != nil {
		return ipc.OpenWindowPayload{}, err
	}
	return f.payload()
}
