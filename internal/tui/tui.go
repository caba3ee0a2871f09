// Package tui implements "nativewm top", a live view of a running window
// manager polled over IPC.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/nativewm/internal/ipc"
)

// Source is what the view polls and drives. *ipc.Client implements it.
type Source interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	CloseWindow(p ipc.CloseWindowPayload) error
	Back() error
	BackToHome() error
	SetShowFPS(show bool) error
}

var _ Source = (*ipc.Client)(nil)

// DefaultInterval is how often the view refreshes.
const DefaultInterval = 500 * time.Millisecond

// Run starts the view and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, src Source, interval time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("top requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	p := tea.NewProgram(newModel(src, interval), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
