package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/nativewm/internal/ipc"
)

const defaultWaitTimeout = 5 * time.Second

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, ipc.StatusData, error) {
	st, err := s.ctl.GetStatus()
	if err != nil {
		return nil, ipc.StatusData{}, err
	}
	return nil, *st, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.ctl.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	windows := data.Windows
	if windows == nil {
		windows = []ipc.WindowInfo{}
	}
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleOpenWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, ipc.WindowInfo, error) {
	if args.Name == "" {
		return nil, ipc.WindowInfo{}, fmt.Errorf("name is required")
	}
	info, err := s.ctl.OpenWindow(ipc.OpenWindowPayload{
		Name:       args.Name,
		Type:       args.Type,
		X:          args.X,
		Y:          args.Y,
		Width:      args.Width,
		Height:     args.Height,
		Background: args.Background,
	})
	if err != nil {
		return nil, ipc.WindowInfo{}, err
	}
	s.logger.Info("mcp open_window", "name", info.Name, "id", info.ID, "type", info.Type)

	if !args.Wait {
		return nil, *info, nil
	}
	w, reached, err := s.waitFor(ctx, func(windows []ipc.WindowInfo) (*ipc.WindowInfo, bool) {
		for i := range windows {
			if windows[i].ID == info.ID {
				return &windows[i], windows[i].Stage == "open"
			}
		}
		return nil, false
	}, secondsOr(args.Timeout))
	if err != nil {
		return nil, ipc.WindowInfo{}, err
	}
	if !reached {
		return nil, ipc.WindowInfo{}, fmt.Errorf("window %q did not open in time", args.Name)
	}
	return nil, *w, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CloseWindowInput) (*mcpsdk.CallToolResult, any, error) {
	if args.ID == 0 && args.Name == "" {
		return nil, nil, fmt.Errorf("id or name is required")
	}
	if err := s.ctl.CloseWindow(ipc.CloseWindowPayload{ID: args.ID, Name: args.Name, Force: args.Force}); err != nil {
		return nil, nil, err
	}
	if args.ID != 0 {
		return textResult("Closed window %d", args.ID), nil, nil
	}
	return textResult("Closed window %q", args.Name), nil, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, ipc.WindowInfo, error) {
	if args.ID == 0 && args.Name == "" {
		return nil, ipc.WindowInfo{}, fmt.Errorf("id or name is required")
	}
	info, err := s.ctl.MoveWindow(ipc.MoveWindowPayload{
		ID:     args.ID,
		Name:   args.Name,
		X:      args.X,
		Y:      args.Y,
		Width:  args.Width,
		Height: args.Height,
	})
	if err != nil {
		return nil, ipc.WindowInfo{}, err
	}
	return nil, *info, nil
}

func (s *Server) handleBack(_ context.Context, _ *mcpsdk.CallToolRequest, _ NavigateInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.ctl.Back(); err != nil {
		return nil, nil, err
	}
	return textResult("Closed the top window"), nil, nil
}

func (s *Server) handleBackToHome(_ context.Context, _ *mcpsdk.CallToolRequest, _ NavigateInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.ctl.BackToHome(); err != nil {
		return nil, nil, err
	}
	return textResult("Returned to the home window"), nil, nil
}

func (s *Server) handleInjectInput(_ context.Context, _ *mcpsdk.CallToolRequest, args InjectInputInput) (*mcpsdk.CallToolResult, any, error) {
	if args.Type == "" {
		return nil, nil, fmt.Errorf("type is required")
	}
	err := s.ctl.InjectInput(ipc.InjectInputPayload{
		Type:      args.Type,
		Handle:    args.Handle,
		X:         args.X,
		Y:         args.Y,
		Button:    args.Button,
		Key:       args.Key,
		Modifiers: args.Modifiers,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult("Dispatched %s", args.Type), nil, nil
}

func (s *Server) handleSetShowFPS(_ context.Context, _ *mcpsdk.CallToolRequest, args SetShowFPSInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.ctl.SetShowFPS(args.Show); err != nil {
		return nil, nil, err
	}
	return textResult("show_fps=%t", args.Show), nil, nil
}

func (s *Server) handleSetIgnoreInput(_ context.Context, _ *mcpsdk.CallToolRequest, args SetIgnoreInputInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.ctl.SetIgnoreUserInput(args.Ignore); err != nil {
		return nil, nil, err
	}
	return textResult("ignore_user_input=%t", args.Ignore), nil, nil
}

func (s *Server) handleSetCursor(_ context.Context, _ *mcpsdk.CallToolRequest, args SetCursorInput) (*mcpsdk.CallToolResult, any, error) {
	if args.Name == "" {
		return nil, nil, fmt.Errorf("name is required")
	}
	if err := s.ctl.SetCursor(args.Name); err != nil {
		return nil, nil, err
	}
	return textResult("cursor=%s", args.Name), nil, nil
}

func (s *Server) handleSetScreenSaverTime(_ context.Context, _ *mcpsdk.CallToolRequest, args SetScreenSaverTimeInput) (*mcpsdk.CallToolResult, any, error) {
	d, err := time.ParseDuration(args.Duration)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid duration %q: %w", args.Duration, err)
	}
	if err := s.ctl.SetScreenSaverTime(d); err != nil {
		return nil, nil, err
	}
	return textResult("screen_saver_time=%s", d), nil, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.ctl.Reload(); err != nil {
		return nil, nil, err
	}
	return textResult("Configuration reloaded"), nil, nil
}

func (s *Server) handleSaveWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args WorkspaceInput) (*mcpsdk.CallToolResult, ipc.WorkspaceData, error) {
	if args.Name == "" {
		return nil, ipc.WorkspaceData{}, fmt.Errorf("name is required")
	}
	data, err := s.ctl.SaveWorkspace(args.Name)
	if err != nil {
		return nil, ipc.WorkspaceData{}, err
	}
	return textResult("Saved %d windows as workspace %q", data.Windows, data.Name), *data, nil
}

func (s *Server) handleLoadWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args WorkspaceInput) (*mcpsdk.CallToolResult, ipc.WorkspaceData, error) {
	if args.Name == "" {
		return nil, ipc.WorkspaceData{}, fmt.Errorf("name is required")
	}
	data, err := s.ctl.LoadWorkspace(args.Name)
	if err != nil {
		return nil, ipc.WorkspaceData{}, err
	}
	return textResult("Opened %d windows from workspace %q", data.Windows, data.Name), *data, nil
}

func (s *Server) handleWaitForWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WaitForWindowInput) (*mcpsdk.CallToolResult, WaitForWindowOutput, error) {
	if args.Name == "" {
		return nil, WaitForWindowOutput{}, fmt.Errorf("name is required")
	}
	stage := args.Stage
	if stage == "" {
		stage = "open"
	}
	if stage != "open" && stage != "gone" {
		return nil, WaitForWindowOutput{}, fmt.Errorf("stage must be open or gone, got %q", stage)
	}

	w, reached, err := s.waitFor(ctx, func(windows []ipc.WindowInfo) (*ipc.WindowInfo, bool) {
		for i := len(windows) - 1; i >= 0; i-- {
			if windows[i].Name == args.Name {
				return &windows[i], stage == "open" && windows[i].Stage == "open"
			}
		}
		return nil, stage == "gone"
	}, secondsOr(args.Timeout))
	if err != nil {
		return nil, WaitForWindowOutput{}, err
	}
	return nil, WaitForWindowOutput{Reached: reached, Window: w}, nil
}

// waitFor polls the window list until match reports done or timeout
// elapses. It returns the last matched window.
func (s *Server) waitFor(ctx context.Context, match func([]ipc.WindowInfo) (*ipc.WindowInfo, bool), timeout time.Duration) (*ipc.WindowInfo, bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		data, err := s.ctl.ListWindows()
		if err != nil {
			return nil, false, err
		}
		w, done := match(data.Windows)
		if done {
			return w, true, nil
		}
		if time.Now().After(deadline) {
			return w, false, nil
		}
		select {
		case <-ctx.Done():
			return w, false, ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

func secondsOr(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultWaitTimeout
	}
	return time.Duration(seconds) * time.Second
}
