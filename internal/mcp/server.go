package mcp

import (
	"context"
	"log/slog"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/nativewm/internal/ipc"
)

const (
	ServerName    = "nativewm"
	ServerVersion = "0.1.0"
)

// Controller is the subset of the IPC client the tools drive.
type Controller interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	OpenWindow(p ipc.OpenWindowPayload) (*ipc.WindowInfo, error)
	CloseWindow(p ipc.CloseWindowPayload) error
	MoveWindow(p ipc.MoveWindowPayload) (*ipc.WindowInfo, error)
	Back() error
	BackToHome() error
	InjectInput(p ipc.InjectInputPayload) error
	SetShowFPS(show bool) error
	SetIgnoreUserInput(ignore bool) error
	SetCursor(name string) error
	SetScreenSaverTime(d time.Duration) error
	SaveWorkspace(name string) (*ipc.WorkspaceData, error)
	LoadWorkspace(name string) (*ipc.WorkspaceData, error)
	Reload() error
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server exposing a running window manager as tools.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
	logger    *slog.Logger

	pollInterval time.Duration
}

// NewServer creates a new MCP server that forwards to ctl.
func NewServer(ctl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		ctl:          ctl,
		logger:       logger,
		pollInterval: 50 * time.Millisecond,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the window manager state: window count, top and previous window, pointer position and button state, cursor, FPS overlay and screen saver settings.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List top-level windows bottom-most first, with their lifecycle stage, geometry, native handle and the reference count of the native window they are bound to.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a window. Opening is asynchronous: the window is attached immediately and bound to a native window on the next loop iteration. Pass wait to block until it is open.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window by id or name. The window is detached immediately; its native window is released on the next loop iteration.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move and resize a window by id or name. A normal window carries its native window along; dialogs and popups move within the surface they share.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "back",
		Description: "Close the top window. Fails when the top window is the home window.",
	}, s.handleBack)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "back_to_home",
		Description: "Close every window above the home (bottom-most normal) window.",
	}, s.handleBackToHome)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "inject_input",
		Description: "Feed a synthetic input or native window event through the dispatcher, as if the OS had delivered it.",
	}, s.handleInjectInput)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_show_fps",
		Description: "Toggle the frame rate overlay.",
	}, s.handleSetShowFPS)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_ignore_input",
		Description: "Drop user input while set. A press already in progress still receives its pointer up.",
	}, s.handleSetIgnoreInput)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_cursor",
		Description: "Set the pointer cursor on every native window.",
	}, s.handleSetCursor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_screen_saver_time",
		Description: "Set how long input must be idle before the screen saver event is raised.",
	}, s.handleSetScreenSaverTime)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Re-read the config file and apply its runtime settings.",
	}, s.handleReload)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_workspace",
		Description: "Save the open windows (names, types, geometry and backgrounds) as a named workspace.",
	}, s.handleSaveWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_workspace",
		Description: "Open every window of a saved workspace above the current stack.",
	}, s.handleLoadWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wait_for_window",
		Description: "Poll until a named window reaches the open stage, or until no window with that name remains (stage: gone).",
	}, s.handleWaitForWindow)
}
