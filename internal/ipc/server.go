package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/nativewm/internal/runtimepath"
)

// Handler executes commands against the running window manager. Every
// method is called from a connection goroutine; implementations hand the
// work to the UI loop.
type Handler interface {
	Status() (StatusData, error)
	Windows() ([]WindowInfo, error)
	OpenWindow(p OpenWindowPayload) (WindowInfo, error)
	CloseWindow(p CloseWindowPayload) error
	MoveWindow(p MoveWindowPayload) (WindowInfo, error)
	Back() error
	BackToHome() error
	InjectInput(p InjectInputPayload) error
	SetShowFPS(show bool) error
	SetIgnoreUserInput(ignore bool) error
	SetCursor(name string) error
	SetScreenSaverTime(d time.Duration) error
	SaveWorkspace(name string) (int, error)
	LoadWorkspace(name string) (int, error)
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server on the runtime socket path.
func NewServer(handler Handler, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandOpenWindow:
		return s.handleOpenWindow(req.Payload)
	case CommandCloseWindow:
		return s.handleCloseWindow(req.Payload)
	case CommandMoveWindow:
		return s.handleMoveWindow(req.Payload)
	case CommandBack:
		return result(s.handler.Back(), "Failed to go back")
	case CommandBackToHome:
		return result(s.handler.BackToHome(), "Failed to go home")
	case CommandInjectInput:
		return s.handleInjectInput(req.Payload)
	case CommandSetShowFPS:
		var p SetShowFPSPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid show-fps payload: %v", err))
		}
		return result(s.handler.SetShowFPS(p.Show), "Failed to set show-fps")
	case CommandSetIgnoreInput:
		var p SetIgnoreInputPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid ignore-input payload: %v", err))
		}
		return result(s.handler.SetIgnoreUserInput(p.Ignore), "Failed to set ignore-input")
	case CommandSetCursor:
		var p SetCursorPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid cursor payload: %v", err))
		}
		if p.Name == "" {
			return NewErrorResponse("name is required")
		}
		return result(s.handler.SetCursor(p.Name), "Failed to set cursor")
	case CommandSetScreenSaverTime:
		return s.handleSetScreenSaverTime(req.Payload)
	case CommandSaveWorkspace:
		return s.handleWorkspace(req.Payload, "save", s.handler.SaveWorkspace)
	case CommandLoadWorkspace:
		return s.handleWorkspace(req.Payload, "load", s.handler.LoadWorkspace)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func result(err error, what string) *Response {
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("%s: %v", what, err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: received RELOAD command")
	if err := s.handler.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info("IPC: config reloaded")
	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status, err := s.handler.Status()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListWindows() *Response {
	windows, err := s.handler.Windows()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list windows: %v", err))
	}
	if windows == nil {
		windows = []WindowInfo{}
	}
	resp, _ := NewOKResponse(WindowsData{Windows: windows})
	return resp
}

func (s *Server) handleOpenWindow(payload json.RawMessage) *Response {
	var req OpenWindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid open payload: %v", err))
	}
	if req.Name == "" {
		return NewErrorResponse("name is required")
	}
	if req.Type == "" {
		req.Type = "normal_window"
	}

	info, err := s.handler.OpenWindow(req)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to open window: %v", err))
	}
	resp, _ := NewOKResponse(info)
	return resp
}

func (s *Server) handleCloseWindow(payload json.RawMessage) *Response {
	var req CloseWindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid close payload: %v", err))
	}
	if req.ID == 0 && req.Name == "" {
		return NewErrorResponse("id or name is required")
	}
	return result(s.handler.CloseWindow(req), "Failed to close window")
}

func (s *Server) handleMoveWindow(payload json.RawMessage) *Response {
	var req MoveWindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid move payload: %v", err))
	}
	if req.ID == 0 && req.Name == "" {
		return NewErrorResponse("id or name is required")
	}
	if req.Width < 0 || req.Height < 0 {
		return NewErrorResponse("width and height must not be negative")
	}
	info, err := s.handler.MoveWindow(req)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to move window: %v", err))
	}
	resp, _ := NewOKResponse(info)
	return resp
}

func (s *Server) handleInjectInput(payload json.RawMessage) *Response {
	var req InjectInputPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid inject payload: %v", err))
	}
	if req.Type == "" {
		return NewErrorResponse("type is required")
	}
	return result(s.handler.InjectInput(req), "Failed to inject input")
}

func (s *Server) handleSetScreenSaverTime(payload json.RawMessage) *Response {
	var req SetScreenSaverTimePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid screen saver payload: %v", err))
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid duration %q: %v", req.Duration, err))
	}
	return result(s.handler.SetScreenSaverTime(d), "Failed to set screen saver time")
}

func (s *Server) handleWorkspace(payload json.RawMessage, verb string, fn func(string) (int, error)) *Response {
	var req WorkspacePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid workspace payload: %v", err))
	}
	if req.Name == "" {
		return NewErrorResponse("name is required")
	}
	n, err := fn(req.Name)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s workspace: %v", verb, err))
	}
	s.logger.Info("IPC: workspace "+verb, "name", req.Name, "windows", n)
	resp, _ := NewOKResponse(WorkspaceData{Name: req.Name, Windows: n})
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
