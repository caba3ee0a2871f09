package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload             CommandType = "RELOAD"
	CommandGetStatus          CommandType = "GET_STATUS"
	CommandListWindows        CommandType = "LIST_WINDOWS"
	CommandOpenWindow         CommandType = "OPEN_WINDOW"
	CommandCloseWindow        CommandType = "CLOSE_WINDOW"
	CommandBack               CommandType = "BACK"
	CommandBackToHome         CommandType = "BACK_TO_HOME"
	CommandInjectInput        CommandType = "INJECT_INPUT"
	CommandSetShowFPS         CommandType = "SET_SHOW_FPS"
	CommandSetCursor          CommandType = "SET_CURSOR"
	CommandSetScreenSaverTime CommandType = "SET_SCREEN_SAVER_TIME"
	CommandSaveWorkspace      CommandType = "SAVE_WORKSPACE"
	CommandLoadWorkspace      CommandType = "LOAD_WORKSPACE"
	CommandMoveWindow         CommandType = "MOVE_WINDOW"
	CommandSetIgnoreInput     CommandType = "SET_IGNORE_INPUT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	AppName         string `json:"app_name"`
	Backend         string `json:"backend"`
	WindowCount     int    `json:"window_count"`
	NativeWindows   int    `json:"native_windows"`
	TopWindow       string `json:"top_window,omitempty"`
	PrevWindow      string `json:"prev_window,omitempty"`
	PointerX        int    `json:"pointer_x"`
	PointerY        int    `json:"pointer_y"`
	PointerPressed  bool   `json:"pointer_pressed"`
	ShowFPS         bool   `json:"show_fps"`
	Cursor          string `json:"cursor"`
	ScreenSaverTime string `json:"screen_saver_time"`
	PendingIdle     int    `json:"pending_idle"`
	IgnoreUserInput bool   `json:"ignore_user_input"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	DaemonRunning   bool   `json:"daemon_running"`
}

// WindowInfo describes one top-level window.
type WindowInfo struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Stage   string `json:"stage"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Visible bool   `json:"visible"`
	Handle  uint32 `json:"handle,omitempty"`
	Refs    int    `json:"refs,omitempty"`
}

// WindowsData represents the data returned by LIST_WINDOWS, bottom-most
// window first.
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// OpenWindowPayload represents the payload for OPEN_WINDOW.
type OpenWindowPayload struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	X          int    `json:"x,omitempty"`
	Y          int    `json:"y,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Background string `json:"background,omitempty"`
}

// CloseWindowPayload selects a window by ID, or by name when ID is zero.
type CloseWindowPayload struct {
	ID    uint64 `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Force bool   `json:"force,omitempty"`
}

// MoveWindowPayload moves and resizes a window selected like
// CloseWindowPayload. A zero Width or Height keeps the current size.
type MoveWindowPayload struct {
	ID     uint64 `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// InjectInputPayload describes a synthetic input event. A zero Handle
// targets the native window of the top window.
type InjectInputPayload struct {
	Type      string `json:"type"`
	Handle    uint32 `json:"handle,omitempty"`
	X         int    `json:"x,omitempty"`
	Y         int    `json:"y,omitempty"`
	Button    int    `json:"button,omitempty"`
	Key       string `json:"key,omitempty"`
	Modifiers uint8  `json:"modifiers,omitempty"`
}

type SetShowFPSPayload struct {
	Show bool `json:"show"`
}

type SetIgnoreInputPayload struct {
	Ignore bool `json:"ignore"`
}

type SetCursorPayload struct {
	Name string `json:"name"`
}

// SetScreenSaverTimePayload carries a Go duration string such as "30s";
// "0" disables the screen saver.
type SetScreenSaverTimePayload struct {
	Duration string `json:"duration"`
}

// WorkspacePayload names a saved window stack.
type WorkspacePayload struct {
	Name string `json:"name"`
}

// WorkspaceData reports how many windows a save or load touched.
type WorkspaceData struct {
	Name    string `json:"name"`
	Windows int    `json:"windows"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
