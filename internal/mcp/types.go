package mcp

import "github.com/1broseidon/nativewm/internal/ipc"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []ipc.WindowInfo `json:"windows"`
}

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	Name       string `json:"name" jsonschema:"Window name, used to address it in later calls"`
	Type       string `json:"type,omitempty" jsonschema:"normal_window (default), dialog or popup. Dialogs and popups share the surface of the previously active window."`
	X          int    `json:"x,omitempty" jsonschema:"X position relative to the screen"`
	Y          int    `json:"y,omitempty" jsonschema:"Y position relative to the screen"`
	Width      int    `json:"width,omitempty" jsonschema:"Width in pixels (0 fills the screen)"`
	Height     int    `json:"height,omitempty" jsonschema:"Height in pixels (0 fills the screen)"`
	Background string `json:"background,omitempty" jsonschema:"Background color as #rgb, #rrggbb or #rrggbbaa"`
	Wait       bool   `json:"wait,omitempty" jsonschema:"When true, wait until the window is open before returning"`
	Timeout    int    `json:"timeout,omitempty" jsonschema:"Timeout in seconds when wait is set (default: 5)"`
}

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct {
	ID    uint64 `json:"id,omitempty" jsonschema:"Window ID from list_windows"`
	Name  string `json:"name,omitempty" jsonschema:"Window name; the front-most match is closed. Used when id is not set."`
	Force bool   `json:"force,omitempty" jsonschema:"Close without giving the window a chance to object"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	ID     uint64 `json:"id,omitempty" jsonschema:"Window ID from list_windows"`
	Name   string `json:"name,omitempty" jsonschema:"Window name; the front-most match is moved. Used when id is not set."`
	X      int    `json:"x" jsonschema:"New X position"`
	Y      int    `json:"y" jsonschema:"New Y position"`
	Width  int    `json:"width,omitempty" jsonschema:"New width in pixels (0 keeps the current width)"`
	Height int    `json:"height,omitempty" jsonschema:"New height in pixels (0 keeps the current height)"`
}

// NavigateInput is the input for the back and back_to_home tools.
type NavigateInput struct{}

// InjectInputInput is the input for the inject_input tool.
type InjectInputInput struct {
	Type      string `json:"type" jsonschema:"Event type: pointer_down, pointer_move, pointer_up, key_down, key_up or a native_window_* notification"`
	Handle    uint32 `json:"handle,omitempty" jsonschema:"Native window handle (default: the top window's)"`
	X         int    `json:"x,omitempty" jsonschema:"Pointer X relative to the native window"`
	Y         int    `json:"y,omitempty" jsonschema:"Pointer Y relative to the native window"`
	Button    int    `json:"button,omitempty" jsonschema:"Pointer button"`
	Key       string `json:"key,omitempty" jsonschema:"Key name for key events"`
	Modifiers uint8  `json:"modifiers,omitempty" jsonschema:"Modifier bits: 1 shift, 2 ctrl, 4 alt"`
}

// SetShowFPSInput is the input for the set_show_fps tool.
type SetShowFPSInput struct {
	Show bool `json:"show" jsonschema:"Whether to draw the frame rate overlay"`
}

// SetIgnoreInputInput is the input for the set_ignore_input tool.
type SetIgnoreInputInput struct {
	Ignore bool `json:"ignore" jsonschema:"Whether to drop user input"`
}

// SetCursorInput is the input for the set_cursor tool.
type SetCursorInput struct {
	Name string `json:"name" jsonschema:"Cursor name, e.g. default, hand, text, crosshair"`
}

// SetScreenSaverTimeInput is the input for the set_screen_saver_time tool.
type SetScreenSaverTimeInput struct {
	Duration string `json:"duration" jsonschema:"Idle time before the screen saver event, as a Go duration such as 30s or 5m; 0 disables it"`
}

// ReloadInput is the input for the reload_config tool.
type ReloadInput struct{}

// WorkspaceInput is the input for the save_workspace and load_workspace tools.
type WorkspaceInput struct {
	Name string `json:"name" jsonschema:"Workspace name"`
}

// WaitForWindowInput is the input for the wait_for_window tool.
type WaitForWindowInput struct {
	Name    string `json:"name" jsonschema:"Window name to wait for"`
	Stage   string `json:"stage,omitempty" jsonschema:"Stage to wait for: open (default) or gone"`
	Timeout int    `json:"timeout,omitempty" jsonschema:"Timeout in seconds (default: 5)"`
}

// WaitForWindowOutput is the output for the wait_for_window tool.
type WaitForWindowOutput struct {
	Reached bool            `json:"reached"`
	Window  *ipc.WindowInfo `json:"window,omitempty"`
}
