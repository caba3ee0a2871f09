package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/nativewm/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// send marshals payload (if any) into a request for cmd.
func (c *Client) send(cmd CommandType, payload any) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.send(CommandReload, nil)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.send(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// ListWindows retrieves the top-level windows, bottom-most first.
func (c *Client) ListWindows() (*WindowsData, error) {
	resp, err := c.send(CommandListWindows, nil)
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}

	return &data, nil
}

// OpenWindow asks the daemon to open a window. The window is returned in
// its opening stage; it is bound on the next loop iteration.
func (c *Client) OpenWindow(p OpenWindowPayload) (*WindowInfo, error) {
	resp, err := c.send(CommandOpenWindow, p)
	if err != nil {
		return nil, err
	}

	var info WindowInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse window data: %w", err)
	}
	return &info, nil
}

// CloseWindow closes the window selected by p.
func (c *Client) CloseWindow(p CloseWindowPayload) error {
	_, err := c.send(CommandCloseWindow, p)
	return err
}

// MoveWindow moves and resizes the window selected by p.
func (c *Client) MoveWindow(p MoveWindowPayload) (*WindowInfo, error) {
	resp, err := c.send(CommandMoveWindow, p)
	if err != nil {
		return nil, err
	}

	var info WindowInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse window data: %w", err)
	}
	return &info, nil
}

// Back closes the top window unless it is the home window.
func (c *Client) Back() error {
	_, err := c.send(CommandBack, nil)
	return err
}

// BackToHome closes every window above the home window.
func (c *Client) BackToHome() error {
	_, err := c.send(CommandBackToHome, nil)
	return err
}

// InjectInput feeds a synthetic input event through the dispatcher.
func (c *Client) InjectInput(p InjectInputPayload) error {
	_, err := c.send(CommandInjectInput, p)
	return err
}

func (c *Client) SetShowFPS(show bool) error {
	_, err := c.send(CommandSetShowFPS, SetShowFPSPayload{Show: show})
	return err
}

// SetIgnoreUserInput makes the daemon drop user input while ignore is set.
func (c *Client) SetIgnoreUserInput(ignore bool) error {
	_, err := c.send(CommandSetIgnoreInput, SetIgnoreInputPayload{Ignore: ignore})
	return err
}

func (c *Client) SetCursor(name string) error {
	_, err := c.send(CommandSetCursor, SetCursorPayload{Name: name})
	return err
}

func (c *Client) SetScreenSaverTime(d time.Duration) error {
	_, err := c.send(CommandSetScreenSaverTime, SetScreenSaverTimePayload{Duration: d.String()})
	return err
}

// SaveWorkspace snapshots the daemon's open windows under name.
func (c *Client) SaveWorkspace(name string) (*WorkspaceData, error) {
	return c.workspace(CommandSaveWorkspace, name)
}

// LoadWorkspace opens the windows saved under name above the current stack.
func (c *Client) LoadWorkspace(name string) (*WorkspaceData, error) {
	return c.workspace(CommandLoadWorkspace, name)
}

func (c *Client) workspace(cmd CommandType, name string) (*WorkspaceData, error) {
	resp, err := c.send(cmd, WorkspacePayload{Name: name})
	if err != nil {
		return nil, err
	}
	var data WorkspaceData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse workspace data: %w", err)
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
