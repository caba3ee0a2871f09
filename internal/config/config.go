package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/nativewm/internal/hotkeys"
)

// AppType selects how windows map onto native surfaces.
type AppType string

const (
	AppDesktop  AppType = "desktop"  // One resizable OS window per normal window.
	AppMobile   AppType = "mobile"   // One fixed-size OS window per normal window.
	AppEmbedded AppType = "embedded" // Every window shares one preallocated surface.
)

const (
	BackendX11    = "x11"
	BackendMemory = "memory"
)

// Shortcut actions.
const (
	ActionBack      = "back"
	ActionHome      = "home"
	ActionToggleFPS = "toggle_fps"
)

const (
	DefaultWidth     = 800
	DefaultHeight    = 600
	DefaultFrameRate = 60
)

// WindowSpec describes a window opened at startup or over IPC.
type WindowSpec struct {
	Name       string `yaml:"name" json:"name"`
	Type       string `yaml:"type" json:"type"` // normal_window, dialog or popup
	X          int    `yaml:"x,omitempty" json:"x,omitempty"`
	Y          int    `yaml:"y,omitempty" json:"y,omitempty"`
	Width      int    `yaml:"width,omitempty" json:"width,omitempty"`   // 0 fills the screen
	Height     int    `yaml:"height,omitempty" json:"height,omitempty"` // 0 fills the screen
	Background string `yaml:"background,omitempty" json:"background,omitempty"`
}

// LoggingConfig configures the daemon logger.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// Format is text or json
	Format string `yaml:"format,omitempty"`
	// File, when set, receives logs instead of stderr (rotated by size)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	AppName         string        `yaml:"app_name"`
	AppType         AppType       `yaml:"app_type"`
	Backend         string        `yaml:"backend"`
	Display         string        `yaml:"display,omitempty"`
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	SharedWindow    bool          `yaml:"shared_window"`
	FrameRate       int           `yaml:"frame_rate"`
	ShowFPS         bool          `yaml:"show_fps"`
	ScreenSaverTime time.Duration `yaml:"screen_saver_time"`
	Cursor          string        `yaml:"cursor,omitempty"`
	Windows         []WindowSpec  `yaml:"windows,omitempty"`
	// Shortcuts maps an action to a key sequence such as "alt+Left". File
	// entries merge over the defaults; an empty sequence unbinds.
	Shortcuts map[string]string `yaml:"shortcuts,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		AppName:   "nativewm",
		AppType:   AppDesktop,
		Backend:   BackendX11,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		FrameRate: DefaultFrameRate,
		Cursor:    "default",
		Windows: []WindowSpec{
			{Name: "main", Type: "normal_window", Background: "#2e3440"},
		},
		Shortcuts: map[string]string{
			ActionBack:      "alt+Left",
			ActionHome:      "alt+Home",
			ActionToggleFPS: "ctrl+F12",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Shared reports whether windows share one preallocated surface.
func (c *Config) Shared() bool {
	return c.SharedWindow || c.AppType == AppEmbedded
}

// Resizable reports whether native windows may be resized by the user.
func (c *Config) Resizable() bool {
	return c.AppType == AppDesktop
}

// FrameInterval returns the time between paint ticks.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{Level: "info", Format: "text"}
	}
	cfg := c.Logging
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.File != "" {
		if cfg.MaxSizeMB == 0 {
			cfg.MaxSizeMB = 10
		}
		if cfg.MaxFiles == 0 {
			cfg.MaxFiles = 3
		}
	}
	return cfg
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AppName) == "" {
		return &ValidationError{Path: "app_name", Err: fmt.Errorf("app_name is required")}
	}
	switch c.AppType {
	case AppDesktop, AppMobile, AppEmbedded:
	default:
		return &ValidationError{Path: "app_type", Err: fmt.Errorf("app_type must be one of: desktop, mobile, embedded")}
	}
	switch c.Backend {
	case BackendX11, BackendMemory:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: x11, memory")}
	}
	if c.Width <= 0 {
		return &ValidationError{Path: "width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Height <= 0 {
		return &ValidationError{Path: "height", Err: fmt.Errorf("height must be > 0")}
	}
	if c.FrameRate <= 0 || c.FrameRate > 240 {
		return &ValidationError{Path: "frame_rate", Err: fmt.Errorf("frame_rate must be between 1 and 240")}
	}
	if c.ScreenSaverTime < 0 {
		return &ValidationError{Path: "screen_saver_time", Err: fmt.Errorf("screen_saver_time must be >= 0")}
	}

	normals := 0
	for i, w := range c.Windows {
		path := fmt.Sprintf("windows.%d", i)
		if err := w.Validate(); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if w.Type == "normal_window" {
			normals++
		}
	}
	if len(c.Windows) > 0 && normals == 0 {
		return &ValidationError{Path: "windows", Err: fmt.Errorf("at least one normal_window is required to host dialogs and popups")}
	}

	for action, seq := range c.Shortcuts {
		path := "shortcuts." + action
		switch action {
		case ActionBack, ActionHome, ActionToggleFPS:
		default:
			return &ValidationError{Path: path, Err: fmt.Errorf("unknown action %q (want back, home or toggle_fps)", action)}
		}
		if seq == "" {
			continue
		}
		if _, err := hotkeys.Parse(seq); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: text, json")}
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging", Err: fmt.Errorf("max_size_mb and max_files must be >= 0")}
	}
	return nil
}

// Validate checks a single window description.
func (w WindowSpec) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("name is required")
	}
	switch w.Type {
	case "normal_window", "dialog", "popup":
	default:
		return fmt.Errorf("invalid type %q", w.Type)
	}
	if w.Width < 0 || w.Height < 0 {
		return fmt.Errorf("width and height must be >= 0")
	}
	if w.Background != "" {
		if _, err := ParseColor(w.Background); err != nil {
			return err
		}
	}
	return nil
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("color %q must start with #", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q must have 3, 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FormatColor renders c as #rrggbbaa, the inverse of ParseColor.
func FormatColor(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", rgba.R, rgba.G, rgba.B, rgba.A)
}
