package config

import (
	"context"
	"errors"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if !cfg.Resizable() || cfg.Shared() {
		t.Fatalf("desktop defaults should be resizable and unshared")
	}
	if got := cfg.FrameInterval(); got != time.Second/60 {
		t.Fatalf("expected 60 fps interval, got %s", got)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Width != DefaultWidth || res.Config.Backend != BackendX11 {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.Windows) != 1 || res.Config.Windows[0].Name != "main" {
		t.Fatalf("expected default main window, got %+v", res.Config.Windows)
	}
}

func TestLoadFromPath_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"app_type: embedded",
		"backend: memory",
		"width: 480",
		"height: 272",
		"show_fps: true",
		"screen_saver_time: 5m",
		"windows:",
		"  - name: home",
		"    type: normal_window",
		"  - name: menu",
		"    type: popup",
		"    width: 100",
		"    height: 80",
		"logging:",
		"  level: debug",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if !cfg.Shared() || cfg.Resizable() {
		t.Fatalf("embedded config should share one fixed surface")
	}
	if cfg.ScreenSaverTime != 5*time.Minute {
		t.Fatalf("expected 5m screen saver, got %s", cfg.ScreenSaverTime)
	}
	if len(cfg.Windows) != 2 || cfg.Windows[1].Type != "popup" {
		t.Fatalf("expected windows to be replaced, got %+v", cfg.Windows)
	}
	if cfg.AppName != "nativewm" {
		t.Fatalf("expected untouched app_name default, got %q", cfg.AppName)
	}
	if got := cfg.GetLoggingConfig(); got.Level != "debug" || got.Format != "text" {
		t.Fatalf("unexpected logging config %+v", got)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "hotkey: Mod4-t\n"))
	if err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestLoadFromPath_ValidationErrorHasSourcePosition(t *testing.T) {
	path := writeConfig(t, "width: 10\nbackend: wayland\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "backend" || verr.Source.Line != 2 {
		t.Fatalf("expected backend at line 2, got %+v", verr)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file position in %q", err.Error())
	}
}

func TestValidate_WindowsNeedAnOwner(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Windows = []WindowSpec{{Name: "dlg", Type: "dialog"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for dialog-only window list")
	}

	cfg.Windows = []WindowSpec{{Name: "main", Type: "normal_window", Background: "blue"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for bad background")
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"#fff":      {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		"#102030":   {R: 0x10, G: 0x20, B: 0x30, A: 0xff},
		"#10203080": {R: 0x10, G: 0x20, B: 0x30, A: 0x80},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"fff", "#ff", "#gggggg"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestExplain_FileAndDefaultSources(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	v, src, err := Explain(res, "logging.level")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if v != "warn" || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected explain result %v %+v", v, src)
	}

	v, src, err = Explain(res, "windows.0.name")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if v != "main" || src.Kind != SourceDefault {
		t.Fatalf("unexpected explain result %v %+v", v, src)
	}

	if _, _, err := Explain(res, "windows.7.name"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestShortcuts_MergeOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "shortcuts:\n  back: Escape\n  toggle_fps: \"\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := res.Config.Shortcuts
	if got[ActionBack] != "Escape" || got[ActionHome] != "alt+Home" || got[ActionToggleFPS] != "" {
		t.Fatalf("unexpected shortcuts: %v", got)
	}
}

func TestValidate_Shortcuts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shortcuts = map[string]string{"fly": "ctrl+F"}
	err := cfg.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "shortcuts.fly" {
		t.Fatalf("expected shortcuts.fly error, got %v", err)
	}

	cfg.Shortcuts = map[string]string{ActionBack: "hyper+x"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected bad modifier error")
	}
}

func TestSave_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.ShowFPS = true
	cfg.ScreenSaverTime = 90 * time.Second
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Config.ShowFPS || res.Config.ScreenSaverTime != 90*time.Second {
		t.Fatalf("saved values lost: %+v", res.Config)
	}
}

func TestWatch_ReloadsValidChanges(t *testing.T) {
	path := writeConfig(t, "show_fps: false\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- Watch(ctx, path, logger, func(c *Config) { changes <- c })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("backend: bogus\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(300 * time.Millisecond)
	if err := os.WriteFile(path, []byte("show_fps: true\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case c := <-changes:
			// A truncating write may be observed as an empty file first.
			reloaded = c.ShowFPS
		case <-deadline:
			t.Fatalf("timed out waiting for reload")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}
