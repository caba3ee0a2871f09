package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/1broseidon/nativewm/internal/event"
	"github.com/1broseidon/nativewm/internal/ipc"
	"github.com/1broseidon/nativewm/internal/tui"
)

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: nativewm windows [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List top-level windows, top-most first.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTAGE\tGEOMETRY\tHANDLE\tREFS")
	for i := len(data.Windows) - 1; i >= 0; i-- {
		w := data.Windows[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%dx%d+%d+%d\t%d\t%d\n",
			w.ID, w.Name, w.Type, w.Stage, w.Width, w.Height, w.X, w.Y, w.Handle, w.Refs)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runOpen(args []string) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: nativewm open [flags] <name>")
		fmt.Fprintln(os.Stderr, "       nativewm open -i [flags] [name]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a window. Dialogs and popups share the surface of the window below them.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	typ := fs.String("type", "normal_window", "Window type: normal_window, dialog or popup")
	x := fs.Int("x", 0, "X position")
	y := fs.Int("y", 0, "Y position")
	width := fs.Int("width", 0, "Width (0 fills the screen)")
	height := fs.Int("height", 0, "Height (0 fills the screen)")
	background := fs.String("background", "", "Background color (#rrggbb)")
	interactive := fs.Bool("i", false, "Fill in the window description with a form")
	if err := parseInterspersed(fs, args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 || (fs.NArg() == 0 && !*interactive) {
		fmt.Fprintln(os.Stderr, "open requires exactly one window name")
		fs.Usage()
		return 2
	}

	req := ipc.OpenWindowPayload{
		Name:       fs.Arg(0),
		Type:       *typ,
		X:          *x,
		Y:          *y,
		Width:      *width,
		Height:     *height,
		Background: *background,
	}
	if *interactive {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		filled, err := tui.PromptOpenWindow(ctx, req)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		req = filled
	}

	info, err := ipc.NewClient().OpenWindow(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("opened %s (id %d, %s)\n", info.Name, info.ID, info.Type)
	return 0
}

func runClose(args []string) int {
	fs := flag.NewFlagSet("close", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: nativewm close [--force] <name|id>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Close a window by name or numeric id. The top-most match is closed.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	force := fs.Bool("force", false, "Skip the close animation")
	if err := parseInterspersed(fs, args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "close requires exactly one window name or id")
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().CloseWindow(closeSelector(fs.Arg(0), *force)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// closeSelector treats a numeric argument as a window id.
func closeSelector(arg string, force bool) ipc.CloseWindowPayload {
	id, name := windowSelector(arg)
	return ipc.CloseWindowPayload{ID: id, Name: name, Force: force}
}

func windowSelector(arg string) (uint64, string) {
	if id, err := strconv.ParseUint(arg, 10, 64); err == nil && id > 0 {
		return id, ""
	}
	return 0, arg
}

func runMove(args []string) int {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: nativewm move <name|id> --x X --y Y [--width W] [--height H]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move and resize a window. A zero width or height keeps the current one.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	x := fs.Int("x", 0, "New X position")
	y := fs.Int("y", 0, "New Y position")
	width := fs.Int("width", 0, "New width (0 keeps the current width)")
	height := fs.Int("height", 0, "New height (0 keeps the current height)")
	if err := parseInterspersed(fs, args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "move requires exactly one window name or id")
		fs.Usage()
		return 2
	}
	if *width < 0 || *height < 0 {
		fmt.Fprintln(os.Stderr, "width and height must not be negative")
		return 2
	}

	id, name := windowSelector(fs.Arg(0))
	info, err := ipc.NewClient().MoveWindow(ipc.MoveWindowPayload{
		ID:     id,
		Name:   name,
		X:      *x,
		Y:      *y,
		Width:  *width,
		Height: *height,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s (%d) at %d,%d %dx%d\n", info.Name, info.ID, info.X, info.Y, info.Width, info.Height)
	return 0
}

func runBack(args []string) int {
	if ok, code := noArgs("back", "Close the top window unless it is the home window.", args); !ok {
		return code
	}
	if err := ipc.NewClient().Back(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runHome(args []string) int {
	if ok, code := noArgs("home", "Close every window above the home window.", args); !ok {
		return code
	}
	if err := ipc.NewClient().BackToHome(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	if ok, code := noArgs("reload", "Reload the daemon configuration file.", args); !ok {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("Configuration reloaded")
	return 0
}

func runInject(args []string) int {
	fs := flag.NewFlagSet("inject", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: nativewm inject [flags] <event-type>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Dispatch a synthetic event, e.g. pointer_down, key_down or native_window_close_request.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	handle := fs.Uint("handle", 0, "Native window handle (0 targets the top window)")
	x := fs.Int("x", 0, "Pointer X, relative to the native window")
	y := fs.Int("y", 0, "Pointer Y, relative to the native window")
	button := fs.Int("button", 0, "Pointer button")
	key := fs.String("key", "", "Key name")
	mods := fs.String("mods", "", "Comma separated modifiers: shift, ctrl, alt")
	if err := parseInterspersed(fs, args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "inject requires exactly one event type")
		fs.Usage()
		return 2
	}
	if _, err := event.ParseType(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	m, err := parseModifiers(*mods)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	err = ipc.NewClient().InjectInput(ipc.InjectInputPayload{
		Type:      fs.Arg(0),
		Handle:    uint32(*handle),
		X:         *x,
		Y:         *y,
		Button:    *button,
		Key:       *key,
		Modifiers: uint8(m),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseModifiers(s string) (event.Modifier, error) {
	var m event.Modifier
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case "shift":
			m |= event.ModShift
		case "ctrl", "control":
			m |= event.ModCtrl
		case "alt":
			m |= event.ModAlt
		default:
			return 0, fmt.Errorf("unknown modifier %q", part)
		}
	}
	return m, nil
}

func runFPS(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: nativewm fps on|off")
		return 2
	}
	show, err := parseOnOff(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := ipc.NewClient().SetShowFPS(show); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runInput(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: nativewm input on|off")
		return 2
	}
	accept, err := parseOnOff(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := ipc.NewClient().SetIgnoreUserInput(!accept); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func runCursor(args []string) int {
	if len(args) != 1 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(os.Stderr, "Usage: nativewm cursor <name>")
		return 2
	}
	if err := ipc.NewClient().SetCursor(args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runScreenSaver(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: nativewm screensaver <duration>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Durations use Go syntax, e.g. 30s or 5m. 0 disables the screen saver.")
		return 2
	}
	d, err := parseScreenSaverTime(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := ipc.NewClient().SetScreenSaverTime(d); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseScreenSaverTime(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// parseInterspersed lets flags follow positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) error {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	return fs.Parse(append([]string{"--"}, positional...))
}
