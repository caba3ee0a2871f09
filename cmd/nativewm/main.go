package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/nativewm/internal/app"
	"github.com/1broseidon/nativewm/internal/config"
	"github.com/1broseidon/nativewm/internal/ipc"
	"github.com/1broseidon/nativewm/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "open":
		os.Exit(runOpen(os.Args[2:]))
	case "close":
		os.Exit(runClose(os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "back":
		os.Exit(runBack(os.Args[2:]))
	case "home":
		os.Exit(runHome(os.Args[2:]))
	case "inject":
		os.Exit(runInject(os.Args[2:]))
	case "fps":
		os.Exit(runFPS(os.Args[2:]))
	case "input":
		os.Exit(runInput(os.Args[2:]))
	case "cursor":
		os.Exit(runCursor(os.Args[2:]))
	case "screensaver":
		os.Exit(runScreenSaver(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "workspace":
		os.Exit(runWorkspace(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "top":
		os.Exit(runTop(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nativewm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the window manager (foreground)")
	fmt.Fprintln(w, "  status              Show window manager status")
	fmt.Fprintln(w, "  windows             List top-level windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  open                Open a window")
	fmt.Fprintln(w, "  close               Close a window")
	fmt.Fprintln(w, "  move                Move and resize a window")
	fmt.Fprintln(w, "  back                Close the top window")
	fmt.Fprintln(w, "  home                Close every window above the home window")
	fmt.Fprintln(w, "  inject              Dispatch a synthetic input event")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  fps on|off          Toggle the frame rate overlay")
	fmt.Fprintln(w, "  input on|off        Accept or drop user input")
	fmt.Fprintln(w, "  cursor <name>       Set the pointer cursor")
	fmt.Fprintln(w, "  screensaver <dur>   Set the screen saver idle time (0 disables)")
	fmt.Fprintln(w, "  reload              Reload the configuration file")
	fmt.Fprintln(w, "  workspace           Save, load and list window sets")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  top                 Live view of windows and input state")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'nativewm <command> --help' for command-specific options.")
}

// loadConfig loads path, or the default config path when empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.LoadFromPath(path)
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: nativewm run [--path PATH] [--backend x11|memory] [--no-ipc]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the window manager in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/nativewm/config.yaml)")
	backendName := fs.String("backend", "", "Override the configured backend")
	noIPC := fs.Bool("no-ipc", false, "Do not listen on the control socket")
	noWatch := fs.Bool("no-watch", false, "Do not reload settings when the config file changes")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config
	if *backendName != "" {
		cfg.Backend = *backendName
	}

	logger, err := logging.New(cfg.GetLoggingConfig(), os.Stderr)
	if err != nil {
		log.Printf("Failed to set up logging: %v", err)
		return 1
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	a, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: res.Path,
		Logger:     logger.Logger,
		Levels:     logger,
		IPC:        !*noIPC,
		Watch:      !*noWatch,
	})
	if err != nil {
		log.Printf("Failed to start: %v", err)
		return 1
	}
	logger.Info("nativewm started", "app", cfg.AppName, "app_type", cfg.AppType, "backend", a.Backend().Name(), "windows", len(cfg.Windows))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Printf("nativewm stopped: %v", err)
		return 1
	}
	logger.Info("nativewm stopped")
	return 0
}

// noArgs parses a flag-less subcommand.
func noArgs(name, usage string, args []string) (ok bool, code int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nativewm %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, usage)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, 0
		}
		return false, 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return false, 2
	}
	return true, 0
}

func runStatus(args []string) int {
	if ok, code := noArgs("status", "Show window manager status via IPC.", args); !ok {
		return code
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:    %v\n", status.DaemonRunning)
	fmt.Printf("app:               %s (%s)\n", status.AppName, status.Backend)
	fmt.Printf("windows:           %d\n", status.WindowCount)
	fmt.Printf("native_windows:    %d\n", status.NativeWindows)
	fmt.Printf("top_window:        %s\n", status.TopWindow)
	fmt.Printf("prev_window:       %s\n", status.PrevWindow)
	fmt.Printf("pointer:           %d,%d pressed=%v\n", status.PointerX, status.PointerY, status.PointerPressed)
	fmt.Printf("cursor:            %s\n", status.Cursor)
	fmt.Printf("show_fps:          %v\n", status.ShowFPS)
	fmt.Printf("ignore_input:      %v\n", status.IgnoreUserInput)
	fmt.Printf("screen_saver_time: %s\n", status.ScreenSaverTime)
	fmt.Printf("uptime_seconds:    %d\n", status.UptimeSeconds)
	return 0
}
