package main

import (
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/nativewm/internal/ipc"
	"github.com/1broseidon/nativewm/internal/workspace"
)

func printWorkspaceUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nativewm workspace <command> [name]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  save <name>     Save the open windows")
	fmt.Fprintln(w, "  load <name>     Open the saved windows above the current stack")
	fmt.Fprintln(w, "  list            List saved workspaces")
	fmt.Fprintln(w, "  delete <name>   Delete a saved workspace")
}

func runWorkspace(args []string) int {
	if len(args) == 0 {
		printWorkspaceUsage(os.Stderr)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help", "-h", "--help":
		printWorkspaceUsage(os.Stdout)
		return 0
	case "list":
		if len(rest) != 0 {
			printWorkspaceUsage(os.Stderr)
			return 2
		}
		store, err := workspace.DefaultStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		names, err := store.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return 0
	case "save", "load", "delete":
	default:
		fmt.Fprintf(os.Stderr, "Unknown workspace command: %s\n\n", cmd)
		printWorkspaceUsage(os.Stderr)
		return 2
	}

	if len(rest) != 1 {
		fmt.Fprintf(os.Stderr, "workspace %s requires exactly one name\n", cmd)
		return 2
	}
	name := rest[0]
	if err := workspace.ValidateName(name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	switch cmd {
	case "save":
		data, err := ipc.NewClient().SaveWorkspace(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("saved %d windows as %s\n", data.Windows, data.Name)
	case "load":
		data, err := ipc.NewClient().LoadWorkspace(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("opened %d windows from %s\n", data.Windows, data.Name)
	case "delete":
		store, err := workspace.DefaultStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := store.Delete(name); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}
