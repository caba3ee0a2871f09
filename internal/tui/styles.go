package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderStatusBar renders the daemon connection and manager state.
func renderStatusBar(connected bool, st statusView, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " " + st.app + " (" + st.backend + ")"}
		if st.top != "" {
			parts = append(parts, "top:"+st.top)
		}
		if st.prev != "" {
			parts = append(parts, "prev:"+st.prev)
		}
		parts = append(parts, st.pointer, "cursor:"+st.cursor)
		if st.showFPS {
			parts = append(parts, "fps:on")
		}
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderHelpBar renders the bottom keybinding bar.
func renderHelpBar(width int) string {
	help := "↑/↓: select  x: close  b: back  h: home  f: toggle fps  r: refresh  q: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
