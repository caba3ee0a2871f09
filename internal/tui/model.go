package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/nativewm/internal/ipc"
)

// snapshotMsg carries one poll of the daemon.
type snapshotMsg struct {
	status  *ipc.StatusData
	windows []ipc.WindowInfo
	err     error
}

type tickMsg time.Time

// actionMsg reports the outcome of a key-triggered IPC call.
type actionMsg struct {
	text string
	err  error
}

// statusView is the status bar's pre-formatted view of StatusData.
type statusView struct {
	app, backend string
	top, prev    string
	pointer      string
	cursor       string
	showFPS      bool
}

type model struct {
	src      Source
	interval time.Duration

	table   table.Model
	status  *ipc.StatusData
	windows []ipc.WindowInfo

	connected bool
	lastErr   error
	note      string

	width  int
	height int
}

var columns = []table.Column{
	{Title: "ID", Width: 5},
	{Title: "Name", Width: 16},
	{Title: "Type", Width: 14},
	{Title: "Stage", Width: 10},
	{Title: "Geometry", Width: 20},
	{Title: "Handle", Width: 8},
	{Title: "Refs", Width: 5},
}

func newModel(src Source, interval time.Duration) model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("62")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62"))
	t.SetStyles(styles)

	return model{src: src, interval: interval, table: t}
}

func (m model) poll() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		st, err := src.GetStatus()
		if err != nil {
			return snapshotMsg{err: err}
		}
		ws, err := src.ListWindows()
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{status: st, windows: ws.Windows}
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) act(text string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{text: text, err: fn()}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.poll(), m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.poll()
		case "b":
			return m, m.act("back", m.src.Back)
		case "h":
			return m, m.act("home", m.src.BackToHome)
		case "f":
			show := m.status == nil || !m.status.ShowFPS
			return m, m.act(fmt.Sprintf("show_fps=%t", show), func() error { return m.src.SetShowFPS(show) })
		case "x":
			w, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m, m.act("closed "+w.Name, func() error {
				return m.src.CloseWindow(ipc.CloseWindowPayload{ID: w.ID})
			})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// status bar, title, help bar and note line
		m.table.SetHeight(max(msg.Height-6, 3))
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.poll(), m.tick())

	case snapshotMsg:
		if msg.err != nil {
			m.connected = false
			m.lastErr = msg.err
			return m, nil
		}
		m.connected = true
		m.lastErr = nil
		m.status = msg.status
		m.windows = frontFirst(msg.windows)
		m.table.SetRows(rows(m.windows))
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			m.note = ""
		} else {
			m.lastErr = nil
			m.note = msg.text
		}
		return m, m.poll()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// selected returns the window under the table cursor.
func (m model) selected() (ipc.WindowInfo, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.windows) {
		return ipc.WindowInfo{}, false
	}
	return m.windows[i], true
}

// frontFirst reverses the daemon's bottom-first window order.
func frontFirst(windows []ipc.WindowInfo) []ipc.WindowInfo {
	out := make([]ipc.WindowInfo, len(windows))
	for i, w := range windows {
		out[len(windows)-1-i] = w
	}
	return out
}

func rows(windows []ipc.WindowInfo) []table.Row {
	out := make([]table.Row, 0, len(windows))
	for _, w := range windows {
		handle, refs := "-", "-"
		if w.Handle != 0 {
			handle = strconv.FormatUint(uint64(w.Handle), 10)
			refs = strconv.Itoa(w.Refs)
		}
		out = append(out, table.Row{
			strconv.FormatUint(w.ID, 10),
			w.Name,
			w.Type,
			w.Stage,
			fmt.Sprintf("%dx%d+%d+%d", w.Width, w.Height, w.X, w.Y),
			handle,
			refs,
		})
	}
	return out
}

func (m model) statusView() statusView {
	st := m.status
	if st == nil {
		return statusView{}
	}
	pointer := fmt.Sprintf("ptr:%d,%d", st.PointerX, st.PointerY)
	if st.PointerPressed {
		pointer += "*"
	}
	return statusView{
		app:     st.AppName,
		backend: st.Backend,
		top:     st.TopWindow,
		prev:    st.PrevWindow,
		pointer: pointer,
		cursor:  st.Cursor,
		showFPS: st.ShowFPS,
	}
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.statusView(), m.width)
	title := titleStyle.Render(fmt.Sprintf("Windows (%d)", len(m.windows)))
	helpBar := renderHelpBar(m.width)

	var note string
	switch {
	case m.lastErr != nil:
		note = errStyle.Render(m.lastErr.Error())
	case m.note != "":
		note = noteStyle.Render(m.note)
	case m.status != nil:
		note = dimStyle.Render(fmt.Sprintf("%d native window(s), %d idle task(s), screen saver %s, up %ds",
			m.status.NativeWindows, m.status.PendingIdle, m.status.ScreenSaverTime, m.status.UptimeSeconds))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		title,
		m.table.View(),
		note,
		helpBar,
	)
}
