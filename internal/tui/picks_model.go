package tui

import (
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmholla/triagebot/internal/triage"
)

// keyMap defines the keybindings for the picks browser.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Open   key.Binding
	Detail key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "open in browser"),
		),
		Detail: key.NewBinding(
			key.WithKeys("d", "tab"),
			key.WithHelp("d", "toggle detail"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Detail, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Open, k.Detail, k.Quit},
	}
}

// PicksModel is the Bubble Tea model for the interactive picks browser.
type PicksModel struct {
	picks        []triage.Pick
	cursor       int
	windowWidth  int
	windowHeight int
	showDetail   bool
	statusMsg    string
	keys         keyMap
	help         help.Model
	quitting     bool
}

// NewPicksModel creates a picks browser over an already ranked list.
func NewPicksModel(picks []triage.Pick) PicksModel {
	return PicksModel{
		picks:        picks,
		windowWidth:  80,
		windowHeight: 24,
		showDetail:   true,
		keys:         defaultKeyMap(),
		help:         help.New(),
	}
}

// Init implements tea.Model
func (m PicksModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m PicksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case clearStatusMsg:
		m.statusMsg = ""
		return m, nil
	}

	return m, nil
}

func (m PicksModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.picks)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		if len(m.picks) > 0 {
			m.cursor = len(m.picks) - 1
		}
		return m, nil

	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		return m, nil

	case key.Matches(msg, m.keys.Open):
		return m.openInBrowser()
	}

	return m, nil
}

// openInBrowser opens the selected issue in the default browser
func (m PicksModel) openInBrowser() (tea.Model, tea.Cmd) {
	if len(m.picks) == 0 {
		return m, nil
	}

	url := m.picks[m.cursor].Row.URL
	if url == "" {
		m.statusMsg = "No URL available"
		return m, clearStatusAfter(2 * time.Second)
	}

	m.statusMsg = "Opened " + url
	return m, tea.Batch(openURL(url), clearStatusAfter(2*time.Second))
}

// View implements tea.Model
func (m PicksModel) View() string {
	if m.quitting {
		return ""
	}
	return renderPicksView(m)
}

// clearStatusMsg is a message to clear the status
type clearStatusMsg struct{}

// clearStatusAfter returns a command that clears the status after a delay
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// openURL opens a URL in the default browser
func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd

		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "linux":
			cmd = exec.Command("xdg-open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			return nil
		}

		_ = cmd.Start()
		return nil
	}
}
