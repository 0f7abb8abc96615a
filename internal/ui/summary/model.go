package summary

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/ai"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// CloseMsg signals the parent to close the summary panel.
type CloseMsg struct{}

// ResultMsg carries the outcome of one summary request.
type ResultMsg struct {
	Result ai.Result
}

var retryKey = key.NewBinding(
	key.WithKeys("r"),
	key.WithHelp("r", "retry"),
)

// Model is the summary panel. It shows a spinner while a request is in
// flight, then either the summary or a failure message.
type Model struct {
	requester *ai.Requester
	keys      *keys.KeyMap
	spinner   spinner.Model
	viewport  viewport.Model
	state     ai.State
	summary   string
	seq       uint64
	tasks     []model.Task
	noAPIKey  bool
	width     int
	height    int
}

// New creates a summary panel. configured is false when no API key is
// available; the panel then explains how to provide one.
func New(r *ai.Requester, k *keys.KeyMap, configured bool, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	vp := viewport.New(max(width-8, 10), max(height-8, 4))

	return Model{
		requester: r,
		keys:      k,
		spinner:   sp,
		viewport:  vp,
		noAPIKey:  !configured,
		width:     width,
		height:    height,
	}
}

// Open starts a new summary request for tasks. Each call supersedes any
// request still in flight.
func (m *Model) Open(tasks []model.Task) tea.Cmd {
	m.tasks = tasks
	m.state = ai.StateLoading
	m.summary = ""
	m.viewport.SetContent("")

	r := m.requester
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return ResultMsg{Result: r.Request(context.Background(), tasks)}
	})
}

// State returns the panel state.
func (m Model) State() ai.State { return m.state }

// Update handles messages for the summary panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		res := msg.Result
		if res.Stale || res.Seq < m.seq {
			return m, nil
		}
		m.seq = res.Seq
		if res.Err != nil {
			m.state = ai.StateFailed
			m.summary = ai.FailureMessage
		} else {
			m.state = ai.StateReady
			m.summary = res.Summary
		}
		m.viewport.SetContent(m.wrap(m.summary))
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.state != ai.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, retryKey) && m.state == ai.StateFailed:
			cmd := m.Open(m.tasks)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the summary panel.
func (m Model) View() string {
	if m.noAPIKey {
		return m.renderNoAPIKey()
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var body string
	switch m.state {
	case ai.StateLoading:
		body = m.spinner.View() + " Summarizing open tasks..."
	case ai.StateFailed:
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.viewport.View()),
			theme.HelpStyle.Render("r retry | esc close"),
		)
	default:
		body = m.viewport.View()
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Task Summary"),
		body,
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// renderNoAPIKey shows a message when the API key is not configured.
func (m Model) renderNoAPIKey() string {
	style := lipgloss.NewStyle().
		Width(max(m.width-8, 0)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	msg := "Task summaries require an Anthropic API key.\n\n" +
		"Store it in the system keyring under the name " + ai.APIKeyCredential + "\n" +
		"or set the " + ai.APIKeyEnv + " environment variable.\n\n" +
		"Press Esc to go back."

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(style.Render(msg))
}

func (m Model) wrap(s string) string {
	return lipgloss.NewStyle().Width(m.viewport.Width).Render(s)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-8, 10)
	m.viewport.Height = max(height-8, 4)
	if m.summary != "" {
		m.viewport.SetContent(m.wrap(m.summary))
	}
}
