package app

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/ai"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/ui/boardview"
	helpview "github.com/nhle/taskboard/internal/ui/help"
	"github.com/nhle/taskboard/internal/ui/summary"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

// Title is shown in the header bar.
const Title = "Gotham Task Control"

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBoard ViewState = iota
	ViewForm
	ViewSummary
	ViewHelp
)

// Options wires the root model to the core components.
type Options struct {
	Board     *board.Board
	Loader    Loader
	Requester *ai.Requester
	// AIConfigured is false when no API key was found.
	AIConfigured bool
	Now          func() time.Time
	Logger       *zap.Logger
}

// Model is the root Bubble Tea model that manages view routing, layout and
// access to the board.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	keys        *keys.KeyMap
	board       *board.Board
	loader      Loader
	logger      *zap.Logger

	boardView   boardview.Model
	formView    taskform.Model
	summaryView summary.Model
	helpView    helpview.Model

	ready     bool
	hydrated  bool
	notice    ui.Notice
	noticeSeq int
}

// New creates the root application model.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := opts.Board
	if b == nil {
		b = board.New(nil)
	}
	r := opts.Requester
	if r == nil {
		r = ai.NewRequester(nil, logger)
	}

	return Model{
		currentView: ViewBoard,
		keys:        k,
		board:       b,
		loader:      opts.Loader,
		logger:      logger,
		boardView:   boardview.New(b, k, opts.Now, 80, 24),
		formView:    taskform.New(80, 24, opts.Now),
		summaryView: summary.New(r, k, opts.AIConfigured, 80, 24),
		helpView:    helpview.New(k, 80, 24),
	}
}

// Init loads the persisted board.
func (m Model) Init() tea.Cmd {
	return m.loadTasks()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.boardView.SetSize(w, h)
		m.formView.SetSize(w, h)
		m.summaryView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tasksLoadedMsg:
		m.board.Hydrate(msg.tasks)
		m.boardView.Refresh()
		m.hydrated = true
		m.logger.Info("board loaded", zap.Int("tasks", len(msg.tasks)))
		return m, nil

	case boardview.NewTaskMsg:
		m.currentView = ViewForm
		cmd := m.formView.StartCreate()
		return m, cmd

	case boardview.EditTaskMsg:
		m.currentView = ViewForm
		cmd := m.formView.StartEdit(msg.Task)
		return m, cmd

	case boardview.DeleteTaskMsg:
		return m, m.deleteTask(msg.ID)

	case boardview.MoveFailedMsg:
		m.boardView.Refresh()
		cmd := m.warn(errorNotice(msg.Err))
		return m, cmd

	case taskform.SubmittedMsg:
		m.currentView = ViewBoard
		return m, m.applySubmission(msg.Submission)

	case taskform.FailedMsg:
		m.currentView = ViewBoard
		cmd := m.warn(errorNotice(msg.Err))
		return m, cmd

	case taskform.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case taskSavedResultMsg:
		m.boardView.Refresh()
		if msg.err != nil {
			cmd := m.warn(errorNotice(msg.err))
			return m, cmd
		}
		m.boardView.Select(msg.task.ID)
		cmd := m.toast(savedToast(msg.mode, msg.task))
		return m, cmd

	case taskDeletedResultMsg:
		m.boardView.Refresh()
		if msg.err != nil {
			cmd := m.warn(errorNotice(msg.err))
			return m, cmd
		}
		cmd := m.toast(deletedToast(msg.name))
		return m, cmd

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ui.Notice{}
		}
		return m, nil

	case summary.ResultMsg:
		// Results land even if the panel was closed meanwhile.
		var cmd tea.Cmd
		m.summaryView, cmd = m.summaryView.Update(msg)
		return m, cmd

	case summary.CloseMsg, helpview.CloseMsg:
		m.currentView = ViewBoard
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.hydrated {
			return m, nil
		}
		// Global keys only apply on the board when no input has focus.
		if m.currentView == ViewBoard && !m.boardView.Searching() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "?":
				m.currentView = ViewHelp
				return m, nil
			case "s":
				m.currentView = ViewSummary
				cmd := m.summaryView.Open(m.board.List())
				return m, cmd
			}
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewSummary:
		m.summaryView, cmd = m.summaryView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(Title, m.headerSummary())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.notice)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	if !m.hydrated {
		return "Loading tasks..."
	}

	switch m.currentView {
	case ViewForm:
		return m.formView.View()
	case ViewSummary:
		return m.summaryView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return m.boardView.View()
	}
}

// headerSummary returns the task counts shown at the right of the header.
func (m Model) headerSummary() string {
	if !m.hydrated {
		return "loading"
	}
	cols := m.boardView.Columns()
	var parts []string
	for _, col := range cols {
		parts = append(parts, fmt.Sprintf("%s %d", col.Status.Label(), len(col.Tasks)))
	}
	s := strings.Join(parts, " · ")
	if q := m.boardView.Query(); q != "" {
		s = fmt.Sprintf("%q: %s", q, s)
	}
	return s
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewForm:
		return "enter next/submit | esc cancel"
	case ViewSummary:
		return "esc close | j/k scroll"
	}

	switch {
	case m.boardView.Searching():
		return "type to filter | enter keep | esc clear"
	case m.boardView.Grabbing():
		return "h/l pick column | space drop | esc cancel"
	default:
		return "q quit | ? help | n new | e edit | d delete | space grab | / search | s summary"
	}
}

// toast shows a confirmation and schedules its removal.
func (m *Model) toast(text string) tea.Cmd {
	return m.setNotice(ui.Notice{Kind: ui.NoticeToast, Text: text})
}

// warn shows a non-blocking problem and schedules its removal.
func (m *Model) warn(text string) tea.Cmd {
	return m.setNotice(ui.Notice{Kind: ui.NoticeWarning, Text: text})
}

func (m *Model) setNotice(n ui.Notice) tea.Cmd {
	m.noticeSeq++
	m.notice = n
	seq := m.noticeSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}
