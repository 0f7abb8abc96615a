package taskform

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// SubmittedMsg carries a validated form, ready to be applied to the board.
type SubmittedMsg struct {
	Submission board.Submission
}

// CancelMsg is dispatched when the user abandons the form.
type CancelMsg struct{}

// FailedMsg reports a form that passed field validation but was rejected on
// submit, such as a due date that became past while the form was open.
type FailedMsg struct {
	Err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	input board.Input
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	editor *board.Editor
	now    func() time.Time
	width  int
	height int
}

// New creates a new task form model. now may be nil.
func New(width, height int, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	return Model{
		fb:     &formBindings{},
		now:    now,
		width:  width,
		height: height,
	}
}

// StartCreate resets the form to the defaults for a new task.
func (m *Model) StartCreate() tea.Cmd {
	return m.start(board.NewCreateEditor(m.now))
}

// StartEdit pre-populates the form from t.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	return m.start(board.NewEditEditor(t, m.now))
}

func (m *Model) start(e *board.Editor) tea.Cmd {
	m.editor = e
	m.fb.input = e.Input()
	m.form = m.buildForm()
	return m.form.Init()
}

// Mode reports whether the form is creating or editing.
func (m Model) Mode() board.Mode {
	if m.editor == nil {
		return board.ModeCreate
	}
	return m.editor.Mode()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.submit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.Mode() == board.ModeEdit {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
	}
}

func (m *Model) buildForm() *huh.Form {
	in := &m.fb.input

	fields := []huh.Field{
		huh.NewInput().
			Title("Name").
			Placeholder("What needs to be done?").
			Value(&in.Name).
			Validate(board.ValidateName),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&in.Description),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&in.DueDate).
			Validate(m.editor.ValidateDueDate),
		huh.NewSelect[string]().
			Title("Priority").
			Options(priorityOptions()...).
			Value(&in.Priority).
			Validate(board.ValidatePriority),
		huh.NewSelect[string]().
			Title("Status").
			Options(statusOptions()...).
			Value(&in.Status).
			Validate(board.ValidateStatus),
		huh.NewInput().
			Title("Tags").
			Placeholder("comma, separated").
			Value(&in.Tags),
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// submit runs the editor over the bound values and emits the outcome.
func (m Model) submit() tea.Cmd {
	sub, err := m.editor.Submit(m.fb.input)
	if err != nil {
		return func() tea.Msg { return FailedMsg{Err: err} }
	}
	return func() tea.Msg { return SubmittedMsg{Submission: sub} }
}

func priorityOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(model.Priorities))
	for _, p := range model.Priorities {
		opts = append(opts, huh.NewOption(string(p), string(p)))
	}
	return opts
}

func statusOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(model.Statuses))
	for _, s := range model.Statuses {
		opts = append(opts, huh.NewOption(s.Label(), string(s)))
	}
	return opts
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}
