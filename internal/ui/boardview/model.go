package boardview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// NewTaskMsg asks the parent to open the create form.
type NewTaskMsg struct{}

// EditTaskMsg asks the parent to open the edit form for Task.
type EditTaskMsg struct {
	Task model.Task
}

// DeleteTaskMsg asks the parent to delete the task with ID.
type DeleteTaskMsg struct {
	ID string
}

// MoveFailedMsg reports a drop or shift the board rejected.
type MoveFailedMsg struct {
	Err error
}

// Model is the three-column board view. It reads tasks from the board,
// applies the search query and routes card moves through the transition
// handler.
type Model struct {
	board       *board.Board
	transitions *board.Transitions
	keys        *keys.KeyMap
	now         func() time.Time

	columns board.Columns
	query   string
	col     int
	rows    []int
	offsets []int

	// grabbed holds the payload of the card being carried, if any.
	grabbed board.Payload

	searchMode  bool
	searchInput textinput.Model

	width  int
	height int
}

// New creates a board view over b. now may be nil.
func New(b *board.Board, k *keys.KeyMap, now func() time.Time, width, height int) Model {
	if now == nil {
		now = time.Now
	}

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = max(width-4, 10)

	m := Model{
		board:       b,
		transitions: board.NewTransitions(b),
		keys:        k,
		now:         now,
		rows:        make([]int, len(model.Statuses)),
		offsets:     make([]int, len(model.Statuses)),
		searchInput: si,
		width:       width,
		height:      height,
	}
	m.Refresh()
	return m
}

// Refresh re-reads the board and keeps the cursor in range.
func (m *Model) Refresh() {
	m.columns = board.View(m.board.List(), m.query)
	for i := range m.columns {
		n := len(m.columns[i].Tasks)
		if m.rows[i] >= n {
			m.rows[i] = max(n-1, 0)
		}
	}
	m.clampOffsets()
}

// Select moves the cursor onto the task with id when it is visible.
func (m *Model) Select(id string) {
	for i, col := range m.columns {
		for j, t := range col.Tasks {
			if t.ID == id {
				m.col = i
				m.rows[i] = j
				m.clampOffsets()
				return
			}
		}
	}
}

// Selected returns the task under the cursor.
func (m Model) Selected() (model.Task, bool) {
	if m.col >= len(m.columns) {
		return model.Task{}, false
	}
	tasks := m.columns[m.col].Tasks
	r := m.rows[m.col]
	if r < 0 || r >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[r], true
}

// Query returns the active search query.
func (m Model) Query() string { return m.query }

// Columns returns the columns currently displayed.
func (m Model) Columns() board.Columns { return m.columns }

// Grabbing reports whether a card is being carried.
func (m Model) Grabbing() bool { return m.grabbed != "" }

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// Update handles messages for the board view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}
	return m, nil
}

// handleSearchKeys filters live as the query is typed. Enter keeps the
// query; esc clears it.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.query = ""
		m.Refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if q := m.searchInput.Value(); q != m.query {
		m.query = q
		m.Refresh()
	}
	return m, cmd
}

// handleNormalKeys processes navigation and card actions.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.col = max(m.col-1, 0)

	case key.Matches(msg, m.keys.Right):
		m.col = min(m.col+1, len(m.columns)-1)

	case key.Matches(msg, m.keys.Up):
		if m.rows[m.col] > 0 {
			m.rows[m.col]--
		}

	case key.Matches(msg, m.keys.Down):
		if m.rows[m.col] < len(m.columns[m.col].Tasks)-1 {
			m.rows[m.col]++
		}

	case key.Matches(msg, m.keys.Grab):
		return m.grabOrDrop()

	case key.Matches(msg, m.keys.ShiftLeft):
		return m.shift(-1)

	case key.Matches(msg, m.keys.ShiftRight):
		return m.shift(1)

	case key.Matches(msg, m.keys.Back):
		switch {
		case m.grabbed != "":
			m.grabbed = ""
		case m.query != "":
			m.query = ""
			m.searchInput.Reset()
			m.Refresh()
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.query)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.New):
		return m, func() tea.Msg { return NewTaskMsg{} }

	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.Selected(); ok {
			return m, func() tea.Msg { return EditTaskMsg{Task: t} }
		}

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.Selected(); ok {
			id := t.ID
			return m, func() tea.Msg { return DeleteTaskMsg{ID: id} }
		}
	}

	m.clampOffsets()
	return m, nil
}

// grabOrDrop picks up the selected card, or drops the carried card into the
// column under the cursor.
func (m Model) grabOrDrop() (Model, tea.Cmd) {
	if m.grabbed == "" {
		if t, ok := m.Selected(); ok {
			m.grabbed = m.transitions.DragStart(t)
		}
		return m, nil
	}

	p := m.grabbed
	m.grabbed = ""
	target := m.columns[m.col].Status
	if _, err := m.transitions.Drop(context.Background(), p, target); err != nil {
		m.Refresh()
		return m, func() tea.Msg { return MoveFailedMsg{Err: err} }
	}
	m.Refresh()
	m.Select(string(p))
	return m, nil
}

// shift moves the selected card delta columns and follows it.
func (m Model) shift(delta int) (Model, tea.Cmd) {
	t, ok := m.Selected()
	if !ok {
		return m, nil
	}
	if _, err := m.transitions.Shift(context.Background(), t, delta); err != nil {
		m.Refresh()
		return m, func() tea.Msg { return MoveFailedMsg{Err: err} }
	}
	m.Refresh()
	m.Select(t.ID)
	return m, nil
}

// View renders the board.
func (m Model) View() string {
	var sections []string
	if m.searchMode || m.query != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View()))
	}

	colWidth := m.columnWidth()
	now := m.now()
	rendered := make([]string, len(m.columns))
	for i, col := range m.columns {
		rendered[i] = m.renderColumn(i, col, colWidth, now)
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))

	if m.columns.Len() == 0 && m.query != "" {
		sections = append(sections, theme.HelpStyle.Padding(0, 1).
			Render(fmt.Sprintf("No tasks match %q. Press esc to clear the search.", m.query)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderColumn(i int, col board.Column, width int, now time.Time) string {
	header := theme.StatusStyle(col.Status).
		Render(fmt.Sprintf("%s (%d)", col.Status.Label(), len(col.Tasks)))

	lines := []string{header, ""}
	visible := m.visibleCards()
	start := m.offsets[i]
	end := min(start+visible, len(col.Tasks))
	for j := start; j < end; j++ {
		t := col.Tasks[j]
		state := cardNormal
		switch {
		case m.grabbed != "" && string(m.grabbed) == t.ID:
			state = cardGrabbed
		case i == m.col && j == m.rows[i]:
			state = cardSelected
		}
		lines = append(lines, renderCard(t, width-4, state, now))
	}
	if len(col.Tasks) == 0 {
		lines = append(lines, theme.DimmedStyle.PaddingLeft(2).Render("empty"))
	}
	if end < len(col.Tasks) {
		lines = append(lines, theme.DimmedStyle.PaddingLeft(2).
			Render(fmt.Sprintf("+%d more", len(col.Tasks)-end)))
	}

	style := theme.ColumnStyle
	switch {
	case i == m.col && m.grabbed != "":
		style = theme.DropTargetStyle
	case i == m.col:
		style = theme.FocusedColumnStyle
	}
	return style.
		Width(width - 2).
		Height(m.columnHeight()).
		Render(strings.Join(lines, "\n"))
}

func (m Model) columnWidth() int {
	return max(m.width/max(len(m.columns), 1), 20)
}

// columnHeight is the inner height of a column, leaving room for its
// border and the search bar.
func (m Model) columnHeight() int {
	h := m.height - 2
	if m.searchMode || m.query != "" {
		h--
	}
	return max(h, cardHeight+3)
}

// visibleCards is how many cards fit below the column header.
func (m Model) visibleCards() int {
	return max((m.columnHeight()-3)/cardHeight, 1)
}

// clampOffsets scrolls each column so its cursor row stays visible.
func (m *Model) clampOffsets() {
	visible := m.visibleCards()
	for i := range m.offsets {
		if i >= len(m.columns) {
			continue
		}
		r := m.rows[i]
		if r < m.offsets[i] {
			m.offsets[i] = r
		}
		if r >= m.offsets[i]+visible {
			m.offsets[i] = r - visible + 1
		}
		if maxOff := max(len(m.columns[i].Tasks)-visible, 0); m.offsets[i] > maxOff {
			m.offsets[i] = maxOff
		}
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.searchInput.Width = max(width-4, 10)
	m.clampOffsets()
}
