package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// toastDuration is how long a confirmation stays in the status bar.
const toastDuration = 3 * time.Second

// Loader reads the persisted board, falling back to demo content.
type Loader interface {
	Load(ctx context.Context) []model.Task
}

// tasksLoadedMsg carries the tasks read at startup.
type tasksLoadedMsg struct {
	tasks []model.Task
}

// taskSavedResultMsg is sent after a form submission was applied.
type taskSavedResultMsg struct {
	mode board.Mode
	task model.Task
	err  error
}

// taskDeletedResultMsg is sent after a delete was applied.
type taskDeletedResultMsg struct {
	name string
	err  error
}

// clearNoticeMsg expires the notice with the matching sequence number.
type clearNoticeMsg struct {
	seq int
}

// loadTasks returns a command that reads the board from the loader.
func (m *Model) loadTasks() tea.Cmd {
	l := m.loader
	return func() tea.Msg {
		if l == nil {
			return tasksLoadedMsg{}
		}
		return tasksLoadedMsg{tasks: l.Load(context.Background())}
	}
}

// applySubmission creates or updates a task from a validated form.
func (m *Model) applySubmission(sub board.Submission) tea.Cmd {
	b := m.board
	return func() tea.Msg {
		task, err := sub.Apply(context.Background(), b)
		return taskSavedResultMsg{mode: sub.Mode, task: task, err: err}
	}
}

// deleteTask removes a task from the board.
func (m *Model) deleteTask(id string) tea.Cmd {
	b := m.board
	logger := m.logger
	return func() tea.Msg {
		name := id
		if t, err := b.Get(id); err == nil {
			name = t.Name
		}
		err := b.Delete(context.Background(), id)
		if err != nil {
			logger.Warn("delete rejected", zap.String("id", id), zap.Error(err))
		}
		return taskDeletedResultMsg{name: name, err: err}
	}
}

// savedToast returns the confirmation shown after a create or update.
func savedToast(mode board.Mode, t model.Task) string {
	if mode == board.ModeEdit {
		return fmt.Sprintf("Task Updated: %q has been updated.", t.Name)
	}
	return fmt.Sprintf("Task Created: %q has been added.", t.Name)
}

// deletedToast returns the confirmation shown after a delete.
func deletedToast(name string) string {
	return fmt.Sprintf("Task Deleted: %q has been deleted.", name)
}

// errorNotice turns a rejected operation into a short status bar message.
func errorNotice(err error) string {
	switch {
	case board.IsNotFound(err):
		return "That task no longer exists."
	case board.IsValidation(err):
		return err.Error()
	default:
		return "Something went wrong: " + err.Error()
	}
}
