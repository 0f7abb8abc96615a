package board

import (
	"context"
	"strings"

	"github.com/nhle/taskboard/internal/model"
)

// Payload is the data carried from a drag start to a drop: the task id.
type Payload string

// StatusSetter is the subset of Board used by Transitions.
type StatusSetter interface {
	SetStatus(ctx context.Context, id string, status model.Status) error
}

// Transitions turns drag-and-drop gestures, or any other transport, into
// status changes. Ordering within a column is never changed.
type Transitions struct {
	board StatusSetter
}

// NewTransitions creates a handler that moves tasks on b.
func NewTransitions(b StatusSetter) *Transitions {
	return &Transitions{board: b}
}

// DragStart captures the payload for t.
func (h *Transitions) DragStart(t model.Task) Payload {
	return Payload(t.ID)
}

// Drop moves the task named by p into target. A missing or blank payload is
// ignored: it returns false and no error.
func (h *Transitions) Drop(ctx context.Context, p Payload, target model.Status) (bool, error) {
	id := strings.TrimSpace(string(p))
	if id == "" {
		return false, nil
	}
	if err := h.Move(ctx, id, target); err != nil {
		return false, err
	}
	return true, nil
}

// Move sets the status of task id to target.
func (h *Transitions) Move(ctx context.Context, id string, target model.Status) error {
	return h.board.SetStatus(ctx, id, target)
}

// Shift moves t delta columns left (negative) or right (positive), clamped
// to the board edges. It returns the resulting status.
func (h *Transitions) Shift(ctx context.Context, t model.Task, delta int) (model.Status, error) {
	i := t.Status.Index()
	if i < 0 {
		return t.Status, invalid("status", "unknown status %q", t.Status)
	}
	j := i + delta
	if j < 0 {
		j = 0
	}
	if j >= len(model.Statuses) {
		j = len(model.Statuses) - 1
	}
	target := model.Statuses[j]
	if target == t.Status {
		return target, nil
	}
	if err := h.Move(ctx, t.ID, target); err != nil {
		return t.Status, err
	}
	return target, nil
}
