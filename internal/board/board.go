package board

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/model"
)

// Saver receives the full task list after every successful mutation.
// Implementations must not block the caller for long and must not fail it;
// persistence problems are theirs to log.
type Saver interface {
	Save(ctx context.Context, tasks []model.Task)
}

// TaskFields are the user-supplied fields of a new task. Zero Priority and
// Status select the defaults (Medium, Todo).
type TaskFields struct {
	Name        string
	Description string
	DueDate     *time.Time
	Priority    model.Priority
	Status      model.Status
	Tags        []string
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	// ClearDueDate removes the due date; it wins over DueDate.
	ClearDueDate bool
	Priority     *model.Priority
	Status       *model.Status
	Tags         *[]string
}

// Board is the in-memory, ordered collection of tasks for the session and
// the single source of truth for every view.
type Board struct {
	mu     sync.Mutex
	tasks  []model.Task
	issued map[string]bool
	saver  Saver
	newID  func() string
	logger *zap.Logger
}

// Option configures a Board.
type Option func(*Board)

// WithIDGenerator overrides the uuid-based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(b *Board) { b.newID = gen }
}

// WithLogger sets the logger used for mutation events.
func WithLogger(l *zap.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates an empty board that reports every mutation to saver.
// saver may be nil, in which case nothing is persisted.
func New(saver Saver, opts ...Option) *Board {
	b := &Board{
		issued: make(map[string]bool),
		saver:  saver,
		newID:  func() string { return uuid.New().String() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Hydrate replaces the board contents with tasks loaded at startup.
// It does not trigger a save.
func (b *Board) Hydrate(tasks []model.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tasks = make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		b.tasks = append(b.tasks, t.Clone())
		b.issued[t.ID] = true
	}
}

// Create validates fields, applies defaults, assigns a fresh id and appends
// the task to the end of the board.
func (b *Board) Create(ctx context.Context, fields TaskFields) (model.Task, error) {
	task, err := newTask(fields)
	if err != nil {
		return model.Task{}, err
	}

	b.mu.Lock()
	task.ID = b.nextID()
	b.tasks = append(b.tasks, task)
	snapshot := b.snapshot()
	b.mu.Unlock()

	b.logger.Debug("task created", zap.String("id", task.ID), zap.String("status", string(task.Status)))
	b.persist(ctx, snapshot)
	return task.Clone(), nil
}

// Update applies patch to the task with id, preserving its id and position.
func (b *Board) Update(ctx context.Context, id string, patch TaskPatch) (model.Task, error) {
	if err := validatePatch(patch); err != nil {
		return model.Task{}, err
	}

	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return model.Task{}, &NotFoundError{ID: id}
	}
	applyPatch(&b.tasks[i], patch)
	updated := b.tasks[i].Clone()
	snapshot := b.snapshot()
	b.mu.Unlock()

	b.logger.Debug("task updated", zap.String("id", id))
	b.persist(ctx, snapshot)
	return updated, nil
}

// Delete removes the task with id. Deleting an id that is not on the board
// reports a NotFoundError every time.
func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	snapshot := b.snapshot()
	b.mu.Unlock()

	b.logger.Debug("task deleted", zap.String("id", id))
	b.persist(ctx, snapshot)
	return nil
}

// SetStatus moves the task with id to status. Any status may follow any
// other.
func (b *Board) SetStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return invalid("status", "unknown status %q", status)
	}

	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	from := b.tasks[i].Status
	b.tasks[i].Status = status
	snapshot := b.snapshot()
	b.mu.Unlock()

	b.logger.Debug("task moved",
		zap.String("id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	b.persist(ctx, snapshot)
	return nil
}

// List returns a fresh copy of every task in board order.
func (b *Board) List() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// Get returns a copy of the task with id.
func (b *Board) Get(id string) (model.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return model.Task{}, &NotFoundError{ID: id}
	}
	return b.tasks[i].Clone(), nil
}

// Open returns the tasks whose status is not Done, in board order.
func (b *Board) Open() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	var open []model.Task
	for _, t := range b.tasks {
		if t.IsOpen() {
			open = append(open, t.Clone())
		}
	}
	return open
}

// Len returns the number of tasks on the board.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

// nextID returns an id that has never been issued by this board.
// Callers must hold b.mu.
func (b *Board) nextID() string {
	for {
		id := b.newID()
		if id != "" && !b.issued[id] {
			b.issued[id] = true
			return id
		}
	}
}

// indexOf returns the position of id, or -1. Callers must hold b.mu.
func (b *Board) indexOf(id string) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshot deep-copies the task list. Callers must hold b.mu.
func (b *Board) snapshot() []model.Task {
	out := make([]model.Task, len(b.tasks))
	for i, t := range b.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (b *Board) persist(ctx context.Context, tasks []model.Task) {
	if b.saver == nil {
		return
	}
	b.saver.Save(ctx, tasks)
}

// newTask builds a canonical task from fields without an id.
func newTask(fields TaskFields) (model.Task, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return model.Task{}, invalid("name", "task name is required")
	}

	priority := fields.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return model.Task{}, invalid("priority", "unknown priority %q", priority)
	}

	status := fields.Status
	if status == "" {
		status = model.StatusTodo
	}
	if !status.Valid() {
		return model.Task{}, invalid("status", "unknown status %q", status)
	}

	return model.Task{
		Name:        fields.Name,
		Description: fields.Description,
		DueDate:     model.DatePtr(fields.DueDate),
		Priority:    priority,
		Status:      status,
		Tags:        normalizeTags(fields.Tags),
	}, nil
}

func validatePatch(p TaskPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "task name is required")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("priority", "unknown priority %q", *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("status", "unknown status %q", *p.Status)
	}
	return nil
}

func applyPatch(t *model.Task, p TaskPatch) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		t.DueDate = model.DatePtr(p.DueDate)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Tags != nil {
		t.Tags = normalizeTags(*p.Tags)
	}
}

// normalizeTags copies tags, mapping an empty list to nil.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return append([]string(nil), tags...)
}
