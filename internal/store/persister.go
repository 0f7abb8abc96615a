package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/model"
)

// PersistenceError reports a failed read, decode or write of the task slot.
type PersistenceError struct {
	Op  string // "read", "decode" or "write"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s slot %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// record is the persisted layout of one task.
type record struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
}

// Persister round-trips the task list through a single slot and seeds demo
// data when there is nothing usable to load.
type Persister struct {
	slots  Slots
	key    string
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithClock sets the clock used to date seed tasks.
func WithClock(now func() time.Time) PersisterOption {
	return func(p *Persister) { p.now = now }
}

// WithSeedIDs sets the id generator used for seed tasks.
func WithSeedIDs(gen func() string) PersisterOption {
	return func(p *Persister) { p.newID = gen }
}

// WithLogger sets the logger that receives persistence failures.
func WithLogger(l *zap.Logger) PersisterOption {
	return func(p *Persister) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPersister returns a Persister storing the task list under key.
func NewPersister(slots Slots, key string, opts ...PersisterOption) *Persister {
	if key == "" {
		key = model.DefaultStorageKey
	}
	p := &Persister{
		slots:  slots,
		key:    key,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the slot key.
func (p *Persister) Key() string { return p.key }

// Read returns the stored tasks. ok is false when the slot is absent or
// blank. A read or decode failure is returned as a PersistenceError.
func (p *Persister) Read(ctx context.Context) (tasks []model.Task, ok bool, err error) {
	value, found, err := p.slots.Get(ctx, p.key)
	if err != nil {
		return nil, false, &PersistenceError{Op: "read", Key: p.key, Err: err}
	}
	if !found || strings.TrimSpace(value) == "" {
		return nil, false, nil
	}
	tasks, err = Decode([]byte(value))
	if err != nil {
		return nil, false, &PersistenceError{Op: "decode", Key: p.key, Err: err}
	}
	return tasks, true, nil
}

// Load returns the stored tasks, or the demo seed when the slot is empty or
// unreadable. Failures are logged, never returned.
func (p *Persister) Load(ctx context.Context) []model.Task {
	tasks, ok, err := p.Read(ctx)
	if err != nil {
		p.logger.Warn("loading tasks failed, using demo data",
			zap.String("key", p.key),
			zap.Error(err),
		)
		return Seed(p.now(), p.newID)
	}
	if !ok {
		p.logger.Info("no saved tasks, using demo data", zap.String("key", p.key))
		return Seed(p.now(), p.newID)
	}
	p.logger.Debug("tasks loaded", zap.String("key", p.key), zap.Int("count", len(tasks)))
	return tasks
}

// Write serializes tasks and overwrites the slot.
func (p *Persister) Write(ctx context.Context, tasks []model.Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return &PersistenceError{Op: "write", Key: p.key, Err: err}
	}
	if err := p.slots.Put(ctx, p.key, string(data)); err != nil {
		return &PersistenceError{Op: "write", Key: p.key, Err: err}
	}
	return nil
}

// Save is Write with the error logged and swallowed.
func (p *Persister) Save(ctx context.Context, tasks []model.Task) {
	if err := p.Write(ctx, tasks); err != nil {
		p.logger.Error("saving tasks failed",
			zap.String("key", p.key),
			zap.Int("count", len(tasks)),
			zap.Error(err),
		)
	}
}

// Encode serializes tasks into the persisted JSON layout. Due dates are
// written as RFC 3339 timestamps at midnight UTC.
func Encode(tasks []model.Task) ([]byte, error) {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		r := record{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Priority:    string(t.Priority),
			Status:      string(t.Status),
			Tags:        t.Tags,
		}
		if t.DueDate != nil {
			r.DueDate = model.Date(*t.DueDate).Format(time.RFC3339)
		}
		records = append(records, r)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}
	return data, nil
}

// Decode parses the persisted JSON layout. Any record that is not a well
// formed task makes the whole document invalid.
func Decode(data []byte) ([]model.Task, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("task list is not a JSON array")
	}

	var records []record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		t, err := r.task()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("task %d: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r record) task() (model.Task, error) {
	if r.ID == "" {
		return model.Task{}, errors.New("missing id")
	}
	if strings.TrimSpace(r.Name) == "" {
		return model.Task{}, errors.New("missing name")
	}
	priority, err := model.ParsePriority(r.Priority)
	if err != nil {
		return model.Task{}, err
	}
	status, err := model.ParseStatus(r.Status)
	if err != nil {
		return model.Task{}, err
	}

	t := model.Task{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Priority:    priority,
		Status:      status,
	}
	if len(r.Tags) > 0 {
		t.Tags = r.Tags
	}
	if r.DueDate != "" {
		d, err := parseDueDate(r.DueDate)
		if err != nil {
			return model.Task{}, err
		}
		t.DueDate = &d
	}
	return t, nil
}

func parseDueDate(s string) (time.Time, error) {
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return model.Date(d), nil
	}
	if d, err := time.Parse(model.DateLayout, s); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("invalid dueDate %q", s)
}
