package board

import (
	"context"
	"strings"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// Mode is the editor state: creating a new task or editing an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Input is the raw text a user typed into the task form.
type Input struct {
	Name        string
	Description string
	// DueDate is YYYY-MM-DD or empty.
	DueDate  string
	Priority string
	Status   string
	// Tags is a comma-separated list.
	Tags string
}

// Editor validates and normalizes form input into task fields.
// The mode decides whether the submission carries an id; validation rules
// are the same in both modes.
type Editor struct {
	mode   Mode
	target model.Task
	now    func() time.Time
}

// NewCreateEditor returns an editor for a new task. now may be nil.
func NewCreateEditor(now func() time.Time) *Editor {
	if now == nil {
		now = time.Now
	}
	return &Editor{mode: ModeCreate, now: now}
}

// NewEditEditor returns an editor pre-populated from t. now may be nil.
func NewEditEditor(t model.Task, now func() time.Time) *Editor {
	if now == nil {
		now = time.Now
	}
	return &Editor{mode: ModeEdit, target: t.Clone(), now: now}
}

// Mode returns the editor mode.
func (e *Editor) Mode() Mode { return e.mode }

// TargetID returns the id of the task being edited, or "" in create mode.
func (e *Editor) TargetID() string {
	if e.mode != ModeEdit {
		return ""
	}
	return e.target.ID
}

// Input returns the initial form values: defaults when creating, the
// task's current values when editing.
func (e *Editor) Input() Input {
	if e.mode == ModeCreate {
		return Input{
			Priority: string(model.PriorityMedium),
			Status:   string(model.StatusTodo),
		}
	}

	in := Input{
		Name:        e.target.Name,
		Description: e.target.Description,
		Priority:    string(e.target.Priority),
		Status:      string(e.target.Status),
		Tags:        strings.Join(e.target.Tags, ", "),
	}
	if e.target.DueDate != nil {
		in.DueDate = e.target.DueDate.Format(model.DateLayout)
	}
	return in
}

// Submission is a validated form ready to be applied to a Board.
type Submission struct {
	Mode   Mode
	ID     string
	Fields TaskFields
}

// Submit validates every field of in and returns the full normalized field
// set. The first invalid field is reported as a ValidationError.
func (e *Editor) Submit(in Input) (Submission, error) {
	if err := ValidateName(in.Name); err != nil {
		return Submission{}, err
	}
	due, err := e.parseDueDate(in.DueDate)
	if err != nil {
		return Submission{}, err
	}
	priority, err := parsePriority(in.Priority)
	if err != nil {
		return Submission{}, err
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return Submission{}, err
	}

	return Submission{
		Mode: e.mode,
		ID:   e.TargetID(),
		Fields: TaskFields{
			Name:        strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
			DueDate:     due,
			Priority:    priority,
			Status:      status,
			Tags:        ParseTags(in.Tags),
		},
	}, nil
}

// ValidateDueDate checks a raw due date against the form rules: empty, or a
// YYYY-MM-DD day that is not before today. When editing, the task's current
// due date is accepted unchanged even if it has passed.
func (e *Editor) ValidateDueDate(s string) error {
	_, err := e.parseDueDate(s)
	return err
}

func (e *Editor) parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return nil, invalid("dueDate", "invalid date format, use YYYY-MM-DD")
	}
	if e.mode == ModeEdit && model.SameDay(&d, e.target.DueDate) {
		return &d, nil
	}
	if d.Before(model.Date(e.now())) {
		return nil, invalid("dueDate", "due date cannot be in the past")
	}
	return &d, nil
}

// Patch converts the submission into an update that replaces every field.
func (s Submission) Patch() TaskPatch {
	f := s.Fields
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskPatch{
		Name:         &f.Name,
		Description:  &f.Description,
		DueDate:      f.DueDate,
		ClearDueDate: f.DueDate == nil,
		Priority:     &f.Priority,
		Status:       &f.Status,
		Tags:         &tags,
	}
}

// Apply creates or updates the task on b according to the submission mode.
func (s Submission) Apply(ctx context.Context, b *Board) (model.Task, error) {
	if s.Mode == ModeEdit {
		return b.Update(ctx, s.ID, s.Patch())
	}
	return b.Create(ctx, s.Fields)
}

// ValidateName rejects names that are empty after trimming.
func ValidateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return invalid("name", "task name is required")
	}
	return nil
}

// ValidatePriority rejects anything outside Low, Medium, High. Empty is
// accepted and means Medium.
func ValidatePriority(s string) error {
	_, err := parsePriority(s)
	return err
}

// ValidateStatus rejects anything outside Todo, InProgress, Done. Empty is
// accepted and means Todo.
func ValidateStatus(s string) error {
	_, err := parseStatus(s)
	return err
}

// ParseTags splits comma-separated text into trimmed, non-empty tags.
// Duplicates are kept.
func ParseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func parsePriority(s string) (model.Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.PriorityMedium, nil
	}
	p, err := model.ParsePriority(s)
	if err != nil {
		return "", invalid("priority", "%v", err)
	}
	return p, nil
}

func parseStatus(s string) (model.Status, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.StatusTodo, nil
	}
	st, err := model.ParseStatus(s)
	if err != nil {
		return "", invalid("status", "%v", err)
	}
	return st, nil
}
