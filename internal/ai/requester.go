package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/model"
)

const (
	// NoOpenTasksMessage is returned without calling the summarizer when
	// every task is done.
	NoOpenTasksMessage = "No open tasks to summarize."
	// FailureMessage is shown to the user when summarization fails.
	FailureMessage = "Failed to generate task summary. Please try again."

	noDescription = "No description"
)

// ErrNotConfigured is wrapped in the SummarizationError returned when no
// summarizer is available.
var ErrNotConfigured = errors.New("AI summarization is not configured")

// OpenTask is one entry of a summarization request.
type OpenTask struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SummaryRequest is sent to the summarizer.
type SummaryRequest struct {
	OpenTasks []OpenTask `json:"openTasks"`
}

// SummaryResponse is returned by the summarizer.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// Summarizer turns a list of open tasks into a short text.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
}

// SummarizationError wraps any failure of the summarizer.
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarizing tasks: %v", e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// IsSummarization reports whether err is (or wraps) a SummarizationError.
func IsSummarization(err error) bool {
	var se *SummarizationError
	return errors.As(err, &se)
}

// State is the lifecycle of the most recent summary request.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Result is the outcome of one Request call.
type Result struct {
	Seq     uint64
	Summary string
	Err     error
	// Stale is set when a newer request was issued before this one
	// finished. Stale results never change the requester's state.
	Stale bool
}

// Snapshot is the requester's current view of the latest request.
type Snapshot struct {
	State   State
	Seq     uint64
	Summary string
	Err     error
}

// Requester builds summary requests from the board and tracks the latest
// one. Only the most recently issued request may update its state.
type Requester struct {
	summarizer Summarizer
	logger     *zap.Logger

	mu      sync.Mutex
	seq     uint64
	current Snapshot
}

// NewRequester creates a requester. summarizer may be nil, in which case
// every request with open tasks fails.
func NewRequester(s Summarizer, logger *zap.Logger) *Requester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Requester{summarizer: s, logger: logger}
}

// BuildRequest selects the open tasks in board order. A blank description
// is replaced by a placeholder.
func BuildRequest(tasks []model.Task) SummaryRequest {
	req := SummaryRequest{OpenTasks: []OpenTask{}}
	for _, t := range tasks {
		if !t.IsOpen() {
			continue
		}
		desc := t.Description
		if strings.TrimSpace(desc) == "" {
			desc = noDescription
		}
		req.OpenTasks = append(req.OpenTasks, OpenTask{Name: t.Name, Description: desc})
	}
	return req
}

// Request summarizes the open tasks among tasks. It blocks until the
// summarizer answers or ctx is done.
func (r *Requester) Request(ctx context.Context, tasks []model.Task) Result {
	req := BuildRequest(tasks)

	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.current = Snapshot{State: StateLoading, Seq: seq}
	r.mu.Unlock()

	if len(req.OpenTasks) == 0 {
		return r.finish(Result{Seq: seq, Summary: NoOpenTasksMessage})
	}

	if r.summarizer == nil {
		return r.finish(Result{Seq: seq, Err: &SummarizationError{Err: ErrNotConfigured}})
	}

	resp, err := r.summarizer.Summarize(ctx, req)
	if err == nil && strings.TrimSpace(resp.Summary) == "" {
		err = errors.New("empty summary")
	}
	if err != nil {
		r.logger.Warn("task summary failed",
			zap.Uint64("seq", seq),
			zap.Int("open_tasks", len(req.OpenTasks)),
			zap.Error(err),
		)
		return r.finish(Result{Seq: seq, Err: &SummarizationError{Err: err}})
	}
	return r.finish(Result{Seq: seq, Summary: resp.Summary})
}

// State returns the snapshot of the latest request.
func (r *Requester) State() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Latest returns the sequence number of the most recently issued request.
func (r *Requester) Latest() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

func (r *Requester) finish(res Result) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.Seq != r.seq {
		res.Stale = true
		r.logger.Debug("discarding stale summary", zap.Uint64("seq", res.Seq), zap.Uint64("latest", r.seq))
		return res
	}
	if res.Err != nil {
		r.current = Snapshot{State: StateFailed, Seq: res.Seq, Err: res.Err}
	} else {
		r.current = Snapshot{State: StateReady, Seq: res.Seq, Summary: res.Summary}
	}
	return res
}
