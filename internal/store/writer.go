package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/model"
)

// writeTimeout is the maximum time allowed for a single slot write.
const writeTimeout = 10 * time.Second

// SnapshotWriter persists a full task list.
type SnapshotWriter interface {
	Write(ctx context.Context, tasks []model.Task) error
}

// AsyncWriter saves task snapshots on a background goroutine so callers
// never wait on storage. Snapshots queued while a write is in flight are
// coalesced: only the latest one is written.
type AsyncWriter struct {
	target SnapshotWriter
	logger *zap.Logger

	mu         sync.Mutex
	idle       *sync.Cond
	pending    []model.Task
	hasPending bool
	inFlight   bool
	running    bool

	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewAsyncWriter starts a writer that forwards snapshots to target.
func NewAsyncWriter(target SnapshotWriter, logger *zap.Logger) *AsyncWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &AsyncWriter{
		target:    target,
		logger:    logger,
		running:   true,
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	w.idle = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// Save queues tasks for writing and returns immediately. After Close it
// writes synchronously.
func (w *AsyncWriter) Save(ctx context.Context, tasks []model.Task) {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.write(ctx, tasks)
		return
	}
	w.pending = tasks
	w.hasPending = true
	w.mu.Unlock()

	select {
	case w.triggerCh <- struct{}{}:
	default:
		// A write is already scheduled and will pick up the latest snapshot.
	}
}

// Flush blocks until every queued snapshot has been written.
func (w *AsyncWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.hasPending || w.inFlight {
		w.idle.Wait()
	}
}

// Close writes any queued snapshot and stops the background goroutine.
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	return nil
}

func (w *AsyncWriter) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			w.drain()
			return
		case <-w.triggerCh:
			w.drain()
		}
	}
}

// drain writes the latest pending snapshot until none is left.
func (w *AsyncWriter) drain() {
	for {
		w.mu.Lock()
		if !w.hasPending {
			w.inFlight = false
			w.idle.Broadcast()
			w.mu.Unlock()
			return
		}
		tasks := w.pending
		w.pending = nil
		w.hasPending = false
		w.inFlight = true
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		w.write(ctx, tasks)
		cancel()
	}
}

func (w *AsyncWriter) write(ctx context.Context, tasks []model.Task) {
	if err := w.target.Write(ctx, tasks); err != nil {
		w.logger.Error("background save failed",
			zap.Int("count", len(tasks)),
			zap.Error(err),
		)
	}
}
