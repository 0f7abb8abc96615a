package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

// gatedWriter records every write and blocks until release is closed.
type gatedWriter struct {
	mu      sync.Mutex
	writes  [][]model.Task
	started chan struct{}
	release chan struct{}
	err     error
}

func newGatedWriter() *gatedWriter {
	return &gatedWriter{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedWriter) Write(_ context.Context, tasks []model.Task) error {
	g.started <- struct{}{}
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writes = append(g.writes, tasks)
	return g.err
}

func (g *gatedWriter) snapshot() [][]model.Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]model.Task(nil), g.writes...)
}

func named(name string) []model.Task {
	return []model.Task{{ID: name, Name: name, Priority: model.PriorityLow, Status: model.StatusTodo}}
}

func TestAsyncWriter_CoalescesPendingSnapshots(t *testing.T) {
	g := newGatedWriter()
	w := store.NewAsyncWriter(g, nil)
	t.Cleanup(func() { _ = w.Close() })
	ctx := context.Background()

	w.Save(ctx, named("first"))
	<-g.started

	// These arrive while "first" is still being written.
	w.Save(ctx, named("second"))
	w.Save(ctx, named("third"))

	close(g.release)
	w.Flush()

	writes := g.snapshot()
	require.Len(t, writes, 2)
	assert.Equal(t, "first", writes[0][0].Name)
	assert.Equal(t, "third", writes[1][0].Name)
}

func TestAsyncWriter_WritesThroughPersister(t *testing.T) {
	ctx := context.Background()
	p := newPersister(t, testutil.NewTestSlots(t), nil)
	w := store.NewAsyncWriter(p, nil)

	w.Save(ctx, named("a"))
	require.NoError(t, w.Close())

	loaded, ok, err := p.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, named("a"), loaded)
}

func TestAsyncWriter_SaveAfterCloseIsSynchronous(t *testing.T) {
	ctx := context.Background()
	p := newPersister(t, testutil.NewTestSlots(t), nil)
	w := store.NewAsyncWriter(p, nil)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	w.Save(ctx, named("late"))

	loaded, _, err := p.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, named("late"), loaded)
}

func TestAsyncWriter_LogsFailures(t *testing.T) {
	g := newGatedWriter()
	g.err = errors.New("disk full")
	close(g.release)

	core, logs := observer.New(zapcore.ErrorLevel)
	w := store.NewAsyncWriter(g, zap.New(core))

	w.Save(context.Background(), named("a"))
	w.Flush()
	require.NoError(t, w.Close())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "background save failed", logs.All()[0].Message)
}

func TestAsyncWriter_FlushWithNothingQueued(t *testing.T) {
	w := store.NewAsyncWriter(newGatedWriter(), nil)
	t.Cleanup(func() { _ = w.Close() })

	done := make(chan struct{})
	go func() {
		w.Flush()
		close(done)
	}()
	<-done
}
