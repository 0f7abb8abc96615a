package board_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

func TestDrop_MovesTask(t *testing.T) {
	ctx := context.Background()
	b, saver := newBoard(t)
	b.Hydrate([]model.Task{{ID: "abc", Name: "x", Priority: model.PriorityLow, Status: model.StatusTodo}})
	tr := board.NewTransitions(b)

	task, err := b.Get("abc")
	require.NoError(t, err)
	p := tr.DragStart(task)
	assert.Equal(t, board.Payload("abc"), p)

	moved, err := tr.Drop(ctx, p, model.StatusDone)
	require.NoError(t, err)
	assert.True(t, moved)

	task, err = b.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, task.Status)
	assert.Equal(t, 1, saver.count())
}

func TestDrop_BlankPayloadIsIgnored(t *testing.T) {
	b, saver := newBoard(t)
	tr := board.NewTransitions(b)

	moved, err := tr.Drop(context.Background(), "", model.StatusDone)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Zero(t, saver.count())
}

func TestDrop_UnknownTask(t *testing.T) {
	b, _ := newBoard(t)
	tr := board.NewTransitions(b)

	moved, err := tr.Drop(context.Background(), "ghost", model.StatusDone)
	assert.False(t, moved)
	assert.True(t, board.IsNotFound(err))
}

func TestShift_ClampsAtEdges(t *testing.T) {
	ctx := context.Background()
	b, saver := newBoard(t)
	b.Hydrate([]model.Task{{ID: "t1", Name: "x", Priority: model.PriorityLow, Status: model.StatusTodo}})
	tr := board.NewTransitions(b)

	task, _ := b.Get("t1")
	st, err := tr.Shift(ctx, task, -1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, st)
	assert.Zero(t, saver.count())

	st, err = tr.Shift(ctx, task, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, st)

	task, _ = b.Get("t1")
	st, err = tr.Shift(ctx, task, 5)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, st)

	task, _ = b.Get("t1")
	assert.Equal(t, model.StatusDone, task.Status)
	assert.Equal(t, 2, saver.count())
}
