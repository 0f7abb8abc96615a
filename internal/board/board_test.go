package board_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

type recordingSaver struct {
	mu    sync.Mutex
	saves [][]model.Task
}

func (r *recordingSaver) Save(_ context.Context, tasks []model.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, tasks)
}

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recordingSaver) last() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		return nil
	}
	return r.saves[len(r.saves)-1]
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newBoard(t *testing.T) (*board.Board, *recordingSaver) {
	t.Helper()
	saver := &recordingSaver{}
	return board.New(saver, board.WithIDGenerator(sequentialIDs())), saver
}

func TestCreate_AppliesDefaults(t *testing.T) {
	ctx := context.Background()
	b, saver := newBoard(t)

	created, err := b.Create(ctx, board.TaskFields{Name: "Patrol Docks", Priority: model.PriorityHigh})
	require.NoError(t, err)

	tasks := b.List()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Patrol Docks", tasks[0].Name)
	assert.Equal(t, model.StatusTodo, tasks[0].Status)
	assert.Equal(t, model.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, created.ID, tasks[0].ID)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, saver.count())
}

func TestCreate_DefaultPriorityIsMedium(t *testing.T) {
	b, _ := newBoard(t)

	created, err := b.Create(context.Background(), board.TaskFields{Name: "Train"})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, created.Priority)
}

func TestCreate_RejectsBlankName(t *testing.T) {
	b, saver := newBoard(t)

	_, err := b.Create(context.Background(), board.TaskFields{Name: "   "})
	require.Error(t, err)
	assert.True(t, board.IsValidation(err))
	assert.Equal(t, "name", board.FieldOf(err))
	assert.Empty(t, b.List())
	assert.Zero(t, saver.count())
}

func TestCreate_RejectsInvalidEnums(t *testing.T) {
	b, _ := newBoard(t)

	_, err := b.Create(context.Background(), board.TaskFields{Name: "x", Priority: "Urgent"})
	assert.Equal(t, "priority", board.FieldOf(err))

	_, err = b.Create(context.Background(), board.TaskFields{Name: "x", Status: "Blocked"})
	assert.Equal(t, "status", board.FieldOf(err))
}

func TestCreate_IDsAreUnique(t *testing.T) {
	ctx := context.Background()
	b := board.New(nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		task, err := b.Create(ctx, board.TaskFields{Name: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestCreate_NeverReusesDeletedID(t *testing.T) {
	ctx := context.Background()
	// The generator repeats itself; the board must skip ids it already issued.
	ids := []string{"a", "a", "b", "a", "b", "c"}
	i := 0
	b := board.New(nil, board.WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))

	first, err := b.Create(ctx, board.TaskFields{Name: "one"})
	require.NoError(t, err)
	require.Equal(t, "a", first.ID)
	require.NoError(t, b.Delete(ctx, "a"))

	second, err := b.Create(ctx, board.TaskFields{Name: "two"})
	require.NoError(t, err)
	assert.Equal(t, "b", second.ID)

	third, err := b.Create(ctx, board.TaskFields{Name: "three"})
	require.NoError(t, err)
	assert.Equal(t, "c", third.ID)
}

func TestCreate_NormalizesDueDateToDay(t *testing.T) {
	b, _ := newBoard(t)
	due := time.Date(2026, 10, 20, 17, 45, 0, 0, time.UTC)

	created, err := b.Create(context.Background(), board.TaskFields{Name: "x", DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), *created.DueDate)
}

func TestUpdate_PartialLeavesOtherFields(t *testing.T) {
	ctx := context.Background()
	b, saver := newBoard(t)
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	created, err := b.Create(ctx, board.TaskFields{
		Name:        "Repair Batmobile",
		Description: "tires",
		DueDate:     &due,
		Tags:        []string{"vehicle"},
	})
	require.NoError(t, err)

	name := "Repair Batwing"
	updated, err := b.Update(ctx, created.ID, board.TaskPatch{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Repair Batwing", updated.Name)
	assert.Equal(t, "tires", updated.Description)
	assert.Equal(t, due, *updated.DueDate)
	assert.Equal(t, []string{"vehicle"}, updated.Tags)
	assert.Equal(t, 2, saver.count())
	assert.Equal(t, "Repair Batwing", saver.last()[0].Name)
}

func TestUpdate_ClearDueDateAndTags(t *testing.T) {
	ctx := context.Background()
	b, _ := newBoard(t)
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	created, err := b.Create(ctx, board.TaskFields{Name: "x", DueDate: &due, Tags: []string{"a"}})
	require.NoError(t, err)

	empty := []string{}
	updated, err := b.Update(ctx, created.ID, board.TaskPatch{ClearDueDate: true, Tags: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
	assert.Nil(t, updated.Tags)
}

func TestUpdate_NotFound(t *testing.T) {
	b, saver := newBoard(t)
	name := "x"

	_, err := b.Update(context.Background(), "missing", board.TaskPatch{Name: &name})
	require.Error(t, err)
	assert.True(t, board.IsNotFound(err))
	assert.Zero(t, saver.count())
}

func TestUpdate_RejectsBlankName(t *testing.T) {
	ctx := context.Background()
	b, _ := newBoard(t)
	created, err := b.Create(ctx, board.TaskFields{Name: "x"})
	require.NoError(t, err)

	blank := " "
	_, err = b.Update(ctx, created.ID, board.TaskPatch{Name: &blank})
	assert.True(t, board.IsValidation(err))

	got, err := b.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
}

func TestDelete_SecondDeleteReportsNotFound(t *testing.T) {
	ctx := context.Background()
	b, saver := newBoard(t)
	created, err := b.Create(ctx, board.TaskFields{Name: "x"})
	require.NoError(t, err)

	require.NoError(t, b.Delete(ctx, created.ID))
	for _, task := range b.List() {
		assert.NotEqual(t, created.ID, task.ID)
	}

	err = b.Delete(ctx, created.ID)
	assert.True(t, board.IsNotFound(err))
	assert.Equal(t, 2, saver.count())
}

func TestSetStatus_AnyToAny(t *testing.T) {
	ctx := context.Background()
	b, _ := newBoard(t)
	created, err := b.Create(ctx, board.TaskFields{Name: "x", Description: "d"})
	require.NoError(t, err)

	for _, from := range model.Statuses {
		for _, to := range model.Statuses {
			require.NoError(t, b.SetStatus(ctx, created.ID, from))
			require.NoError(t, b.SetStatus(ctx, created.ID, to))

			var matches []model.Task
			for _, task := range b.List() {
				if task.ID == created.ID {
					matches = append(matches, task)
				}
			}
			require.Len(t, matches, 1)
			assert.Equal(t, to, matches[0].Status)
			assert.Equal(t, "x", matches[0].Name)
			assert.Equal(t, "d", matches[0].Description)
		}
	}
}

func TestSetStatus_Errors(t *testing.T) {
	ctx := context.Background()
	b, _ := newBoard(t)

	assert.True(t, board.IsNotFound(b.SetStatus(ctx, "missing", model.StatusDone)))

	created, err := b.Create(ctx, board.TaskFields{Name: "x"})
	require.NoError(t, err)
	assert.True(t, board.IsValidation(b.SetStatus(ctx, created.ID, "Archived")))
}

func TestList_ReturnsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	b, _ := newBoard(t)
	_, err := b.Create(ctx, board.TaskFields{Name: "x", Tags: []string{"a"}})
	require.NoError(t, err)

	tasks := b.List()
	tasks[0].Name = "mutated"
	tasks[0].Tags[0] = "mutated"

	fresh := b.List()
	assert.Equal(t, "x", fresh[0].Name)
	assert.Equal(t, []string{"a"}, fresh[0].Tags)
}

func TestHydrate_DoesNotSave(t *testing.T) {
	b, saver := newBoard(t)

	b.Hydrate([]model.Task{
		{ID: "t1", Name: "one", Priority: model.PriorityLow, Status: model.StatusDone},
		{ID: "t2", Name: "two", Priority: model.PriorityHigh, Status: model.StatusTodo},
	})

	assert.Equal(t, 2, b.Len())
	assert.Zero(t, saver.count())
	open := b.Open()
	require.Len(t, open, 1)
	assert.Equal(t, "t2", open[0].ID)
}

func TestHydrate_ReservesLoadedIDs(t *testing.T) {
	b := board.New(nil, board.WithIDGenerator(sequentialIDs()))
	b.Hydrate([]model.Task{{ID: "id-1", Name: "loaded", Priority: model.PriorityLow, Status: model.StatusTodo}})

	created, err := b.Create(context.Background(), board.TaskFields{Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, "id-2", created.ID)
}
