package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

var seedNow = time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

// brokenSlots fails every call.
type brokenSlots struct{}

func (brokenSlots) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (brokenSlots) Put(context.Context, string, string) error { return errors.New("disk full") }
func (brokenSlots) Close() error                              { return nil }

func newPersister(t *testing.T, slots store.Slots, logger *zap.Logger) *store.Persister {
	t.Helper()
	return store.NewPersister(slots, "gothamTasks",
		store.WithClock(testutil.FixedClock(seedNow)),
		store.WithSeedIDs(testutil.SequentialIDs("seed")),
		store.WithLogger(logger),
	)
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func assertIsSeed(t *testing.T, tasks []model.Task) {
	t.Helper()
	require.Len(t, tasks, 6)

	counts := map[model.Status]int{}
	for _, task := range tasks {
		counts[task.Status]++
	}
	assert.Equal(t, map[model.Status]int{
		model.StatusTodo:       2,
		model.StatusInProgress: 2,
		model.StatusDone:       2,
	}, counts)
}

func TestLoad_EmptySlotYieldsSeed(t *testing.T) {
	p := newPersister(t, testutil.NewTestSlots(t), nil)

	tasks := p.Load(context.Background())
	assertIsSeed(t, tasks)
	assert.Equal(t, "seed-1", tasks[0].ID)
	assert.Equal(t, "seed-6", tasks[5].ID)
}

func TestLoad_BlankSlotYieldsSeed(t *testing.T) {
	ctx := context.Background()
	slots := testutil.NewTestSlots(t)
	require.NoError(t, slots.Put(ctx, "gothamTasks", "  "))

	assertIsSeed(t, newPersister(t, slots, nil).Load(ctx))
}

func TestLoad_EmptyArrayIsAnEmptyBoard(t *testing.T) {
	ctx := context.Background()
	slots := testutil.NewTestSlots(t)
	require.NoError(t, slots.Put(ctx, "gothamTasks", "[]"))

	tasks := newPersister(t, slots, nil).Load(ctx)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
}

func TestLoad_CorruptValueYieldsSeed(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not json", value: "{{nope"},
		{name: "null", value: "null"},
		{name: "object", value: `{"id":"1"}`},
		{name: "array of numbers", value: `[1,2]`},
		{name: "null element", value: `[null]`},
		{name: "missing id", value: `[{"name":"x","priority":"Low","status":"Todo"}]`},
		{name: "blank name", value: `[{"id":"1","name":" ","priority":"Low","status":"Todo"}]`},
		{name: "bad priority", value: `[{"id":"1","name":"x","priority":"Urgent","status":"Todo"}]`},
		{name: "bad status", value: `[{"id":"1","name":"x","priority":"Low","status":"Blocked"}]`},
		{name: "bad date", value: `[{"id":"1","name":"x","priority":"Low","status":"Todo","dueDate":"soon"}]`},
		{name: "wrong type", value: `[{"id":1,"name":"x","priority":"Low","status":"Todo"}]`},
		{name: "duplicate id", value: `[{"id":"1","name":"x","priority":"Low","status":"Todo"},{"id":"1","name":"y","priority":"Low","status":"Done"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			slots := testutil.NewTestSlots(t)
			require.NoError(t, slots.Put(ctx, "gothamTasks", tt.value))

			core, logs := observer.New(zapcore.WarnLevel)
			p := newPersister(t, slots, zap.New(core))

			assertIsSeed(t, p.Load(ctx))
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, "loading tasks failed, using demo data", entry.Message)

			_, _, err := p.Read(ctx)
			assert.True(t, store.IsPersistence(err))
		})
	}
}

func TestLoad_ReadFailureYieldsSeed(t *testing.T) {
	p := newPersister(t, brokenSlots{}, nil)
	assertIsSeed(t, p.Load(context.Background()))
}

func TestSeed_DueDatesRelativeToNow(t *testing.T) {
	tasks := store.Seed(seedNow, testutil.SequentialIDs("s"))

	offsets := make([]int, 0, len(tasks))
	today := model.Date(seedNow)
	for _, task := range tasks {
		require.NotNil(t, task.DueDate)
		offsets = append(offsets, int(task.DueDate.Sub(today).Hours()/24))
	}
	assert.Equal(t, []int{3, 5, 1, 0, -2, -1}, offsets)
	assert.Equal(t, "Repair Batmobile", tasks[2].Name)
	assert.Equal(t, model.PriorityLow, tasks[5].Priority)
}

func TestSeed_FreshIDsEveryTime(t *testing.T) {
	gen := testutil.SequentialIDs("s")
	first := store.Seed(seedNow, gen)
	second := store.Seed(seedNow, gen)

	seen := map[string]bool{}
	for _, task := range append(first, second...) {
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newPersister(t, testutil.NewTestSlots(t), nil)

	tasks := []model.Task{
		{ID: "a", Name: "Patrol Docks", Priority: model.PriorityHigh, Status: model.StatusTodo},
		{ID: "b", Name: "Repair Batmobile", Description: "tires", DueDate: day(2026, 10, 16), Priority: model.PriorityMedium, Status: model.StatusInProgress, Tags: []string{"vehicle", "vehicle"}},
		{ID: "c", Name: "Meet Gordon", DueDate: day(2020, 2, 29), Priority: model.PriorityLow, Status: model.StatusDone},
	}
	p.Save(ctx, tasks)

	loaded, ok, err := p.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tasks, loaded)
	assert.Equal(t, tasks, p.Load(ctx))
}

func TestEncode_Layout(t *testing.T) {
	data, err := store.Encode([]model.Task{
		{ID: "a", Name: "x", Priority: model.PriorityLow, Status: model.StatusTodo},
		{ID: "b", Name: "y", Description: "d", DueDate: day(2026, 10, 18), Priority: model.PriorityHigh, Status: model.StatusDone, Tags: []string{"t"}},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"id":"a","name":"x","priority":"Low","status":"Todo"},
		{"id":"b","name":"y","description":"d","dueDate":"2026-10-18T00:00:00Z","priority":"High","status":"Done","tags":["t"]}
	]`, string(data))

	empty, err := store.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestDecode_AcceptedDateForms(t *testing.T) {
	tasks, err := store.Decode([]byte(`[
		{"id":"1","name":"a","priority":"Low","status":"Todo","dueDate":"2026-10-18T00:00:00.000Z"},
		{"id":"2","name":"b","priority":"Low","status":"Todo","dueDate":"2026-10-19"},
		{"id":"3","name":"c","priority":"Low","status":"Todo","dueDate":null,"tags":[]},
		{"id":"4","name":"d","priority":"Low","status":"Todo","extra":true}
	]`))
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	assert.Equal(t, day(2026, 10, 18), tasks[0].DueDate)
	assert.Equal(t, day(2026, 10, 19), tasks[1].DueDate)
	assert.Nil(t, tasks[2].DueDate)
	assert.Nil(t, tasks[2].Tags)
}

func TestSave_FailureIsLoggedNotRaised(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	p := newPersister(t, brokenSlots{}, zap.New(core))

	assert.NotPanics(t, func() {
		p.Save(context.Background(), []model.Task{{ID: "a", Name: "x", Priority: model.PriorityLow, Status: model.StatusTodo}})
	})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "saving tasks failed", logs.All()[0].Message)

	err := p.Write(context.Background(), nil)
	require.Error(t, err)
	var pe *store.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "write", pe.Op)
	assert.Equal(t, "gothamTasks", pe.Key)
}

func TestNewPersister_DefaultKey(t *testing.T) {
	p := store.NewPersister(testutil.NewTestSlots(t), "")
	assert.Equal(t, model.DefaultStorageKey, p.Key())
}
