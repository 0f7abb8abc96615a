package store_test

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

func exerciseSlots(t *testing.T, s store.Slots) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "gothamTasks")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "gothamTasks", `[]`))
	v, ok, err := s.Get(ctx, "gothamTasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Put(ctx, "gothamTasks", `[{"id":"1"}]`))
	v, _, err = s.Get(ctx, "gothamTasks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, s.Put(ctx, "other", ""))
	v, ok, err = s.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestSQLiteSlots(t *testing.T) {
	exerciseSlots(t, testutil.NewTestSlots(t))
}

func TestSQLiteSlots_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.db")

	s, err := store.NewSQLiteSlots(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", "v"))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteSlots(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestRedisSlots(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := store.NewRedisSlotsFromClient(client)
	t.Cleanup(func() { _ = s.Close() })

	exerciseSlots(t, s)

	stored, err := mr.Get("gothamTasks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, stored)
}

func TestRedisSlots_ReadError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := store.NewRedisSlotsFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = s.Close() })

	mr.SetError("LOADING")
	_, _, err = s.Get(context.Background(), "gothamTasks")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := store.Open(model.StorageConfig{Driver: model.StorageDriverRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &store.RedisSlots{}, s)
	require.NoError(t, s.Close())

	path := filepath.Join(t.TempDir(), "nested", "board.db")
	s, err = store.Open(model.StorageConfig{Driver: model.StorageDriverSQLite, Path: path})
	require.NoError(t, err)
	assert.IsType(t, &store.SQLiteSlots{}, s)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)

	_, err = store.Open(model.StorageConfig{Driver: "postgres"})
	assert.Error(t, err)
}
