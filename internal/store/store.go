package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nhle/taskboard/internal/model"
)

// Slots is a durable key-value store where each key holds one serialized
// value. The board keeps its whole task list in a single slot.
type Slots interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put overwrites the value stored under key.
	Put(ctx context.Context, key, value string) error
	Close() error
}

// Open returns the slot backend selected by cfg.Driver.
func Open(cfg model.StorageConfig) (Slots, error) {
	switch cfg.Driver {
	case model.StorageDriverRedis:
		return NewRedisSlots(cfg.RedisAddr)
	case model.StorageDriverSQLite, "":
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("creating storage dir: %w", err)
			}
		}
		return NewSQLiteSlots(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
