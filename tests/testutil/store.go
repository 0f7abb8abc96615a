package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/store"
)

// NewTestSlots creates an in-memory SQLiteSlots with all migrations applied.
// It automatically closes the slots when the test completes.
func NewTestSlots(t *testing.T) *store.SQLiteSlots {
	t.Helper()

	s, err := store.NewSQLiteSlots(":memory:")
	if err != nil {
		t.Fatalf("creating test slots: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test slots: %v", err)
		}
	})

	return s
}

// FixedClock returns a clock that always reports now.
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// SequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
