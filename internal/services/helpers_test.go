package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	"notlikethat/internal/store"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errDiskGone = errors.New("disk gone")

// recordingStore wraps a MemoryStore, counts writes and can be told to fail
type recordingStore struct {
	*store.MemoryStore

	mu        sync.Mutex
	sets      map[string]int
	failGet   bool
	failSet   bool
	failedOps int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: store.NewMemoryStore(), sets: make(map[string]int)}
}

func (s *recordingStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.Lock()
	fail := s.failGet
	if fail {
		s.failedOps++
	}
	s.mu.Unlock()
	if fail {
		return false, &store.StorageError{Op: store.OpGet, Key: key, Err: errDiskGone}
	}
	return s.MemoryStore.Get(ctx, key, dst)
}

func (s *recordingStore) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	fail := s.failSet
	if fail {
		s.failedOps++
	} else {
		s.sets[key]++
	}
	s.mu.Unlock()
	if fail {
		return &store.StorageError{Op: store.OpSet, Key: key, Err: errDiskGone}
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *recordingStore) setCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[key]
}

// fixedClock always returns the same instant
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

// sequenceRand returns the queued values in order, then 0
type sequenceRand struct {
	values []int
}

func (r *sequenceRand) Intn(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}

func testItems(n int) []models.MisconceptionItem {
	items := make([]models.MisconceptionItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, models.MisconceptionItem{
			ID:       i,
			Text:     "misconception " + string(rune('A'+i-1)),
			Category: "Science",
		})
	}
	return items
}

func observedLoggerAt(t *testing.T, level zapcore.Level) (*observability.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(level)
	return observability.NewLoggerFromCore(core), logs
}

func readShown(t *testing.T, kv store.KeyValueStore, lang models.Language) models.ShownSet {
	t.Helper()
	shown, err := store.GetOr(context.Background(), kv, store.ShownKey(lang), models.ShownSet{})
	if err != nil {
		t.Fatalf("read shown: %v", err)
	}
	return shown
}

func readDaily(t *testing.T, kv store.KeyValueStore, lang models.Language) models.DailyRecord {
	t.Helper()
	record, err := store.GetOr(context.Background(), kv, store.DailyKey(lang), models.NoSelection)
	if err != nil {
		t.Fatalf("read daily record: %v", err)
	}
	return record
}
