package rate

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	windowStart time.Time
	count       int64
	lastSeen    time.Time
}

// MemoryStore is a process-local fixed-window counter: one bucket per key,
// guarded by a single mutex. Buckets are created lazily on first attempt and
// reset lazily when an attempt arrives after the window closed, so an idle
// key costs nothing until traffic returns.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithNowFunc overrides the clock. Tests use it to step across windows
// deterministically.
func WithNowFunc(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// Incr records one attempt for key in the current window and returns the
// post-increment count. The mutex makes the read-reset-increment sequence a
// single atomic step, so concurrent attempts for one key never lose updates.
func (ms *MemoryStore) Incr(ctx context.Context, key string, period time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := ms.now()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	b, ok := ms.buckets[key]
	if !ok {
		b = &bucket{windowStart: now}
		ms.buckets[key] = b
	} else if !now.Before(b.windowStart.Add(period)) {
		b.windowStart = now
		b.count = 0
	}

	b.count++
	b.lastSeen = now

	return b.count, nil
}

// Cleanup evicts buckets idle for longer than maxIdle and returns how many
// were removed. Absence of a bucket is equivalent to a fresh empty one, so
// eviction never admits traffic that an intact bucket would have denied
// beyond the stale window itself.
func (ms *MemoryStore) Cleanup(maxIdle time.Duration) int {
	now := ms.now()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	removed := 0
	for key, b := range ms.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(ms.buckets, key)
			removed++
		}
	}

	return removed
}

// Reset drops the bucket for key. Test helper.
func (ms *MemoryStore) Reset(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.buckets, key)
}

// Len reports the number of live buckets.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.buckets)
}

var _ Store = (*MemoryStore)(nil)
