package rate

import (
	"context"
	"errors"
	"time"
)

// Config holds the per-route admission policy: at most Limit attempts per
// key within each Period-long window.
type Config struct {
	Limit  int
	Period time.Duration
}

// Limiter applies a fixed-window admission policy over a [Store]. One
// client's traffic never affects another key's bucket.
type Limiter struct {
	store  Store
	config Config
}

// New validates cfg and returns a limiter backed by the given store.
func New(store Store, cfg Config) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("rate store must not be nil")
	}
	if cfg.Limit <= 0 {
		return nil, errors.New("rate limit must be > 0")
	}
	if cfg.Period <= 0 {
		return nil, errors.New("rate period must be > 0")
	}

	return &Limiter{store: store, config: cfg}, nil
}

// Admit records one attempt for key and returns nil if it is within the
// window budget, [ErrRateLimited] if the budget is exceeded. The attempt is
// counted either way.
func (l *Limiter) Admit(ctx context.Context, key string) error {
	count, err := l.store.Incr(ctx, key, l.config.Period)
	if err != nil {
		return err
	}

	if count > int64(l.config.Limit) {
		return ErrRateLimited
	}

	return nil
}
