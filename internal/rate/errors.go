package rate

import "errors"

var (
	// ErrRateLimited is returned by [Limiter.Admit] when a key's counter
	// has exceeded the window limit.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable wraps backend failures (for example an
	// unreachable Redis); it is distinct from a denial.
	ErrStoreUnavailable = errors.New("rate store unavailable")
)
