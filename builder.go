package authgate

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/margitantal68/authgate/internal/rate"
	"github.com/margitantal68/authgate/jwt"
	"github.com/margitantal68/authgate/password"
)

// Builder assembles a [Service]. Construction is allocation-only; no I/O
// happens until the service handles requests.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	rateStore rate.Store
	directory UserDirectory
	auditSink AuditSink
}

// New returns a builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis backs the admission controller with Redis counters. Without it
// (and without [Builder.WithRateStore]) an in-memory store is used.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRateStore injects an explicit admission-counter store. Takes
// precedence over [Builder.WithRedis]; tests use it to control the clock.
func (b *Builder) WithRateStore(store rate.Store) *Builder {
	b.rateStore = store
	return b
}

// WithUserDirectory sets the user-lookup collaborator. Required.
func (b *Builder) WithUserDirectory(dir UserDirectory) *Builder {
	b.directory = dir
	return b
}

// WithAuditSink sets the destination for audit events. Optional; without a
// sink events are dropped.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires the subsystems, and returns a
// ready [Service].
func (b *Builder) Build() (*Service, error) {
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.directory == nil {
		return nil, errors.New("user directory is required")
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret: b.config.JWT.Secret,
		TTL:    b.config.JWT.AccessTTL,
	})
	if err != nil {
		return nil, err
	}

	store := b.rateStore
	if store == nil {
		if b.redis != nil {
			store = rate.NewRedisStore(b.redis, b.config.RateLimit.RedisPrefix)
		} else {
			store = rate.NewMemoryStore()
		}
	}

	limiter, err := rate.New(store, rate.Config{
		Limit:  b.config.RateLimit.Limit,
		Period: b.config.RateLimit.Period,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		config:    b.config,
		directory: b.directory,
		hasher:    hasher,
		tokens:    tokens,
		limiter:   limiter,
		audit:     newAuditDispatcher(b.config.Audit, b.auditSink),
		now:       time.Now,
	}, nil
}
