package authgate

import (
	"errors"
	"time"
)

// Config collects every tunable of the authentication core. It is built
// once at process start and passed into [Builder.WithConfig]; no component
// reads ambient configuration.
type Config struct {
	JWT       JWTConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
}

// JWTConfig holds the symmetric signing key and access-token lifetime.
// Changing the secret invalidates all previously issued tokens immediately;
// there is no rotation grace period.
type JWTConfig struct {
	Secret    []byte
	AccessTTL time.Duration
}

// PasswordConfig holds the Argon2id cost parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// RateLimitConfig is the admission policy for rate-gated routes: Limit
// attempts per client key within each Period. RedisPrefix namespaces
// counter keys when the Redis store is used.
type RateLimitConfig struct {
	Limit       int
	Period      time.Duration
	RedisPrefix string
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events when the buffer is full instead of
	// blocking the request path.
	DropIfFull bool
}

// DefaultConfig returns production-ready defaults. The JWT secret has no
// default and must always be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 30 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		RateLimit: RateLimitConfig{
			Limit:       5,
			Period:      time.Minute,
			RedisPrefix: "ag:rl",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.JWT.Secret) == 0 {
		return errors.New("jwt secret must not be empty")
	}
	if cfg.JWT.AccessTTL <= 0 {
		return errors.New("jwt access TTL must be > 0")
	}
	if cfg.RateLimit.Limit <= 0 {
		return errors.New("rate limit must be > 0")
	}
	if cfg.RateLimit.Period <= 0 {
		return errors.New("rate period must be > 0")
	}
	// Password parameters are validated by the hasher constructor.
	return nil
}
