package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers malformed tokens, signature mismatches, and
	// tokens signed with an algorithm outside the allow-list.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the signature verifies but the
	// token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Config holds the signing key and token lifetime. Instances are validated
// by [NewManager] and treated as immutable afterwards.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Manager signs and verifies session tokens with a symmetric HS256 key.
// It holds no mutable state and is safe for concurrent use.
type Manager struct {
	config Config
}

// SessionClaims is the claim set carried by issued tokens: subject,
// issued-at, and expiry.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a token manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}

	return &Manager{config: cfg}, nil
}

// Issue builds and signs a token for subject. The expiry is now plus the
// configured TTL; issuance is pure given (subject, now, secret).
func (m *Manager) Issue(subject string, now time.Time) (string, error) {
	if subject == "" {
		return "", errors.New("subject must not be empty")
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Decode verifies the token's signature and expiry against the supplied
// time and returns its claims. Failures are reported as [ErrTokenExpired]
// or [ErrTokenInvalid], never as raw parser errors.
func (m *Manager) Decode(tokenStr string, now time.Time) (*SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrTokenInvalid
		}
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
