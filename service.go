package authgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/margitantal68/authgate/internal/rate"
	"github.com/margitantal68/authgate/jwt"
	"github.com/margitantal68/authgate/password"
)

// Service is the authentication façade: registration, login, deletion,
// bearer-token resolution, and request admission. Build one through
// [Builder]; all methods are safe for concurrent use afterwards.
type Service struct {
	config    Config
	directory UserDirectory
	hasher    *password.Argon2
	tokens    *jwt.Manager
	limiter   *rate.Limiter
	audit     *auditDispatcher

	now func() time.Time
}

// Close flushes and stops the audit dispatcher.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.audit.Close()
}

// Register creates a credential for a new user and returns its public view.
// The password digest never appears in the result. Fails with
// [ErrUsernameTaken] or [ErrEmailTaken] on uniqueness conflicts.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (PublicUser, error) {
	if s == nil {
		return PublicUser{}, ErrServiceNotReady
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		return PublicUser{}, ErrInvalidRegistration
	}

	if _, err := s.directory.GetUserByUsername(ctx, req.Username); err == nil {
		s.emitAudit(ctx, EventRegister, false, req.Username, ErrUsernameTaken)
		return PublicUser{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return PublicUser{}, fmt.Errorf("directory lookup: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	record, err := s.directory.CreateUser(ctx, CreateUserInput{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		// The directory re-checks uniqueness; a concurrent register can
		// still lose the race here.
		s.emitAudit(ctx, EventRegister, false, req.Username, err)
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			return PublicUser{}, err
		}
		return PublicUser{}, fmt.Errorf("create user: %w", err)
	}

	s.emitAudit(ctx, EventRegister, true, record.Username, nil)

	return PublicUser{Username: record.Username, Email: record.Email}, nil
}

// Login verifies the credential and issues a session token. An unknown
// username and a wrong password produce the same [ErrInvalidCredentials];
// nothing in the result or timing order reveals which check failed.
func (s *Service) Login(ctx context.Context, username, plaintext string) (LoginResult, error) {
	if s == nil {
		return LoginResult{}, ErrServiceNotReady
	}

	record, err := s.directory.GetUserByUsername(ctx, username)
	if err != nil {
		s.emitAudit(ctx, EventLogin, false, username, ErrInvalidCredentials)
		return LoginResult{}, ErrInvalidCredentials
	}

	if !s.hasher.Verify(plaintext, record.PasswordHash) {
		s.emitAudit(ctx, EventLogin, false, username, ErrInvalidCredentials)
		return LoginResult{}, ErrInvalidCredentials
	}

	s.maybeUpgradeHash(ctx, record, plaintext)

	token, err := s.tokens.Issue(record.Username, s.now())
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.emitAudit(ctx, EventLogin, true, record.Username, nil)

	return LoginResult{
		Username:    record.Username,
		AccessToken: token,
	}, nil
}

// maybeUpgradeHash transparently re-hashes the stored digest when the
// configured cost parameters exceed the stored ones. Best effort: a failed
// upgrade never fails the login that triggered it.
func (s *Service) maybeUpgradeHash(ctx context.Context, record UserRecord, plaintext string) {
	needs, err := s.hasher.NeedsRehash(record.PasswordHash)
	if err != nil || !needs {
		return
	}

	newHash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return
	}
	_ = s.directory.UpdatePasswordHash(ctx, record.ID, newHash)
}

// Authenticate resolves a bearer token into a [Principal]. Every failure —
// empty token, bad signature, expiry, empty subject, unknown subject —
// collapses to [ErrUnauthorized] so callers cannot probe which check
// failed. The supplied time is used for the single expiry evaluation.
func (s *Service) Authenticate(ctx context.Context, token string, now time.Time) (*Principal, error) {
	if s == nil {
		return nil, ErrServiceNotReady
	}
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.Decode(token, now)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	record, err := s.directory.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		// A vanished user is still a 401-class failure: token validity and
		// username existence must stay indistinguishable here.
		return nil, ErrUnauthorized
	}

	return &Principal{
		UserID:   record.ID,
		Username: record.Username,
		FullName: record.FullName,
		Email:    record.Email,
	}, nil
}

// DeleteUser removes the record with the given id. Missing records fail
// with [ErrUserNotFound]; deletion is not silently idempotent.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if s == nil {
		return ErrServiceNotReady
	}

	record, err := s.directory.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("directory lookup: %w", err)
	}

	if err := s.directory.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.emitAudit(ctx, EventDelete, true, record.Username, nil)

	return nil
}

// ListUsers returns the public view of every credential in the directory.
func (s *Service) ListUsers(ctx context.Context) ([]PublicUser, error) {
	if s == nil {
		return nil, ErrServiceNotReady
	}

	records, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]PublicUser, 0, len(records))
	for _, r := range records {
		users = append(users, PublicUser{Username: r.Username, Email: r.Email})
	}

	return users, nil
}

// Admit consults the admission controller for one attempt by the given
// client key. Exceeding the window budget fails with [ErrRateLimited]; the
// attempt is counted either way.
func (s *Service) Admit(ctx context.Context, key string) error {
	if s == nil {
		return ErrServiceNotReady
	}

	if err := s.limiter.Admit(ctx, key); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			s.emitAudit(ctx, EventRateLimited, false, "", ErrRateLimited)
			return ErrRateLimited
		}
		return fmt.Errorf("admission check: %w", err)
	}

	return nil
}

// AuditDropped reports how many audit events were shed under buffer
// pressure.
func (s *Service) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

func (s *Service) emitAudit(ctx context.Context, eventType string, success bool, username string, cause error) {
	if s.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: s.now(),
		EventType: eventType,
		Username:  username,
		IP:        ClientIPFromContext(ctx),
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	s.audit.Emit(ctx, event)
}
