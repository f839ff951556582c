package authgate

import "errors"

var (
	// ErrUsernameTaken is returned by [Service.Register] when the username
	// already exists in the directory.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned by [Service.Register] when the email
	// already exists in the directory.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidRegistration is returned when a registration request is
	// missing required fields.
	ErrInvalidRegistration = errors.New("invalid registration request")
	// ErrInvalidCredentials is returned by [Service.Login] for both an
	// unknown username and a wrong password; callers cannot tell the two
	// apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized is the single failure kind surfaced by
	// [Service.Authenticate]: missing, malformed, forged, or expired
	// tokens and unknown subjects are indistinguishable.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound is returned by [Service.DeleteUser] and by
	// [UserDirectory] implementations for missing records.
	ErrUserNotFound = errors.New("user not found")
	// ErrRateLimited is returned by [Service.Admit] when a client key has
	// exhausted its window budget.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrServiceNotReady is returned by methods on a nil or unbuilt
	// [Service].
	ErrServiceNotReady = errors.New("service not initialized")
)
