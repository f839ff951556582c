package authgate

import "context"

// UserRecord is the full credential record held by a [UserDirectory].
// PasswordHash is an opaque digest produced by the password subsystem; it
// never leaves the authentication core.
type UserRecord struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
}

// CreateUserInput carries a new record into [UserDirectory.CreateUser].
// The password arrives pre-hashed; directories never see plaintext.
type CreateUserInput struct {
	Username     string
	FullName     string
	Email        string
	PasswordHash string
}

// PublicUser is the externally visible view of a credential: username and
// email only.
type PublicUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Principal is the authenticated identity resolved for a single request.
// It is a transient view over a [UserRecord], scoped to the request.
type Principal struct {
	UserID   string
	Username string
	FullName string
	Email    string
}

// RegisterRequest is the input to [Service.Register].
type RegisterRequest struct {
	Username string
	FullName string
	Email    string
	Password string
}

// LoginResult is returned by [Service.Login] on success.
type LoginResult struct {
	Username    string
	AccessToken string
}

// UserDirectory is the user-lookup collaborator the service composes with.
// Implementations must treat usernames and emails as unique, return
// [ErrUserNotFound] for missing records, and [ErrUsernameTaken] /
// [ErrEmailTaken] for uniqueness violations on create. Lookups may block on
// I/O; every method takes the request context.
type UserDirectory interface {
	GetUserByUsername(ctx context.Context, username string) (UserRecord, error)
	GetUserByID(ctx context.Context, id string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, id string, newHash string) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]UserRecord, error)
}
