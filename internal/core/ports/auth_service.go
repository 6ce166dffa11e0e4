package ports

import "context"

// LoginResult is the successful token-issuance payload.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	// Scopes is the effective scope set granted to the token, for
	// logging and metrics at the transport layer.
	Scopes []string
}

// AuthService authenticates credentials and issues bearer tokens.
// scope is the raw requested-scope parameter from the login form
// (delimiter-joined role tokens, possibly empty).
type AuthService interface {
	Login(ctx context.Context, username, password, scope string) (*LoginResult, error)
}

// LoginThrottle rate-limits credential guessing per username.
type LoginThrottle interface {
	// TooMany reports whether the username has exhausted its failed-attempt
	// budget for the current window.
	TooMany(ctx context.Context, username string) (bool, error)
	// NoteFailure records one failed attempt.
	NoteFailure(ctx context.Context, username string) error
	// Reset clears the failure counter after a successful login.
	Reset(ctx context.Context, username string) error
}
