package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/ports"
)

// AuthService authenticates credentials against the user store and issues
// bearer tokens through the token service.
type AuthService struct {
	users    ports.UserRepository
	tokens   *TokenService
	throttle ports.LoginThrottle
	log      zerolog.Logger
}

// NewAuthService wires the credential store, token service and the
// per-username login throttle. throttle may be nil to disable throttling.
func NewAuthService(users ports.UserRepository, tokens *TokenService, throttle ports.LoginThrottle, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, throttle: throttle, log: log}
}

// Login verifies the credentials and returns a signed token carrying the
// negotiated scopes. Unknown usernames and wrong passwords are both
// domain.ErrInvalidCredentials — the caller never learns which.
func (s *AuthService) Login(ctx context.Context, username, password, scope string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		blocked, err := s.throttle.TooMany(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle unavailable, continuing")
		} else if blocked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.noteFailure(ctx, username)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.ValidatePassword(password) {
		s.noteFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user, scope)
	if err != nil {
		return nil, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	s.log.Info().
		Str("subject", claims.Subject).
		Strs("scopes", claims.Scopes).
		Msg("token issued")

	return &ports.LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokens.Lifetime(),
		Scopes:      claims.Scopes,
	}, nil
}

func (s *AuthService) noteFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.NoteFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Msg("login throttle update failed")
	}
}
