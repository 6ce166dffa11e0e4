package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aciencia/catalog-system/internal/core/domain"
)

// Claims is the token payload: the registered JWT claims plus the granted
// scope set. Tokens are bearer capabilities — immutable once issued, valid
// for any holder until expiry.
type Claims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes"`
}

// HasBeenIssuedBy reports whether the token names issuer as its iss claim.
func (c *Claims) HasBeenIssuedBy(issuer string) bool {
	return c.Issuer == issuer
}

// IsPermittedFor reports whether clientID appears in the aud claim.
func (c *Claims) IsPermittedFor(clientID string) bool {
	for _, aud := range c.Audience {
		if aud == clientID {
			return true
		}
	}
	return false
}

// IsRelatedTo reports whether the token's subject is username.
func (c *Claims) IsRelatedTo(username string) bool {
	return c.Subject == username
}

// HasScope reports whether the granted scope set contains the role.
func (c *Claims) HasScope(role domain.Role) bool {
	for _, s := range c.Scopes {
		if s == role.String() {
			return true
		}
	}
	return false
}

// TokenService issues and validates signed bearer tokens. The signing key
// and claim configuration are fixed at construction and never mutated, so
// the service is safe for concurrent use without coordination.
type TokenService struct {
	secret   []byte
	issuer   string
	clientID string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService builds a TokenService from the process configuration.
// A non-positive lifetime or an empty secret is a configuration error.
func NewTokenService(secret, issuer, clientID string, lifetimeSeconds int) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token service: empty signing key")
	}
	if lifetimeSeconds <= 0 {
		return nil, errors.New("token service: lifetime must be a positive number of seconds")
	}
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		clientID: clientID,
		lifetime: time.Duration(lifetimeSeconds) * time.Second,
		now:      time.Now,
	}, nil
}

// Lifetime returns the configured token lifetime in seconds.
func (s *TokenService) Lifetime() int {
	return int(s.lifetime / time.Second)
}

// SplitScopeParam splits the wire scope parameter into its role tokens.
// The joiner is "+", which form decoding turns into a space, so both
// delimiters are accepted. Empty tokens are dropped.
func SplitScopeParam(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == '+' || r == ' '
	})
}

// NegotiateScopes computes the effective scope set for a subject holding
// role. An empty request grants the role's full capability set. A
// non-empty request is validated token by token, deduplicated and
// intersected with the capability set; an empty intersection is
// domain.ErrNoGrantableScope. Any successful grant includes reader, since
// every grantable scope implies it. The result is duplicate-free and in
// canonical reader-before-writer order regardless of request order.
func NegotiateScopes(role domain.Role, requested []string) ([]domain.Role, error) {
	caps := role.Capabilities()
	if len(requested) == 0 {
		return caps, nil
	}

	wanted := make(map[domain.Role]bool, len(requested))
	for _, token := range requested {
		r, err := domain.RoleFromString(token)
		if err != nil {
			return nil, err
		}
		wanted[r] = true
	}

	granted := make([]domain.Role, 0, len(caps))
	for _, c := range caps {
		if wanted[c] {
			granted = append(granted, c)
		}
	}
	if len(granted) == 0 {
		return nil, domain.ErrNoGrantableScope
	}
	if granted[0] != domain.RoleReader {
		granted = append([]domain.Role{domain.RoleReader}, granted...)
	}
	return granted, nil
}

// Issue signs a token for the user with the scopes negotiated from the raw
// scope parameter.
func (s *TokenService) Issue(user *domain.User, scopeParam string) (string, *Claims, error) {
	granted, err := NegotiateScopes(user.Role, SplitScopeParam(scopeParam))
	if err != nil {
		return "", nil, err
	}

	scopes := make([]string, len(granted))
	for i, r := range granted {
		scopes[i] = r.String()
	}

	now := s.now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.clientID},
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.NewString(),
		},
		Scopes: scopes,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies a raw token and returns its claims. Failures keep their
// kind: structural problems are domain.ErrMalformedToken, signature
// mismatches domain.ErrSignatureInvalid, and past-expiry tokens
// domain.ErrTokenExpired.
func (s *TokenService) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrSignatureInvalid
		default:
			return nil, domain.ErrMalformedToken
		}
	}
	if !token.Valid {
		return nil, domain.ErrMalformedToken
	}
	return claims, nil
}

// Validate collapses the three parse failure kinds into a single error
// contract: nil means the token is structurally sound, correctly signed
// and unexpired.
func (s *TokenService) Validate(raw string) error {
	_, err := s.Parse(raw)
	return err
}
