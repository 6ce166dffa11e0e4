package domain

import "errors"

// Role / scope negotiation.
var ErrInvalidRole = errors.New("invalid role")
var ErrNoGrantableScope = errors.New("no grantable scope")

// Token parsing and validation.
var ErrMalformedToken = errors.New("malformed token")
var ErrSignatureInvalid = errors.New("token signature invalid")
var ErrTokenExpired = errors.New("token expired")

// Credentials.
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTooManyAttempts = errors.New("too many login attempts")

// Users.
var ErrUserNotFound = errors.New("user not found")
var ErrDuplicateUser = errors.New("username or email already in use")
var ErrMissingUserData = errors.New("missing username, email or password")

// Catalog elements and relationships.
var ErrElementNotFound = errors.New("element not found")
var ErrRelatedNotFound = errors.New("related element not found")
var ErrUnpersistedEntity = errors.New("element has no persisted identity")
var ErrMissingElementName = errors.New("missing element name")

// Conditional request protocol.
var ErrPreconditionRequired = errors.New("precondition required")
var ErrPreconditionFailed = errors.New("precondition failed")
