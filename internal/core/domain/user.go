package domain

import "golang.org/x/crypto/bcrypt"

// User models an authenticated actor of the catalog. A zero ID marks a
// transient user that has not been persisted yet; the repository assigns
// the identity on first save.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

// NewUser builds a transient user. The plaintext password is hashed
// immediately and never retained.
func NewUser(username, email, password string, role Role) (*User, error) {
	u := &User{Username: username, Email: email, Role: RoleReader}
	if err := u.SetRole(role.String()); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash with a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// ValidatePassword reports whether password matches the stored hash.
func (u *User) ValidatePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetRole parses and assigns a role token. A role change affects tokens
// issued afterwards only; already-issued tokens keep their scopes.
func (u *User) SetRole(role string) error {
	r, err := RoleFromString(role)
	if err != nil {
		return err
	}
	u.Role = r
	return nil
}

// HasRole reports whether the user is granted the given capability.
func (u *User) HasRole(role Role) bool {
	return u.Role.Grants(role)
}

// Roles returns the full capability set granted by the user's role.
func (u *User) Roles() []Role {
	return u.Role.Capabilities()
}

// UserEnvelope is the tagged JSON wrapper used on the wire: {"user": {...}}.
type UserEnvelope struct {
	User *User `json:"user"`
}
