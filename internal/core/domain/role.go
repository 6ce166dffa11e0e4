package domain

import "strings"

// Role is the closed set of capability levels a user can hold.
// Writer subsumes reader; there is nothing below reader.
type Role string

const (
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
)

// RoleFromString parses a role token. Input is lowercased before matching;
// anything outside the closed set is rejected, never coerced to a default.
func RoleFromString(s string) (Role, error) {
	switch Role(strings.ToLower(s)) {
	case RoleReader:
		return RoleReader, nil
	case RoleWriter:
		return RoleWriter, nil
	default:
		return "", ErrInvalidRole
	}
}

// Grants reports whether a holder of r is granted the candidate capability.
// Reader is granted to any holder; writer only to writers.
func (r Role) Grants(candidate Role) bool {
	switch candidate {
	case RoleReader:
		return true
	case RoleWriter:
		return r == RoleWriter
	default:
		return false
	}
}

// Capabilities returns every role a holder of r is granted, in ascending
// order: [reader] or [reader, writer].
func (r Role) Capabilities() []Role {
	caps := make([]Role, 0, 2)
	for _, candidate := range []Role{RoleReader, RoleWriter} {
		if r.Grants(candidate) {
			caps = append(caps, candidate)
		}
	}
	return caps
}

func (r Role) String() string {
	return string(r)
}
