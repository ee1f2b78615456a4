// Package auth contains domain-level types for identities, roles, and route policies.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Role represents a portal permission tier.
// Keep string form for easy persistence in session records.
type Role string

const (
	RoleUnauthenticated Role = "unauthenticated"
	RoleStudent         Role = "student"
	RoleCommitteeHead   Role = "committee-head"
	RoleExamCell        Role = "exam-cell"
)

// Roles lists the roles an authenticated identity may hold.
func Roles() []Role {
	return []Role{RoleStudent, RoleCommitteeHead, RoleExamCell}
}

// Valid reports whether r is one of the closed set of roles, including unauthenticated.
func (r Role) Valid() bool {
	return r == RoleUnauthenticated || slices.Contains(Roles(), r)
}

// Authenticated reports whether r is a role held by a logged-in identity.
func (r Role) Authenticated() bool {
	return r != RoleUnauthenticated && r.Valid()
}

// Label returns a human readable role name.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleCommitteeHead:
		return "Committee Head"
	case RoleExamCell:
		return "Exam Cell"
	case RoleUnauthenticated:
		return "Guest"
	default:
		return string(r)
	}
}

// UnmarshalText parses a role, accepting any casing and surrounding whitespace.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole converts a string to a Role.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return role, nil
}

// Identity is the authenticated principal held by a session.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// Validate enforces that authenticated identities carry an id and email.
func (i Identity) Validate() error {
	if !i.Role.Authenticated() {
		return fmt.Errorf("identity role %q is not an authenticated role", i.Role)
	}
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("identity id is required")
	}
	if strings.TrimSpace(i.Email) == "" {
		return fmt.Errorf("identity email is required")
	}
	return nil
}

// HasRole reports whether the identity holds any of the given roles.
func (i Identity) HasRole(roles ...Role) bool {
	return slices.Contains(roles, i.Role)
}

// Record is the persisted form of an Identity. It never carries a secret.
type Record struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewRecord converts an identity into its persisted form.
func NewRecord(i Identity) Record {
	return Record{ID: i.ID, Name: i.Name, Email: i.Email, Role: i.Role}
}

// Identity converts a record back into an identity.
func (r Record) Identity() Identity {
	return Identity{ID: r.ID, Name: r.Name, Email: r.Email, Role: r.Role}
}

// EncodeRecord serializes an identity for the session slot.
func EncodeRecord(i Identity) ([]byte, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(NewRecord(i))
}

// DecodeRecord parses and validates a persisted session record.
func DecodeRecord(data []byte) (Identity, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Identity{}, fmt.Errorf("decode session record: %w", err)
	}
	id := rec.Identity()
	if err := id.Validate(); err != nil {
		return Identity{}, fmt.Errorf("invalid session record: %w", err)
	}
	return id, nil
}

// Policy declares which roles may reach a protected view.
// An empty AllowedRoles means any authenticated identity.
type Policy struct {
	AllowedRoles []Role
}

// AnyAuthenticated is the policy that admits every logged-in identity.
var AnyAuthenticated = Policy{}

// RequireRoles builds a policy restricted to the given roles.
func RequireRoles(roles ...Role) Policy {
	return Policy{AllowedRoles: slices.Clone(roles)}
}

// Permits reports whether role satisfies the policy's role allow-list.
// It does not check authentication.
func (p Policy) Permits(role Role) bool {
	if len(p.AllowedRoles) == 0 {
		return true
	}
	return slices.Contains(p.AllowedRoles, role)
}
