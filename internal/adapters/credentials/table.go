// Package credentials provides the static credential table used to validate logins.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

var _ ports.CredentialValidator = (*Table)(nil)

// DemoSecret is the shared password of the built-in demo accounts.
const DemoSecret = "password123"

// maxSecretBytes is the longest secret bcrypt can distinguish; longer input is
// silently truncated by the algorithm.
const maxSecretBytes = 72

// Entry is one row of the credential table. Secret is plaintext unless Hashed is
// set, in which case it must be a bcrypt hash such as the output of HashSecret.
// A plaintext secret is never interpreted as a hash, whatever it looks like.
type Entry struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Secret string          `json:"secret"`
	Hashed bool            `json:"hashed,omitempty"`
	Role   domainauth.Role `json:"role"`
}

// Config controls how the table is built.
type Config struct {
	Entries []Entry
	// Cost is the bcrypt cost used to hash plaintext secrets. Defaults to bcrypt.DefaultCost.
	Cost int
}

type row struct {
	identity domainauth.Identity
	hash     []byte
}

// Table validates credentials against a fixed set of accounts.
// Emails match exactly; no case folding or trimming is applied.
type Table struct {
	rows  map[string]row
	order []string
	// dummy is compared when the email is unknown so both failure paths cost one bcrypt comparison.
	dummy []byte
}

// DemoEntries returns the built-in demo accounts.
func DemoEntries() []Entry {
	return []Entry{
		{ID: "1", Name: "Committee Admin", Email: "committee@somaiya.edu", Secret: DemoSecret, Role: domainauth.RoleCommitteeHead},
		{ID: "2", Name: "Student User", Email: "student@somaiya.edu", Secret: DemoSecret, Role: domainauth.RoleStudent},
		{ID: "3", Name: "Exam Cell Admin", Email: "examcell@somaiya.edu", Secret: DemoSecret, Role: domainauth.RoleExamCell},
	}
}

// LoadFile reads table entries from a JSON array on disk.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	return entries, nil
}

// NewTable hashes plaintext secrets and indexes entries by email.
// It rejects duplicate emails and entries that would not form a valid identity.
func NewTable(cfg Config) (*Table, error) {
	if len(cfg.Entries) == 0 {
		return nil, errors.New("credentials: at least one entry is required")
	}
	cost := cfg.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("credentials: bcrypt cost %d out of range", cost)
	}

	t := &Table{rows: make(map[string]row, len(cfg.Entries))}
	for i, e := range cfg.Entries {
		identity := domainauth.Identity{ID: e.ID, Name: e.Name, Email: e.Email, Role: e.Role}
		if err := identity.Validate(); err != nil {
			return nil, fmt.Errorf("credentials: entry %d: %w", i, err)
		}
		if _, dup := t.rows[e.Email]; dup {
			return nil, fmt.Errorf("credentials: duplicate email %q", e.Email)
		}
		if e.Secret == "" {
			return nil, fmt.Errorf("credentials: entry %d: secret is required", i)
		}
		hash, err := entryHash(e, cost)
		if err != nil {
			return nil, fmt.Errorf("credentials: entry %d: %w", i, err)
		}
		t.rows[e.Email] = row{identity: identity, hash: hash}
		t.order = append(t.order, e.Email)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("kj-connect-unknown-account"), cost)
	if err != nil {
		return nil, fmt.Errorf("credentials: hash placeholder: %w", err)
	}
	t.dummy = dummy
	return t, nil
}

// Validate returns the identity whose email and secret both match.
// Any mismatch yields apperrors.ErrInvalidCredential.
func (t *Table) Validate(_ context.Context, email, secret string) (domainauth.Identity, error) {
	r, ok := t.rows[email]
	hash := t.dummy
	if ok {
		hash = r.hash
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(secret))
	if !ok || err != nil || len(secret) > maxSecretBytes {
		return domainauth.Identity{}, apperrors.ErrInvalidCredential
	}
	return r.identity, nil
}

// Accounts lists the public identities in table order.
func (t *Table) Accounts() []domainauth.Identity {
	out := make([]domainauth.Identity, 0, len(t.order))
	for _, email := range t.order {
		out = append(out, t.rows[email].identity)
	}
	return out
}

// HashSecret returns a bcrypt hash suitable for a credentials file.
func HashSecret(secret string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

func entryHash(e Entry, cost int) ([]byte, error) {
	if e.Hashed {
		if !isBcryptHash(e.Secret) {
			return nil, errors.New("secret is marked hashed but is not a bcrypt hash")
		}
		return []byte(e.Secret), nil
	}
	if len(e.Secret) > maxSecretBytes {
		return nil, fmt.Errorf("secret exceeds %d bytes", maxSecretBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(e.Secret), cost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	return hash, nil
}

func isBcryptHash(s string) bool {
	if !strings.HasPrefix(s, "$2a$") && !strings.HasPrefix(s, "$2b$") && !strings.HasPrefix(s, "$2y$") {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
