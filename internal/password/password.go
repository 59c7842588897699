// Package password encodes and verifies account passwords.
//
// Encoded passwords have the form "<algorithm>$<algorithm-specific fields>".
// The first hasher handed to a Manager is the preferred one: new passwords
// are encoded with it and passwords stored with any other registered hasher
// are reported as needing an update after a successful check.
//
// A value starting with "!" is an unusable password. It never matches any
// input and is assigned to accounts created without a password.
package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	unusablePrefix       = "!"
	unusableSuffixLength = 40
	saltChars            = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown password hashing algorithm")
	ErrMalformed        = errors.New("malformed encoded password")
	ErrNoHashers        = errors.New("no password hashers configured")
)

// Hasher is one password hashing algorithm.
type Hasher interface {
	// Algorithm is the prefix written before the first "$".
	Algorithm() string
	// Encode hashes password with a fresh salt.
	Encode(password string) (string, error)
	// Verify reports whether password matches the encoded value.
	Verify(password, encoded string) (bool, error)
	// MustUpdate reports whether encoded was produced with weaker
	// parameters than the hasher is currently configured for.
	MustUpdate(encoded string) bool
	// Describe returns the masked components of encoded for display.
	Describe(encoded string) map[string]string
}

// Manager selects a Hasher by algorithm prefix.
type Manager struct {
	hashers []Hasher
	byName  map[string]Hasher
}

// NewManager builds a manager. The first hasher is the preferred one.
func NewManager(hashers ...Hasher) (*Manager, error) {
	if len(hashers) == 0 {
		return nil, ErrNoHashers
	}
	m := &Manager{hashers: hashers, byName: make(map[string]Hasher, len(hashers))}
	for _, h := range hashers {
		m.byName[h.Algorithm()] = h
	}
	return m, nil
}

// New builds a manager with both built-in hashers, preferring the one
// named by preferred ("bcrypt_sha256" when empty).
func New(preferred string, bcryptCost, pbkdf2Iterations int) (*Manager, error) {
	bc := NewBcryptSHA256(bcryptCost)
	pb := NewPBKDF2SHA256(pbkdf2Iterations)
	switch preferred {
	case "", bc.Algorithm():
		return NewManager(bc, pb)
	case pb.Algorithm():
		return NewManager(pb, bc)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, preferred)
}

// Preferred returns the hasher used for new passwords.
func (m *Manager) Preferred() Hasher { return m.hashers[0] }

// Make encodes password with the preferred hasher.
func (m *Manager) Make(password string) (string, error) {
	return m.Preferred().Encode(password)
}

// MakeUnusable returns a random value that IsUsable reports false for.
func (m *Manager) MakeUnusable() (string, error) {
	s, err := randomString(unusableSuffixLength)
	if err != nil {
		return "", err
	}
	return unusablePrefix + s, nil
}

// Check verifies password against encoded. mustUpdate is true when the
// password matched but encoded should be re-hashed with the preferred
// hasher or its current parameters.
func (m *Manager) Check(password, encoded string) (ok, mustUpdate bool, err error) {
	if !IsUsable(encoded) {
		return false, false, nil
	}
	h, err := m.hasherFor(encoded)
	if err != nil {
		return false, false, err
	}
	ok, err = h.Verify(password, encoded)
	if err != nil || !ok {
		return false, false, err
	}
	preferred := m.Preferred()
	mustUpdate = h.Algorithm() != preferred.Algorithm() || preferred.MustUpdate(encoded)
	return true, mustUpdate, nil
}

// Summary describes encoded for display without revealing the hash.
func (m *Manager) Summary(encoded string) map[string]string {
	if encoded == "" || !IsUsable(encoded) {
		return map[string]string{"status": "no password set"}
	}
	h, err := m.hasherFor(encoded)
	if err != nil {
		return map[string]string{"status": "invalid password format or unknown hashing algorithm"}
	}
	return h.Describe(encoded)
}

func (m *Manager) hasherFor(encoded string) (Hasher, error) {
	algo, _, found := strings.Cut(encoded, "$")
	if !found {
		return nil, ErrMalformed
	}
	h, ok := m.byName[algo]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algo)
	}
	return h, nil
}

// IsUsable reports whether encoded can ever match a password.
func IsUsable(encoded string) bool {
	return encoded != "" && !strings.HasPrefix(encoded, unusablePrefix)
}

// mask keeps the first n characters of s and replaces the rest with "*".
func mask(s string, n int) string {
	if len(s) <= n {
		return strings.Repeat("*", len(s))
	}
	return s[:n] + strings.Repeat("*", len(s)-n)
}

func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(saltChars)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate random string: %w", err)
		}
		b[i] = saltChars[idx.Int64()]
	}
	return string(b), nil
}
