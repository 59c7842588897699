package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2SaltLength        = 22
	DefaultPBKDF2Iterations = 600000
)

// PBKDF2SHA256 encodes passwords as
// "pbkdf2_sha256$<iterations>$<salt>$<base64 hash>".
type PBKDF2SHA256 struct {
	Iterations int
}

// NewPBKDF2SHA256 returns a hasher using iterations, or
// DefaultPBKDF2Iterations when iterations is not positive.
func NewPBKDF2SHA256(iterations int) *PBKDF2SHA256 {
	if iterations <= 0 {
		iterations = DefaultPBKDF2Iterations
	}
	return &PBKDF2SHA256{Iterations: iterations}
}

func (h *PBKDF2SHA256) Algorithm() string { return "pbkdf2_sha256" }

func (h *PBKDF2SHA256) Encode(password string) (string, error) {
	salt, err := randomString(pbkdf2SaltLength)
	if err != nil {
		return "", err
	}
	return h.encode(password, salt, h.Iterations), nil
}

func (h *PBKDF2SHA256) encode(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New)
	return strings.Join([]string{
		h.Algorithm(),
		strconv.Itoa(iterations),
		salt,
		base64.StdEncoding.EncodeToString(key),
	}, "$")
}

func (h *PBKDF2SHA256) Verify(password, encoded string) (bool, error) {
	parts, err := h.split(encoded)
	if err != nil {
		return false, err
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false, ErrMalformed
	}
	candidate := h.encode(password, parts[2], iterations)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(encoded)) == 1, nil
}

func (h *PBKDF2SHA256) MustUpdate(encoded string) bool {
	parts, err := h.split(encoded)
	if err != nil {
		return true
	}
	iterations, err := strconv.Atoi(parts[1])
	return err != nil || iterations != h.Iterations
}

func (h *PBKDF2SHA256) Describe(encoded string) map[string]string {
	parts, err := h.split(encoded)
	if err != nil {
		return map[string]string{"status": "invalid password format or unknown hashing algorithm"}
	}
	return map[string]string{
		"algorithm":  h.Algorithm(),
		"iterations": parts[1],
		"salt":       mask(parts[2], 6),
		"hash":       mask(parts[3], 6),
	}
}

func (h *PBKDF2SHA256) split(encoded string) ([]string, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != h.Algorithm() {
		return nil, ErrMalformed
	}
	return parts, nil
}
