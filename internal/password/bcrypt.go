package password

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BcryptSHA256 hashes hex(SHA-256(password)) with bcrypt so that passwords
// longer than bcrypt's 72-byte input limit are not truncated.
type BcryptSHA256 struct {
	Cost int
}

// NewBcryptSHA256 returns a hasher using cost, or bcrypt.DefaultCost when
// cost is out of range.
func NewBcryptSHA256(cost int) *BcryptSHA256 {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptSHA256{Cost: cost}
}

func (h *BcryptSHA256) Algorithm() string { return "bcrypt_sha256" }

func (h *BcryptSHA256) Encode(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), h.Cost)
	if err != nil {
		return "", err
	}
	return h.Algorithm() + "$" + string(hashed), nil
}

func (h *BcryptSHA256) Verify(password, encoded string) (bool, error) {
	data, ok := strings.CutPrefix(encoded, h.Algorithm()+"$")
	if !ok {
		return false, ErrMalformed
	}
	err := bcrypt.CompareHashAndPassword([]byte(data), prehash(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (h *BcryptSHA256) MustUpdate(encoded string) bool {
	data, ok := strings.CutPrefix(encoded, h.Algorithm()+"$")
	if !ok {
		return true
	}
	cost, err := bcrypt.Cost([]byte(data))
	if err != nil {
		return true
	}
	return cost != h.Cost
}

func (h *BcryptSHA256) Describe(encoded string) map[string]string {
	data := strings.TrimPrefix(encoded, h.Algorithm()+"$")
	out := map[string]string{"algorithm": h.Algorithm()}
	if cost, err := bcrypt.Cost([]byte(data)); err == nil {
		out["work factor"] = strconv.Itoa(cost)
	}
	// $2a$<cost>$<22 char salt><31 char checksum>
	if parts := strings.Split(data, "$"); len(parts) == 4 && len(parts[3]) >= 22 {
		out["salt"] = mask(parts[3][:22], 6)
		out["checksum"] = mask(parts[3][22:], 6)
	}
	return out
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}
