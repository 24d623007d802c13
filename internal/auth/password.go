// password.go wraps the bcrypt primitive used for credential storage. Plaintext
// passwords exist only as function arguments here; they are never persisted or
// logged anywhere in the codebase.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a plaintext password does not match the
// stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

// dummyHash is a valid bcrypt hash of a random string. Login compares against
// it when no user record exists so the unknown-email and wrong-password paths
// cost roughly the same.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Hasher hashes and verifies passwords at a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Cost 10 matches the
// work factor the registration contract specifies; higher values are accepted
// for deployments that want a larger margin.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash generates a salted hash of the given plaintext password.
func (h *Hasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare validates the given plaintext password against a stored hash.
// Returns ErrPasswordMismatch on mismatch, other errors on malformed hashes.
func (h *Hasher) Compare(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return err
	}
	return nil
}

// CompareDummy burns a bcrypt comparison against a fixed hash. Called on the
// no-such-user login path so its latency resembles a real comparison.
func (h *Hasher) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
