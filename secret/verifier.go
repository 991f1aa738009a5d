package secret

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"
)

// ErrEmptySecret is returned when hashing an empty secret.
var ErrEmptySecret = errors.New("secret must not be empty")

// Verifier compares a presented secret with the stored representation.
// A (false, nil) result is a mismatch; errors mean the stored value is unusable.
type Verifier interface {
	Verify(presented, stored string) (bool, error)
}

// Hasher produces a stored representation for a new secret.
type Hasher interface {
	Hash(secret string) (string, error)
}

// Plain compares stored plaintext secrets. Both sides are digested first so
// the comparison time depends on neither length nor content.
type Plain struct{}

// Verify implements [Verifier].
func (Plain) Verify(presented, stored string) (bool, error) {
	a := sha256.Sum256([]byte(presented))
	b := sha256.Sum256([]byte(stored))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1, nil
}

// Hash returns the secret unchanged.
func (Plain) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	return secret, nil
}

// Auto verifies argon2id PHC strings with Argon and everything else as plaintext,
// so legacy and hashed records can coexist in one store.
type Auto struct {
	Argon *Argon2
}

// IsHashed reports whether stored is an argon2id PHC string.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$"+algorithmID+"$")
}

// Verify implements [Verifier].
func (a Auto) Verify(presented, stored string) (bool, error) {
	if IsHashed(stored) {
		argon := a.Argon
		if argon == nil {
			argon = defaultArgon
		}
		return argon.Verify(presented, stored)
	}
	return Plain{}.Verify(presented, stored)
}
