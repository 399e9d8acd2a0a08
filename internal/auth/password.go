package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt. bcrypt embeds a
// fresh random salt in every hash, so hashing the same password twice yields
// different outputs, and CompareHashAndPassword runs in constant time.
type PasswordHasher struct {
	cost  int
	dummy string
}

// NewPasswordHasher returns a hasher with the given work factor. Costs outside
// bcrypt's supported range fall back to cost 12.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	h := &PasswordHasher{cost: cost}
	// Hashed once up front so DummyVerify costs the same as a real verify
	// at this work factor. GenerateFromPassword fails only on an
	// out-of-range cost, which the clamp above rules out.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("capsule-dummy-credential"), cost)
	h.dummy = string(dummy)
	return h
}

// Hash returns the bcrypt hash of plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed hash verifies
// false rather than surfacing an error.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// DummyVerify burns the same CPU as a failed Verify. The login path calls it
// when no user matches the email, so an unknown email cannot be told apart
// from a wrong password by response timing.
func (h *PasswordHasher) DummyVerify(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(h.dummy), []byte(plaintext))
}
