package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash must not equal plaintext")
	}
	if !h.Verify("correct-horse-battery", hash) {
		t.Error("Verify(correct password) = false, want true")
	}
	if h.Verify("wrong-password", hash) {
		t.Error("Verify(wrong password) = true, want false")
	}
}

func TestPasswordHasher_HashIsSalted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	h1, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same input are identical; salt missing")
	}
	if !h.Verify("same-input", h1) || !h.Verify("same-input", h2) {
		t.Error("both salted hashes should verify against the original input")
	}
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, malformed := range []string{"", "not-a-bcrypt-hash", "$2a$broken"} {
		if h.Verify("anything", malformed) {
			t.Errorf("Verify against malformed hash %q = true, want false", malformed)
		}
	}
}

func TestPasswordHasher_CostFallback(t *testing.T) {
	// Out-of-range costs must not panic; they fall back to the default.
	h := NewPasswordHasher(99)
	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Verify("pw", hash) {
		t.Error("Verify = false, want true")
	}
}
