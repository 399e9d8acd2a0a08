package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"))

	token, err := codec.Issue("user-123", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token %q is not a three-part JWT", token)
	}

	subject, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "user-123" {
		t.Errorf("subject = %q, want user-123", subject)
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	codec := NewTokenCodec([]byte("test-secret")).WithClock(func() time.Time { return issued })
	token, err := codec.Issue("user-123", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Within the TTL the token verifies.
	codec.WithClock(func() time.Time { return issued.Add(30 * time.Minute) })
	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("Verify within TTL: %v", err)
	}

	// Past issuedAt+ttl it fails with the expiry error specifically.
	codec.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify after TTL: err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenCodec_ZeroTTL(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	codec := NewTokenCodec([]byte("test-secret")).WithClock(func() time.Time { return issued })
	token, err := codec.Issue("user-123", 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// A ttl=0 token is already expired on the very next verification.
	codec.WithClock(func() time.Time { return issued.Add(time.Nanosecond) })
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify: err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenCodec_Tampered(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"))

	token, err := codec.Issue("user-123", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Flip one character at a time across payload and signature. Every variant
	// must fail as malformed or signature-invalid, never verify.
	parts := strings.SplitN(token, ".", 3)
	start := len(parts[0]) + 1
	for i := start; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		flip := byte('A')
		if token[i] == 'A' {
			flip = 'B'
		}
		tampered := token[:i] + string(flip) + token[i+1:]
		if tampered == token {
			continue
		}
		_, err := codec.Verify(tampered)
		if err == nil {
			t.Fatalf("tampered token at index %d verified", i)
		}
		if !errors.Is(err, ErrTokenSignature) && !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("tampered token at index %d: err = %v, want signature-invalid or malformed", i, err)
		}
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	token, err := NewTokenCodec([]byte("secret-a")).Issue("user-123", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := NewTokenCodec([]byte("secret-b")).Verify(token); !errors.Is(err, ErrTokenSignature) {
		t.Errorf("Verify with rotated secret: err = %v, want ErrTokenSignature", err)
	}
}

func TestTokenCodec_Garbage(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"))

	for _, garbage := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := codec.Verify(garbage); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q): err = %v, want ErrTokenMalformed", garbage, err)
		}
	}
}
