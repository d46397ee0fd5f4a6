package auth

import (
	"strings"
	"testing"
	"time"
)

// newTestTokenService creates a TokenService for testing.
// It uses a fixed, known secret so tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", 0)
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_ZeroTTLUsesDefault(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error: %v", err)
	}
	if ts.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", ts.ttl, DefaultTokenTTL)
	}
}

// =========================================================================
// GENERATE TESTS
// =========================================================================

func TestGenerate_ReturnsNonEmptyToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("alice@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Error("Generate() returned empty token")
	}

	// JWT tokens have 3 dot-separated parts: header.payload.signature
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("Generate() token doesn't look like a JWT (got %d parts)", len(parts))
	}
}

func TestGenerate_DifferentSubjectsGetDifferentTokens(t *testing.T) {
	ts := newTestTokenService(t)

	token1, _ := ts.Generate("alice@example.com")
	token2, _ := ts.Generate("bob@example.com")

	if token1 == token2 {
		t.Error("Generate() returned identical tokens for different subjects")
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	email := "alice@example.com"

	token, err := ts.Generate(email)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != email {
		t.Errorf("Validate() subject = %q, want %q", got, email)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	// Issue a token that expired one minute ago
	token, err := ts.GenerateWithDuration("alice@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject an expired token")
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate("alice@example.com")

	// Flip a character in the payload section — the signature no longer matches
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}

	if _, err := ts.Validate(string(tampered)); err == nil {
		t.Fatal("Validate() should reject a tampered token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1 := newTestTokenService(t)
	ts2, err := NewTokenService("a-completely-different-secret!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, _ := ts1.Generate("alice@example.com")

	if _, err := ts2.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token signed with a different secret")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ts.Validate(bad); err == nil {
			t.Errorf("Validate(%q) should fail", bad)
		}
	}
}
