package auth

import (
	"testing"
	"time"
)

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := m.Generate(42, "alice@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, _ := NewManager("secret-a", time.Hour)
	verifier, _ := NewManager("secret-b", time.Hour)

	token, err := signer.Generate(1, "a@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour)
	m.ttl = -time.Hour // backdate expiry

	token, err := m.Generate(1, "a@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatal("expired token must not verify")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour)
	if _, err := m.Verify("not-a-token"); err == nil {
		t.Fatal("garbage must not verify")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("", time.Hour); err == nil {
		t.Fatal("empty secret must be rejected")
	}
}
