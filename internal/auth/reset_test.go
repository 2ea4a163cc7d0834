package auth

import (
	"encoding/base64"
	"testing"
)

func TestGenerateResetToken_Entropy(t *testing.T) {
	token, hash, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not URL-safe base64: %v", err)
	}
	if len(raw) != resetTokenBytes {
		t.Errorf("token carries %d bytes of entropy, want %d (untruncated)", len(raw), resetTokenBytes)
	}

	if hash != HashResetToken(token) {
		t.Error("returned hash does not match HashResetToken(token)")
	}
	if hash == token {
		t.Error("hash must differ from the plaintext token")
	}
}

func TestGenerateResetToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, _, err := GenerateResetToken()
		if err != nil {
			t.Fatalf("GenerateResetToken returned error: %v", err)
		}
		if seen[token] {
			t.Fatal("duplicate reset token generated")
		}
		seen[token] = true
	}
}

func TestHashResetToken_Deterministic(t *testing.T) {
	if HashResetToken("abc") != HashResetToken("abc") {
		t.Error("hashing the same token twice must yield the same storage hash")
	}
	if HashResetToken("abc") == HashResetToken("abd") {
		t.Error("different tokens must hash differently")
	}
}
