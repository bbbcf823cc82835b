package token

import (
	"testing"

	"github.com/google/uuid"
)

func TestAdminTokenVerify(t *testing.T) {
	tok := NewAdminToken("secret-token")
	if !tok.Verify("secret-token") {
		t.Error("expected the configured token to verify")
	}
	for _, candidate := range []string{"", "secret", "Secret-Token", "secret-token "} {
		if tok.Verify(candidate) {
			t.Errorf("expected %q to be rejected", candidate)
		}
	}
}

func TestAdminTokenGenerated(t *testing.T) {
	tok := NewAdminToken("")
	if _, err := uuid.Parse(tok.value); err != nil {
		t.Fatalf("expected a generated uuid, got %q: %v", tok.value, err)
	}
	if !tok.Verify(tok.value) {
		t.Error("expected the generated token to verify")
	}
}
