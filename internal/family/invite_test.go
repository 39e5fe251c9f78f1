package family

import (
	"testing"
)

func TestInviteSigner(t *testing.T) {
	signer := NewInviteSigner("test-secret")

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := signer.Sign("fam-1")
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		familyID, err := signer.Verify(token)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if familyID != "fam-1" {
			t.Errorf("Expected family 'fam-1', got '%s'", familyID)
		}
	})

	t.Run("WrongSecretRejected", func(t *testing.T) {
		token, err := signer.Sign("fam-1")
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		other := NewInviteSigner("other-secret")
		if _, err := other.Verify(token); err == nil {
			t.Fatal("Expected verification to fail with the wrong secret")
		}
	})

	t.Run("GarbageRejected", func(t *testing.T) {
		if _, err := signer.Verify("not.a.token"); err == nil {
			t.Fatal("Expected verification to fail for garbage input")
		}
	})
}
