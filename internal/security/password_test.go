package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, errHash := HashPassword("changeme")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if hash == "changeme" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "changeme") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}
