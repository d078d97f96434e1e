package security

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, errGenerate := GenerateToken("secret", 42, "alice", "alice@test.local", time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate token: %v", errGenerate)
	}

	claims, errParse := ParseToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.UserID != 42 || claims.Name != "alice" || claims.Email != "alice@test.local" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, errGenerate := GenerateToken("secret", 1, "x", "x@test.local", time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate token: %v", errGenerate)
	}
	if _, errParse := ParseToken("other-secret", token); errParse != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, errGenerate := GenerateToken("secret", 1, "x", "x@test.local", -time.Minute)
	if errGenerate != nil {
		t.Fatalf("generate token: %v", errGenerate)
	}
	if _, errParse := ParseToken("secret", token); errParse != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, errParse := ParseToken("secret", "not.a.jwt"); errParse != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}
