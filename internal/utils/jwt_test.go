package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessToken_RoundTrip(t *testing.T) {
	access, err := NewAccessToken("secret", 42, "alice", "U123456", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tok, err := jwt.Parse(access.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("token should parse as valid: %v", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
		t.Errorf("sub = %v, want 42", claims["sub"])
	}
	if claims["username"] != "alice" {
		t.Errorf("username = %v, want alice", claims["username"])
	}
	if claims["public_id"] != "U123456" {
		t.Errorf("public_id = %v, want U123456", claims["public_id"])
	}
}

func TestNewAccessToken_Expiry(t *testing.T) {
	access, err := NewAccessToken("secret", 1, "a", "U1", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Now().UTC().Add(24 * time.Hour)
	if d := access.Exp.Sub(want); d < -time.Minute || d > time.Minute {
		t.Errorf("expiry = %v, want about %v", access.Exp, want)
	}
}

func TestNewAccessToken_WrongSecretRejected(t *testing.T) {
	access, err := NewAccessToken("secret", 1, "a", "U1", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok, err := jwt.Parse(access.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	if err == nil && tok.Valid {
		t.Fatal("token signed with a different secret must not validate")
	}
}
