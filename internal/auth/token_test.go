package auth

import (
	"testing"
	"time"
)

var secret = []byte("test-secret")

func validClaims() Claims {
	return Claims{
		Sub:  "user-1",
		Name: "Alice",
		JTI:  "jti-1",
		Exp:  time.Now().Add(time.Hour).Unix(),
	}
}

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(secret, validClaims())
	if err != nil {
		t.Fatalf("IssueToken err: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken err: %v", err)
	}
	if claims.Sub != "user-1" || claims.Name != "Alice" {
		t.Fatalf("claims round trip failed: %+v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _ := IssueToken(secret, validClaims())

	if _, err := ParseToken([]byte("other-secret"), token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	claims := validClaims()
	claims.Exp = time.Now().Add(-time.Minute).Unix()
	token, _ := IssueToken(secret, claims)

	if _, err := ParseToken(secret, token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	for _, token := range []string{"", "x", "a.b.c", "not-base64.!!"} {
		if _, err := ParseToken(secret, token); err != ErrInvalidToken {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
