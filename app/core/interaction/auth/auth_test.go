package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Issue("u-1", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	userID, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != "u-1" {
		t.Fatalf("unexpected user id: %q", userID)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewJWTVerifier("secret-a").Issue("u-1", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := NewJWTVerifier("secret-b").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, err := v.Issue("u-1", -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got: %v", err)
	}
}

func TestVerifyMissingIDClaim(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := v.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without an id claim, got: %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	for _, token := range []string{"", "   ", "not.a.token"} {
		if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got: %v", token, err)
		}
	}
}
