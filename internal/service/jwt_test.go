package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	tok, err := GenerateJWT("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	uid, err := ParseJWT(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != "user-1" {
		t.Fatalf("expected user-1 got %s", uid)
	}
}

func TestParseJWTRejects(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	sign := func(secret string, c claims, method jwt.SigningMethod) string {
		s, err := jwt.NewWithClaims(method, c).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	now := time.Now()
	valid := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign("other", claims{UserID: "u", RegisteredClaims: valid}, jwt.SigningMethodHS256),
		"expired": sign("test-secret", claims{UserID: "u", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		}}, jwt.SigningMethodHS256),
		"no expiry":  sign("test-secret", claims{UserID: "u"}, jwt.SigningMethodHS256),
		"empty user": sign("test-secret", claims{RegisteredClaims: valid}, jwt.SigningMethodHS256),
		"not yet valid": sign("test-secret", claims{UserID: "u", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
			NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
		}}, jwt.SigningMethodHS256),
	}
	for name, tok := range cases {
		if _, err := ParseJWT(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken got %v", name, err)
		}
	}
}
