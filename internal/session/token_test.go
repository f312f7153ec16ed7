package session

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestTokenExpired(t *testing.T) {
	expired := signedToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	valid := signedToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noExp := signedToken(t, jwt.MapClaims{"sub": "42"})

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"expired token", expired, true},
		{"valid token", valid, false},
		{"token without exp never pre-refreshes", noExp, false},
		{"garbage is treated as expired", "not.a.jwt", true},
		{"empty string is treated as expired", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenExpired(tt.token); got != tt.want {
				t.Errorf("tokenExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenSubject(t *testing.T) {
	numeric := signedToken(t, jwt.MapClaims{"sub": "42"})
	textual := signedToken(t, jwt.MapClaims{"sub": "ana@example.com"})
	noSub := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	tests := []struct {
		name  string
		token string
		want  int64
	}{
		{"numeric subject", numeric, 42},
		{"non-numeric subject", textual, 0},
		{"missing subject", noSub, 0},
		{"garbage token", "nope", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenSubject(tt.token); got != tt.want {
				t.Errorf("tokenSubject() = %d, want %d", got, tt.want)
			}
		})
	}
}
