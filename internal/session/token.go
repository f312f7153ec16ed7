package session

import (
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// tokenSubject returns the numeric sub claim, 0 when absent or unreadable.
// The backend issues tokens with the operator id as subject; this is the
// fallback identity when the cached profile predates the id field.
func tokenSubject(token string) int64 {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return 0
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// tokenExpired inspects the access token's exp claim without verifying the
// signature. Verification is the server's job; the client only wants to
// skip a request it knows will bounce. Unreadable tokens are treated as
// expired so the refresh path decides.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
