package session

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// CredentialExpiry reads the exp claim of a JWT credential without verifying
// the signature; only the backend can verify. Opaque tokens report ok=false.
func CredentialExpiry(credential string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
