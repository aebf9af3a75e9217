// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the bearer token payload. Only the subject (account id) is
// asserted; roles are resolved per request from the identity store.
type Claims struct {
	jwt.RegisteredClaims
}
