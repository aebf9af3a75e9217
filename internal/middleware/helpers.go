// internal/middleware/helpers.go
package middleware

import (
	"tripreel-service/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

// PrincipalFrom gets the bound principal from the gin context
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// MustGetSubject gets the authenticated account id or panics.
// Only call it behind a route the Policy guards.
func MustGetSubject(c *gin.Context) string {
	p, ok := PrincipalFrom(c)
	if !ok {
		panic("principal not found in context")
	}
	return p.Subject
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, ok := PrincipalFrom(c)
	return ok
}

// RoleFrom gets the role the Policy resolved for this request, if any
func RoleFrom(c *gin.Context) (auth.Role, bool) {
	v, exists := c.Get(roleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(auth.Role)
	return role, ok
}
