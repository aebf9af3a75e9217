// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenValidator checks a bearer token and returns its subject.
type TokenValidator interface {
	Validate(token string) (subject string, ok bool)
}

// Principal is the identity bound to an authenticated request. Authorities
// starts empty and is filled once by the Policy on role-gated routes.
type Principal struct {
	Subject     string
	Authorities []string
}

const (
	principalKey = "principal"
	roleKey      = "role"
)

type principalCtxKey struct{}

// Authenticator binds a Principal for requests carrying a valid bearer token.
// It never rejects a request; access decisions belong to the Policy.
type Authenticator struct {
	tokens    TokenValidator
	allowList []string
	logger    *zap.Logger
}

func NewAuthenticator(tokens TokenValidator, allowList []string, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		tokens:    tokens,
		allowList: append([]string(nil), allowList...),
		logger:    logger,
	}
}

// Handler returns the gin middleware.
func (a *Authenticator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.allowed(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, ok := extractBearer(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		subject, valid := a.tokens.Validate(token)
		if !valid {
			a.logger.Debug("bearer token rejected, continuing anonymous",
				zap.String("path", c.Request.URL.Path),
			)
			c.Next()
			return
		}

		bind(c, Principal{Subject: subject, Authorities: []string{}})
		c.Next()
	}
}

func (a *Authenticator) allowed(path string) bool {
	for _, prefix := range a.allowList {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// extractBearer accepts exactly "Bearer <token>" with a non-empty token.
func extractBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func bind(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), principalCtxKey{}, p))
}

// PrincipalFromContext returns the principal bound to a request context, for
// code below the HTTP layer.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}
