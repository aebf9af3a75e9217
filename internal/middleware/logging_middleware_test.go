package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tripreel-service/internal/domain/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p, err := NewPolicy(testRules, stubRoles{"root": auth.RoleAdmin}, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	r.Use(LoggingMiddleware(zap.New(core)), func(c *gin.Context) {
		if s := c.GetHeader("X-Subject"); s != "" {
			bind(c, Principal{Subject: s, Authorities: []string{}})
		}
		c.Next()
	}, p.Authorize())
	r.Any("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/users/x/role", nil)
	req.Header.Set("X-Subject", "root")
	r.ServeHTTP(httptest.NewRecorder(), req)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	admin := entries[0]
	assert.Equal(t, zapcore.InfoLevel, admin.Level)
	assert.Equal(t, "root", admin.ContextMap()["subject"])
	assert.Equal(t, "ADMIN", admin.ContextMap()["role"])

	anon := entries[1]
	assert.Equal(t, zapcore.WarnLevel, anon.Level)
	assert.Equal(t, int64(http.StatusUnauthorized), anon.ContextMap()["status"])
	assert.NotContains(t, anon.ContextMap(), "subject")
	assert.NotContains(t, anon.ContextMap(), "role")
}
