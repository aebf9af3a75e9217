package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tripreel-service/internal/domain/auth"
	authHandler "tripreel-service/internal/handlers/auth"
	userHandler "tripreel-service/internal/handlers/user"
	"tripreel-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestDefaultRules(t *testing.T) {
	p, err := middleware.NewPolicy(DefaultRules(), fixedRoles{}, zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		want   middleware.Access
	}{
		{http.MethodGet, "/api/v1/health", middleware.Public},
		{http.MethodPost, "/api/v1/auth/sign-up", middleware.Public},
		{http.MethodPost, "/api/v1/auth/sign-up/validate", middleware.Public},
		{http.MethodPost, "/api/v1/auth/sign-in", middleware.Public},
		{http.MethodGet, "/api/v1/boards/12", middleware.Public},
		{http.MethodPost, "/api/v1/boards", middleware.Authenticated},
		{http.MethodGet, "/api/v1/videos", middleware.Public},
		{http.MethodGet, "/api/v1/users/me", middleware.Authenticated},
		{http.MethodPatch, "/api/v1/users/me/password", middleware.Authenticated},
		{http.MethodPatch, "/api/v1/admin/users/traveler01/role", middleware.RequireRole(auth.RoleAdmin)},
		{http.MethodGet, "/api/v1/reports", middleware.Authenticated},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Decide(tt.method, tt.path), tt.method+" "+tt.path)
	}
}

// fixedRoles resolves every subject named "root" as ADMIN and everyone else as USER.
type fixedRoles struct{}

func (fixedRoles) Resolve(_ context.Context, id string) (auth.Role, error) {
	if id == "root" {
		return auth.RoleAdmin, nil
	}
	return auth.RoleUser, nil
}

type subjectToken struct{}

func (subjectToken) Validate(token string) (string, bool) { return token, token != "" }

type noopAuth struct{}

func (noopAuth) ValidateID(context.Context, string) error { return nil }
func (noopAuth) SignUp(context.Context, *auth.SignUpRequest) error { return nil }
func (noopAuth) SignIn(context.Context, *auth.SignInRequest) (*auth.SignInResponse, error) {
	return &auth.SignInResponse{Token: "t", ExpirationTime: 3600}, nil
}

type noopUsers struct{}

func (noopUsers) GetMe(_ context.Context, id string) (*auth.Identity, error) {
	return &auth.Identity{ID: id}, nil
}
func (noopUsers) PatchProfile(_ context.Context, id string, _ auth.ProfilePatch) (*auth.Identity, error) {
	return &auth.Identity{ID: id}, nil
}
func (noopUsers) ChangePassword(context.Context, string, *auth.ChangePasswordRequest) error {
	return nil
}
func (noopUsers) DeleteAccount(context.Context, string) error { return nil }
func (noopUsers) PromoteToAdmin(context.Context, string, string) error { return nil }

func TestSetupRouter(t *testing.T) {
	policy, err := middleware.NewPolicy(DefaultRules(), fixedRoles{}, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	SetupRouter(r, &Handlers{
		AuthHandler:   authHandler.NewAuthHandler(noopAuth{}, zap.NewNop()),
		UserHandler:   userHandler.NewUserHandler(noopUsers{}, zap.NewNop()),
		Authenticator: middleware.NewAuthenticator(subjectToken{}, []string{"/api/v1/auth/"}, zap.NewNop()),
		Policy:        policy,
		Health:        func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) },
	})

	tests := []struct {
		name     string
		method   string
		path     string
		subject  string
		body     string
		wantCode int
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", "", http.StatusOK},
		{"sign-in is public", http.MethodPost, "/api/v1/auth/sign-in", "", `{"id":"a","password":"b"}`, http.StatusOK},
		{"me needs a principal", http.MethodGet, "/api/v1/users/me", "", "", http.StatusUnauthorized},
		{"me with principal", http.MethodGet, "/api/v1/users/me", "traveler01", "", http.StatusOK},
		{"promotion as user", http.MethodPatch, "/api/v1/admin/users/x/role", "traveler01", `{"role":"ADMIN"}`, http.StatusForbidden},
		{"promotion as admin", http.MethodPatch, "/api/v1/admin/users/x/role", "root", `{"role":"ADMIN"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.subject != "" {
				req.Header.Set("Authorization", "Bearer "+tt.subject)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
