// internal/app/router.go
package app

import (
	"net/http"

	"tripreel-service/internal/domain/auth"
	authHandler "tripreel-service/internal/handlers/auth"
	userHandler "tripreel-service/internal/handlers/user"
	"tripreel-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler   *authHandler.AuthHandler
	UserHandler   *userHandler.UserHandler
	Authenticator *middleware.Authenticator
	Policy        *middleware.Policy
	Health        gin.HandlerFunc
	Metrics       gin.HandlerFunc
}

// DefaultRules is the route access table. Anything not listed requires an
// authenticated caller.
func DefaultRules() []middleware.Rule {
	return []middleware.Rule{
		{Method: http.MethodGet, Pattern: "/api/v1/health", Access: middleware.Public},
		{Method: http.MethodGet, Pattern: "/metrics", Access: middleware.Public},
		{Pattern: "/swagger/**", Access: middleware.Public},
		{Pattern: "/v3/api-docs/**", Access: middleware.Public},
		{Method: http.MethodPost, Pattern: "/api/v1/auth/sign-up", Access: middleware.Public},
		{Method: http.MethodPost, Pattern: "/api/v1/auth/sign-up/validate", Access: middleware.Public},
		{Method: http.MethodPost, Pattern: "/api/v1/auth/sign-in", Access: middleware.Public},

		// Read-only catalogue browsing is open to guests.
		{Method: http.MethodGet, Pattern: "/api/v1/boards/**", Access: middleware.Public},
		{Method: http.MethodGet, Pattern: "/api/v1/videos/**", Access: middleware.Public},
		{Method: http.MethodGet, Pattern: "/api/v1/categories/**", Access: middleware.Public},
		{Method: http.MethodGet, Pattern: "/api/v1/tags/**", Access: middleware.Public},
		{Method: http.MethodGet, Pattern: "/api/v1/recommendations/**", Access: middleware.Public},

		{Pattern: "/api/v1/users/me/**", Access: middleware.Authenticated},
		{Pattern: "/api/v1/admin/**", Access: middleware.RequireRole(auth.RoleAdmin)},
	}
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	r.Use(h.Authenticator.Handler(), h.Policy.Authorize())

	if h.Metrics != nil {
		r.GET("/metrics", h.Metrics)
	}

	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", h.Health)

	// ==================== Auth ====================
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/sign-up", h.AuthHandler.SignUp)
		authRoutes.POST("/sign-up/validate", h.AuthHandler.ValidateID)
		authRoutes.POST("/sign-in", h.AuthHandler.SignIn)
	}

	// ==================== Self Service ====================
	me := api.Group("/users/me")
	{
		me.GET("", h.UserHandler.GetMe)
		me.PATCH("", h.UserHandler.PatchProfile)
		me.DELETE("", h.UserHandler.DeleteAccount)
		me.PATCH("/password", h.UserHandler.ChangePassword)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	{
		admin.PATCH("/users/:id/role", h.UserHandler.PromoteUser)
	}
}
