// internal/handlers/auth/auth_handler.go
package auth

import (
	"context"

	"tripreel-service/internal/domain/auth"
	"tripreel-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the slice of the auth service these handlers call.
type Service interface {
	ValidateID(ctx context.Context, id string) error
	SignUp(ctx context.Context, req *auth.SignUpRequest) error
	SignIn(ctx context.Context, req *auth.SignInRequest) (*auth.SignInResponse, error)
}

type AuthHandler struct {
	authService Service
	logger      *zap.Logger
}

func NewAuthHandler(authService Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Registration ==========

// SignUp handles account registration (public endpoint)
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req auth.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("sign-up request rejected", zap.Error(err))
		response.ValidationError(c)
		return
	}

	if err := h.authService.SignUp(c.Request.Context(), &req); err != nil {
		h.logger.Info("sign-up failed",
			zap.String("id", req.ID),
			zap.Error(err),
		)
		response.FailWith(c, err)
		return
	}

	response.Success(c, nil)
}

// ValidateID reports whether an id is still free (public endpoint)
func (h *AuthHandler) ValidateID(c *gin.Context) {
	var req auth.ValidateIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c)
		return
	}

	if err := h.authService.ValidateID(c.Request.Context(), req.ID); err != nil {
		response.FailWith(c, err)
		return
	}

	response.Success(c, nil)
}

// ========== Sign In ==========

// SignIn exchanges credentials for a bearer token
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req auth.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c)
		return
	}

	resp, err := h.authService.SignIn(c.Request.Context(), &req)
	if err != nil {
		h.logger.Info("sign-in failed",
			zap.String("id", req.ID),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.FailWith(c, err)
		return
	}

	h.logger.Info("user signed in", zap.String("id", req.ID))

	response.Success(c, gin.H{
		"token":          resp.Token,
		"expirationTime": resp.ExpirationTime,
	})
}
