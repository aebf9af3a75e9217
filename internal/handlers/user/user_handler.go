// internal/handlers/user/user_handler.go
package user

import (
	"context"

	"tripreel-service/internal/domain/auth"
	"tripreel-service/internal/middleware"
	"tripreel-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the account management slice of the auth service.
type Service interface {
	GetMe(ctx context.Context, id string) (*auth.Identity, error)
	PatchProfile(ctx context.Context, id string, patch auth.ProfilePatch) (*auth.Identity, error)
	ChangePassword(ctx context.Context, id string, req *auth.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, id string) error
	PromoteToAdmin(ctx context.Context, actorID, targetID string) error
}

type UserHandler struct {
	service Service
	logger  *zap.Logger
}

func NewUserHandler(service Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// ========== Profile ==========

// GetMe returns the caller's profile
func (h *UserHandler) GetMe(c *gin.Context) {
	id := middleware.MustGetSubject(c)

	identity, err := h.service.GetMe(c.Request.Context(), id)
	if err != nil {
		response.FailWith(c, err)
		return
	}

	response.Success(c, gin.H{"user": auth.NewUserInfo(identity)})
}

// PatchProfile updates the provided profile fields
func (h *UserHandler) PatchProfile(c *gin.Context) {
	id := middleware.MustGetSubject(c)

	var req auth.PatchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c)
		return
	}

	identity, err := h.service.PatchProfile(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		response.FailWith(c, err)
		return
	}

	response.Success(c, gin.H{"user": auth.NewUserInfo(identity)})
}

// ChangePassword handles password change (requires current password)
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id := middleware.MustGetSubject(c)

	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), id, &req); err != nil {
		h.logger.Info("password change failed", zap.String("id", id), zap.Error(err))
		response.FailWith(c, err)
		return
	}

	response.Success(c, nil)
}

// DeleteAccount removes the caller's account
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	id := middleware.MustGetSubject(c)

	if err := h.service.DeleteAccount(c.Request.Context(), id); err != nil {
		response.FailWith(c, err)
		return
	}

	response.Success(c, nil)
}

// ========== Administration ==========

// PromoteUser grants ADMIN to the account in the path (admin only)
func (h *UserHandler) PromoteUser(c *gin.Context) {
	actor := middleware.MustGetSubject(c)
	target := c.Param("id")

	var req auth.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || target == "" {
		response.ValidationError(c)
		return
	}

	if err := h.service.PromoteToAdmin(c.Request.Context(), actor, target); err != nil {
		response.FailWith(c, err)
		return
	}

	response.Success(c, nil)
}
