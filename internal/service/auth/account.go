// internal/service/auth/account.go
package auth

import (
	"context"

	"tripreel-service/internal/domain/auth"
	xerrors "tripreel-service/internal/pkg/errors"
	"tripreel-service/internal/pkg/password"

	"go.uber.org/zap"
)

// ========== Self Service ==========

// GetMe loads the caller's own identity.
func (s *AuthService) GetMe(ctx context.Context, id string) (*auth.Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail("find identity", err, zap.String("id", id))
	}
	return identity, nil
}

// PatchProfile applies patch to the caller's profile and returns the updated
// identity. Changed unique fields are re-checked against other accounts.
func (s *AuthService) PatchProfile(ctx context.Context, id string, patch auth.ProfilePatch) (*auth.Identity, error) {
	current, err := s.GetMe(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}

	if changed(patch.Email, current.Email) {
		if err := s.ensureUnique(ctx, "email", s.repo.ExistsByEmail, *patch.Email, xerrors.ErrDuplicateEmail); err != nil {
			return nil, err
		}
	}
	if changed(patch.Nickname, current.Nickname) {
		if err := s.ensureUnique(ctx, "nickname", s.repo.ExistsByNickname, *patch.Nickname, xerrors.ErrDuplicateNickname); err != nil {
			return nil, err
		}
	}
	if changed(patch.Phone, current.Phone) {
		if err := s.ensureUnique(ctx, "phone", s.repo.ExistsByPhone, *patch.Phone, xerrors.ErrDuplicatePhone); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateProfile(ctx, id, patch); err != nil {
		return nil, s.fail("update profile", err, zap.String("id", id))
	}

	return s.GetMe(ctx, id)
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, id string, req *auth.ChangePasswordRequest) error {
	identity, err := s.GetMe(ctx, id)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.CurrentPassword, identity.PasswordHash) {
		return xerrors.ErrWrongPassword
	}
	if err := password.CheckPolicy(req.NewPassword); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return s.fail("hash password", err, zap.String("id", id))
	}
	if err := s.repo.UpdatePassword(ctx, id, hashed); err != nil {
		return s.fail("update password", err, zap.String("id", id))
	}

	s.logger.Info("password changed", zap.String("id", id))
	return nil
}

// DeleteAccount removes the caller's identity. Tokens already issued stay
// valid until expiry but no longer resolve to a role.
func (s *AuthService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail("delete identity", err, zap.String("id", id))
	}
	s.evictRole(ctx, id)

	s.logger.Info("identity deleted", zap.String("id", id))
	return nil
}

// ========== Administration ==========

// PromoteToAdmin grants ADMIN to the target identity.
func (s *AuthService) PromoteToAdmin(ctx context.Context, actorID, targetID string) error {
	if err := s.repo.UpdateRole(ctx, targetID, auth.RoleAdmin); err != nil {
		return s.fail("update role", err, zap.String("id", targetID))
	}
	s.evictRole(ctx, targetID)

	s.logger.Info("identity promoted",
		zap.String("actor", actorID),
		zap.String("target", targetID),
		zap.String("role", string(auth.RoleAdmin)),
	)
	return nil
}

// evictRole is best effort; a stale entry expires with the cache TTL.
func (s *AuthService) evictRole(ctx context.Context, id string) {
	if s.roles == nil {
		return
	}
	if err := s.roles.Evict(ctx, id); err != nil {
		s.logger.Warn("failed to evict cached role", zap.String("id", id), zap.Error(err))
	}
}

func changed(next *string, current string) bool {
	return next != nil && *next != current
}
