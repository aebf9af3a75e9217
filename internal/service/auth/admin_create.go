// internal/service/auth/admin_create.go
package auth

import (
	"context"
	"fmt"

	"tripreel-service/internal/domain/auth"

	"go.uber.org/zap"
)

// AdminSeed is the bootstrap administrator read from ADMIN_* variables.
type AdminSeed struct {
	ID       string
	Password string
	Name     string
	Nickname string
	Phone    string
	Email    string
}

func (a AdminSeed) complete() bool {
	return a.ID != "" && a.Password != "" && a.Name != "" &&
		a.Nickname != "" && a.Phone != "" && a.Email != ""
}

// EnsureAdminExists creates the bootstrap admin if no ADMIN identity exists (called on startup).
// An empty seed disables the bootstrap.
func (s *AuthService) EnsureAdminExists(ctx context.Context, seed AdminSeed) error {
	exists, err := s.repo.AdminExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check admin existence: %w", err)
	}

	if exists {
		s.logger.Info("admin already exists, skipping creation")
		return nil
	}

	if seed == (AdminSeed{}) {
		s.logger.Warn("no admin configured; role-gated routes are unreachable until one is promoted")
		return nil
	}
	if !seed.complete() {
		return fmt.Errorf("admin id, password, name, nickname, phone and email must all be provided via environment variables")
	}

	s.logger.Info("creating admin account", zap.String("id", seed.ID))

	hashed, err := s.hasher.Hash(seed.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &auth.Identity{
		ID:           seed.ID,
		PasswordHash: hashed,
		Name:         seed.Name,
		Nickname:     seed.Nickname,
		Phone:        seed.Phone,
		Email:        seed.Email,
		Role:         auth.RoleAdmin,
		Status:       auth.StatusActive,
	}

	if err := s.repo.Create(ctx, identity); err != nil {
		return fmt.Errorf("failed to create admin identity: %w", err)
	}

	s.logger.Info("admin created successfully",
		zap.String("id", identity.ID),
		zap.Int64("seq", identity.Seq),
	)

	return nil
}
