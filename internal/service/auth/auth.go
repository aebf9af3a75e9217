// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"tripreel-service/internal/domain/auth"
	xerrors "tripreel-service/internal/pkg/errors"
	"tripreel-service/internal/pkg/password"

	"go.uber.org/zap"
)

// TokenIssuer issues bearer tokens for a subject.
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
}

// RoleEvictor drops cached role lookups after a role change or deletion.
type RoleEvictor interface {
	Evict(ctx context.Context, id string) error
}

type AuthService struct {
	repo        auth.IdentityDirectory
	hasher      *password.Hasher
	tokens      TokenIssuer
	tokenTTLSec int
	roles       RoleEvictor
	logger      *zap.Logger
}

func NewAuthService(
	repo auth.IdentityDirectory,
	hasher *password.Hasher,
	tokens TokenIssuer,
	tokenTTLSec int,
	roles RoleEvictor,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		tokenTTLSec: tokenTTLSec,
		roles:       roles,
		logger:      logger,
	}
}

// ========== Registration ==========

// ValidateID is the duplicate-id pre-check used while the user is still typing.
func (s *AuthService) ValidateID(ctx context.Context, id string) error {
	return s.ensureUnique(ctx, "id", s.repo.ExistsByID, id, xerrors.ErrDuplicateID)
}

// SignUp runs the registration pipeline. Each stage short-circuits on the
// first failure, in this order: id, password policy, email, nickname, phone.
func (s *AuthService) SignUp(ctx context.Context, req *auth.SignUpRequest) error {
	if err := s.ensureUnique(ctx, "id", s.repo.ExistsByID, req.ID, xerrors.ErrDuplicateID); err != nil {
		return err
	}
	if err := password.CheckPolicy(req.Password); err != nil {
		return err
	}
	if err := s.ensureUnique(ctx, "email", s.repo.ExistsByEmail, req.Email, xerrors.ErrDuplicateEmail); err != nil {
		return err
	}
	if err := s.ensureUnique(ctx, "nickname", s.repo.ExistsByNickname, req.Nickname, xerrors.ErrDuplicateNickname); err != nil {
		return err
	}
	if err := s.ensureUnique(ctx, "phone", s.repo.ExistsByPhone, req.Phone, xerrors.ErrDuplicatePhone); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return s.fail("hash password", err, zap.String("id", req.ID))
	}

	identity := &auth.Identity{
		ID:           req.ID,
		PasswordHash: hashed,
		Name:         req.Name,
		Nickname:     req.Nickname,
		Phone:        req.Phone,
		Email:        req.Email,
		Gender:       req.Gender,
		Role:         auth.RoleUser,
		Status:       auth.StatusActive,
	}

	// A concurrent sign-up may have taken a unique value after the checks
	// above; the store rejects it and Create reports the matching duplicate.
	if err := s.repo.Create(ctx, identity); err != nil {
		return s.fail("create identity", err, zap.String("id", req.ID))
	}

	s.logger.Info("identity registered",
		zap.String("id", identity.ID),
		zap.Int64("seq", identity.Seq),
	)
	return nil
}

// ========== Sign In ==========

// SignIn verifies credentials and issues a bearer token. An unknown id yields
// ErrSignInFailed and a bad password ErrWrongPassword.
func (s *AuthService) SignIn(ctx context.Context, req *auth.SignInRequest) (*auth.SignInResponse, error) {
	identity, err := s.repo.FindByID(ctx, req.ID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrSignInFailed
	}
	if err != nil {
		return nil, s.fail("find identity", err, zap.String("id", req.ID))
	}

	if !s.hasher.Verify(req.Password, identity.PasswordHash) {
		return nil, xerrors.ErrWrongPassword
	}

	token, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return nil, s.fail("issue token", err, zap.String("id", identity.ID))
	}

	return &auth.SignInResponse{
		Token:          token,
		ExpirationTime: s.tokenTTLSec,
	}, nil
}

// ========== Helpers ==========

type existsFunc func(ctx context.Context, value string) (bool, error)

func (s *AuthService) ensureUnique(ctx context.Context, field string, exists existsFunc, value string, dup error) error {
	taken, err := exists(ctx, value)
	if err != nil {
		return s.fail("check "+field, err, zap.String(field, value))
	}
	if taken {
		return dup
	}
	return nil
}

// fail is the workflow failure boundary: domain outcomes pass through,
// anything else is logged and wrapped so the handler reports a database error.
func (s *AuthService) fail(op string, err error, fields ...zap.Field) error {
	if isDomainError(err) {
		return err
	}
	s.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return fmt.Errorf("%s: %w", op, err)
}

func isDomainError(err error) bool {
	return xerrors.IsDuplicate(err) ||
		errors.Is(err, xerrors.ErrNotFound) ||
		errors.Is(err, xerrors.ErrInvalidPassword) ||
		errors.Is(err, xerrors.ErrWrongPassword) ||
		errors.Is(err, xerrors.ErrSignInFailed)
}
