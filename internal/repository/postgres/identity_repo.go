// internal/repository/postgres/identity_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"tripreel-service/internal/domain/auth"
	xerrors "tripreel-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Constraint names come from the identities migration.
var uniqueConstraints = map[string]error{
	"identities_pkey":         xerrors.ErrDuplicateID,
	"identities_email_key":    xerrors.ErrDuplicateEmail,
	"identities_nickname_key": xerrors.ErrDuplicateNickname,
	"identities_phone_key":    xerrors.ErrDuplicatePhone,
}

type IdentityRepository struct {
	db DBTX
}

func NewIdentityRepository(db DBTX) *IdentityRepository {
	return &IdentityRepository{db: db}
}

var _ auth.IdentityDirectory = (*IdentityRepository)(nil)

// ========== Uniqueness Checks ==========

func (r *IdentityRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE id = $1)`, id)
}

func (r *IdentityRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE email = $1)`, email)
}

func (r *IdentityRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE nickname = $1)`, nickname)
}

func (r *IdentityRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE phone = $1)`, phone)
}

func (r *IdentityRepository) AdminExists(ctx context.Context) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE role = $1)`, string(auth.RoleAdmin))
}

func (r *IdentityRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// ========== Lookups ==========

// FindByID retrieves an identity by its account id (case-sensitive)
func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*auth.Identity, error) {
	query := `
		SELECT id, password_hash, name, nickname, phone, email, gender, avatar_url,
		       seq, role, status, report_count, created_at, updated_at
		FROM identities
		WHERE id = $1
	`

	var identity auth.Identity
	var role, status string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&identity.ID, &identity.PasswordHash, &identity.Name, &identity.Nickname,
		&identity.Phone, &identity.Email, &identity.Gender, &identity.AvatarURL,
		&identity.Seq, &role, &status, &identity.ReportCount,
		&identity.CreatedAt, &identity.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	if identity.Role, err = auth.ParseRole(role); err != nil {
		return nil, fmt.Errorf("identity %s: %w", id, err)
	}
	identity.Status = auth.Status(status)

	return &identity, nil
}

// FindRole reads only the role column; it backs per-request authorization.
func (r *IdentityRepository) FindRole(ctx context.Context, id string) (auth.Role, error) {
	var role string
	err := r.db.QueryRow(ctx, `SELECT role FROM identities WHERE id = $1`, id).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", xerrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find role: %w", err)
	}
	return auth.ParseRole(role)
}

// ========== Writes ==========

// Create inserts a new identity. seq is assigned by the database identity
// column, so concurrent inserts never share a sequence number.
func (r *IdentityRepository) Create(ctx context.Context, identity *auth.Identity) error {
	query := `
		INSERT INTO identities (id, password_hash, name, nickname, phone, email, gender, avatar_url, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq, report_count, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		identity.ID, identity.PasswordHash, identity.Name, identity.Nickname,
		identity.Phone, identity.Email, identity.Gender, identity.AvatarURL,
		string(identity.Role), string(identity.Status),
	).Scan(&identity.Seq, &identity.ReportCount, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		return translate(err, "failed to create identity")
	}
	return nil
}

// UpdateProfile applies the non-nil fields of patch.
func (r *IdentityRepository) UpdateProfile(ctx context.Context, id string, patch auth.ProfilePatch) error {
	query := `
		UPDATE identities
		SET nickname   = COALESCE($2, nickname),
		    phone      = COALESCE($3, phone),
		    email      = COALESCE($4, email),
		    gender     = COALESCE($5, gender),
		    avatar_url = COALESCE($6, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, patch.Nickname, patch.Phone, patch.Email, patch.Gender, patch.AvatarURL)
	if err != nil {
		return translate(err, "failed to update profile")
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *IdentityRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE identities SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "failed to update password", query, id, passwordHash)
}

func (r *IdentityRepository) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	query := `UPDATE identities SET role = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "failed to update role", query, id, string(role))
}

func (r *IdentityRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "failed to delete identity", `DELETE FROM identities WHERE id = $1`, id)
}

func (r *IdentityRepository) execOne(ctx context.Context, msg, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return translate(err, msg)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// translate turns unique violations into the matching duplicate sentinel.
func translate(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if dup, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return dup
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
