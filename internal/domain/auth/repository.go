// internal/domain/auth/repository.go
package auth

import "context"

// IdentityDirectory is the persistence boundary for identities.
//
// Find* return xerrors.ErrNotFound when no row matches. Create and
// UpdateProfile return one of the xerrors.ErrDuplicate* sentinels when a
// unique constraint rejects the write, so concurrent registrations that both
// passed the Exists* pre-checks still resolve to a single winner.
type IdentityDirectory interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	FindByID(ctx context.Context, id string) (*Identity, error)
	FindRole(ctx context.Context, id string) (Role, error)

	// Create inserts identity and fills in Seq, CreatedAt and UpdatedAt.
	Create(ctx context.Context, identity *Identity) error
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role Role) error
	Delete(ctx context.Context, id string) error
	AdminExists(ctx context.Context) (bool, error)
}
