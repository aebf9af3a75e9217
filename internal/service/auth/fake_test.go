package auth

import (
	"context"
	"errors"
	"sync"

	"tripreel-service/internal/domain/auth"
	xerrors "tripreel-service/internal/pkg/errors"
)

var errDBDown = errors.New("connection refused")

// memDirectory is an in-memory IdentityDirectory enforcing the same unique
// constraints as the identities table.
type memDirectory struct {
	mu      sync.Mutex
	byID    map[string]*auth.Identity
	nextSeq int64

	// failOn makes the named method return errDBDown.
	failOn string
	// staleExists makes every Exists* report false, simulating a concurrent
	// writer racing past the pre-checks.
	staleExists bool
}

func newMemDirectory() *memDirectory {
	return &memDirectory{byID: map[string]*auth.Identity{}}
}

func (m *memDirectory) fail(method string) error {
	if m.failOn == method {
		return errDBDown
	}
	return nil
}

func (m *memDirectory) existsBy(method string, match func(*auth.Identity) bool) (bool, error) {
	if err := m.fail(method); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staleExists {
		return false, nil
	}
	for _, identity := range m.byID {
		if match(identity) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDirectory) ExistsByID(_ context.Context, id string) (bool, error) {
	return m.existsBy("ExistsByID", func(i *auth.Identity) bool { return i.ID == id })
}

func (m *memDirectory) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return m.existsBy("ExistsByEmail", func(i *auth.Identity) bool { return i.Email == email })
}

func (m *memDirectory) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	return m.existsBy("ExistsByNickname", func(i *auth.Identity) bool { return i.Nickname == nickname })
}

func (m *memDirectory) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	return m.existsBy("ExistsByPhone", func(i *auth.Identity) bool { return i.Phone == phone })
}

func (m *memDirectory) AdminExists(_ context.Context) (bool, error) {
	return m.existsBy("AdminExists", func(i *auth.Identity) bool { return i.Role == auth.RoleAdmin })
}

func (m *memDirectory) FindByID(_ context.Context, id string) (*auth.Identity, error) {
	if err := m.fail("FindByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *identity
	return &cp, nil
}

func (m *memDirectory) FindRole(ctx context.Context, id string) (auth.Role, error) {
	identity, err := m.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return identity.Role, nil
}

// conflict mirrors the unique constraints; caller holds mu.
func (m *memDirectory) conflict(id string, candidate *auth.Identity) error {
	for otherID, other := range m.byID {
		if otherID == id {
			continue
		}
		switch {
		case other.Email == candidate.Email:
			return xerrors.ErrDuplicateEmail
		case other.Nickname == candidate.Nickname:
			return xerrors.ErrDuplicateNickname
		case other.Phone == candidate.Phone:
			return xerrors.ErrDuplicatePhone
		}
	}
	return nil
}

func (m *memDirectory) Create(_ context.Context, identity *auth.Identity) error {
	if err := m.fail("Create"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[identity.ID]; ok {
		return xerrors.ErrDuplicateID
	}
	if err := m.conflict(identity.ID, identity); err != nil {
		return err
	}
	m.nextSeq++
	identity.Seq = m.nextSeq
	cp := *identity
	m.byID[identity.ID] = &cp
	return nil
}

func (m *memDirectory) UpdateProfile(_ context.Context, id string, patch auth.ProfilePatch) error {
	if err := m.fail("UpdateProfile"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	next := *identity
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&next.Nickname, patch.Nickname)
	apply(&next.Phone, patch.Phone)
	apply(&next.Email, patch.Email)
	apply(&next.Gender, patch.Gender)
	apply(&next.AvatarURL, patch.AvatarURL)
	if err := m.conflict(id, &next); err != nil {
		return err
	}
	m.byID[id] = &next
	return nil
}

func (m *memDirectory) update(method, id string, mutate func(*auth.Identity)) error {
	if err := m.fail(method); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	mutate(identity)
	return nil
}

func (m *memDirectory) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	return m.update("UpdatePassword", id, func(i *auth.Identity) { i.PasswordHash = passwordHash })
}

func (m *memDirectory) UpdateRole(_ context.Context, id string, role auth.Role) error {
	return m.update("UpdateRole", id, func(i *auth.Identity) { i.Role = role })
}

func (m *memDirectory) Delete(_ context.Context, id string) error {
	if err := m.fail("Delete"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type stubIssuer struct {
	issued []string
	err    error
}

func (s *stubIssuer) Issue(subjectID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, subjectID)
	return "token-for-" + subjectID, nil
}

type recordingEvictor struct {
	mu      sync.Mutex
	evicted []string
}

func (r *recordingEvictor) Evict(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evicted = append(r.evicted, id)
	return nil
}
