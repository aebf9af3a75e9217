package db

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"tripreel-service/internal/db/migrations"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_RunsEmbeddedMigrations(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, migrate(context.Background(), nil))
	assert.Equal(t, ".", gotDir)
}

func TestMigrate_WrapsError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err := migrate(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run migrations")
}

func TestEmbeddedMigrationDeclaresUniqueConstraints(t *testing.T) {
	b, err := fs.ReadFile(migrations.Migrations, "00001_create_identities.sql")
	require.NoError(t, err)

	for _, name := range []string{"identities_pkey", "identities_email_key", "identities_nickname_key", "identities_phone_key"} {
		assert.Contains(t, string(b), name)
	}
	assert.Contains(t, string(b), "GENERATED ALWAYS AS IDENTITY")
}
