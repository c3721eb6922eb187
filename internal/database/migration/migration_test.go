package migration

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statementapi/internal/logging"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, "sql/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		b, err := migrations.ReadFile(f)
		require.NoError(t, err)
		assert.Contains(t, string(b), "-- +goose Up", f)
		assert.Contains(t, string(b), "-- +goose Down", f)
	}
}

func TestEnsureMigrated(t *testing.T) {
	orig := gooseUp
	defer func() { gooseUp = orig }()

	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		var gotDir string
		gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
			gotDir = dir
			return nil
		}

		err := EnsureMigrated(context.Background(), nil, logging.New("info", &buf), "db.internal")
		require.NoError(t, err)
		assert.Equal(t, migrationDir, gotDir)
		assert.Contains(t, buf.String(), "db_migration_success")
		assert.Contains(t, buf.String(), "db.internal")
	})

	t.Run("failure", func(t *testing.T) {
		var buf bytes.Buffer
		gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
			return errors.New("relation exists")
		}

		err := EnsureMigrated(context.Background(), nil, logging.New("info", &buf), "db.internal")
		assert.ErrorContains(t, err, "apply migrations: relation exists")
		assert.Contains(t, buf.String(), "db_migration_failed")
	})
}
