package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/assignments"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/documents"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/hits"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/secrets"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func withGooseUp(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestFactories_ReturnPostgresRepos(t *testing.T) {
	db := newDB(t)
	m := NewPostgresRepositoryManager()

	assert.IsType(t, &documents.PostgresRepository{}, m.Documents(db))
	assert.IsType(t, &assignments.PostgresRepository{}, m.Assignments(db))
	assert.IsType(t, &hits.PostgresRepository{}, m.Hits(db))
	assert.IsType(t, &revocations.PostgresRepository{}, m.Revocations(db))
	assert.IsType(t, &secrets.PostgresRepository{}, m.Secrets(db))
}

func TestRunMigrations_UsesEmbeddedRoot(t *testing.T) {
	db := newDB(t)

	var gotDir string
	withGooseUp(t, func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		assert.Same(t, db, got)
		assert.Empty(t, opts)
		gotDir = dir
		return nil
	})

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_WrapsError(t *testing.T) {
	db := newDB(t)
	boom := errors.New("boom")
	withGooseUp(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	})

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	require.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "goose up: boom")
}
