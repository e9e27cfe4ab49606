package hits

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/securelinks/internal/server/models"
	"github.com/dmitrijs2005/securelinks/internal/server/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upsertQuery = `(?s)^\s*INSERT\s+INTO\s+link_hits\b.*ON\s+CONFLICT\s*\(document_id, file_index, kind\)\s*DO\s+UPDATE\s+SET\s+hits\s*=\s*link_hits\.hits\s*\+\s*1`

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func TestIncrement_File(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(upsertQuery).
		WithArgs(int64(3), int64(2), int64(token.Download)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Increment(context.Background(), models.Hit{DocumentID: 3, FileIndex: token.Index(2), Kind: token.Download})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrement_WholeDocument(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(upsertQuery).
		WithArgs(int64(3), int64(models.WholeDocument), int64(token.View)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Increment(context.Background(), models.Hit{DocumentID: 3, Kind: token.View})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrement_ExecErr(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(upsertQuery).WillReturnError(errors.New("boom"))

	err := repo.Increment(context.Background(), models.Hit{DocumentID: 3, Kind: token.View})
	assert.ErrorContains(t, err, "failed to record hit: boom")
}

func TestIncrement_IDOutOfRange(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	err := repo.Increment(context.Background(), models.Hit{DocumentID: ^uint64(0), Kind: token.View})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
