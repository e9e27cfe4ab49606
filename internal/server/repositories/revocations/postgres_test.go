package revocations

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	insertQuery = regexp.QuoteMeta(`INSERT INTO revoked_links (digest) VALUES ($1) ON CONFLICT (digest) DO NOTHING`)
	existsQuery = regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM revoked_links WHERE digest=$1)`)
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func digestOf(b byte) [32]byte {
	var d [32]byte
	for i := range d {
		d[i] = b
	}
	return d
}

func TestRevoke(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	d := digestOf(0xAB)

	mock.ExpectExec(insertQuery).WithArgs(d[:]).WillReturnResult(sqlmock.NewResult(0, 1))
	// second revoke hits the conflict and affects nothing
	mock.ExpectExec(insertQuery).WithArgs(d[:]).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Revoke(context.Background(), d))
	require.NoError(t, repo.Revoke(context.Background(), d))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevoke_Err(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertQuery).WillReturnError(errors.New("boom"))

	err := repo.Revoke(context.Background(), digestOf(1))
	assert.ErrorContains(t, err, "failed to revoke link: boom")
}

func TestIsRevoked(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	d := digestOf(0x01)

	mock.ExpectQuery(existsQuery).WithArgs(d[:]).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(existsQuery).WithArgs(d[:]).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.IsRevoked(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsRevoked(context.Background(), d)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsRevoked_Err(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(existsQuery).WillReturnError(sql.ErrConnDone)

	_, err := repo.IsRevoked(context.Background(), digestOf(2))
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
