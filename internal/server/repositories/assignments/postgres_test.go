package assignments

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var existsQuery = regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM document_assignments WHERE document_id=$1 AND principal_id=$2)`)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestIsAssigned(t *testing.T) {
	for _, want := range []bool{true, false} {
		repo, mock, db := newRepoWithMock(t)

		mock.ExpectQuery(existsQuery).WithArgs(int64(7), "alice").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(want))

		got, err := repo.IsAssigned(context.Background(), 7, "alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("IsAssigned=%v, want %v", got, want)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
		db.Close()
	}
}

func TestIsAssigned_ShortCircuits(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	if ok, err := repo.IsAssigned(context.Background(), 1, ""); ok || err != nil {
		t.Fatalf("empty principal: got %v, %v", ok, err)
	}
	if ok, err := repo.IsAssigned(context.Background(), ^uint64(0), "alice"); ok || err != nil {
		t.Fatalf("huge id: got %v, %v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}

func TestIsAssigned_QueryErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(existsQuery).WithArgs(int64(7), "alice").WillReturnError(errors.New("db down"))

	_, err := repo.IsAssigned(context.Background(), 7, "alice")
	if err == nil || !strings.Contains(err.Error(), "failed to check assignment: db down") {
		t.Fatalf("unexpected error: %v", err)
	}
}
