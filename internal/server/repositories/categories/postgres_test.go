package categories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/daybook-app/daybook/internal/api"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var upsertRe = regexp.MustCompile(`INSERT INTO category .* ON CONFLICT \(id\)\s+DO UPDATE SET .* WHERE category\.user_id = EXCLUDED\.user_id\s+AND category\.updated_at < EXCLUDED\.updated_at`)

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	icon := "briefcase"
	mock.ExpectExec(upsertRe.String()).
		WithArgs("c1", "u1", "Work", "#4A9EFF", "briefcase", 1, false,
			"2024-01-01T00:00:00.000Z", "2024-01-02T00:00:00.000Z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), "u1", api.Category{
		ID: "c1", Name: "Work", Color: "#4A9EFF", Icon: &icon, SortOrder: 1,
		CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-02T00:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_StaleWriteRowsAffected0(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertRe.String()).
		WithArgs("c1", "u1", "Work", "#4A9EFF", nil, 1, false,
			"2024-01-01T00:00:00.000Z", "2024-01-02T00:00:00.000Z").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// A stale write is discarded silently, not reported as an error.
	err := repo.Upsert(context.Background(), "u1", api.Category{
		ID: "c1", Name: "Work", Color: "#4A9EFF", SortOrder: 1,
		CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-02T00:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("stale write must be a no-op, got %v", err)
	}
}

func TestUpsert_DBExecError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertRe.String()).
		WillReturnError(errors.New("db is down"))

	err := repo.Upsert(context.Background(), "u1", api.Category{ID: "c1"})
	if err == nil || !regexp.MustCompile(`failed to upsert category: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSelectUpdated_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.MustCompile(`SELECT id, name, color, icon, sort_order, is_deleted, created_at, updated_at\s+FROM category WHERE user_id = \$1 AND updated_at > \$2\s+ORDER BY updated_at ASC`)

	rows := sqlmock.NewRows([]string{
		"id", "name", "color", "icon", "sort_order", "is_deleted", "created_at", "updated_at",
	}).AddRow(
		"c1", "Work", "#4A9EFF", "briefcase", 1, false,
		"2024-01-01T00:00:00.000Z", "2024-01-03T00:00:00.000Z",
	).AddRow(
		"c2", "Health", "#4ADE80", nil, 2, true,
		"2024-01-01T00:00:00.000Z", "2024-01-04T00:00:00.000Z",
	)

	mock.ExpectQuery(q.String()).
		WithArgs("u1", "2024-01-02T00:00:00.000Z").
		WillReturnRows(rows)

	got, err := repo.SelectUpdated(context.Background(), "u1", "2024-01-02T00:00:00.000Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 rows, got %d", len(got))
	}
	if got[0].ID != "c1" || got[0].Icon == nil || *got[0].Icon != "briefcase" {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].ID != "c2" || got[1].Icon != nil || !got[1].IsDeleted {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
}

func TestSelectUpdated_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, color, icon`).
		WithArgs("u1", "2024-01-02T00:00:00.000Z").
		WillReturnError(errors.New("db err"))

	_, err := repo.SelectUpdated(context.Background(), "u1", "2024-01-02T00:00:00.000Z")
	if err == nil || !regexp.MustCompile(`failed to select categories: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}

func TestSelectUpdated_ScanRowError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "name", "color", "icon", "sort_order", "is_deleted", "created_at", "updated_at",
	}).AddRow("c1", "Work", "#4A9EFF", nil, "not-an-int", false, "t", "t")

	mock.ExpectQuery(`SELECT id, name, color, icon`).
		WithArgs("u1", "").
		WillReturnRows(rows)

	_, err := repo.SelectUpdated(context.Background(), "u1", "")
	if err == nil {
		t.Fatalf("expected scan error, got nil")
	}
}

func TestDeleteAllForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM category WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	if err := repo.DeleteAllForUser(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
