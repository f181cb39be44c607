package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/client/models"
	"github.com/daybook-app/daybook/internal/common"
	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/daybook-app/daybook/internal/timex"
	"github.com/google/uuid"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() string
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: timex.NowISO}
}

const entryColumns = `id, date, category_id, title, description, photo_url, local_photo_uri, is_deleted, sync_status, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (*models.DayEntry, error) {
	var e models.DayEntry
	var description, photoURL, localURI sql.NullString
	err := row.Scan(&e.ID, &e.Date, &e.CategoryID, &e.Title, &description, &photoURL, &localURI,
		&e.IsDeleted, &e.SyncStatus, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		e.Description = &description.String
	}
	if photoURL.Valid {
		e.PhotoURL = &photoURL.String
	}
	if localURI.Valid {
		e.LocalPhotoURI = &localURI.String
	}
	return &e, nil
}

func (r *SQLiteRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.DayEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.DayEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) List(ctx context.Context, opts ListOptions) ([]models.DayEntry, error) {
	conditions := []string{"is_deleted = 0"}
	var args []any

	if opts.CategoryID != "" {
		conditions = append(conditions, "category_id = ?")
		args = append(args, opts.CategoryID)
	}
	if opts.Search != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + entryColumns + ` FROM day_entry WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY date DESC`
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}
	return r.queryEntries(ctx, query, args...)
}

func (r *SQLiteRepository) ListByDate(ctx context.Context, date string) ([]models.DayEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM day_entry WHERE date = ? AND is_deleted = 0 ORDER BY created_at DESC`
	return r.queryEntries(ctx, query, date)
}

func (r *SQLiteRepository) ListByYear(ctx context.Context, year int) ([]models.DayEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM day_entry WHERE date BETWEEN ? AND ? AND is_deleted = 0 ORDER BY date, created_at`
	return r.queryEntries(ctx, query, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
}

func (r *SQLiteRepository) CountByDate(ctx context.Context, date string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM day_entry WHERE date = ? AND is_deleted = 0`, date).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.DayEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM day_entry WHERE id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, ne NewEntry) (*models.DayEntry, error) {
	now := r.now()
	e := &models.DayEntry{
		ID:            uuid.NewString(),
		Date:          ne.Date,
		CategoryID:    ne.CategoryID,
		Title:         ne.Title,
		Description:   ne.Description,
		LocalPhotoURI: ne.LocalPhotoURI,
		SyncStatus:    common.SyncStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	query := `INSERT INTO day_entry (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, NULL, ?, 0, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Date, e.CategoryID, e.Title, nullable(e.Description), nullable(e.LocalPhotoURI),
		e.SyncStatus, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, upd Update) error {
	fields := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if upd.CategoryID != nil {
		fields = append(fields, "category_id = ?")
		args = append(args, *upd.CategoryID)
	}
	if upd.Title != nil {
		fields = append(fields, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.ClearDescription {
		fields = append(fields, "description = NULL")
	} else if upd.Description != nil {
		fields = append(fields, "description = ?")
		args = append(args, *upd.Description)
	}
	if len(fields) == 0 {
		return nil
	}

	fields = append(fields, "updated_at = ?", "sync_status = 'pending'")
	args = append(args, r.now(), id)

	query := `UPDATE day_entry SET ` + strings.Join(fields, ", ") + ` WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE day_entry SET is_deleted = 1, sync_status = 'pending', updated_at = ? WHERE id = ? AND is_deleted = 0`,
		r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) SetLocalPhoto(ctx context.Context, id, localURI string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE day_entry SET local_photo_uri = ?, updated_at = ?, sync_status = 'pending' WHERE id = ?`,
		localURI, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to stage photo: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) SetPhotoURL(ctx context.Context, id, publicURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE day_entry SET photo_url = ?, local_photo_uri = NULL, updated_at = ?, sync_status = 'pending' WHERE id = ?`,
		publicURL, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to confirm photo url: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) PendingUploads(ctx context.Context) ([]*models.DayEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM day_entry
		WHERE local_photo_uri IS NOT NULL AND photo_url IS NULL AND is_deleted = 0`
	return r.queryEntryPtrs(ctx, query)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]*models.DayEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM day_entry WHERE sync_status = 'pending'`
	return r.queryEntryPtrs(ctx, query)
}

func (r *SQLiteRepository) queryEntryPtrs(ctx context.Context, query string, args ...any) ([]*models.DayEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.DayEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE day_entry SET sync_status = 'synced' WHERE id IN (` + placeholders(len(ids)) + `)`
	if _, err := r.db.ExecContext(ctx, query, toAnySlice(ids)...); err != nil {
		return fmt.Errorf("failed to mark entries synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertFromServer(ctx context.Context, rec api.Entry) error {
	query := `INSERT INTO day_entry (id, date, category_id, title, description, photo_url, is_deleted, sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'synced', ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			category_id = excluded.category_id,
			title = excluded.title,
			description = excluded.description,
			photo_url = excluded.photo_url,
			is_deleted = excluded.is_deleted,
			sync_status = 'synced',
			updated_at = excluded.updated_at
		WHERE day_entry.updated_at < excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Date, rec.CategoryID, rec.Title, nullable(rec.Description), nullable(rec.PhotoURL),
		boolToInt(rec.IsDeleted), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM day_entry`); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAnySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
