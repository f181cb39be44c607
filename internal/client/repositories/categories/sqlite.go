package categories

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

const categoryColumns = `id, name, color, icon, sort_order, is_deleted, sync_status, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	var icon sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Color, &icon, &c.SortOrder, &c.IsDeleted, &c.SyncStatus, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if icon.Valid {
		c.Icon = &icon.String
	}
	return &c, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM category WHERE is_deleted = 0 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM category WHERE id = ?`
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, name, color string, icon *string) (*models.Category, error) {
	var maxOrder sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM category`).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("failed to compute sort order: %w", err)
	}

	now := r.now()
	c := &models.Category{
		ID:         uuid.NewString(),
		Name:       name,
		Color:      color,
		Icon:       icon,
		SortOrder:  int(maxOrder.Int64) + 1,
		SyncStatus: common.SyncStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if !maxOrder.Valid {
		c.SortOrder = 0
	}

	query := `INSERT INTO category (` + categoryColumns + `) VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Color, nullable(c.Icon), c.SortOrder, c.SyncStatus, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, upd Update) error {
	fields := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if upd.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Color != nil {
		fields = append(fields, "color = ?")
		args = append(args, *upd.Color)
	}
	if upd.ClearIcon {
		fields = append(fields, "icon = NULL")
	} else if upd.Icon != nil {
		fields = append(fields, "icon = ?")
		args = append(args, *upd.Icon)
	}
	if len(fields) == 0 {
		return nil
	}

	fields = append(fields, "updated_at = ?", "sync_status = 'pending'")
	args = append(args, r.now(), id)

	query := `UPDATE category SET ` + strings.Join(fields, ", ") + ` WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string) error {
	var n int
	query := `SELECT COUNT(*) FROM day_entry WHERE category_id = ? AND is_deleted = 0`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return fmt.Errorf("failed to count referencing entries: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%d entries still reference category %s: %w", n, id, common.ErrReferentialConflict)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE category SET is_deleted = 1, sync_status = 'pending', updated_at = ? WHERE id = ? AND is_deleted = 0`,
		r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) Reorder(ctx context.Context, orderedIDs []string) error {
	now := r.now()
	for i, id := range orderedIDs {
		_, err := r.db.ExecContext(ctx,
			`UPDATE category SET sort_order = ?, updated_at = ?, sync_status = 'pending' WHERE id = ?`,
			i, now, id)
		if err != nil {
			return fmt.Errorf("failed to reorder category %s: %w", id, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM category WHERE sync_status = 'pending'`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced categories: %w", err)
	}
	defer rows.Close()

	var pending []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		pending = append(pending, c)
	}
	return pending, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE category SET sync_status = 'synced' WHERE id IN (` + placeholders(len(ids)) + `)`
	if _, err := r.db.ExecContext(ctx, query, toAnySlice(ids)...); err != nil {
		return fmt.Errorf("failed to mark categories synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertFromServer(ctx context.Context, rec api.Category) error {
	query := `INSERT INTO category (id, name, color, icon, sort_order, is_deleted, sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'synced', ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			icon = excluded.icon,
			sort_order = excluded.sort_order,
			is_deleted = excluded.is_deleted,
			sync_status = 'synced',
			updated_at = excluded.updated_at
		WHERE category.updated_at < excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.Color, nullable(rec.Icon), rec.SortOrder, boolToInt(rec.IsDeleted), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) PruneUnsyncedOrphans(ctx context.Context, serverIDs []string) (int64, error) {
	if len(serverIDs) == 0 {
		return 0, nil
	}
	query := `DELETE FROM category
		WHERE id NOT IN (` + placeholders(len(serverIDs)) + `)
		  AND sync_status = 'pending'
		  AND id NOT IN (SELECT DISTINCT category_id FROM day_entry WHERE is_deleted = 0)`
	res, err := r.db.ExecContext(ctx, query, toAnySlice(serverIDs)...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune orphan categories: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) CollapseDuplicateNames(ctx context.Context) error {
	// Re-point entries of losing duplicates to the newest same-named category.
	// The reassignment itself must sync, hence sync_status goes back to pending.
	reassign := `UPDATE day_entry
		SET category_id = (
			SELECT c2.id FROM category c2
			WHERE c2.name = (SELECT c3.name FROM category c3 WHERE c3.id = day_entry.category_id)
			  AND c2.is_deleted = 0
			ORDER BY c2.updated_at DESC
			LIMIT 1
		),
		sync_status = 'pending'
		WHERE category_id IN (
			SELECT c.id FROM category c
			WHERE c.is_deleted = 0
			  AND c.id != (
				SELECT c2.id FROM category c2
				WHERE c2.name = c.name AND c2.is_deleted = 0
				ORDER BY c2.updated_at DESC
				LIMIT 1
			  )
		)`
	if _, err := r.db.ExecContext(ctx, reassign); err != nil {
		return fmt.Errorf("failed to reassign entries of duplicate categories: %w", err)
	}

	drop := `DELETE FROM category
		WHERE is_deleted = 0
		  AND id != (
			SELECT c2.id FROM category c2
			WHERE c2.name = category.name AND c2.is_deleted = 0
			ORDER BY c2.updated_at DESC
			LIMIT 1
		  )`
	if _, err := r.db.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("failed to drop duplicate categories: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM category`); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
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
