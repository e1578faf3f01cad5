package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"changepoint/internal/platform/postgres"
	"changepoint/internal/taxonomy/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/platform/tx"
)

// PostgresTaxonomyStore persists the classification taxonomy.
type PostgresTaxonomyStore struct {
	db *sql.DB
}

func NewPostgresTaxonomyStore(db *sql.DB) *PostgresTaxonomyStore {
	return &PostgresTaxonomyStore{db: db}
}

const (
	classColumns    = `id, code, name, description, created_at, deleted_at`
	categoryColumns = `id, class_id, parent_id, code, name, depth, created_at, deleted_at`
	itemColumns     = `id, category_id, code, name, created_at, deleted_at`
)

func (s *PostgresTaxonomyStore) CreateClass(ctx context.Context, c *models.Class) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`INSERT INTO change_classes (id, code, name, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(c.ID), c.Code, c.Name, c.Description, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert class: %w", postgres.MapError(err))
	}
	return nil
}

func (s *PostgresTaxonomyStore) CreateCategory(ctx context.Context, c *models.Category) error {
	var parent uuid.NullUUID
	if c.ParentID != nil {
		parent = uuid.NullUUID{UUID: uuid.UUID(*c.ParentID), Valid: true}
	}
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`INSERT INTO change_categories (id, class_id, parent_id, code, name, depth, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(c.ID), uuid.UUID(c.ClassID), parent, c.Code, c.Name, c.Depth, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", postgres.MapError(err))
	}
	return nil
}

func (s *PostgresTaxonomyStore) CreateItem(ctx context.Context, i *models.Item) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`INSERT INTO change_items (id, category_id, code, name, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(i.ID), uuid.UUID(i.CategoryID), i.Code, i.Name, i.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", postgres.MapError(err))
	}
	return nil
}

func (s *PostgresTaxonomyStore) FindClass(ctx context.Context, classID id.TaxonomyClassID) (*models.Class, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM change_classes WHERE id = $1 AND deleted_at IS NULL`, uuid.UUID(classID))
	return scanClass(row)
}

func (s *PostgresTaxonomyStore) FindCategory(ctx context.Context, categoryID id.TaxonomyCategoryID) (*models.Category, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM change_categories WHERE id = $1 AND deleted_at IS NULL`, uuid.UUID(categoryID))
	return scanCategory(row)
}

func (s *PostgresTaxonomyStore) ListClasses(ctx context.Context) ([]*models.Class, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+classColumns+` FROM change_classes WHERE deleted_at IS NULL ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query classes: %w", err)
	}
	defer rows.Close()
	var out []*models.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresTaxonomyStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM change_categories WHERE deleted_at IS NULL ORDER BY depth, code`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	var out []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresTaxonomyStore) ListItems(ctx context.Context) ([]*models.Item, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+itemColumns+` FROM change_items WHERE deleted_at IS NULL ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (s *PostgresTaxonomyStore) FindItemsByIDs(ctx context.Context, ids []id.TaxonomyItemID) (map[id.TaxonomyItemID]*models.Item, error) {
	out := make(map[id.TaxonomyItemID]*models.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]string, len(ids))
	for i, itemID := range ids {
		raw[i] = itemID.String()
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+itemColumns+` FROM change_items WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()
	items, err := collectItems(rows)
	if err != nil {
		return nil, err
	}
	for _, i := range items {
		out[i.ID] = i
	}
	return out, nil
}

func (s *PostgresTaxonomyStore) DeleteItem(ctx context.Context, itemID id.TaxonomyItemID, at time.Time) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE change_items SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, uuid.UUID(itemID), at)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClass(row scanner) (*models.Class, error) {
	var (
		c     models.Class
		rawID uuid.UUID
	)
	if err := row.Scan(&rawID, &c.Code, &c.Name, &c.Description, &c.CreatedAt, &c.DeletedAt); err != nil {
		return nil, postgres.MapError(err)
	}
	c.ID = id.TaxonomyClassID(rawID)
	return &c, nil
}

func scanCategory(row scanner) (*models.Category, error) {
	var (
		c             models.Category
		rawID, rawCls uuid.UUID
		parent        uuid.NullUUID
	)
	if err := row.Scan(&rawID, &rawCls, &parent, &c.Code, &c.Name, &c.Depth, &c.CreatedAt, &c.DeletedAt); err != nil {
		return nil, postgres.MapError(err)
	}
	c.ID = id.TaxonomyCategoryID(rawID)
	c.ClassID = id.TaxonomyClassID(rawCls)
	if parent.Valid {
		p := id.TaxonomyCategoryID(parent.UUID)
		c.ParentID = &p
	}
	return &c, nil
}

func collectItems(rows *sql.Rows) ([]*models.Item, error) {
	var out []*models.Item
	for rows.Next() {
		var (
			i             models.Item
			rawID, rawCat uuid.UUID
		)
		if err := rows.Scan(&rawID, &rawCat, &i.Code, &i.Name, &i.CreatedAt, &i.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		i.ID = id.TaxonomyItemID(rawID)
		i.CategoryID = id.TaxonomyCategoryID(rawCat)
		out = append(out, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}
