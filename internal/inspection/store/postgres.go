package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"changepoint/internal/inspection/models"
	"changepoint/internal/platform/postgres"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/platform/tx"
)

// PostgresInspectionStore persists templates, items and results. Item
// options are a text[] column.
type PostgresInspectionStore struct {
	db *sql.DB
}

func NewPostgresInspectionStore(db *sql.DB) *PostgresInspectionStore {
	return &PostgresInspectionStore{db: db}
}

const (
	templateColumns = `id, name, version, is_active, created_at, updated_at, deleted_at`
	itemColumns     = `id, template_id, item_order, category, question, type, required, options, created_at, updated_at, deleted_at`
	resultColumns   = `id, event_id, item_id, value, created_at, updated_at, deleted_at`
)

func (s *PostgresInspectionStore) CreateTemplate(ctx context.Context, t *models.Template) error {
	return tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
			`INSERT INTO inspection_templates (`+templateColumns+`) VALUES ($1, $2, $3, $4, $5, $6, NULL)`,
			uuid.UUID(t.ID), t.Name, t.Version, t.IsActive, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert inspection template: %w", postgres.MapError(err))
		}
		for _, i := range t.Items {
			if err := s.CreateItem(ctx, i); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresInspectionStore) FindTemplate(ctx context.Context, templateID id.InspectionTemplateID) (*models.Template, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM inspection_templates WHERE id = $1 AND deleted_at IS NULL`, uuid.UUID(templateID))
	t, err := scanTemplate(row)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, []*models.Template{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PostgresInspectionStore) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+templateColumns+` FROM inspection_templates WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query inspection templates: %w", err)
	}
	defer rows.Close()
	templates := []*models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inspection templates: %w", err)
	}
	if err := s.attachItems(ctx, templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (s *PostgresInspectionStore) UpdateTemplate(ctx context.Context, t *models.Template) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE inspection_templates SET name = $2, version = $3, is_active = $4, updated_at = $5
		 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(t.ID), t.Name, t.Version, t.IsActive, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update inspection template: %w", postgres.MapError(err))
	}
	return expectOne(res)
}

func (s *PostgresInspectionStore) SoftDeleteTemplate(ctx context.Context, templateID id.InspectionTemplateID, at time.Time) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE inspection_templates SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(templateID), at)
	if err != nil {
		return fmt.Errorf("delete inspection template: %w", err)
	}
	return expectOne(res)
}

func (s *PostgresInspectionStore) CreateItem(ctx context.Context, i *models.Item) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`INSERT INTO inspection_items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL)`,
		uuid.UUID(i.ID), uuid.UUID(i.TemplateID), i.Order, i.Category, i.Question, string(i.Type), i.Required,
		pq.Array(i.Options), i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert inspection item: %w", postgres.MapError(err))
	}
	return nil
}

func (s *PostgresInspectionStore) FindItem(ctx context.Context, itemID id.InspectionItemID) (*models.Item, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inspection_items WHERE id = $1 AND deleted_at IS NULL`, uuid.UUID(itemID))
	return scanItem(row)
}

func (s *PostgresInspectionStore) FindItemsByIDs(ctx context.Context, ids []id.InspectionItemID) (map[id.InspectionItemID]*models.Item, error) {
	raw := make([]uuid.UUID, len(ids))
	for i, itemID := range ids {
		raw[i] = uuid.UUID(itemID)
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+itemColumns+` FROM inspection_items WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("query inspection items: %w", err)
	}
	defer rows.Close()
	out := make(map[id.InspectionItemID]*models.Item, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inspection items: %w", err)
	}
	return out, nil
}

func (s *PostgresInspectionStore) UpdateItem(ctx context.Context, i *models.Item) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE inspection_items
		 SET item_order = $2, category = $3, question = $4, type = $5, required = $6, options = $7, updated_at = $8
		 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(i.ID), i.Order, i.Category, i.Question, string(i.Type), i.Required, pq.Array(i.Options), i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update inspection item: %w", postgres.MapError(err))
	}
	return expectOne(res)
}

func (s *PostgresInspectionStore) SoftDeleteItem(ctx context.Context, itemID id.InspectionItemID, at time.Time) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE inspection_items SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(itemID), at)
	if err != nil {
		return fmt.Errorf("delete inspection item: %w", err)
	}
	return expectOne(res)
}

func (s *PostgresInspectionStore) FindResult(ctx context.Context, resultID id.InspectionResultID) (*models.Result, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM inspection_results WHERE id = $1 AND deleted_at IS NULL`, uuid.UUID(resultID))
	r, err := scanResult(row)
	if err != nil {
		return nil, err
	}
	if err := s.attachResultItems(ctx, []*models.Result{r}); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresInspectionStore) ResultsByEvents(ctx context.Context, eventIDs []id.ChangeEventID) (map[id.ChangeEventID][]*models.Result, error) {
	raw := make([]uuid.UUID, len(eventIDs))
	for i, e := range eventIDs {
		raw[i] = uuid.UUID(e)
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT r.id, r.event_id, r.item_id, r.value, r.created_at, r.updated_at, r.deleted_at
		 FROM inspection_results r JOIN inspection_items i ON i.id = r.item_id
		 WHERE r.event_id = ANY($1::uuid[]) AND r.deleted_at IS NULL
		 ORDER BY i.item_order, r.created_at`,
		pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("query inspection results: %w", err)
	}
	defer rows.Close()
	var all []*models.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inspection results: %w", err)
	}
	if err := s.attachResultItems(ctx, all); err != nil {
		return nil, err
	}
	out := make(map[id.ChangeEventID][]*models.Result, len(eventIDs))
	for _, r := range all {
		out[r.EventID] = append(out[r.EventID], r)
	}
	return out, nil
}

func (s *PostgresInspectionStore) UpdateResult(ctx context.Context, r *models.Result) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE inspection_results SET value = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(r.ID), r.Value, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update inspection result: %w", postgres.MapError(err))
	}
	return expectOne(res)
}

func (s *PostgresInspectionStore) SoftDeleteResult(ctx context.Context, resultID id.InspectionResultID, at time.Time) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE inspection_results SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(resultID), at)
	if err != nil {
		return fmt.Errorf("delete inspection result: %w", err)
	}
	return expectOne(res)
}

// UpsertResults writes every result keyed by (event_id, item_id) in one
// transaction. A deleted row for the pair is revived.
func (s *PostgresInspectionStore) UpsertResults(ctx context.Context, results []*models.Result) error {
	return tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		for _, r := range results {
			_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
				`INSERT INTO inspection_results (`+resultColumns+`) VALUES ($1, $2, $3, $4, $5, $6, NULL)
				 ON CONFLICT (event_id, item_id)
				 DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, deleted_at = NULL`,
				uuid.UUID(r.ID), uuid.UUID(r.EventID), uuid.UUID(r.ItemID), r.Value, r.CreatedAt, r.UpdatedAt)
			if err != nil {
				return fmt.Errorf("upsert inspection result: %w", postgres.MapError(err))
			}
		}
		return nil
	})
}

func (s *PostgresInspectionStore) attachItems(ctx context.Context, templates []*models.Template) error {
	if len(templates) == 0 {
		return nil
	}
	raw := make([]uuid.UUID, len(templates))
	byID := make(map[id.InspectionTemplateID]*models.Template, len(templates))
	for i, t := range templates {
		raw[i] = uuid.UUID(t.ID)
		t.Items = []*models.Item{}
		byID[t.ID] = t
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+itemColumns+` FROM inspection_items
		 WHERE template_id = ANY($1::uuid[]) AND deleted_at IS NULL
		 ORDER BY item_order, question`,
		pq.Array(raw))
	if err != nil {
		return fmt.Errorf("query inspection items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return err
		}
		t := byID[item.TemplateID]
		t.Items = append(t.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate inspection items: %w", err)
	}
	return nil
}

// attachResultItems loads each result's item, deleted items included, so a
// stored answer always shows its question.
func (s *PostgresInspectionStore) attachResultItems(ctx context.Context, results []*models.Result) error {
	if len(results) == 0 {
		return nil
	}
	seen := map[id.InspectionItemID]struct{}{}
	var raw []uuid.UUID
	for _, r := range results {
		if _, ok := seen[r.ItemID]; !ok {
			seen[r.ItemID] = struct{}{}
			raw = append(raw, uuid.UUID(r.ItemID))
		}
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+itemColumns+` FROM inspection_items WHERE id = ANY($1::uuid[])`, pq.Array(raw))
	if err != nil {
		return fmt.Errorf("query inspection items: %w", err)
	}
	defer rows.Close()
	items := make(map[id.InspectionItemID]*models.Item, len(raw))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return err
		}
		items[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate inspection items: %w", err)
	}
	for _, r := range results {
		r.Item = items[r.ItemID]
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*models.Template, error) {
	var (
		t     models.Template
		rawID uuid.UUID
	)
	if err := row.Scan(&rawID, &t.Name, &t.Version, &t.IsActive, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
		return nil, postgres.MapError(err)
	}
	t.ID = id.InspectionTemplateID(rawID)
	t.Items = []*models.Item{}
	return &t, nil
}

func scanItem(row scanner) (*models.Item, error) {
	var (
		i                 models.Item
		rawID, templateID uuid.UUID
		typ               string
		options           pq.StringArray
	)
	err := row.Scan(&rawID, &templateID, &i.Order, &i.Category, &i.Question, &typ, &i.Required, &options,
		&i.CreatedAt, &i.UpdatedAt, &i.DeletedAt)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	i.ID = id.InspectionItemID(rawID)
	i.TemplateID = id.InspectionTemplateID(templateID)
	i.Type = models.ItemType(typ)
	i.Options = append([]string{}, options...)
	return &i, nil
}

func scanResult(row scanner) (*models.Result, error) {
	var (
		r                      models.Result
		rawID, eventID, itemID uuid.UUID
	)
	if err := row.Scan(&rawID, &eventID, &itemID, &r.Value, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt); err != nil {
		return nil, postgres.MapError(err)
	}
	r.ID = id.InspectionResultID(rawID)
	r.EventID = id.ChangeEventID(eventID)
	r.ItemID = id.InspectionItemID(itemID)
	return &r, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
