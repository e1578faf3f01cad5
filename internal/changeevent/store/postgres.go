package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"changepoint/internal/changeevent/models"
	"changepoint/internal/platform/postgres"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/platform/tx"
)

// PostgresChangeEventStore persists events in change_events and their tags in
// change_event_tags. Writes touching both tables join the caller's
// transaction or open their own.
type PostgresChangeEventStore struct {
	db *sql.DB
}

func NewPostgresChangeEventStore(db *sql.DB) *PostgresChangeEventStore {
	return &PostgresChangeEventStore{db: db}
}

const eventColumns = `id, receipt_month, occurred_date, customer, project, product_line, part_number, factory,
	production_line, company_id, change_type, category, sub_category, description, department, manager_id,
	executive_id, reviewer_id, status, created_by_id, updated_by_id, created_at, updated_at, deleted_at`

func (s *PostgresChangeEventStore) Create(ctx context.Context, e *models.ChangeEvent) error {
	return tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
			`INSERT INTO change_events (`+eventColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, NULL)`,
			uuid.UUID(e.ID), e.ReceiptMonth, e.OccurredDate, e.Customer, e.Project, e.ProductLine, e.PartNumber,
			e.Factory, e.ProductionLine, uuid.UUID(e.CompanyID), string(e.ChangeType), e.Category, e.SubCategory,
			e.Description, e.Department, uuid.UUID(e.ManagerID), nullableUser(e.ExecutiveID), nullableUser(e.ReviewerID),
			string(e.Status), uuid.UUID(e.CreatedByID), nullableUser(e.UpdatedByID), e.CreatedAt, e.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert change event: %w", postgres.MapError(err))
		}
		return s.insertTags(ctx, e.ID, e.Tags)
	})
}

// Update overwrites the live event. With replaceTags the stored tag set is
// deleted and e.Tags inserted in the same transaction.
func (s *PostgresChangeEventStore) Update(ctx context.Context, e *models.ChangeEvent, replaceTags bool) error {
	return tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
			`UPDATE change_events SET
			   receipt_month = $2, occurred_date = $3, customer = $4, project = $5, product_line = $6,
			   part_number = $7, factory = $8, production_line = $9, company_id = $10, change_type = $11,
			   category = $12, sub_category = $13, description = $14, department = $15, manager_id = $16,
			   executive_id = $17, reviewer_id = $18, status = $19, updated_by_id = $20, updated_at = $21
			 WHERE id = $1 AND deleted_at IS NULL`,
			uuid.UUID(e.ID), e.ReceiptMonth, e.OccurredDate, e.Customer, e.Project, e.ProductLine, e.PartNumber,
			e.Factory, e.ProductionLine, uuid.UUID(e.CompanyID), string(e.ChangeType), e.Category, e.SubCategory,
			e.Description, e.Department, uuid.UUID(e.ManagerID), nullableUser(e.ExecutiveID), nullableUser(e.ReviewerID),
			string(e.Status), nullableUser(e.UpdatedByID), e.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update change event: %w", postgres.MapError(err))
		}
		if err := expectOne(res); err != nil {
			return err
		}
		if !replaceTags {
			return nil
		}
		if _, err := tx.Exec(ctx, s.db).ExecContext(ctx,
			`DELETE FROM change_event_tags WHERE event_id = $1`, uuid.UUID(e.ID)); err != nil {
			return fmt.Errorf("clear change event tags: %w", err)
		}
		return s.insertTags(ctx, e.ID, e.Tags)
	})
}

func (s *PostgresChangeEventStore) insertTags(ctx context.Context, eventID id.ChangeEventID, tags []models.Tag) error {
	for _, t := range tags {
		_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
			`INSERT INTO change_event_tags (event_id, item_id, tag_type) VALUES ($1, $2, $3)`,
			uuid.UUID(eventID), uuid.UUID(t.ItemID), string(t.TagType))
		if err != nil {
			return fmt.Errorf("insert change event tag: %w", postgres.MapError(err))
		}
	}
	return nil
}

func (s *PostgresChangeEventStore) FindByID(ctx context.Context, eventID id.ChangeEventID) (*models.ChangeEvent, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM change_events WHERE id = $1 AND deleted_at IS NULL`, uuid.UUID(eventID))
	e, err := scanEvent(row)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, []*models.ChangeEvent{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *PostgresChangeEventStore) List(ctx context.Context, f Filter) ([]*models.ChangeEvent, error) {
	var status, company any
	if f.Status != nil {
		status = string(*f.Status)
	}
	if f.CompanyID != nil {
		company = uuid.UUID(*f.CompanyID)
	}
	var limit any
	if f.Take > 0 {
		limit = f.Take
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+eventColumns+` FROM change_events
		 WHERE deleted_at IS NULL
		   AND ($1::text IS NULL OR status = $1)
		   AND ($2::uuid IS NULL OR company_id = $2)
		 ORDER BY created_at DESC, id
		 OFFSET $3 LIMIT $4`,
		status, company, f.Skip, limit)
	if err != nil {
		return nil, fmt.Errorf("query change events: %w", err)
	}
	events, err := collect(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *PostgresChangeEventStore) ListApprovedBetween(ctx context.Context, start, end time.Time) ([]*models.ChangeEvent, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+eventColumns+` FROM change_events
		 WHERE deleted_at IS NULL AND status = $1 AND created_at >= $2 AND created_at < $3
		 ORDER BY created_at ASC`,
		string(models.StatusApproved), start, end)
	if err != nil {
		return nil, fmt.Errorf("query approved change events: %w", err)
	}
	events, err := collect(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *PostgresChangeEventStore) SoftDelete(ctx context.Context, eventID id.ChangeEventID, at time.Time) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE change_events SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(eventID), at)
	if err != nil {
		return fmt.Errorf("delete change event: %w", err)
	}
	return expectOne(res)
}

func (s *PostgresChangeEventStore) TagsByEvent(ctx context.Context, eventID id.ChangeEventID) ([]models.Tag, error) {
	var exists bool
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM change_events WHERE id = $1)`, uuid.UUID(eventID)).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check change event: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	byEvent, err := s.loadTags(ctx, []uuid.UUID{uuid.UUID(eventID)})
	if err != nil {
		return nil, err
	}
	tags := byEvent[eventID]
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// CompanyOf returns the owning company of any known event, deleted or not.
func (s *PostgresChangeEventStore) CompanyOf(ctx context.Context, eventID id.ChangeEventID) (id.CompanyID, error) {
	var company uuid.UUID
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT company_id FROM change_events WHERE id = $1`, uuid.UUID(eventID)).Scan(&company)
	if err != nil {
		return id.CompanyID{}, postgres.MapError(err)
	}
	return id.CompanyID(company), nil
}

func (s *PostgresChangeEventStore) attachTags(ctx context.Context, events []*models.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}
	raw := make([]uuid.UUID, len(events))
	for i, e := range events {
		raw[i] = uuid.UUID(e.ID)
	}
	byEvent, err := s.loadTags(ctx, raw)
	if err != nil {
		return err
	}
	for _, e := range events {
		e.Tags = byEvent[e.ID]
		if e.Tags == nil {
			e.Tags = []models.Tag{}
		}
	}
	return nil
}

func (s *PostgresChangeEventStore) loadTags(ctx context.Context, eventIDs []uuid.UUID) (map[id.ChangeEventID][]models.Tag, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT event_id, item_id, tag_type FROM change_event_tags
		 WHERE event_id = ANY($1::uuid[])
		 ORDER BY tag_type = 'PRIMARY' DESC, item_id`,
		pq.Array(eventIDs))
	if err != nil {
		return nil, fmt.Errorf("query change event tags: %w", err)
	}
	defer rows.Close()

	out := make(map[id.ChangeEventID][]models.Tag, len(eventIDs))
	for rows.Next() {
		var (
			eventID, itemID uuid.UUID
			tagType         string
		)
		if err := rows.Scan(&eventID, &itemID, &tagType); err != nil {
			return nil, fmt.Errorf("scan change event tag: %w", err)
		}
		key := id.ChangeEventID(eventID)
		out[key] = append(out[key], models.Tag{ItemID: id.TaxonomyItemID(itemID), TagType: models.TagType(tagType)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change event tags: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.ChangeEvent, error) {
	var (
		e                               models.ChangeEvent
		rawID, companyID, managerID     uuid.UUID
		createdByID                     uuid.UUID
		executiveID, reviewerID, editor uuid.NullUUID
		changeType, status              string
	)
	err := row.Scan(&rawID, &e.ReceiptMonth, &e.OccurredDate, &e.Customer, &e.Project, &e.ProductLine,
		&e.PartNumber, &e.Factory, &e.ProductionLine, &companyID, &changeType, &e.Category, &e.SubCategory,
		&e.Description, &e.Department, &managerID, &executiveID, &reviewerID, &status, &createdByID, &editor,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	e.ID = id.ChangeEventID(rawID)
	e.CompanyID = id.CompanyID(companyID)
	e.ManagerID = id.UserID(managerID)
	e.CreatedByID = id.UserID(createdByID)
	e.ChangeType = models.ChangeType(changeType)
	e.Status = models.Status(status)
	e.ExecutiveID = userOrNil(executiveID)
	e.ReviewerID = userOrNil(reviewerID)
	e.UpdatedByID = userOrNil(editor)
	return &e, nil
}

func collect(rows *sql.Rows) ([]*models.ChangeEvent, error) {
	defer rows.Close()
	out := []*models.ChangeEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change events: %w", err)
	}
	return out, nil
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

func nullableUser(u *id.UserID) any {
	if u == nil {
		return nil
	}
	return uuid.UUID(*u)
}

func userOrNil(u uuid.NullUUID) *id.UserID {
	if !u.Valid {
		return nil
	}
	v := id.UserID(u.UUID)
	return &v
}
