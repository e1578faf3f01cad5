package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"changepoint/internal/platform/postgres"
	"changepoint/internal/policy/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/platform/tx"
)

// PostgresPolicyStore persists policy settings. Values are stored as jsonb.
type PostgresPolicyStore struct {
	db *sql.DB
}

func NewPostgresPolicyStore(db *sql.DB) *PostgresPolicyStore {
	return &PostgresPolicyStore{db: db}
}

const settingColumns = `id, key, value, scope_type, scope_id, effective_from, effective_to, created_at, updated_at, deleted_at`

func (s *PostgresPolicyStore) Create(ctx context.Context, setting *models.Setting) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`INSERT INTO policy_settings (`+settingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL)`,
		uuid.UUID(setting.ID), string(setting.Key), []byte(setting.Value), string(setting.ScopeType),
		nullableScope(setting.ScopeID), setting.EffectiveFrom, setting.EffectiveTo, setting.CreatedAt, setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert policy setting: %w", postgres.MapError(err))
	}
	return nil
}

func (s *PostgresPolicyStore) Update(ctx context.Context, setting *models.Setting) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE policy_settings
		 SET value = $2, scope_type = $3, scope_id = $4, effective_from = $5, effective_to = $6, updated_at = $7
		 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(setting.ID), []byte(setting.Value), string(setting.ScopeType), nullableScope(setting.ScopeID),
		setting.EffectiveFrom, setting.EffectiveTo, setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update policy setting: %w", postgres.MapError(err))
	}
	return expectOne(res)
}

func (s *PostgresPolicyStore) FindByID(ctx context.Context, settingID id.PolicySettingID) (*models.Setting, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM policy_settings WHERE id = $1 AND deleted_at IS NULL`, uuid.UUID(settingID))
	return scanSetting(row)
}

func (s *PostgresPolicyStore) List(ctx context.Context) ([]*models.Setting, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+settingColumns+` FROM policy_settings WHERE deleted_at IS NULL ORDER BY effective_from DESC`)
	if err != nil {
		return nil, fmt.Errorf("query policy settings: %w", err)
	}
	return collect(rows)
}

func (s *PostgresPolicyStore) ListByKey(ctx context.Context, key models.Key, scopeType models.ScopeType) ([]*models.Setting, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+settingColumns+` FROM policy_settings
		 WHERE key = $1 AND scope_type = $2 AND deleted_at IS NULL
		 ORDER BY effective_from DESC`,
		string(key), string(scopeType))
	if err != nil {
		return nil, fmt.Errorf("query policy settings: %w", err)
	}
	return collect(rows)
}

func (s *PostgresPolicyStore) SoftDelete(ctx context.Context, settingID id.PolicySettingID, at time.Time) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE policy_settings SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(settingID), at)
	if err != nil {
		return fmt.Errorf("delete policy setting: %w", err)
	}
	return expectOne(res)
}

// LockKey serializes writers of one key until the surrounding transaction
// ends, so the overlap check and the write cannot interleave.
func (s *PostgresPolicyStore) LockKey(ctx context.Context, key models.Key) error {
	if _, err := tx.Exec(ctx, s.db).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(key)); err != nil {
		return fmt.Errorf("lock policy key: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSetting(row scanner) (*models.Setting, error) {
	var (
		setting   models.Setting
		rawID     uuid.UUID
		key, typ  string
		value     []byte
		scopeID   uuid.NullUUID
		effective sql.NullTime
	)
	err := row.Scan(&rawID, &key, &value, &typ, &scopeID, &setting.EffectiveFrom, &effective,
		&setting.CreatedAt, &setting.UpdatedAt, &setting.DeletedAt)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	setting.ID = id.PolicySettingID(rawID)
	setting.Key = models.Key(key)
	setting.Value = value
	setting.ScopeType = models.ScopeType(typ)
	if scopeID.Valid {
		c := id.CompanyID(scopeID.UUID)
		setting.ScopeID = &c
	}
	if effective.Valid {
		t := effective.Time
		setting.EffectiveTo = &t
	}
	return &setting, nil
}

func collect(rows *sql.Rows) ([]*models.Setting, error) {
	defer rows.Close()
	var out []*models.Setting
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy settings: %w", err)
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

func nullableScope(scopeID *id.CompanyID) any {
	if scopeID == nil {
		return nil
	}
	return uuid.UUID(*scopeID)
}
