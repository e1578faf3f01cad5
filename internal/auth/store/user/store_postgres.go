package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"changepoint/internal/auth/models"
	"changepoint/internal/platform/postgres"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/tx"
)

// PostgresUserStore persists users in PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, email, name, password_hash, role, company_id, created_at, updated_at`

func (s *PostgresUserStore) Create(ctx context.Context, u *models.User) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(u.ID), u.Email, u.Name, u.PasswordHash, string(u.Role), nullableCompany(u.CompanyID), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", postgres.MapError(err))
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresUserStore) FindByIDs(ctx context.Context, ids []id.UserID) (map[id.UserID]*models.User, error) {
	out := make(map[id.UserID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]string, len(ids))
	for i, userID := range ids {
		raw[i] = userID.String()
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresUserStore) UpdateRole(ctx context.Context, userID id.UserID, role id.Role, companyID *id.CompanyID) (*models.User, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`UPDATE users
		 SET role = $2, company_id = COALESCE($3, company_id), updated_at = $4
		 WHERE id = $1
		 RETURNING `+userColumns,
		uuid.UUID(userID), string(role), nullableCompany(companyID), time.Now(),
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u         models.User
		rawID     uuid.UUID
		role      string
		companyID uuid.NullUUID
	)
	err := row.Scan(&rawID, &u.Email, &u.Name, &u.PasswordHash, &role, &companyID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	u.ID = id.UserID(rawID)
	u.Role = id.Role(role)
	if companyID.Valid {
		c := id.CompanyID(companyID.UUID)
		u.CompanyID = &c
	}
	return &u, nil
}

func nullableCompany(companyID *id.CompanyID) any {
	if companyID == nil || companyID.IsNil() {
		return nil
	}
	return uuid.UUID(*companyID)
}
