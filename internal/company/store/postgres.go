package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"changepoint/internal/company/models"
	"changepoint/internal/platform/postgres"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/tx"
)

// PostgresCompanyStore persists companies in PostgreSQL.
type PostgresCompanyStore struct {
	db *sql.DB
}

func NewPostgresCompanyStore(db *sql.DB) *PostgresCompanyStore {
	return &PostgresCompanyStore{db: db}
}

const companyColumns = `id, code, name, type, created_at`

func (s *PostgresCompanyStore) Create(ctx context.Context, c *models.Company) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`INSERT INTO companies (`+companyColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(c.ID), c.Code, c.Name, string(c.Type), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", postgres.MapError(err))
	}
	return nil
}

func (s *PostgresCompanyStore) FindByID(ctx context.Context, companyID id.CompanyID) (*models.Company, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, uuid.UUID(companyID))
	return scanCompany(row)
}

func (s *PostgresCompanyStore) FindByCode(ctx context.Context, code string) (*models.Company, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE code = $1`, code)
	return scanCompany(row)
}

func (s *PostgresCompanyStore) List(ctx context.Context) ([]*models.Company, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var out []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(row scanner) (*models.Company, error) {
	var (
		c      models.Company
		rawID  uuid.UUID
		rawTyp string
	)
	if err := row.Scan(&rawID, &c.Code, &c.Name, &rawTyp, &c.CreatedAt); err != nil {
		return nil, postgres.MapError(err)
	}
	c.ID = id.CompanyID(rawID)
	c.Type = models.CompanyType(rawTyp)
	return &c, nil
}
