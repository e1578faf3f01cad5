package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"changepoint/internal/company/models"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/requestcontext"
)

// CompanyStore persists companies.
type CompanyStore interface {
	Create(ctx context.Context, c *models.Company) error
	FindByID(ctx context.Context, companyID id.CompanyID) (*models.Company, error)
	FindByCode(ctx context.Context, code string) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
}

type Service struct {
	companies CompanyStore
}

func New(companies CompanyStore) *Service {
	return &Service{companies: companies}
}

func (s *Service) Create(ctx context.Context, code, name string, typ models.CompanyType) (*models.Company, error) {
	c, err := models.NewCompany(id.CompanyID(uuid.New()), code, name, typ, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.companies.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "company code already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create company")
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, companyID id.CompanyID) (*models.Company, error) {
	c, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "company not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load company")
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Company, error) {
	list, err := s.companies.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list companies")
	}
	return list, nil
}

// Exists reports whether the company is known. Used by registration and
// change-event creation to reject dangling references.
func (s *Service) Exists(ctx context.Context, companyID id.CompanyID) (bool, error) {
	_, err := s.companies.FindByID(ctx, companyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load company")
	}
	return true, nil
}
