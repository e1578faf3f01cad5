package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"changepoint/internal/company/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
)

type InMemoryCompanyStoreSuite struct {
	suite.Suite
	store *InMemoryCompanyStore
	ctx   context.Context
}

func TestInMemoryCompanyStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryCompanyStoreSuite))
}

func (s *InMemoryCompanyStoreSuite) SetupTest() {
	s.store = NewInMemoryCompanyStore()
	s.ctx = context.Background()
}

func (s *InMemoryCompanyStoreSuite) newCompany(code string) *models.Company {
	c, err := models.NewCompany(id.CompanyID(uuid.New()), code, "Company "+code, models.CompanyTypeTier2, time.Now())
	s.Require().NoError(err)
	return c
}

func (s *InMemoryCompanyStoreSuite) TestCreateAndFind() {
	c := s.newCompany("SUP-01")
	s.Require().NoError(s.store.Create(s.ctx, c))

	byID, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("SUP-01", byID.Code)

	byCode, err := s.store.FindByCode(s.ctx, "SUP-01")
	s.Require().NoError(err)
	s.Equal(c.ID, byCode.ID)
}

func (s *InMemoryCompanyStoreSuite) TestDuplicateCodeConflicts() {
	s.Require().NoError(s.store.Create(s.ctx, s.newCompany("SUP-01")))
	s.ErrorIs(s.store.Create(s.ctx, s.newCompany("SUP-01")), sentinel.ErrConflict)
}

func (s *InMemoryCompanyStoreSuite) TestListOrderedByCode() {
	s.Require().NoError(s.store.Create(s.ctx, s.newCompany("B")))
	s.Require().NoError(s.store.Create(s.ctx, s.newCompany("A")))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("A", list[0].Code)
}

func (s *InMemoryCompanyStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(s.ctx, id.CompanyID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
