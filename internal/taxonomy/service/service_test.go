package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"changepoint/internal/taxonomy/models"
	"changepoint/internal/taxonomy/store"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/testutil"
)

type TaxonomyServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service

	class    *models.Class
	top      *models.Category
	child    *models.Category
	leaf     *models.Item
	topLevel *models.Item
}

func TestTaxonomyServiceSuite(t *testing.T) {
	suite.Run(t, new(TaxonomyServiceSuite))
}

func (s *TaxonomyServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.service = New(store.NewInMemoryTaxonomyStore())

	var err error
	s.class, err = s.service.CreateClass(s.ctx, models.ClassCP96, "96 change points", "")
	s.Require().NoError(err)
	s.top, err = s.service.CreateCategory(s.ctx, s.class.ID, nil, "NEW", "New")
	s.Require().NoError(err)
	s.child, err = s.service.CreateCategory(s.ctx, s.class.ID, &s.top.ID, "SUPPLIER", "Supplier")
	s.Require().NoError(err)
	s.leaf, err = s.service.CreateItem(s.ctx, s.child.ID, "SUP-01", "Supplier relocation")
	s.Require().NoError(err)
	s.topLevel, err = s.service.CreateItem(s.ctx, s.top.ID, "NEW-01", "New line")
	s.Require().NoError(err)
}

func (s *TaxonomyServiceSuite) TestResolveItems() {
	unknown := testutil.NewItemID()
	details, err := s.service.ResolveItems(s.ctx, []id.TaxonomyItemID{s.leaf.ID, unknown})
	s.Require().NoError(err)
	s.Require().Len(details, 1)
	s.Equal(s.top.ID, details[s.leaf.ID].Root.ID)
	s.Equal(models.ClassCP96, details[s.leaf.ID].Class.Code)
}

func (s *TaxonomyServiceSuite) TestDeletedItemIsNotResolvable() {
	s.Require().NoError(s.service.DeleteItem(s.ctx, s.leaf.ID))

	details, err := s.service.ResolveItems(s.ctx, []id.TaxonomyItemID{s.leaf.ID})
	s.Require().NoError(err)
	s.Empty(details)

	err = s.service.DeleteItem(s.ctx, s.leaf.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *TaxonomyServiceSuite) TestFilters() {
	cats, err := s.service.ListCategories(s.ctx, &s.class.ID)
	s.Require().NoError(err)
	s.Len(cats, 2)

	other := id.TaxonomyClassID(testutil.NewItemID())
	cats, err = s.service.ListCategories(s.ctx, &other)
	s.Require().NoError(err)
	s.Empty(cats)

	items, err := s.service.ListItems(s.ctx, &s.child.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("SUP-01", items[0].Code)
}

func (s *TaxonomyServiceSuite) TestCatalogOrder() {
	catalog, err := s.service.Catalog(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(catalog, 2)
	s.Equal("NEW", catalog[0].Category.Code)
	s.Equal("SUPPLIER", catalog[1].Category.Code)
}

func (s *TaxonomyServiceSuite) TestCreateErrors() {
	_, err := s.service.CreateClass(s.ctx, models.ClassCP96, "dup", "")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.service.CreateItem(s.ctx, id.TaxonomyCategoryID(testutil.NewItemID()), "X", "X")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.CreateItem(s.ctx, s.child.ID, "SUP-01", "again")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
