package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"changepoint/internal/auth/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/testutil"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
	ctx   context.Context
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = NewInMemoryUserStore()
	s.ctx = context.Background()
}

func (s *InMemoryUserStoreSuite) newUser(email string) *models.User {
	u, err := models.NewUser(testutil.NewUserID(), email, "User", "hash", id.RoleTier1Editor, nil, time.Now())
	s.Require().NoError(err)
	return u
}

func (s *InMemoryUserStoreSuite) TestCreateAndFind() {
	u := s.newUser("a@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	byEmail, err := s.store.FindByEmail(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)

	byIDs, err := s.store.FindByIDs(s.ctx, []id.UserID{u.ID, testutil.NewUserID()})
	s.Require().NoError(err)
	s.Len(byIDs, 1)
}

func (s *InMemoryUserStoreSuite) TestDuplicateEmailConflicts() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("a@example.com")))
	s.ErrorIs(s.store.Create(s.ctx, s.newUser("a@example.com")), sentinel.ErrConflict)
}

func (s *InMemoryUserStoreSuite) TestUpdateRoleKeepsCompanyWhenOmitted() {
	u := s.newUser("a@example.com")
	companyID := testutil.NewCompanyID()
	u.CompanyID = &companyID
	s.Require().NoError(s.store.Create(s.ctx, u))

	updated, err := s.store.UpdateRole(s.ctx, u.ID, id.RoleTier2Editor, nil)
	s.Require().NoError(err)
	s.Equal(id.RoleTier2Editor, updated.Role)
	s.Require().NotNil(updated.CompanyID)
	s.Equal(companyID, *updated.CompanyID)
}

func (s *InMemoryUserStoreSuite) TestReturnedUserIsACopy() {
	u := s.newUser("a@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	got, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	got.Name = "mutated"

	again, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("User", again.Name)
}

func (s *InMemoryUserStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(s.ctx, testutil.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
