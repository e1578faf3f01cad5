package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"changepoint/internal/policy/models"
	"changepoint/internal/policy/store"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/audit"
	"changepoint/pkg/platform/audit/publisher"
	auditmemory "changepoint/pkg/platform/audit/store/memory"
	"changepoint/pkg/platform/tx"
	"changepoint/pkg/requestcontext"
	"changepoint/pkg/testutil"
)

var t0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func day(n int) *time.Time {
	t := t0.AddDate(0, 0, n)
	return &t
}

func enabled(on bool) json.RawMessage {
	if on {
		return json.RawMessage(`{"enabled":true}`)
	}
	return json.RawMessage(`{"enabled":false}`)
}

type PolicyServiceSuite struct {
	suite.Suite
	ctx     context.Context
	audit   *auditmemory.InMemoryStore
	service *Service
}

func TestPolicyServiceSuite(t *testing.T) {
	suite.Run(t, new(PolicyServiceSuite))
}

func (s *PolicyServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(
		requestcontext.WithActor(context.Background(), testutil.NewUserID(), id.RoleAdmin, id.CompanyID{}),
		t0,
	)
	s.audit = auditmemory.NewInMemoryStore()
	s.service = New(store.NewInMemoryPolicyStore(), tx.NewRunner(nil),
		WithAuditor(publisher.NewPublisher(s.audit)))
}

func (s *PolicyServiceSuite) global(on bool, from, to *time.Time) models.Draft {
	return models.Draft{
		Key:           models.KeyRequire96Tag,
		Value:         enabled(on),
		ScopeType:     models.ScopeGlobal,
		EffectiveFrom: from,
		EffectiveTo:   to,
	}
}

func (s *PolicyServiceSuite) TestTagRequiredDefaultsToDisabled() {
	required, err := s.service.TagRequired(s.ctx)
	s.Require().NoError(err)
	s.False(required)
}

func (s *PolicyServiceSuite) TestTagRequiredFollowsWindow() {
	_, err := s.service.Create(s.ctx, s.global(true, day(10), day(20)))
	s.Require().NoError(err)

	cases := []struct {
		at   *time.Time
		want bool
	}{
		{day(9), false},
		{day(10), true},
		{day(19), true},
		{day(20), false},
	}
	for _, c := range cases {
		required, err := s.service.TagRequired(requestcontext.WithTime(s.ctx, *c.at))
		s.Require().NoError(err)
		s.Equal(c.want, required, "at %s", c.at)
	}
}

func (s *PolicyServiceSuite) TestOverlappingWindowConflicts() {
	_, err := s.service.Create(s.ctx, s.global(false, day(0), nil))
	s.Require().NoError(err)

	_, err = s.service.Create(s.ctx, s.global(true, day(5), day(6)))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	companyID := testutil.NewCompanyID()
	scoped := s.global(true, day(5), day(6))
	scoped.ScopeType = models.ScopeCompany
	scoped.ScopeID = &companyID
	_, err = s.service.Create(s.ctx, scoped)
	s.NoError(err, "a different scope does not compete")
}

func (s *PolicyServiceSuite) TestAdjacentWindowsAreAllowed() {
	_, err := s.service.Create(s.ctx, s.global(false, day(0), day(10)))
	s.Require().NoError(err)
	_, err = s.service.Create(s.ctx, s.global(true, day(10), nil))
	s.Require().NoError(err)

	required, err := s.service.TagRequired(requestcontext.WithTime(s.ctx, *day(10)))
	s.Require().NoError(err)
	s.True(required)
}

func (s *PolicyServiceSuite) TestResolvePrefersExactScope() {
	companyID := testutil.NewCompanyID()
	fallback := s.global(false, day(0), nil)
	fallback.ScopeType = models.ScopeCompany
	_, err := s.service.Create(s.ctx, fallback)
	s.Require().NoError(err)

	exact := s.global(true, day(0), nil)
	exact.ScopeType = models.ScopeCompany
	exact.ScopeID = &companyID
	created, err := s.service.Create(s.ctx, exact)
	s.Require().NoError(err)

	got, err := s.service.Resolve(s.ctx, models.KeyRequire96Tag, models.ScopeCompany, &companyID, *day(1))
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(created.ID, got.ID)

	other := testutil.NewCompanyID()
	got, err = s.service.Resolve(s.ctx, models.KeyRequire96Tag, models.ScopeCompany, &other, *day(1))
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Nil(got.ScopeID, "falls back to the unscoped row")
}

func (s *PolicyServiceSuite) TestUpdate() {
	first, err := s.service.Create(s.ctx, s.global(false, day(0), day(10)))
	s.Require().NoError(err)
	second, err := s.service.Create(s.ctx, s.global(true, day(20), nil))
	s.Require().NoError(err)

	s.Run("extending into a neighbour conflicts", func() {
		_, err := s.service.Update(s.ctx, first.ID, models.Patch{EffectiveTo: day(25)})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("own window does not count as overlap", func() {
		updated, err := s.service.Update(s.ctx, second.ID, models.Patch{EffectiveFrom: day(15)})
		s.Require().NoError(err)
		s.Equal(*day(15), updated.EffectiveFrom)
	})

	s.Run("value is validated", func() {
		_, err := s.service.Update(s.ctx, second.ID, models.Patch{Value: json.RawMessage(`{"on":true}`)})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown id", func() {
		_, err := s.service.Update(s.ctx, id.PolicySettingID(testutil.NewCompanyID()), models.Patch{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PolicyServiceSuite) TestDeleteDisablesResolution() {
	created, err := s.service.Create(s.ctx, s.global(true, day(0), nil))
	s.Require().NoError(err)
	s.Require().NoError(s.service.Delete(s.ctx, created.ID))

	required, err := s.service.TagRequired(s.ctx)
	s.Require().NoError(err)
	s.False(required)

	_, err = s.service.Get(s.ctx, created.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.Create(s.ctx, s.global(true, day(0), nil))
	s.NoError(err, "deleted rows no longer occupy the window")

	events, err := s.audit.ListBySubject(s.ctx, created.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.EventPolicyCreated, events[0].Action)
	s.Equal(audit.EventPolicyDeleted, events[1].Action)
}

func (s *PolicyServiceSuite) TestListNewestFirst() {
	_, err := s.service.Create(s.ctx, s.global(false, day(0), day(10)))
	s.Require().NoError(err)
	_, err = s.service.Create(s.ctx, s.global(true, day(10), nil))
	s.Require().NoError(err)

	list, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.True(list[0].EffectiveFrom.After(list[1].EffectiveFrom))
}
