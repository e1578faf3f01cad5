package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authmodels "changepoint/internal/auth/models"
	"changepoint/internal/changeevent/models"
	"changepoint/internal/changeevent/service/mocks"
	"changepoint/internal/changeevent/store"
	taxonomymodels "changepoint/internal/taxonomy/models"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/audit"
	"changepoint/pkg/platform/audit/publisher"
	auditmemory "changepoint/pkg/platform/audit/store/memory"
	"changepoint/pkg/platform/tx"
	"changepoint/pkg/requestcontext"
	"changepoint/pkg/testutil"
)

var march = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type ChangeEventServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *store.InMemoryChangeEventStore
	audit   *auditmemory.InMemoryStore
	service *Service

	required  bool
	items     map[id.TaxonomyItemID]*taxonomymodels.ItemDetail
	companies map[id.CompanyID]bool
	users     map[id.UserID]*authmodels.User

	tier1   id.CompanyID
	tier2   id.CompanyID
	manager id.UserID
	item    id.TaxonomyItemID
	other   id.TaxonomyItemID
}

func TestChangeEventServiceSuite(t *testing.T) {
	suite.Run(t, new(ChangeEventServiceSuite))
}

func (s *ChangeEventServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewInMemoryChangeEventStore()
	s.audit = auditmemory.NewInMemoryStore()

	s.required = false
	s.tier1, s.tier2 = testutil.NewCompanyID(), testutil.NewCompanyID()
	s.companies = map[id.CompanyID]bool{s.tier1: true, s.tier2: true}
	s.manager = testutil.NewUserID()
	s.users = map[id.UserID]*authmodels.User{s.manager: {ID: s.manager, Name: "Manager"}}
	s.item, s.other = testutil.NewItemID(), testutil.NewItemID()
	s.items = map[id.TaxonomyItemID]*taxonomymodels.ItemDetail{
		s.item:  {Item: &taxonomymodels.Item{ID: s.item, Code: "A"}},
		s.other: {Item: &taxonomymodels.Item{ID: s.other, Code: "B"}},
	}

	policy := mocks.NewMockPolicyChecker(s.ctrl)
	policy.EXPECT().TagRequired(gomock.Any()).DoAndReturn(func(context.Context) (bool, error) {
		return s.required, nil
	}).AnyTimes()

	taxonomy := mocks.NewMockTaxonomyResolver(s.ctrl)
	taxonomy.EXPECT().ResolveItems(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ids []id.TaxonomyItemID) (map[id.TaxonomyItemID]*taxonomymodels.ItemDetail, error) {
			out := map[id.TaxonomyItemID]*taxonomymodels.ItemDetail{}
			for _, i := range ids {
				if d, ok := s.items[i]; ok {
					out[i] = d
				}
			}
			return out, nil
		}).AnyTimes()

	companies := mocks.NewMockCompanyLookup(s.ctrl)
	companies.EXPECT().Exists(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c id.CompanyID) (bool, error) { return s.companies[c], nil }).AnyTimes()

	users := mocks.NewMockUserLookup(s.ctrl)
	users.EXPECT().FindByIDs(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ids []id.UserID) (map[id.UserID]*authmodels.User, error) {
			out := map[id.UserID]*authmodels.User{}
			for _, u := range ids {
				if found, ok := s.users[u]; ok {
					out[u] = found
				}
			}
			return out, nil
		}).AnyTimes()

	s.service = New(s.store, policy, taxonomy, companies, users, tx.NewRunner(nil),
		WithAuditor(publisher.NewPublisher(s.audit)))
}

func (s *ChangeEventServiceSuite) as(role id.Role, company id.CompanyID) (context.Context, id.UserID) {
	user := testutil.NewUserID()
	ctx := requestcontext.WithActor(context.Background(), user, role, company)
	return requestcontext.WithTime(ctx, march), user
}

func (s *ChangeEventServiceSuite) fields(company id.CompanyID) models.Fields {
	return models.Fields{
		ReceiptMonth:   "2025-03",
		OccurredDate:   march,
		Customer:       "ACME",
		Project:        "P1",
		ProductLine:    "Brakes",
		PartNumber:     "PN-1",
		Factory:        "F1",
		ProductionLine: "L1",
		CompanyID:      company,
		ChangeType:     models.ChangeTypeFourM,
		Category:       "Material",
		SubCategory:    "Resin",
		Description:    "switch supplier",
		Department:     "QA",
		ManagerID:      s.manager,
	}
}

func (s *ChangeEventServiceSuite) create(ctx context.Context, company id.CompanyID, tags ...models.Tag) *models.ChangeEvent {
	e, err := s.service.Create(ctx, s.fields(company), tags)
	s.Require().NoError(err)
	return e
}

func (s *ChangeEventServiceSuite) setStatus(ctx context.Context, eventID id.ChangeEventID, st models.Status) (*models.ChangeEvent, error) {
	return s.service.Update(ctx, eventID, models.Changes{Status: &st})
}

func (s *ChangeEventServiceSuite) stored(eventID id.ChangeEventID) *models.ChangeEvent {
	e, err := s.store.FindByID(context.Background(), eventID)
	s.Require().NoError(err)
	return e
}

func (s *ChangeEventServiceSuite) actions() []audit.AuditEvent {
	events, err := s.audit.ListAll(context.Background())
	s.Require().NoError(err)
	out := make([]audit.AuditEvent, len(events))
	for i, e := range events {
		out[i] = e.Action
	}
	return out
}

func (s *ChangeEventServiceSuite) TestCreateStampsActorAndDraft() {
	ctx, editor := s.as(id.RoleTier1Editor, s.tier1)
	e := s.create(ctx, s.tier2, models.Tag{ItemID: s.item, TagType: models.TagTypePrimary})

	s.Equal(models.StatusDraft, e.Status)
	s.Equal(editor, e.CreatedByID)
	s.Equal(march, e.CreatedAt)
	s.Equal(models.StatusDraft, s.stored(e.ID).Status)
	s.Equal([]audit.AuditEvent{audit.EventChangeEventCreated}, s.actions())
}

func (s *ChangeEventServiceSuite) TestTagPolicy() {
	ctx, _ := s.as(id.RoleTier1Editor, s.tier1)

	s.Run("disabled allows untagged events", func() {
		s.required = false
		s.create(ctx, s.tier1)
	})

	s.Run("enabled rejects untagged create and persists nothing", func() {
		s.required = true
		_, err := s.service.Create(ctx, s.fields(s.tier1), nil)
		s.ErrorIs(err, ErrTagRequired)
		list, _ := s.store.List(context.Background(), store.Filter{})
		s.Len(list, 1)
	})

	s.Run("enabled accepts a tagged create", func() {
		s.required = true
		s.create(ctx, s.tier1, models.Tag{ItemID: s.item, TagType: models.TagTypeTag})
	})

	s.Run("update without tags skips the gate", func() {
		s.required = false
		e := s.create(ctx, s.tier1)
		s.required = true
		desc := "revised"
		_, err := s.service.Update(ctx, e.ID, models.Changes{Description: &desc})
		s.NoError(err)

		empty := []models.Tag{}
		_, err = s.service.Update(ctx, e.ID, models.Changes{Tags: &empty})
		s.ErrorIs(err, ErrTagRequired)
	})
}

func (s *ChangeEventServiceSuite) TestTagValidation() {
	ctx, _ := s.as(id.RoleTier1Editor, s.tier1)

	_, err := s.service.Create(ctx, s.fields(s.tier1), []models.Tag{
		{ItemID: s.item, TagType: models.TagTypePrimary},
		{ItemID: s.other, TagType: models.TagTypePrimary},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Create(ctx, s.fields(s.tier1), []models.Tag{{ItemID: testutil.NewItemID(), TagType: models.TagTypeTag}})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	e := s.create(ctx, s.tier1,
		models.Tag{ItemID: s.item, TagType: models.TagTypePrimary},
		models.Tag{ItemID: s.item, TagType: models.TagTypePrimary})
	s.Len(e.Tags, 1)
}

func (s *ChangeEventServiceSuite) TestUnknownReferences() {
	ctx, _ := s.as(id.RoleTier1Editor, s.tier1)

	_, err := s.service.Create(ctx, s.fields(testutil.NewCompanyID()), nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	f := s.fields(s.tier1)
	f.ManagerID = testutil.NewUserID()
	_, err = s.service.Create(ctx, f, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ChangeEventServiceSuite) TestTagReplacement() {
	ctx, _ := s.as(id.RoleTier1Editor, s.tier1)
	e := s.create(ctx, s.tier1, models.Tag{ItemID: s.item, TagType: models.TagTypePrimary})

	desc := "no tag change"
	_, err := s.service.Update(ctx, e.ID, models.Changes{Description: &desc})
	s.Require().NoError(err)
	s.Equal([]models.Tag{{ItemID: s.item, TagType: models.TagTypePrimary}}, s.stored(e.ID).Tags)

	replacement := []models.Tag{{ItemID: s.other, TagType: models.TagTypeTag}}
	_, err = s.service.Update(ctx, e.ID, models.Changes{Tags: &replacement})
	s.Require().NoError(err)
	s.Equal(replacement, s.stored(e.ID).Tags)

	bad := []models.Tag{{ItemID: testutil.NewItemID(), TagType: models.TagTypeTag}}
	_, err = s.service.Update(ctx, e.ID, models.Changes{Tags: &bad, Description: &desc})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(replacement, s.stored(e.ID).Tags)
}

func (s *ChangeEventServiceSuite) TestFullApprovalPath() {
	editorCtx, _ := s.as(id.RoleTier1Editor, s.tier1)
	reviewerCtx, _ := s.as(id.RoleTier1Reviewer, s.tier1)
	approverCtx, _ := s.as(id.RoleExecApprover, s.tier1)
	e := s.create(editorCtx, s.tier1)

	_, err := s.setStatus(editorCtx, e.ID, models.StatusSubmitted)
	s.Require().NoError(err)
	_, err = s.setStatus(reviewerCtx, e.ID, models.StatusReviewed)
	s.Require().NoError(err)
	updated, err := s.setStatus(approverCtx, e.ID, models.StatusApproved)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, updated.Status)

	monthly, err := s.service.Monthly(editorCtx, 2025, 3)
	s.Require().NoError(err)
	s.Len(monthly, 1)

	var transitions int
	for _, a := range s.actions() {
		if a == audit.EventStatusChanged {
			transitions++
		}
	}
	s.Equal(3, transitions)
}

func (s *ChangeEventServiceSuite) TestRoleGateLeavesStatusUnchanged() {
	editorCtx, _ := s.as(id.RoleTier1Editor, s.tier1)
	e := s.create(editorCtx, s.tier1)
	_, err := s.setStatus(editorCtx, e.ID, models.StatusSubmitted)
	s.Require().NoError(err)

	_, err = s.setStatus(editorCtx, e.ID, models.StatusReviewed)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Equal(models.StatusSubmitted, s.stored(e.ID).Status)

	approverCtx, _ := s.as(id.RoleExecApprover, s.tier1)
	_, err = s.setStatus(approverCtx, e.ID, models.StatusApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "got %v", err)
	s.Equal(models.StatusSubmitted, s.stored(e.ID).Status)
}

func (s *ChangeEventServiceSuite) TestTier2Ownership() {
	ownerCtx, _ := s.as(id.RoleTier2Editor, s.tier2)
	peerCtx, _ := s.as(id.RoleTier2Editor, s.tier2)
	tier1Ctx, _ := s.as(id.RoleTier1Editor, s.tier1)

	e := s.create(ownerCtx, s.tier2)
	desc := "edited"

	_, err := s.service.Update(peerCtx, e.ID, models.Changes{Description: &desc})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.True(dErrors.HasCode(s.service.Delete(peerCtx, e.ID), dErrors.CodeForbidden))

	_, err = s.service.Update(ownerCtx, e.ID, models.Changes{Description: &desc})
	s.NoError(err)
	_, err = s.service.Update(tier1Ctx, e.ID, models.Changes{Description: &desc})
	s.NoError(err)
}

func (s *ChangeEventServiceSuite) TestTier2CompanyScope() {
	tier2Ctx, _ := s.as(id.RoleTier2Editor, s.tier2)
	tier1Ctx, _ := s.as(id.RoleTier1Editor, s.tier1)

	_, err := s.service.Create(tier2Ctx, s.fields(s.tier1), nil)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	foreign := s.create(tier1Ctx, s.tier1)
	own := s.create(tier2Ctx, s.tier2)

	_, err = s.service.Get(tier2Ctx, foreign.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	list, err := s.service.List(tier2Ctx, ListQuery{CompanyID: &s.tier1})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(own.ID, list[0].ID)

	all, err := s.service.List(tier1Ctx, ListQuery{})
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ChangeEventServiceSuite) TestTier2TagsScopedToCompany() {
	tier1Ctx, _ := s.as(id.RoleTier1Editor, s.tier1)
	foreignCtx, _ := s.as(id.RoleTier2Editor, s.tier2)
	ownCtx, _ := s.as(id.RoleTier2Editor, s.tier1)

	e := s.create(tier1Ctx, s.tier1, models.Tag{ItemID: s.item, TagType: models.TagTypePrimary})

	_, err := s.service.Get(foreignCtx, e.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.service.Tags(foreignCtx, e.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.True(dErrors.HasCode(s.service.Accessible(foreignCtx, e.ID), dErrors.CodeNotFound))

	tags, err := s.service.Tags(ownCtx, e.ID)
	s.Require().NoError(err)
	s.Len(tags, 1)

	s.Require().NoError(s.service.Delete(tier1Ctx, e.ID))

	_, err = s.service.Tags(foreignCtx, e.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	tags, err = s.service.Tags(ownCtx, e.ID)
	s.Require().NoError(err)
	s.Len(tags, 1)
}

func (s *ChangeEventServiceSuite) TestSoftDelete() {
	ctx, _ := s.as(id.RoleTier1Editor, s.tier1)
	e := s.create(ctx, s.tier1, models.Tag{ItemID: s.item, TagType: models.TagTypePrimary})

	s.Require().NoError(s.service.Delete(ctx, e.ID))

	_, err := s.service.Get(ctx, e.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.True(dErrors.HasCode(s.service.Delete(ctx, e.ID), dErrors.CodeNotFound))

	tags, err := s.service.Tags(ctx, e.ID)
	s.Require().NoError(err)
	s.Len(tags, 1)
}

func (s *ChangeEventServiceSuite) TestListPaging() {
	ctx, _ := s.as(id.RoleTier1Editor, s.tier1)
	for i := 0; i < 3; i++ {
		s.create(requestcontext.WithTime(ctx, march.Add(time.Duration(i)*time.Minute)), s.tier1)
	}
	page, err := s.service.List(ctx, ListQuery{Skip: 2, Take: 5})
	s.Require().NoError(err)
	s.Len(page, 1)

	_, err = s.service.List(ctx, ListQuery{Skip: -1})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ChangeEventServiceSuite) TestNextStatuses() {
	editorCtx, _ := s.as(id.RoleTier1Editor, s.tier1)
	reviewerCtx, _ := s.as(id.RoleTier1Reviewer, s.tier1)
	e := s.create(editorCtx, s.tier1)
	_, err := s.setStatus(editorCtx, e.ID, models.StatusSubmitted)
	s.Require().NoError(err)

	next, err := s.service.NextStatuses(reviewerCtx, e.ID)
	s.Require().NoError(err)
	s.Contains(next, models.StatusReviewed)

	next, err = s.service.NextStatuses(editorCtx, e.ID)
	s.Require().NoError(err)
	s.NotContains(next, models.StatusReviewed)
}

func (s *ChangeEventServiceSuite) TestMonthRange() {
	seoul, err := time.LoadLocation("Asia/Seoul")
	s.Require().NoError(err)

	start, end, err := MonthRange(2024, 12, seoul)
	s.Require().NoError(err)
	s.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, seoul), start)
	s.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, seoul), end)

	_, _, err = MonthRange(2024, 13, time.UTC)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ChangeEventServiceSuite) TestPolicyFailureIsInternal() {
	ctrl := gomock.NewController(s.T())
	policy := mocks.NewMockPolicyChecker(ctrl)
	policy.EXPECT().TagRequired(gomock.Any()).Return(false, errors.New("db down"))
	st := mocks.NewMockStore(ctrl)

	svc := New(st, policy, nil, nil, nil, tx.NewRunner(nil))
	ctx, _ := s.as(id.RoleTier1Editor, s.tier1)
	_, err := svc.Create(ctx, s.fields(s.tier1), nil)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
