package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"changepoint/internal/inspection/handler/mocks"
	"changepoint/internal/inspection/models"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/testutil"
)

type InspectionHandlerSuite struct {
	suite.Suite
}

func TestInspectionHandlerSuite(t *testing.T) {
	suite.Run(t, new(InspectionHandlerSuite))
}

func (s *InspectionHandlerSuite) newHandler(t *testing.T) (*mocks.MockService, chi.Router) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return svc, r
}

func (s *InspectionHandlerSuite) TestCreateTemplate() {
	body := map[string]any{
		"name":     "Change checklist",
		"version":  2,
		"isActive": true,
		"items": []map[string]any{
			{"order": 1, "category": "Quality", "question": "Verdict", "type": "SELECT", "options": []string{"OK", "NG"}},
		},
	}

	s.T().Run("admin creates with items - 201", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().CreateTemplate(gomock.Any(), "Change checklist", 2, true, gomock.Any()).DoAndReturn(
			func(_ any, _ string, _ int, _ bool, drafts []models.ItemDraft) (*models.Template, error) {
				require.Len(t, drafts, 1)
				assert.Equal(t, models.ItemTypeSelect, drafts[0].Type)
				assert.Equal(t, []string{"OK", "NG"}, drafts[0].Options)
				return &models.Template{Name: "Change checklist", Version: 2, IsActive: true}, nil
			})

		req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/inspection/templates", body), id.RoleAdmin)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "name", "Change checklist")
	})

	s.T().Run("editor may not create - 403", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().CreateTemplate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/inspection/templates", body), id.RoleTier1Editor)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusForbidden, "forbidden")
	})

	s.T().Run("unknown item type - 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().CreateTemplate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		bad := map[string]any{
			"name": "x", "version": 1,
			"items": []map[string]any{{"category": "c", "question": "q", "type": "SLIDER"}},
		}
		req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/inspection/templates", bad), id.RoleAdmin)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "validation_error")
	})
}

func (s *InspectionHandlerSuite) TestActiveTemplate() {
	s.T().Run("none active - 404", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().ActiveTemplate(gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "no active inspection template"))

		req := testutil.WithRole(testutil.NewRequest(t, http.MethodGet, "/inspection/templates/active"), id.RoleTier2Editor)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusNotFound, "not_found")
	})
}

func (s *InspectionHandlerSuite) TestUpdateItem() {
	s.T().Run("patch passes only supplied fields - 200", func(t *testing.T) {
		svc, router := s.newHandler(t)
		itemID := id.InspectionItemID(uuid.New())
		svc.EXPECT().UpdateItem(gomock.Any(), itemID, gomock.Any()).DoAndReturn(
			func(_ any, _ id.InspectionItemID, p models.ItemPatch) (*models.Item, error) {
				require.NotNil(t, p.Type)
				assert.Equal(t, models.ItemTypeNumber, *p.Type)
				assert.Nil(t, p.Question)
				return &models.Item{ID: itemID, Type: models.ItemTypeNumber}, nil
			})

		req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPatch, "/inspection/items/"+itemID.String(),
			map[string]any{"type": "NUMBER"}), id.RoleAdmin)
		testutil.AssertStatusOK(t, testutil.DoRequest(router, req))
	})
}

func (s *InspectionHandlerSuite) TestCreateResult() {
	eventID, itemID := testutil.NewEventID(), id.InspectionItemID(uuid.New())

	s.T().Run("duplicate pair - 409", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().CreateResult(gomock.Any(), eventID, itemID, "OK").
			Return(nil, dErrors.New(dErrors.CodeConflict, "a result for this item already exists"))

		req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/inspection/results", map[string]any{
			"eventId": eventID.String(), "itemId": itemID.String(), "value": "OK",
		}), id.RoleTier1Editor)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusConflict, "conflict")
	})

	s.T().Run("malformed event id - 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().CreateResult(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/inspection/results", map[string]any{
			"eventId": "nope", "itemId": itemID.String(),
		}), id.RoleTier1Editor)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "invalid_input")
	})
}

func (s *InspectionHandlerSuite) TestResultsByEvent() {
	s.T().Run("lists answers - 200", func(t *testing.T) {
		svc, router := s.newHandler(t)
		eventID := testutil.NewEventID()
		svc.EXPECT().ResultsByEvent(gomock.Any(), eventID).Return([]*models.Result{
			{ID: id.InspectionResultID(uuid.New()), EventID: eventID, ItemID: id.InspectionItemID(uuid.New()), Value: "OK"},
		}, nil)

		req := testutil.WithRole(testutil.NewRequest(t, http.MethodGet, "/inspection/results/event/"+eventID.String()), id.RoleCustomerViewer)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		list := *testutil.UnmarshalResponse[[]map[string]any](t, rr)
		require.Len(t, list, 1)
		assert.Equal(t, "OK", list[0]["value"])
	})
}

func (s *InspectionHandlerSuite) TestSaveResults() {
	eventID := testutil.NewEventID()
	first, second := id.InspectionItemID(uuid.New()), id.InspectionItemID(uuid.New())

	s.T().Run("maps entries in order - 200", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().SaveResults(gomock.Any(), eventID, []models.Entry{
			{ItemID: first, Value: "a"},
			{ItemID: second, Value: "b"},
		}).Return([]*models.Result{}, nil)

		req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/inspection/results/bulk/"+eventID.String(), map[string]any{
			"results": []map[string]string{
				{"itemId": first.String(), "value": "a"},
				{"itemId": second.String(), "value": "b"},
			},
		}), id.RoleTier1Editor)
		testutil.AssertStatusOK(t, testutil.DoRequest(router, req))
	})

	s.T().Run("empty body - 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().SaveResults(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/inspection/results/bulk/"+eventID.String(),
			map[string]any{"results": []any{}}), id.RoleTier1Editor)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "validation_error")
	})

	s.T().Run("deleted event - 404", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().SaveResults(gomock.Any(), eventID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "change event not found"))

		req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/inspection/results/bulk/"+eventID.String(), map[string]any{
			"results": []map[string]string{{"itemId": first.String(), "value": "a"}},
		}), id.RoleTier1Editor)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusNotFound, "not_found")
	})
}

func (s *InspectionHandlerSuite) TestDeleteResult() {
	s.T().Run("soft delete - 204", func(t *testing.T) {
		svc, router := s.newHandler(t)
		resultID := id.InspectionResultID(uuid.New())
		svc.EXPECT().DeleteResult(gomock.Any(), resultID).Return(nil)

		req := testutil.WithRole(testutil.NewRequest(t, http.MethodDelete, "/inspection/results/"+resultID.String()), id.RoleTier1Editor)
		testutil.AssertStatus(t, testutil.DoRequest(router, req), http.StatusNoContent)
	})
}
