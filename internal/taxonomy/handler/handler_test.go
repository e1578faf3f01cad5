package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changepoint/internal/taxonomy/models"
	"changepoint/internal/taxonomy/service"
	"changepoint/internal/taxonomy/store"
	id "changepoint/pkg/domain"
	"changepoint/pkg/testutil"
)

func newTaxonomyRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := New(service.New(store.NewInMemoryTaxonomyStore()), logger)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func asAdmin(req *http.Request) *http.Request { return testutil.WithRole(req, id.RoleAdmin) }

func TestTaxonomyLifecycle(t *testing.T) {
	router := newTaxonomyRouter(t)

	rr := testutil.DoRequest(router, asAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/change-events/codes/classes",
		map[string]string{"code": "CP_96", "name": "96 change points"})))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	class := testutil.UnmarshalResponse[models.Class](t, rr)

	rr = testutil.DoRequest(router, asAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/change-events/codes/categories",
		map[string]string{"classId": class.ID.String(), "code": "TECH", "name": "Technology"})))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	category := testutil.UnmarshalResponse[models.Category](t, rr)
	assert.Equal(t, 1, category.Depth)

	rr = testutil.DoRequest(router, asAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/change-events/codes/items",
		map[string]string{"categoryId": category.ID.String(), "code": "T-01", "name": "Tooling"})))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	item := testutil.UnmarshalResponse[models.Item](t, rr)

	rr = testutil.DoRequest(router, testutil.WithRole(
		testutil.NewRequest(t, http.MethodGet, "/change-events/codes/items?categoryId="+category.ID.String()), id.RoleCustomerViewer))
	testutil.AssertStatusOK(t, rr)
	items := testutil.UnmarshalResponse[[]models.Item](t, rr)
	require.Len(t, *items, 1)

	rr = testutil.DoRequest(router, asAdmin(testutil.NewRequest(t, http.MethodDelete, "/change-events/codes/items/"+item.ID.String())))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, testutil.WithRole(
		testutil.NewRequest(t, http.MethodGet, "/change-events/codes/items"), id.RoleTier1Editor))
	items = testutil.UnmarshalResponse[[]models.Item](t, rr)
	assert.Empty(t, *items)
}

func TestTaxonomyWritesRequireAdmin(t *testing.T) {
	router := newTaxonomyRouter(t)
	rr := testutil.DoRequest(router, testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/change-events/codes/classes",
		map[string]string{"code": "X", "name": "X"}), id.RoleTier1Editor))
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
}

func TestListCategoriesRejectsMalformedClassID(t *testing.T) {
	router := newTaxonomyRouter(t)
	rr := testutil.DoRequest(router, testutil.WithRole(
		testutil.NewRequest(t, http.MethodGet, "/change-events/codes/categories?classId=nope"), id.RoleTier1Editor))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}

func TestListCategoriesByClassCode(t *testing.T) {
	router := newTaxonomyRouter(t)
	rr := testutil.DoRequest(router, asAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/change-events/codes/classes",
		map[string]string{"code": "CP_96", "name": "96 change points"})))
	class := testutil.UnmarshalResponse[models.Class](t, rr)
	testutil.DoRequest(router, asAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/change-events/codes/categories",
		map[string]string{"classId": class.ID.String(), "code": "FOCUS", "name": "Focus"})))

	rr = testutil.DoRequest(router, testutil.WithRole(
		testutil.NewRequest(t, http.MethodGet, "/change-events/codes/categories?classCode=CP_96"), id.RoleTier1Editor))
	testutil.AssertStatusOK(t, rr)
	cats := testutil.UnmarshalResponse[[]models.Category](t, rr)
	require.Len(t, *cats, 1)

	rr = testutil.DoRequest(router, testutil.WithRole(
		testutil.NewRequest(t, http.MethodGet, "/change-events/codes/categories?classCode=NOPE"), id.RoleTier1Editor))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}
