package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"changepoint/internal/company/models"
	"changepoint/internal/company/service"
	"changepoint/internal/company/store"
	id "changepoint/pkg/domain"
	"changepoint/pkg/testutil"
)

func newCompanyRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := New(service.New(store.NewInMemoryCompanyStore()), logger)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestCreateCompanyRequiresAdmin(t *testing.T) {
	router := newCompanyRouter(t)
	body := map[string]string{"code": "T2-9", "name": "Nine", "type": "TIER2"}

	req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/companies", body), id.RoleTier1Editor)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")

	req = testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/companies", body), id.RoleAdmin)
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[models.Company](t, rr)
	assert.Equal(t, "T2-9", created.Code)
}

func TestCreateCompanyValidation(t *testing.T) {
	router := newCompanyRouter(t)
	body := map[string]string{"code": "T2-9", "name": "Nine", "type": "VENDOR"}
	req := testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/companies", body), id.RoleAdmin)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestListCompanies(t *testing.T) {
	router := newCompanyRouter(t)
	body := map[string]string{"code": "C-1", "name": "Customer", "type": "CUSTOMER"}
	testutil.DoRequest(router, testutil.WithRole(testutil.NewJSONRequest(t, http.MethodPost, "/companies", body), id.RoleAdmin))

	rr := testutil.DoRequest(router, testutil.WithRole(testutil.NewRequest(t, http.MethodGet, "/companies"), id.RoleCustomerViewer))
	testutil.AssertStatusOK(t, rr)
	list := testutil.UnmarshalResponse[[]models.Company](t, rr)
	assert.Len(t, *list, 1)
}
