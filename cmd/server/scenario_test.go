package main

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changepoint/pkg/testutil"
)

type tokenPair struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		ID        string `json:"id"`
		Role      string `json:"role"`
		CompanyID string `json:"companyId"`
	} `json:"user"`
}

func TestSupplierReportsChangeAndAdminExportsMonth(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, runSeed(context.Background(), a))
	h := a.handler()
	now := time.Now().UTC()

	testutil.Given(t, "a seeded deployment with a supplier account", func(t *testing.T) {
		rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "admin@example.com",
			"password": "admin-password",
		}))
		testutil.AssertStatusOK(t, rr)
		admin := testutil.UnmarshalResponse[tokenPair](t, rr)

		rr = testutil.DoRequest(h, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/api/companies"), admin.AccessToken))
		testutil.AssertStatusOK(t, rr)
		var supplierID string
		for _, c := range *testutil.UnmarshalResponse[[]map[string]any](t, rr) {
			if c["code"] == "SUP-001" {
				supplierID, _ = c["id"].(string)
			}
		}
		require.NotEmpty(t, supplierID)

		body := testutil.MustMarshal(t, map[string]string{
			"email":     "kim.lee@supplier.example",
			"password":  "supplier-password",
			"name":      "Kim Lee",
			"companyId": supplierID,
		})
		rr = testutil.DoRequest(h, testutil.NewRequestWithBody(t, http.MethodPost, "/api/auth/register", body))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		supplier := testutil.UnmarshalResponse[tokenPair](t, rr)
		assert.Equal(t, "TIER2_EDITOR", supplier.User.Role)

		testutil.When(t, "the supplier reports a change for its own company", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/api/change-events", map[string]any{
				"receiptMonth":   now.Format("2006-01"),
				"occurredDate":   now.Format(time.DateOnly),
				"customer":       "ACME",
				"project":        "P-100",
				"productLine":    "Brakes",
				"partNumber":     "BR-1",
				"factory":        "Plant 2",
				"productionLine": "L3",
				"companyId":      supplierID,
				"changeType":     "FOUR_M",
				"category":       "Machine",
				"subCategory":    "Press",
				"description":    "New press installed",
				"department":     "QA",
				"managerId":      supplier.User.ID,
			})
			rr := testutil.DoRequest(h, testutil.WithBearer(req, supplier.AccessToken))

			testutil.Then(t, "the event is created", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				testutil.AssertJSONHasKey(t, rr, "status")
			})
		})

		testutil.When(t, "the supplier asks for the monthly workbook", func(t *testing.T) {
			path := fmt.Sprintf("/api/excel/monthly/%d/%d", now.Year(), int(now.Month()))
			rr := testutil.DoRequest(h, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, path), supplier.AccessToken))

			testutil.Then(t, "access is denied", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
			})
		})

		testutil.When(t, "the admin asks for the monthly workbook", func(t *testing.T) {
			path := fmt.Sprintf("/api/excel/monthly/%d/%d", now.Year(), int(now.Month()))
			rr := testutil.DoRequest(h, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, path), admin.AccessToken))

			testutil.Then(t, "a workbook is returned", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertContentType(t, rr, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			})
			testutil.And(t, "the body is a zip container", func(t *testing.T) {
				assert.Equal(t, []byte("PK"), testutil.ReadBody(t, rr)[:2])
			})
		})

		testutil.When(t, "a request carries no token", func(t *testing.T) {
			rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/api/change-events"))

			testutil.Then(t, "it is rejected as unauthorized", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusUnauthorized)
			})
		})
	})
}
