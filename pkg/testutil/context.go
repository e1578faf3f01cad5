package testutil

import (
	"net/http"

	id "changepoint/pkg/domain"
	"changepoint/pkg/requestcontext"
)

// WithActor authenticates req as the given user, simulating the auth
// middleware for handler tests.
func WithActor(req *http.Request, userID id.UserID, role id.Role, companyID id.CompanyID) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), userID, role, companyID))
}

// WithRole authenticates req with a fresh user ID in no company.
func WithRole(req *http.Request, role id.Role) *http.Request {
	return WithActor(req, NewUserID(), role, id.CompanyID{})
}
