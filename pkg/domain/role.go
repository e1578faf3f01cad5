package domain

import (
	"strings"

	dErrors "changepoint/pkg/domain-errors"
)

// Role is the caller's organisational role, issued by the auth layer and
// consumed by every authorization decision.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleTier1Editor    Role = "TIER1_EDITOR"
	RoleTier2Editor    Role = "TIER2_EDITOR"
	RoleTier1Reviewer  Role = "TIER1_REVIEWER"
	RoleExecApprover   Role = "EXEC_APPROVER"
	RoleCustomerViewer Role = "CUSTOMER_VIEWER"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{
	RoleAdmin,
	RoleTier1Editor,
	RoleTier2Editor,
	RoleTier1Reviewer,
	RoleExecApprover,
	RoleCustomerViewer,
}

func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return r, nil
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
