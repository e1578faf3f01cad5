package models

import (
	"strings"
	"time"

	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

// CompanyType places a company in the supply network.
type CompanyType string

const (
	CompanyTypeTier1    CompanyType = "TIER1"
	CompanyTypeTier2    CompanyType = "TIER2"
	CompanyTypeCustomer CompanyType = "CUSTOMER"
)

func (t CompanyType) IsValid() bool {
	switch t {
	case CompanyTypeTier1, CompanyTypeTier2, CompanyTypeCustomer:
		return true
	}
	return false
}

// Company is reference data: suppliers and customers change events belong to.
type Company struct {
	ID        id.CompanyID `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Type      CompanyType  `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`
}

func NewCompany(companyID id.CompanyID, code, name string, typ CompanyType, now time.Time) (*Company, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "code is required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !typ.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "type must be one of TIER1, TIER2, CUSTOMER")
	}
	return &Company{ID: companyID, Code: code, Name: name, Type: typ, CreatedAt: now}, nil
}
