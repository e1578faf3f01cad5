// Package domain holds the typed identifiers and role vocabulary shared by
// every module. Typed IDs keep a user ID from being passed where a company or
// event ID is expected.
package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "changepoint/pkg/domain-errors"
)

type (
	UserID               uuid.UUID
	CompanyID            uuid.UUID
	ChangeEventID        uuid.UUID
	TaxonomyClassID      uuid.UUID
	TaxonomyCategoryID   uuid.UUID
	TaxonomyItemID       uuid.UUID
	PolicySettingID      uuid.UUID
	InspectionTemplateID uuid.UUID
	InspectionItemID     uuid.UUID
	InspectionResultID   uuid.UUID
)

func (id UserID) String() string               { return uuid.UUID(id).String() }
func (id CompanyID) String() string            { return uuid.UUID(id).String() }
func (id ChangeEventID) String() string        { return uuid.UUID(id).String() }
func (id TaxonomyClassID) String() string      { return uuid.UUID(id).String() }
func (id TaxonomyCategoryID) String() string   { return uuid.UUID(id).String() }
func (id TaxonomyItemID) String() string       { return uuid.UUID(id).String() }
func (id PolicySettingID) String() string      { return uuid.UUID(id).String() }
func (id InspectionTemplateID) String() string { return uuid.UUID(id).String() }
func (id InspectionItemID) String() string     { return uuid.UUID(id).String() }
func (id InspectionResultID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool               { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool            { return uuid.UUID(id) == uuid.Nil }
func (id ChangeEventID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id TaxonomyClassID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id TaxonomyCategoryID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id TaxonomyItemID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id PolicySettingID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id InspectionTemplateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id InspectionItemID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id InspectionResultID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as plain UUID strings in JSON.
func (id UserID) MarshalText() ([]byte, error)               { return uuid.UUID(id).MarshalText() }
func (id CompanyID) MarshalText() ([]byte, error)            { return uuid.UUID(id).MarshalText() }
func (id ChangeEventID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id TaxonomyClassID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id TaxonomyCategoryID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id TaxonomyItemID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id PolicySettingID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id InspectionTemplateID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id InspectionItemID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id InspectionResultID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error    { return unmarshalID((*uuid.UUID)(id), b) }
func (id *CompanyID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }
func (id *ChangeEventID) UnmarshalText(b []byte) error {
	return unmarshalID((*uuid.UUID)(id), b)
}
func (id *TaxonomyClassID) UnmarshalText(b []byte) error {
	return unmarshalID((*uuid.UUID)(id), b)
}
func (id *TaxonomyCategoryID) UnmarshalText(b []byte) error {
	return unmarshalID((*uuid.UUID)(id), b)
}
func (id *TaxonomyItemID) UnmarshalText(b []byte) error {
	return unmarshalID((*uuid.UUID)(id), b)
}
func (id *PolicySettingID) UnmarshalText(b []byte) error {
	return unmarshalID((*uuid.UUID)(id), b)
}
func (id *InspectionTemplateID) UnmarshalText(b []byte) error {
	return unmarshalID((*uuid.UUID)(id), b)
}
func (id *InspectionItemID) UnmarshalText(b []byte) error {
	return unmarshalID((*uuid.UUID)(id), b)
}
func (id *InspectionResultID) UnmarshalText(b []byte) error {
	return unmarshalID((*uuid.UUID)(id), b)
}

func unmarshalID(dst *uuid.UUID, b []byte) error {
	parsed, err := parseUUID(string(b))
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

// parseUUID is the single trust-boundary parser: non-empty, valid UTF-8,
// well-formed and not the nil UUID.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	if !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be valid UTF-8")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be nil")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

func ParseCompanyID(s string) (CompanyID, error) {
	u, err := parseUUID(s)
	return CompanyID(u), err
}

func ParseChangeEventID(s string) (ChangeEventID, error) {
	u, err := parseUUID(s)
	return ChangeEventID(u), err
}

func ParseTaxonomyClassID(s string) (TaxonomyClassID, error) {
	u, err := parseUUID(s)
	return TaxonomyClassID(u), err
}

func ParseTaxonomyCategoryID(s string) (TaxonomyCategoryID, error) {
	u, err := parseUUID(s)
	return TaxonomyCategoryID(u), err
}

func ParseTaxonomyItemID(s string) (TaxonomyItemID, error) {
	u, err := parseUUID(s)
	return TaxonomyItemID(u), err
}

func ParsePolicySettingID(s string) (PolicySettingID, error) {
	u, err := parseUUID(s)
	return PolicySettingID(u), err
}

func ParseInspectionTemplateID(s string) (InspectionTemplateID, error) {
	u, err := parseUUID(s)
	return InspectionTemplateID(u), err
}

func ParseInspectionItemID(s string) (InspectionItemID, error) {
	u, err := parseUUID(s)
	return InspectionItemID(u), err
}

func ParseInspectionResultID(s string) (InspectionResultID, error) {
	u, err := parseUUID(s)
	return InspectionResultID(u), err
}
