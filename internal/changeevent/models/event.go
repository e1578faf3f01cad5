package models

import (
	"regexp"
	"strings"
	"time"

	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

// ChangeType separates 4M changes (man, machine, material, method) from the rest.
type ChangeType string

const (
	ChangeTypeFourM    ChangeType = "FOUR_M"
	ChangeTypeNonFourM ChangeType = "NON_FOUR_M"
)

func (c ChangeType) IsValid() bool {
	return c == ChangeTypeFourM || c == ChangeTypeNonFourM
}

var receiptMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ChangeEvent is a reported engineering or process change moving through
// review and approval.
//
// Invariants:
//   - Status changes only through CanTransition
//   - CreatedByID and UpdatedByID come from the authenticated actor
//   - Tags hold at most one PRIMARY entry and no duplicate pairs
//   - DeletedAt set means the event is absent to every read
type ChangeEvent struct {
	ID             id.ChangeEventID `json:"id"`
	ReceiptMonth   string           `json:"receiptMonth"`
	OccurredDate   time.Time        `json:"occurredDate"`
	Customer       string           `json:"customer"`
	Project        string           `json:"project"`
	ProductLine    string           `json:"productLine"`
	PartNumber     string           `json:"partNumber"`
	Factory        string           `json:"factory"`
	ProductionLine string           `json:"productionLine"`
	CompanyID      id.CompanyID     `json:"companyId"`
	ChangeType     ChangeType       `json:"changeType"`
	Category       string           `json:"category"`
	SubCategory    string           `json:"subCategory"`
	Description    string           `json:"description"`
	Department     string           `json:"department"`
	ManagerID      id.UserID        `json:"managerId"`
	ExecutiveID    *id.UserID       `json:"executiveId,omitempty"`
	ReviewerID     *id.UserID       `json:"reviewerId,omitempty"`
	Status         Status           `json:"status"`
	CreatedByID    id.UserID        `json:"createdById"`
	UpdatedByID    *id.UserID       `json:"updatedById,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	DeletedAt      *time.Time       `json:"-"`
	Tags           []Tag            `json:"tags"`
}

// Fields are the caller-supplied attributes of a new event.
type Fields struct {
	ReceiptMonth   string
	OccurredDate   time.Time
	Customer       string
	Project        string
	ProductLine    string
	PartNumber     string
	Factory        string
	ProductionLine string
	CompanyID      id.CompanyID
	ChangeType     ChangeType
	Category       string
	SubCategory    string
	Description    string
	Department     string
	ManagerID      id.UserID
	ExecutiveID    *id.UserID
}

// Changes carries an update. Nil fields are left untouched; a nil Tags leaves
// the tag set alone while a non-nil empty slice clears it.
type Changes struct {
	ReceiptMonth   *string
	OccurredDate   *time.Time
	Customer       *string
	Project        *string
	ProductLine    *string
	PartNumber     *string
	Factory        *string
	ProductionLine *string
	CompanyID      *id.CompanyID
	ChangeType     *ChangeType
	Category       *string
	SubCategory    *string
	Description    *string
	Department     *string
	ManagerID      *id.UserID
	ExecutiveID    *id.UserID
	ReviewerID     *id.UserID
	Status         *Status
	Tags           *[]Tag
}

// NewChangeEvent builds a DRAFT event owned by creator.
func NewChangeEvent(eventID id.ChangeEventID, f Fields, tags []Tag, creator id.UserID, now time.Time) (*ChangeEvent, error) {
	e := &ChangeEvent{
		ID:             eventID,
		ReceiptMonth:   strings.TrimSpace(f.ReceiptMonth),
		OccurredDate:   f.OccurredDate,
		Customer:       strings.TrimSpace(f.Customer),
		Project:        strings.TrimSpace(f.Project),
		ProductLine:    strings.TrimSpace(f.ProductLine),
		PartNumber:     strings.TrimSpace(f.PartNumber),
		Factory:        strings.TrimSpace(f.Factory),
		ProductionLine: strings.TrimSpace(f.ProductionLine),
		CompanyID:      f.CompanyID,
		ChangeType:     f.ChangeType,
		Category:       strings.TrimSpace(f.Category),
		SubCategory:    strings.TrimSpace(f.SubCategory),
		Description:    strings.TrimSpace(f.Description),
		Department:     strings.TrimSpace(f.Department),
		ManagerID:      f.ManagerID,
		ExecutiveID:    f.ExecutiveID,
		Status:         StatusDraft,
		CreatedByID:    creator,
		CreatedAt:      now,
		UpdatedAt:      now,
		Tags:           tags,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Apply returns a copy of e with c applied. Status and tags are copied
// verbatim; callers gate them first.
func (e *ChangeEvent) Apply(c Changes, actor id.UserID, now time.Time) (*ChangeEvent, error) {
	next := *e
	setString(&next.ReceiptMonth, c.ReceiptMonth)
	setString(&next.Customer, c.Customer)
	setString(&next.Project, c.Project)
	setString(&next.ProductLine, c.ProductLine)
	setString(&next.PartNumber, c.PartNumber)
	setString(&next.Factory, c.Factory)
	setString(&next.ProductionLine, c.ProductionLine)
	setString(&next.Category, c.Category)
	setString(&next.SubCategory, c.SubCategory)
	setString(&next.Description, c.Description)
	setString(&next.Department, c.Department)
	if c.OccurredDate != nil {
		next.OccurredDate = *c.OccurredDate
	}
	if c.CompanyID != nil {
		next.CompanyID = *c.CompanyID
	}
	if c.ChangeType != nil {
		next.ChangeType = *c.ChangeType
	}
	if c.ManagerID != nil {
		next.ManagerID = *c.ManagerID
	}
	if c.ExecutiveID != nil {
		next.ExecutiveID = c.ExecutiveID
	}
	if c.ReviewerID != nil {
		next.ReviewerID = c.ReviewerID
	}
	if c.Status != nil {
		next.Status = *c.Status
	}
	if c.Tags != nil {
		next.Tags = *c.Tags
	} else {
		next.Tags = append([]Tag(nil), e.Tags...)
	}
	next.UpdatedByID = &actor
	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (e *ChangeEvent) Validate() error {
	required := []struct {
		name, value string
	}{
		{"customer", e.Customer},
		{"project", e.Project},
		{"productLine", e.ProductLine},
		{"partNumber", e.PartNumber},
		{"factory", e.Factory},
		{"productionLine", e.ProductionLine},
		{"category", e.Category},
		{"subCategory", e.SubCategory},
		{"description", e.Description},
		{"department", e.Department},
	}
	for _, r := range required {
		if r.value == "" {
			return dErrors.New(dErrors.CodeValidation, r.name+" is required")
		}
	}
	if !receiptMonthPattern.MatchString(e.ReceiptMonth) {
		return dErrors.New(dErrors.CodeValidation, "receiptMonth must be YYYY-MM")
	}
	if e.OccurredDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "occurredDate is required")
	}
	if e.CompanyID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "companyId is required")
	}
	if e.ManagerID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "managerId is required")
	}
	if !e.ChangeType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "changeType must be one of FOUR_M, NON_FOUR_M")
	}
	if !e.Status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown status")
	}
	return nil
}

func (e *ChangeEvent) IsLive() bool { return e.DeletedAt == nil }

// PrimaryTag returns the PRIMARY tag, if any.
func (e *ChangeEvent) PrimaryTag() (Tag, bool) {
	for _, t := range e.Tags {
		if t.TagType == TagTypePrimary {
			return t, true
		}
	}
	return Tag{}, false
}

// UserIDs lists every user the event references, without duplicates.
func (e *ChangeEvent) UserIDs() []id.UserID {
	seen := map[id.UserID]struct{}{}
	var out []id.UserID
	add := func(u *id.UserID) {
		if u == nil || u.IsNil() {
			return
		}
		if _, ok := seen[*u]; ok {
			return
		}
		seen[*u] = struct{}{}
		out = append(out, *u)
	}
	add(&e.ManagerID)
	add(e.ExecutiveID)
	add(e.ReviewerID)
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
