package models

import (
	"encoding/json"
	"time"

	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

// ScopeType selects which entities a setting applies to.
type ScopeType string

const (
	ScopeGlobal  ScopeType = "GLOBAL"
	ScopeCompany ScopeType = "COMPANY"
)

func (s ScopeType) IsValid() bool {
	return s == ScopeGlobal || s == ScopeCompany
}

// Setting is a time-scoped policy value.
//
// Invariants:
//   - Key is registered and Value decodes strictly into the key's schema
//   - EffectiveTo, when set, is after EffectiveFrom
//   - GLOBAL settings carry no ScopeID
//   - at most one live setting per (Key, ScopeType, ScopeID) is active at any instant
type Setting struct {
	ID            id.PolicySettingID `json:"id"`
	Key           Key                `json:"key"`
	Value         json.RawMessage    `json:"value"`
	ScopeType     ScopeType          `json:"scopeType"`
	ScopeID       *id.CompanyID      `json:"scopeId,omitempty"`
	EffectiveFrom time.Time          `json:"effectiveFrom"`
	EffectiveTo   *time.Time         `json:"effectiveTo,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	DeletedAt     *time.Time         `json:"-"`
}

// Draft is the caller-controlled part of a setting.
type Draft struct {
	Key           Key
	Value         json.RawMessage
	ScopeType     ScopeType
	ScopeID       *id.CompanyID
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

// Patch carries optional changes to an existing setting. Nil fields are left
// untouched; ClearEffectiveTo reopens the window.
type Patch struct {
	Value            json.RawMessage
	ScopeType        *ScopeType
	ScopeID          *id.CompanyID
	EffectiveFrom    *time.Time
	EffectiveTo      *time.Time
	ClearEffectiveTo bool
}

// NewSetting validates d and builds a setting. A missing EffectiveFrom
// starts the window at now.
func NewSetting(settingID id.PolicySettingID, d Draft, now time.Time) (*Setting, error) {
	s := &Setting{
		ID:            settingID,
		Key:           d.Key,
		Value:         d.Value,
		ScopeType:     d.ScopeType,
		ScopeID:       d.ScopeID,
		EffectiveFrom: now,
		EffectiveTo:   d.EffectiveTo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if d.EffectiveFrom != nil {
		s.EffectiveFrom = *d.EffectiveFrom
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply returns a copy of s with p applied, validated.
func (s *Setting) Apply(p Patch, now time.Time) (*Setting, error) {
	next := *s
	if p.Value != nil {
		next.Value = p.Value
	}
	if p.ScopeType != nil {
		next.ScopeType = *p.ScopeType
		if *p.ScopeType == ScopeGlobal {
			next.ScopeID = nil
		}
	}
	if p.ScopeID != nil {
		next.ScopeID = p.ScopeID
	}
	if p.EffectiveFrom != nil {
		next.EffectiveFrom = *p.EffectiveFrom
	}
	if p.ClearEffectiveTo {
		next.EffectiveTo = nil
	} else if p.EffectiveTo != nil {
		next.EffectiveTo = p.EffectiveTo
	}
	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *Setting) Validate() error {
	def, ok := Lookup(s.Key)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "unknown policy key")
	}
	if err := def.validate(s.Value); err != nil {
		return err
	}
	if !s.ScopeType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "scopeType must be one of GLOBAL, COMPANY")
	}
	if s.ScopeType == ScopeGlobal && s.ScopeID != nil {
		return dErrors.New(dErrors.CodeValidation, "GLOBAL settings cannot have a scopeId")
	}
	if s.EffectiveTo != nil && !s.EffectiveTo.After(s.EffectiveFrom) {
		return dErrors.New(dErrors.CodeValidation, "effectiveTo must be after effectiveFrom")
	}
	return nil
}

// ActiveAt reports whether t falls in [EffectiveFrom, EffectiveTo).
func (s *Setting) ActiveAt(t time.Time) bool {
	if s.DeletedAt != nil || t.Before(s.EffectiveFrom) {
		return false
	}
	return s.EffectiveTo == nil || t.Before(*s.EffectiveTo)
}

// Overlaps reports whether the two windows share any instant.
func (s *Setting) Overlaps(other *Setting) bool {
	aEndsAfterBStarts := s.EffectiveTo == nil || s.EffectiveTo.After(other.EffectiveFrom)
	bEndsAfterAStarts := other.EffectiveTo == nil || other.EffectiveTo.After(s.EffectiveFrom)
	return aEndsAfterBStarts && bEndsAfterAStarts
}

// SameScope reports whether both settings compete for the same slot.
func (s *Setting) SameScope(other *Setting) bool {
	if s.Key != other.Key || s.ScopeType != other.ScopeType {
		return false
	}
	if s.ScopeID == nil || other.ScopeID == nil {
		return s.ScopeID == nil && other.ScopeID == nil
	}
	return *s.ScopeID == *other.ScopeID
}
