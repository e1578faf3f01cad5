package models

import (
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

// Status is the workflow state of a change event.
type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusSubmitted      Status = "SUBMITTED"
	StatusReviewReturned Status = "REVIEW_RETURNED"
	StatusReviewed       Status = "REVIEWED"
	StatusApproved       Status = "APPROVED"
	StatusClosed         Status = "CLOSED"
	StatusRejected       Status = "REJECTED"
)

var allStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusReviewReturned,
	StatusReviewed,
	StatusApproved,
	StatusClosed,
	StatusRejected,
}

func (s Status) IsValid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return len(successors[s]) == 0
}

// ParseStatus validates a status received from a caller.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown status")
	}
	return st, nil
}

// roleGate lists targets that only one role may move an event into.
var roleGate = map[Status]id.Role{
	StatusReviewed: id.RoleTier1Reviewer,
	StatusApproved: id.RoleExecApprover,
}

var successors = map[Status][]Status{
	StatusDraft:          {StatusSubmitted},
	StatusSubmitted:      {StatusReviewed, StatusReviewReturned, StatusRejected, StatusDraft},
	StatusReviewReturned: {StatusSubmitted, StatusDraft},
	StatusReviewed:       {StatusApproved, StatusRejected, StatusReviewReturned},
	StatusApproved:       {StatusClosed},
}

var (
	ErrStatusForbidden   = dErrors.New(dErrors.CodeForbidden, "role may not set this status")
	ErrInvalidTransition = dErrors.New(dErrors.CodeConflict, "invalid status transition")
)

// CanTransition decides whether role may move an event from current to
// target. The role gate is evaluated before source ordering so an
// unprivileged caller learns nothing about the event's state. Re-setting the
// current status is allowed once the role gate passes.
func CanTransition(role id.Role, current, target Status) error {
	if !target.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown status")
	}
	if required, gated := roleGate[target]; gated && role != required {
		return ErrStatusForbidden
	}
	if current == target {
		return nil
	}
	for _, next := range successors[current] {
		if next == target {
			return nil
		}
	}
	return ErrInvalidTransition
}

// NextStatuses lists the states role may move an event into from current.
func NextStatuses(role id.Role, current Status) []Status {
	out := make([]Status, 0, len(successors[current]))
	for _, next := range successors[current] {
		if CanTransition(role, current, next) == nil {
			out = append(out, next)
		}
	}
	return out
}

// CheckOwnership applies the tier-2 ownership rule: a TIER2_EDITOR may only
// modify events it created.
func CheckOwnership(role id.Role, actor id.UserID, e *ChangeEvent) error {
	if role == id.RoleTier2Editor && e.CreatedByID != actor {
		return dErrors.New(dErrors.CodeForbidden, "only the creator may modify this change event")
	}
	return nil
}
