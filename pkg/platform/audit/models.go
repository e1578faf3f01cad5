package audit

import (
	"context"
	"time"

	id "changepoint/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategoryWorkflow covers change-event lifecycle actions reviewed by quality auditors.
	CategoryWorkflow EventCategory = "workflow"
	// CategorySecurity covers authentication and authorization events.
	CategorySecurity EventCategory = "security"
	// CategoryConfiguration covers policy and reference-data changes.
	CategoryConfiguration EventCategory = "configuration"
)

// AuditEvent names an audited action.
type AuditEvent string

const (
	EventChangeEventCreated AuditEvent = "change_event_created"
	EventChangeEventUpdated AuditEvent = "change_event_updated"
	EventChangeEventDeleted AuditEvent = "change_event_deleted"
	EventStatusChanged      AuditEvent = "status_changed"
	EventTagsReplaced       AuditEvent = "tags_replaced"
	EventInspectionSaved    AuditEvent = "inspection_results_saved"

	EventUserRegistered AuditEvent = "user_registered"
	EventUserLoggedIn   AuditEvent = "user_logged_in"
	EventAuthFailed     AuditEvent = "auth_failed"
	EventTokenRefreshed AuditEvent = "token_refreshed"
	EventTokenRevoked   AuditEvent = "token_revoked"
	EventRoleChanged    AuditEvent = "role_changed"

	EventPolicyCreated AuditEvent = "policy_created"
	EventPolicyUpdated AuditEvent = "policy_updated"
	EventPolicyDeleted AuditEvent = "policy_deleted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventChangeEventCreated: CategoryWorkflow,
	EventChangeEventUpdated: CategoryWorkflow,
	EventChangeEventDeleted: CategoryWorkflow,
	EventStatusChanged:      CategoryWorkflow,
	EventTagsReplaced:       CategoryWorkflow,
	EventInspectionSaved:    CategoryWorkflow,

	EventUserRegistered: CategorySecurity,
	EventUserLoggedIn:   CategorySecurity,
	EventAuthFailed:     CategorySecurity,
	EventTokenRefreshed: CategorySecurity,
	EventTokenRevoked:   CategorySecurity,
	EventRoleChanged:    CategorySecurity,

	EventPolicyCreated: CategoryConfiguration,
	EventPolicyUpdated: CategoryConfiguration,
	EventPolicyDeleted: CategoryConfiguration,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryWorkflow.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryWorkflow
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    AuditEvent    `json:"action"`
	ActorID   id.UserID     `json:"actorId"`
	ActorRole id.Role       `json:"actorRole,omitempty"`
	// Subject is the affected entity, e.g. a change event or policy ID.
	Subject   string `json:"subject,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	ClientIP  string `json:"clientIp,omitempty"`
	Device    string `json:"device,omitempty"`
}

// Store is the append-only destination of audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
