// Package logsink writes audit events to the structured log. It is the audit
// destination when no broker is configured.
package logsink

import (
	"context"
	"log/slog"

	audit "changepoint/pkg/platform/audit"
)

type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	s.logger.InfoContext(ctx, "audit",
		"category", event.Category,
		"action", event.Action,
		"actor_id", event.ActorID,
		"actor_role", event.ActorRole,
		"subject", event.Subject,
		"from", event.From,
		"to", event.To,
		"reason", event.Reason,
		"request_id", event.RequestID,
	)
	return nil
}
