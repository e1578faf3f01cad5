// Package kafka stores audit events by publishing them as JSON records.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	audit "changepoint/pkg/platform/audit"
)

// Producer is the subset of the platform Kafka producer the store needs.
type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Store struct {
	producer Producer
}

func New(producer Producer) *Store {
	return &Store{producer: producer}
}

// Append publishes the event keyed by subject so one entity's history stays
// ordered within a partition.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	key := event.Subject
	if key == "" {
		key = event.ActorID.String()
	}
	return s.producer.Publish(ctx, []byte(key), payload)
}
