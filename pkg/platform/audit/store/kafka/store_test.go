package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "changepoint/pkg/domain"
	audit "changepoint/pkg/platform/audit"
)

type capturedRecord struct {
	key, value []byte
}

type fakeProducer struct {
	records []capturedRecord
}

func (f *fakeProducer) Publish(_ context.Context, key, value []byte) error {
	f.records = append(f.records, capturedRecord{key: key, value: value})
	return nil
}

func TestAppendKeysBySubject(t *testing.T) {
	producer := &fakeProducer{}
	store := New(producer)

	eventID := uuid.NewString()
	err := store.Append(context.Background(), audit.Event{
		Action:    audit.EventStatusChanged,
		Category:  audit.CategoryWorkflow,
		Timestamp: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		ActorID:   id.UserID(uuid.New()),
		Subject:   eventID,
		From:      "SUBMITTED",
		To:        "REVIEWED",
	})
	require.NoError(t, err)
	require.Len(t, producer.records, 1)
	assert.Equal(t, eventID, string(producer.records[0].key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(producer.records[0].value, &decoded))
	assert.Equal(t, "status_changed", decoded["action"])
	assert.Equal(t, "REVIEWED", decoded["to"])
}
