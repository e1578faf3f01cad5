package publisher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "changepoint/pkg/domain"
	audit "changepoint/pkg/platform/audit"
	"changepoint/pkg/platform/audit/store/memory"
	"changepoint/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	subject := uuid.NewString()
	err := pub.Emit(context.Background(), audit.Event{
		ActorID: id.UserID(uuid.New()),
		Action:  audit.EventStatusChanged,
		Subject: subject,
	})
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventStatusChanged, events[0].Action)
	assert.Equal(t, audit.CategoryWorkflow, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	subject := uuid.NewString()
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Action:  audit.EventChangeEventUpdated,
			Subject: subject,
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListBySubject(context.Background(), subject)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	var dropped atomic.Int32
	pub := NewPublisher(store, WithAsyncBuffer(1), WithErrorHook(func() { dropped.Add(1) }))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{Action: audit.EventUserLoggedIn})
		}()
	}
	wg.Wait()
	pub.Close()

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, len(all)+int(dropped.Load()))
}

func TestPublisher_EnrichesFromContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	ctx = requestcontext.WithDevice(ctx, "Firefox on Linux")

	before := time.Now()
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: audit.EventUserLoggedIn}))

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "req-42", all[0].RequestID)
	assert.Equal(t, "Firefox on Linux", all[0].Device)
	assert.Equal(t, audit.CategorySecurity, all[0].Category)
	assert.False(t, all[0].Timestamp.Before(before))
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:    audit.EventPolicyCreated,
		Timestamp: customTime,
	}))

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, customTime, all[0].Timestamp)
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("broker down") }

func TestPublisher_SyncFailureReported(t *testing.T) {
	var failures atomic.Int32
	pub := NewPublisher(failingStore{}, WithErrorHook(func() { failures.Add(1) }))

	err := pub.Emit(context.Background(), audit.Event{Action: audit.EventStatusChanged})
	require.Error(t, err)
	assert.Equal(t, int32(1), failures.Load())
}

func TestPublisher_EmitAfterCloseFails(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: audit.EventStatusChanged})
	assert.ErrorIs(t, err, ErrBufferFull)
}
