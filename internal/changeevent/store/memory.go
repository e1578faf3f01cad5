package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"changepoint/internal/changeevent/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
)

// InMemoryChangeEventStore keeps events and their tags together; each write
// replaces the stored record in one step, so tag replacement is atomic.
type InMemoryChangeEventStore struct {
	mu     sync.RWMutex
	events map[id.ChangeEventID]*models.ChangeEvent
}

func NewInMemoryChangeEventStore() *InMemoryChangeEventStore {
	return &InMemoryChangeEventStore{events: make(map[id.ChangeEventID]*models.ChangeEvent)}
}

func (s *InMemoryChangeEventStore) Create(_ context.Context, e *models.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[e.ID]; exists {
		return sentinel.ErrConflict
	}
	s.events[e.ID] = clone(e)
	return nil
}

// Update overwrites the live event. When replaceTags is false the stored tag
// set is kept regardless of e.Tags.
func (s *InMemoryChangeEventStore) Update(_ context.Context, e *models.ChangeEvent, replaceTags bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.events[e.ID]
	if !ok || !current.IsLive() {
		return sentinel.ErrNotFound
	}
	next := clone(e)
	if !replaceTags {
		next.Tags = append([]models.Tag(nil), current.Tags...)
	}
	s.events[e.ID] = next
	return nil
}

func (s *InMemoryChangeEventStore) FindByID(_ context.Context, eventID id.ChangeEventID) (*models.ChangeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok || !e.IsLive() {
		return nil, sentinel.ErrNotFound
	}
	return clone(e), nil
}

// List returns live events newest first.
func (s *InMemoryChangeEventStore) List(_ context.Context, f Filter) ([]*models.ChangeEvent, error) {
	s.mu.RLock()
	matched := make([]*models.ChangeEvent, 0, len(s.events))
	for _, e := range s.events {
		if !e.IsLive() {
			continue
		}
		if f.Status != nil && e.Status != *f.Status {
			continue
		}
		if f.CompanyID != nil && e.CompanyID != *f.CompanyID {
			continue
		}
		matched = append(matched, clone(e))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return page(matched, f.Skip, f.Take), nil
}

// ListApprovedBetween returns live APPROVED events created in [start, end),
// oldest first.
func (s *InMemoryChangeEventStore) ListApprovedBetween(_ context.Context, start, end time.Time) ([]*models.ChangeEvent, error) {
	s.mu.RLock()
	var out []*models.ChangeEvent
	for _, e := range s.events {
		if !e.IsLive() || e.Status != models.StatusApproved {
			continue
		}
		if e.CreatedAt.Before(start) || !e.CreatedAt.Before(end) {
			continue
		}
		out = append(out, clone(e))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryChangeEventStore) SoftDelete(_ context.Context, eventID id.ChangeEventID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || !e.IsLive() {
		return sentinel.ErrNotFound
	}
	next := clone(e)
	next.DeletedAt = &at
	next.UpdatedAt = at
	s.events[eventID] = next
	return nil
}

// TagsByEvent returns the tag set of any known event, deleted or not.
func (s *InMemoryChangeEventStore) TagsByEvent(_ context.Context, eventID id.ChangeEventID) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]models.Tag{}, e.Tags...), nil
}

// CompanyOf returns the owning company of any known event, deleted or not.
func (s *InMemoryChangeEventStore) CompanyOf(_ context.Context, eventID id.ChangeEventID) (id.CompanyID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok {
		return id.CompanyID{}, sentinel.ErrNotFound
	}
	return e.CompanyID, nil
}

func clone(e *models.ChangeEvent) *models.ChangeEvent {
	cp := *e
	cp.Tags = append([]models.Tag{}, e.Tags...)
	return &cp
}

func page(events []*models.ChangeEvent, skip, take int) []*models.ChangeEvent {
	if skip >= len(events) {
		return []*models.ChangeEvent{}
	}
	events = events[skip:]
	if take > 0 && take < len(events) {
		events = events[:take]
	}
	return events
}
