package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"changepoint/internal/policy/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
)

// InMemoryPolicyStore is a process-local policy store.
type InMemoryPolicyStore struct {
	mu       sync.RWMutex
	settings map[id.PolicySettingID]*models.Setting
}

func NewInMemoryPolicyStore() *InMemoryPolicyStore {
	return &InMemoryPolicyStore{settings: make(map[id.PolicySettingID]*models.Setting)}
}

func (s *InMemoryPolicyStore) Create(_ context.Context, setting *models.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.settings[setting.ID]; exists {
		return sentinel.ErrConflict
	}
	s.settings[setting.ID] = clone(setting)
	return nil
}

func (s *InMemoryPolicyStore) Update(_ context.Context, setting *models.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.settings[setting.ID]
	if !ok || existing.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	s.settings[setting.ID] = clone(setting)
	return nil
}

func (s *InMemoryPolicyStore) FindByID(_ context.Context, settingID id.PolicySettingID) (*models.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setting, ok := s.settings[settingID]
	if !ok || setting.DeletedAt != nil {
		return nil, sentinel.ErrNotFound
	}
	return clone(setting), nil
}

func (s *InMemoryPolicyStore) List(_ context.Context) ([]*models.Setting, error) {
	return s.filter(func(*models.Setting) bool { return true }), nil
}

func (s *InMemoryPolicyStore) ListByKey(_ context.Context, key models.Key, scopeType models.ScopeType) ([]*models.Setting, error) {
	return s.filter(func(setting *models.Setting) bool {
		return setting.Key == key && setting.ScopeType == scopeType
	}), nil
}

func (s *InMemoryPolicyStore) SoftDelete(_ context.Context, settingID id.PolicySettingID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	setting, ok := s.settings[settingID]
	if !ok || setting.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	setting.DeletedAt = &at
	return nil
}

// LockKey is a no-op; the service serializes in-process writes.
func (s *InMemoryPolicyStore) LockKey(context.Context, models.Key) error {
	return nil
}

func (s *InMemoryPolicyStore) filter(keep func(*models.Setting) bool) []*models.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Setting
	for _, setting := range s.settings {
		if setting.DeletedAt == nil && keep(setting) {
			out = append(out, clone(setting))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveFrom.After(out[j].EffectiveFrom) })
	return out
}

func clone(s *models.Setting) *models.Setting {
	cp := *s
	cp.Value = append([]byte(nil), s.Value...)
	return &cp
}
