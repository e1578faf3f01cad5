package user

import (
	"context"
	"fmt"
	"sync"

	"changepoint/internal/auth/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
)

// InMemoryUserStore stores users in process for tests and dev.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[u.Email]; exists {
		return fmt.Errorf("email %s: %w", u.Email, sentinel.ErrConflict)
	}
	cp := *u
	s.users[u.ID] = &cp
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	cp := *s.users[userID]
	return &cp, nil
}

// FindByIDs returns the users that exist among ids, keyed by ID.
func (s *InMemoryUserStore) FindByIDs(_ context.Context, ids []id.UserID) (map[id.UserID]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.UserID]*models.User, len(ids))
	for _, userID := range ids {
		if u, ok := s.users[userID]; ok {
			cp := *u
			out[userID] = &cp
		}
	}
	return out, nil
}

func (s *InMemoryUserStore) UpdateRole(_ context.Context, userID id.UserID, role id.Role, companyID *id.CompanyID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	u.Role = role
	if companyID != nil {
		c := *companyID
		u.CompanyID = &c
	}
	cp := *u
	return &cp, nil
}
