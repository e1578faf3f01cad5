package store

import (
	"context"
	"sort"
	"sync"

	"changepoint/internal/company/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
)

// InMemoryCompanyStore is a process-local company store.
type InMemoryCompanyStore struct {
	mu        sync.RWMutex
	companies map[id.CompanyID]*models.Company
}

func NewInMemoryCompanyStore() *InMemoryCompanyStore {
	return &InMemoryCompanyStore{companies: make(map[id.CompanyID]*models.Company)}
}

func (s *InMemoryCompanyStore) Create(_ context.Context, c *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.companies {
		if existing.Code == c.Code {
			return sentinel.ErrConflict
		}
	}
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *InMemoryCompanyStore) FindByID(_ context.Context, companyID id.CompanyID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[companyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryCompanyStore) FindByCode(_ context.Context, code string) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.companies {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// List returns companies ordered by code.
func (s *InMemoryCompanyStore) List(_ context.Context) ([]*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Company, 0, len(s.companies))
	for _, c := range s.companies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
