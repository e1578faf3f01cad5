package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"changepoint/internal/taxonomy/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
)

// InMemoryTaxonomyStore is a process-local taxonomy store.
type InMemoryTaxonomyStore struct {
	mu         sync.RWMutex
	classes    map[id.TaxonomyClassID]*models.Class
	categories map[id.TaxonomyCategoryID]*models.Category
	items      map[id.TaxonomyItemID]*models.Item
}

func NewInMemoryTaxonomyStore() *InMemoryTaxonomyStore {
	return &InMemoryTaxonomyStore{
		classes:    make(map[id.TaxonomyClassID]*models.Class),
		categories: make(map[id.TaxonomyCategoryID]*models.Category),
		items:      make(map[id.TaxonomyItemID]*models.Item),
	}
}

func (s *InMemoryTaxonomyStore) CreateClass(_ context.Context, c *models.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.classes {
		if existing.Code == c.Code {
			return sentinel.ErrConflict
		}
	}
	cp := *c
	s.classes[c.ID] = &cp
	return nil
}

func (s *InMemoryTaxonomyStore) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[c.ClassID]; !ok {
		return sentinel.ErrReferenceMissing
	}
	if c.ParentID != nil {
		if _, ok := s.categories[*c.ParentID]; !ok {
			return sentinel.ErrReferenceMissing
		}
	}
	for _, existing := range s.categories {
		if existing.ClassID == c.ClassID && existing.Code == c.Code {
			return sentinel.ErrConflict
		}
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *InMemoryTaxonomyStore) CreateItem(_ context.Context, i *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[i.CategoryID]; !ok {
		return sentinel.ErrReferenceMissing
	}
	for _, existing := range s.items {
		if existing.CategoryID == i.CategoryID && existing.Code == i.Code {
			return sentinel.ErrConflict
		}
	}
	cp := *i
	s.items[i.ID] = &cp
	return nil
}

func (s *InMemoryTaxonomyStore) FindClass(_ context.Context, classID id.TaxonomyClassID) (*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classes[classID]
	if !ok || !c.IsLive() {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryTaxonomyStore) FindCategory(_ context.Context, categoryID id.TaxonomyCategoryID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok || !c.IsLive() {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryTaxonomyStore) ListClasses(_ context.Context) ([]*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Class, 0, len(s.classes))
	for _, c := range s.classes {
		if c.IsLive() {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *InMemoryTaxonomyStore) ListCategories(_ context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.IsLive() {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (s *InMemoryTaxonomyStore) ListItems(_ context.Context) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Item, 0, len(s.items))
	for _, i := range s.items {
		if i.IsLive() {
			cp := *i
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// FindItemsByIDs returns the live items among ids. Unknown and deleted IDs
// are absent from the result.
func (s *InMemoryTaxonomyStore) FindItemsByIDs(_ context.Context, ids []id.TaxonomyItemID) (map[id.TaxonomyItemID]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.TaxonomyItemID]*models.Item, len(ids))
	for _, itemID := range ids {
		if i, ok := s.items[itemID]; ok && i.IsLive() {
			cp := *i
			out[itemID] = &cp
		}
	}
	return out, nil
}

func (s *InMemoryTaxonomyStore) DeleteItem(_ context.Context, itemID id.TaxonomyItemID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.items[itemID]
	if !ok || !i.IsLive() {
		return sentinel.ErrNotFound
	}
	i.DeletedAt = &at
	return nil
}
