package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"changepoint/internal/inspection/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/sentinel"
)

type resultKey struct {
	event id.ChangeEventID
	item  id.InspectionItemID
}

// InMemoryInspectionStore keeps templates, items and results in maps guarded
// by one lock, so multi-row writes are all-or-nothing.
type InMemoryInspectionStore struct {
	mu        sync.RWMutex
	templates map[id.InspectionTemplateID]*models.Template
	items     map[id.InspectionItemID]*models.Item
	results   map[id.InspectionResultID]*models.Result
	byPair    map[resultKey]id.InspectionResultID
}

func NewInMemoryInspectionStore() *InMemoryInspectionStore {
	return &InMemoryInspectionStore{
		templates: make(map[id.InspectionTemplateID]*models.Template),
		items:     make(map[id.InspectionItemID]*models.Item),
		results:   make(map[id.InspectionResultID]*models.Result),
		byPair:    make(map[resultKey]id.InspectionResultID),
	}
}

// CreateTemplate stores t and its items.
func (s *InMemoryInspectionStore) CreateTemplate(_ context.Context, t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[t.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *t
	cp.Items = nil
	s.templates[t.ID] = &cp
	for _, i := range t.Items {
		item := cloneItem(i)
		s.items[i.ID] = item
	}
	return nil
}

func (s *InMemoryInspectionStore) FindTemplate(_ context.Context, templateID id.InspectionTemplateID) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[templateID]
	if !ok || !t.IsLive() {
		return nil, sentinel.ErrNotFound
	}
	return s.withItems(t), nil
}

// ListTemplates returns live templates, newest first, with their live items.
func (s *InMemoryInspectionStore) ListTemplates(_ context.Context) ([]*models.Template, error) {
	s.mu.RLock()
	out := make([]*models.Template, 0, len(s.templates))
	for _, t := range s.templates {
		if t.IsLive() {
			out = append(out, s.withItems(t))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryInspectionStore) UpdateTemplate(_ context.Context, t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.templates[t.ID]
	if !ok || !current.IsLive() {
		return sentinel.ErrNotFound
	}
	cp := *t
	cp.Items = nil
	s.templates[t.ID] = &cp
	return nil
}

func (s *InMemoryInspectionStore) SoftDeleteTemplate(_ context.Context, templateID id.InspectionTemplateID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[templateID]
	if !ok || !t.IsLive() {
		return sentinel.ErrNotFound
	}
	cp := *t
	cp.DeletedAt = &at
	cp.UpdatedAt = at
	s.templates[templateID] = &cp
	return nil
}

func (s *InMemoryInspectionStore) CreateItem(_ context.Context, i *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[i.TemplateID]; !ok {
		return sentinel.ErrReferenceMissing
	}
	s.items[i.ID] = cloneItem(i)
	return nil
}

func (s *InMemoryInspectionStore) FindItem(_ context.Context, itemID id.InspectionItemID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.items[itemID]
	if !ok || !i.IsLive() {
		return nil, sentinel.ErrNotFound
	}
	return cloneItem(i), nil
}

// FindItemsByIDs returns the live items among ids. Missing ids are absent
// from the map.
func (s *InMemoryInspectionStore) FindItemsByIDs(_ context.Context, ids []id.InspectionItemID) (map[id.InspectionItemID]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.InspectionItemID]*models.Item, len(ids))
	for _, itemID := range ids {
		if i, ok := s.items[itemID]; ok && i.IsLive() {
			out[itemID] = cloneItem(i)
		}
	}
	return out, nil
}

func (s *InMemoryInspectionStore) UpdateItem(_ context.Context, i *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[i.ID]
	if !ok || !current.IsLive() {
		return sentinel.ErrNotFound
	}
	s.items[i.ID] = cloneItem(i)
	return nil
}

func (s *InMemoryInspectionStore) SoftDeleteItem(_ context.Context, itemID id.InspectionItemID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.items[itemID]
	if !ok || !i.IsLive() {
		return sentinel.ErrNotFound
	}
	cp := cloneItem(i)
	cp.DeletedAt = &at
	cp.UpdatedAt = at
	s.items[itemID] = cp
	return nil
}

func (s *InMemoryInspectionStore) FindResult(_ context.Context, resultID id.InspectionResultID) (*models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[resultID]
	if !ok || !r.IsLive() {
		return nil, sentinel.ErrNotFound
	}
	return s.withItem(r), nil
}

// ResultsByEvents returns live results for each event, in item order.
func (s *InMemoryInspectionStore) ResultsByEvents(_ context.Context, eventIDs []id.ChangeEventID) (map[id.ChangeEventID][]*models.Result, error) {
	wanted := make(map[id.ChangeEventID]struct{}, len(eventIDs))
	for _, e := range eventIDs {
		wanted[e] = struct{}{}
	}
	s.mu.RLock()
	out := make(map[id.ChangeEventID][]*models.Result, len(eventIDs))
	for _, r := range s.results {
		if _, ok := wanted[r.EventID]; ok && r.IsLive() {
			out[r.EventID] = append(out[r.EventID], s.withItem(r))
		}
	}
	s.mu.RUnlock()
	for _, list := range out {
		sortResults(list)
	}
	return out, nil
}

func (s *InMemoryInspectionStore) UpdateResult(_ context.Context, r *models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.results[r.ID]
	if !ok || !current.IsLive() {
		return sentinel.ErrNotFound
	}
	s.put(r)
	return nil
}

func (s *InMemoryInspectionStore) SoftDeleteResult(_ context.Context, resultID id.InspectionResultID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[resultID]
	if !ok || !r.IsLive() {
		return sentinel.ErrNotFound
	}
	cp := *r
	cp.DeletedAt = &at
	cp.UpdatedAt = at
	s.results[resultID] = &cp
	return nil
}

// UpsertResults writes every result keyed by (event, item). An existing row
// for the pair, deleted or not, is revived with the new value and keeps its
// id. Either all rows are written or none.
func (s *InMemoryInspectionStore) UpsertResults(_ context.Context, results []*models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		if i, ok := s.items[r.ItemID]; !ok || !i.IsLive() {
			return sentinel.ErrReferenceMissing
		}
	}
	for _, r := range results {
		key := resultKey{r.EventID, r.ItemID}
		if existingID, ok := s.byPair[key]; ok {
			existing := *s.results[existingID]
			existing.Value = r.Value
			existing.UpdatedAt = r.UpdatedAt
			existing.DeletedAt = nil
			s.results[existingID] = &existing
			continue
		}
		s.put(r)
	}
	return nil
}

func (s *InMemoryInspectionStore) put(r *models.Result) {
	cp := *r
	cp.Item = nil
	s.results[r.ID] = &cp
	s.byPair[resultKey{r.EventID, r.ItemID}] = r.ID
}

func (s *InMemoryInspectionStore) withItems(t *models.Template) *models.Template {
	cp := *t
	cp.Items = []*models.Item{}
	for _, i := range s.items {
		if i.TemplateID == t.ID && i.IsLive() {
			cp.Items = append(cp.Items, cloneItem(i))
		}
	}
	cp.SortItems()
	return &cp
}

func (s *InMemoryInspectionStore) withItem(r *models.Result) *models.Result {
	cp := *r
	if i, ok := s.items[r.ItemID]; ok {
		cp.Item = cloneItem(i)
	}
	return &cp
}

func cloneItem(i *models.Item) *models.Item {
	cp := *i
	cp.Options = append([]string{}, i.Options...)
	return &cp
}

func sortResults(list []*models.Result) {
	sort.SliceStable(list, func(a, b int) bool {
		ia, ib := list[a].Item, list[b].Item
		if ia != nil && ib != nil && ia.Order != ib.Order {
			return ia.Order < ib.Order
		}
		return list[a].CreatedAt.Before(list[b].CreatedAt)
	})
}
