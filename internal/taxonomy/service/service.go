package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"changepoint/internal/taxonomy/models"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/requestcontext"
)

// Store persists the classification taxonomy.
type Store interface {
	CreateClass(ctx context.Context, c *models.Class) error
	CreateCategory(ctx context.Context, c *models.Category) error
	CreateItem(ctx context.Context, i *models.Item) error
	FindClass(ctx context.Context, classID id.TaxonomyClassID) (*models.Class, error)
	FindCategory(ctx context.Context, categoryID id.TaxonomyCategoryID) (*models.Category, error)
	ListClasses(ctx context.Context) ([]*models.Class, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListItems(ctx context.Context) ([]*models.Item, error)
	FindItemsByIDs(ctx context.Context, ids []id.TaxonomyItemID) (map[id.TaxonomyItemID]*models.Item, error)
	DeleteItem(ctx context.Context, itemID id.TaxonomyItemID, at time.Time) error
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) CreateClass(ctx context.Context, code, name, description string) (*models.Class, error) {
	c, err := models.NewClass(id.TaxonomyClassID(uuid.New()), code, name, description, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateClass(ctx, c); err != nil {
		return nil, translate(err, "class")
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, classID id.TaxonomyClassID, parentID *id.TaxonomyCategoryID, code, name string) (*models.Category, error) {
	class, err := s.store.FindClass(ctx, classID)
	if err != nil {
		return nil, translate(err, "class")
	}
	var parent *models.Category
	if parentID != nil {
		parent, err = s.store.FindCategory(ctx, *parentID)
		if err != nil {
			return nil, translate(err, "parent category")
		}
	}
	c, err := models.NewCategory(id.TaxonomyCategoryID(uuid.New()), class, parent, code, name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, translate(err, "category")
	}
	return c, nil
}

func (s *Service) CreateItem(ctx context.Context, categoryID id.TaxonomyCategoryID, code, name string) (*models.Item, error) {
	if _, err := s.store.FindCategory(ctx, categoryID); err != nil {
		return nil, translate(err, "category")
	}
	i, err := models.NewItem(id.TaxonomyItemID(uuid.New()), categoryID, code, name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateItem(ctx, i); err != nil {
		return nil, translate(err, "item")
	}
	return i, nil
}

// DeleteItem soft-deletes an item. Existing tags keep pointing at it; it
// can no longer be attached to events.
func (s *Service) DeleteItem(ctx context.Context, itemID id.TaxonomyItemID) error {
	if err := s.store.DeleteItem(ctx, itemID, requestcontext.Now(ctx)); err != nil {
		return translate(err, "item")
	}
	return nil
}

func (s *Service) ListClasses(ctx context.Context) ([]*models.Class, error) {
	list, err := s.store.ListClasses(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list classes")
	}
	return list, nil
}

// ListCategories returns live categories, restricted to one class when
// classID is set.
func (s *Service) ListCategories(ctx context.Context, classID *id.TaxonomyClassID) ([]*models.Category, error) {
	list, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list categories")
	}
	if classID == nil {
		return list, nil
	}
	out := list[:0]
	for _, c := range list {
		if c.ClassID == *classID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListItems returns live items, restricted to one category when categoryID
// is set.
func (s *Service) ListItems(ctx context.Context, categoryID *id.TaxonomyCategoryID) ([]*models.Item, error) {
	list, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	if categoryID == nil {
		return list, nil
	}
	out := list[:0]
	for _, i := range list {
		if i.CategoryID == *categoryID {
			out = append(out, i)
		}
	}
	return out, nil
}

// ResolveItems returns the details of the taggable items among ids. An item
// is taggable when it and all of its ancestors are live; others are absent
// from the result.
func (s *Service) ResolveItems(ctx context.Context, ids []id.TaxonomyItemID) (map[id.TaxonomyItemID]*models.ItemDetail, error) {
	items, err := s.store.FindItemsByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load items")
	}
	tree, err := s.tree(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[id.TaxonomyItemID]*models.ItemDetail, len(items))
	for itemID, item := range items {
		if detail, ok := tree.Detail(item); ok {
			out[itemID] = detail
		}
	}
	return out, nil
}

// Catalog lists every taggable item with its ancestry, ordered by class,
// category and item code.
func (s *Service) Catalog(ctx context.Context) ([]*models.ItemDetail, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	tree, err := s.tree(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.ItemDetail, 0, len(items))
	for _, item := range items {
		if detail, ok := tree.Detail(item); ok {
			out = append(out, detail)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Class.Code != b.Class.Code {
			return a.Class.Code < b.Class.Code
		}
		if a.Category.Code != b.Category.Code {
			return a.Category.Code < b.Category.Code
		}
		return a.Item.Code < b.Item.Code
	})
	return out, nil
}

func (s *Service) tree(ctx context.Context) (*models.Tree, error) {
	classes, err := s.store.ListClasses(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list classes")
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list categories")
	}
	return models.NewTree(classes, categories), nil
}

func translate(err error, what string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, what+" code already exists")
	case errors.Is(err, sentinel.ErrReferenceMissing):
		return dErrors.New(dErrors.CodeValidation, what+" references a missing parent")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "taxonomy store failure")
	}
}
