package models

import (
	"strings"
	"time"

	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

// ClassCP96 is the class whose tags fill the 96 columns of the monthly
// master list.
const ClassCP96 = "CP_96"

// Class is the top level of the classification taxonomy.
type Class struct {
	ID          id.TaxonomyClassID `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	DeletedAt   *time.Time         `json:"-"`
}

// Category groups items within a class. Categories nest through ParentID;
// Depth is 1 for top-level categories.
type Category struct {
	ID        id.TaxonomyCategoryID  `json:"id"`
	ClassID   id.TaxonomyClassID     `json:"classId"`
	ParentID  *id.TaxonomyCategoryID `json:"parentId,omitempty"`
	Code      string                 `json:"code"`
	Name      string                 `json:"name"`
	Depth     int                    `json:"depth"`
	CreatedAt time.Time              `json:"createdAt"`
	DeletedAt *time.Time             `json:"-"`
}

// Item is a taggable leaf.
type Item struct {
	ID         id.TaxonomyItemID     `json:"id"`
	CategoryID id.TaxonomyCategoryID `json:"categoryId"`
	Code       string                `json:"code"`
	Name       string                `json:"name"`
	CreatedAt  time.Time             `json:"createdAt"`
	DeletedAt  *time.Time            `json:"-"`
}

// ItemDetail is an item with its full ancestry resolved.
type ItemDetail struct {
	Item     *Item
	Category *Category
	// Root is the top-level category of the item's branch.
	Root  *Category
	Class *Class
}

func NewClass(classID id.TaxonomyClassID, code, name, description string, now time.Time) (*Class, error) {
	code, name, err := codeAndName(code, name)
	if err != nil {
		return nil, err
	}
	return &Class{ID: classID, Code: code, Name: name, Description: strings.TrimSpace(description), CreatedAt: now}, nil
}

// NewCategory builds a category under class. A non-nil parent must belong to
// the same class and places the category one level below it.
func NewCategory(categoryID id.TaxonomyCategoryID, class *Class, parent *Category, code, name string, now time.Time) (*Category, error) {
	code, name, err := codeAndName(code, name)
	if err != nil {
		return nil, err
	}
	c := &Category{ID: categoryID, ClassID: class.ID, Code: code, Name: name, Depth: 1, CreatedAt: now}
	if parent != nil {
		if parent.ClassID != class.ID {
			return nil, dErrors.New(dErrors.CodeValidation, "parent category belongs to another class")
		}
		parentID := parent.ID
		c.ParentID = &parentID
		c.Depth = parent.Depth + 1
	}
	return c, nil
}

func NewItem(itemID id.TaxonomyItemID, categoryID id.TaxonomyCategoryID, code, name string, now time.Time) (*Item, error) {
	code, name, err := codeAndName(code, name)
	if err != nil {
		return nil, err
	}
	return &Item{ID: itemID, CategoryID: categoryID, Code: code, Name: name, CreatedAt: now}, nil
}

func (c *Class) IsLive() bool    { return c.DeletedAt == nil }
func (c *Category) IsLive() bool { return c.DeletedAt == nil }
func (i *Item) IsLive() bool     { return i.DeletedAt == nil }

// Tree indexes live classes and categories for ancestry lookups.
type Tree struct {
	classes    map[id.TaxonomyClassID]*Class
	categories map[id.TaxonomyCategoryID]*Category
}

func NewTree(classes []*Class, categories []*Category) *Tree {
	t := &Tree{
		classes:    make(map[id.TaxonomyClassID]*Class, len(classes)),
		categories: make(map[id.TaxonomyCategoryID]*Category, len(categories)),
	}
	for _, c := range classes {
		t.classes[c.ID] = c
	}
	for _, c := range categories {
		t.categories[c.ID] = c
	}
	return t
}

// Detail resolves item's ancestry. It returns false when any ancestor is
// missing or deleted, which makes the item untaggable.
func (t *Tree) Detail(item *Item) (*ItemDetail, bool) {
	category, ok := t.categories[item.CategoryID]
	if !ok {
		return nil, false
	}
	root := category
	for root.ParentID != nil {
		parent, ok := t.categories[*root.ParentID]
		if !ok {
			return nil, false
		}
		root = parent
	}
	class, ok := t.classes[category.ClassID]
	if !ok {
		return nil, false
	}
	return &ItemDetail{Item: item, Category: category, Root: root, Class: class}, true
}

func codeAndName(code, name string) (string, string, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "code is required")
	}
	if name == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return code, name, nil
}
