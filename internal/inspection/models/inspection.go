package models

import (
	"slices"
	"strconv"
	"strings"
	"time"

	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

// ItemType decides how a checklist answer is entered and validated.
type ItemType string

const (
	ItemTypeText     ItemType = "TEXT"
	ItemTypeTextarea ItemType = "TEXTAREA"
	ItemTypeSelect   ItemType = "SELECT"
	ItemTypeRadio    ItemType = "RADIO"
	ItemTypeCheckbox ItemType = "CHECKBOX"
	ItemTypeNumber   ItemType = "NUMBER"
	ItemTypeDate     ItemType = "DATE"
)

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeText, ItemTypeTextarea, ItemTypeSelect, ItemTypeRadio, ItemTypeCheckbox, ItemTypeNumber, ItemTypeDate:
		return true
	}
	return false
}

// HasOptions reports whether answers are picked from a fixed option list.
func (t ItemType) HasOptions() bool {
	return t == ItemTypeSelect || t == ItemTypeRadio || t == ItemTypeCheckbox
}

// Template is a versioned inspection checklist.
type Template struct {
	ID        id.InspectionTemplateID `json:"id"`
	Name      string                  `json:"name"`
	Version   int                     `json:"version"`
	IsActive  bool                    `json:"isActive"`
	Items     []*Item                 `json:"items"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
	DeletedAt *time.Time              `json:"-"`
}

// Item is one question of a template.
type Item struct {
	ID         id.InspectionItemID     `json:"id"`
	TemplateID id.InspectionTemplateID `json:"templateId"`
	Order      int                     `json:"order"`
	Category   string                  `json:"category"`
	Question   string                  `json:"question"`
	Type       ItemType                `json:"type"`
	Required   bool                    `json:"required"`
	Options    []string                `json:"options"`
	CreatedAt  time.Time               `json:"createdAt"`
	UpdatedAt  time.Time               `json:"updatedAt"`
	DeletedAt  *time.Time              `json:"-"`
}

// Result is the answer recorded for one item of one change event. There is
// at most one live result per (EventID, ItemID).
type Result struct {
	ID        id.InspectionResultID `json:"id"`
	EventID   id.ChangeEventID      `json:"eventId"`
	ItemID    id.InspectionItemID   `json:"itemId"`
	Value     string                `json:"value"`
	Item      *Item                 `json:"item,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
	DeletedAt *time.Time            `json:"-"`
}

// Entry is one answer in a bulk save.
type Entry struct {
	ItemID id.InspectionItemID
	Value  string
}

type ItemDraft struct {
	Order    int
	Category string
	Question string
	Type     ItemType
	Required bool
	Options  []string
}

type TemplatePatch struct {
	Name     *string
	Version  *int
	IsActive *bool
}

type ItemPatch struct {
	Order    *int
	Category *string
	Question *string
	Type     *ItemType
	Required *bool
	Options  *[]string
}

func NewTemplate(templateID id.InspectionTemplateID, name string, version int, active bool, now time.Time) (*Template, error) {
	t := &Template{
		ID:        templateID,
		Name:      strings.TrimSpace(name),
		Version:   version,
		IsActive:  active,
		Items:     []*Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) Validate() error {
	if t.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if t.Version < 1 {
		return dErrors.New(dErrors.CodeValidation, "version must be at least 1")
	}
	return nil
}

// Apply returns a patched copy of t without its items.
func (t *Template) Apply(p TemplatePatch, now time.Time) (*Template, error) {
	next := *t
	next.Items = nil
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Version != nil {
		next.Version = *p.Version
	}
	if p.IsActive != nil {
		next.IsActive = *p.IsActive
	}
	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (t *Template) IsLive() bool { return t.DeletedAt == nil }

// SortItems orders items by Order, then question text.
func (t *Template) SortItems() {
	slices.SortStableFunc(t.Items, func(a, b *Item) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Question, b.Question)
	})
}

func NewItem(itemID id.InspectionItemID, templateID id.InspectionTemplateID, d ItemDraft, now time.Time) (*Item, error) {
	options := d.Options
	if options == nil {
		options = []string{}
	}
	i := &Item{
		ID:         itemID,
		TemplateID: templateID,
		Order:      d.Order,
		Category:   strings.TrimSpace(d.Category),
		Question:   strings.TrimSpace(d.Question),
		Type:       d.Type,
		Required:   d.Required,
		Options:    options,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *Item) Validate() error {
	switch {
	case i.Category == "":
		return dErrors.New(dErrors.CodeValidation, "category is required")
	case i.Question == "":
		return dErrors.New(dErrors.CodeValidation, "question is required")
	case !i.Type.IsValid():
		return dErrors.New(dErrors.CodeValidation, "unknown item type")
	case i.Order < 0:
		return dErrors.New(dErrors.CodeValidation, "order must not be negative")
	case i.Type.HasOptions() && len(i.Options) == 0:
		return dErrors.New(dErrors.CodeValidation, "options are required for "+string(i.Type)+" items")
	}
	return nil
}

func (i *Item) Apply(p ItemPatch, now time.Time) (*Item, error) {
	next := *i
	if p.Order != nil {
		next.Order = *p.Order
	}
	if p.Category != nil {
		next.Category = strings.TrimSpace(*p.Category)
	}
	if p.Question != nil {
		next.Question = strings.TrimSpace(*p.Question)
	}
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.Required != nil {
		next.Required = *p.Required
	}
	if p.Options != nil {
		next.Options = append([]string{}, (*p.Options)...)
	} else {
		next.Options = append([]string{}, i.Options...)
	}
	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (i *Item) IsLive() bool { return i.DeletedAt == nil }

// CheckValue validates an answer against the item's type. CHECKBOX answers
// are comma separated option lists.
func (i *Item) CheckValue(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if i.Required {
			return dErrors.New(dErrors.CodeValidation, "an answer is required for \""+i.Question+"\"")
		}
		return nil
	}
	switch i.Type {
	case ItemTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return dErrors.New(dErrors.CodeValidation, "\""+i.Question+"\" expects a number")
		}
	case ItemTypeDate:
		if _, err := time.Parse(time.DateOnly, value); err != nil {
			return dErrors.New(dErrors.CodeValidation, "\""+i.Question+"\" expects a YYYY-MM-DD date")
		}
	case ItemTypeSelect, ItemTypeRadio:
		if !slices.Contains(i.Options, value) {
			return dErrors.New(dErrors.CodeValidation, "\""+value+"\" is not an option of \""+i.Question+"\"")
		}
	case ItemTypeCheckbox:
		for _, v := range strings.Split(value, ",") {
			if !slices.Contains(i.Options, strings.TrimSpace(v)) {
				return dErrors.New(dErrors.CodeValidation, "\""+v+"\" is not an option of \""+i.Question+"\"")
			}
		}
	}
	return nil
}

func NewResult(resultID id.InspectionResultID, eventID id.ChangeEventID, itemID id.InspectionItemID, value string, now time.Time) *Result {
	return &Result{
		ID:        resultID,
		EventID:   eventID,
		ItemID:    itemID,
		Value:     strings.TrimSpace(value),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Result) IsLive() bool { return r.DeletedAt == nil }
