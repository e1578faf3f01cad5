package models

import (
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

// TagType marks the main classification of an event apart from supplementary ones.
type TagType string

const (
	TagTypePrimary TagType = "PRIMARY"
	TagTypeTag     TagType = "TAG"
)

func (t TagType) IsValid() bool {
	return t == TagTypePrimary || t == TagTypeTag
}

// Tag attaches a taxonomy item to an event.
type Tag struct {
	ItemID  id.TaxonomyItemID `json:"itemId"`
	TagType TagType           `json:"tagType"`
}

// NormalizeTags collapses duplicate pairs, preserving first-seen order, and
// rejects unknown tag types and more than one PRIMARY entry.
func NormalizeTags(tags []Tag) ([]Tag, error) {
	out := make([]Tag, 0, len(tags))
	seen := make(map[Tag]struct{}, len(tags))
	primaries := 0
	for _, t := range tags {
		if !t.TagType.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "tagType must be one of PRIMARY, TAG")
		}
		if t.ItemID.IsNil() {
			return nil, dErrors.New(dErrors.CodeValidation, "tag itemId is required")
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if t.TagType == TagTypePrimary {
			primaries++
		}
		out = append(out, t)
	}
	if primaries > 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "at most one PRIMARY tag is allowed")
	}
	return out, nil
}

// ItemIDs lists the distinct taxonomy items referenced by tags.
func ItemIDs(tags []Tag) []id.TaxonomyItemID {
	seen := make(map[id.TaxonomyItemID]struct{}, len(tags))
	out := make([]id.TaxonomyItemID, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t.ItemID]; ok {
			continue
		}
		seen[t.ItemID] = struct{}{}
		out = append(out, t.ItemID)
	}
	return out
}
