package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

var now = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func item(t *testing.T, typ ItemType, required bool, options ...string) *Item {
	t.Helper()
	i, err := NewItem(id.InspectionItemID(uuid.New()), id.InspectionTemplateID(uuid.New()), ItemDraft{
		Category: "Quality",
		Question: "Q",
		Type:     typ,
		Required: required,
		Options:  options,
	}, now)
	require.NoError(t, err)
	return i
}

func TestNewItemRequiresOptionsForChoiceTypes(t *testing.T) {
	for _, typ := range []ItemType{ItemTypeSelect, ItemTypeRadio, ItemTypeCheckbox} {
		_, err := NewItem(id.InspectionItemID(uuid.New()), id.InspectionTemplateID(uuid.New()),
			ItemDraft{Category: "C", Question: "Q", Type: typ}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), typ)
	}
	_, err := NewItem(id.InspectionItemID(uuid.New()), id.InspectionTemplateID(uuid.New()),
		ItemDraft{Category: "C", Question: "Q", Type: "SLIDER"}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCheckValue(t *testing.T) {
	tests := []struct {
		name  string
		item  *Item
		value string
		ok    bool
	}{
		{"optional blank", item(t, ItemTypeText, false), "", true},
		{"required blank", item(t, ItemTypeText, true), "  ", false},
		{"number", item(t, ItemTypeNumber, false), "12.5", true},
		{"not a number", item(t, ItemTypeNumber, false), "twelve", false},
		{"date", item(t, ItemTypeDate, false), "2025-04-01", true},
		{"bad date", item(t, ItemTypeDate, false), "01/04/2025", false},
		{"select option", item(t, ItemTypeSelect, false, "OK", "NG"), "NG", true},
		{"select unknown", item(t, ItemTypeSelect, false, "OK", "NG"), "MAYBE", false},
		{"checkbox many", item(t, ItemTypeCheckbox, false, "A", "B", "C"), "A, C", true},
		{"checkbox unknown", item(t, ItemTypeCheckbox, false, "A", "B"), "A,Z", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.CheckValue(tt.value)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func TestSortItems(t *testing.T) {
	tpl, err := NewTemplate(id.InspectionTemplateID(uuid.New()), "Checklist", 1, true, now)
	require.NoError(t, err)
	second := item(t, ItemTypeText, false)
	second.Order = 2
	first := item(t, ItemTypeText, false)
	first.Order = 1
	tpl.Items = []*Item{second, first}

	tpl.SortItems()
	assert.Equal(t, []*Item{first, second}, tpl.Items)
}

func TestTemplateApply(t *testing.T) {
	tpl, err := NewTemplate(id.InspectionTemplateID(uuid.New()), "Checklist", 1, true, now)
	require.NoError(t, err)

	inactive, version := false, 2
	next, err := tpl.Apply(TemplatePatch{IsActive: &inactive, Version: &version}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, next.IsActive)
	assert.Equal(t, 2, next.Version)
	assert.True(t, tpl.IsActive)

	zero := 0
	_, err = tpl.Apply(TemplatePatch{Version: &zero}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
