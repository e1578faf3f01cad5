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

func TestTreeDetailResolvesRootCategory(t *testing.T) {
	now := time.Now()
	class, err := NewClass(id.TaxonomyClassID(uuid.New()), ClassCP96, "96 change points", "", now)
	require.NoError(t, err)
	top, err := NewCategory(id.TaxonomyCategoryID(uuid.New()), class, nil, "NEW", "New", now)
	require.NoError(t, err)
	child, err := NewCategory(id.TaxonomyCategoryID(uuid.New()), class, top, "SUPPLIER", "Supplier", now)
	require.NoError(t, err)
	assert.Equal(t, 2, child.Depth)

	item, err := NewItem(id.TaxonomyItemID(uuid.New()), child.ID, "SUP-CHANGE", "Supplier change", now)
	require.NoError(t, err)

	tree := NewTree([]*Class{class}, []*Category{top, child})
	detail, ok := tree.Detail(item)
	require.True(t, ok)
	assert.Equal(t, top.ID, detail.Root.ID)
	assert.Equal(t, child.ID, detail.Category.ID)
	assert.Equal(t, ClassCP96, detail.Class.Code)

	_, ok = NewTree([]*Class{class}, []*Category{child}).Detail(item)
	assert.False(t, ok, "missing ancestor makes the item unresolvable")
}

func TestNewCategoryRejectsForeignParent(t *testing.T) {
	now := time.Now()
	a, _ := NewClass(id.TaxonomyClassID(uuid.New()), "A", "A", "", now)
	b, _ := NewClass(id.TaxonomyClassID(uuid.New()), "B", "B", "", now)
	parent, _ := NewCategory(id.TaxonomyCategoryID(uuid.New()), a, nil, "P", "P", now)

	_, err := NewCategory(id.TaxonomyCategoryID(uuid.New()), b, parent, "C", "C", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCodeAndNameRequired(t *testing.T) {
	_, err := NewItem(id.TaxonomyItemID(uuid.New()), id.TaxonomyCategoryID(uuid.New()), " ", "Name", time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
