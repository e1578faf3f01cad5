package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changepoint/internal/company/models"
	"changepoint/internal/company/store"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

func TestCreateCompany(t *testing.T) {
	svc := New(store.NewInMemoryCompanyStore())
	ctx := context.Background()

	c, err := svc.Create(ctx, "T2-001", "Supplier One", models.CompanyTypeTier2)
	require.NoError(t, err)
	assert.False(t, c.ID.IsNil())

	_, err = svc.Create(ctx, "T2-001", "Duplicate", models.CompanyTypeTier2)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = svc.Create(ctx, "X", "Bad", models.CompanyType("VENDOR"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestGetAndExists(t *testing.T) {
	svc := New(store.NewInMemoryCompanyStore())
	ctx := context.Background()

	c, err := svc.Create(ctx, "T1-001", "Tier One", models.CompanyTypeTier1)
	require.NoError(t, err)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tier One", got.Name)

	ok, err := svc.Exists(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	missing := id.CompanyID(uuid.New())
	_, err = svc.Get(ctx, missing)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	ok, err = svc.Exists(ctx, missing)
	require.NoError(t, err)
	assert.False(t, ok)
}
