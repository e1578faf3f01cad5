package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "changepoint/pkg/domain"
)

func TestActorRoundTrip(t *testing.T) {
	userID := id.UserID(uuid.New())
	companyID := id.CompanyID(uuid.New())

	ctx := WithActor(context.Background(), userID, id.RoleTier2Editor, companyID)

	assert.Equal(t, userID, UserID(ctx))
	assert.Equal(t, id.RoleTier2Editor, Role(ctx))
	assert.Equal(t, companyID, CompanyID(ctx))
}

func TestZeroValuesWhenUnset(t *testing.T) {
	ctx := context.Background()
	assert.True(t, UserID(ctx).IsNil())
	assert.Equal(t, id.Role(""), Role(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, TokenID(ctx))
}

func TestNowPrefersInjectedTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx := WithTime(context.Background(), fixed)
	assert.Equal(t, fixed, Now(ctx))

	assert.WithinDuration(t, time.Now(), Now(context.Background()), time.Second)
}
