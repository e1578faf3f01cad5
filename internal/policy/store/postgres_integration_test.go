//go:build integration

package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"changepoint/internal/platform/postgres"
	"changepoint/internal/policy/models"
	"changepoint/internal/policy/service"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/platform/tx"
	"changepoint/pkg/requestcontext"
	"changepoint/pkg/testutil/containers"
)

// Runs the policy service over the Postgres store so the overlap guard and
// resolution are checked inside real transactions.
type PostgresPolicyStoreSuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	store   *PostgresPolicyStore
	service *service.Service
	ctx     context.Context
	now     time.Time
}

func TestPostgresPolicyStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresPolicyStoreSuite))
}

func (s *PostgresPolicyStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.Require().NoError(postgres.Migrate(context.Background(), s.pg.DB, logger))
	s.store = NewPostgresPolicyStore(s.pg.DB)
	s.service = service.New(s.store, tx.NewRunner(s.pg.DB), service.WithLogger(logger))
}

func (s *PostgresPolicyStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "policy_settings"))
	s.now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *PostgresPolicyStoreSuite) draft(enabled bool, from time.Time, to *time.Time) models.Draft {
	raw, err := json.Marshal(models.Require96Tag{Enabled: &enabled})
	s.Require().NoError(err)
	return models.Draft{
		Key:           models.KeyRequire96Tag,
		Value:         raw,
		ScopeType:     models.ScopeGlobal,
		EffectiveFrom: &from,
		EffectiveTo:   to,
	}
}

func (s *PostgresPolicyStoreSuite) TestCreateThenResolve() {
	created, err := s.service.Create(s.ctx, s.draft(true, s.now.Add(-24*time.Hour), nil))
	s.Require().NoError(err)

	got, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	enabled, err := models.DecodeRequire96Tag(got.Value)
	s.Require().NoError(err)
	s.True(enabled)
	s.Nil(got.ScopeID)

	required, err := s.service.TagRequired(s.ctx)
	s.Require().NoError(err)
	s.True(required)
}

func (s *PostgresPolicyStoreSuite) TestOverlappingWindowIsConflict() {
	until := s.now.Add(48 * time.Hour)
	_, err := s.service.Create(s.ctx, s.draft(true, s.now, &until))
	s.Require().NoError(err)

	_, err = s.service.Create(s.ctx, s.draft(false, s.now.Add(24*time.Hour), nil))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	// adjacent windows do not overlap
	_, err = s.service.Create(s.ctx, s.draft(false, until, nil))
	s.NoError(err)

	list, err := s.store.ListByKey(s.ctx, models.KeyRequire96Tag, models.ScopeGlobal)
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *PostgresPolicyStoreSuite) TestExpiredWindowResolvesToNothing() {
	until := s.now.Add(-time.Hour)
	_, err := s.service.Create(s.ctx, s.draft(true, s.now.Add(-48*time.Hour), &until))
	s.Require().NoError(err)

	required, err := s.service.TagRequired(s.ctx)
	s.Require().NoError(err)
	s.False(required)
}

func (s *PostgresPolicyStoreSuite) TestSoftDeleteHidesSetting() {
	created, err := s.service.Create(s.ctx, s.draft(true, s.now, nil))
	s.Require().NoError(err)
	s.Require().NoError(s.store.SoftDelete(s.ctx, created.ID, s.now))

	_, err = s.store.FindByID(s.ctx, created.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.SoftDelete(s.ctx, id.PolicySettingID(uuid.New()), s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
