package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"changepoint/internal/platform/metrics"
	"changepoint/internal/policy/models"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/audit"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/platform/tx"
	"changepoint/pkg/requestcontext"
)

// Store persists policy settings.
type Store interface {
	Create(ctx context.Context, s *models.Setting) error
	Update(ctx context.Context, s *models.Setting) error
	FindByID(ctx context.Context, settingID id.PolicySettingID) (*models.Setting, error)
	List(ctx context.Context) ([]*models.Setting, error)
	ListByKey(ctx context.Context, key models.Key, scopeType models.ScopeType) ([]*models.Setting, error)
	SoftDelete(ctx context.Context, settingID id.PolicySettingID, at time.Time) error
	LockKey(ctx context.Context, key models.Key) error
}

type Service struct {
	store   Store
	tx      tx.Runner
	auditor audit.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger

	// mu serializes writes within the process; LockKey covers other
	// processes sharing the database.
	mu sync.Mutex
}

type Option func(*Service)

func WithAuditor(emitter audit.Emitter) Option {
	return func(s *Service) { s.auditor = emitter }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, runner tx.Runner, opts ...Option) *Service {
	s := &Service{store: store, tx: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, d models.Draft) (*models.Setting, error) {
	setting, err := models.NewSetting(id.PolicySettingID(uuid.New()), d, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guardOverlap(ctx, setting); err != nil {
			return err
		}
		if err := s.store.Create(ctx, setting); err != nil {
			return translate(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.EventPolicyCreated, setting)
	return setting, nil
}

func (s *Service) Update(ctx context.Context, settingID id.PolicySettingID, p models.Patch) (*models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *models.Setting
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.FindByID(ctx, settingID)
		if err != nil {
			return translate(err)
		}
		next, err := current.Apply(p, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := s.guardOverlap(ctx, next); err != nil {
			return err
		}
		if err := s.store.Update(ctx, next); err != nil {
			return translate(err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.EventPolicyUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, settingID id.PolicySettingID) error {
	setting, err := s.store.FindByID(ctx, settingID)
	if err != nil {
		return translate(err)
	}
	if err := s.store.SoftDelete(ctx, settingID, requestcontext.Now(ctx)); err != nil {
		return translate(err)
	}
	s.emit(ctx, audit.EventPolicyDeleted, setting)
	return nil
}

func (s *Service) Get(ctx context.Context, settingID id.PolicySettingID) (*models.Setting, error) {
	setting, err := s.store.FindByID(ctx, settingID)
	if err != nil {
		return nil, translate(err)
	}
	return setting, nil
}

// List returns live settings, most recent effectiveFrom first.
func (s *Service) List(ctx context.Context) ([]*models.Setting, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

// Resolve returns the setting active at instant t, or nil when none is. A
// row for the exact scopeID wins over the row with no scopeID.
func (s *Service) Resolve(ctx context.Context, key models.Key, scopeType models.ScopeType, scopeID *id.CompanyID, t time.Time) (*models.Setting, error) {
	candidates, err := s.store.ListByKey(ctx, key, scopeType)
	if err != nil {
		return nil, translate(err)
	}
	var fallback *models.Setting
	for _, c := range candidates {
		if !c.ActiveAt(t) {
			continue
		}
		switch {
		case scopeID != nil && c.ScopeID != nil && *c.ScopeID == *scopeID:
			return c, nil
		case c.ScopeID == nil && fallback == nil:
			fallback = c
		}
	}
	return fallback, nil
}

// TagRequired reports whether REQUIRE_96_TAG is enabled at GLOBAL scope at
// the request instant. No active setting means disabled.
func (s *Service) TagRequired(ctx context.Context) (bool, error) {
	setting, err := s.Resolve(ctx, models.KeyRequire96Tag, models.ScopeGlobal, nil, requestcontext.Now(ctx))
	if err != nil {
		return false, err
	}
	if setting == nil {
		return false, nil
	}
	enabled, err := models.DecodeRequire96Tag(setting.Value)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "stored REQUIRE_96_TAG value is malformed")
	}
	return enabled, nil
}

// Definitions lists the registered policy keys.
func (s *Service) Definitions() []models.Definition {
	return models.Definitions()
}

func (s *Service) guardOverlap(ctx context.Context, candidate *models.Setting) error {
	if err := s.store.LockKey(ctx, candidate.Key); err != nil {
		return translate(err)
	}
	existing, err := s.store.ListByKey(ctx, candidate.Key, candidate.ScopeType)
	if err != nil {
		return translate(err)
	}
	for _, other := range existing {
		if other.ID == candidate.ID {
			continue
		}
		if candidate.SameScope(other) && candidate.Overlaps(other) {
			return dErrors.New(dErrors.CodeConflict, "an active setting already covers this window")
		}
	}
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, setting *models.Setting) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		ActorID:   requestcontext.UserID(ctx),
		ActorRole: requestcontext.Role(ctx),
		Subject:   setting.ID.String(),
		To:        string(setting.Value),
		Reason:    string(setting.Key),
	})
	if err != nil {
		s.metrics.IncAuditPublishErrors()
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", string(action), "error", err)
	}
}

func translate(err error) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "policy setting not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "policy setting already exists")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeValidation, "effectiveTo must be after effectiveFrom")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "policy store failure")
	}
}
