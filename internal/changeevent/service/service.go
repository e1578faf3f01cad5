package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	authmodels "changepoint/internal/auth/models"
	"changepoint/internal/changeevent/models"
	"changepoint/internal/changeevent/store"
	"changepoint/internal/platform/metrics"
	taxonomymodels "changepoint/internal/taxonomy/models"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/audit"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/platform/tx"
	"changepoint/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

const (
	DefaultTake = 50
	MaxTake     = 200
)

var tracer = otel.Tracer("changepoint/changeevent")

// Store persists change events together with their tag sets.
type Store interface {
	Create(ctx context.Context, e *models.ChangeEvent) error
	Update(ctx context.Context, e *models.ChangeEvent, replaceTags bool) error
	FindByID(ctx context.Context, eventID id.ChangeEventID) (*models.ChangeEvent, error)
	List(ctx context.Context, f store.Filter) ([]*models.ChangeEvent, error)
	ListApprovedBetween(ctx context.Context, start, end time.Time) ([]*models.ChangeEvent, error)
	SoftDelete(ctx context.Context, eventID id.ChangeEventID, at time.Time) error
	TagsByEvent(ctx context.Context, eventID id.ChangeEventID) ([]models.Tag, error)
	CompanyOf(ctx context.Context, eventID id.ChangeEventID) (id.CompanyID, error)
}

// PolicyChecker reports whether events must carry at least one tag right now.
type PolicyChecker interface {
	TagRequired(ctx context.Context) (bool, error)
}

// TaxonomyResolver returns the taggable subset of the given items.
type TaxonomyResolver interface {
	ResolveItems(ctx context.Context, ids []id.TaxonomyItemID) (map[id.TaxonomyItemID]*taxonomymodels.ItemDetail, error)
}

type CompanyLookup interface {
	Exists(ctx context.Context, companyID id.CompanyID) (bool, error)
}

type UserLookup interface {
	FindByIDs(ctx context.Context, ids []id.UserID) (map[id.UserID]*authmodels.User, error)
}

// Service is the change event workflow engine. Every write runs its gates in
// a fixed order (field validation, tag normalization, tag policy, references,
// ownership and status) before anything is persisted.
type Service struct {
	store     Store
	policy    PolicyChecker
	taxonomy  TaxonomyResolver
	companies CompanyLookup
	users     UserLookup
	tx        tx.Runner
	auditor   audit.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	location  *time.Location
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

// WithLocation sets the time zone month boundaries are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func New(store Store, policy PolicyChecker, taxonomy TaxonomyResolver, companies CompanyLookup, users UserLookup, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:     store,
		policy:    policy,
		taxonomy:  taxonomy,
		companies: companies,
		users:     users,
		tx:        runner,
		logger:    slog.Default(),
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListQuery is the caller's view of store.Filter.
type ListQuery struct {
	Skip      int
	Take      int
	Status    *models.Status
	CompanyID *id.CompanyID
}

func (s *Service) Create(ctx context.Context, f models.Fields, tags []models.Tag) (*models.ChangeEvent, error) {
	ctx, span := tracer.Start(ctx, "changeevent.Create")
	defer span.End()

	actor, role := requestcontext.UserID(ctx), requestcontext.Role(ctx)
	if role == id.RoleTier2Editor && f.CompanyID != requestcontext.CompanyID(ctx) {
		return nil, fail(span, dErrors.New(dErrors.CodeForbidden, "tier-2 editors may only report for their own company"))
	}

	now := requestcontext.Now(ctx)
	e, err := models.NewChangeEvent(id.ChangeEventID(uuid.New()), f, nil, actor, now)
	if err != nil {
		return nil, fail(span, err)
	}
	normalized, err := models.NormalizeTags(tags)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := s.enforceTagPolicy(ctx, normalized); err != nil {
		return nil, fail(span, err)
	}
	if err := s.checkReferences(ctx, e, normalized); err != nil {
		return nil, fail(span, err)
	}
	e.Tags = normalized

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.store.Create(ctx, e)
	})
	if err != nil {
		return nil, fail(span, translate(err))
	}

	span.SetAttributes(attribute.String("change_event.id", e.ID.String()))
	s.metrics.IncChangeEventsCreated()
	s.emit(ctx, audit.EventChangeEventCreated, e, "", string(e.Status))
	s.logger.InfoContext(ctx, "change event created",
		"event_id", e.ID.String(),
		"company_id", e.CompanyID.String(),
		"tags", len(e.Tags),
	)
	return e, nil
}

func (s *Service) Get(ctx context.Context, eventID id.ChangeEventID) (*models.ChangeEvent, error) {
	e, err := s.store.FindByID(ctx, eventID)
	if err != nil {
		return nil, translate(err)
	}
	if !visible(ctx, e) {
		return nil, errNotFound
	}
	return e, nil
}

// List pages live events newest first. Tier-2 editors only ever see their
// own company's events, whatever filter they pass.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*models.ChangeEvent, error) {
	if q.Skip < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "skip must not be negative")
	}
	switch {
	case q.Take <= 0:
		q.Take = DefaultTake
	case q.Take > MaxTake:
		q.Take = MaxTake
	}
	filter := store.Filter{Skip: q.Skip, Take: q.Take, Status: q.Status, CompanyID: q.CompanyID}
	if requestcontext.Role(ctx) == id.RoleTier2Editor {
		own := requestcontext.CompanyID(ctx)
		filter.CompanyID = &own
	}
	events, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}
	return events, nil
}

// Update applies c to a live event. Status changes pass the transition rules;
// supplied tags pass the tag policy and replace the stored set in the same
// transaction as the field update.
func (s *Service) Update(ctx context.Context, eventID id.ChangeEventID, c models.Changes) (*models.ChangeEvent, error) {
	ctx, span := tracer.Start(ctx, "changeevent.Update",
		trace.WithAttributes(attribute.String("change_event.id", eventID.String())))
	defer span.End()

	actor, role := requestcontext.UserID(ctx), requestcontext.Role(ctx)
	if c.Tags != nil {
		normalized, err := models.NormalizeTags(*c.Tags)
		if err != nil {
			return nil, fail(span, err)
		}
		if err := s.enforceTagPolicy(ctx, normalized); err != nil {
			return nil, fail(span, err)
		}
		c.Tags = &normalized
	}
	if role == id.RoleTier2Editor && c.CompanyID != nil && *c.CompanyID != requestcontext.CompanyID(ctx) {
		return nil, fail(span, dErrors.New(dErrors.CodeForbidden, "tier-2 editors may only report for their own company"))
	}

	var (
		before  models.Status
		updated *models.ChangeEvent
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.FindByID(ctx, eventID)
		if err != nil {
			return translate(err)
		}
		if !visible(ctx, current) {
			return errNotFound
		}
		if err := models.CheckOwnership(role, actor, current); err != nil {
			return err
		}
		before = current.Status
		if c.Status != nil {
			if err := models.CanTransition(role, current.Status, *c.Status); err != nil {
				return err
			}
		}
		next, err := current.Apply(c, actor, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		var newTags []models.Tag
		if c.Tags != nil {
			newTags = next.Tags
		}
		if err := s.checkReferences(ctx, next, newTags); err != nil {
			return err
		}
		if err := s.store.Update(ctx, next, c.Tags != nil); err != nil {
			return translate(err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	s.emit(ctx, audit.EventChangeEventUpdated, updated, "", "")
	if updated.Status != before {
		s.metrics.IncStatusTransition(string(before), string(updated.Status))
		s.emit(ctx, audit.EventStatusChanged, updated, string(before), string(updated.Status))
		s.logger.InfoContext(ctx, "change event status changed",
			"event_id", updated.ID.String(),
			"from", string(before),
			"to", string(updated.Status),
		)
	}
	if c.Tags != nil {
		s.emit(ctx, audit.EventTagsReplaced, updated, "", "")
	}
	return updated, nil
}

// Delete soft-deletes a live event. Tags and inspection results stay in
// place and remain readable by event id.
func (s *Service) Delete(ctx context.Context, eventID id.ChangeEventID) error {
	actor, role := requestcontext.UserID(ctx), requestcontext.Role(ctx)
	var deleted *models.ChangeEvent
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.FindByID(ctx, eventID)
		if err != nil {
			return translate(err)
		}
		if !visible(ctx, current) {
			return errNotFound
		}
		if err := models.CheckOwnership(role, actor, current); err != nil {
			return err
		}
		if err := s.store.SoftDelete(ctx, eventID, requestcontext.Now(ctx)); err != nil {
			return translate(err)
		}
		deleted = current
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(ctx, audit.EventChangeEventDeleted, deleted, string(deleted.Status), "")
	return nil
}

// Monthly returns the APPROVED events created in the given month, oldest
// first. Month boundaries are taken in the service's location.
func (s *Service) Monthly(ctx context.Context, year, month int) ([]*models.ChangeEvent, error) {
	start, end, err := MonthRange(year, month, s.location)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListApprovedBetween(ctx, start, end)
	if err != nil {
		return nil, translate(err)
	}
	return events, nil
}

// Tags returns the stored tag set of an event, including soft-deleted ones.
func (s *Service) Tags(ctx context.Context, eventID id.ChangeEventID) ([]models.Tag, error) {
	if err := s.Accessible(ctx, eventID); err != nil {
		return nil, err
	}
	tags, err := s.store.TagsByEvent(ctx, eventID)
	if err != nil {
		return nil, translate(err)
	}
	return tags, nil
}

// Accessible returns NotFound unless the event exists and the caller may see
// it. Soft-deleted events still count, so data hanging off them stays
// readable by event id.
func (s *Service) Accessible(ctx context.Context, eventID id.ChangeEventID) error {
	company, err := s.store.CompanyOf(ctx, eventID)
	if err != nil {
		return translate(err)
	}
	if !companyVisible(ctx, company) {
		return errNotFound
	}
	return nil
}

// NextStatuses lists the states the caller could move the event into.
func (s *Service) NextStatuses(ctx context.Context, eventID id.ChangeEventID) ([]models.Status, error) {
	e, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return models.NextStatuses(requestcontext.Role(ctx), e.Status), nil
}

// MonthRange returns [first instant of the month, first instant of the next).
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeValidation, "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeValidation, "year out of range")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), nil
}

func (s *Service) enforceTagPolicy(ctx context.Context, tags []models.Tag) error {
	if len(tags) > 0 {
		return nil
	}
	required, err := s.policy.TagRequired(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve tag policy")
	}
	if required {
		s.metrics.IncTagPolicyDenials()
		return ErrTagRequired
	}
	return nil
}

// checkReferences verifies the company, the referenced users and, when tags is
// non-empty, that every tagged item is live and taggable.
func (s *Service) checkReferences(ctx context.Context, e *models.ChangeEvent, tags []models.Tag) error {
	if len(tags) > 0 {
		itemIDs := models.ItemIDs(tags)
		resolved, err := s.taxonomy.ResolveItems(ctx, itemIDs)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve taxonomy items")
		}
		for _, itemID := range itemIDs {
			if _, ok := resolved[itemID]; !ok {
				return dErrors.New(dErrors.CodeValidation, "unknown taxonomy item "+itemID.String())
			}
		}
	}

	ok, err := s.companies.Exists(ctx, e.CompanyID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up company")
	}
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "unknown company")
	}

	userIDs := e.UserIDs()
	found, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up users")
	}
	for _, u := range userIDs {
		if _, ok := found[u]; !ok {
			return dErrors.New(dErrors.CodeValidation, "unknown user "+u.String())
		}
	}
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, e *models.ChangeEvent, from, to string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		ActorID:   requestcontext.UserID(ctx),
		ActorRole: requestcontext.Role(ctx),
		Subject:   e.ID.String(),
		From:      from,
		To:        to,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.Device(ctx),
	})
	if err != nil {
		s.metrics.IncAuditPublishErrors()
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", string(action), "error", err)
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}

// visible hides other companies' events from tier-2 editors.
func visible(ctx context.Context, e *models.ChangeEvent) bool {
	return companyVisible(ctx, e.CompanyID)
}

// companyVisible scopes tier-2 editors to their own company.
func companyVisible(ctx context.Context, company id.CompanyID) bool {
	if requestcontext.Role(ctx) != id.RoleTier2Editor {
		return true
	}
	return company == requestcontext.CompanyID(ctx)
}

var (
	ErrTagRequired = dErrors.New(dErrors.CodeForbidden, "required tag missing")
	errNotFound    = dErrors.New(dErrors.CodeNotFound, "change event not found")
)

func translate(err error) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return errNotFound
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeValidation, "duplicate or conflicting tags")
	case errors.Is(err, sentinel.ErrReferenceMissing):
		return dErrors.New(dErrors.CodeValidation, "referenced record does not exist")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "change event store failure")
	}
}
