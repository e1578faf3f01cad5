package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	changeeventmodels "changepoint/internal/changeevent/models"
	"changepoint/internal/inspection/models"
	"changepoint/internal/platform/metrics"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/audit"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/platform/tx"
	"changepoint/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

type Store interface {
	CreateTemplate(ctx context.Context, t *models.Template) error
	FindTemplate(ctx context.Context, templateID id.InspectionTemplateID) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]*models.Template, error)
	UpdateTemplate(ctx context.Context, t *models.Template) error
	SoftDeleteTemplate(ctx context.Context, templateID id.InspectionTemplateID, at time.Time) error

	CreateItem(ctx context.Context, i *models.Item) error
	FindItem(ctx context.Context, itemID id.InspectionItemID) (*models.Item, error)
	FindItemsByIDs(ctx context.Context, ids []id.InspectionItemID) (map[id.InspectionItemID]*models.Item, error)
	UpdateItem(ctx context.Context, i *models.Item) error
	SoftDeleteItem(ctx context.Context, itemID id.InspectionItemID, at time.Time) error

	FindResult(ctx context.Context, resultID id.InspectionResultID) (*models.Result, error)
	ResultsByEvents(ctx context.Context, eventIDs []id.ChangeEventID) (map[id.ChangeEventID][]*models.Result, error)
	UpdateResult(ctx context.Context, r *models.Result) error
	SoftDeleteResult(ctx context.Context, resultID id.InspectionResultID, at time.Time) error
	UpsertResults(ctx context.Context, results []*models.Result) error
}

// EventLookup resolves a live change event visible to the caller.
type EventLookup interface {
	Get(ctx context.Context, eventID id.ChangeEventID) (*changeeventmodels.ChangeEvent, error)
	Accessible(ctx context.Context, eventID id.ChangeEventID) error
}

type Service struct {
	store   Store
	events  EventLookup
	tx      tx.Runner
	auditor audit.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
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

func New(store Store, events EventLookup, runner tx.Runner, opts ...Option) *Service {
	s := &Service{store: store, events: events, tx: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateTemplate(ctx context.Context, name string, version int, active bool, drafts []models.ItemDraft) (*models.Template, error) {
	now := requestcontext.Now(ctx)
	t, err := models.NewTemplate(id.InspectionTemplateID(uuid.New()), name, version, active, now)
	if err != nil {
		return nil, err
	}
	for _, d := range drafts {
		item, err := models.NewItem(id.InspectionItemID(uuid.New()), t.ID, d, now)
		if err != nil {
			return nil, err
		}
		t.Items = append(t.Items, item)
	}
	t.SortItems()
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, translate(err, "inspection template")
	}
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	list, err := s.store.ListTemplates(ctx)
	if err != nil {
		return nil, translate(err, "inspection template")
	}
	return list, nil
}

// ActiveTemplate returns the most recently created active template.
func (s *Service) ActiveTemplate(ctx context.Context) (*models.Template, error) {
	list, err := s.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		if t.IsActive {
			return t, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "no active inspection template")
}

func (s *Service) UpdateTemplate(ctx context.Context, templateID id.InspectionTemplateID, p models.TemplatePatch) (*models.Template, error) {
	var updated *models.Template
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.FindTemplate(ctx, templateID)
		if err != nil {
			return translate(err, "inspection template")
		}
		next, err := current.Apply(p, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := s.store.UpdateTemplate(ctx, next); err != nil {
			return translate(err, "inspection template")
		}
		next.Items = current.Items
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, templateID id.InspectionTemplateID) error {
	if err := s.store.SoftDeleteTemplate(ctx, templateID, requestcontext.Now(ctx)); err != nil {
		return translate(err, "inspection template")
	}
	return nil
}

func (s *Service) CreateItem(ctx context.Context, templateID id.InspectionTemplateID, d models.ItemDraft) (*models.Item, error) {
	item, err := models.NewItem(id.InspectionItemID(uuid.New()), templateID, d, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.FindTemplate(ctx, templateID); err != nil {
			return translate(err, "inspection template")
		}
		if err := s.store.CreateItem(ctx, item); err != nil {
			return translate(err, "inspection item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, itemID id.InspectionItemID, p models.ItemPatch) (*models.Item, error) {
	var updated *models.Item
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.FindItem(ctx, itemID)
		if err != nil {
			return translate(err, "inspection item")
		}
		next, err := current.Apply(p, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := s.store.UpdateItem(ctx, next); err != nil {
			return translate(err, "inspection item")
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, itemID id.InspectionItemID) error {
	if err := s.store.SoftDeleteItem(ctx, itemID, requestcontext.Now(ctx)); err != nil {
		return translate(err, "inspection item")
	}
	return nil
}

// CreateResult records one answer. A live answer for the same item and event
// is a Conflict; use UpdateResult or SaveResults to change it.
func (s *Service) CreateResult(ctx context.Context, eventID id.ChangeEventID, itemID id.InspectionItemID, value string) (*models.Result, error) {
	var created *models.Result
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.events.Get(ctx, eventID); err != nil {
			return err
		}
		item, err := s.store.FindItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeValidation, "unknown inspection item")
			}
			return translate(err, "inspection item")
		}
		if err := item.CheckValue(value); err != nil {
			return err
		}
		existing, err := s.store.ResultsByEvents(ctx, []id.ChangeEventID{eventID})
		if err != nil {
			return translate(err, "inspection result")
		}
		for _, r := range existing[eventID] {
			if r.ItemID == itemID {
				return dErrors.New(dErrors.CodeConflict, "a result for this item already exists")
			}
		}
		r := models.NewResult(id.InspectionResultID(uuid.New()), eventID, itemID, value, requestcontext.Now(ctx))
		if err := s.store.UpsertResults(ctx, []*models.Result{r}); err != nil {
			return translate(err, "inspection result")
		}
		after, err := s.store.ResultsByEvents(ctx, []id.ChangeEventID{eventID})
		if err != nil {
			return translate(err, "inspection result")
		}
		for _, r := range after[eventID] {
			if r.ItemID == itemID {
				created = r
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddInspectionResults(1)
	return created, nil
}

func (s *Service) GetResult(ctx context.Context, resultID id.InspectionResultID) (*models.Result, error) {
	r, err := s.findResult(ctx, resultID)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// findResult loads a live result whose event the caller may see. A result
// hanging off another company's event reads as missing.
func (s *Service) findResult(ctx context.Context, resultID id.InspectionResultID) (*models.Result, error) {
	r, err := s.store.FindResult(ctx, resultID)
	if err != nil {
		return nil, translate(err, "inspection result")
	}
	if err := s.events.Accessible(ctx, r.EventID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, translate(sentinel.ErrNotFound, "inspection result")
		}
		return nil, err
	}
	return r, nil
}

// ResultsByEvent returns the live answers of an event in item order. Answers
// of soft-deleted events stay readable.
func (s *Service) ResultsByEvent(ctx context.Context, eventID id.ChangeEventID) ([]*models.Result, error) {
	if err := s.events.Accessible(ctx, eventID); err != nil {
		return nil, err
	}
	byEvent, err := s.ResultsByEvents(ctx, []id.ChangeEventID{eventID})
	if err != nil {
		return nil, err
	}
	if list := byEvent[eventID]; list != nil {
		return list, nil
	}
	return []*models.Result{}, nil
}

func (s *Service) ResultsByEvents(ctx context.Context, eventIDs []id.ChangeEventID) (map[id.ChangeEventID][]*models.Result, error) {
	if len(eventIDs) == 0 {
		return map[id.ChangeEventID][]*models.Result{}, nil
	}
	byEvent, err := s.store.ResultsByEvents(ctx, eventIDs)
	if err != nil {
		return nil, translate(err, "inspection result")
	}
	return byEvent, nil
}

func (s *Service) UpdateResult(ctx context.Context, resultID id.InspectionResultID, value string) (*models.Result, error) {
	var updated *models.Result
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.findResult(ctx, resultID)
		if err != nil {
			return err
		}
		if current.Item != nil {
			if err := current.Item.CheckValue(value); err != nil {
				return err
			}
		}
		next := *current
		next.Value = strings.TrimSpace(value)
		next.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.UpdateResult(ctx, &next); err != nil {
			return translate(err, "inspection result")
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteResult(ctx context.Context, resultID id.InspectionResultID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.findResult(ctx, resultID); err != nil {
			return err
		}
		if err := s.store.SoftDeleteResult(ctx, resultID, requestcontext.Now(ctx)); err != nil {
			return translate(err, "inspection result")
		}
		return nil
	})
}

// SaveResults upserts answers by (event, item) in one transaction. The event
// must be live and every item must exist; any failure leaves the stored
// answers untouched. When an item appears twice the last value wins.
func (s *Service) SaveResults(ctx context.Context, eventID id.ChangeEventID, entries []models.Entry) ([]*models.Result, error) {
	if len(entries) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one result is required")
	}
	latest := make(map[id.InspectionItemID]string, len(entries))
	order := make([]id.InspectionItemID, 0, len(entries))
	for _, e := range entries {
		if _, seen := latest[e.ItemID]; !seen {
			order = append(order, e.ItemID)
		}
		latest[e.ItemID] = e.Value
	}

	var saved []*models.Result
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.events.Get(ctx, eventID); err != nil {
			return err
		}
		items, err := s.store.FindItemsByIDs(ctx, order)
		if err != nil {
			return translate(err, "inspection item")
		}
		now := requestcontext.Now(ctx)
		results := make([]*models.Result, 0, len(order))
		for _, itemID := range order {
			item, ok := items[itemID]
			if !ok {
				return dErrors.New(dErrors.CodeValidation, "unknown inspection item "+itemID.String())
			}
			if err := item.CheckValue(latest[itemID]); err != nil {
				return err
			}
			results = append(results, models.NewResult(id.InspectionResultID(uuid.New()), eventID, itemID, latest[itemID], now))
		}
		if err := s.store.UpsertResults(ctx, results); err != nil {
			return translate(err, "inspection result")
		}
		byEvent, err := s.store.ResultsByEvents(ctx, []id.ChangeEventID{eventID})
		if err != nil {
			return translate(err, "inspection result")
		}
		saved = byEvent[eventID]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddInspectionResults(len(order))
	s.emit(ctx, eventID, len(order))
	s.logger.InfoContext(ctx, "inspection results saved",
		"event_id", eventID.String(),
		"count", len(order),
	)
	return saved, nil
}

func (s *Service) emit(ctx context.Context, eventID id.ChangeEventID, n int) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    audit.EventInspectionSaved,
		ActorID:   requestcontext.UserID(ctx),
		ActorRole: requestcontext.Role(ctx),
		Subject:   eventID.String(),
		To:        strconv.Itoa(n),
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.metrics.IncAuditPublishErrors()
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", string(audit.EventInspectionSaved), "error", err)
	}
}

func translate(err error, what string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, what+" already exists")
	case errors.Is(err, sentinel.ErrReferenceMissing):
		return dErrors.New(dErrors.CodeValidation, "referenced record does not exist")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, what+" store failure")
	}
}
