// Package service builds the monthly change point workbook from approved
// events and their reference data.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	authmodels "changepoint/internal/auth/models"
	changeeventmodels "changepoint/internal/changeevent/models"
	companymodels "changepoint/internal/company/models"
	inspectionmodels "changepoint/internal/inspection/models"
	"changepoint/internal/platform/metrics"
	taxonomymodels "changepoint/internal/taxonomy/models"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

var tracer = otel.Tracer("changepoint/report")

// EventSource lists the approved events created in a calendar month.
type EventSource interface {
	Monthly(ctx context.Context, year, month int) ([]*changeeventmodels.ChangeEvent, error)
}

type TaxonomySource interface {
	ResolveItems(ctx context.Context, ids []id.TaxonomyItemID) (map[id.TaxonomyItemID]*taxonomymodels.ItemDetail, error)
	Catalog(ctx context.Context) ([]*taxonomymodels.ItemDetail, error)
}

type CompanySource interface {
	List(ctx context.Context) ([]*companymodels.Company, error)
}

type UserSource interface {
	FindByIDs(ctx context.Context, ids []id.UserID) (map[id.UserID]*authmodels.User, error)
}

type InspectionSource interface {
	ResultsByEvents(ctx context.Context, eventIDs []id.ChangeEventID) (map[id.ChangeEventID][]*inspectionmodels.Result, error)
}

type Service struct {
	events      EventSource
	taxonomy    TaxonomySource
	companies   CompanySource
	users       UserSource
	inspections InspectionSource
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(events EventSource, taxonomy TaxonomySource, companies CompanySource, users UserSource, inspections InspectionSource, opts ...Option) *Service {
	s := &Service{
		events:      events,
		taxonomy:    taxonomy,
		companies:   companies,
		users:       users,
		inspections: inspections,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dataset is everything one workbook needs, loaded before any sheet is written.
type dataset struct {
	events    []*changeeventmodels.ChangeEvent
	items     map[id.TaxonomyItemID]*taxonomymodels.ItemDetail
	catalog   []*taxonomymodels.ItemDetail
	companies map[id.CompanyID]*companymodels.Company
	users     map[id.UserID]*authmodels.User
	results   map[id.ChangeEventID][]*inspectionmodels.Result
}

// MonthlyWorkbook renders the approved events of year/month as an .xlsx file.
func (s *Service) MonthlyWorkbook(ctx context.Context, year, month int) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "report.MonthlyWorkbook", trace.WithAttributes(
		attribute.Int("report.year", year),
		attribute.Int("report.month", month),
	))
	defer span.End()
	start := time.Now()

	data, err := s.gather(ctx, year, month)
	if err != nil {
		return nil, fail(span, err)
	}
	out, err := render(data)
	if err != nil {
		return nil, fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render workbook"))
	}

	elapsed := time.Since(start)
	s.metrics.ObserveReportDuration(elapsed.Seconds())
	span.SetAttributes(attribute.Int("report.events", len(data.events)))
	s.logger.InfoContext(ctx, "monthly workbook generated",
		"year", year,
		"month", month,
		"events", len(data.events),
		"bytes", len(out),
		"duration_ms", elapsed.Milliseconds(),
	)
	return out, nil
}

// gather loads the month's events first, then fans out to every reference
// source. The first failure cancels the rest.
func (s *Service) gather(ctx context.Context, year, month int) (*dataset, error) {
	events, err := s.events.Monthly(ctx, year, month)
	if err != nil {
		return nil, err
	}
	data := &dataset{events: events}

	var (
		itemIDs  []id.TaxonomyItemID
		userIDs  []id.UserID
		eventIDs = make([]id.ChangeEventID, 0, len(events))
	)
	seenUsers := make(map[id.UserID]struct{})
	for _, e := range events {
		eventIDs = append(eventIDs, e.ID)
		itemIDs = append(itemIDs, changeeventmodels.ItemIDs(e.Tags)...)
		for _, u := range e.UserIDs() {
			if _, ok := seenUsers[u]; !ok {
				seenUsers[u] = struct{}{}
				userIDs = append(userIDs, u)
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := s.taxonomy.ResolveItems(ctx, itemIDs)
		if err != nil {
			return err
		}
		data.items = items
		return nil
	})

	g.Go(func() error {
		catalog, err := s.taxonomy.Catalog(ctx)
		if err != nil {
			return err
		}
		data.catalog = catalog
		return nil
	})

	g.Go(func() error {
		companies, err := s.companies.List(ctx)
		if err != nil {
			return err
		}
		data.companies = make(map[id.CompanyID]*companymodels.Company, len(companies))
		for _, c := range companies {
			data.companies[c.ID] = c
		}
		return nil
	})

	g.Go(func() error {
		users, err := s.users.FindByIDs(ctx, userIDs)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load users")
		}
		data.users = users
		return nil
	})

	g.Go(func() error {
		results, err := s.inspections.ResultsByEvents(ctx, eventIDs)
		if err != nil {
			return err
		}
		data.results = results
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}
