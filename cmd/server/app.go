package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	authhandler "changepoint/internal/auth/handler"
	authservice "changepoint/internal/auth/service"
	"changepoint/internal/auth/store/revocation"
	userstore "changepoint/internal/auth/store/user"
	changeeventhandler "changepoint/internal/changeevent/handler"
	changeeventservice "changepoint/internal/changeevent/service"
	changeeventstore "changepoint/internal/changeevent/store"
	companyhandler "changepoint/internal/company/handler"
	companyservice "changepoint/internal/company/service"
	companystore "changepoint/internal/company/store"
	inspectionhandler "changepoint/internal/inspection/handler"
	inspectionservice "changepoint/internal/inspection/service"
	inspectionstore "changepoint/internal/inspection/store"
	jwttoken "changepoint/internal/jwt_token"
	"changepoint/internal/platform/config"
	"changepoint/internal/platform/kafka"
	"changepoint/internal/platform/metrics"
	"changepoint/internal/platform/postgres"
	"changepoint/internal/platform/redis"
	policyhandler "changepoint/internal/policy/handler"
	policyservice "changepoint/internal/policy/service"
	policystore "changepoint/internal/policy/store"
	reporthandler "changepoint/internal/report/handler"
	reportservice "changepoint/internal/report/service"
	taxonomyhandler "changepoint/internal/taxonomy/handler"
	taxonomyservice "changepoint/internal/taxonomy/service"
	taxonomystore "changepoint/internal/taxonomy/store"
	httptransport "changepoint/internal/transport/http"
	"changepoint/pkg/platform/audit"
	"changepoint/pkg/platform/audit/publisher"
	kafkastore "changepoint/pkg/platform/audit/store/kafka"
	"changepoint/pkg/platform/audit/store/logsink"
	"changepoint/pkg/platform/tx"
)

const auditBufferSize = 1024

// stores groups one implementation per aggregate, all sharing the same pool.
type stores struct {
	users       authservice.UserStore
	userLookup  changeeventservice.UserLookup
	companies   companyservice.CompanyStore
	taxonomy    taxonomyservice.Store
	policies    policyservice.Store
	events      changeeventservice.Store
	inspections inspectionservice.Store
}

func newStores(db *sql.DB) stores {
	if db == nil {
		users := userstore.NewInMemoryUserStore()
		return stores{
			users:       users,
			userLookup:  users,
			companies:   companystore.NewInMemoryCompanyStore(),
			taxonomy:    taxonomystore.NewInMemoryTaxonomyStore(),
			policies:    policystore.NewInMemoryPolicyStore(),
			events:      changeeventstore.NewInMemoryChangeEventStore(),
			inspections: inspectionstore.NewInMemoryInspectionStore(),
		}
	}
	users := userstore.NewPostgresUserStore(db)
	return stores{
		users:       users,
		userLookup:  users,
		companies:   companystore.NewPostgresCompanyStore(db),
		taxonomy:    taxonomystore.NewPostgresTaxonomyStore(db),
		policies:    policystore.NewPostgresPolicyStore(db),
		events:      changeeventstore.NewPostgresChangeEventStore(db),
		inspections: inspectionstore.NewPostgresInspectionStore(db),
	}
}

// services are the wired domain services shared by the HTTP router and the
// seed command.
type services struct {
	auth        *authservice.Service
	companies   *companyservice.Service
	taxonomy    *taxonomyservice.Service
	policies    *policyservice.Service
	events      *changeeventservice.Service
	inspections *inspectionservice.Service
	reports     *reportservice.Service
	jwt         *jwttoken.JWTService
}

// app owns every long-lived resource. close releases them in reverse order
// of acquisition.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	db       *sql.DB
	redis    *redis.Client
	producer *kafka.Producer
	auditor  *publisher.Publisher
	services services
	closers  []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, func() { _ = db.Close() })
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db, logger); err != nil {
				a.close()
				return nil, err
			}
		}
	} else {
		logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		a.close()
		return nil, err
	}
	var trl authservice.TokenRevocationList = revocation.NewInMemoryTRL()
	if rc != nil {
		a.redis = rc
		a.closers = append(a.closers, func() { _ = rc.Close() })
		trl = revocation.NewRedisTRL(rc.Client)
	}

	var sink audit.Store = logsink.New(logger)
	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		a.close()
		return nil, err
	}
	if producer != nil {
		a.producer = producer
		a.closers = append(a.closers, producer.Close)
		sink = kafkastore.New(producer)
	}
	a.auditor = publisher.NewPublisher(sink,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(logger),
		publisher.WithErrorHook(m.IncAuditPublishErrors),
	)
	a.closers = append(a.closers, a.auditor.Close)

	loc, err := cfg.Report.Location()
	if err != nil {
		a.close()
		return nil, err
	}

	st := newStores(a.db)
	runner := tx.NewRunner(a.db)
	jwt := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)

	companies := companyservice.New(st.companies)
	taxonomy := taxonomyservice.New(st.taxonomy)
	policies := policyservice.New(st.policies, runner,
		policyservice.WithAuditor(a.auditor),
		policyservice.WithMetrics(m),
		policyservice.WithLogger(logger),
	)
	auth := authservice.New(st.users, trl, jwt, companies,
		authservice.WithAuditor(a.auditor),
		authservice.WithMetrics(m),
		authservice.WithLogger(logger),
		authservice.WithTokenTTLs(cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL),
	)
	events := changeeventservice.New(st.events, policies, taxonomy, companies, st.userLookup, runner,
		changeeventservice.WithAuditor(a.auditor),
		changeeventservice.WithMetrics(m),
		changeeventservice.WithLogger(logger),
		changeeventservice.WithLocation(loc),
	)
	inspections := inspectionservice.New(st.inspections, events, runner,
		inspectionservice.WithAuditor(a.auditor),
		inspectionservice.WithMetrics(m),
		inspectionservice.WithLogger(logger),
	)
	reports := reportservice.New(events, taxonomy, companies, st.userLookup, inspections,
		reportservice.WithMetrics(m),
		reportservice.WithLogger(logger),
	)

	a.services = services{
		auth:        auth,
		companies:   companies,
		taxonomy:    taxonomy,
		policies:    policies,
		events:      events,
		inspections: inspections,
		reports:     reports,
		jwt:         jwt,
	}
	return a, nil
}

// handler mounts every module on the shared router.
func (a *app) handler() http.Handler {
	svc := a.services
	checks := map[string]httptransport.HealthCheck{}
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.producer != nil {
		checks["kafka"] = a.producer.Health
	}

	return httptransport.NewRouter(httptransport.Config{
		Logger:         a.logger,
		Validator:      jwttoken.NewJWTServiceAdapter(svc.jwt),
		Revocation:     svc.auth,
		Gatherer:       a.registry,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		HealthChecks:   checks,
	},
		authhandler.New(svc.auth, a.logger),
		companyhandler.New(svc.companies, a.logger),
		taxonomyhandler.New(svc.taxonomy, a.logger),
		policyhandler.New(svc.policies, a.logger),
		changeeventhandler.New(svc.events, a.logger),
		inspectionhandler.New(svc.inspections, a.logger),
		reporthandler.New(svc.reports, a.logger),
	)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
