// Command server wires the circulation service: stores (postgres when
// DATABASE_URL is set, in-memory otherwise), the feature services, the HTTP
// surface and the audit feed relay. Business logic lives under internal/.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	audithandler "circ/internal/audit/handler"
	cataloghandler "circ/internal/catalog/handler"
	catalogservice "circ/internal/catalog/service"
	"circ/internal/catalog/store/book"
	jwttoken "circ/internal/jwt_token"
	ledgerhandler "circ/internal/ledger/handler"
	ledgerservice "circ/internal/ledger/service"
	"circ/internal/ledger/store/loan"
	membershiphandler "circ/internal/membership/handler"
	membershipservice "circ/internal/membership/service"
	"circ/internal/membership/store/user"
	"circ/internal/platform/config"
	"circ/internal/platform/health"
	"circ/internal/platform/httpserver"
	"circ/internal/platform/logger"
	"circ/internal/platform/metrics"
	"circ/internal/platform/middleware"
	platformredis "circ/internal/platform/redis"
	"circ/internal/platform/tracing"
	viewscache "circ/internal/views/cache"
	viewshandler "circ/internal/views/handler"
	viewsservice "circ/internal/views/service"
	"circ/pkg/audit"
	"circ/pkg/audit/feed"
)

// Combined store surfaces: one concrete store serves several services.
type bookStore interface {
	catalogservice.BookStore
	ledgerservice.BookCatalog
}

type userStore interface {
	membershipservice.UserStore
	ledgerservice.Members
}

type loanStore interface {
	ledgerservice.LoanStore
	viewsservice.LoanReader
	CountActive(ctx context.Context) (int, error)
}

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log, "circ", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			err = db.PingContext(ctx)
		}
		if err != nil {
			log.Error("failed to connect to postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	var (
		books      bookStore
		users      userStore
		loans      loanStore
		auditStore audit.Store
		pgAudit    *audit.PostgresStore
	)
	if db != nil {
		books = book.NewPostgres(db)
		users = user.NewPostgres(db)
		loans = loan.NewPostgres(db)
		pgAudit = audit.NewPostgres(db)
		auditStore = pgAudit
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		books = book.NewInMemory()
		users = user.NewInMemory()
		loans = loan.NewInMemory()
		auditStore = audit.NewInMemoryStore()
	}

	recorder := audit.NewRecorder(auditStore)

	var (
		catalogSvc    *catalogservice.CatalogService
		membershipSvc *membershipservice.MembershipService
		ledgerSvc     *ledgerservice.LedgerService
	)
	if db != nil {
		coord := newPostgresTx(db)
		catalogSvc = catalogservice.New(books, recorder,
			catalogservice.WithMetrics(m), catalogservice.WithStoreTx(coord))
		membershipSvc = membershipservice.New(users, recorder,
			membershipservice.WithMetrics(m), membershipservice.WithStoreTx(coord))
		ledgerSvc = ledgerservice.New(loans, books, users, recorder,
			ledgerservice.WithMetrics(m), ledgerservice.WithStoreTx(coord))
	} else {
		catalogSvc = catalogservice.New(books, recorder, catalogservice.WithMetrics(m))
		membershipSvc = membershipservice.New(users, recorder, membershipservice.WithMetrics(m))
		ledgerSvc = ledgerservice.New(loans, books, users, recorder, ledgerservice.WithMetrics(m))
	}

	viewSvc := viewsservice.New(books, users, loans,
		viewscache.New(redisClient, config.ViewCacheTTL))

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "circ")

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))

	cataloghandler.New(catalogSvc, jwtService, log).Register(r)
	membershiphandler.New(membershipSvc, log).Register(r)
	ledgerhandler.New(ledgerSvc, log).Register(r)
	viewshandler.New(viewSvc, log).Register(r)
	audithandler.New(recorder, jwtService, log).Register(r)
	health.New(db, redisClient,
		catalogSvc.CountBooks, membershipSvc.CountUsers, loans.CountActive,
		log).Register(r)
	r.Handle("/metrics", promhttp.Handler())

	if db != nil && len(cfg.KafkaBrokers) > 0 {
		publisher, err := feed.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("failed to create audit feed publisher", "error", err.Error())
			os.Exit(1)
		}
		defer publisher.Close()
		worker := feed.NewWorker(db, pgAudit, publisher, log)
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit feed worker stopped", "error", err.Error())
			}
		}()
	}

	srv := httpserver.New(cfg.Addr, otelhttp.NewHandler(r, "circ"))

	log.Info("starting circ",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", db != nil,
		"redis", redisClient != nil,
		"audit_feed", db != nil && len(cfg.KafkaBrokers) > 0,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
}
