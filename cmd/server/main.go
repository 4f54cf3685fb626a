package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"wishlist/internal/audit"
	catalogstore "wishlist/internal/catalog/store"
	httpapi "wishlist/internal/http"
	identitymetrics "wishlist/internal/identity/metrics"
	identitysvc "wishlist/internal/identity/service"
	identitystore "wishlist/internal/identity/store"
	jwttoken "wishlist/internal/jwt_token"
	ledgerhandler "wishlist/internal/ledger/handler"
	"wishlist/internal/ledger/lock"
	ledgermetrics "wishlist/internal/ledger/metrics"
	ledgersvc "wishlist/internal/ledger/service"
	ledgerstore "wishlist/internal/ledger/store"
	notifymetrics "wishlist/internal/notify/metrics"
	notifysvc "wishlist/internal/notify/service"
	"wishlist/internal/platform/config"
	"wishlist/internal/platform/httpserver"
	"wishlist/internal/platform/logger"
	"wishlist/internal/platform/metrics"
	"wishlist/internal/platform/otel"
	"wishlist/internal/platform/postgres"
	"wishlist/internal/platform/redis"
	"wishlist/internal/ratelimit/store/bucket"
	"wishlist/internal/realtime"
	realtimehandler "wishlist/internal/realtime/handler"
	realtimemetrics "wishlist/internal/realtime/metrics"
)

const (
	shutdownTimeout = 10 * time.Second
	auditInboxSize  = 1024
)

// catalogReader is everything the running modules read from the social graph.
type catalogReader interface {
	ledgersvc.WishlistReader
	identitysvc.UserReader
}

type backends struct {
	catalog  catalogReader
	sessions identitysvc.SessionStore
	ledger   ledgersvc.Store
	itemTx   ledgersvc.ItemTx
	db       *sql.DB
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Format, cfg.Log.Level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log, cfg.Otel, cfg.Environment)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	health := map[string]httpapi.HealthCheck{}

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	if b.db != nil {
		defer b.db.Close()
		health["postgres"] = b.db.PingContext
	}

	limiter, closeLimiter, err := openLimiter(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer closeLimiter()

	resolver := identitysvc.New(b.catalog, b.sessions,
		identitysvc.WithLogger(log),
		identitysvc.WithMetrics(identitymetrics.New(reg)),
		identitysvc.WithMintLimit(limiter, cfg.Guest.MintLimit, cfg.Guest.MintWindow),
		identitysvc.WithSessionTTL(cfg.Guest.SessionTTL),
	)

	auditStore, closeAudit := openAuditStore(cfg, log)
	defer closeAudit()
	auditInbox := make(chan audit.Event, auditInboxSize)
	auditor := audit.NewPublisher(auditStore, audit.WithInbox(auditInbox), audit.WithLogger(log))

	realtimeMetrics := realtimemetrics.New(reg)
	registry := realtime.NewRegistry(realtime.WithMetrics(realtimeMetrics))
	notifyMetrics := notifymetrics.New(reg)
	notifier := notifysvc.New(b.catalog, registry,
		notifysvc.WithLogger(log),
		notifysvc.WithMetrics(notifyMetrics),
		notifysvc.WithConcurrency(cfg.Realtime.NotifyConcurrency),
	)
	dispatcher := notifysvc.NewDispatcher(notifier,
		notifysvc.WithQueueSize(cfg.Realtime.NotifyQueue),
		notifysvc.WithWorkers(cfg.Realtime.NotifyWorkers),
		notifysvc.WithDispatchLogger(log),
		notifysvc.WithDispatchMetrics(notifyMetrics),
	)

	ledger, err := ledgersvc.New(b.ledger, b.itemTx, b.catalog, resolver,
		ledgersvc.WithLogger(log),
		ledgersvc.WithMetrics(ledgermetrics.New(reg)),
		ledgersvc.WithNotifier(dispatcher),
		ledgersvc.WithAuditor(auditor),
	)
	if err != nil {
		return fmt.Errorf("build ledger service: %w", err)
	}

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	router := httpapi.NewRouter(httpapi.Config{
		Logger:    log,
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Health:    health,
		Modules: []httpapi.Registrar{
			ledgerhandler.New(ledger, log, ledgerhandler.WithGuestCookie(cfg.Guest.SessionTTL, cfg.Guest.CookieSecure)),
			realtimehandler.New(registry, b.catalog, log,
				realtimehandler.WithBuffer(cfg.Realtime.StreamBuffer),
				realtimehandler.WithHeartbeat(cfg.Realtime.Heartbeat),
				realtimehandler.WithMetrics(realtimeMetrics),
			),
		},
	})
	srv := httpserver.New(cfg.Addr, router)
	// Event streams never go idle; closing them lets Shutdown finish.
	srv.RegisterOnShutdown(registry.CloseAll)

	// Workers stop after the HTTP server so queued notifications drain once
	// no new reservations can arrive.
	workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	var workers errgroup.Group
	workers.Go(func() error { return dispatcher.Run(workerCtx) })
	workers.Go(func() error {
		if err := audit.NewWorker(auditStore, auditInbox, log).Run(workerCtx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting wishlist server", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			log.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	cancelWorkers()
	return workers.Wait()
}

// openBackends selects Postgres when DATABASE_URL is set and in-process
// stores otherwise.
func openBackends(ctx context.Context, cfg config.Server, log *slog.Logger) (*backends, error) {
	if cfg.DatabaseURL == "" {
		catalog := catalogstore.NewInMemory()
		sessions := identitystore.NewInMemory()
		items := ledgerstore.NewInMemory(sessions)
		if cfg.SeedDemo {
			seedMemory(catalog, items)
			log.Info("seeded demo data", "store", "memory")
		}
		return &backends{
			catalog:  catalog,
			sessions: sessions,
			ledger:   items,
			itemTx:   ledgersvc.NewInMemoryItemTx(items, lock.NewKeyed(), cfg.Ledger.LockWait, cfg.Ledger.TxTimeout),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if cfg.SeedDemo {
		if err := seedPostgres(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("seeded demo data", "store", "postgres")
	}
	sessions := identitystore.NewPostgres(db)
	return &backends{
		catalog:  catalogstore.NewPostgres(db),
		sessions: sessions,
		ledger:   ledgerstore.NewPostgres(db, sessions),
		itemTx:   ledgerstore.NewPostgresItemTx(db, cfg.Ledger.LockWait, cfg.Ledger.TxTimeout),
		db:       db,
	}, nil
}

// openLimiter backs the guest mint limit with Redis when configured so the
// window holds across replicas.
func openLimiter(ctx context.Context, cfg config.Server, log *slog.Logger, health map[string]httpapi.HealthCheck) (identitysvc.Limiter, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return bucket.NewInMemory(), func() {}, nil
	}
	health["redis"] = client.Health
	log.Info("guest mint limit backed by redis")
	return bucket.NewRedis(client.Client), func() { _ = client.Close() }, nil
}

// openAuditStore publishes to Kafka when brokers are configured and otherwise
// keeps a bounded window of recent events in memory.
func openAuditStore(cfg config.Server, log *slog.Logger) (audit.Store, func()) {
	mem := audit.NewInMemoryStore(audit.WithCapacity(cfg.Audit.MemoryCapacity))
	if len(cfg.Audit.KafkaBrokers) == 0 {
		return mem, func() {}
	}
	kafka, err := audit.NewKafkaStore(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic, log)
	if err != nil {
		log.Warn("kafka audit sink disabled, keeping events in memory", "error", err)
		return mem, func() {}
	}
	return kafka, kafka.Close
}
