package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/cartforge/cartforge/internal/access"
	cfhttp "github.com/cartforge/cartforge/internal/adapter/http"
	cfnats "github.com/cartforge/cartforge/internal/adapter/nats"
	"github.com/cartforge/cartforge/internal/adapter/otel"
	"github.com/cartforge/cartforge/internal/adapter/postgres"
	"github.com/cartforge/cartforge/internal/adapter/redis"
	"github.com/cartforge/cartforge/internal/adapter/ristretto"
	"github.com/cartforge/cartforge/internal/adapter/tiered"
	"github.com/cartforge/cartforge/internal/config"
	"github.com/cartforge/cartforge/internal/logger"
	"github.com/cartforge/cartforge/internal/middleware"
	"github.com/cartforge/cartforge/internal/port/cache"
	"github.com/cartforge/cartforge/internal/port/messagequeue"
	"github.com/cartforge/cartforge/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"guest_carts", cfg.Carts.AllowGuest,
		"require_tenant", cfg.Carts.RequireTenant,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---

	otelShutdown, err := otel.Init(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	l1, err := ristretto.New(cfg.Cache.L1MaxBytes)
	if err != nil {
		return fmt.Errorf("ristretto: %w", err)
	}
	defer l1.Close()

	var tenantCache cache.Cache = l1
	if cfg.Redis.Enabled {
		l2, err := redis.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer func() { _ = l2.Close() }()
		tenantCache = tiered.New(l1, l2, cfg.Cache.L1TTL)
		slog.Info("redis connected, tiered tenant cache active")
	}

	var queue messagequeue.Queue
	var idempotency func(http.Handler) http.Handler
	if cfg.NATS.Enabled {
		natsQueue, err := cfnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = natsQueue.Close() }()
		queue = natsQueue

		kv, err := natsQueue.KeyValue(ctx, cfg.NATS.IdempotencyBucket, cfg.NATS.IdempotencyTTL)
		if err != nil {
			return fmt.Errorf("nats kv: %w", err)
		}
		idempotency = middleware.Idempotency(kv)
		slog.Info("nats connected", "idempotency_bucket", cfg.NATS.IdempotencyBucket)
	}

	// --- Services ---

	store := postgres.NewStore(pool)

	accessCfg := access.Config{
		SuperAdminRoles:   cfg.Access.SuperAdminRoles,
		TenantAdminRoles:  cfg.Access.TenantAdminRoles,
		Policy:            access.Policy(cfg.Access.Policy),
		IncludeUntenanted: cfg.Access.IncludeUntenanted,
	}
	globalAdminRoles := cfg.Access.GlobalAdminRoles
	isAdmin := func(_ context.Context, rc access.RequestContext) (bool, error) {
		if rc.User == nil {
			return false, nil
		}
		return access.IsSuperAdmin(rc.User.Roles, globalAdminRoles), nil
	}
	gates := access.NewCartGates(accessCfg, isAdmin, cfg.Carts.AllowGuest)

	tenantSvc := service.NewTenantService(store, tenantCache, cfg.Cache.TenantTTL)
	pricingSvc := service.NewPricingService(store)
	authSvc := service.NewAuthService(store, cfg.Auth)
	cartSvc := service.NewCartService(store, gates, pricingSvc, tenantSvc, queue, nil, cfg.Carts)

	var sweeper *service.Sweeper
	if cfg.Sweep.Enabled {
		sweeper = service.NewSweeper(store, queue, log, cfg.Carts, cfg.Sweep)
		if err := sweeper.Start(ctx); err != nil {
			return fmt.Errorf("sweeper: %w", err)
		}
		defer sweeper.Stop()
	}

	// --- HTTP ---

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	handlers := cfhttp.NewHandlers(cartSvc, authSvc, tenantSvc, metrics)

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(time.Minute, 10*time.Minute)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(cfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(cfhttp.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(cfhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(limiter.Handler)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(middleware.Signals)
	r.Use(middleware.Auth(authSvc))

	cfhttp.MountRoutes(r, handlers, cfg.Access.SuperAdminRoles, idempotency)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
