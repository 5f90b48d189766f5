package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"elms/internal/domain/audit"
	"elms/internal/domain/auth"
	"elms/internal/domain/core"
	"elms/internal/domain/leave"
	"elms/internal/domain/notifications"
	"elms/internal/domain/reports"
	"elms/internal/domain/scoring"
	"elms/internal/platform/cache"
	"elms/internal/platform/config"
	"elms/internal/platform/db"
	"elms/internal/platform/email"
	"elms/internal/platform/jobs"
	"elms/internal/platform/logger"
	"elms/internal/platform/metrics"
	audithandler "elms/internal/transport/http/handlers/audit"
	authhandler "elms/internal/transport/http/handlers/auth"
	corehandler "elms/internal/transport/http/handlers/core"
	jobshandler "elms/internal/transport/http/handlers/jobs"
	leavehandler "elms/internal/transport/http/handlers/leave"
	notificationshandler "elms/internal/transport/http/handlers/notifications"
	reportshandler "elms/internal/transport/http/handlers/reports"
	scorehandler "elms/internal/transport/http/handlers/score"
	"elms/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Metrics *metrics.Collector
	Jobs    *jobs.Service
	Leave   *leave.Service
	Router  http.Handler
}

type registrar interface {
	RegisterRoutes(r chi.Router)
}

// New connects to the stores, applies migrations and seed data when enabled
// and wires every service behind the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.Init(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, DB: pool}

	if cfg.RunMigrations {
		if err := app.Migrate(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := app.Seed(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		app.Redis = client
	}

	app.Metrics = metrics.New(cfg.MetricsPrefix)
	app.Router = app.wire(log)
	return app, nil
}

func (a *App) Migrate(ctx context.Context) error {
	applied, err := db.Migrate(ctx, a.DB, db.MigrationSource(a.Config.MigrationsDir))
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	logger.S().Infow("migrations applied", "count", len(applied), "versions", applied)
	return nil
}

func (a *App) Seed(ctx context.Context) error {
	data, err := db.LoadSeedData(a.Config.SeedFile)
	if err != nil {
		return fmt.Errorf("seed data: %w", err)
	}
	summary, err := db.Seed(ctx, a.DB, a.Config, data)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.S().Infow("seed applied",
		"admin_seeded", summary.AdminSeeded,
		"leave_types", summary.LeaveTypes,
		"departments", summary.Departments,
		"holidays", summary.Holidays,
	)
	return nil
}

func (a *App) wire(log *zap.Logger) http.Handler {
	cfg := a.Config
	perms := auth.StaticPermissions{}

	auditSvc := audit.New(a.DB)
	authSvc := auth.NewService(auth.NewStore(a.DB), cfg.JWTSecret, cfg.TokenTTL)
	coreSvc := core.NewService(core.NewStore(a.DB), cfg.DefaultEmployeePassword)

	scoreSvc := scoring.NewService(scoring.NewStore(a.DB), nil)
	scoreSvc.Metrics = a.Metrics
	var idem middleware.IdempotencyStore
	if a.Redis != nil {
		scoreSvc.Cache = cache.NewScoreCache(a.Redis, cfg.ScoreCacheTTL)
		idem = cache.NewIdempotencyStore(a.Redis, cfg.IdempotencyTTL)
	}

	notifySvc := notifications.New(notifications.NewStore(a.DB), email.New(cfg))
	notifySvc.EmailEnabled = cfg.EmailEnabled
	notifySvc.From = cfg.EmailFrom

	leaveSvc := leave.NewService(leave.NewStore(a.DB))
	leaveSvc.Metrics = a.Metrics
	leaveSvc.AddListener(scoreSvc)
	leaveSvc.AddListener(notifySvc)
	a.Leave = leaveSvc

	a.Jobs = jobs.New(a.DB, func(ctx context.Context) (any, error) {
		return leaveSvc.RunRollover(ctx)
	}, cfg.BalanceRolloverInterval)
	a.Jobs.Metrics = a.Metrics

	reportsSvc := reports.NewService(reports.NewStore(a.DB), coreSvc, scoreSvc)

	handlers := []registrar{
		authhandler.NewHandler(authSvc),
		corehandler.NewHandler(coreSvc, perms, auditSvc),
		leavehandler.NewHandler(leaveSvc, perms, auditSvc, idem),
		scorehandler.NewHandler(scoreSvc, perms),
		reportshandler.NewHandler(reportsSvc, perms),
		notificationshandler.NewHandler(notifySvc),
		audithandler.NewHandler(auditSvc, perms),
		jobshandler.NewHandler(a.Jobs, perms, auditSvc),
	}
	return newRouter(cfg, log, a.Metrics, a.ready, handlers)
}

func newRouter(cfg config.Config, log *zap.Logger, collector *metrics.Collector, ready func(context.Context) error, handlers []registrar) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger(log))
	if collector != nil {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			logger.FromContext(r.Context()).Warn("readiness check failed", zap.Error(err))
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && collector != nil {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
		for _, h := range handlers {
			h.RegisterRoutes(r)
		}
	})
	return router
}

func (a *App) ready(ctx context.Context) error {
	if err := a.DB.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *App) Handler() http.Handler {
	return a.Router
}

// Run serves HTTP and the background job worker until ctx is cancelled, then
// drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a.Jobs != nil {
		a.Jobs.Start(ctx)
	}
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.S().Infow("ELMS server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.S().Warnw("redis close failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
	logger.Sync()
}
