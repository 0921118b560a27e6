package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/smartcare/internal/cache"
	"github.com/Freeeeeet/smartcare/internal/classifier"
	"github.com/Freeeeeet/smartcare/internal/config"
	"github.com/Freeeeeet/smartcare/internal/controller"
	"github.com/Freeeeeet/smartcare/internal/controller/handlers"
	"github.com/Freeeeeet/smartcare/internal/controller/middleware"
	"github.com/Freeeeeet/smartcare/internal/controller/telegram"
	"github.com/Freeeeeet/smartcare/internal/metrics"
	"github.com/Freeeeeet/smartcare/internal/repository"
	"github.com/Freeeeeet/smartcare/internal/repository/memory"
	"github.com/Freeeeeet/smartcare/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App собранное приложение: хранилища, сервисы и HTTP сервер
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	pool  *pgxpool.Pool
	redis *redis.Client

	registry *prometheus.Registry

	Reservations *service.ReservationService
	Resources    *service.ResourceService
	Triage       *service.TriageService
	Auth         *service.AuthService
}

// New собирает зависимости по конфигурации
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		resources repository.ResourceStore
		ledger    repository.ReservationLedger
		audits    repository.TriageAuditStore
	)

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := NewPool(ctx, cfg.GetDBDSN(), cfg.DBMaxConns)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		logger.Info("Connected to database", zap.Int32("max_conns", cfg.DBMaxConns))

		resources = repository.NewResourceRepository(pool)
		ledger = repository.NewReservationRepository(pool)
		audits = repository.NewTriageAuditRepository(pool)
	case config.StoreDriverMemory:
		store := memory.NewResourceStore()
		resources = store
		ledger = memory.NewReservationLedger(store)
		audits = memory.NewTriageAudits()
		logger.Warn("Using in-memory stores, data is lost on restart")
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	// Уведомления в Telegram необязательны
	var notifier service.ReservationNotifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		n, err := telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		notifier = n
		logger.Info("Telegram notifications enabled")
	}

	a.Reservations = service.NewReservationService(
		resources,
		ledger,
		notifier,
		metrics.NewReservationMetrics(a.registry),
		logger,
	)
	a.Resources = service.NewResourceService(resources, logger)

	var primary service.ZeroShotClassifier
	if cfg.HFAPIURL != "" {
		client, err := classifier.NewZeroShotClient(classifier.Config{
			URL:     cfg.HFAPIURL,
			APIKey:  cfg.HFAPIKey,
			Timeout: cfg.TriageTimeout,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		primary = client
		if cfg.HFAPIKey == "" {
			logger.Warn("HF_API_KEY not set, triage will use keyword fallback")
		}
	}

	var triageCache service.TriageCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis not available, triage cache disabled", zap.Error(err))
			_ = client.Close()
		} else {
			a.redis = client
			triageCache = cache.NewTriageCache(client, cfg.TriageCacheTTL)
			logger.Info("Triage cache enabled", zap.Duration("ttl", cfg.TriageCacheTTL))
		}
	}

	a.Triage = service.NewTriageService(
		primary,
		triageCache,
		audits,
		metrics.NewTriageMetrics(a.registry),
		cfg.TriageTimeout,
		logger,
	)
	a.Auth = service.NewAuthService(cfg.AdminPasswordHash, cfg.AdminJWTSecret, cfg.AdminTokenTTL, logger)

	return a, nil
}

// Migrate применяет миграции; для хранилища в памяти ничего не делает
func (a *App) Migrate(ctx context.Context) error {
	if a.pool == nil {
		a.logger.Info("Migrations skipped for in-memory store")
		return nil
	}

	migrator, err := NewMigrator(a.pool, a.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Run(ctx)
}

// Handler HTTP обработчик со всеми маршрутами
func (a *App) Handler() http.Handler {
	var adminAuth middleware.TokenParser
	if a.cfg.AdminEnabled() {
		adminAuth = a.Auth
	} else {
		a.logger.Warn("Admin routes disabled: ADMIN_PASSWORD_HASH or ADMIN_JWT_SECRET not set")
	}

	return controller.NewRouter(controller.RouterConfig{
		Handlers:       handlers.NewHandlers(a.Reservations, a.Resources, a.Triage, a.Auth, a.logger),
		Logger:         a.logger,
		AdminAuth:      adminAuth,
		MetricsHandler: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		CORSOrigins:    a.cfg.CORSOrigins,
	})
}

// Run запускает HTTP сервер и сверку до отмены ctx
func (a *App) Run(ctx context.Context) error {
	scheduler := NewScheduler(a.Reservations, a.cfg.SweepInterval, service.ReconcileOptions{
		Repair: a.cfg.SweepRepair,
		Grace:  a.cfg.SweepGrace,
	}, a.logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", a.cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	a.logger.Info("HTTP server stopped")
	return nil
}

// Close освобождает соединения
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
