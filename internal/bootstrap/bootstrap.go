package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/drivesight/drivesight/internal/config"
	"github.com/drivesight/drivesight/internal/core/ports"
	"github.com/drivesight/drivesight/internal/core/usecase"
	"github.com/drivesight/drivesight/internal/infrastructure/cache/redis"
	"github.com/drivesight/drivesight/internal/infrastructure/llm/gemini"
	"github.com/drivesight/drivesight/internal/infrastructure/queue/nats"
	"github.com/drivesight/drivesight/internal/infrastructure/repository/postgres"
	"github.com/drivesight/drivesight/internal/infrastructure/resilience"
	"github.com/drivesight/drivesight/internal/observability/metrics"
)

// App wires the identification pipeline with whatever infrastructure the
// configuration enables. Postgres, NATS and Redis are optional; with none of
// them the binary is a pure identification proxy.
type App struct {
	Config config.Config

	Identifier ports.SignIdentifier
	Signs      ports.SignRepository
	Analytics  ports.AnalyticsStore
	Cache      ports.ResultCache
	EventBus   *nats.EventBus
	Metrics    *metrics.HTTPServerMetrics

	IdentifyLimiter *rate.Limiter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{
		Config:  cfg,
		Metrics: metrics.NewHTTPServerMetrics("api"),
	}

	guard := resilience.NewGuard(resilience.Config{
		Enabled: cfg.BreakerEnabled,
	})

	primary := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, gemini.Options{
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
		Guard:   guard,
	})
	var fallback ports.VisionModel
	if cfg.GeminiFallbackModel != "" && cfg.GeminiFallbackModel != cfg.GeminiModel {
		fallback = gemini.New(cfg.GeminiAPIKey, cfg.GeminiFallbackModel, gemini.Options{
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.GeminiTimeout,
			Guard:   guard,
		})
	}

	closers := []func(){}

	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })

		signs := postgres.NewSignRepository(db)
		if err := signs.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure signs schema: %w", err)
		}
		analytics := postgres.NewAnalyticsRepository(db)
		if err := analytics.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure analytics schema: %w", err)
		}
		app.Signs = signs
		app.Analytics = analytics
	} else {
		slog.Info("postgres disabled, sign catalog endpoints serve placeholders")
	}

	if cfg.NATSURL != "" {
		bus, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, fmt.Errorf("init event bus: %w", err)
		}
		closers = append(closers, bus.Close)
		app.EventBus = bus
	} else {
		slog.Info("nats disabled, identification events are not published")
	}

	if cfg.RedisAddr != "" {
		cache := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		closers = append(closers, func() { _ = cache.Close() })
		app.Cache = cache
	} else {
		slog.Info("redis disabled, identification results are not cached")
	}

	identifyUC := usecase.NewIdentifySignUseCase(primary, fallback, app.Metrics)
	if app.EventBus != nil {
		identifyUC = identifyUC.WithPublisher(app.EventBus)
	}
	app.Identifier = identifyUC

	if cfg.IdentifyRatePerSecond > 0 {
		app.IdentifyLimiter = rate.NewLimiter(rate.Limit(cfg.IdentifyRatePerSecond), cfg.IdentifyRateBurst)
	}

	app.closeFn = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
