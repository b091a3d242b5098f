package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/cache"
	"github.com/dharmasatrya/tripplanner/internal/config"
	"github.com/dharmasatrya/tripplanner/internal/handler"
	"github.com/dharmasatrya/tripplanner/internal/logger"
	"github.com/dharmasatrya/tripplanner/internal/ratelimit"
	"github.com/dharmasatrya/tripplanner/internal/session"
	"github.com/dharmasatrya/tripplanner/internal/upstream"
)

const sweepInterval = time.Minute

func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			provideLogger,
			provideRateLimiter,
			provideSuggestionCache,
			provideServices,
			provideSessionStore,
			handler.NewSessionHandler,
			provideRouter,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func provideLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogDevelopment)
}

func provideRateLimiter(cfg config.Config) *ratelimit.ServiceLimiter {
	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})
	limiter.SetLimit(upstream.ServiceSuggestions, cfg.RateLimitRPS*2, cfg.RateLimitBurst*2)
	limiter.SetLimit(upstream.ServiceOptimizer, cfg.RateLimitRPS/2, max(1, cfg.RateLimitBurst/2))
	return limiter
}

func provideSuggestionCache(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (cache.SuggestionCache, error) {
	if !cfg.CacheEnabled {
		log.Info("suggestion cache disabled")
		return cache.NewNoOpCache(), nil
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host: cfg.RedisHost,
		Port: cfg.RedisPort,
		TTL:  cfg.RedisTTL,
	})
	if err != nil {
		return nil, err
	}
	log.Info("redis suggestion cache enabled",
		zap.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
		zap.Duration("ttl", cfg.RedisTTL),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return redisCache.Close()
		},
	})
	return redisCache, nil
}

func provideServices(cfg config.Config, limiter *ratelimit.ServiceLimiter, c cache.SuggestionCache, log *zap.Logger) session.Services {
	suggestions := upstream.NewSuggestionClient(upstream.Config{
		BaseURL: cfg.SuggestionURL,
		Timeout: cfg.UpstreamTimeout,
		Limiter: limiter,
		Logger:  log,
	})

	retry := upstream.DefaultRetryConfig()
	retry.MaxRetries = cfg.OptimizerMaxRetries
	optimizer := upstream.NewOptimizerClient(upstream.Config{
		BaseURL: cfg.OptimizerURL,
		Timeout: cfg.OptimizerTimeout,
		Limiter: limiter,
		Logger:  log,
	}, retry)

	links := upstream.NewLinkClient(upstream.Config{
		BaseURL: cfg.BookingURL,
		Timeout: cfg.UpstreamTimeout,
		Limiter: limiter,
		Logger:  log,
	})

	return session.Services{
		Suggestions: upstream.NewCachedSuggestions(suggestions, c, log),
		Optimizer:   optimizer,
		Links:       links,
	}
}

func provideSessionStore(lc fx.Lifecycle, cfg config.Config, svc session.Services, log *zap.Logger) *session.Store {
	store := session.NewStore(func() *session.Controller {
		return session.NewController(svc, session.Config{
			QuietPeriod: cfg.SuggestDebounce,
			Logger:      log,
		})
	}, cfg.SessionIdleTTL, log)

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go store.Run(ctx, sweepInterval)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			store.Close()
			return nil
		},
	})
	return store
}

func provideRouter(sessions *handler.SessionHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	handler.RegisterRoutes(e, sessions)
	return e
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("starting trip planner server", zap.String("port", cfg.Port))
				if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return e.Shutdown(ctx)
		},
	})
}
