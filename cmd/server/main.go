// Command server runs the quality management HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/qmshub/api/internal/app"
	"github.com/qmshub/api/internal/config"
	"github.com/qmshub/api/internal/infra/http/handler"
	"github.com/qmshub/api/internal/infra/http/middleware"
	"github.com/qmshub/api/internal/infra/http/routes"
	"github.com/qmshub/api/internal/infra/postgres"
	"github.com/qmshub/api/internal/infra/redis"
	"github.com/qmshub/api/internal/infra/tracing"
	"github.com/qmshub/api/pkg/logger"
	"github.com/qmshub/api/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		logger.NewDefault().Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info("starting", "app", cfg.App.Name, "env", cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, &cfg.Tracing, cfg.App.Name)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown", "error", err)
		}
	}()

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	var limiter middleware.Limiter
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(&cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		limiter = redis.NewRateLimiter(redisClient, "ratelimit", cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
	} else {
		limiter = middleware.NewLocalLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window.Seconds())
	}

	findingRepo := postgres.NewFindingRepository(db)
	actionRepo := postgres.NewActionRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	tagRepo := postgres.NewTagRepository(db)
	orgRepo := postgres.NewOrganizationRepository(db)

	findingService := app.NewFindingService(findingRepo, tagRepo, historyRepo, db, log)
	actionService := app.NewActionService(actionRepo, findingRepo, historyRepo, db, log)
	orgService := app.NewOrganizationService(orgRepo, log)

	v := validator.New()
	handlers := routes.Handlers{
		Finding:      handler.NewFindingHandler(findingService, v, log),
		Action:       handler.NewActionHandler(actionService, v, log),
		Organization: handler.NewOrganizationHandler(orgService, log),
		Health:       handler.NewHealthHandler(db, healthChecker(redisClient)),
	}

	router := routes.New(cfg, handlers, limiter, log)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      http.MaxBytesHandler(router, cfg.Server.MaxBodySize),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("api listening", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: mux,
		}
		g.Go(func() error {
			log.Info("metrics listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return apiServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// healthChecker avoids handing a typed-nil interface to the health handler
// when Redis is disabled.
func healthChecker(c *redis.Client) handler.HealthChecker {
	if c == nil {
		return nil
	}
	return c
}
