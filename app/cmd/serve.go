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

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"devkit/app/config"
	"devkit/app/usecase"
	"devkit/internal/infrastructure/llm"
	"devkit/internal/infrastructure/metrics"
	"devkit/internal/infrastructure/ratelimit"
	"devkit/internal/infrastructure/transport"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and websocket workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(os.Stdout)
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}
}

func buildToolService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*usecase.ToolService, error) {
	generator, err := llm.NewGenerator(ctx, llm.Options{
		Provider:   cfg.LLM.Provider,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		AuthHeader: cfg.LLM.AuthHeader,
		MaxTokens:  cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("init llm generator: %w", err)
	}
	logger.Info("llm generator ready", "provider", generator.Provider(), "model", generator.Model())

	completer := llm.NewCompletionClient(generator, cfg.LLM.Timeout, logger)
	return usecase.NewToolService(completer, logger), nil
}

func newLimiter(cfg config.RateLimitConfig, logger *slog.Logger) (ratelimit.Limiter, error) {
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter(), nil
	}
	limiter, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("using redis rate limiter", "addr", cfg.RedisAddr)
	return limiter, nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	tools, err := buildToolService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	limiter, err := newLimiter(cfg.RateLimit, logger)
	if err != nil {
		return err
	}
	defer limiter.Close()

	handler := transport.NewToolkitHandler(
		tools,
		limiter,
		ratelimit.Policy{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window},
		logger,
	)

	// Router and server
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)(corsHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      recovered,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	servers := []*http.Server{srv}
	if cfg.Metrics.Addr != "" {
		servers = append(servers, metrics.NewMetricsServer(cfg.Metrics.Addr))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logger.Info("starting HTTP server", "addr", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", s.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", s.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "err", err)
		return err
	}
	logger.Info("service stopped")
	return nil
}
