package app

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

	"learnhub-web/internal/api"
	"learnhub-web/internal/cache"
	"learnhub-web/internal/config"
	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/gateway"
	"learnhub-web/internal/handler"
	"learnhub-web/internal/metrics"
	"learnhub-web/internal/router"
	"learnhub-web/internal/session"
	"learnhub-web/internal/storage"
)

type App struct {
	server *http.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := storage.New(cfg.SessionFile, cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	sessions := session.New(store)
	if err := sessions.Hydrate(); err != nil {
		return nil, fmt.Errorf("failed to hydrate session: %w", err)
	}
	if sessions.IsAuthenticated() {
		slog.Info("session restored from storage")
	}

	collector := metrics.NewCollector()

	client, err := api.New(cfg.APIBaseURL, cfg.APITimeout, sessions, collector)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API client: %w", err)
	}

	resultCache := cache.New(cfg.CacheRetention, collector)
	registry := endpoint.NewRegistry(client, resultCache, sessions)
	builder := gateway.NewBuilder(cfg.RazorpayKeyID, cfg.CheckoutName)

	appRouter := router.New(cfg, sessions, router.Handlers{
		Auth:    handler.NewAuthHandler(registry, cfg.OTPCooldown),
		Course:  handler.NewCourseHandler(registry),
		Payment: handler.NewPaymentHandler(registry, builder),
		User:    handler.NewUserHandler(registry, cfg.AvatarMaxDim),
		Contact: handler.NewContactHandler(registry),
		SEO:     handler.NewSEOHandler(cfg.CanonicalHost),
		Metrics: collector.Handler(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
