package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/orderflow/orderflow/internal/api"
	"github.com/orderflow/orderflow/internal/api/middleware"
	"github.com/orderflow/orderflow/internal/app"
	"github.com/orderflow/orderflow/internal/core/service"
	"github.com/orderflow/orderflow/internal/infrastructure/config"
	"github.com/orderflow/orderflow/pkg/logger"

	_ "github.com/orderflow/orderflow/docs"
)

// @title        OrderFlow API
// @version      1.0
// @description  Order tracking for the fish and pork departments.
// @BasePath     /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Service: "orderflow",
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
	})

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open order store")
	}
	defer stores.Close(context.Background())

	backends, err := app.OpenSessionStorage(ctx, cfg, stores, log)
	if err != nil {
		log.Error().Err(err).Msg("open session storage")
		return
	}

	e, err := api.NewRouter(api.Deps{
		Log:    log,
		Auth:   service.NewAuthService(stores.Verifier, logger.Component("auth")),
		Orders: service.NewOrderService(stores.Orders, logger.Component("orders")),
		Session: middleware.SessionConfig{
			Secret:     []byte(cfg.Session.Secret),
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
			Storage:    backends.Storage,
		},
		Submissions: backends.Submissions,
		Readiness:   stores.Readiness,
	})
	if err != nil {
		log.Error().Err(err).Msg("build router")
		return
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), api.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
