package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"goalwidget/internal/http/handlers"
	"goalwidget/internal/http/httpapi"
	"goalwidget/internal/infra"
	"goalwidget/internal/sessionstore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session store")
	}
	defer cleanup()

	app := handlers.NewApp(store, logger)
	router := httpapi.NewRouter(app, logger)
	server := infra.NewHTTPServer(cfg, cfg.Port, router)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go sessionstore.Sweep(sweepCtx, store, cfg.SessionTTL, cfg.SweepInterval, logger)

	go func() {
		logger.Info().Str("backend", cfg.SessionBackend).Msgf("session API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg *infra.Config) (sessionstore.Store, func(), error) {
	switch cfg.SessionBackend {
	case infra.BackendMemory:
		store := sessionstore.NewMemStore()
		return store, func() {}, nil
	case infra.BackendPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store, err := sessionstore.NewPGStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		store, err := sessionstore.NewBoltStore(cfg.SessionDBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}
