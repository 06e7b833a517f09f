package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"goalwidget/internal/infra"
	"goalwidget/internal/localstore"
	"goalwidget/internal/sync"
	"goalwidget/internal/view"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	mode := "editor"
	if cfg.OverlayMode {
		mode = "overlay"
	}
	logger = logger.With().Str("view", mode).Logger()

	local, err := localstore.Open(cfg.StateDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open local store")
	}

	remote := sync.NewClient(sync.ClientOptions{
		BaseURL: cfg.SessionAPIURL,
		Logger:  logger,
	})

	v, err := view.New(view.Options{
		Config: cfg,
		Local:  local,
		Remote: remote,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build view")
	}

	ctx := context.Background()
	if err := v.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start view")
	}
	defer v.Stop()

	server := infra.NewHTTPServer(cfg, cfg.EmbedPort, view.NewControlRouter(v, logger))
	go func() {
		logger.Info().Msgf("view control listening on :%s", cfg.EmbedPort)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("control server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown control server")
	}
	logger.Info().Msg("view stopped")
}
