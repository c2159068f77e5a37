package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/borderless/internal/adapters/handler/http"
	"github.com/vncsmyrnk/borderless/internal/app"
	"github.com/vncsmyrnk/borderless/internal/config"
	"github.com/vncsmyrnk/borderless/internal/polling"
)

const profileRefreshInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := config.Load("borderless-server", os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Summary.Load(ctx)

	visibility := polling.NewVisibilityState(true)

	statusPoller := polling.New(a.Summary.RefreshStatus, cfg.PollInterval,
		polling.WithVisibility(visibility),
		polling.WithLogger(logger),
	)
	defer statusPoller.Close()
	statusPoller.Subscribe(func(active bool) {
		logger.Info("vote status polling changed", "polling", active)
	})

	profilePoller := polling.New(a.Profiles.Refresh, profileRefreshInterval,
		polling.WithVisibility(visibility),
		polling.WithLogger(logger),
	)
	defer profilePoller.Close()

	handler := http.NewHandler(
		cfg.CORSOrigins,
		http.NewProfileHandler(a.Profiles, a.Identity),
		http.NewIdentityHandler(a.Identity, statusPoller),
		http.NewVoteHandler(a.Session, a.Identity, statusPoller),
		http.NewVisibilityHandler(visibility),
	)
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "demo", a.Gateway.Demo())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
