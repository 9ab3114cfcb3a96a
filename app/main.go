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

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/rss-notify/app/api"
	"github.com/lysyi3m/rss-notify/app/cache"
	"github.com/lysyi3m/rss-notify/app/cfg"
	"github.com/lysyi3m/rss-notify/app/feed"
	"github.com/lysyi3m/rss-notify/app/logging"
	"github.com/lysyi3m/rss-notify/app/notify"
	"github.com/lysyi3m/rss-notify/app/settings"
	"github.com/lysyi3m/rss-notify/app/tasks"
	"github.com/lysyi3m/rss-notify/app/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rss-notify: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	logFile, err := logging.Setup(logging.Config{Level: appCfg.LogLevel, File: appCfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logFile.Close()

	slog.Info("Starting RSS Notify", "version", appCfg.Version, "settings", appCfg.SettingsFile)

	settingsLoader := settings.NewLoader(appCfg.SettingsFile)
	snapshot, err := settingsLoader.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	slog.Info("Settings loaded",
		"sources", len(snapshot.Sources),
		"update_interval", snapshot.UpdateIntervalDuration().String(),
		"items_visible", snapshot.ItemsVisible,
		"notifications", snapshot.NotificationsEnabled)

	dispatcher := notify.NewDispatcher(snapshot.NotificationLimit, notify.NewLogSink())
	store := cache.NewStore(dispatcher)
	fetcher := transport.NewFetcher(appCfg.FetchTimeout, appCfg.UserAgent, appCfg.RateLimit)

	scheduler := tasks.NewScheduler(settingsLoader, fetcher, store, dispatcher, feed.NewFilterer())
	scheduler.Start()

	handler := api.NewHandler(store, dispatcher, scheduler, appCfg.Version)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server stopped")
		}

		scheduler.Stop()
		slog.Info("Scheduler stopped")
		return nil
	})

	err = g.Wait()
	slog.Info("RSS Notify shutdown complete")
	return err
}
