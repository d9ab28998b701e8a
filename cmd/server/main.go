// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/tomtom215/cpsync/internal/api"
	"github.com/tomtom215/cpsync/internal/cache"
	"github.com/tomtom215/cpsync/internal/config"
	"github.com/tomtom215/cpsync/internal/database"
	"github.com/tomtom215/cpsync/internal/events"
	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/supervisor"
	"github.com/tomtom215/cpsync/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("CPSync stopped with an error")
	}
}

//nolint:gocyclo // sequential startup wiring
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("timezone", cfg.Jobs.Timezone).
		Str("db_path", cfg.Database.Path).
		Str("lock_backend", cfg.Lock.Backend).
		Msg("Starting CPSync")

	if cfg.UsesDefaultCronToken() {
		logging.Warn().Msg("CRON_SECRET_TOKEN is not set; trigger endpoints accept the default secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	videoStore, err := cache.OpenVideoStore(cache.VideoStoreConfig{
		Path: cfg.Cache.Path,
		TTL:  cfg.Cache.VideoTTL,
	})
	if err != nil {
		return fmt.Errorf("open video cache: %w", err)
	}
	defer func() {
		if err := videoStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing video cache")
		}
	}()

	bus, err := buildEvents(&cfg.Events)
	if err != nil {
		return err
	}
	var publisher events.Publisher = events.Discard{}
	if bus != nil {
		publisher = bus
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
	}

	guard, closeGuard, err := guardFactory(ctx, &cfg.Lock)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeGuard(); err != nil {
			logging.Error().Err(err).Msg("Error closing run guard backend")
		}
	}()

	ps := buildSources(cfg, videoStore)
	manager, err := buildManager(cfg, db, ps, guard, publisher)
	if err != nil {
		return err
	}
	manager.SetRecorder(db)

	handler := api.NewHandler(db, manager, api.Config{
		CronToken:      cfg.Security.CronToken,
		TriggerTimeout: cfg.Jobs.TriggerTimeout,
		Location:       cfg.Jobs.Location(),
	})
	mw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitRequests,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		TriggerRateLimit:   cfg.Security.TriggerRateLimit,
	})
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, mw).SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(videoStore)
	if bus != nil {
		tree.AddDataService(events.NewLogService(bus, events.Topics...))
	}
	tree.AddJobService(services.NewJobManagerService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("CPSync stopped")
	return nil
}
