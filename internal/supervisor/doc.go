// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

/*
Package supervisor runs CPSync's long-lived services under suture v4.

The tree isolates failures by layer:

	cpsync
	├── data-layer
	│   ├── video-cache-gc   (Badger value log GC)
	│   └── event-log        (if events are enabled)
	├── jobs-layer
	│   └── sync-manager     (cron scheduler and the three jobs)
	└── api-layer
	    └── http-server

A crashed service is restarted with suture's backoff. Canceling the context
passed to Serve stops every layer, each service bounded by
TreeConfig.ShutdownTimeout.

# Usage

	logger := logging.NewSlogLogger("supervisor")
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(videoStore)
	tree.AddJobService(services.NewJobManagerService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

Service wrappers live in the services subpackage.
*/
package supervisor
