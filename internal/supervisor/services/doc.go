// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

/*
Package services adapts CPSync components to suture.Service.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx) error pattern and implements fmt.Stringer so the supervisor
can name it in logs:

  - HTTPServerService wraps *http.Server (ListenAndServe and Shutdown).
  - JobManagerService wraps the sync manager (Start and Stop).

Components that already implement Serve, such as the video cache GC loop
and the event log consumer, are added to the tree directly.
*/
package services
