// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package testinfra starts throwaway service containers for integration
// tests with testcontainers-go.
//
// Files carry the integration build tag, so plain `go test ./...` never
// needs Docker:
//
//	go test -tags integration ./internal/runguard/ ./internal/events/
//
// Tests call SkipIfNoDocker first and terminate the container with
// CleanupContainer:
//
//	func TestRedisGuard(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis)
//	    client, _ := runguard.NewRedisClient(ctx, redis.URL)
//	    // ...
//	}
package testinfra
