// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultNATSImage is the NATS image used for event bus tests.
	DefaultNATSImage = "nats:2.10-alpine"

	natsPort = "4222/tcp"
)

// NATSContainer is a running NATS server.
type NATSContainer struct {
	testcontainers.Container
	// URL is a nats:// URL for events.Config.NATSURL.
	URL string
}

// NewNATSContainer starts NATS and waits for its client port.
func NewNATSContainer(ctx context.Context) (*NATSContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultNATSImage,
		ExposedPorts: []string{natsPort},
		WaitingFor: wait.ForAll(
			wait.ForLog("Server is ready"),
			wait.ForListeningPort(natsPort),
		).WithStartupTimeout(60 * time.Second),
	}

	container, host, err := startContainer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("start nats container: %w", err)
	}
	port, err := container.MappedPort(ctx, natsPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}
	return &NATSContainer{Container: container, URL: "nats://" + host + ":" + port.Port() + ""}, nil
}
