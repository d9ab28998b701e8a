// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/metrics"
)

// Subscriber is the part of Bus the log service needs.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// LogService records every received event at debug level. It implements
// suture.Service.
type LogService struct {
	sub    Subscriber
	topics []string
	logger zerolog.Logger
}

// NewLogService subscribes to topics, or to every topic when none are given.
func NewLogService(sub Subscriber, topics ...string) *LogService {
	if len(topics) == 0 {
		topics = Topics
	}
	return &LogService{
		sub:    sub,
		topics: topics,
		logger: logging.WithComponent("event-log"),
	}
}

// Serve consumes until ctx is canceled.
func (s *LogService) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, topic := range s.topics {
		ch, err := s.sub.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		wg.Add(1)
		go func(topic string, ch <-chan *message.Message) {
			defer wg.Done()
			s.consume(ctx, topic, ch)
		}(topic, ch)
	}
	wg.Wait()
	return ctx.Err()
}

func (s *LogService) consume(ctx context.Context, topic string, ch <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventsReceived.WithLabelValues(topic).Inc()
			s.logger.Debug().
				Str("topic", topic).
				Str("message_id", msg.UUID).
				Str("job", msg.Metadata.Get(MetadataJob)).
				Str("run_id", msg.Metadata.Get(MetadataRunID)).
				RawJSON("payload", msg.Payload).
				Msg("Event received")
			msg.Ack()
		}
	}
}

func (s *LogService) String() string { return "event-log" }
