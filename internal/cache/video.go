// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/sources"
)

const (
	videoNamespace = "video"

	// DefaultVideoTTL applies when VideoStoreConfig.TTL is zero.
	DefaultVideoTTL = 24 * time.Hour

	// memoryTTLCap bounds how long the memory tier trusts an entry.
	memoryTTLCap = time.Hour
)

// VideoStoreConfig configures OpenVideoStore.
type VideoStoreConfig struct {
	// Path is the Badger directory; empty runs Badger in memory.
	Path string
	TTL  time.Duration
}

// VideoStore caches solution searches in memory and in BadgerDB.
type VideoStore struct {
	db     *badger.DB
	mem    *Memory[[]models.Solution]
	ttl    time.Duration
	logger zerolog.Logger
}

var _ sources.VideoCache = (*VideoStore)(nil)

// OpenVideoStore opens (or creates) the Badger directory.
func OpenVideoStore(cfg VideoStoreConfig) (*VideoStore, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultVideoTTL
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.ValueLogFileSize = 16 << 20
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger video cache: %w", err)
	}

	memTTL := ttl
	if memTTL > memoryTTLCap {
		memTTL = memoryTTLCap
	}
	return &VideoStore{
		db:     db,
		mem:    NewMemory[[]models.Solution](memTTL, 10*time.Minute),
		ttl:    ttl,
		logger: logging.WithComponent("video-cache"),
	}, nil
}

// Get returns the cached solutions for a search query.
func (s *VideoStore) Get(ctx context.Context, query string) ([]models.Solution, bool) {
	key := GenerateKey(videoNamespace, query)
	if v, ok := s.mem.Get(key); ok {
		return v, true
	}

	var solutions []models.Solution
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &solutions)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("component", "video-cache").Msg("Video cache read failed")
		return nil, false
	}
	s.mem.Set(key, solutions)
	return solutions, true
}

// Set stores solutions for a search query. Write failures are logged.
func (s *VideoStore) Set(ctx context.Context, query string, solutions []models.Solution) {
	key := GenerateKey(videoNamespace, query)
	if err := s.put(key, solutions); err != nil {
		s.logger.Warn().Err(err).Msg("Video cache write failed")
		return
	}
	s.mem.Set(key, solutions)
}

func (s *VideoStore) put(key string, solutions []models.Solution) error {
	data, err := json.Marshal(solutions)
	if err != nil {
		return fmt.Errorf("marshal solutions: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(s.ttl))
	})
}

// Stats reports memory-tier counters.
func (s *VideoStore) Stats() Stats { return s.mem.Stats() }

// RunGC reclaims Badger value-log space. Having nothing to collect, or
// running in memory, is not an error.
func (s *VideoStore) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if err == nil || errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

// Serve runs value-log GC every interval until ctx is done. It has the
// signature of a suture service.
func (s *VideoStore) Serve(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("Video cache GC failed")
			}
		}
	}
}

func (s *VideoStore) String() string { return "video-cache-gc" }

// Close stops the memory tier and closes Badger.
func (s *VideoStore) Close() error {
	s.mem.Close()
	return s.db.Close()
}
