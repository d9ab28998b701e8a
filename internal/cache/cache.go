// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is a thread-safe in-memory cache with TTL expiration.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Keys      int
}

// NewMemory creates a cache whose entries live for ttl. When cleanupInterval
// is positive, a background goroutine drops expired entries until Close.
func NewMemory[V any](ttl, cleanupInterval time.Duration) *Memory[V] {
	m := &Memory[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.cleanupLoop(cleanupInterval)
	}
	return m
}

// Get returns the value for key if present and not expired.
func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		m.misses.Add(1)
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		if cur, still := m.entries[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
			m.evictions.Add(1)
		}
		m.mu.Unlock()
		m.misses.Add(1)
		return zero, false
	}
	m.hits.Add(1)
	return e.value, true
}

// Set stores value with the default TTL.
func (m *Memory[V]) Set(key string, value V) {
	m.SetWithTTL(key, value, m.ttl)
}

// SetWithTTL stores value with a custom TTL.
func (m *Memory[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

// Delete removes key.
func (m *Memory[V]) Delete(key string) {
	m.mu.Lock()
	if _, ok := m.entries[key]; ok {
		delete(m.entries, key)
		m.evictions.Add(1)
	}
	m.mu.Unlock()
}

// Clear removes every entry.
func (m *Memory[V]) Clear() {
	m.mu.Lock()
	n := len(m.entries)
	m.entries = make(map[string]entry[V])
	m.mu.Unlock()
	m.evictions.Add(int64(n))
}

// Stats returns the current counters.
func (m *Memory[V]) Stats() Stats {
	m.mu.RLock()
	keys := len(m.entries)
	m.mu.RUnlock()
	return Stats{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Evictions: m.evictions.Load(),
		Keys:      keys,
	}
}

// HitRate returns hits as a percentage of lookups.
func (m *Memory[V]) HitRate() float64 {
	s := m.Stats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (m *Memory[V]) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Memory[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory[V]) cleanup() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			m.evictions.Add(1)
		}
	}
}

// GenerateKey builds a compact key from a namespace and free text. The text
// is lowercased and its whitespace collapsed before hashing.
func GenerateKey(namespace, text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s:%x", namespace, hash[:16])
}
