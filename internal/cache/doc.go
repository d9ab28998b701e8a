// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

/*
Package cache stores YouTube solution lookups so repeated contest syncs do not
spend search quota on queries that were already answered.

Two tiers are used:

  - Memory: a thread-safe map with per-entry TTL and lazy expiration, shared
    by every lookup in the process.
  - VideoStore: a BadgerDB directory that persists results across restarts.
    Entries carry a Badger TTL, so expired results disappear without an
    explicit sweep. An empty path keeps Badger in memory.

VideoStore satisfies sources.VideoCache:

	store, err := cache.OpenVideoStore(cache.VideoStoreConfig{Path: "/data/cache", TTL: 24 * time.Hour})
	if err != nil {
	    return err
	}
	defer store.Close()
	yt := sources.NewYouTube(sources.YouTubeConfig{APIKey: key, Cache: store})

Keys are derived with GenerateKey, which hashes the normalized query so that
"ABC 409" and "abc  409" share an entry.
*/
package cache
