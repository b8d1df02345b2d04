// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

/*
Package cache provides thread-safe in-memory caching primitives.

Three implementations cover the application's caching needs:

  - Cache: simple TTL map with lazy expiration. Unbounded; use where the
    key space is known to be small.
  - LFUCache: capacity-bounded cache with least-frequently-used eviction
    and TTL. Backs the GitHub response cache in internal/search, where
    popular queries should survive eviction pressure.
  - LRUCache: capacity-bounded cache with least-recently-used eviction.
    Backs the in-process event deduplicator in internal/ingest.

The Cacher interface abstracts over the TTL and LFU variants so callers
can pick a policy through CacheConfig without changing call sites.

# Usage

	c := cache.NewLFU(2048, 10*time.Minute)
	c.Set(cache.GenerateKey("search", query), repos)
	if v, ok := c.Get(key); ok {
	    repos := v.([]models.Repository)
	}

GenerateKey hashes the method name and parameters into a stable key so
equivalent lookups share an entry.

# Thread Safety

All implementations are safe for concurrent use. Reads take a read lock;
mutations take the write lock. The LFU and LRU variants additionally
update their bookkeeping under the write lock on Get.

# Cache Invalidation

Expiration is lazy: entries are checked on Get and swept opportunistically
on Set. Callers that need a hard reset use Clear.
*/
package cache
