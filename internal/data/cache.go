package data

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pricecast/internal/timeseries"
)

// cacheEntry is one cached fetch result.
type cacheEntry struct {
	series    *timeseries.Series
	expiresAt time.Time
}

// SeriesCache is a cache for source responses, intended for local
// development to avoid hammering the upstream APIs while iterating. Review
// the upstream terms of use before enabling it anywhere else; it is off
// unless ENABLE_SOURCE_CACHE=true and disabled outright when
// API_ENV=production.
//
// Entries live in memory; when PRICECAST_CACHE_DIR is set they are also
// persisted as JSON files so a cache survives process restarts.
type SeriesCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration
	dir   string
}

var (
	globalCache *SeriesCache
	cacheOnce   sync.Once
)

// GetCache returns the shared cache, or nil when caching is disabled.
func GetCache() *SeriesCache {
	if os.Getenv("ENABLE_SOURCE_CACHE") != "true" {
		return nil
	}
	if os.Getenv("API_ENV") == "production" {
		return nil
	}

	cacheOnce.Do(func() {
		ttl := time.Hour
		if raw := os.Getenv("SOURCE_CACHE_TTL"); raw != "" {
			if parsed, err := time.ParseDuration(raw); err == nil {
				ttl = parsed
			}
		}
		dir := os.Getenv("PRICECAST_CACHE_DIR")
		if dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				dir = ""
			}
		}
		globalCache = &SeriesCache{
			store: make(map[string]*cacheEntry),
			ttl:   ttl,
			dir:   dir,
		}
		go globalCache.cleanup()
	})

	return globalCache
}

// diskEntry is the JSON shape persisted under PRICECAST_CACHE_DIR.
type diskEntry struct {
	ExpiresAt  time.Time   `json:"expires_at"`
	Name       string      `json:"name"`
	Timestamps []time.Time `json:"timestamps"`
	Values     []float64   `json:"values"`
}

// Get returns a cached series if present and unexpired, checking memory
// first and then the disk layer.
func (c *SeriesCache) Get(key string) (*timeseries.Series, bool) {
	c.mu.RLock()
	entry, ok := c.store[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.series.Copy(), true
	}

	if c.dir == "" {
		return nil, false
	}
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var de diskEntry
	if err := json.Unmarshal(raw, &de); err != nil || time.Now().After(de.ExpiresAt) {
		return nil, false
	}
	series := &timeseries.Series{
		Timestamps: de.Timestamps,
		Values:     de.Values,
		Name:       de.Name,
	}

	c.mu.Lock()
	c.store[key] = &cacheEntry{series: series.Copy(), expiresAt: de.ExpiresAt}
	c.mu.Unlock()
	return series, true
}

// Set stores a series under key in memory and, when configured, on disk.
func (c *SeriesCache) Set(key string, series *timeseries.Series) {
	expiresAt := time.Now().Add(c.ttl)

	c.mu.Lock()
	c.store[key] = &cacheEntry{series: series.Copy(), expiresAt: expiresAt}
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	raw, err := json.Marshal(diskEntry{
		ExpiresAt:  expiresAt,
		Name:       series.Name,
		Timestamps: series.Timestamps,
		Values:     series.Values,
	})
	if err != nil {
		return
	}
	// Best effort; a failed write just means a cold cache next run.
	_ = os.WriteFile(c.path(key), raw, 0o644)
}

func (c *SeriesCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *SeriesCache) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.store {
			if now.After(entry.expiresAt) {
				delete(c.store, key)
			}
		}
		c.mu.Unlock()
	}
}

// CacheKey derives a stable key from the request parameters.
func CacheKey(source, dataset, location string, start, end time.Time) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%s",
		source, dataset, location,
		start.Format("2006-01-02T15"), end.Format("2006-01-02T15"))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
