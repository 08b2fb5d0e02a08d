package data

import (
	"testing"
	"time"

	"pricecast/internal/timeseries"
)

func TestCacheKeyStable(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	a := CacheKey("gridstatus", "ds", "loc", start, end)
	b := CacheKey("gridstatus", "ds", "loc", start, end)
	if a != b {
		t.Error("Same parameters must produce the same key")
	}

	c := CacheKey("gridstatus", "ds", "other", start, end)
	if a == c {
		t.Error("Different locations must produce different keys")
	}
	d := CacheKey("eia", "ds", "loc", start, end)
	if a == d {
		t.Error("Different sources must produce different keys")
	}
}

func TestGetCacheDisabledByDefault(t *testing.T) {
	t.Setenv("ENABLE_SOURCE_CACHE", "")
	if GetCache() != nil {
		t.Error("Cache must be disabled unless explicitly enabled")
	}

	t.Setenv("ENABLE_SOURCE_CACHE", "true")
	t.Setenv("API_ENV", "production")
	if GetCache() != nil {
		t.Error("Cache must be disabled in production")
	}
}

func TestCacheSetGet(t *testing.T) {
	cache := &SeriesCache{
		store: make(map[string]*cacheEntry),
		ttl:   time.Minute,
	}

	series := timeseries.New([]float64{1, 2, 3})
	cache.Set("k", series)

	got, ok := cache.Get("k")
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if got.Len() != 3 {
		t.Fatalf("Expected 3 values, got %d", got.Len())
	}

	// Returned series is a copy, not the cached one.
	got.Values[0] = 99
	again, _ := cache.Get("k")
	if again.Values[0] == 99 {
		t.Error("Cache must hand out copies")
	}

	if _, ok := cache.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}
}

func TestCacheDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writer := &SeriesCache{
		store: make(map[string]*cacheEntry),
		ttl:   time.Minute,
		dir:   dir,
	}
	series := timeseries.New([]float64{10, 20, 30})
	series.Name = "lmp"
	writer.Set("k", series)

	// A fresh cache sharing the directory rehydrates from disk.
	reader := &SeriesCache{
		store: make(map[string]*cacheEntry),
		ttl:   time.Minute,
		dir:   dir,
	}
	got, ok := reader.Get("k")
	if !ok {
		t.Fatal("Expected disk hit")
	}
	if got.Len() != 3 || got.Values[1] != 20 {
		t.Errorf("Disk entry mismatch: %v", got.Values)
	}
	if got.Name != "lmp" {
		t.Errorf("Expected name lmp, got %q", got.Name)
	}
	if !got.Timestamps[0].Equal(series.Timestamps[0]) {
		t.Error("Timestamps must survive the round trip")
	}
}

func TestCacheDiskExpiry(t *testing.T) {
	dir := t.TempDir()
	writer := &SeriesCache{
		store: make(map[string]*cacheEntry),
		ttl:   -time.Second,
		dir:   dir,
	}
	writer.Set("k", timeseries.New([]float64{1}))

	reader := &SeriesCache{
		store: make(map[string]*cacheEntry),
		ttl:   time.Minute,
		dir:   dir,
	}
	if _, ok := reader.Get("k"); ok {
		t.Error("Expired disk entry must not be returned")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := &SeriesCache{
		store: make(map[string]*cacheEntry),
		ttl:   -time.Second, // entries expire immediately
	}
	cache.Set("k", timeseries.New([]float64{1}))

	if _, ok := cache.Get("k"); ok {
		t.Error("Expired entry must not be returned")
	}
}
