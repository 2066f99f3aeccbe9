package weather

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shuv1824/weatherwise/internal/types"
)

// CachedClient wraps a Source with a short-lived in-memory cache keyed by
// request. Failed lookups are never cached.
type CachedClient struct {
	source   Source
	cacheTTL time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	hits    int
	misses  int
}

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

var _ Source = (*CachedClient)(nil)

// NewCachedClient creates a cached source. A cacheTTL of zero or less
// disables caching and every call goes straight to source.
func NewCachedClient(source Source, cacheTTL time.Duration) *CachedClient {
	return &CachedClient{
		source:   source,
		cacheTTL: cacheTTL,
		now:      time.Now,
		entries:  make(map[string]cacheEntry),
	}
}

func (c *CachedClient) ForecastByCity(ctx context.Context, city string) (*types.RawForecast, error) {
	key := "forecast:city:" + normalize(city)
	return cached(c, key, cloneForecast, func() (*types.RawForecast, error) {
		return c.source.ForecastByCity(ctx, city)
	})
}

func (c *CachedClient) ForecastByCoords(ctx context.Context, coords types.Coordinates) (*types.RawForecast, error) {
	key := "forecast:coords:" + coordKey(coords)
	return cached(c, key, cloneForecast, func() (*types.RawForecast, error) {
		return c.source.ForecastByCoords(ctx, coords)
	})
}

func (c *CachedClient) Geocode(ctx context.Context, city string) (types.Coordinates, error) {
	key := "geocode:" + normalize(city)
	return cached(c, key, identity[types.Coordinates], func() (types.Coordinates, error) {
		return c.source.Geocode(ctx, city)
	})
}

func (c *CachedClient) NearbyByCoords(ctx context.Context, coords types.Coordinates, count int) ([]types.WeatherData, error) {
	key := fmt.Sprintf("nearby:coords:%s:%d", coordKey(coords), NearbyCount(count))
	return cached(c, key, cloneCities, func() ([]types.WeatherData, error) {
		return c.source.NearbyByCoords(ctx, coords, count)
	})
}

// NearbyByCity goes through the cached Geocode so repeated searches for the
// same city reuse both lookups.
func (c *CachedClient) NearbyByCity(ctx context.Context, city string, count int) ([]types.WeatherData, error) {
	coords, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	return c.NearbyByCoords(ctx, coords, count)
}

// Stats reports cache hits and misses since creation.
func (c *CachedClient) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of cached entries, expired or not.
func (c *CachedClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Run evicts expired entries every half TTL until ctx is done.
func (c *CachedClient) Run(ctx context.Context) error {
	if !c.enabled() {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(c.cacheTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				slog.Debug("weather cache sweep", "evicted", n)
			}
		}
	}
}

// Sweep removes expired entries and returns how many were dropped.
func (c *CachedClient) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, e := range c.entries {
		if c.now().Sub(e.fetchedAt) >= c.cacheTTL {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

func (c *CachedClient) enabled() bool {
	return c.cacheTTL > 0
}

func (c *CachedClient) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().Sub(e.fetchedAt) < c.cacheTTL {
		c.hits++
		return e.value, true
	}
	c.misses++
	return nil, false
}

func (c *CachedClient) store(key string, value any) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
}

// cached returns a copy of the cached value for key, or fetches and stores it.
func cached[T any](c *CachedClient, key string, clone func(T) T, fetch func() (T, error)) (T, error) {
	if !c.enabled() {
		return fetch()
	}

	if v, ok := c.lookup(key); ok {
		return clone(v.(T)), nil
	}

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	c.store(key, v)
	return clone(v), nil
}

func cloneForecast(f *types.RawForecast) *types.RawForecast {
	if f == nil {
		return nil
	}
	out := *f
	out.Samples = slices.Clone(f.Samples)
	return &out
}

func cloneCities(cities []types.WeatherData) []types.WeatherData {
	return slices.Clone(cities)
}

func identity[T any](v T) T { return v }

func normalize(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func coordKey(coords types.Coordinates) string {
	return fmt.Sprintf("%.4f,%.4f", coords.Lat, coords.Lon)
}
