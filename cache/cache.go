package cache

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"weather-dashboard/datasource"
)

// CachedClient wraps a WeatherClient and keeps successful payloads for a fixed duration.
// Provider error bodies (cod != 200) and transport errors are never cached.
type CachedClient struct {
	client         datasource.WeatherClient
	cache          map[string]cacheEntry // key is endpoint:city
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
	now            func() time.Time
}

// cacheEntry represents a cached payload with its timestamp
type cacheEntry struct {
	Data      datasource.Payload
	Timestamp time.Time
}

// NewCachedClient creates a new cached wrapper around a client
func NewCachedClient(client datasource.WeatherClient, cacheDuration time.Duration) *CachedClient {
	return &CachedClient{
		client:        client,
		cache:         make(map[string]cacheEntry),
		cacheDuration: cacheDuration,
		now:           time.Now,
	}
}

// Name returns the name of the underlying client with [Cached] suffix
func (c *CachedClient) Name() string {
	return c.client.Name() + " [Cached]"
}

// FetchCurrent fetches the current weather payload, using cache when available
func (c *CachedClient) FetchCurrent(ctx context.Context, city string) (datasource.Payload, error) {
	return c.fetch(ctx, "weather", city, c.client.FetchCurrent)
}

// FetchForecast fetches the forecast payload, using cache when available
func (c *CachedClient) FetchForecast(ctx context.Context, city string) (datasource.Payload, error) {
	return c.fetch(ctx, "forecast", city, c.client.FetchForecast)
}

func (c *CachedClient) fetch(
	ctx context.Context,
	endpoint, city string,
	load func(context.Context, string) (datasource.Payload, error),
) (datasource.Payload, error) {
	// City names are matched case-insensitively by the provider
	cacheKey := endpoint + ":" + strings.ToLower(strings.TrimSpace(city))

	c.mutex.RLock()
	entry, found := c.cache[cacheKey]
	c.mutex.RUnlock()

	// If found and not expired, return the cached payload
	if found && c.now().Sub(entry.Timestamp) < c.cacheDuration {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()

		log.Printf("Cache HIT for %s %q from %s (age: %s)",
			endpoint, city, c.client.Name(), c.now().Sub(entry.Timestamp).Round(time.Second))

		return entry.Data, nil
	}

	// Cache miss or expired, fetch fresh data
	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	data, err := load(ctx, city)
	if err != nil {
		return nil, err
	}
	if code, ok := data.Status(); !ok || code != datasource.StatusOK {
		return data, nil
	}

	c.mutex.Lock()
	c.cache[cacheKey] = cacheEntry{
		Data:      data,
		Timestamp: c.now(),
	}
	c.mutex.Unlock()

	return data, nil
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedClient) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedClient implements the WeatherClient interface
var _ datasource.WeatherClient = (*CachedClient)(nil)
