package datasource

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedClient wraps a WeatherClient with rate limiting.
// Current and forecast calls draw from the same bucket since they share the provider quota.
type RateLimitedClient struct {
	client  WeatherClient
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedClient creates a new rate limited client
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedClient(client WeatherClient, rps float64, burst int) *RateLimitedClient {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", client.Name()),
	}
}

// FetchCurrent fetches the current weather payload, respecting rate limits
func (r *RateLimitedClient) FetchCurrent(ctx context.Context, city string) (Payload, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.client.FetchCurrent(ctx, city)
}

// FetchForecast fetches the forecast payload, respecting rate limits
func (r *RateLimitedClient) FetchForecast(ctx context.Context, city string) (Payload, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.client.FetchForecast(ctx, city)
}

// Name returns the client name
func (r *RateLimitedClient) Name() string {
	return r.name
}

var _ WeatherClient = (*RateLimitedClient)(nil)
