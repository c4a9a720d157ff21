package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"weather-dashboard/datasource"
)

type stubClient struct {
	current  datasource.Payload
	forecast datasource.Payload
	err      error
	calls    int
}

func (s *stubClient) FetchCurrent(ctx context.Context, city string) (datasource.Payload, error) {
	s.calls++
	return s.current, s.err
}

func (s *stubClient) FetchForecast(ctx context.Context, city string) (datasource.Payload, error) {
	s.calls++
	return s.forecast, s.err
}

func (s *stubClient) Name() string { return "Stub" }

func TestCachedClientHitsAndExpiry(t *testing.T) {
	stub := &stubClient{current: datasource.Payload(`{"cod":200}`), forecast: datasource.Payload(`{"cod":"200"}`)}
	c := NewCachedClient(stub, time.Minute)

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.FetchCurrent(ctx, "London"); err != nil {
			t.Fatalf("FetchCurrent failed: %v", err)
		}
	}
	// Same city, different case, still a hit
	if _, err := c.FetchCurrent(ctx, "london "); err != nil {
		t.Fatalf("FetchCurrent failed: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1", stub.calls)
	}

	// Forecast has its own key
	if _, err := c.FetchForecast(ctx, "London"); err != nil {
		t.Fatalf("FetchForecast failed: %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("calls = %d, want 2", stub.calls)
	}

	clock = clock.Add(2 * time.Minute)
	if _, err := c.FetchCurrent(ctx, "London"); err != nil {
		t.Fatalf("FetchCurrent failed: %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("expired entry was served, calls = %d", stub.calls)
	}

	hits, misses := c.CacheStats()
	if hits != 3 || misses != 3 {
		t.Errorf("stats = %d hits / %d misses, want 3/3", hits, misses)
	}
	if c.Name() != "Stub [Cached]" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestCachedClientSkipsProviderErrors(t *testing.T) {
	stub := &stubClient{current: datasource.Payload(`{"cod":"404","message":"city not found"}`)}
	c := NewCachedClient(stub, time.Hour)

	for i := 0; i < 2; i++ {
		p, err := c.FetchCurrent(context.Background(), "Nowhere12345")
		if err != nil {
			t.Fatalf("FetchCurrent failed: %v", err)
		}
		if code, _ := p.Status(); code != 404 {
			t.Errorf("Status() = %d", code)
		}
	}
	if stub.calls != 2 {
		t.Errorf("provider error was cached, calls = %d", stub.calls)
	}
}

func TestCachedClientSkipsNonJSONBodies(t *testing.T) {
	stub := &stubClient{current: datasource.Payload(`<html>502 Bad Gateway</html>`)}
	c := NewCachedClient(stub, time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := c.FetchCurrent(context.Background(), "London"); err != nil {
			t.Fatalf("FetchCurrent failed: %v", err)
		}
	}
	if stub.calls != 2 {
		t.Errorf("non-JSON body was cached, calls = %d", stub.calls)
	}
}

func TestCachedClientPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewCachedClient(&stubClient{err: boom}, time.Hour)
	if _, err := c.FetchForecast(context.Background(), "London"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
