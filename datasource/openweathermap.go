package datasource

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenWeatherMap 2.5 REST endpoint
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	// DefaultUnits requests Celsius and m/s
	DefaultUnits = "metric"
)

// OpenWeatherMapProvider fetches raw current and forecast payloads from OpenWeatherMap
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(apiKey string) *OpenWeatherMapProvider {
	return &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		units:   DefaultUnits,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewOpenWeatherMapProviderFromConfig creates a provider using the configured endpoint, units and timeout
func NewOpenWeatherMapProviderFromConfig(cfg *Config) *OpenWeatherMapProvider {
	p := NewOpenWeatherMapProvider(cfg.OpenWeatherMap.APIKey)
	if cfg.OpenWeatherMap.BaseURL != "" {
		p.baseURL = strings.TrimRight(cfg.OpenWeatherMap.BaseURL, "/")
	}
	if cfg.OpenWeatherMap.Units != "" {
		p.units = cfg.OpenWeatherMap.Units
	}
	if timeout := cfg.Timeout(); timeout > 0 {
		p.httpClient.Timeout = timeout
	}
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// FetchCurrent fetches the current weather payload for a city
func (p *OpenWeatherMapProvider) FetchCurrent(ctx context.Context, city string) (Payload, error) {
	return p.get(ctx, "weather", city)
}

// FetchForecast fetches the 5-day forecast payload (3-hour steps) for a city
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, city string) (Payload, error) {
	return p.get(ctx, "forecast", city)
}

// get issues a GET against {base}/{endpoint}. Error statuses are not treated as
// failures: the body carries the provider's own "cod" field and is returned as is.
func (p *OpenWeatherMapProvider) get(ctx context.Context, endpoint, city string) (Payload, error) {
	if strings.TrimSpace(city) == "" {
		return nil, ErrEmptyCity
	}

	// Build URL
	params := url.Values{}
	params.Add("q", city)
	params.Add("appid", p.apiKey)
	params.Add("units", p.units)
	requestURL := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, params.Encode())

	log.Printf("Making OpenWeatherMap %s request for %q", endpoint, city)

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Execute request
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", redact(err, p.apiKey))
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("OpenWeatherMap %s returned status %d for %q", endpoint, resp.StatusCode, city)
	}

	return Payload(body), nil
}

// redact strips the API key from transport errors, which embed the request URL
func redact(err error, apiKey string) error {
	if apiKey == "" || !strings.Contains(err.Error(), apiKey) {
		return err
	}
	return redactedError{msg: strings.ReplaceAll(err.Error(), apiKey, "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e redactedError) Error() string { return e.msg }
func (e redactedError) Unwrap() error { return e.err }

// Ensure OpenWeatherMapProvider implements WeatherClient
var _ WeatherClient = (*OpenWeatherMapProvider)(nil)
