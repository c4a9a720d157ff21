package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"weather-dashboard/datasource"
	"weather-dashboard/models"
)

// ProviderError is a failure the provider reported in the body's "cod" field
type ProviderError struct {
	Endpoint string // "weather" or "forecast"
	City     string
	Code     int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s request for %q failed with status %d", e.Endpoint, e.City, e.Code)
	}
	return fmt.Sprintf("%s request for %q failed with status %d: %s", e.Endpoint, e.City, e.Code, e.Message)
}

// Report is everything the dashboard renders for one search
type Report struct {
	City      string                       `json:"city"`
	Current   models.CurrentWeatherReading `json:"current"`
	Forecast  models.ForecastSeries        `json:"forecast"`
	Daily     []models.DailyAverage        `json:"daily"`
	FetchedAt time.Time                    `json:"fetchedAt"`
}

// Searcher runs the full fetch, extract and transform pipeline for a city
type Searcher struct {
	client datasource.WeatherClient
	now    func() time.Time
}

// NewSearcher creates a searcher on top of the given client
func NewSearcher(client datasource.WeatherClient) *Searcher {
	return &Searcher{client: client, now: time.Now}
}

// checkStatus turns a non-200 "cod" into a *ProviderError. A body that is not
// JSON, or has no "cod" at all, did not come from the provider and is malformed.
func checkStatus(endpoint, city string, payload datasource.Payload) error {
	if _, err := parse(payload); err != nil {
		return fmt.Errorf("%s response: %w", endpoint, err)
	}
	code, ok := payload.Status()
	if !ok {
		return fmt.Errorf("%s response: %w", endpoint, &FieldError{Path: "cod", Err: ErrMissingKey})
	}
	if code != datasource.StatusOK {
		return &ProviderError{Endpoint: endpoint, City: city, Code: code, Message: payload.Message()}
	}
	return nil
}

// Search fetches current weather and the forecast one after the other, then
// extracts and tabulates them. Both endpoints must report cod 200; otherwise a
// *ProviderError is returned and nothing is extracted.
func (s *Searcher) Search(ctx context.Context, city string) (*Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, datasource.ErrEmptyCity
	}

	current, err := s.client.FetchCurrent(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}
	forecast, err := s.client.FetchForecast(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	if err := checkStatus("weather", city, current); err != nil {
		return nil, err
	}
	if err := checkStatus("forecast", city, forecast); err != nil {
		return nil, err
	}

	reading, err := ExtractCurrent(current)
	if err != nil {
		return nil, fmt.Errorf("failed to extract current weather: %w", err)
	}
	series, err := forecastSeries(forecast)
	if err != nil {
		return nil, err
	}

	log.Printf("Search for %q: %.1f°C now, %d forecast buckets", city, reading.Temperature, len(series))

	return &Report{
		City:      city,
		Current:   reading,
		Forecast:  series,
		Daily:     DailyAverage(series),
		FetchedAt: s.now(),
	}, nil
}

// Current fetches and extracts only the current weather
func (s *Searcher) Current(ctx context.Context, city string) (models.CurrentWeatherReading, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return models.CurrentWeatherReading{}, datasource.ErrEmptyCity
	}

	payload, err := s.client.FetchCurrent(ctx, city)
	if err != nil {
		return models.CurrentWeatherReading{}, fmt.Errorf("failed to fetch current weather: %w", err)
	}
	if err := checkStatus("weather", city, payload); err != nil {
		return models.CurrentWeatherReading{}, err
	}
	reading, err := ExtractCurrent(payload)
	if err != nil {
		return models.CurrentWeatherReading{}, fmt.Errorf("failed to extract current weather: %w", err)
	}
	return reading, nil
}

// Forecast fetches the forecast and returns the tabulated series with its daily averages
func (s *Searcher) Forecast(ctx context.Context, city string) (models.ForecastSeries, []models.DailyAverage, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, nil, datasource.ErrEmptyCity
	}

	payload, err := s.client.FetchForecast(ctx, city)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	if err := checkStatus("forecast", city, payload); err != nil {
		return nil, nil, err
	}
	series, err := forecastSeries(payload)
	if err != nil {
		return nil, nil, err
	}
	return series, DailyAverage(series), nil
}

func forecastSeries(payload datasource.Payload) (models.ForecastSeries, error) {
	records, err := ExtractForecast(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to extract forecast: %w", err)
	}
	series, err := Tabulate(records)
	if err != nil {
		return nil, fmt.Errorf("failed to tabulate forecast: %w", err)
	}
	return series, nil
}
