package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable holding the OpenWeatherMap API key
const APIKeyEnv = "OPENWEATHER_API_KEY"

// Config represents the application configuration
type Config struct {
	OpenWeatherMap struct {
		APIKey         string  `json:"apiKey" yaml:"apiKey"`
		BaseURL        string  `json:"baseURL" yaml:"baseURL"`
		Units          string  `json:"units" yaml:"units"`
		TimeoutSeconds float64 `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	} `json:"openWeatherMap" yaml:"openWeatherMap"`

	// Token bucket applied to outbound calls
	RateLimit struct {
		RPS   float64 `json:"rps" yaml:"rps"`
		Burst int     `json:"burst" yaml:"burst"`
	} `json:"rateLimit" yaml:"rateLimit"`
}

// LoadConfig loads configuration from a YAML or JSON file, chosen by extension
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads the file if it exists and falls back to DefaultConfig otherwise.
// The API key environment variable always wins over the file.
func LoadConfigOrDefault(filename string) (*Config, error) {
	config, err := LoadConfig(filename)
	if errors.Is(err, fs.ErrNotExist) {
		config, err = DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		config.OpenWeatherMap.APIKey = key
	}
	return config, nil
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	config := &Config{}
	config.OpenWeatherMap.BaseURL = DefaultBaseURL
	config.OpenWeatherMap.Units = DefaultUnits
	config.OpenWeatherMap.TimeoutSeconds = 10
	// OpenWeatherMap free tier allows 60 calls/minute = 1 call per second
	config.RateLimit.RPS = 1.0
	config.RateLimit.Burst = 5
	return config
}

// Timeout returns the HTTP client timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.OpenWeatherMap.TimeoutSeconds * float64(time.Second))
}
