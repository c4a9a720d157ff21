package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-dashboard/api"
	"weather-dashboard/cache"
	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/pipeline"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// Parse command line arguments
	port := flag.Int("port", 8080, "Port to run the server on")
	configFile := flag.String("config", "config.yaml", "Path to configuration file (.yaml or .json)")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable API rate limiting")
	cacheTTL := flag.Duration("cache-ttl", 0, "Cache provider responses for this long (0 disables caching)")
	flag.Parse()

	config, err := datasource.LoadConfigOrDefault(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if config.OpenWeatherMap.APIKey == "" {
		log.Fatalf("No OpenWeatherMap API key provided; set %s or openWeatherMap.apiKey", datasource.APIKeyEnv)
	}

	var client datasource.WeatherClient = datasource.NewOpenWeatherMapProviderFromConfig(config)

	if *enableRateLimiting {
		client = datasource.NewRateLimitedClient(client, config.RateLimit.RPS, config.RateLimit.Burst)
		log.Printf("Applied rate limiting: %.2f req/s, burst %d", config.RateLimit.RPS, config.RateLimit.Burst)
	}

	var cached *cache.CachedClient
	if *cacheTTL > 0 {
		cached = cache.NewCachedClient(client, *cacheTTL)
		client = cached
		log.Printf("Caching provider responses for %s", *cacheTTL)
	}
	log.Printf("Using weather client: %s", client.Name())

	renderer, err := dashboard.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	server := api.NewServer(pipeline.NewSearcher(client), renderer, *port)

	// Set up channel for graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	sig := <-shutdownChan
	log.Printf("Shutting down due to %s signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	if cached != nil {
		hits, misses := cached.CacheStats()
		log.Printf("Cache stats: %d hits, %d misses", hits, misses)
	}
	log.Println("Shutdown complete")
}
