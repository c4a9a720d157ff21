package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"weather-dashboard/cache"
	"weather-dashboard/datasource"
	"weather-dashboard/pipeline"

	"github.com/joho/godotenv"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	cacheDuration := flag.Duration("ttl", 15*time.Second, "Cache duration for the demo")
	flag.Parse()

	fmt.Println("=== Running Cache Test ===")
	fmt.Println("This will demonstrate how caching works with multiple requests")
	fmt.Printf("The test will take about %s to complete...\n\n", *cacheDuration+time.Second)

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file:", err)
	}

	config, err := datasource.LoadConfigOrDefault(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if config.OpenWeatherMap.APIKey == "" {
		log.Fatalf("No API key provided; set %s", datasource.APIKeyEnv)
	}

	cached := cache.NewCachedClient(datasource.NewOpenWeatherMapProviderFromConfig(config), *cacheDuration)
	fmt.Printf("Using %s with a %s cache\n", cached.Name(), *cacheDuration)

	ctx := context.Background()
	locations := []string{"London,UK", "New York,US"}

	fmt.Println("\n*** First Request - Should be cache misses ***")
	makeRequests(ctx, cached, locations)

	fmt.Println("\n*** Second Request - Should use cached data ***")
	makeRequests(ctx, cached, locations)

	fmt.Println("\n*** Third Request - Still using cached data ***")
	makeRequests(ctx, cached, locations)

	fmt.Printf("\nWaiting for cache to expire (%s)...\n", *cacheDuration)
	time.Sleep(*cacheDuration + time.Second)

	fmt.Println("\n*** After Expiry - Should be cache misses again ***")
	makeRequests(ctx, cached, locations)

	// 2 hits and 2 misses per location
	hits, misses := cached.CacheStats()
	fmt.Printf("\nStats for %s: %d cache hits, %d cache misses\n", cached.Name(), hits, misses)

	fmt.Println("\n=== Cache Test Complete ===")
}

func makeRequests(ctx context.Context, client datasource.WeatherClient, locations []string) {
	for _, location := range locations {
		payload, err := client.FetchCurrent(ctx, location)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if code, _ := payload.Status(); code != datasource.StatusOK {
			fmt.Printf("Provider answered %d for %s: %s\n", code, location, payload.Message())
			continue
		}
		reading, err := pipeline.ExtractCurrent(payload)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("Got data from %s for %s: %.1f°C\n", client.Name(), location, reading.Temperature)
	}
}
