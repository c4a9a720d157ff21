package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

func main() {
	baseURL := flag.String("server", "http://localhost:8080", "Base URL of the running dashboard")
	city := flag.String("city", "London", "City to query")
	flag.Parse()

	fmt.Println("Weather API Client Example")
	fmt.Println("=========================")

	client := &http.Client{Timeout: 15 * time.Second}

	fmt.Println("\nChecking server health...")
	health, err := getJSON(client, *baseURL+"/api/health")
	if err != nil {
		fmt.Printf("Error reaching server: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Server status: %v\n", health["status"])

	fmt.Printf("\nFetching current weather for %s...\n", *city)
	weather, err := getJSON(client, fmt.Sprintf("%s/api/weather/location/%s", *baseURL, url.PathEscape(*city)))
	if err != nil {
		fmt.Printf("Error fetching weather: %v\n", err)
		os.Exit(1)
	}
	printPretty("Weather data for "+*city, weather)

	fmt.Printf("\nFetching forecast for %s...\n", *city)
	forecast, err := getJSON(client, fmt.Sprintf("%s/api/forecast/location/%s", *baseURL, url.PathEscape(*city)))
	if err != nil {
		fmt.Printf("Error fetching forecast: %v\n", err)
		os.Exit(1)
	}
	// The full series is long; the daily means are enough here
	printPretty("Daily averages for "+*city, forecast["daily"])
}

func getJSON(client *http.Client, target string) (map[string]interface{}, error) {
	resp, err := client.Get(target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, body)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %v", resp.StatusCode, data["error"])
	}
	return data, nil
}

func printPretty(title string, v interface{}) {
	prettyJSON, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("\n%s:\n%s\n", title, string(prettyJSON))
}
