package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"weather-dashboard/datasource"
)

// MockWeatherClient simulates provider latency and counts calls
type MockWeatherClient struct {
	callCount int
	mutex     sync.Mutex
	latency   time.Duration
}

func NewMockWeatherClient(latency time.Duration) *MockWeatherClient {
	return &MockWeatherClient{latency: latency}
}

func (m *MockWeatherClient) FetchCurrent(ctx context.Context, city string) (datasource.Payload, error) {
	return m.respond(ctx, "weather", city)
}

func (m *MockWeatherClient) FetchForecast(ctx context.Context, city string) (datasource.Payload, error) {
	return m.respond(ctx, "forecast", city)
}

func (m *MockWeatherClient) respond(ctx context.Context, endpoint, city string) (datasource.Payload, error) {
	m.mutex.Lock()
	m.callCount++
	currentCount := m.callCount
	m.mutex.Unlock()

	fmt.Printf("%s - Processing %s request #%d for %s\n", time.Now().Format("15:04:05.000"), endpoint, currentCount, city)

	select {
	case <-time.After(m.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return datasource.Payload(fmt.Sprintf(`{"cod":200,"name":%q,"main":{"temp":22.5,"feels_like":21.9,"humidity":60},"wind":{"speed":5.5},"weather":[{"main":"Clear","description":"clear sky","icon":"01d"}]}`, city)), nil
}

func (m *MockWeatherClient) Name() string {
	return "MockClient"
}

func (m *MockWeatherClient) GetCallCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.callCount
}

func main() {
	requestsPerSecond := flag.Float64("rps", 1.0, "Rate limit in requests per second")
	burstSize := flag.Int("burst", 3, "Maximum burst size")
	totalRequests := flag.Int("requests", 10, "Total number of requests to make")
	concurrentRequests := flag.Int("concurrent", 5, "Number of concurrent requests")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mockClient := NewMockWeatherClient(200 * time.Millisecond)
	limited := datasource.NewRateLimitedClient(mockClient, *requestsPerSecond, *burstSize)

	fmt.Printf("Testing %s with:\n", limited.Name())
	fmt.Printf("- Rate limit: %.2f requests/second\n", *requestsPerSecond)
	fmt.Printf("- Burst size: %d\n", *burstSize)
	fmt.Printf("- Total requests: %d\n", *totalRequests)
	fmt.Printf("- Concurrent workers: %d\n", *concurrentRequests)
	fmt.Println("Starting test...")

	startTime := time.Now()
	var wg sync.WaitGroup

	for i := 0; i < *concurrentRequests; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			requestsPerWorker := *totalRequests / *concurrentRequests
			if workerID < *totalRequests%*concurrentRequests {
				requestsPerWorker++
			}

			for j := 0; j < requestsPerWorker; j++ {
				city := fmt.Sprintf("TestCity-%d-%d", workerID, j)
				before := time.Now()

				// Alternate endpoints; both draw from the same bucket
				fetch := limited.FetchCurrent
				if j%2 == 1 {
					fetch = limited.FetchForecast
				}
				_, err := fetch(ctx, city)
				elapsed := time.Since(before)

				if err != nil {
					log.Printf("Worker %d - Request %d failed: %v", workerID, j, err)
				} else {
					log.Printf("Worker %d - Request %d completed in %v", workerID, j, elapsed)
				}

				time.Sleep(10 * time.Millisecond)
			}
		}(i)
	}

	wg.Wait()

	totalTime := time.Since(startTime)
	actualRPS := float64(*totalRequests) / totalTime.Seconds()

	fmt.Println("\nTest completed!")
	fmt.Printf("Total time: %.2f seconds\n", totalTime.Seconds())
	fmt.Printf("Actual requests per second: %.2f\n", actualRPS)
	fmt.Printf("Total requests processed: %d\n", mockClient.GetCallCount())

	expectedMinTime := float64(*totalRequests-*burstSize) / *requestsPerSecond
	if expectedMinTime < 0 {
		expectedMinTime = 0
	}
	fmt.Printf("Expected minimum time (theoretical): %.2f seconds\n", expectedMinTime)

	if actualRPS > *requestsPerSecond*1.5 && *totalRequests > *burstSize {
		fmt.Println("\n⚠️ WARNING: Actual RPS significantly higher than configured rate limit!")
		fmt.Println("Rate limiting may not be working as expected.")
	} else {
		fmt.Println("\n✅ Rate limiting appears to be working correctly.")
	}
}
