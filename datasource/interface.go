package datasource

import (
	"context"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrEmptyCity is returned when a fetch is attempted without a city name
var ErrEmptyCity = errors.New("city name is empty")

// StatusOK is the value of the provider's embedded "cod" field on success
const StatusOK = 200

// Payload is a raw, undecoded JSON body as returned by the provider
type Payload []byte

// Status returns the provider status embedded in the body and whether a "cod" field was present.
// The current weather endpoint sends "cod" as a number, the forecast endpoint as a string.
func (p Payload) Status() (int, bool) {
	cod := gjson.GetBytes(p, "cod")
	return int(cod.Int()), cod.Exists()
}

// Message returns the provider's error message, if any
func (p Payload) Message() string {
	return gjson.GetBytes(p, "message").String()
}

// WeatherClient defines the interface for any weather API client
type WeatherClient interface {
	// FetchCurrent fetches the current weather payload for a city
	FetchCurrent(ctx context.Context, city string) (Payload, error)

	// FetchForecast fetches the 5-day/3-hour forecast payload for a city
	FetchForecast(ctx context.Context, city string) (Payload, error)

	// Name returns the client's name
	Name() string
}
