// Package pipeline turns raw OpenWeatherMap payloads into flat records,
// tabulates the forecast and derives daily aggregates.
package pipeline

import (
	"errors"
	"fmt"

	"weather-dashboard/datasource"
	"weather-dashboard/models"

	"github.com/tidwall/gjson"
)

var (
	// ErrMalformedPayload is returned when a payload is not valid JSON
	ErrMalformedPayload = errors.New("payload is not valid JSON")
	// ErrMissingKey is wrapped by FieldError when an expected key is absent
	ErrMissingKey = errors.New("missing key")
	// ErrInvalidValue is wrapped by FieldError when a key holds a value of the wrong type or range
	ErrInvalidValue = errors.New("invalid value")
)

// FieldError reports the payload path that could not be projected
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// projector reads typed values out of a gjson object. The first failure sticks
// and every later read returns a zero value.
type projector struct {
	obj    gjson.Result
	prefix string
	err    error
}

func (p *projector) get(path string) (gjson.Result, bool) {
	if p.err != nil {
		return gjson.Result{}, false
	}
	r := p.obj.Get(path)
	if !r.Exists() {
		p.err = &FieldError{Path: p.prefix + path, Err: ErrMissingKey}
		return r, false
	}
	return r, true
}

func (p *projector) fail(path string, format string, args ...any) {
	p.err = &FieldError{Path: p.prefix + path, Err: fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))}
}

func (p *projector) number(path string) float64 {
	r, ok := p.get(path)
	if !ok {
		return 0
	}
	if r.Type != gjson.Number {
		p.fail(path, "expected number, got %s", r.Type)
		return 0
	}
	return r.Float()
}

func (p *projector) percentage(path string) int {
	v := p.number(path)
	if p.err != nil {
		return 0
	}
	if v < 0 || v > 100 {
		p.fail(path, "%v is outside [0,100]", v)
		return 0
	}
	return int(v)
}

func (p *projector) text(path string) string {
	r, ok := p.get(path)
	if !ok {
		return ""
	}
	if r.Type != gjson.String {
		p.fail(path, "expected string, got %s", r.Type)
		return ""
	}
	return r.String()
}

// optional reads a string that may be absent
func (p *projector) optional(path string) string {
	return p.obj.Get(path).String()
}

func parse(payload datasource.Payload) (gjson.Result, error) {
	if !gjson.ValidBytes(payload) {
		return gjson.Result{}, ErrMalformedPayload
	}
	return gjson.ParseBytes(payload), nil
}

// ExtractCurrent projects a current weather payload into a flat reading.
// Values pass through unchanged; units are whatever the request asked for.
func ExtractCurrent(payload datasource.Payload) (models.CurrentWeatherReading, error) {
	obj, err := parse(payload)
	if err != nil {
		return models.CurrentWeatherReading{}, err
	}

	p := &projector{obj: obj}
	reading := models.CurrentWeatherReading{
		Temperature: p.number("main.temp"),
		FeelsLike:   p.number("main.feels_like"),
		Humidity:    p.percentage("main.humidity"),
		WindSpeed:   p.number("wind.speed"),
		Condition:   p.text("weather.0.main"),
		Description: p.text("weather.0.description"),
		Icon:        p.text("weather.0.icon"),
		City:        p.optional("name"),
		Country:     p.optional("sys.country"),
	}
	if p.err != nil {
		return models.CurrentWeatherReading{}, p.err
	}
	return reading, nil
}

// ExtractForecast projects every bucket of a forecast payload's list, keeping input order.
// An empty list yields an empty slice.
func ExtractForecast(payload datasource.Payload) ([]models.ForecastRecord, error) {
	obj, err := parse(payload)
	if err != nil {
		return nil, err
	}

	list := obj.Get("list")
	if !list.Exists() {
		return nil, &FieldError{Path: "list", Err: ErrMissingKey}
	}
	if !list.IsArray() {
		return nil, &FieldError{Path: "list", Err: fmt.Errorf("%w: expected array, got %s", ErrInvalidValue, list.Type)}
	}

	items := list.Array()
	records := make([]models.ForecastRecord, 0, len(items))
	for i, item := range items {
		p := &projector{obj: item, prefix: fmt.Sprintf("list.%d.", i)}
		record := models.ForecastRecord{
			Time:        p.text("dt_txt"),
			Temp:        p.number("main.temp"),
			Humidity:    p.percentage("main.humidity"),
			WindSpeed:   p.number("wind.speed"),
			Condition:   p.text("weather.0.main"),
			Description: p.optional("weather.0.description"),
			Icon:        p.optional("weather.0.icon"),
		}
		if p.err != nil {
			return nil, p.err
		}
		records = append(records, record)
	}
	return records, nil
}
