package models

import (
	"time"
)

// ForecastTimeLayout is the layout of the provider's dt_txt field
const ForecastTimeLayout = "2006-01-02 15:04:05"

// ForecastRecord is a single 3-hour bucket as extracted from the provider, time still in text form
type ForecastRecord struct {
	Time        string  `json:"time"`
	Temp        float64 `json:"temp"`      // in Celsius
	Humidity    int     `json:"humidity"`  // percentage
	WindSpeed   float64 `json:"windSpeed"` // in m/s
	Condition   string  `json:"condition"`
	Description string  `json:"description,omitempty"`
	Icon        string  `json:"icon,omitempty"`
}

// ForecastEntry is a forecast bucket with a parsed timestamp
type ForecastEntry struct {
	Time        time.Time `json:"time"`
	Temp        float64   `json:"temp"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	Condition   string    `json:"condition"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
}

// ForecastSeries is the time-ordered list of forecast entries
type ForecastSeries []ForecastEntry

// Times returns the timestamps of the series in order
func (s ForecastSeries) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, e := range s {
		out[i] = e.Time
	}
	return out
}

// Temps returns the temperatures of the series in order
func (s ForecastSeries) Temps() []float64 {
	out := make([]float64, len(s))
	for i, e := range s {
		out[i] = e.Temp
	}
	return out
}

// WindSpeeds returns the wind speeds of the series in order
func (s ForecastSeries) WindSpeeds() []float64 {
	out := make([]float64, len(s))
	for i, e := range s {
		out[i] = e.WindSpeed
	}
	return out
}

// DailyAverage is the mean temperature of all buckets sharing a calendar date
type DailyAverage struct {
	Date    time.Time `json:"date"`    // midnight UTC of the day
	Temp    float64   `json:"temp"`    // mean in Celsius
	Samples int       `json:"samples"` // number of buckets averaged
}
