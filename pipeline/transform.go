package pipeline

import (
	"fmt"
	"time"

	"weather-dashboard/models"
)

// TimeParseError reports a forecast bucket whose time text does not match models.ForecastTimeLayout
type TimeParseError struct {
	Index int
	Text  string
	Err   error
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("forecast entry %d: cannot parse time %q: %v", e.Index, e.Text, e.Err)
}

func (e *TimeParseError) Unwrap() error {
	return e.Err
}

// ParseForecastTime parses a dt_txt value. The provider reports these in UTC.
// The text must match the layout exactly: no unpadded fields, no fractional seconds.
func ParseForecastTime(text string) (time.Time, error) {
	t, err := time.ParseInLocation(models.ForecastTimeLayout, text, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(models.ForecastTimeLayout) != text {
		return time.Time{}, fmt.Errorf("%q is not in %s form", text, models.ForecastTimeLayout)
	}
	return t, nil
}

// Tabulate parses the time of every record and returns a new series in the same order
func Tabulate(records []models.ForecastRecord) (models.ForecastSeries, error) {
	series := make(models.ForecastSeries, 0, len(records))
	for i, r := range records {
		t, err := ParseForecastTime(r.Time)
		if err != nil {
			return nil, &TimeParseError{Index: i, Text: r.Time, Err: err}
		}
		series = append(series, models.ForecastEntry{
			Time:        t,
			Temp:        r.Temp,
			Humidity:    r.Humidity,
			WindSpeed:   r.WindSpeed,
			Condition:   r.Condition,
			Description: r.Description,
			Icon:        r.Icon,
		})
	}
	return series, nil
}

// DailyAverage groups entries by calendar date and returns the mean temperature per date.
// Dates appear in the order they are first seen in the series.
func DailyAverage(series models.ForecastSeries) []models.DailyAverage {
	type bucket struct {
		date  time.Time
		sum   float64
		count int
	}

	index := make(map[time.Time]int)
	var buckets []bucket
	for _, e := range series {
		y, m, d := e.Time.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

		i, ok := index[date]
		if !ok {
			i = len(buckets)
			index[date] = i
			buckets = append(buckets, bucket{date: date})
		}
		buckets[i].sum += e.Temp
		buckets[i].count++
	}

	out := make([]models.DailyAverage, len(buckets))
	for i, b := range buckets {
		out[i] = models.DailyAverage{
			Date:    b.date,
			Temp:    b.sum / float64(b.count),
			Samples: b.count,
		}
	}
	return out
}
