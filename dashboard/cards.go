// Package dashboard renders search reports as metric cards, charts and HTML pages.
package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"weather-dashboard/datasource"
	"weather-dashboard/models"
	"weather-dashboard/pipeline"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const headlineDateLayout = "Monday, 02 January 2006"

// titleCase upper-cases the first letter of every word. Casers are stateful, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Card is a single labelled metric
type Card struct {
	Label string
	Value string
}

// Headline is the title block above the cards
type Headline struct {
	Title    string
	Subtitle string
	IconURL  string
}

// FormatTemperature rounds to one decimal, 15 -> "15.0°C"
func FormatTemperature(celsius float64) string {
	return fmt.Sprintf("%.1f°C", celsius)
}

// FormatHumidity renders an integer percentage
func FormatHumidity(humidity int) string {
	return fmt.Sprintf("%d%%", humidity)
}

// FormatWindSpeed renders the provider value as is
func FormatWindSpeed(speed float64) string {
	return strconv.FormatFloat(speed, 'f', -1, 64) + " m/s"
}

// MetricCards returns the four current-condition cards in display order
func MetricCards(r models.CurrentWeatherReading) []Card {
	return []Card{
		{Label: "Temperature", Value: FormatTemperature(r.Temperature)},
		{Label: "Feels Like", Value: FormatTemperature(r.FeelsLike)},
		{Label: "Humidity", Value: FormatHumidity(r.Humidity)},
		{Label: "Wind Speed", Value: FormatWindSpeed(r.WindSpeed)},
	}
}

// NewHeadline builds the title and subtitle for a report
func NewHeadline(report *pipeline.Report, now time.Time) Headline {
	h := Headline{
		Title:    "Current Weather in " + titleCase(report.City),
		Subtitle: titleCase(report.Current.Description) + " • " + now.Format(headlineDateLayout),
	}
	if report.Current.Icon != "" {
		h.IconURL = fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", report.Current.Icon)
	}
	return h
}

// DailyCards renders the daily mean temperatures
func DailyCards(daily []models.DailyAverage) []Card {
	cards := make([]Card, len(daily))
	for i, d := range daily {
		cards[i] = Card{Label: d.Date.Format("Mon 02 Jan"), Value: FormatTemperature(d.Temp)}
	}
	return cards
}

// UserMessage maps errors a user can act on to an inline message.
// The boolean is false for failures that should surface as an error page.
func UserMessage(city string, err error) (string, bool) {
	var pe *pipeline.ProviderError
	switch {
	case errors.As(err, &pe) && pe.Endpoint == "forecast":
		return fmt.Sprintf("❌ Could not load the forecast for '%s'. Please try again later.", city), true
	case errors.As(err, &pe):
		return fmt.Sprintf("❌ Could not find data for '%s'. Please check the spelling.", city), true
	case errors.Is(err, datasource.ErrEmptyCity):
		return "Please enter a city name.", true
	}
	return "", false
}
