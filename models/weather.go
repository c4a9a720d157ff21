package models

// CurrentWeatherReading is the flat record extracted from a current weather response
type CurrentWeatherReading struct {
	City        string  `json:"city"`
	Country     string  `json:"country,omitempty"`
	Temperature float64 `json:"temperature"` // in Celsius
	FeelsLike   float64 `json:"feelsLike"`   // in Celsius
	Humidity    int     `json:"humidity"`    // percentage
	WindSpeed   float64 `json:"windSpeed"`   // in m/s
	Condition   string  `json:"condition"`   // short category, e.g. "Rain"
	Description string  `json:"description"` // human readable text
	Icon        string  `json:"icon"`        // icon code
}
