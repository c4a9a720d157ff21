package dashboard

import (
	"io"
	"time"

	"weather-dashboard/models"
	"weather-dashboard/pipeline"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	axisTimeLayout = "Jan 02 15:04"
	axisDateLayout = "Mon 02 Jan"

	primaryColor  = "#3B82F6"
	humidityColor = "#1CB5E0"
)

// Viridis endpoints for the wind bars
var windColors = []string{"#440154", "#3B528B", "#21918C", "#5EC962", "#FDE725"}

func baseOptions(title string, trigger string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeChalk,
			Width:  "100%",
			Height: "380px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: trigger}),
	}
}

func timeLabels(times []time.Time) []string {
	labels := make([]string, len(times))
	for i, t := range times {
		labels[i] = t.Format(axisTimeLayout)
	}
	return labels
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func barData(values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: v}
	}
	return data
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// TemperatureTrend is the area chart of the forecast temperatures
func TemperatureTrend(series models.ForecastSeries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions("5-Day Temperature Trend", "axis"),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Temperature (°C)"}),
		charts.WithColorsOpts(opts.Colors{primaryColor}),
	)...)
	line.SetXAxis(timeLabels(series.Times())).
		AddSeries("Temperature", lineData(series.Temps()),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.4}),
			charts.WithLineChartOpts(opts.LineChart{Smooth: true}),
		)
	return line
}

// CurrentVsForecastPoints prepends the current reading, stamped now, to the forecast
func CurrentVsForecastPoints(reading models.CurrentWeatherReading, series models.ForecastSeries, now time.Time) ([]time.Time, []float64) {
	times := append([]time.Time{now}, series.Times()...)
	temps := append([]float64{reading.Temperature}, series.Temps()...)
	return times, temps
}

// CurrentVsForecast is the line chart joining the current temperature to the forecast
func CurrentVsForecast(reading models.CurrentWeatherReading, series models.ForecastSeries, now time.Time) *charts.Line {
	times, temps := CurrentVsForecastPoints(reading, series, now)

	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions("Current vs Forecast Temperature", "axis"),
		charts.WithYAxisOpts(opts.YAxis{Name: "Temperature (°C)"}),
	)...)
	line.SetXAxis(timeLabels(times)).
		AddSeries("Temperature", lineData(temps),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: true}),
		)
	return line
}

// DailyAverageChart is the line chart of mean temperature per day
func DailyAverageChart(daily []models.DailyAverage) *charts.Line {
	labels := make([]string, len(daily))
	temps := make([]float64, len(daily))
	for i, d := range daily {
		labels[i] = d.Date.Format(axisDateLayout)
		temps[i] = d.Temp
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions("5-Day Average Temperature", "axis"),
		charts.WithYAxisOpts(opts.YAxis{Name: "Temperature (°C)"}),
	)...)
	line.SetXAxis(labels).
		AddSeries("Daily mean", lineData(temps),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: true}),
		)
	return line
}

// HumiditySlices returns the pie values: humidity and its complement to 100
func HumiditySlices(humidity int) []opts.PieData {
	return []opts.PieData{
		{Name: "Humidity", Value: humidity},
		{Name: "Remaining Air", Value: 100 - humidity},
	}
}

// HumidityPie splits 100% into humidity and remaining air
func HumidityPie(reading models.CurrentWeatherReading) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(append(baseOptions("Humidity Share", "item"),
		charts.WithColorsOpts(opts.Colors{humidityColor, "#374151"}),
	)...)
	pie.AddSeries("Humidity", HumiditySlices(reading.Humidity),
		charts.WithLabelOpts(opts.Label{Show: true, Formatter: "{b}: {d}%"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
	)
	return pie
}

// HumidityGauge shows the current humidity on a 0-100 dial
func HumidityGauge(reading models.CurrentWeatherReading) *charts.Gauge {
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(baseOptions("Current Humidity", "item")...)
	gauge.AddSeries("Humidity",
		[]opts.GaugeData{{Name: "Humidity", Value: reading.Humidity}},
		charts.WithItemStyleOpts(opts.ItemStyle{Color: humidityColor}),
	)
	return gauge
}

// WindTrend is the bar chart of forecast wind speeds, coloured by speed
func WindTrend(series models.ForecastSeries) *charts.Bar {
	speeds := series.WindSpeeds()

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(baseOptions("Wind Velocity Forecast", "axis"),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Speed (m/s)"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        0,
			Max:        float32(maxOf(speeds)),
			InRange:    &opts.VisualMapInRange{Color: windColors},
		}),
	)...)
	bar.SetXAxis(timeLabels(series.Times())).
		AddSeries("Wind speed", barData(speeds))
	return bar
}

// WindSpeedLine is the plain line variant of the wind trend
func WindSpeedLine(series models.ForecastSeries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions("Wind Speed Trend", "axis"),
		charts.WithYAxisOpts(opts.YAxis{Name: "m/s"}),
	)...)
	line.SetXAxis(timeLabels(series.Times())).
		AddSeries("Wind speed", lineData(series.WindSpeeds()),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: true}),
		)
	return line
}

// ChartsPage assembles every chart of a report into one page
func ChartsPage(report *pipeline.Report, now time.Time) *components.Page {
	page := components.NewPage()
	page.PageTitle = "Weather Analytics · " + titleCase(report.City)
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		TemperatureTrend(report.Forecast),
		HumidityGauge(report.Current),
		CurrentVsForecast(report.Current, report.Forecast, now),
		DailyAverageChart(report.Daily),
		HumidityPie(report.Current),
		WindTrend(report.Forecast),
		WindSpeedLine(report.Forecast),
	)
	return page
}

// RenderCharts writes the chart page for a report
func RenderCharts(w io.Writer, report *pipeline.Report, now time.Time) error {
	return ChartsPage(report, now).Render(w)
}
