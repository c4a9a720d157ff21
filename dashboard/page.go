package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"weather-dashboard/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is the view model of the dashboard page
type PageData struct {
	Query     string
	Error     string
	HasReport bool
	Headline  Headline
	Cards     []Card
	Daily     []Card
	ChartsDoc string // standalone chart page, embedded through the iframe's srcdoc
}

// ErrorData is the view model of the unhandled error page
type ErrorData struct {
	City   string
	Detail string
}

// NewPageData builds the view model for a search result. A nil report with a nil
// error is the empty search form. The charts are rendered from the same report as
// the cards, so one search is one fetch.
func NewPageData(query string, report *pipeline.Report, err error, now time.Time) (PageData, error) {
	data := PageData{Query: query}
	if err != nil {
		data.Error, _ = UserMessage(query, err)
		return data, nil
	}
	if report == nil {
		return data, nil
	}

	var charts bytes.Buffer
	if err := RenderCharts(&charts, report, now); err != nil {
		return PageData{}, fmt.Errorf("failed to render charts: %w", err)
	}

	data.HasReport = true
	data.Headline = NewHeadline(report, now)
	data.Cards = MetricCards(report.Current)
	data.Daily = DailyCards(report.Daily)
	data.ChartsDoc = charts.String()
	return data, nil
}

// Renderer executes the embedded HTML templates
type Renderer struct {
	index   *template.Template
	errPage *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}
	// error.html reuses the "style" block defined in index.html
	errPage, err := template.ParseFS(templateFS, "templates/error.html", "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse error template: %w", err)
	}
	return &Renderer{index: index, errPage: errPage}, nil
}

// RenderDashboard writes the dashboard page
func (r *Renderer) RenderDashboard(w io.Writer, data PageData) error {
	return r.index.ExecuteTemplate(w, "index.html", data)
}

// RenderError writes the page shown for failures that have no inline message
func (r *Renderer) RenderError(w io.Writer, data ErrorData) error {
	return r.errPage.ExecuteTemplate(w, "error.html", data)
}
