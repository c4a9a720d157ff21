package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/pipeline"

	"github.com/PuerkitoBio/goquery"
)

const londonCurrent = `{"weather":[{"main":"Rain","description":"light rain","icon":"10d"}],
"main":{"temp":15.0,"feels_like":14.32,"humidity":65},"wind":{"speed":4.12},
"sys":{"country":"GB"},"name":"London","cod":200}`

const londonForecast = `{"cod":"200","cnt":3,"list":[
{"main":{"temp":10,"humidity":60},"wind":{"speed":3.2},"weather":[{"main":"Clouds","description":"broken clouds","icon":"04d"}],"dt_txt":"2024-01-01 12:00:00"},
{"main":{"temp":20,"humidity":62},"wind":{"speed":5.1},"weather":[{"main":"Clouds","description":"broken clouds","icon":"04d"}],"dt_txt":"2024-01-01 15:00:00"},
{"main":{"temp":30,"humidity":70},"wind":{"speed":7.4},"weather":[{"main":"Rain","description":"light rain","icon":"10n"}],"dt_txt":"2024-01-02 00:00:00"}]}`

const notFound = `{"cod":"404","message":"city not found"}`

// mockOpenWeatherMap answers per city the way the real provider does,
// including non-2xx statuses carrying a JSON body. Every request is counted.
func mockOpenWeatherMap(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		endpoint := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		status, body := http.StatusOK, ""

		switch city := r.URL.Query().Get("q"); {
		case city == "London" && endpoint == "weather":
			body = londonCurrent
		case city == "London" && endpoint == "forecast":
			body = londonForecast
		case city == "Stormy" && endpoint == "weather":
			body = londonCurrent
		case city == "Stormy":
			status, body = http.StatusInternalServerError, `{"cod":"500","message":"internal error"}`
		case city == "Brokenville" && endpoint == "weather":
			body = `{"cod":200,"name":"Brokenville","wind":{"speed":1}}`
		case city == "Brokenville":
			body = londonForecast
		case city == "Proxyville":
			// an intermediary's error page, not the provider's
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, "<html>502 Bad Gateway</html>")
			return
		default:
			status, body = http.StatusNotFound, notFound
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	server, _ := newCountingServer(t)
	return server
}

// newCountingServer also returns the number of requests that reached the provider
func newCountingServer(t *testing.T) (*Server, *atomic.Int32) {
	t.Helper()
	hits := &atomic.Int32{}
	upstream := mockOpenWeatherMap(t, hits)
	t.Cleanup(upstream.Close)

	cfg := datasource.DefaultConfig()
	cfg.OpenWeatherMap.APIKey = "test-key"
	cfg.OpenWeatherMap.BaseURL = upstream.URL

	renderer, err := dashboard.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	server := NewServer(pipeline.NewSearcher(datasource.NewOpenWeatherMapProviderFromConfig(cfg)), renderer, 0)
	server.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	return server, hits
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func TestDashboardSearch(t *testing.T) {
	s, hits := newCountingServer(t)
	rec := get(t, s, "/?city=London")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// current + forecast, charts included
	if n := hits.Load(); n != 2 {
		t.Errorf("provider calls for one search = %d, want 2", n)
	}

	doc := parse(t, rec)
	if got := doc.Find(".current .metric-value").First().Text(); got != "15.0°C" {
		t.Errorf("temperature card = %q, want 15.0°C", got)
	}
	if got := doc.Find(".current h2").Text(); !strings.Contains(got, "Current Weather in London") {
		t.Errorf("headline = %q", got)
	}
	iframe := doc.Find("iframe.charts")
	if _, ok := iframe.Attr("src"); ok {
		t.Errorf("iframe must not load the charts with another request")
	}
	srcdoc, _ := iframe.Attr("srcdoc")
	for _, title := range []string{"5-Day Temperature Trend", "Current vs Forecast Temperature", "Wind Velocity Forecast"} {
		if !strings.Contains(srcdoc, title) {
			t.Errorf("inline charts are missing %q", title)
		}
	}
	if doc.Find(".daily .metric-card").Length() != 2 {
		t.Errorf("expected two daily cards")
	}
	if doc.Find(".error").Length() != 0 {
		t.Errorf("unexpected error block")
	}
}

func TestDashboardCityNotFound(t *testing.T) {
	rec := get(t, newTestServer(t), "/?city=Nowhere12345")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	doc := parse(t, rec)
	msg := doc.Find(".error").Text()
	if !strings.Contains(msg, "Could not find data for 'Nowhere12345'") {
		t.Errorf("error message = %q", msg)
	}
	if doc.Find("iframe").Length() != 0 || doc.Find(".current").Length() != 0 {
		t.Errorf("no charts or cards expected for an unknown city")
	}
}

func TestDashboardForecastFailure(t *testing.T) {
	rec := get(t, newTestServer(t), "/?city=Stormy")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if msg := parse(t, rec).Find(".error").Text(); !strings.Contains(msg, "Could not load the forecast for 'Stormy'") {
		t.Errorf("error message = %q", msg)
	}
}

func TestDashboardMalformedPayload(t *testing.T) {
	rec := get(t, newTestServer(t), "/?city=Brokenville")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if detail := parse(t, rec).Find(".detail").Text(); !strings.Contains(detail, "main.temp") {
		t.Errorf("detail = %q", detail)
	}
}

func TestDashboardNonJSONUpstream(t *testing.T) {
	rec := get(t, newTestServer(t), "/?city=Proxyville")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	doc := parse(t, rec)
	if strings.Contains(doc.Text(), "check the spelling") {
		t.Errorf("a non-JSON body was reported as an unknown city")
	}
	if detail := doc.Find(".detail").Text(); !strings.Contains(detail, "not valid JSON") {
		t.Errorf("detail = %q", detail)
	}

	if rec := get(t, newTestServer(t), "/api/weather/location/Proxyville"); rec.Code != http.StatusBadGateway {
		t.Errorf("JSON status = %d, want 502", rec.Code)
	}
}

func TestDashboardEmptyQuery(t *testing.T) {
	for _, target := range []string{"/", "/?city=", "/?city=%20%20"} {
		rec := get(t, newTestServer(t), target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		doc := parse(t, rec)
		if doc.Find("form.search").Length() != 1 || doc.Find(".error").Length() != 0 || doc.Find(".current").Length() != 0 {
			t.Errorf("%s: expected the bare search form", target)
		}
	}
}

func TestUnknownPath(t *testing.T) {
	if rec := get(t, newTestServer(t), "/favicon.ico"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCharts(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/charts?city=London")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, title := range []string{"5-Day Temperature Trend", "Current Humidity", "Wind Velocity Forecast"} {
		if !strings.Contains(body, title) {
			t.Errorf("charts page is missing %q", title)
		}
	}

	if rec := get(t, s, "/charts?city=Nowhere12345"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown city status = %d, want 404", rec.Code)
	}
	if rec := get(t, s, "/charts"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing city status = %d, want 400", rec.Code)
	}
	if rec := get(t, s, "/charts?city=Brokenville"); rec.Code != http.StatusBadGateway {
		t.Errorf("malformed payload status = %d, want 502", rec.Code)
	}
}

func TestWeatherJSON(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/weather/location/London")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp struct {
		Location string `json:"location"`
		Data     struct {
			Temperature float64 `json:"temperature"`
			Humidity    int     `json:"humidity"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Location != "London" || resp.Data.Temperature != 15.0 || resp.Data.Humidity != 65 {
		t.Errorf("unexpected response: %+v", resp)
	}

	if rec := get(t, s, "/api/weather/location/Nowhere12345"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown city status = %d, want 404", rec.Code)
	}
	if rec := get(t, s, "/api/weather/location/"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing location status = %d, want 400", rec.Code)
	}
}

func TestForecastJSON(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/forecast/location/London")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Forecast []json.RawMessage `json:"forecast"`
		Daily    []struct {
			Temp float64 `json:"temp"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.Forecast) != 3 {
		t.Errorf("forecast entries = %d, want 3", len(resp.Forecast))
	}
	if len(resp.Daily) != 2 || resp.Daily[0].Temp != 15 || resp.Daily[1].Temp != 30 {
		t.Errorf("daily = %+v", resp.Daily)
	}

	if rec := get(t, s, "/api/forecast/location/Stormy"); rec.Code != http.StatusBadGateway {
		t.Errorf("provider failure status = %d, want 502", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp["status"] != "ok" || resp["timestamp"] != "2024-01-01T09:00:00Z" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/", "/charts", "/api/weather/location/London", "/api/forecast/location/London", "/api/health"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: status = %d, want 405", target, rec.Code)
		}
	}
}
