package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/pipeline"
)

const (
	weatherPrefix  = "/api/weather/location/"
	forecastPrefix = "/api/forecast/location/"
)

// Server represents the dashboard and JSON API server
type Server struct {
	searcher *pipeline.Searcher
	renderer *dashboard.Renderer
	server   *http.Server
	now      func() time.Time
}

// NewServer creates a new server for the given searcher and renderer
func NewServer(searcher *pipeline.Searcher, renderer *dashboard.Renderer, port int) *Server {
	mux := http.NewServeMux()

	server := &Server{
		searcher: searcher,
		renderer: renderer,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		now: time.Now,
	}

	// Browser pages
	mux.HandleFunc("/", server.handleDashboard)
	mux.HandleFunc("/charts", server.handleCharts)

	// JSON API
	mux.HandleFunc(weatherPrefix, server.handleGetWeatherByLocation)
	mux.HandleFunc(forecastPrefix, server.handleGetForecastByLocation)

	// Health check
	mux.HandleFunc("/api/health", server.handleHealthCheck)

	return server
}

// Handler exposes the routing table, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and blocks until the server stops
func (s *Server) Start() error {
	log.Printf("Starting server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleDashboard serves the search form and, when a city is given, its report
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("city"))
	if query == "" {
		s.writeDashboard(w, "", nil, nil)
		return
	}

	report, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		if _, inline := dashboard.UserMessage(query, err); !inline {
			log.Printf("Search for %q failed: %v", query, err)
			s.writeError(w, query, err)
			return
		}
		log.Printf("Search for %q rejected by provider: %v", query, err)
	}
	s.writeDashboard(w, query, report, err)
}

// handleCharts serves the chart page on its own, for linking or scripting.
// The dashboard does not use it; it inlines the charts of its own search.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("city"))
	report, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		if msg, inline := dashboard.UserMessage(query, err); inline {
			http.Error(w, msg, statusFor(err))
			return
		}
		log.Printf("Charts for %q failed: %v", query, err)
		http.Error(w, "Failed to build charts", http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := dashboard.RenderCharts(&buf, report, s.now()); err != nil {
		log.Printf("Rendering charts for %q failed: %v", query, err)
		http.Error(w, "Failed to render charts", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleGetWeatherByLocation returns the extracted current reading for a city
func (s *Server) handleGetWeatherByLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	location := strings.Trim(r.URL.Path[len(weatherPrefix):], "/")
	if location == "" {
		http.Error(w, "Location not specified", http.StatusBadRequest)
		return
	}

	reading, err := s.searcher.Current(r.Context(), location)
	if err != nil {
		s.writeJSONError(w, location, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"location":  location,
		"data":      reading,
		"timestamp": s.now(),
	})
}

// handleGetForecastByLocation returns the tabulated forecast and its daily means
func (s *Server) handleGetForecastByLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	location := strings.Trim(r.URL.Path[len(forecastPrefix):], "/")
	if location == "" {
		http.Error(w, "Location not specified", http.StatusBadRequest)
		return
	}

	series, daily, err := s.searcher.Forecast(r.Context(), location)
	if err != nil {
		s.writeJSONError(w, location, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"location":  location,
		"forecast":  series,
		"daily":     daily,
		"timestamp": s.now(),
	})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) writeDashboard(w http.ResponseWriter, query string, report *pipeline.Report, searchErr error) {
	data, err := dashboard.NewPageData(query, report, searchErr, s.now())
	if err != nil {
		log.Printf("Building dashboard for %q failed: %v", query, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderDashboard(&buf, data); err != nil {
		log.Printf("Rendering dashboard failed: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, city string, cause error) {
	var buf bytes.Buffer
	if err := s.renderer.RenderError(&buf, dashboard.ErrorData{City: city, Detail: cause.Error()}); err != nil {
		log.Printf("Rendering error page failed: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	w.Write(buf.Bytes())
}

func (s *Server) writeJSONError(w http.ResponseWriter, location string, err error) {
	status := statusFor(err)
	if status == http.StatusBadGateway {
		log.Printf("Lookup for %q failed: %v", location, err)
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
	})
}

// statusFor maps pipeline errors onto HTTP statuses
func statusFor(err error) int {
	var pe *pipeline.ProviderError
	switch {
	case errors.Is(err, datasource.ErrEmptyCity):
		return http.StatusBadRequest
	case errors.As(err, &pe) && pe.Code == http.StatusNotFound:
		return http.StatusNotFound
	case errors.As(err, &pe) && pe.Code == http.StatusTooManyRequests:
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Encoding response failed: %v", err)
	}
}
