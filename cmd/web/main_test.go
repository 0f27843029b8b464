package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"fruitdash/internal/models"
	"fruitdash/internal/server"
	"fruitdash/internal/services"
)

func newTestDataset() *services.Dataset {
	d := services.NewDataset()
	d.SetData([]models.Shipment{
		{
			Season:      "2023-2024",
			ETDWeek:     "49-2023",
			ETAWeek:     "51-2023",
			ETA:         time.Date(2023, 12, 18, 0, 0, 0, 0, time.UTC),
			Transport:   "LINER",
			Specie:      "GRAPES",
			Variety:     "SWEET GLOBE",
			Importer:    "FRESH FRUITS INC",
			Exporter:    "ANDES EXPORT",
			ArrivalPort: "PHILADELPHIA",
			Vessel:      "STAR CARE",
			Boxes:       1200,
		},
		{
			Season:      "2023-2024",
			ETDWeek:     "50-2023",
			ETAWeek:     "52-2023",
			ETA:         time.Date(2023, 12, 26, 0, 0, 0, 0, time.UTC),
			Transport:   "AIR",
			Specie:      "CHERRIES",
			Variety:     "LAPINS",
			Importer:    "PACIFIC TRADE",
			Exporter:    "ANDES EXPORT",
			ArrivalPort: "LOS ANGELES",
			Boxes:       350,
		},
	})
	return d
}

func newTestServer() *server.Server {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	templateHandlers := &server.TemplateHandlers{Dashboard: handleDashboard}
	return server.NewServer(newTestDataset(), logger, templateHandlers)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/options", http.StatusOK, "application/json"},
		{"/api/overview", http.StatusOK, "application/json"},
		{"/api/transport", http.StatusOK, "application/json"},
		{"/api/importers", http.StatusOK, "application/json"},
		{"/api/exporters", http.StatusOK, "application/json"},
		{"/api/ports", http.StatusOK, "application/json"},
		{"/api/timeline", http.StatusOK, "application/json"},
		{"/api/shipments", http.StatusOK, "application/json"},
		{"/api/export", http.StatusOK, "text/csv"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestServer_ChartRoutes(t *testing.T) {
	srv := newTestServer()

	chartRoutes := []string{
		"/charts/transport.png",
		"/charts/importers.png",
		"/charts/exporters.png",
		"/charts/ports.png",
		"/charts/seasons.png",
		"/charts/timeline.png",
	}

	for _, route := range chartRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("content-type = %q, want image/png", ct)
			}
		})
	}
}

func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer()

	sseRoutes := []string{
		"/sse/refresh",
		"/sse/shipments",
	}

	for _, route := range sseRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}
		})
	}
}

func TestServer_FilteredExport(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/export?transport=LINER", nil)
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 filtered row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "STAR CARE") {
		t.Errorf("exported row should be the LINER shipment: %q", lines[1])
	}
}

func TestServer_ErrorHandling(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/overview", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"GET", "/api/overview?eta_from=bad", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestDashboardTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	handleDashboard(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	// The page is rendered to a buffer first, so headers are only written
	// once the full body is known.
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content-type = %q, want text/html", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc == "" {
		t.Error("cache-control should be set on a successful render")
	}

	body := w.Body.String()
	if !strings.Contains(body, "Fruit Import/Export Analysis Dashboard") {
		t.Error("dashboard should contain title")
	}

	expectedComponents := []string{
		"Filters",
		"Overview",
		"Analysis",
		"Shipments",
		"Download filtered CSV",
		"/sse/refresh",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}
}
