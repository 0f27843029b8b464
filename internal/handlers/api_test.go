package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fruitdash/internal/models"
	"fruitdash/internal/services"
)

func testDataset() *services.Dataset {
	d := services.NewDataset()
	d.SetData([]models.Shipment{
		{
			Season:      "2023-2024",
			Transport:   "LINER",
			Specie:      "GRAPES",
			Variety:     "SWEET GLOBE",
			Importer:    "FRESH FRUITS INC",
			Exporter:    "ANDES EXPORT",
			ArrivalPort: "PHILADELPHIA",
			Vessel:      "STAR CARE",
			ETA:         time.Date(2023, 12, 18, 0, 0, 0, 0, time.UTC),
			Boxes:       1200,
		},
		{
			Season:      "2023-2024",
			Transport:   "AIR",
			Specie:      "CHERRIES",
			Variety:     "LAPINS",
			Importer:    "PACIFIC TRADE",
			Exporter:    "ANDES EXPORT",
			ArrivalPort: "LOS ANGELES",
			ETA:         time.Date(2023, 12, 26, 0, 0, 0, 0, time.UTC),
			Boxes:       350,
		},
	})
	return d
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return envelope
}

func TestAPIHandlers_HandleOverview(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	rec := httptest.NewRecorder()
	h.HandleOverview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != true {
		t.Error("expected success envelope")
	}
	data := envelope["data"].(map[string]any)
	metrics := data["metrics"].(map[string]any)
	if metrics["total_boxes"].(float64) != 1550 {
		t.Errorf("expected 1550 total boxes, got %v", metrics["total_boxes"])
	}
}

func TestAPIHandlers_FilterApplied(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/overview?transport=LINER", nil)
	rec := httptest.NewRecorder()
	h.HandleOverview(rec, req)

	envelope := decodeEnvelope(t, rec)
	metrics := envelope["data"].(map[string]any)["metrics"].(map[string]any)
	if metrics["shipments"].(float64) != 1 {
		t.Errorf("expected 1 shipment after filter, got %v", metrics["shipments"])
	}
}

func TestAPIHandlers_InvalidFilter(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/overview?eta_from=garbage", nil)
	rec := httptest.NewRecorder()
	h.HandleOverview(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed filter, got %d", rec.Code)
	}

	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != false {
		t.Error("expected error envelope")
	}
}

func TestAPIHandlers_HandleOptions(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	rec := httptest.NewRecorder()
	h.HandleOptions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age") {
		t.Errorf("options should be cacheable, got Cache-Control %q", cc)
	}

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	transports := data["transports"].([]any)
	if len(transports) != 2 {
		t.Errorf("expected 2 transport options, got %v", transports)
	}
}

func TestAPIHandlers_HandleShipments_Limit(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/shipments?limit=1", nil)
	rec := httptest.NewRecorder()
	h.HandleShipments(rec, req)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	if got := len(data["shipments"].([]any)); got != 1 {
		t.Errorf("expected 1 row with limit=1, got %d", got)
	}
	if data["total"].(float64) != 2 {
		t.Errorf("total should report the unclipped count, got %v", data["total"])
	}
}

func TestAPIHandlers_HandleShipments_BadLimit(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	for _, limit := range []string{"0", "-3", "ten"} {
		req := httptest.NewRequest(http.MethodGet, "/api/shipments?limit="+limit, nil)
		rec := httptest.NewRecorder()
		h.HandleShipments(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", limit, rec.Code)
		}
	}
}

func TestAPIHandlers_HandleExport_CSV(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/export?transport=LINER", nil)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected CSV content type, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 filtered row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "LINER") {
		t.Errorf("exported row should match the filter: %q", lines[1])
	}
}

func TestAPIHandlers_HandleExport_XLSX(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/export?format=xlsx", nil)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("expected XLSX content type, got %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("workbook body is empty")
	}
}

func TestAPIHandlers_HandleExport_UnknownFormat(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/export?format=pdf", nil)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported format, got %d", rec.Code)
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", data["status"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	h := NewAPIHandlers(testDataset(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	h.HandleStats(rec, req)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	if data["record_count"].(float64) != 2 {
		t.Errorf("expected 2 records, got %v", data["record_count"])
	}
}
