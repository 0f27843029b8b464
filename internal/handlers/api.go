package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fruitdash/internal/errors"
	"fruitdash/internal/models"
	"fruitdash/internal/observability"
	"fruitdash/internal/services"
)

const (
	cacheMaxAge = "public, max-age=60"

	maxVessels      = 10
	maxPartnerships = 20

	defaultRawRows = 100
	maxRawRows     = 1000
)

type APIHandlers struct {
	dataset *services.Dataset
	logger  *slog.Logger
}

func NewAPIHandlers(dataset *services.Dataset, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dataset: dataset,
		logger:  logger,
	}
}

// filteredSubset parses the filter query parameters and applies them to the
// dataset. On a malformed filter it writes the error response and reports
// false.
func filteredSubset(w http.ResponseWriter, r *http.Request, dataset *services.Dataset, logger *slog.Logger) ([]models.Shipment, bool) {
	f, err := services.ParseFilter(r.URL.Query())
	if err != nil {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, logger, errors.BadRequestWrap(err, "invalid filter"), requestID)
		return nil, false
	}
	return dataset.Filtered(f), true
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	headers := map[string]string{
		"Cache-Control": cacheMaxAge,
	}

	errors.WriteSuccessWithHeaders(w, h.dataset.Options(), headers)
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	data := struct {
		Metrics  models.OverviewMetrics `json:"metrics"`
		BySpecie []models.SpecieTotal   `json:"by_specie"`
	}{
		Metrics:  services.Overview(rows),
		BySpecie: services.SpecieTotals(rows),
	}

	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandleTransport(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	data := struct {
		Modes       []models.TransportSummary `json:"modes"`
		TransitDays []models.TransitSummary   `json:"transit_days"`
		TopVessels  []models.VesselVolume     `json:"top_vessels"`
	}{
		Modes:       services.TransportSummaries(rows),
		TransitDays: services.TransitByTransport(rows),
		TopVessels:  services.TopVessels(rows, maxVessels),
	}

	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandleImporters(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	data := struct {
		Importers    []models.EntityVolume `json:"importers"`
		Partnerships []models.Partnership  `json:"partnerships"`
	}{
		Importers:    services.ImporterVolumes(rows),
		Partnerships: services.TopPartnerships(rows, maxPartnerships),
	}

	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandleExporters(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	data := struct {
		Exporters    []models.EntityVolume `json:"exporters"`
		Partnerships []models.Partnership  `json:"partnerships"`
	}{
		Exporters:    services.ExporterVolumes(rows),
		Partnerships: services.TopPartnerships(rows, maxPartnerships),
	}

	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandlePorts(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	data := struct {
		Ports          []models.PortSummary   `json:"ports"`
		TransportSplit []models.PortTransport `json:"transport_split"`
	}{
		Ports:          services.PortSummaries(rows),
		TransportSplit: services.PortTransportSplit(rows),
	}

	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	data := struct {
		Weekly  []models.WeeklyVolume  `json:"weekly"`
		Monthly []models.MonthlyVolume `json:"monthly"`
		Seasons []models.SeasonVolume  `json:"seasons"`
	}{
		Weekly:  services.WeeklyVolumes(rows),
		Monthly: services.MonthlyVolumes(rows),
		Seasons: services.SeasonVolumes(rows),
	}

	errors.WriteSuccess(w, data)
}

// HandleShipments serves the filtered rows themselves for the raw-data view.
func (h *APIHandlers) HandleShipments(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	limit := defaultRawRows
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			requestID := observability.GetRequestID(r.Context())
			errors.WriteError(w, h.logger, errors.BadRequest("limit must be a positive integer"), requestID)
			return
		}
		limit = min(n, maxRawRows)
	}

	total := len(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}

	data := struct {
		Shipments []models.Shipment `json:"shipments"`
		Total     int               `json:"total"`
	}{
		Shipments: rows,
		Total:     total,
	}

	errors.WriteSuccess(w, data)
}

// HandleExport streams the filtered rows back out in the input file's column
// order, as CSV by default or as an XLSX workbook with ?format=xlsx.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	columns := h.dataset.Columns()

	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="filtered_shipments.csv"`)
		if err := services.WriteCSV(w, columns, rows); err != nil {
			h.logger.Error("export csv", "error", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="filtered_shipments.xlsx"`)
		if err := services.WriteXLSX(w, columns, rows); err != nil {
			h.logger.Error("export xlsx", "error", err)
		}
	default:
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.BadRequest("unsupported export format"), requestID)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dataset.Stats())
}
