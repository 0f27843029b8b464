package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"fruitdash/internal/models"
	"fruitdash/internal/services"
)

const maxTableRows = 50

var metricsTemplate = template.Must(template.New("metrics").Parse(`
<div id="overview-metrics" class="metrics">
<div class="metric"><span>Shipments</span><strong>{{.Shipments}}</strong></div>
<div class="metric"><span>Total Boxes</span><strong>{{.TotalBoxes}}</strong></div>
<div class="metric"><span>Avg Boxes/Shipment</span><strong>{{printf "%.1f" .AvgBoxesPerShipment}}</strong></div>
<div class="metric"><span>Avg Transit Days</span><strong>{{.AvgTransit}}</strong></div>
<div class="metric"><span>Importers</span><strong>{{.UniqueImporters}}</strong></div>
<div class="metric"><span>Exporters</span><strong>{{.UniqueExporters}}</strong></div>
<div class="metric"><span>Varieties</span><strong>{{.UniqueVarieties}}</strong></div>
<div class="metric"><span>Ports</span><strong>{{.UniquePorts}}</strong></div>
</div>`))

var shipmentTableTemplate = template.Must(template.New("shipmentTable").Parse(`
<div id="shipments-content">
<table class="data-table">
<thead><tr><th>Season</th><th>ETA</th><th>Transport</th><th>Variety</th><th>Importer</th><th>Exporter</th><th>Port</th><th>Vessel</th><th>Boxes</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Season}}</td>
<td>{{.ETA.Format "02-01-2006"}}</td>
<td>{{.Transport}}</td>
<td>{{.Variety}}</td>
<td>{{.Importer}}</td>
<td>{{.Exporter}}</td>
<td>{{.ArrivalPort}}</td>
<td>{{.Vessel}}</td>
<td><strong>{{.Boxes}}</strong></td>
</tr>{{end}}
</tbody>
</table>
<p class="table-note">showing {{len .Rows}} of {{.Total}} shipments</p>
</div>`))

var chartGridTemplate = template.Must(template.New("chartGrid").Parse(`
<div id="charts-content" class="charts">
<img src="/charts/transport.png?{{.Query}}" alt="Boxes by transport mode">
<img src="/charts/timeline.png?{{.Query}}" alt="Weekly shipment volume">
<img src="/charts/importers.png?{{.Query}}" alt="Top importers">
<img src="/charts/exporters.png?{{.Query}}" alt="Top exporters">
<img src="/charts/ports.png?{{.Query}}" alt="Boxes by arrival port">
<img src="/charts/seasons.png?{{.Query}}" alt="Boxes by season">
</div>`))

var filterErrorTemplate = template.Must(template.New("filterError").Parse(`
<div id="filter-error" class="filter-error">{{.}}</div>`))

// signalValues tolerates both shapes a filter signal can arrive in: a JSON
// array, or the single comma-separated string a text input binding produces.
type signalValues []string

func (v *signalValues) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("expected string or string array, got %s", data)
	}
	*v = strings.Split(single, ",")
	return nil
}

// filterSignals mirrors the datastar signals the dashboard page binds its
// filter controls to.
type filterSignals struct {
	Seasons    signalValues `json:"seasons"`
	Transports signalValues `json:"transports"`
	Species    signalValues `json:"species"`
	Varieties  signalValues `json:"varieties"`
	Importers  signalValues `json:"importers"`
	Exporters  signalValues `json:"exporters"`
	Ports      signalValues `json:"ports"`
	ETAFrom    string       `json:"etaFrom"`
	ETATo      string       `json:"etaTo"`
}

func (sig filterSignals) toFilter() (services.FilterState, error) {
	f := services.FilterState{
		Seasons:    dropEmpty(sig.Seasons),
		Transports: dropEmpty(sig.Transports),
		Species:    dropEmpty(sig.Species),
		Varieties:  dropEmpty(sig.Varieties),
		Importers:  dropEmpty(sig.Importers),
		Exporters:  dropEmpty(sig.Exporters),
		Ports:      dropEmpty(sig.Ports),
	}

	if sig.ETAFrom != "" {
		t, err := time.Parse("2006-01-02", sig.ETAFrom)
		if err != nil {
			return services.FilterState{}, fmt.Errorf("invalid etaFrom %q: %w", sig.ETAFrom, err)
		}
		f.ETAFrom = t
	}
	if sig.ETATo != "" {
		t, err := time.Parse("2006-01-02", sig.ETATo)
		if err != nil {
			return services.FilterState{}, fmt.Errorf("invalid etaTo %q: %w", sig.ETATo, err)
		}
		f.ETATo = t
	}

	return f, nil
}

func dropEmpty(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}

type SSEHandlers struct {
	dataset *services.Dataset
	logger  *slog.Logger
}

func NewSSEHandlers(dataset *services.Dataset, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dataset: dataset,
		logger:  logger,
	}
}

// readFilter decodes the filter signals sent by the page. A request carrying
// no signal payload gets the unfiltered view; a malformed payload is an error
// the caller surfaces to the page.
func (h *SSEHandlers) readFilter(r *http.Request) (services.FilterState, error) {
	if r.URL.Query().Get("datastar") == "" {
		return services.FilterState{}, nil
	}

	var sig filterSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		return services.FilterState{}, fmt.Errorf("read filter signals: %w", err)
	}
	return sig.toFilter()
}

// renderFilterError patches the page's filter-error element. An empty message
// clears a previously shown error.
func (h *SSEHandlers) renderFilterError(message string) string {
	var buf strings.Builder
	filterErrorTemplate.Execute(&buf, message)
	return buf.String()
}

func (h *SSEHandlers) renderMetrics(rows []models.Shipment) (string, error) {
	m := services.Overview(rows)

	view := struct {
		models.OverviewMetrics
		AvgTransit string
	}{OverviewMetrics: m, AvgTransit: "n/a"}
	if m.AvgTransitDays != nil {
		view.AvgTransit = fmt.Sprintf("%.1f", *m.AvgTransitDays)
	}

	var buf strings.Builder
	err := metricsTemplate.Execute(&buf, view)
	return buf.String(), err
}

func (h *SSEHandlers) renderShipmentTable(rows []models.Shipment) (string, error) {
	total := len(rows)
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}

	var buf strings.Builder
	err := shipmentTableTemplate.Execute(&buf, struct {
		Rows  []models.Shipment
		Total int
	}{Rows: rows, Total: total})
	return buf.String(), err
}

func (h *SSEHandlers) renderChartGrid(f services.FilterState) (string, error) {
	var buf strings.Builder
	err := chartGridTemplate.Execute(&buf, struct {
		Query string
	}{Query: f.Query().Encode()})
	return buf.String(), err
}

// HandleRefresh re-renders every dashboard fragment for the current filter
// signals: metrics, summary signals for the analysis sections, the chart
// grid, and the raw-data table.
func (h *SSEHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	f, err := h.readFilter(r)
	if err != nil {
		h.logger.Warn("read filter signals", "error", err)
		sse.PatchElements(h.renderFilterError("filters could not be applied, check the filter values"))
		return
	}
	sse.PatchElements(h.renderFilterError(""))

	rows := h.dataset.Filtered(f)

	html, err := h.renderMetrics(rows)
	if err != nil {
		h.logger.Error("render metrics", "error", err)
		return
	}
	sse.PatchElements(html)

	charts, err := h.renderChartGrid(f)
	if err != nil {
		h.logger.Error("render chart grid", "error", err)
		return
	}
	sse.PatchElements(charts)

	table, err := h.renderShipmentTable(rows)
	if err != nil {
		h.logger.Error("render shipment table", "error", err)
		return
	}
	sse.PatchElements(table)

	signals, err := json.Marshal(map[string]any{
		"transportData": services.TransportSummaries(rows),
		"importerData":  services.ImporterVolumes(rows),
		"exporterData":  services.ExporterVolumes(rows),
		"portData":      services.PortSummaries(rows),
		"weeklyData":    services.WeeklyVolumes(rows),
		"seasonData":    services.SeasonVolumes(rows),
	})
	if err != nil {
		h.logger.Error("marshal summary signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// HandleShipments patches only the raw-data table fragment.
func (h *SSEHandlers) HandleShipments(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	f, err := h.readFilter(r)
	if err != nil {
		h.logger.Warn("read filter signals", "error", err)
		sse.PatchElements(h.renderFilterError("filters could not be applied, check the filter values"))
		return
	}
	sse.PatchElements(h.renderFilterError(""))

	rows := h.dataset.Filtered(f)

	table, err := h.renderShipmentTable(rows)
	if err != nil {
		h.logger.Error("render shipment table", "error", err)
		return
	}
	sse.PatchElements(table)

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
