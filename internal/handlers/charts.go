package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"fruitdash/internal/models"
	"fruitdash/internal/services"
)

const (
	chartWidth  = 1024
	chartHeight = 480
	chartBars   = 10
)

// ChartHandlers renders the per-page summary tables as PNG images. Chart
// type is fixed per page; an empty filtered subset renders a placeholder
// chart rather than failing.
type ChartHandlers struct {
	dataset *services.Dataset
	logger  *slog.Logger
}

func NewChartHandlers(dataset *services.Dataset, logger *slog.Logger) *ChartHandlers {
	return &ChartHandlers{
		dataset: dataset,
		logger:  logger,
	}
}

func (h *ChartHandlers) HandleTransportChart(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	summaries := services.TransportSummaries(rows)
	bars := make([]chart.Value, 0, len(summaries))
	for _, s := range summaries {
		bars = append(bars, chart.Value{Label: s.Transport, Value: float64(s.Boxes)})
	}

	h.renderBars(w, "Boxes by Transport Mode", bars)
}

func (h *ChartHandlers) HandleImportersChart(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	h.renderEntityBars(w, "Top Importers by Volume", services.ImporterVolumes(rows))
}

func (h *ChartHandlers) HandleExportersChart(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	h.renderEntityBars(w, "Top Exporters by Volume", services.ExporterVolumes(rows))
}

func (h *ChartHandlers) HandlePortsChart(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	summaries := services.PortSummaries(rows)
	if len(summaries) > chartBars {
		summaries = summaries[:chartBars]
	}
	bars := make([]chart.Value, 0, len(summaries))
	for _, s := range summaries {
		bars = append(bars, chart.Value{Label: s.Port, Value: float64(s.Boxes)})
	}

	h.renderBars(w, "Boxes by Arrival Port", bars)
}

func (h *ChartHandlers) HandleSeasonsChart(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	summaries := services.SeasonVolumes(rows)
	bars := make([]chart.Value, 0, len(summaries))
	for _, s := range summaries {
		bars = append(bars, chart.Value{Label: s.Season, Value: float64(s.Boxes)})
	}

	h.renderBars(w, "Boxes by Season", bars)
}

func (h *ChartHandlers) HandleTimelineChart(w http.ResponseWriter, r *http.Request) {
	rows, ok := filteredSubset(w, r, h.dataset, h.logger)
	if !ok {
		return
	}

	weekly := services.WeeklyVolumes(rows)
	if len(weekly) == 0 {
		h.renderBars(w, "Weekly Shipment Volume", nil)
		return
	}

	times := make([]time.Time, 0, len(weekly))
	values := make([]float64, 0, len(weekly))
	for _, wv := range weekly {
		times = append(times, services.WeekStart(wv.Year, wv.Week))
		values = append(values, float64(wv.Boxes))
	}
	// go-chart needs at least two points per series.
	if len(times) == 1 {
		times = append(times, times[0].AddDate(0, 0, 7))
		values = append(values, values[0])
	}

	graph := chart.Chart{
		Title:  "Weekly Shipment Volume",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: "Week"},
		YAxis:  chart.YAxis{Name: "Boxes"},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Boxes",
				XValues: times,
				YValues: values,
			},
		},
	}

	w.Header().Set("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, w); err != nil {
		h.logger.Error("render timeline chart", "error", err)
	}
}

func (h *ChartHandlers) renderEntityBars(w http.ResponseWriter, title string, volumes []models.EntityVolume) {
	if len(volumes) > chartBars {
		volumes = volumes[:chartBars]
	}
	bars := make([]chart.Value, 0, len(volumes))
	for _, v := range volumes {
		bars = append(bars, chart.Value{Label: v.Name, Value: float64(v.Boxes)})
	}

	h.renderBars(w, title, bars)
}

func (h *ChartHandlers) renderBars(w http.ResponseWriter, title string, bars []chart.Value) {
	if len(bars) == 0 {
		bars = []chart.Value{{Label: "no data", Value: 0}}
	}

	maxValue := 1.0
	for _, b := range bars {
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 48,
		YAxis: chart.YAxis{
			Name:  "Boxes",
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue},
		},
		Bars: bars,
	}

	w.Header().Set("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, w); err != nil {
		h.logger.Error("render bar chart", "title", title, "error", err)
	}
}
