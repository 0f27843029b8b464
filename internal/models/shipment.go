package models

import "time"

// TransitUnknown marks shipments whose departure week could not be resolved
// to a calendar date.
const TransitUnknown = -1

// Shipment is one row of the source CSV. Records are immutable once loaded;
// the derived calendar fields are computed at load time from ETA and ETDWeek.
type Shipment struct {
	Season      string    `json:"season"`
	ETDWeek     string    `json:"etd_week"`
	ETAWeek     string    `json:"eta_week"`
	ETA         time.Time `json:"eta"`
	Transport   string    `json:"transport"`
	Specie      string    `json:"specie"`
	Variety     string    `json:"variety"`
	Importer    string    `json:"importer"`
	Exporter    string    `json:"exporter"`
	ArrivalPort string    `json:"arrival_port"`
	Vessel      string    `json:"vessel,omitempty"`
	Boxes       int       `json:"boxes"`

	WeekNumber  int        `json:"week_number"`
	Month       time.Month `json:"month"`
	Year        int        `json:"year"`
	TransitDays int        `json:"transit_days"`
}

type OverviewMetrics struct {
	Shipments           int     `json:"shipments"`
	TotalBoxes          int     `json:"total_boxes"`
	AvgBoxesPerShipment float64 `json:"avg_boxes_per_shipment"`
	// AvgTransitDays is nil when no shipment in the subset had a resolvable
	// departure week, so a missing average is distinguishable from zero.
	AvgTransitDays  *float64 `json:"avg_transit_days,omitempty"`
	UniqueImporters int      `json:"unique_importers"`
	UniqueExporters int      `json:"unique_exporters"`
	UniqueVarieties int      `json:"unique_varieties"`
	UniquePorts     int      `json:"unique_ports"`
}

type SpecieTotal struct {
	Specie    string `json:"specie"`
	Boxes     int    `json:"boxes"`
	Shipments int    `json:"shipments"`
}

type TransportSummary struct {
	Transport string  `json:"transport"`
	Boxes     int     `json:"boxes"`
	Shipments int     `json:"shipments"`
	AvgBoxes  float64 `json:"avg_boxes_per_shipment"`
}

type TransitSummary struct {
	Transport      string  `json:"transport"`
	AvgTransitDays float64 `json:"avg_transit_days"`
	Shipments      int     `json:"shipments"`
}

type VesselVolume struct {
	Vessel    string `json:"vessel"`
	Boxes     int    `json:"boxes"`
	Shipments int    `json:"shipments"`
}

type EntityVolume struct {
	Name      string `json:"name"`
	Boxes     int    `json:"boxes"`
	Shipments int    `json:"shipments"`
}

type Partnership struct {
	Importer  string `json:"importer"`
	Exporter  string `json:"exporter"`
	Boxes     int    `json:"boxes"`
	Shipments int    `json:"shipments"`
}

type PortSummary struct {
	Port      string `json:"port"`
	Boxes     int    `json:"boxes"`
	Shipments int    `json:"shipments"`
}

type PortTransport struct {
	Port      string `json:"port"`
	Transport string `json:"transport"`
	Boxes     int    `json:"boxes"`
}

type WeeklyVolume struct {
	Year      int `json:"year"`
	Week      int `json:"week"`
	Boxes     int `json:"boxes"`
	Shipments int `json:"shipments"`
}

type MonthlyVolume struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
	Boxes     int    `json:"boxes"`
	Shipments int    `json:"shipments"`
}

type SeasonVolume struct {
	Season    string `json:"season"`
	Boxes     int    `json:"boxes"`
	Shipments int    `json:"shipments"`
}

// FilterOptions lists the distinct values observed per filterable dimension,
// plus the span of arrival dates in the loaded data.
type FilterOptions struct {
	Seasons    []string  `json:"seasons"`
	Transports []string  `json:"transports"`
	Species    []string  `json:"species"`
	Varieties  []string  `json:"varieties"`
	Importers  []string  `json:"importers"`
	Exporters  []string  `json:"exporters"`
	Ports      []string  `json:"ports"`
	ETAMin     time.Time `json:"eta_min"`
	ETAMax     time.Time `json:"eta_max"`
}
