package services

import (
	"cmp"
	"slices"
	"time"

	"fruitdash/internal/models"
)

// Sea transport modes are the only ones with a vessel assigned.
var seaTransports = []string{"LINER", "CHARTER"}

// Overview computes the headline metrics for the filtered subset. An empty
// subset yields zeroed metrics, not an error.
func Overview(shipments []models.Shipment) models.OverviewMetrics {
	m := models.OverviewMetrics{Shipments: len(shipments)}

	importers := make(map[string]struct{})
	exporters := make(map[string]struct{})
	varieties := make(map[string]struct{})
	ports := make(map[string]struct{})

	transitSum := 0
	transitCount := 0

	for _, s := range shipments {
		m.TotalBoxes += s.Boxes
		importers[s.Importer] = struct{}{}
		exporters[s.Exporter] = struct{}{}
		varieties[s.Variety] = struct{}{}
		ports[s.ArrivalPort] = struct{}{}

		if s.TransitDays != models.TransitUnknown {
			transitSum += s.TransitDays
			transitCount++
		}
	}

	m.UniqueImporters = len(importers)
	m.UniqueExporters = len(exporters)
	m.UniqueVarieties = len(varieties)
	m.UniquePorts = len(ports)

	if len(shipments) > 0 {
		m.AvgBoxesPerShipment = float64(m.TotalBoxes) / float64(len(shipments))
	}
	if transitCount > 0 {
		avg := float64(transitSum) / float64(transitCount)
		m.AvgTransitDays = &avg
	}

	return m
}

func SpecieTotals(shipments []models.Shipment) []models.SpecieTotal {
	groups := make(map[string]*models.SpecieTotal)
	for _, s := range shipments {
		g := groups[s.Specie]
		if g == nil {
			g = &models.SpecieTotal{Specie: s.Specie}
			groups[s.Specie] = g
		}
		g.Boxes += s.Boxes
		g.Shipments++
	}

	result := make([]models.SpecieTotal, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.SpecieTotal) int {
		if c := cmp.Compare(b.Boxes, a.Boxes); c != 0 {
			return c
		}
		return cmp.Compare(a.Specie, b.Specie)
	})
	return result
}

func TransportSummaries(shipments []models.Shipment) []models.TransportSummary {
	groups := make(map[string]*models.TransportSummary)
	for _, s := range shipments {
		g := groups[s.Transport]
		if g == nil {
			g = &models.TransportSummary{Transport: s.Transport}
			groups[s.Transport] = g
		}
		g.Boxes += s.Boxes
		g.Shipments++
	}

	result := make([]models.TransportSummary, 0, len(groups))
	for _, g := range groups {
		g.AvgBoxes = float64(g.Boxes) / float64(g.Shipments)
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.TransportSummary) int {
		if c := cmp.Compare(b.Boxes, a.Boxes); c != 0 {
			return c
		}
		return cmp.Compare(a.Transport, b.Transport)
	})
	return result
}

// TransitByTransport averages transit days per transport mode, ignoring
// shipments whose departure week could not be resolved.
func TransitByTransport(shipments []models.Shipment) []models.TransitSummary {
	type acc struct {
		sum   int
		count int
	}
	groups := make(map[string]*acc)
	for _, s := range shipments {
		if s.TransitDays == models.TransitUnknown {
			continue
		}
		g := groups[s.Transport]
		if g == nil {
			g = &acc{}
			groups[s.Transport] = g
		}
		g.sum += s.TransitDays
		g.count++
	}

	result := make([]models.TransitSummary, 0, len(groups))
	for transport, g := range groups {
		result = append(result, models.TransitSummary{
			Transport:      transport,
			AvgTransitDays: float64(g.sum) / float64(g.count),
			Shipments:      g.count,
		})
	}
	slices.SortFunc(result, func(a, b models.TransitSummary) int {
		if c := cmp.Compare(a.AvgTransitDays, b.AvgTransitDays); c != 0 {
			return c
		}
		return cmp.Compare(a.Transport, b.Transport)
	})
	return result
}

// TopVessels ranks vessels by volume over sea transport shipments only.
func TopVessels(shipments []models.Shipment, limit int) []models.VesselVolume {
	groups := make(map[string]*models.VesselVolume)
	for _, s := range shipments {
		if s.Vessel == "" || !slices.Contains(seaTransports, s.Transport) {
			continue
		}
		g := groups[s.Vessel]
		if g == nil {
			g = &models.VesselVolume{Vessel: s.Vessel}
			groups[s.Vessel] = g
		}
		g.Boxes += s.Boxes
		g.Shipments++
	}

	result := make([]models.VesselVolume, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.VesselVolume) int {
		if c := cmp.Compare(b.Boxes, a.Boxes); c != 0 {
			return c
		}
		return cmp.Compare(a.Vessel, b.Vessel)
	})
	return truncate(result, limit)
}

// ImporterVolumes ranks importers by total boxes, descending, ties broken by
// name ascending.
func ImporterVolumes(shipments []models.Shipment) []models.EntityVolume {
	return entityVolumes(shipments, func(s models.Shipment) string { return s.Importer })
}

// ExporterVolumes ranks exporters the same way as ImporterVolumes.
func ExporterVolumes(shipments []models.Shipment) []models.EntityVolume {
	return entityVolumes(shipments, func(s models.Shipment) string { return s.Exporter })
}

func entityVolumes(shipments []models.Shipment, key func(models.Shipment) string) []models.EntityVolume {
	groups := make(map[string]*models.EntityVolume)
	for _, s := range shipments {
		name := key(s)
		g := groups[name]
		if g == nil {
			g = &models.EntityVolume{Name: name}
			groups[name] = g
		}
		g.Boxes += s.Boxes
		g.Shipments++
	}

	result := make([]models.EntityVolume, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.EntityVolume) int {
		if c := cmp.Compare(b.Boxes, a.Boxes); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return result
}

// TopPartnerships ranks importer/exporter pairs by volume.
func TopPartnerships(shipments []models.Shipment, limit int) []models.Partnership {
	groups := make(map[string]*models.Partnership)
	for _, s := range shipments {
		key := s.Importer + "|" + s.Exporter
		g := groups[key]
		if g == nil {
			g = &models.Partnership{Importer: s.Importer, Exporter: s.Exporter}
			groups[key] = g
		}
		g.Boxes += s.Boxes
		g.Shipments++
	}

	result := make([]models.Partnership, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.Partnership) int {
		if c := cmp.Compare(b.Boxes, a.Boxes); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Importer, b.Importer); c != 0 {
			return c
		}
		return cmp.Compare(a.Exporter, b.Exporter)
	})
	return truncate(result, limit)
}

func PortSummaries(shipments []models.Shipment) []models.PortSummary {
	groups := make(map[string]*models.PortSummary)
	for _, s := range shipments {
		g := groups[s.ArrivalPort]
		if g == nil {
			g = &models.PortSummary{Port: s.ArrivalPort}
			groups[s.ArrivalPort] = g
		}
		g.Boxes += s.Boxes
		g.Shipments++
	}

	result := make([]models.PortSummary, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.PortSummary) int {
		if c := cmp.Compare(b.Boxes, a.Boxes); c != 0 {
			return c
		}
		return cmp.Compare(a.Port, b.Port)
	})
	return result
}

// PortTransportSplit breaks each port's volume down by transport mode.
func PortTransportSplit(shipments []models.Shipment) []models.PortTransport {
	groups := make(map[string]*models.PortTransport)
	for _, s := range shipments {
		key := s.ArrivalPort + "|" + s.Transport
		g := groups[key]
		if g == nil {
			g = &models.PortTransport{Port: s.ArrivalPort, Transport: s.Transport}
			groups[key] = g
		}
		g.Boxes += s.Boxes
	}

	result := make([]models.PortTransport, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.PortTransport) int {
		if c := cmp.Compare(a.Port, b.Port); c != 0 {
			return c
		}
		return cmp.Compare(a.Transport, b.Transport)
	})
	return result
}

// WeeklyVolumes buckets the subset by ISO week of the arrival date, in
// chronological order.
func WeeklyVolumes(shipments []models.Shipment) []models.WeeklyVolume {
	groups := make(map[int]*models.WeeklyVolume)
	for _, s := range shipments {
		year, week := s.ETA.ISOWeek()
		key := year*100 + week
		g := groups[key]
		if g == nil {
			g = &models.WeeklyVolume{Year: year, Week: week}
			groups[key] = g
		}
		g.Boxes += s.Boxes
		g.Shipments++
	}

	result := make([]models.WeeklyVolume, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.WeeklyVolume) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Week, b.Week)
	})
	return result
}

// MonthlyVolumes buckets the subset by calendar month, in chronological
// order.
func MonthlyVolumes(shipments []models.Shipment) []models.MonthlyVolume {
	groups := make(map[int]*models.MonthlyVolume)
	for _, s := range shipments {
		key := s.Year*100 + int(s.Month)
		g := groups[key]
		if g == nil {
			g = &models.MonthlyVolume{
				Year:      s.Year,
				Month:     int(s.Month),
				MonthName: time.Month(s.Month).String(),
			}
			groups[key] = g
		}
		g.Boxes += s.Boxes
		g.Shipments++
	}

	result := make([]models.MonthlyVolume, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.MonthlyVolume) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Month, b.Month)
	})
	return result
}

func SeasonVolumes(shipments []models.Shipment) []models.SeasonVolume {
	groups := make(map[string]*models.SeasonVolume)
	for _, s := range shipments {
		g := groups[s.Season]
		if g == nil {
			g = &models.SeasonVolume{Season: s.Season}
			groups[s.Season] = g
		}
		g.Boxes += s.Boxes
		g.Shipments++
	}

	result := make([]models.SeasonVolume, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.SeasonVolume) int {
		return cmp.Compare(a.Season, b.Season)
	})
	return result
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
