package services

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"fruitdash/internal/models"
)

// Query parameter dates use ISO form regardless of the file's day-first ETA
// format.
const filterDateLayout = "2006-01-02"

// FilterState holds one optional constraint per filterable dimension. The
// zero value matches every shipment. A shipment is included iff it satisfies
// all active constraints; within one multi-select dimension any listed value
// matches.
type FilterState struct {
	Seasons    []string
	Transports []string
	Species    []string
	Varieties  []string
	Importers  []string
	Exporters  []string
	Ports      []string
	ETAFrom    time.Time
	ETATo      time.Time
}

// ParseFilter builds a FilterState from request query parameters.
// Multi-select dimensions repeat the parameter (e.g. ?transport=LINER&transport=AIR).
func ParseFilter(q url.Values) (FilterState, error) {
	f := FilterState{
		Seasons:    q["season"],
		Transports: q["transport"],
		Species:    q["specie"],
		Varieties:  q["variety"],
		Importers:  q["importer"],
		Exporters:  q["exporter"],
		Ports:      q["port"],
	}

	if v := q.Get("eta_from"); v != "" {
		t, err := time.Parse(filterDateLayout, v)
		if err != nil {
			return FilterState{}, fmt.Errorf("invalid eta_from %q: %w", v, err)
		}
		f.ETAFrom = t
	}
	if v := q.Get("eta_to"); v != "" {
		t, err := time.Parse(filterDateLayout, v)
		if err != nil {
			return FilterState{}, fmt.Errorf("invalid eta_to %q: %w", v, err)
		}
		f.ETATo = t
	}
	if !f.ETAFrom.IsZero() && !f.ETATo.IsZero() && f.ETATo.Before(f.ETAFrom) {
		return FilterState{}, fmt.Errorf("eta_to %s precedes eta_from %s",
			f.ETATo.Format(filterDateLayout), f.ETAFrom.Format(filterDateLayout))
	}

	return f, nil
}

// Match reports whether s satisfies every active constraint. The ETA range
// is inclusive on both ends.
func (f FilterState) Match(s models.Shipment) bool {
	if !matchesAny(f.Seasons, s.Season) {
		return false
	}
	if !matchesAny(f.Transports, s.Transport) {
		return false
	}
	if !matchesAny(f.Species, s.Specie) {
		return false
	}
	if !matchesAny(f.Varieties, s.Variety) {
		return false
	}
	if !matchesAny(f.Importers, s.Importer) {
		return false
	}
	if !matchesAny(f.Exporters, s.Exporter) {
		return false
	}
	if !matchesAny(f.Ports, s.ArrivalPort) {
		return false
	}
	if !f.ETAFrom.IsZero() && s.ETA.Before(f.ETAFrom) {
		return false
	}
	if !f.ETATo.IsZero() && s.ETA.After(f.ETATo) {
		return false
	}
	return true
}

// Query renders the filter back into the query parameters ParseFilter
// accepts, for building filtered chart and export URLs.
func (f FilterState) Query() url.Values {
	q := url.Values{}
	set := func(key string, values []string) {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	set("season", f.Seasons)
	set("transport", f.Transports)
	set("specie", f.Species)
	set("variety", f.Varieties)
	set("importer", f.Importers)
	set("exporter", f.Exporters)
	set("port", f.Ports)
	if !f.ETAFrom.IsZero() {
		q.Set("eta_from", f.ETAFrom.Format(filterDateLayout))
	}
	if !f.ETATo.IsZero() {
		q.Set("eta_to", f.ETATo.Format(filterDateLayout))
	}
	return q
}

func matchesAny(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, value)
}
