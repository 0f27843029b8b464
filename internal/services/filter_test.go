package services

import (
	"net/url"
	"testing"
	"time"

	"fruitdash/internal/models"
)

func testShipments() []models.Shipment {
	return []models.Shipment{
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
		{
			Season:      "2022-2023",
			Transport:   "CHARTER",
			Specie:      "GRAPES",
			Variety:     "ALLISON",
			Importer:    "FRESH FRUITS INC",
			Exporter:    "VALLEY PACKERS",
			ArrivalPort: "PHILADELPHIA",
			Vessel:      "BALTIC SPIRIT",
			ETA:         time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
			Boxes:       800,
		},
	}
}

func filteredRows(t *testing.T, f FilterState) []models.Shipment {
	t.Helper()
	d := NewDataset()
	d.SetData(testShipments())
	return d.Filtered(f)
}

func TestFilterState_EmptyMatchesAll(t *testing.T) {
	rows := filteredRows(t, FilterState{})
	if len(rows) != 3 {
		t.Errorf("empty filter should match every row, got %d", len(rows))
	}
}

func TestFilterState_SingleDimension(t *testing.T) {
	rows := filteredRows(t, FilterState{Transports: []string{"LINER"}})
	if len(rows) != 1 {
		t.Fatalf("expected 1 LINER shipment, got %d", len(rows))
	}
	if rows[0].Vessel != "STAR CARE" {
		t.Errorf("wrong row matched: %+v", rows[0])
	}
}

func TestFilterState_OrWithinDimension(t *testing.T) {
	rows := filteredRows(t, FilterState{Transports: []string{"LINER", "CHARTER"}})
	if len(rows) != 2 {
		t.Errorf("multi-select should OR within a dimension, got %d rows", len(rows))
	}
}

func TestFilterState_AndAcrossDimensions(t *testing.T) {
	rows := filteredRows(t, FilterState{
		Species: []string{"GRAPES"},
		Ports:   []string{"PHILADELPHIA"},
		Seasons: []string{"2023-2024"},
	})
	if len(rows) != 1 {
		t.Errorf("constraints should AND across dimensions, got %d rows", len(rows))
	}
}

func TestFilterState_DateRangeInclusive(t *testing.T) {
	rows := filteredRows(t, FilterState{
		ETAFrom: time.Date(2023, 12, 18, 0, 0, 0, 0, time.UTC),
		ETATo:   time.Date(2023, 12, 26, 0, 0, 0, 0, time.UTC),
	})
	if len(rows) != 2 {
		t.Errorf("range boundaries should be inclusive, got %d rows", len(rows))
	}
}

func TestFilterState_OutOfSpanRangeYieldsEmpty(t *testing.T) {
	rows := filteredRows(t, FilterState{
		ETAFrom: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		ETATo:   time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if len(rows) != 0 {
		t.Errorf("out-of-span range should yield empty subset, got %d rows", len(rows))
	}

	// Every page's summaries stay empty, without error.
	if got := len(TransportSummaries(rows)); got != 0 {
		t.Errorf("transport summaries should be empty, got %d", got)
	}
	if got := len(ImporterVolumes(rows)); got != 0 {
		t.Errorf("importer volumes should be empty, got %d", got)
	}
	if got := len(PortSummaries(rows)); got != 0 {
		t.Errorf("port summaries should be empty, got %d", got)
	}
	if got := len(WeeklyVolumes(rows)); got != 0 {
		t.Errorf("weekly volumes should be empty, got %d", got)
	}
	if m := Overview(rows); m.Shipments != 0 || m.TotalBoxes != 0 {
		t.Errorf("overview should be zeroed, got %+v", m)
	}
}

func TestFilterState_Idempotent(t *testing.T) {
	d := NewDataset()
	d.SetData(testShipments())

	f := FilterState{Species: []string{"GRAPES"}}
	first := d.Filtered(f)
	second := d.Filtered(f)

	if len(first) != len(second) {
		t.Fatalf("same filter produced different row counts: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("row %d differs between applications", i)
		}
	}
}

// A stricter filter can never match more rows than a looser one.
func TestFilterState_Monotonic(t *testing.T) {
	d := NewDataset()
	d.SetData(testShipments())

	loose := FilterState{Species: []string{"GRAPES"}}
	strict := FilterState{
		Species:    []string{"GRAPES"},
		Transports: []string{"LINER"},
		ETAFrom:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	if len(d.Filtered(strict)) > len(d.Filtered(loose)) {
		t.Error("adding constraints must not grow the subset")
	}
}

func TestParseFilter(t *testing.T) {
	q := url.Values{
		"transport": {"LINER", "AIR"},
		"season":    {"2023-2024"},
		"eta_from":  {"2023-12-01"},
		"eta_to":    {"2023-12-31"},
	}

	f, err := ParseFilter(q)
	if err != nil {
		t.Fatalf("ParseFilter() failed: %v", err)
	}
	if len(f.Transports) != 2 {
		t.Errorf("expected 2 transports, got %v", f.Transports)
	}
	if f.ETAFrom.IsZero() || f.ETATo.IsZero() {
		t.Error("date range not parsed")
	}
}

func TestParseFilter_Invalid(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
	}{
		{"bad from date", url.Values{"eta_from": {"12/01/2023"}}},
		{"bad to date", url.Values{"eta_to": {"yesterday"}}},
		{"inverted range", url.Values{"eta_from": {"2023-12-31"}, "eta_to": {"2023-01-01"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFilter(tt.q); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFilterState_QueryRoundTrip(t *testing.T) {
	f := FilterState{
		Transports: []string{"LINER"},
		Importers:  []string{"FRESH FRUITS INC"},
		ETAFrom:    time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	}

	parsed, err := ParseFilter(f.Query())
	if err != nil {
		t.Fatalf("ParseFilter(Query()) failed: %v", err)
	}
	if len(parsed.Transports) != 1 || parsed.Transports[0] != "LINER" {
		t.Errorf("transports lost in round trip: %v", parsed.Transports)
	}
	if !parsed.ETAFrom.Equal(f.ETAFrom) {
		t.Errorf("eta_from lost in round trip: %v", parsed.ETAFrom)
	}
	if !parsed.ETATo.IsZero() {
		t.Errorf("eta_to should stay unset, got %v", parsed.ETATo)
	}
}
