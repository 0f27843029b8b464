package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"fruitdash/internal/models"
)

const (
	batchSize  = 5000
	maxWorkers = 8

	// ETA values in the source file are day-first.
	etaLayout = "02-01-2006"
)

// ErrSchemaMismatch reports a CSV whose header is missing a required column.
var ErrSchemaMismatch = errors.New("schema mismatch")

// requiredColumns is the canonical schema of a shipment file. Extra columns
// in the input are ignored.
var requiredColumns = []string{
	"Season",
	"ETD Week",
	"ETA Week",
	"ETA",
	"Transport",
	"Specie",
	"Variety",
	"Importer",
	"Exporter",
	"Arrival port",
	"Vessel",
	"Boxes",
}

// Dataset holds the immutable shipment table the dashboard serves. It is
// loaded once at startup and only ever read afterwards, so concurrent
// sessions share it without coordination beyond the load-time lock.
type Dataset struct {
	mu        sync.RWMutex
	shipments []models.Shipment
	columns   []string
	skipped   int64
	loadedAt  time.Time
	csvPath   string
	logger    *slog.Logger
}

func NewDataset() *Dataset {
	return &Dataset{
		columns: slices.Clone(requiredColumns),
		logger:  slog.Default(),
	}
}

// SetData replaces the dataset contents directly, deriving the calendar
// fields the loader would normally fill in. Used by tests.
func (d *Dataset) SetData(shipments []models.Shipment) {
	rows := make([]models.Shipment, len(shipments))
	for i, s := range shipments {
		deriveCalendar(&s)
		rows[i] = s
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.shipments = rows
	d.loadedAt = time.Now()
}

// LoadFromCSV reads the shipment file into memory. Columns are located by
// header name; rows with an unparseable arrival date or box count are
// skipped and counted rather than aborting the load.
func (d *Dataset) LoadFromCSV(ctx context.Context, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return fmt.Errorf("%w: %s has no header row", ErrSchemaMismatch, filename)
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	columns := make([]string, 0, len(requiredColumns))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := index[name]; seen {
			continue
		}
		index[name] = i
		if slices.Contains(requiredColumns, name) {
			columns = append(columns, name)
		}
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return fmt.Errorf("%w: missing required column %q", ErrSchemaMismatch, name)
		}
	}

	var (
		shipments []models.Shipment
		skipped   atomic.Int64
	)

	flush := func(records [][]string) error {
		parsed := make([]*models.Shipment, len(records))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxWorkers)
		for i, record := range records {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				s, err := parseShipment(record, index)
				if err != nil {
					skipped.Add(1)
					return nil
				}
				parsed[i] = s
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		// Indexed assignment above preserves file order.
		for _, s := range parsed {
			if s != nil {
				shipments = append(shipments, *s)
			}
		}
		return nil
	}

	batch := make([][]string, 0, batchSize)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped.Add(1)
			continue
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			if err := flush(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := flush(batch); err != nil {
			return err
		}
	}

	d.mu.Lock()
	d.shipments = shipments
	d.columns = columns
	d.skipped = skipped.Load()
	d.loadedAt = time.Now()
	d.csvPath = filename
	d.mu.Unlock()

	if n := skipped.Load(); n > 0 {
		d.logger.Warn("skipped malformed rows", "file", filename, "count", n)
	}
	d.logger.Info("shipment data loaded", "file", filename, "records", len(shipments))

	return nil
}

func parseShipment(record []string, index map[string]int) (*models.Shipment, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	eta, err := time.Parse(etaLayout, field("ETA"))
	if err != nil {
		return nil, fmt.Errorf("parse ETA: %w", err)
	}

	boxes, err := strconv.Atoi(field("Boxes"))
	if err != nil {
		return nil, fmt.Errorf("parse Boxes: %w", err)
	}
	if boxes < 0 {
		return nil, fmt.Errorf("negative box count %d", boxes)
	}

	s := &models.Shipment{
		Season:      field("Season"),
		ETDWeek:     field("ETD Week"),
		ETAWeek:     field("ETA Week"),
		ETA:         eta,
		Transport:   field("Transport"),
		Specie:      field("Specie"),
		Variety:     field("Variety"),
		Importer:    field("Importer"),
		Exporter:    field("Exporter"),
		ArrivalPort: field("Arrival port"),
		Vessel:      field("Vessel"),
		Boxes:       boxes,
	}
	deriveCalendar(s)
	return s, nil
}

func deriveCalendar(s *models.Shipment) {
	_, s.WeekNumber = s.ETA.ISOWeek()
	s.Month = s.ETA.Month()
	s.Year = s.ETA.Year()
	s.TransitDays = transitDays(s.ETDWeek, s.ETA)
}

// transitDays approximates the transit time as the number of days between
// the Monday of the departure week and the arrival date.
func transitDays(etdWeek string, eta time.Time) int {
	week, year, ok := parseWeekLabel(etdWeek)
	if !ok {
		return models.TransitUnknown
	}
	start := WeekStart(year, week)
	return int(eta.Sub(start).Hours() / 24)
}

// parseWeekLabel splits a "WW-YYYY" period identifier.
func parseWeekLabel(label string) (week, year int, ok bool) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	week, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || week < 1 || week > 53 {
		return 0, 0, false
	}
	year, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || year < 1 {
		return 0, 0, false
	}
	return week, year, true
}

// WeekStart returns the Monday of the given ISO week. January 4th is always
// inside ISO week 1.
func WeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := jan4.AddDate(0, 0, 1-weekday)
	return monday.AddDate(0, 0, (week-1)*7)
}

// Shipments returns the full loaded table.
func (d *Dataset) Shipments() []models.Shipment {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.shipments
}

// Columns returns the required columns in the order they appeared in the
// input file, which is also the export column order.
func (d *Dataset) Columns() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.columns
}

// Filtered returns the shipments matching every active constraint in f, in
// file order. An empty filter returns every row.
func (d *Dataset) Filtered(f FilterState) []models.Shipment {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]models.Shipment, 0, len(d.shipments))
	for _, s := range d.shipments {
		if f.Match(s) {
			result = append(result, s)
		}
	}
	return result
}

// Options lists the distinct values per filterable dimension and the span
// of arrival dates, for populating the filter controls.
func (d *Dataset) Options() models.FilterOptions {
	d.mu.RLock()
	defer d.mu.RUnlock()

	opts := models.FilterOptions{
		Seasons:    distinct(d.shipments, func(s models.Shipment) string { return s.Season }),
		Transports: distinct(d.shipments, func(s models.Shipment) string { return s.Transport }),
		Species:    distinct(d.shipments, func(s models.Shipment) string { return s.Specie }),
		Varieties:  distinct(d.shipments, func(s models.Shipment) string { return s.Variety }),
		Importers:  distinct(d.shipments, func(s models.Shipment) string { return s.Importer }),
		Exporters:  distinct(d.shipments, func(s models.Shipment) string { return s.Exporter }),
		Ports:      distinct(d.shipments, func(s models.Shipment) string { return s.ArrivalPort }),
	}

	for _, s := range d.shipments {
		if opts.ETAMin.IsZero() || s.ETA.Before(opts.ETAMin) {
			opts.ETAMin = s.ETA
		}
		if opts.ETAMax.IsZero() || s.ETA.After(opts.ETAMax) {
			opts.ETAMax = s.ETA
		}
	}

	return opts
}

func distinct(shipments []models.Shipment, key func(models.Shipment) string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, s := range shipments {
		v := key(s)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values
}

// Stats summarizes the loaded dataset for the admin endpoint.
func (d *Dataset) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]any{
		"record_count": len(d.shipments),
		"skipped_rows": d.skipped,
		"loaded_at":    d.loadedAt,
		"csv_file":     d.csvPath,
	}
}
