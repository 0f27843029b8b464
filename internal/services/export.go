package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fruitdash/internal/models"
)

const exportSheet = "Shipments"

// fieldValue renders one column of a shipment using the same textual
// conventions as the input file, so an exported file reloads cleanly.
func fieldValue(s models.Shipment, column string) string {
	switch column {
	case "Season":
		return s.Season
	case "ETD Week":
		return s.ETDWeek
	case "ETA Week":
		return s.ETAWeek
	case "ETA":
		return s.ETA.Format(etaLayout)
	case "Transport":
		return s.Transport
	case "Specie":
		return s.Specie
	case "Variety":
		return s.Variety
	case "Importer":
		return s.Importer
	case "Exporter":
		return s.Exporter
	case "Arrival port":
		return s.ArrivalPort
	case "Vessel":
		return s.Vessel
	case "Boxes":
		return strconv.Itoa(s.Boxes)
	}
	return ""
}

// WriteCSV serializes the filtered shipments in the given column order.
func WriteCSV(w io.Writer, columns []string, shipments []models.Shipment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, s := range shipments {
		for i, col := range columns {
			row[i] = fieldValue(s, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX serializes the filtered shipments as a spreadsheet workbook with
// one sheet, box counts as numeric cells.
func WriteXLSX(w io.Writer, columns []string, shipments []models.Shipment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, col); err != nil {
			return fmt.Errorf("write header cell: %w", err)
		}
	}

	for rowIdx, s := range shipments {
		for colIdx, col := range columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}

			var value any = fieldValue(s, col)
			if col == "Boxes" {
				value = s.Boxes
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return fmt.Errorf("write data cell: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
