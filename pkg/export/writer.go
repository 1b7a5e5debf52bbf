package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Format selects the serialization of an export.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
)

const sheetName = "Contracts"

// ContentType returns the MIME type served for a format.
func ContentType(format Format) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// FileName builds the date-stamped download name, e.g.
// contracts-export-2026-08-29.csv.
func FileName(format Format, now time.Time) string {
	ext := "json"
	switch format {
	case FormatCSV:
		ext = "csv"
	case FormatExcel:
		ext = "xlsx"
	}
	return fmt.Sprintf("contracts-export-%s.%s", now.Format("2006-01-02"), ext)
}

// Write serializes the records in the requested format.
func Write(w io.Writer, format Format, records []FlatRecord) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatExcel:
		return writeExcel(w, records)
	case FormatJSON:
		return writeJSON(w, records)
	default:
		return fmt.Errorf("export: unsupported format %q", format)
	}
}

func writeCSV(w io.Writer, records []FlatRecord) error {
	cols := Columns(records)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(cols))
	for _, rec := range records {
		for i, col := range cols {
			row[i], _ = rec.Get(col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeExcel(w io.Writer, records []FlatRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	cols := Columns(records)
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return fmt.Errorf("write header cell: %w", err)
		}
	}
	for r, rec := range records {
		for c, col := range cols {
			value, ok := rec.Get(col)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("write cell: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, records []FlatRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// MarshalJSON renders the record as an object preserving column order
// and omitting absent fields.
func (r FlatRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
