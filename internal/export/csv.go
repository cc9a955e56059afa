// Package export renders a trip timeline as a daily log document, as
// CSV for spreadsheets or as a printable PDF sheet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/simplydispatch/driverslog/internal/timeline"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"entry", "label", "time", "end_limit", "location", "quantity", "notes",
}

// WriteCSV encodes the timeline as CSV, one row per timeline entry, in
// timeline order. The header row is always written, even for an empty
// timeline.
func WriteCSV(w io.Writer, tl timeline.Timeline) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeaders); err != nil {
		return fmt.Errorf("export.WriteCSV: %w", err)
	}
	for _, row := range tl.Rows {
		if err := cw.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("export.WriteCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export.WriteCSV: %w", err)
	}
	return nil
}

// csvRecord encodes a timeline row as a flat string slice.
func csvRecord(r timeline.Row) []string {
	return []string{
		string(r.Kind),
		r.Label,
		r.TimeDisplay,
		r.EndLimit,
		r.Location,
		r.QuantityDisplay,
		r.Notes,
	}
}
