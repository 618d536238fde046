package excel

import (
	"encoding/csv"
	"io"
	"strconv"

	"minevision/domain/event"
)

// derivedHeaders are the pipeline-added columns appended after the original
// column set on export. Absent values export as empty cells.
var derivedHeaders = []string{
	"start",
	"end",
	"duration_seconds",
	"hour",
	"date",
	"day_of_week",
	"iso_week",
	"month",
	"year",
	"risk_tier",
}

// exportTimeLayout round-trips through ParseTimestamp.
const exportTimeLayout = "2006-01-02 15:04:05"

// ExportCSV serializes the filtered subset: every original column followed
// by the derived columns. Pass-through serialization, no recomputation.
func ExportCSV(w io.Writer, headers []string, records []event.EnrichedRecord) error {
	cw := csv.NewWriter(w)

	originals := make(map[string]bool, len(headers))
	out := make([]string, 0, len(headers)+len(derivedHeaders))
	out = append(out, headers...)
	for _, h := range headers {
		originals[h] = true
	}
	for _, h := range derivedHeaders {
		// An input that already carries a column by this name keeps it;
		// the derived copy is dropped rather than duplicated.
		if !originals[h] {
			out = append(out, h)
		}
	}
	if err := cw.Write(out); err != nil {
		return err
	}

	row := make([]string, 0, len(out))
	for i := range records {
		rec := &records[i]
		row = row[:0]
		for _, h := range headers {
			row = append(row, rec.Raw[h])
		}
		for _, h := range derivedHeaders {
			if originals[h] {
				continue
			}
			row = append(row, derivedCell(rec, h))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func derivedCell(rec *event.EnrichedRecord, header string) string {
	switch header {
	case "start":
		if rec.Start != nil {
			return rec.Start.Format(exportTimeLayout)
		}
	case "end":
		if rec.End != nil {
			return rec.End.Format(exportTimeLayout)
		}
	case "duration_seconds":
		if rec.DurationSeconds != nil {
			return strconv.FormatFloat(*rec.DurationSeconds, 'f', -1, 64)
		}
	case "hour":
		if rec.Hour != nil {
			return strconv.Itoa(*rec.Hour)
		}
	case "date":
		return rec.Date
	case "day_of_week":
		return rec.DayOfWeek
	case "iso_week":
		if rec.ISOWeek != nil {
			return strconv.Itoa(*rec.ISOWeek)
		}
	case "month":
		if rec.Month != nil {
			return strconv.Itoa(*rec.Month)
		}
	case "year":
		if rec.Year != nil {
			return strconv.Itoa(*rec.Year)
		}
	case "risk_tier":
		return string(rec.RiskTier)
	}
	return ""
}
