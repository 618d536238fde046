package enrich

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order. The fleet exports write
// "10/19/25 8:27" (month/day/two-digit-year), so that family leads; ISO
// forms cover re-imported CSV exports of our own making.
var timestampLayouts = []string{
	"1/2/06 15:04",
	"1/2/06 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/06",
	"1/2/2006",
}

// excelEpoch is day zero of Excel's 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseTimestamp parses a raw cell into an instant. Returns nil when the
// value is blank or matches no known form; a bad cell never fails the batch.
func ParseTimestamp(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	// Excel serial date: whole part is days since the 1900 epoch,
	// fractional part is time of day.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 300000 {
		t := excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
		return &t
	}

	return nil
}
