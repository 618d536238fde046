// Package enrich derives the temporal and numeric fields of an enriched
// record from its raw row: start/end instants, duration, calendar facets,
// and coerced shift/speed values. Parse failures are per-record and
// per-field; the batch always loads in full.
package enrich

import (
	"strconv"
	"strings"
	"time"

	"minevision/domain/event"
	"minevision/domain/schema"
)

// syntheticAlertWindow is the placeholder span assigned when the source
// carries only a start timestamp. A documented assumption, not a
// measurement.
const syntheticAlertWindow = time.Minute

// maxShift bounds plausible shift designators; values beyond it are treated
// as unparseable noise.
const maxShift = 99

// Enrich derives one EnrichedRecord per RawRecord. The output length always
// equals the input length: enrichment never drops or adds rows.
func Enrich(rows []event.RawRecord, roles schema.RoleMap) []event.EnrichedRecord {
	startBound := roles.Bound(schema.RoleStartTime)
	endBound := roles.Bound(schema.RoleEndTime)

	records := make([]event.EnrichedRecord, 0, len(rows))
	for _, row := range rows {
		rec := event.EnrichedRecord{
			Raw:        row,
			Operator:   cell(row, roles, schema.RoleOperator),
			FleetAsset: cell(row, roles, schema.RoleFleetAsset),
			FleetType:  cell(row, roles, schema.RoleFleetType),
			Shift:      coerceShift(cell(row, roles, schema.RoleShift)),
			Speed:      coerceSpeed(cell(row, roles, schema.RoleSpeed)),
		}

		switch {
		case startBound && endBound:
			rec.Start = ParseTimestamp(row[roles.Column(schema.RoleStartTime)])
			rec.End = ParseTimestamp(row[roles.Column(schema.RoleEndTime)])
		case startBound:
			rec.Start = ParseTimestamp(row[roles.Column(schema.RoleStartTime)])
			if rec.Start != nil {
				end := rec.Start.Add(syntheticAlertWindow)
				rec.End = &end
			}
		}

		if rec.Start != nil && rec.End != nil {
			d := rec.End.Sub(*rec.Start).Seconds()
			rec.DurationSeconds = &d
		}

		deriveCalendar(&rec)
		records = append(records, rec)
	}
	return records
}

func cell(row event.RawRecord, roles schema.RoleMap, role schema.Role) string {
	if !roles.Bound(role) {
		return ""
	}
	return strings.TrimSpace(row[roles.Column(role)])
}

// deriveCalendar fills the calendar facets from Start. An absent start
// propagates to absent facets.
func deriveCalendar(rec *event.EnrichedRecord) {
	if rec.Start == nil {
		return
	}
	t := *rec.Start

	hour := t.Hour()
	rec.Hour = &hour
	rec.Date = t.Format("2006-01-02")
	rec.DayOfWeek = t.Weekday().String()

	_, week := t.ISOWeek()
	rec.ISOWeek = &week

	month := int(t.Month())
	rec.Month = &month
	year := t.Year()
	rec.Year = &year
}

// coerceShift extracts the first run of digits from a shift cell ("1",
// "Shift 2", "1.0") and rounds away fractional noise. Unparseable or
// implausible values become absent.
func coerceShift(raw string) *int {
	if raw == "" {
		return nil
	}

	start := -1
	end := len(raw)
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			end = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	n, err := strconv.Atoi(raw[start:end])
	if err != nil || n > maxShift {
		return nil
	}
	return &n
}

// coerceSpeed parses a speed cell as a float, tolerating a comma decimal
// separator.
func coerceSpeed(raw string) *float64 {
	if raw == "" {
		return nil
	}
	s := strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
