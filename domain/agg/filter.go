package agg

import "minevision/domain/event"

// FilterSpec is a conjunction of optional constraints applied before every
// aggregate. A zero FilterSpec matches everything. Filters are plain values
// passed into each computation; there is no module-level filter state.
type FilterSpec struct {
	// DateFrom/DateTo bound the event date, inclusive, as "2006-01-02".
	// Empty means open-ended.
	DateFrom string `json:"date_from,omitempty" form:"date_from"`
	DateTo   string `json:"date_to,omitempty" form:"date_to"`

	// Set-membership constraints; empty slices mean unconstrained.
	Operators  []string `json:"operators,omitempty" form:"operators"`
	Shifts     []int    `json:"shifts,omitempty" form:"shifts"`
	FleetTypes []string `json:"fleet_types,omitempty" form:"fleet_types"`

	// HourFrom/HourTo bound hour-of-day, inclusive. Nil means open.
	HourFrom *int `json:"hour_from,omitempty" form:"hour_from"`
	HourTo   *int `json:"hour_to,omitempty" form:"hour_to"`
}

// IsZero reports whether no constraint is set.
func (f FilterSpec) IsZero() bool {
	return f.DateFrom == "" && f.DateTo == "" &&
		len(f.Operators) == 0 && len(f.Shifts) == 0 && len(f.FleetTypes) == 0 &&
		f.HourFrom == nil && f.HourTo == nil
}

// Apply produces the working subset matching every active constraint. The
// source slice is never mutated. A record missing a field an active
// constraint needs is excluded.
func Apply(records []event.EnrichedRecord, spec FilterSpec) []event.EnrichedRecord {
	if spec.IsZero() {
		return records
	}

	operators := toSet(spec.Operators)
	fleetTypes := toSet(spec.FleetTypes)
	shifts := make(map[int]bool, len(spec.Shifts))
	for _, s := range spec.Shifts {
		shifts[s] = true
	}

	var out []event.EnrichedRecord
	for i := range records {
		rec := &records[i]
		if spec.DateFrom != "" && (rec.Date == "" || rec.Date < spec.DateFrom) {
			continue
		}
		if spec.DateTo != "" && (rec.Date == "" || rec.Date > spec.DateTo) {
			continue
		}
		if len(operators) > 0 && !operators[rec.Operator] {
			continue
		}
		if len(fleetTypes) > 0 && !fleetTypes[rec.FleetType] {
			continue
		}
		if len(shifts) > 0 && (rec.Shift == nil || !shifts[*rec.Shift]) {
			continue
		}
		if spec.HourFrom != nil && (rec.Hour == nil || *rec.Hour < *spec.HourFrom) {
			continue
		}
		if spec.HourTo != nil && (rec.Hour == nil || *rec.Hour > *spec.HourTo) {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
