package event

import (
	"strconv"

	"minevision/domain/core"
	"minevision/domain/schema"
)

// Table is one loaded-and-enriched source file. Built in a single batch pass
// at load time and treated as immutable afterward; filtering produces a new
// subset slice, never a mutation.
type Table struct {
	Headers []string
	Roles   schema.RoleMap
	Records []EnrichedRecord

	// Fingerprint identifies the source content for the load cache.
	Fingerprint core.Hash
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Facet names a derivable grouping dimension.
type Facet string

const (
	FacetHour      Facet = "hour"
	FacetShift     Facet = "shift"
	FacetOperator  Facet = "operator"
	FacetFleet     Facet = "fleet"
	FacetFleetType Facet = "fleet_type"
	FacetDate      Facet = "date"
	FacetDayOfWeek Facet = "day_of_week"
	FacetISOWeek   Facet = "iso_week"
	FacetMonth     Facet = "month"
	FacetYear      Facet = "year"
	FacetRiskTier  Facet = "risk_tier"
)

// Facets lists every grouping dimension in a stable order.
var Facets = []Facet{
	FacetHour, FacetShift, FacetOperator, FacetFleet, FacetFleetType,
	FacetDate, FacetDayOfWeek, FacetISOWeek, FacetMonth, FacetYear,
	FacetRiskTier,
}

// ParseFacet validates a facet name from user input.
func ParseFacet(name string) (Facet, bool) {
	for _, f := range Facets {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// FacetValue extracts the record's value for a facet as a grouping key.
// ok is false when the value is absent on this record.
func (r *EnrichedRecord) FacetValue(f Facet) (string, bool) {
	switch f {
	case FacetHour:
		if r.Hour == nil {
			return "", false
		}
		return itoa(*r.Hour), true
	case FacetShift:
		if r.Shift == nil {
			return "", false
		}
		return itoa(*r.Shift), true
	case FacetOperator:
		return nonEmpty(r.Operator)
	case FacetFleet:
		return nonEmpty(r.FleetAsset)
	case FacetFleetType:
		return nonEmpty(r.FleetType)
	case FacetDate:
		return nonEmpty(r.Date)
	case FacetDayOfWeek:
		return nonEmpty(r.DayOfWeek)
	case FacetISOWeek:
		if r.ISOWeek == nil {
			return "", false
		}
		return itoa(*r.ISOWeek), true
	case FacetMonth:
		if r.Month == nil {
			return "", false
		}
		return itoa(*r.Month), true
	case FacetYear:
		if r.Year == nil {
			return "", false
		}
		return itoa(*r.Year), true
	case FacetRiskTier:
		return nonEmpty(string(r.RiskTier))
	}
	return "", false
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
