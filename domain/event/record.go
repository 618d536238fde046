// Package event holds the data model for fatigue alert records: the raw row
// as it arrived from the spreadsheet and the enriched form the pipeline
// derives from it. Enrichment only ever adds fields; no stage mutates a
// prior stage's output.
package event

import "time"

// RawRecord is one source row: column name to cell value, exactly as read.
// A record set loaded from one table shares a single column set.
type RawRecord map[string]string

// Tier is the ordinal risk tier assigned by the classifier.
type Tier string

const (
	TierCritical Tier = "Critical"
	TierHigh     Tier = "High"
	TierMedium   Tier = "Medium"
	TierLow      Tier = "Low"
)

// Tiers lists the tiers from most to least severe.
var Tiers = []Tier{TierCritical, TierHigh, TierMedium, TierLow}

// EnrichedRecord is a RawRecord plus derived fields. Pointer fields are nil
// when the value could not be derived; "absent" is a first-class state every
// consumer must handle, never an error.
type EnrichedRecord struct {
	Raw RawRecord

	// Resolved role values, "" when the role is unbound or the cell blank.
	Operator   string
	FleetAsset string
	FleetType  string

	Shift *int
	Speed *float64

	Start *time.Time
	End   *time.Time
	// DurationSeconds is end minus start. It may be zero (instantaneous
	// event) or negative (end recorded before start); neither is an error.
	DurationSeconds *float64

	// Calendar facets derive from Start only.
	Hour      *int   // 0-23
	Date      string // "2006-01-02", "" when Start is absent
	DayOfWeek string // weekday name, "" when Start is absent
	ISOWeek   *int
	Month     *int // 1-12
	Year      *int

	// RiskTier is assigned per active subset; "" when speed or hour is
	// unavailable.
	RiskTier Tier
}

// HasTimespan reports whether both endpoints parsed.
func (r *EnrichedRecord) HasTimespan() bool {
	return r.Start != nil && r.End != nil
}
