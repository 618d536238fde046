// Package risk assigns an ordinal risk tier to each fatigue alert from its
// speed and hour of day. Tiering is a pure function of (speed, hour,
// thresholds); the thresholds are speed percentiles of the active working
// set, so tiers are recomputed whenever the filtered subset changes.
package risk

import (
	"github.com/montanaflynn/stats"

	"minevision/domain/event"
)

// circadianLowHours is the fixed 2-5 AM window treated as elevated baseline
// fatigue risk. A domain constant, not user-configurable.
var circadianLowHours = map[int]bool{2: true, 3: true, 4: true, 5: true}

// InCircadianLow reports whether the hour falls in the 2-5 AM window.
func InCircadianLow(hour int) bool {
	return circadianLowHours[hour]
}

// Thresholds are the speed percentiles the decision table compares against.
type Thresholds struct {
	Q25 float64 `json:"q25"`
	Q50 float64 `json:"q50"`
	Q75 float64 `json:"q75"`

	// SampleSize is the number of records with a speed value.
	SampleSize int `json:"sample_size"`
}

// ComputeThresholds derives q25/q50/q75 over the speeds of the given working
// set. Records without a speed are excluded from the distribution. Returns
// ok=false when no record carries a speed, in which case no tier can be
// assigned.
func ComputeThresholds(records []event.EnrichedRecord) (Thresholds, bool) {
	speeds := make([]float64, 0, len(records))
	for i := range records {
		if records[i].Speed != nil {
			speeds = append(speeds, *records[i].Speed)
		}
	}
	if len(speeds) == 0 {
		return Thresholds{}, false
	}

	q25, err1 := stats.Percentile(speeds, 25)
	q50, err2 := stats.Percentile(speeds, 50)
	q75, err3 := stats.Percentile(speeds, 75)
	if err1 != nil || err2 != nil || err3 != nil {
		// stats.Percentile only errors on empty input, which is guarded
		// above; degrade to a flat distribution if that ever changes.
		q25, q50, q75 = speeds[0], speeds[0], speeds[0]
	}

	return Thresholds{Q25: q25, Q50: q50, Q75: q75, SampleSize: len(speeds)}, true
}

// Classify runs the decision table top to bottom, first match wins:
//
//	1. speed > q75 and circadian-low hour  -> Critical
//	2. speed > q50 and circadian-low hour  -> High
//	3. speed > q25 and circadian-low hour  -> Medium
//	4. speed <= q25 outside circadian low  -> Low
//	5. otherwise                           -> Medium
//
// Branch 5 collapses the remaining combinations (slow speed during the
// circadian low, high speed outside it) into Medium.
func Classify(speed float64, hour int, th Thresholds) event.Tier {
	low := InCircadianLow(hour)
	switch {
	case speed > th.Q75 && low:
		return event.TierCritical
	case speed > th.Q50 && low:
		return event.TierHigh
	case speed > th.Q25 && low:
		return event.TierMedium
	case speed <= th.Q25 && !low:
		return event.TierLow
	default:
		return event.TierMedium
	}
}

// Apply assigns a tier to every record in the working set that has both a
// speed and an hour, using thresholds computed over that same set. Records
// missing either input keep an empty tier. The input slice is not modified;
// a new slice is returned.
func Apply(records []event.EnrichedRecord) []event.EnrichedRecord {
	out := make([]event.EnrichedRecord, len(records))
	copy(out, records)

	th, ok := ComputeThresholds(out)
	if !ok {
		return out
	}

	for i := range out {
		if out[i].Speed == nil || out[i].Hour == nil {
			out[i].RiskTier = ""
			continue
		}
		out[i].RiskTier = Classify(*out[i].Speed, *out[i].Hour, th)
	}
	return out
}
