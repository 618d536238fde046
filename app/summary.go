package app

import (
	"minevision/domain/agg"
	"minevision/domain/event"
)

// Summary is the KPI strip of the dashboard.
type Summary struct {
	TotalAlerts     int `json:"total_alerts"`
	UniqueOperators int `json:"unique_operators"`
	ActiveAssets    int `json:"active_assets"`
	FleetTypes      int `json:"fleet_types"`

	// AvgDurationSeconds is nil when no record has a duration.
	AvgDurationSeconds *float64 `json:"avg_duration_seconds"`

	// TierCounts maps tier name to count; empty when no tier was assigned.
	TierCounts map[string]int `json:"tier_counts,omitempty"`
}

// Summarize computes the KPI metrics over a working set.
func Summarize(records []event.EnrichedRecord) Summary {
	summary := Summary{
		TotalAlerts:     len(records),
		UniqueOperators: agg.UniqueCount(records, event.FacetOperator),
		ActiveAssets:    agg.UniqueCount(records, event.FacetFleet),
		FleetTypes:      agg.UniqueCount(records, event.FacetFleetType),
	}

	if mean, ok := agg.MeanDuration(records); ok {
		summary.AvgDurationSeconds = &mean
	}

	tiers := make(map[string]int)
	for _, bucket := range agg.GroupCount(records, event.FacetRiskTier) {
		tiers[bucket.Key] = bucket.Count
	}
	if len(tiers) > 0 {
		summary.TierCounts = tiers
	}

	return summary
}
