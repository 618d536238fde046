package app

import (
	"fmt"

	"minevision/domain/agg"
	"minevision/domain/event"
	"minevision/internal/profiling"
)

// Insight is one templated observation over the working set's aggregates.
// Text is markdown; the UI renders it to HTML. These are descriptive
// heuristics, not model output.
type Insight struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// shareFlagThreshold flags an hour that concentrates more than this share
// of all alerts.
const shareFlagThreshold = 10.0

// slowResponseSeconds is the duration above which the response-time insight
// fires.
const slowResponseSeconds = 60.0

// GenerateInsights builds the insight list for a working set. Every
// sentence degrades to absence when its inputs are unavailable; an empty
// working set yields no insights rather than an error.
func GenerateInsights(view *View) []Insight {
	records := view.Records
	var insights []Insight

	if peak, ok := agg.Peak(records, event.FacetHour); ok {
		insights = append(insights, Insight{
			Tag: "peak-hour",
			Text: fmt.Sprintf("**Peak Risk Hour**: Most fatigue incidents occur around %s:00. "+
				"Consider enhanced monitoring during this period.", peak.Key),
		})
	}

	if worst, ok := agg.Peak(records, event.FacetShift); ok {
		insights = append(insights, Insight{
			Tag: "shift-risk",
			Text: fmt.Sprintf("**Shift Risk**: Shift %s shows the highest fatigue incidents. "+
				"Review scheduling and workload distribution.", worst.Key),
		})
	}

	if top, ok := agg.Peak(records, event.FacetOperator); ok {
		insights = append(insights, Insight{
			Tag: "high-risk-operator",
			Text: fmt.Sprintf("**High-Risk Operator**: Operator '%s' has the most alerts. "+
				"Consider targeted coaching or rest adjustment.", top.Key),
		})
	}

	if mean, ok := agg.MeanDuration(records); ok && mean > slowResponseSeconds {
		insights = append(insights, Insight{
			Tag: "response-time",
			Text: fmt.Sprintf("**Response Time**: Average alert duration is %.2f seconds. "+
				"This indicates a need for faster response protocols.", mean),
		})
	}

	if top, ok := agg.Peak(records, event.FacetFleetType); ok {
		insights = append(insights, Insight{
			Tag: "fleet-risk",
			Text: fmt.Sprintf("**Fleet Risk**: The '%s' fleet type has the most incidents. "+
				"Investigate specific operational factors.", top.Key),
		})
	}

	if len(records) > 10 {
		if peak, ok := agg.Peak(records, event.FacetHour); ok && peak.Percent > shareFlagThreshold {
			insights = append(insights, Insight{
				Tag: "hour-concentration",
				Text: fmt.Sprintf("**Predictive Alert**: Hour %s has disproportionately high fatigue "+
					"risk (%.1f%% of alerts). Implement preventive measures.", peak.Key, peak.Percent),
			})
		}
	}

	if view.HasThresholds {
		critical := agg.CountWhere(records, func(r *event.EnrichedRecord) bool {
			return r.RiskTier == event.TierCritical
		})
		if critical > 0 {
			insights = append(insights, Insight{
				Tag: "critical-tier",
				Text: fmt.Sprintf("**Critical Events**: %d alert(s) fall in the Critical tier — "+
					"vehicles moving above the %.0f km/h threshold during the 2-5 AM circadian low.",
					critical, view.Thresholds.Q75),
			})
		}
	}

	if profile, ok := profiling.AnalyzeSpeeds(records); ok && profile.Skewness > 1 {
		insights = append(insights, Insight{
			Tag: "speed-pattern",
			Text: fmt.Sprintf("**Speed Pattern**: The speed distribution is strongly right-skewed "+
				"(median %.1f km/h, max %.1f km/h): most alerts fire at crawl speed, with a "+
				"minority of fast movers driving the Critical tier.", profile.Median, profile.Max),
		})
	}

	return insights
}
