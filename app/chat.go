package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"minevision/domain/agg"
	"minevision/domain/core"
	"minevision/domain/event"
	"minevision/domain/risk"
)

// Intent is one of the canned questions the assistant can answer. Every
// intent delegates to the aggregation layer; there is no free-form language
// understanding here.
type Intent string

const (
	IntentOperatorMax       Intent = "operator-max"
	IntentShiftMax          Intent = "shift-max"
	IntentHourMax           Intent = "hour-max"
	IntentFleetMax          Intent = "fleet-max"
	IntentTotalCount        Intent = "total-count"
	IntentAvgDuration       Intent = "avg-duration"
	IntentRiskBreakdown     Intent = "risk-breakdown"
	IntentHighSpeedCount    Intent = "high-speed-count"
	IntentCriticalHourCount Intent = "critical-hour-count"
)

// intentRules maps keywords to intents. Rules are scanned in order and the
// first rule with a matching keyword wins, so the more specific phrasings
// sit above the generic ones.
var intentRules = []struct {
	intent   Intent
	keywords []string
}{
	{IntentCriticalHourCount, []string{"circadian", "critical hour", "early morning", "2-5"}},
	{IntentRiskBreakdown, []string{"risk", "tier", "severity", "breakdown"}},
	{IntentHighSpeedCount, []string{"speed", "fast", "speeding"}},
	{IntentAvgDuration, []string{"duration", "how long", "respond"}},
	{IntentOperatorMax, []string{"operator", "driver", "who"}},
	{IntentShiftMax, []string{"shift"}},
	{IntentFleetMax, []string{"fleet", "truck", "vehicle", "asset"}},
	{IntentHourMax, []string{"hour", "time of day", "when"}},
	{IntentTotalCount, []string{"how many", "total", "count", "alerts"}},
}

// ResolveIntent maps a question to an intent, case-insensitively.
func ResolveIntent(question string) (Intent, bool) {
	q := strings.ToLower(question)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.intent, true
			}
		}
	}
	return "", false
}

// Message is one entry of a conversation log.
type Message struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ChatService answers canned questions about the current working set and
// keeps a per-session append-only conversation log. Sessions are
// transient; nothing is persisted.
type ChatService struct {
	pipeline *PipelineService

	mu       sync.Mutex
	sessions map[core.SessionID][]Message
}

// NewChatService creates a chat service over a pipeline
func NewChatService(pipeline *PipelineService) *ChatService {
	return &ChatService{
		pipeline: pipeline,
		sessions: make(map[core.SessionID][]Message),
	}
}

// NewSession opens a conversation and returns its identifier.
func (c *ChatService) NewSession() core.SessionID {
	id := core.SessionID(core.NewID())
	c.mu.Lock()
	c.sessions[id] = nil
	c.mu.Unlock()
	return id
}

// History returns the conversation log for a session.
func (c *ChatService) History(id core.SessionID) ([]Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	log, ok := c.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	out := make([]Message, len(log))
	copy(out, log)
	return out, nil
}

// Ask answers a question against the working set selected by spec and
// appends both sides to the session log. An unrecognized question is
// answered with guidance, not an error; only an unknown session fails.
func (c *ChatService) Ask(id core.SessionID, question string, spec agg.FilterSpec) (string, error) {
	c.mu.Lock()
	_, ok := c.sessions[id]
	c.mu.Unlock()
	if !ok {
		return "", core.ErrSessionNotFound
	}

	answer := c.answer(question, spec)

	now := time.Now()
	c.mu.Lock()
	c.sessions[id] = append(c.sessions[id],
		Message{Role: "user", Text: question, At: now},
		Message{Role: "assistant", Text: answer, At: now},
	)
	c.mu.Unlock()

	return answer, nil
}

func (c *ChatService) answer(question string, spec agg.FilterSpec) string {
	intent, ok := ResolveIntent(question)
	if !ok {
		return "I can answer questions about operators, shifts, hours, fleets, " +
			"totals, durations, speeds, and risk tiers in the current data."
	}

	view, err := c.pipeline.View(spec)
	if err != nil {
		return fmt.Sprintf("The data source is unavailable right now: %v", err)
	}
	records := view.Records
	if len(records) == 0 {
		return "No alerts match the current filters."
	}

	switch intent {
	case IntentOperatorMax:
		if peak, ok := agg.Peak(records, event.FacetOperator); ok {
			return fmt.Sprintf("Operator **%s** has the most fatigue alerts (%d, %.1f%% of the current selection).",
				peak.Key, peak.Count, peak.Percent)
		}
		return "Operator data is not available in this file."
	case IntentShiftMax:
		if peak, ok := agg.Peak(records, event.FacetShift); ok {
			return fmt.Sprintf("Shift **%s** has the highest alert count (%d).", peak.Key, peak.Count)
		}
		return "Shift data is not available in this file."
	case IntentHourMax:
		if peak, ok := agg.Peak(records, event.FacetHour); ok {
			return fmt.Sprintf("Most alerts occur around **%s:00** (%d alerts).", peak.Key, peak.Count)
		}
		return "Timestamps are not available in this file."
	case IntentFleetMax:
		if peak, ok := agg.Peak(records, event.FacetFleetType); ok {
			return fmt.Sprintf("The **%s** fleet type has the most alerts (%d).", peak.Key, peak.Count)
		}
		return "Fleet data is not available in this file."
	case IntentTotalCount:
		return fmt.Sprintf("There are **%d** fatigue alerts in the current selection.", len(records))
	case IntentAvgDuration:
		if mean, ok := agg.MeanDuration(records); ok {
			return fmt.Sprintf("The average alert duration is **%.2f seconds**.", mean)
		}
		return "Durations are not available in this file."
	case IntentRiskBreakdown:
		if !view.HasThresholds {
			return "Risk tiers need both speed and timestamp data, which this file does not provide."
		}
		var parts []string
		for _, tier := range event.Tiers {
			n := agg.CountWhere(records, func(r *event.EnrichedRecord) bool { return r.RiskTier == tier })
			parts = append(parts, fmt.Sprintf("%s: %d", tier, n))
		}
		return "Risk tier breakdown — " + strings.Join(parts, ", ") + "."
	case IntentHighSpeedCount:
		if !view.HasThresholds {
			return "Speed data is not available in this file."
		}
		q75 := view.Thresholds.Q75
		n := agg.CountWhere(records, func(r *event.EnrichedRecord) bool {
			return r.Speed != nil && *r.Speed > q75
		})
		return fmt.Sprintf("**%d** alert(s) exceed the 75th-percentile speed of %.1f km/h.", n, q75)
	case IntentCriticalHourCount:
		n := agg.CountWhere(records, func(r *event.EnrichedRecord) bool {
			return r.Hour != nil && risk.InCircadianLow(*r.Hour)
		})
		return fmt.Sprintf("**%d** alert(s) fall in the 2-5 AM circadian-low window.", n)
	}

	return "I could not work out what to compute for that question."
}
