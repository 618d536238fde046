package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minevision/domain/agg"
	"minevision/domain/core"
)

func TestResolveIntent(t *testing.T) {
	cases := []struct {
		question string
		want     Intent
	}{
		{"Which operator has the most alerts?", IntentOperatorMax},
		{"Which shift is worst?", IntentShiftMax},
		{"When do alerts peak?", IntentHourMax},
		{"Which fleet has the most incidents?", IntentFleetMax},
		{"How many alerts are there?", IntentTotalCount},
		{"What is the average duration?", IntentAvgDuration},
		{"Show me the risk breakdown", IntentRiskBreakdown},
		{"How many vehicles were speeding?", IntentHighSpeedCount},
		{"How many alerts in the circadian low?", IntentCriticalHourCount},
	}
	for _, tc := range cases {
		intent, ok := ResolveIntent(tc.question)
		require.True(t, ok, tc.question)
		assert.Equal(t, tc.want, intent, tc.question)
	}

	_, ok := ResolveIntent("tell me a joke")
	assert.False(t, ok)
}

func newTestChat(t *testing.T) *ChatService {
	t.Helper()
	return NewChatService(NewPipelineService(writeFixture(t, fixtureCSV)))
}

func TestChatSessionFlow(t *testing.T) {
	chat := newTestChat(t)
	id := chat.NewSession()

	answer, err := chat.Ask(id, "Which operator has the most alerts?", agg.FilterSpec{})
	require.NoError(t, err)
	assert.Contains(t, answer, "Budi")

	history, err := chat.History(id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, answer, history[1].Text)
}

func TestChatUnknownSession(t *testing.T) {
	chat := newTestChat(t)

	_, err := chat.Ask(core.SessionID("missing"), "How many alerts?", agg.FilterSpec{})
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	_, err = chat.History(core.SessionID("missing"))
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestChatAnswers(t *testing.T) {
	chat := newTestChat(t)
	id := chat.NewSession()

	ask := func(q string) string {
		t.Helper()
		answer, err := chat.Ask(id, q, agg.FilterSpec{})
		require.NoError(t, err)
		return answer
	}

	assert.Contains(t, ask("How many alerts total?"), "**3**")
	assert.Contains(t, ask("What is the average duration?"), "seconds")
	assert.Contains(t, ask("Show the risk breakdown"), "Critical:")
	assert.Contains(t, ask("How many alerts in the circadian low?"), "**1**")
	assert.Contains(t, ask("Which shift is worst?"), "Shift **1**")
}

func TestChatRespectsFilters(t *testing.T) {
	chat := newTestChat(t)
	id := chat.NewSession()

	answer, err := chat.Ask(id, "How many alerts total?", agg.FilterSpec{Operators: []string{"Nobody"}})
	require.NoError(t, err)
	assert.Equal(t, "No alerts match the current filters.", answer)
}

func TestChatUnrecognizedQuestion(t *testing.T) {
	chat := newTestChat(t)
	id := chat.NewSession()

	answer, err := chat.Ask(id, "tell me a joke", agg.FilterSpec{})
	require.NoError(t, err)
	assert.Contains(t, answer, "I can answer questions about")

	history, err := chat.History(id)
	require.NoError(t, err)
	assert.Len(t, history, 2, "unrecognized questions are still logged")
}
