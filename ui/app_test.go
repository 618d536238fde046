package ui

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minevision/app"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alerts.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))

	pipeline := app.NewPipelineService(path)
	return NewApp(AppConfig{Port: "8080"}, pipeline, app.NewChatService(pipeline))
}

func TestAppStatus(t *testing.T) {
	api := newTestApp(t)

	rec := get(t, api.Router(), "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decodeJSON(t, rec)["records"])
}

func TestAppSummaryWithFilter(t *testing.T) {
	api := newTestApp(t)

	rec := get(t, api.Router(), "/api/summary?operators=Sari")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeJSON(t, rec)["total_alerts"])
}

func TestAppAggregateUnknownFacet(t *testing.T) {
	api := newTestApp(t)

	rec := get(t, api.Router(), "/api/aggregate?facet=nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppChatFlow(t *testing.T) {
	api := newTestApp(t)

	rec := postJSON(t, api.Router(), "/api/chat/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := decodeJSON(t, rec)["session_id"].(string)

	rec = postJSON(t, api.Router(), "/api/chat",
		`{"session_id":"`+sessionID+`","question":"How many alerts total?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeJSON(t, rec)["answer"], "**3**")
}

func TestAppExport(t *testing.T) {
	api := newTestApp(t)

	rec := get(t, api.Router(), "/api/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "risk_tier")
}
