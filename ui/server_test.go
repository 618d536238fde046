package ui

import (
	"embed"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minevision/app"
	"minevision/internal/config"
)

//go:embed templates/*
var testTemplates embed.FS

const testCSV = `Operator Name,Shift,Fleet Number,Parent Fleet,Speed (km/h),GMT Start Time,GMT End Time
Budi,1,DT-104,Dump Truck,12.5,10/19/25 8:27,10/19/25 8:28
Sari,2,DT-104,Dump Truck,80,10/19/25 3:10,10/19/25 3:12
Agus,1,EX-210,Excavator,35,10/19/25 14:05,
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080", GinMode: gin.TestMode},
		Data:   config.DataConfig{TopN: 10},
	}
}

func newTestServer(t *testing.T, sourceFile string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pipeline := app.NewPipelineService(sourceFile)
	chat := app.NewChatService(pipeline)

	server := NewServer(testTemplates)
	require.NoError(t, server.Initialize(pipeline, chat, testConfig()))
	return server
}

func newTestServerWithData(t *testing.T) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alerts.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	return newTestServer(t, path)
}

func get(t *testing.T, handler http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, handler http.Handler, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestDashboardPage(t *testing.T) {
	server := newTestServerWithData(t)

	rec := get(t, server.Router(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Total Alerts")
	assert.Contains(t, rec.Body.String(), "Budi")
}

func TestDashboardPageSourceUnavailable(t *testing.T) {
	server := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"))

	rec := get(t, server.Router(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data source unavailable")
}

func TestStatusEndpoint(t *testing.T) {
	server := newTestServerWithData(t)

	rec := get(t, server.Router(), "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.EqualValues(t, 3, body["records"])
	roles := body["roles"].(map[string]interface{})
	assert.Equal(t, "Operator Name", roles["operator"])
	assert.Equal(t, "GMT Start Time", roles["start_time"])
}

func TestSummaryEndpoint(t *testing.T) {
	server := newTestServerWithData(t)

	rec := get(t, server.Router(), "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decodeJSON(t, rec)["total_alerts"])
}

func TestSummaryEndpointRespectsFilters(t *testing.T) {
	server := newTestServerWithData(t)

	rec := get(t, server.Router(), "/api/summary?shifts=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decodeJSON(t, rec)["total_alerts"])
}

func TestSummaryEndpointSourceUnavailable(t *testing.T) {
	server := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"))

	rec := get(t, server.Router(), "/api/summary")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAggregateEndpoint(t *testing.T) {
	server := newTestServerWithData(t)

	rec := get(t, server.Router(), "/api/aggregate?facet=hour")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.EqualValues(t, 3, body["total"])
	assert.Len(t, body["buckets"], 3)
}

func TestAggregateEndpointTwoFacets(t *testing.T) {
	server := newTestServerWithData(t)

	rec := get(t, server.Router(), "/api/aggregate?facet=shift&by=fleet_type")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeJSON(t, rec)["cells"])
}

func TestAggregateEndpointUnknownFacet(t *testing.T) {
	server := newTestServerWithData(t)

	rec := get(t, server.Router(), "/api/aggregate?facet=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsightsEndpoint(t *testing.T) {
	server := newTestServerWithData(t)

	rec := get(t, server.Router(), "/api/insights")
	require.Equal(t, http.StatusOK, rec.Code)
	insights := decodeJSON(t, rec)["insights"].([]interface{})
	require.NotEmpty(t, insights)
	first := insights[0].(map[string]interface{})
	assert.NotEmpty(t, first["html"], "insight markdown should render to HTML")
}

func TestExportEndpoint(t *testing.T) {
	server := newTestServerWithData(t)

	rec := get(t, server.Router(), "/api/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4, "header plus three records")
	assert.Contains(t, lines[0], "Operator Name")
	assert.Contains(t, lines[0], "risk_tier")
}

func TestChatFlow(t *testing.T) {
	server := newTestServerWithData(t)

	rec := postJSON(t, server.Router(), "/api/chat/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := decodeJSON(t, rec)["session_id"].(string)
	require.NotEmpty(t, sessionID)

	rec = postJSON(t, server.Router(), "/api/chat",
		`{"session_id":"`+sessionID+`","question":"Which operator has the most alerts?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Contains(t, body["answer"], "Budi")
	assert.Contains(t, body["html"], "<strong>")

	rec = get(t, server.Router(), "/api/chat/history?session_id="+sessionID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON(t, rec)["messages"], 2)
}

func TestChatUnknownSessionEndpoint(t *testing.T) {
	server := newTestServerWithData(t)

	rec := postJSON(t, server.Router(), "/api/chat",
		`{"session_id":"nope","question":"How many alerts?"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatMissingFields(t *testing.T) {
	server := newTestServerWithData(t)

	rec := postJSON(t, server.Router(), "/api/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
