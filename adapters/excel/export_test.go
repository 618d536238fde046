package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minevision/domain/enrich"
	"minevision/domain/event"
	"minevision/domain/risk"
	"minevision/domain/schema"
)

// Export the enriched subset, re-import it through the reader, and check
// that original and derived values survive untouched.
func TestExportCSVRoundTrip(t *testing.T) {
	headers := []string{"operator_name", "shift", "speed_kmh", "gmt_start", "gmt_end"}
	data := &SourceData{
		Headers: headers,
		Rows: []event.RawRecord{
			{"operator_name": "Ery", "shift": "1", "speed_kmh": "2", "gmt_start": "10/19/25 8:27", "gmt_end": "10/19/25 8:28"},
			{"operator_name": "Arif", "shift": "2", "speed_kmh": "12", "gmt_start": "11/12/25 4:12", "gmt_end": "11/12/25 4:12"},
			{"operator_name": "Broken", "shift": "", "speed_kmh": "", "gmt_start": "garbage", "gmt_end": ""},
		},
	}

	roles := schema.Resolve(headers)
	records := risk.Apply(enrich.Enrich(data.Rows, roles))

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, headers, records))

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	back, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	require.Len(t, back.Rows, len(records))

	// Original columns pass through bit-for-bit.
	for i, rec := range records {
		for _, h := range headers {
			assert.Equal(t, rec.Raw[h], back.Rows[i][h], "row %d column %s", i, h)
		}
	}

	// Derived columns serialize deterministically.
	assert.Equal(t, "2025-10-19 08:27:00", back.Rows[0]["start"])
	assert.Equal(t, "60", back.Rows[0]["duration_seconds"])
	assert.Equal(t, "8", back.Rows[0]["hour"])
	assert.Equal(t, "2025-10-19", back.Rows[0]["date"])
	assert.Equal(t, "Sunday", back.Rows[0]["day_of_week"])
	assert.Equal(t, string(records[1].RiskTier), back.Rows[1]["risk_tier"])

	// Unparseable record exports absent fields as empty cells.
	assert.Equal(t, "", back.Rows[2]["start"])
	assert.Equal(t, "", back.Rows[2]["duration_seconds"])
	assert.Equal(t, "", back.Rows[2]["risk_tier"])

	// Re-enriching the export reproduces the derived instants.
	rt := enrich.Enrich(back.Rows, schema.Resolve(back.Headers))
	require.NotNil(t, rt[0].Start)
	assert.Equal(t, records[0].Start.UTC(), rt[0].Start.UTC())
}

func TestExportCSVDoesNotDuplicateExistingColumns(t *testing.T) {
	headers := []string{"operator_name", "date"}
	records := enrich.Enrich([]event.RawRecord{
		{"operator_name": "A", "date": "raw-value"},
	}, schema.Resolve(headers))

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, headers, records))

	line, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 1, bytes.Count(line, []byte("date")))
}
