package testkit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minevision/domain/enrich"
	"minevision/domain/schema"
)

func TestGenerateRowsDeterministic(t *testing.T) {
	config := DefaultFleetConfig()
	config.AlertCount = 50

	a := NewFleetDataGenerator(config).GenerateRows()
	b := NewFleetDataGenerator(config).GenerateRows()

	require.Len(t, a, 50)
	assert.Equal(t, a, b)
}

func TestGeneratedRowsSurviveThePipeline(t *testing.T) {
	config := DefaultFleetConfig()
	config.AlertCount = 200

	rows := NewFleetDataGenerator(config).GenerateRows()
	roles := schema.Resolve(Headers)

	assert.True(t, roles.Bound(schema.RoleOperator))
	assert.True(t, roles.Bound(schema.RoleSpeed))
	assert.True(t, roles.Bound(schema.RoleStartTime))
	assert.True(t, roles.Bound(schema.RoleEndTime))

	records := enrich.Enrich(rows, roles)
	require.Len(t, records, len(rows))

	var withStart, inCircadianLow int
	for _, rec := range records {
		if rec.Start != nil {
			withStart++
			if *rec.Hour >= 2 && *rec.Hour <= 5 {
				inCircadianLow++
			}
		}
	}
	assert.Equal(t, len(rows), withStart, "every generated timestamp should parse")
	assert.Greater(t, inCircadianLow, len(rows)/5, "generator should bias toward the circadian low")
}

func TestWriteCSV(t *testing.T) {
	config := DefaultFleetConfig()
	config.AlertCount = 10

	path := filepath.Join(t.TempDir(), "demo.csv")
	require.NoError(t, NewFleetDataGenerator(config).WriteCSV(path))
	assert.FileExists(t, path)
}
