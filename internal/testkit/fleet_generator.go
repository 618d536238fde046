// Package testkit generates synthetic fatigue alert data for tests and demo
// mode. Generation is fully deterministic for a fixed seed so fixtures stay
// stable across runs.
package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"time"

	"minevision/domain/event"
)

// FleetGeneratorConfig configures the fatigue alert generator
type FleetGeneratorConfig struct {
	AlertCount    int       `json:"alert_count"`
	OperatorCount int       `json:"operator_count"`
	AssetCount    int       `json:"asset_count"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Seed          int64     `json:"seed"`
}

// DefaultFleetConfig returns sensible defaults for fleet data generation
func DefaultFleetConfig() FleetGeneratorConfig {
	return FleetGeneratorConfig{
		AlertCount:    500,
		OperatorCount: 40,
		AssetCount:    25,
		StartDate:     time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 11, 30, 23, 59, 59, 0, time.UTC),
		Seed:          42,
	}
}

// Headers is the column set the generator emits, matching the shape of the
// field exports.
var Headers = []string{
	"ticket_number",
	"parent_fleet",
	"fleet_number",
	"operator_name",
	"alarm_type",
	"gmt_start",
	"gmt_end",
	"shift",
	"speed_kmh",
	"validation_status",
}

var fleetTypes = []string{"ADT - OB HAULLER", "SDJ - OB HAULLER", "ADT - WATER TRUCK"}

// FleetDataGenerator generates synthetic driver fatigue alarm rows
type FleetDataGenerator struct {
	config FleetGeneratorConfig
	rng    *rand.Rand
}

// NewFleetDataGenerator creates a new fleet data generator
func NewFleetDataGenerator(config FleetGeneratorConfig) *FleetDataGenerator {
	return &FleetDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRows produces AlertCount raw records. Alert times are biased
// toward the circadian-low hours so generated data exercises every risk
// tier.
func (g *FleetDataGenerator) GenerateRows() []event.RawRecord {
	rows := make([]event.RawRecord, 0, g.config.AlertCount)
	for i := 0; i < g.config.AlertCount; i++ {
		rows = append(rows, g.generateAlert(i))
	}
	return rows
}

func (g *FleetDataGenerator) generateAlert(n int) event.RawRecord {
	operator := fmt.Sprintf("Operator %02d", g.rng.Intn(g.config.OperatorCount)+1)
	asset := fmt.Sprintf("ADT - HD%05d", 70000+g.rng.Intn(g.config.AssetCount))
	fleetType := fleetTypes[g.rng.Intn(len(fleetTypes))]

	start := g.randomAlertTime()
	// Most alerts clear within two minutes; a few drag on.
	durationSec := g.rng.Intn(120)
	if g.rng.Float64() < 0.05 {
		durationSec += 300 + g.rng.Intn(600)
	}
	end := start.Add(time.Duration(durationSec) * time.Second)

	shift := 1
	if start.Hour() >= 18 || start.Hour() < 6 {
		shift = 2
	}

	// Speed skews low (haul trucks idle or crawling when alarms fire) with
	// an occasional fast mover.
	speed := g.rng.Intn(8)
	if g.rng.Float64() < 0.15 {
		speed = 10 + g.rng.Intn(40)
	}

	return event.RawRecord{
		"ticket_number":     fmt.Sprintf("%s-PDSM%08d", asset, 100000+n),
		"parent_fleet":      fleetType,
		"fleet_number":      asset,
		"operator_name":     operator,
		"alarm_type":        "Driver Fatigue",
		"gmt_start":         start.Format("1/2/06 15:04"),
		"gmt_end":           end.Format("1/2/06 15:04"),
		"shift":             fmt.Sprintf("%d", shift),
		"speed_kmh":         fmt.Sprintf("%d", speed),
		"validation_status": "Validated",
	}
}

// randomAlertTime picks an instant in the configured window, with a third
// of alerts forced into the 2-5 AM circadian low.
func (g *FleetDataGenerator) randomAlertTime() time.Time {
	span := g.config.EndDate.Sub(g.config.StartDate)
	t := g.config.StartDate.Add(time.Duration(g.rng.Int63n(int64(span))))

	if g.rng.Float64() < 0.33 {
		t = time.Date(t.Year(), t.Month(), t.Day(), 2+g.rng.Intn(4), g.rng.Intn(60), 0, 0, time.UTC)
	}
	return t
}

// WriteCSV writes a generated table to path, for demo mode and fixtures.
func (g *FleetDataGenerator) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Headers); err != nil {
		return err
	}
	for _, row := range g.GenerateRows() {
		record := make([]string, len(Headers))
		for i, h := range Headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
