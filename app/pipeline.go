// Package app wires the pipeline stages together: load a source workbook,
// resolve its schema, enrich the rows, and serve filtered working sets with
// risk tiers and aggregates to the presentation layer.
package app

import (
	"log"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"minevision/adapters/excel"
	"minevision/domain/agg"
	"minevision/domain/core"
	"minevision/domain/enrich"
	"minevision/domain/event"
	"minevision/domain/risk"
	"minevision/domain/schema"
)

// PipelineService owns the parsed-and-enriched table for one source file.
// The parse result is cached keyed by content hash; a change to the file is
// picked up on the next load, and concurrent loads of the same content are
// collapsed into one parse.
type PipelineService struct {
	sourceFile string

	group singleflight.Group

	mu     sync.RWMutex
	cached *event.Table
}

// NewPipelineService creates a pipeline service for one source file
func NewPipelineService(sourceFile string) *PipelineService {
	return &PipelineService{sourceFile: sourceFile}
}

// SourceFile returns the configured source path.
func (s *PipelineService) SourceFile() string {
	return s.sourceFile
}

// Load returns the enriched table for the current source content, parsing
// at most once per distinct content. Risk tiers are NOT assigned here; they
// belong to a working set, because the percentile thresholds follow the
// active filter.
func (s *PipelineService) Load() (*event.Table, error) {
	raw, err := os.ReadFile(s.sourceFile)
	if err != nil {
		return nil, core.NewSourceError(s.sourceFile, err)
	}
	fingerprint := core.NewHash(raw)

	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil && cached.Fingerprint == fingerprint {
		return cached, nil
	}

	table, err, _ := s.group.Do(fingerprint.String(), func() (interface{}, error) {
		return s.parse(fingerprint)
	})
	if err != nil {
		return nil, err
	}
	return table.(*event.Table), nil
}

func (s *PipelineService) parse(fingerprint core.Hash) (*event.Table, error) {
	loadID := core.LoadID(core.NewID())
	log.Printf("[Pipeline] load %s: parsing %s (content %s)", loadID, s.sourceFile, fingerprint.Short())

	data, err := excel.NewDataReader(s.sourceFile).ReadData()
	if err != nil {
		return nil, err
	}

	roles := schema.Resolve(data.Headers)
	for _, role := range schema.Roles {
		if !roles.Bound(role) {
			log.Printf("[Pipeline] load %s: role %s unbound, dependent features degrade", loadID, role)
		}
	}

	table := &event.Table{
		Headers:     data.Headers,
		Roles:       roles,
		Records:     enrich.Enrich(data.Rows, roles),
		Fingerprint: fingerprint,
	}

	s.mu.Lock()
	s.cached = table
	s.mu.Unlock()

	log.Printf("[Pipeline] load %s: %d records enriched (%d columns)", loadID, table.Len(), len(table.Headers))
	return table, nil
}

// View is one filtered working set with its risk tiers assigned and the
// thresholds that produced them. Views are values; nothing in them mutates
// the underlying table.
type View struct {
	Table   *event.Table
	Filter  agg.FilterSpec
	Records []event.EnrichedRecord

	Thresholds    risk.Thresholds
	HasThresholds bool
}

// View applies the filter to the current table and classifies the subset.
func (s *PipelineService) View(spec agg.FilterSpec) (*View, error) {
	table, err := s.Load()
	if err != nil {
		return nil, err
	}

	subset := agg.Apply(table.Records, spec)
	th, ok := risk.ComputeThresholds(subset)
	if ok {
		subset = risk.Apply(subset)
	}

	return &View{
		Table:         table,
		Filter:        spec,
		Records:       subset,
		Thresholds:    th,
		HasThresholds: ok,
	}, nil
}
