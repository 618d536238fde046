package excel

import "minevision/domain/event"

// SourceData is a raw table as read from disk: trimmed headers and one
// RawRecord per data row, before any role resolution or enrichment.
type SourceData struct {
	Headers []string
	Rows    []event.RawRecord
}
