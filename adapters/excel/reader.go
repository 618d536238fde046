// Package excel reads fatigue alert workbooks. Both .xlsx (every sheet,
// concatenated) and .csv sources are supported; the pipeline downstream
// never cares which one the data came from.
package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"minevision/domain/core"
	"minevision/domain/event"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the source table. A missing or unreadable file is the one
// fatal condition in the pipeline and surfaces as ErrSourceUnavailable.
func (r *DataReader) ReadData() (*SourceData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, core.NewSourceError(r.filePath, err)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads every sheet of the workbook and concatenates their
// rows. The first sheet fixes the header set; sheets with a different
// header set are skipped with a warning so one stray tab cannot poison the
// load.
func (r *DataReader) readExcelData() (*SourceData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, core.NewSourceError(r.filePath, err)
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	var headers []string
	var all [][]string

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			log.Printf("[DataReader] Skipping sheet %q: %v", sheet, err)
			continue
		}
		if len(rows) < 2 {
			continue
		}

		sheetHeaders := trimHeaders(rows[0])
		if headers == nil {
			headers = sheetHeaders
			all = append(all, rows[1:]...)
			log.Printf("[DataReader] Sheet %q read (%d columns, %d rows)", sheet, len(headers), len(rows)-1)
			continue
		}
		if !sameHeaders(headers, sheetHeaders) {
			log.Printf("[DataReader] Skipping sheet %q: header set differs from first sheet", sheet)
			continue
		}
		all = append(all, rows[1:]...)
		log.Printf("[DataReader] Sheet %q appended (%d rows)", sheet, len(rows)-1)
	}

	if headers == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptySource, r.filePath)
	}

	return buildSourceData(headers, all), nil
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*SourceData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, core.NewSourceError(r.filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewSourceError(r.filePath, err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptySource, r.filePath)
	}

	return buildSourceData(trimHeaders(rows[0]), rows[1:]), nil
}

// buildSourceData converts raw string rows into keyed records.
func buildSourceData(headers []string, rows [][]string) *SourceData {
	records := make([]event.RawRecord, 0, len(rows))
	for _, row := range rows {
		rec := make(event.RawRecord, len(headers))
		for j, header := range headers {
			if j < len(row) {
				rec[header] = strings.TrimSpace(row[j])
			} else {
				rec[header] = ""
			}
		}
		records = append(records, rec)
	}

	log.Printf("[DataReader] Source processed (%d columns, %d rows)", len(headers), len(records))
	return &SourceData{Headers: headers, Rows: records}
}

func trimHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

func sameHeaders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
