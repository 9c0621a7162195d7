package document

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVExtractor flattens CSV rows into header-labeled text lines.
type CSVExtractor struct{}

func (e *CSVExtractor) Extract(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	// First row is headers.
	headers := records[0]

	var buf strings.Builder
	for _, row := range records[1:] {
		for j, cell := range row {
			if j > 0 {
				buf.WriteString(", ")
			}
			if j < len(headers) {
				buf.WriteString(headers[j] + ": " + cell)
			} else {
				buf.WriteString(cell)
			}
		}
		buf.WriteString("\n")
	}

	return buf.String(), nil
}
