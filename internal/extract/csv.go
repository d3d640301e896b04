package extract

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"mpesa-statement-analyzer/pkg/errors"
	"mpesa-statement-analyzer/pkg/logger"
)

// HeaderSynonyms maps each canonical field name to the header spellings
// statement exports are known to use. Resolution happens once per file,
// never per row.
type HeaderSynonyms map[string][]string

// DefaultHeaderSynonyms returns the synonym table for M-Pesa CSV exports.
// Matching is case-insensitive and ignores trailing punctuation, so
// "Receipt No." and "receipt no" both resolve to receipt_id.
func DefaultHeaderSynonyms() HeaderSynonyms {
	return HeaderSynonyms{
		FieldReceiptID:   {"receipt no", "receipt number", "receipt", "transaction id", "reference"},
		FieldTimestamp:   {"completion time", "completion date", "transaction date", "date & time", "datetime", "date", "time"},
		FieldDescription: {"details", "detail", "description", "narrative", "particulars"},
		FieldAmountIn:    {"paid in", "amount paid in", "money in", "credit", "in"},
		FieldAmountOut:   {"withdrawn", "amount withdrawn", "paid out", "money out", "debit", "out"},
		FieldBalance:     {"balance", "account balance", "running balance"},
		FieldStatus:      {"transaction status", "status"},
	}
}

// normalizeHeader lower-cases a header cell and strips the punctuation and
// line breaks PDF-originated exports leave behind.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "\n", " ")
	h = strings.TrimSuffix(h, ".")
	h = strings.TrimSuffix(h, ":")
	return strings.Join(strings.Fields(h), " ")
}

// resolve returns the canonical field for a raw header cell, or "" when
// the header is not recognized.
func (hs HeaderSynonyms) resolve(header string) string {
	normalized := normalizeHeader(header)
	if normalized == "" {
		return ""
	}

	for field, spellings := range hs {
		for _, spelling := range spellings {
			if normalized == spelling {
				return field
			}
		}
	}

	return ""
}

// maxHeaderScanRows bounds the search for the header row; M-Pesa exports
// put account metadata above the transaction table.
const maxHeaderScanRows = 20

// CSVExtractor extracts ordered row mappings from CSV statement bytes
type CSVExtractor struct {
	synonyms HeaderSynonyms
	logger   logger.Logger
}

// NewCSVExtractor creates a CSVExtractor with the given synonym table
func NewCSVExtractor(synonyms HeaderSynonyms) *CSVExtractor {
	if synonyms == nil {
		synonyms = DefaultHeaderSynonyms()
	}
	return &CSVExtractor{
		synonyms: synonyms,
		logger:   logger.GetGlobalLogger().WithComponent("csv_extractor"),
	}
}

// fieldIndex maps a canonical field name to its column position in the
// detected header row.
type fieldIndex map[string]int

// ExtractRows extracts ordered row mappings from CSV statement bytes.
// The header row is located within the first rows of the file; rows
// before it are metadata and discarded. Malformed data rows are skipped
// here only if they cannot be read at all - field-level problems are the
// record parser's concern.
func (e *CSVExtractor) ExtractRows(data []byte, name string) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single unreadable row is not fatal; resync on the next.
			e.logger.WithError(err).WithField("source", name).Debug("Skipping unreadable CSV row")
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, errors.FormatError(errors.CodeNoTextContent, name, nil)
	}

	headerRow, index := e.locateHeader(records)
	if headerRow < 0 {
		return nil, errors.FormatError(errors.CodeMissingColumns, name, nil)
	}

	e.logger.WithFields(logger.Fields{
		"source":     name,
		"header_row": headerRow,
		"columns":    len(index),
	}).Debug("Resolved statement columns")

	rows := make([]Row, 0, len(records)-headerRow-1)
	for _, record := range records[headerRow+1:] {
		row := make(Row, len(index))
		for field, col := range index {
			if col < len(record) {
				row[field] = strings.TrimSpace(record[col])
			}
		}
		// Rows with no receipt value are table footers or page breaks.
		if row[FieldReceiptID] == "" {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// locateHeader scans the leading records for a row whose cells resolve to
// the canonical schema. A row qualifies when it carries at least the
// receipt and completion-time columns plus one money column.
func (e *CSVExtractor) locateHeader(records [][]string) (int, fieldIndex) {
	limit := len(records)
	if limit > maxHeaderScanRows {
		limit = maxHeaderScanRows
	}

	for i := 0; i < limit; i++ {
		index := make(fieldIndex)
		for col, cell := range records[i] {
			field := e.synonyms.resolve(cell)
			if field == "" {
				continue
			}
			if _, taken := index[field]; !taken {
				index[field] = col
			}
		}

		_, hasReceipt := index[FieldReceiptID]
		_, hasTime := index[FieldTimestamp]
		_, hasIn := index[FieldAmountIn]
		_, hasOut := index[FieldAmountOut]

		if hasReceipt && hasTime && (hasIn || hasOut) {
			return i, index
		}
	}

	return -1, nil
}
