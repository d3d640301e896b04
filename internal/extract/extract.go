// Package extract turns raw statement bytes into ordered text lines (PDF)
// or ordered row mappings (CSV). It is the first stage of the pipeline and
// the only one that touches file formats; everything downstream works on
// the canonical fields it produces.
package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"mpesa-statement-analyzer/pkg/errors"
	"mpesa-statement-analyzer/pkg/logger"
)

// Format identifies the statement file format
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatCSV     Format = "csv"
	FormatUnknown Format = "unknown"
)

// Canonical field names produced by the extractor. The record parser and
// everything after it only ever sees these names.
const (
	FieldReceiptID   = "receipt_id"
	FieldTimestamp   = "timestamp"
	FieldDescription = "description"
	FieldAmountIn    = "amount_in"
	FieldAmountOut   = "amount_out"
	FieldBalance     = "balance"
	FieldStatus      = "transaction_status"
)

// Row maps canonical field names to raw cell values for one CSV record
type Row map[string]string

// Document is the extractor output: exactly one of Lines/Rows is
// populated depending on the source format.
type Document struct {
	Source string
	Format Format
	Lines  []string
	Rows   []Row
}

// pdfMagic is the signature every text PDF starts with
var pdfMagic = []byte("%PDF-")

// DetectFormat determines the statement format from the file extension,
// falling back to content sniffing when the extension is missing or
// unrecognized.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	case ".csv":
		return FormatCSV
	}

	if bytes.HasPrefix(data, pdfMagic) {
		return FormatPDF
	}

	// A plausible CSV statement has a delimiter within the first line.
	if idx := bytes.IndexByte(data, '\n'); idx > 0 {
		if bytes.ContainsRune(data[:idx], ',') {
			return FormatCSV
		}
	}

	return FormatUnknown
}

// ExtractFile reads and extracts a statement from disk
func ExtractFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}

	return Extract(data, path)
}

// Extract dispatches statement bytes to the format-specific extractor
func Extract(data []byte, name string) (*Document, error) {
	log := logger.GetGlobalLogger().WithComponent("extractor")

	format := DetectFormat(name, data)
	log.WithFields(logger.Fields{
		"source": name,
		"format": format,
		"bytes":  len(data),
	}).Debug("Detected statement format")

	switch format {
	case FormatPDF:
		lines, err := NewPDFExtractor().ExtractLines(data, name)
		if err != nil {
			return nil, err
		}
		return &Document{Source: name, Format: FormatPDF, Lines: lines}, nil

	case FormatCSV:
		rows, err := NewCSVExtractor(DefaultHeaderSynonyms()).ExtractRows(data, name)
		if err != nil {
			return nil, err
		}
		return &Document{Source: name, Format: FormatCSV, Rows: rows}, nil

	default:
		return nil, errors.FormatError(errors.CodeUnsupportedFormat, name, nil)
	}
}
