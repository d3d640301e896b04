package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"mpesa-statement-analyzer/pkg/errors"
	"mpesa-statement-analyzer/pkg/logger"
)

// PDFExtractor extracts ordered text lines from PDF statement bytes
type PDFExtractor struct {
	logger logger.Logger
}

// NewPDFExtractor creates a PDFExtractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{
		logger: logger.GetGlobalLogger().WithComponent("pdf_extractor"),
	}
}

// fragmentGap is the horizontal distance, in PDF units, above which two
// text fragments on the same row belong to separate columns or words.
const fragmentGap = 1.5

// ExtractLines extracts text lines from a PDF statement, page by page,
// preserving the original top-to-bottom row order. Statements whose money
// or balance column wraps a transaction onto a second physical line come
// out as separate lines here; reassembly is the record parser's job.
func (e *PDFExtractor) ExtractLines(data []byte, name string) (lines []string, err error) {
	// The underlying PDF reader panics on some malformed files; treat
	// that as a corrupted statement rather than crashing the pipeline.
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = errors.FileError(errors.CodeFileCorrupted, name, fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, name, err)
	}

	pageCount := reader.NumPage()
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// A single unreadable page does not doom the statement.
			e.logger.WithError(err).WithFields(logger.Fields{
				"source": name,
				"page":   pageNum,
			}).Warn("Failed to extract text from page")
			continue
		}

		for _, row := range rows {
			line := joinFragments(row.Content)
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}

	if len(lines) == 0 {
		return nil, errors.FormatError(errors.CodeNoTextContent, name, nil)
	}

	e.logger.WithFields(logger.Fields{
		"source": name,
		"pages":  pageCount,
		"lines":  len(lines),
	}).Debug("Extracted statement text")

	return lines, nil
}

// joinFragments reassembles a physical line from its positioned text
// fragments. Fragments arrive sorted left to right; a gap wider than the
// tracking between glyphs marks a word or column boundary.
func joinFragments(fragments []pdf.Text) string {
	var sb strings.Builder
	var prevEnd float64

	for i, fragment := range fragments {
		if i > 0 && fragment.X-prevEnd > fragmentGap {
			sb.WriteByte(' ')
		}
		sb.WriteString(fragment.S)
		prevEnd = fragment.X + fragment.W
	}

	return sb.String()
}
