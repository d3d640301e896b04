// Package parse converts extracted statement lines and rows into typed,
// validated transactions. Record-level failures are isolated: the bad
// record is skipped and counted, and parsing continues, so a partially
// malformed statement still yields a usable analysis.
package parse

import (
	"context"
	"fmt"
	"sort"

	"mpesa-statement-analyzer/internal/extract"
	"mpesa-statement-analyzer/internal/models"
	"mpesa-statement-analyzer/pkg/errors"
	"mpesa-statement-analyzer/pkg/logger"
)

// ParseStats holds statistics about a parsing operation. RecordsSkipped
// is surfaced to the caller so the user sees "N of M records could not
// be parsed" instead of silently losing data.
type ParseStats struct {
	TotalRecords   int
	RecordsParsed  int
	RecordsSkipped int
	Duplicates     int
	Errors         []*errors.AnalyzerError
}

// NewParseStats creates a new ParseStats instance
func NewParseStats() *ParseStats {
	return &ParseStats{
		Errors: make([]*errors.AnalyzerError, 0),
	}
}

// AddError records a skipped record and the reason
func (ps *ParseStats) AddError(err *errors.AnalyzerError) {
	ps.Errors = append(ps.Errors, err)
	ps.RecordsSkipped++
}

// HasErrors returns true if any records were skipped
func (ps *ParseStats) HasErrors() bool {
	return ps.RecordsSkipped > 0
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("%d of %d records parsed (%d skipped, %d duplicates collapsed)",
		ps.RecordsParsed, ps.TotalRecords, ps.RecordsSkipped, ps.Duplicates)
}

// SampleErrors returns up to maxSamples skip reasons for logging
func (ps *ParseStats) SampleErrors(maxSamples int) []string {
	limit := len(ps.Errors)
	if maxSamples > 0 && maxSamples < limit {
		limit = maxSamples
	}

	var samples []string
	for i := 0; i < limit; i++ {
		samples = append(samples, ps.Errors[i].Error())
	}
	return samples
}

// StatementParser parses extracted statement content into transactions
type StatementParser struct {
	logger logger.Logger
}

// NewStatementParser creates a StatementParser
func NewStatementParser() *StatementParser {
	return &StatementParser{
		logger: logger.GetGlobalLogger().WithComponent("statement_parser"),
	}
}

// Parse converts an extracted document into a deduplicated transaction
// sequence sorted by completion time ascending. Transactions come back
// without categories; classification is a separate stage.
func (sp *StatementParser) Parse(ctx context.Context, doc *extract.Document) ([]*models.Transaction, *ParseStats, error) {
	if doc == nil {
		return nil, nil, errors.ValidationError(errors.CodeMissingField, "document", nil, nil)
	}

	sp.logger.WithFields(logger.Fields{
		"source": doc.Source,
		"format": doc.Format,
	}).Info("Starting statement parsing")

	var transactions []*models.Transaction
	var stats *ParseStats
	var err error

	switch doc.Format {
	case extract.FormatCSV:
		transactions, stats, err = sp.parseRows(ctx, doc.Rows, doc.Source)
	case extract.FormatPDF:
		transactions, stats, err = sp.parseLines(ctx, doc.Lines, doc.Source)
	default:
		return nil, nil, errors.FormatError(errors.CodeUnsupportedFormat, doc.Source, nil)
	}

	if err != nil {
		return nil, stats, err
	}

	transactions = sp.finalize(transactions, stats)

	sp.logger.WithFields(logger.Fields{
		"source":          doc.Source,
		"records_parsed":  stats.RecordsParsed,
		"records_skipped": stats.RecordsSkipped,
		"duplicates":      stats.Duplicates,
	}).Info("Statement parsing completed")

	if stats.HasErrors() {
		sp.logger.WithField("sample_errors", stats.SampleErrors(3)).Warn("Some records could not be parsed")
	}

	return transactions, stats, nil
}

// parseRows handles CSV mode: one record per row mapping
func (sp *StatementParser) parseRows(ctx context.Context, rows []extract.Row, source string) ([]*models.Transaction, *ParseStats, error) {
	stats := NewParseStats()
	var transactions []*models.Transaction

	for i, row := range rows {
		if cancelled(ctx) {
			return nil, stats, errors.InternalError(errors.CodeCancelled, "statement parsing", ctx.Err())
		}

		stats.TotalRecords++
		line := i + 1

		tx, parseErr := sp.transactionFromRow(row, source, line)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		if err := tx.Validate(); err != nil {
			stats.AddError(errors.ParseError(
				errors.CodeInvalidRecord, source, line, "record", tx.ReceiptID, err,
			))
			continue
		}

		transactions = append(transactions, tx)
		stats.RecordsParsed++
	}

	return transactions, stats, nil
}

// transactionFromRow builds a transaction from one canonical row mapping.
// Blank money cells mean zero, not missing - an M-Pesa export leaves the
// unused money column empty.
func (sp *StatementParser) transactionFromRow(row extract.Row, source string, line int) (*models.Transaction, *errors.AnalyzerError) {
	receiptID := row[extract.FieldReceiptID]
	if receiptID == "" {
		return nil, errors.ParseError(errors.CodeMissingField, source, line, extract.FieldReceiptID, "", nil)
	}

	ts, err := models.ParseCompletionTime(row[extract.FieldTimestamp])
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidDate, source, line, extract.FieldTimestamp, row[extract.FieldTimestamp], err)
	}

	amountIn, err := models.ParseAmount(row[extract.FieldAmountIn])
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidAmount, source, line, extract.FieldAmountIn, row[extract.FieldAmountIn], err)
	}

	amountOut, err := models.ParseAmount(row[extract.FieldAmountOut])
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidAmount, source, line, extract.FieldAmountOut, row[extract.FieldAmountOut], err)
	}

	tx := models.NewTransaction(receiptID, ts, row[extract.FieldDescription], amountIn, amountOut)

	if balanceStr := row[extract.FieldBalance]; balanceStr != "" {
		balance, err := models.ParseAmount(balanceStr)
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidAmount, source, line, extract.FieldBalance, balanceStr, err)
		}
		tx.WithBalance(balance)
	}

	return tx, nil
}

// finalize deduplicates on (receipt_id, timestamp) and sorts by
// completion time ascending. Only records identical in amounts are
// collapsed; a reused receipt ID with different amounts is kept.
func (sp *StatementParser) finalize(transactions []*models.Transaction, stats *ParseStats) []*models.Transaction {
	seen := make(map[string]*models.Transaction, len(transactions))
	result := make([]*models.Transaction, 0, len(transactions))

	for _, tx := range transactions {
		key := tx.DedupKey()
		if prev, dup := seen[key]; dup && prev.Equals(tx) {
			stats.Duplicates++
			continue
		}
		seen[key] = tx
		result = append(result, tx)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result
}

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
