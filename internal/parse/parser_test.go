package parse

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mpesa-statement-analyzer/internal/extract"
)

func csvDocument(rows []extract.Row) *extract.Document {
	return &extract.Document{
		Source: "statement.csv",
		Format: extract.FormatCSV,
		Rows:   rows,
	}
}

func TestParseCSVRow(t *testing.T) {
	doc := csvDocument([]extract.Row{
		{
			extract.FieldReceiptID:   "AB1",
			extract.FieldTimestamp:   "2024-01-01 10:00:00",
			extract.FieldDescription: "Airtime Purchase",
			extract.FieldAmountIn:    "",
			extract.FieldAmountOut:   "50.00",
			extract.FieldBalance:     "450.00",
		},
	})

	transactions, stats, err := NewStatementParser().Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(transactions))
	}
	if stats.RecordsParsed != 1 || stats.RecordsSkipped != 0 {
		t.Errorf("unexpected stats: %s", stats)
	}

	tx := transactions[0]
	if tx.ReceiptID != "AB1" {
		t.Errorf("receipt_id = %q, expected AB1", tx.ReceiptID)
	}
	if !tx.AmountOut.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("amount_out = %s, expected 50.00", tx.AmountOut)
	}
	if !tx.AmountIn.IsZero() {
		t.Errorf("amount_in = %s, expected 0", tx.AmountIn)
	}
	if !tx.BalanceKnown || !tx.BalanceAfter.Equal(decimal.RequireFromString("450.00")) {
		t.Errorf("balance = %s (known=%v), expected 450.00", tx.BalanceAfter, tx.BalanceKnown)
	}
	if tx.Category != "" {
		t.Errorf("parser must not assign categories, got %s", tx.Category)
	}
}

func TestParseSkipsBadRecords(t *testing.T) {
	doc := csvDocument([]extract.Row{
		{
			extract.FieldReceiptID: "AB1",
			extract.FieldTimestamp: "2024-01-01 10:00:00",
			extract.FieldAmountOut: "50.00",
		},
		{
			// Unparseable completion time
			extract.FieldReceiptID: "CD2",
			extract.FieldTimestamp: "not a date",
			extract.FieldAmountOut: "75.00",
		},
		{
			// Both money columns populated
			extract.FieldReceiptID: "EF3",
			extract.FieldTimestamp: "2024-01-03 10:00:00",
			extract.FieldAmountIn:  "100.00",
			extract.FieldAmountOut: "100.00",
		},
		{
			extract.FieldReceiptID: "GH4",
			extract.FieldTimestamp: "2024-01-04 10:00:00",
			extract.FieldAmountIn:  "200.00",
		},
	})

	transactions, stats, err := NewStatementParser().Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(transactions))
	}
	if stats.TotalRecords != 4 {
		t.Errorf("total records = %d, expected 4", stats.TotalRecords)
	}
	if stats.RecordsSkipped != 2 {
		t.Errorf("skipped = %d, expected 2", stats.RecordsSkipped)
	}
	if len(stats.Errors) != 2 {
		t.Errorf("expected 2 recorded errors, got %d", len(stats.Errors))
	}
	for _, recordErr := range stats.Errors {
		if !recordErr.IsRecoverable() {
			t.Errorf("record-level error should be recoverable: %v", recordErr)
		}
	}
}

func TestParseDeduplicates(t *testing.T) {
	row := extract.Row{
		extract.FieldReceiptID: "AB1",
		extract.FieldTimestamp: "2024-01-01 10:00:00",
		extract.FieldAmountOut: "50.00",
	}
	// Same receipt and time but a different amount is a distinct event
	conflicting := extract.Row{
		extract.FieldReceiptID: "AB1",
		extract.FieldTimestamp: "2024-01-01 10:00:00",
		extract.FieldAmountOut: "75.00",
	}

	doc := csvDocument([]extract.Row{row, row, conflicting})

	transactions, stats, err := NewStatementParser().Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions after dedup, got %d", len(transactions))
	}
	if stats.Duplicates != 1 {
		t.Errorf("duplicates = %d, expected 1", stats.Duplicates)
	}
}

func TestParseSortsChronologically(t *testing.T) {
	doc := csvDocument([]extract.Row{
		{
			extract.FieldReceiptID: "CD2",
			extract.FieldTimestamp: "2024-03-15 10:00:00",
			extract.FieldAmountOut: "50.00",
		},
		{
			extract.FieldReceiptID: "AB1",
			extract.FieldTimestamp: "2024-01-01 08:00:00",
			extract.FieldAmountIn:  "100.00",
		},
		{
			extract.FieldReceiptID: "EF3",
			extract.FieldTimestamp: "2024-02-10 12:00:00",
			extract.FieldAmountOut: "25.00",
		},
	})

	transactions, _, err := NewStatementParser().Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	for i := 1; i < len(transactions); i++ {
		if transactions[i].Timestamp.Before(transactions[i-1].Timestamp) {
			t.Errorf("transactions not sorted: %s after %s",
				transactions[i].Timestamp, transactions[i-1].Timestamp)
		}
	}
	if transactions[0].ReceiptID != "AB1" {
		t.Errorf("first transaction = %s, expected AB1", transactions[0].ReceiptID)
	}
}

func TestParseIdempotent(t *testing.T) {
	doc := csvDocument([]extract.Row{
		{
			extract.FieldReceiptID: "AB1",
			extract.FieldTimestamp: "2024-01-01 10:00:00",
			extract.FieldAmountOut: "50.00",
		},
		{
			extract.FieldReceiptID: "CD2",
			extract.FieldTimestamp: "2024-01-02 11:00:00",
			extract.FieldAmountIn:  "200.00",
		},
	})

	parser := NewStatementParser()
	first, _, err := parser.Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, _, err := parser.Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("repeated parse produced different counts: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equals(second[i]) {
			t.Errorf("transaction %d differs between runs", i)
		}
	}
}

func TestParseCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := csvDocument([]extract.Row{
		{
			extract.FieldReceiptID: "AB1",
			extract.FieldTimestamp: "2024-01-01 10:00:00",
			extract.FieldAmountOut: "50.00",
		},
	})

	_, _, err := NewStatementParser().Parse(ctx, doc)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestParseNilDocument(t *testing.T) {
	_, _, err := NewStatementParser().Parse(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for nil document")
	}
}

func TestParseStatsString(t *testing.T) {
	stats := &ParseStats{
		TotalRecords:   10,
		RecordsParsed:  8,
		RecordsSkipped: 2,
		Duplicates:     1,
	}

	expected := "8 of 10 records parsed (2 skipped, 1 duplicates collapsed)"
	if stats.String() != expected {
		t.Errorf("String() = %q, expected %q", stats.String(), expected)
	}
}

func TestParseTimestampPrecision(t *testing.T) {
	doc := csvDocument([]extract.Row{
		{
			extract.FieldReceiptID: "AB1",
			extract.FieldTimestamp: "2024-01-01 10:00:00",
			extract.FieldAmountOut: "50.00",
		},
	})

	transactions, _, err := NewStatementParser().Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	expected := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !transactions[0].Timestamp.Equal(expected) {
		t.Errorf("timestamp = %s, expected %s", transactions[0].Timestamp, expected)
	}
}
