package analyze

import (
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	transactions := sampleTransactions()
	session := NewSession("statement.csv", transactions)

	if session.ID.String() == "" {
		t.Error("session must have an identifier")
	}
	if session.Source != "statement.csv" {
		t.Errorf("source = %q", session.Source)
	}
	if session.Count() != len(transactions) {
		t.Errorf("count = %d, expected %d", session.Count(), len(transactions))
	}
	if session.Summary() == nil {
		t.Fatal("summary must be computed at creation")
	}
	if session.Summary().Overview.TransactionCount != len(transactions) {
		t.Error("summary does not cover the full transaction set")
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := NewSession("a.csv", nil)
	b := NewSession("b.csv", nil)

	if a.ID == b.ID {
		t.Error("sessions must have distinct identifiers")
	}
}

func TestSessionFilter(t *testing.T) {
	session := NewSession("statement.csv", sampleTransactions())

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{
			name:     "open range returns all",
			expected: 4,
		},
		{
			name:     "january only",
			start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
			expected: 2,
		},
		{
			name:     "open start",
			end:      time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
			expected: 2,
		},
		{
			name:     "open end",
			start:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expected: 2,
		},
		{
			name:     "boundary timestamps are inclusive",
			start:    time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
			end:      time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
			expected: 1,
		},
		{
			name:     "no matches",
			start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := session.Filter(tt.start, tt.end)
			if len(filtered) != tt.expected {
				t.Errorf("Filter returned %d transactions, expected %d", len(filtered), tt.expected)
			}
		})
	}
}

func TestFilteredSummaryLeavesSessionIntact(t *testing.T) {
	session := NewSession("statement.csv", sampleTransactions())

	filtered := session.FilteredSummary(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
	)

	if filtered.Overview.TransactionCount != 2 {
		t.Errorf("filtered count = %d, expected 2", filtered.Overview.TransactionCount)
	}
	if session.Summary().Overview.TransactionCount != 4 {
		t.Error("filtering must not mutate the session summary")
	}
	if session.Count() != 4 {
		t.Error("filtering must not mutate the transaction set")
	}
}
