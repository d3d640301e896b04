package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "plain amount",
			input:    "100.50",
			expected: "100.5",
		},
		{
			name:     "thousands separator",
			input:    "1,234.56",
			expected: "1234.56",
		},
		{
			name:     "large amount with multiple separators",
			input:    "1,234,567.89",
			expected: "1234567.89",
		},
		{
			name:     "currency prefix",
			input:    "KES 500.00",
			expected: "500",
		},
		{
			name:     "ksh prefix",
			input:    "Ksh1,000.00",
			expected: "1000",
		},
		{
			name:     "negative amount normalized to magnitude",
			input:    "-250.00",
			expected: "250",
		},
		{
			name:     "blank is zero",
			input:    "",
			expected: "0",
		},
		{
			name:     "whitespace only is zero",
			input:    "   ",
			expected: "0",
		},
		{
			name:     "integer amount",
			input:    "75",
			expected: "75",
		},
		{
			name:    "garbage input",
			input:   "abc",
			wantErr: true,
		},
		{
			name:    "multiple decimal points",
			input:   "1.2.3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAmount(%q) expected error, got %s", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			expected := decimal.RequireFromString(tt.expected)
			if !result.Equal(expected) {
				t.Errorf("ParseAmount(%q) = %s, expected %s", tt.input, result, expected)
			}
		})
	}
}

func TestParseCompletionTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "statement format", input: "2024-03-15 14:23:01"},
		{name: "date only", input: "2024-03-15"},
		{name: "slash format", input: "15/03/2024 14:23:01"},
		{name: "iso without zone", input: "2024-03-15T14:23:01"},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not a date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCompletionTime(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ParseCompletionTime(%q) expected error", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ParseCompletionTime(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	ts := time.Date(2024, 3, 15, 14, 23, 1, 0, time.UTC)

	tests := []struct {
		name    string
		tx      *Transaction
		wantErr bool
	}{
		{
			name: "valid debit",
			tx: &Transaction{
				ReceiptID: "SC12AB34CD",
				Timestamp: ts,
				AmountOut: decimal.RequireFromString("50.00"),
				AmountIn:  decimal.Zero,
			},
		},
		{
			name: "valid credit",
			tx: &Transaction{
				ReceiptID: "SC12AB34CD",
				Timestamp: ts,
				AmountIn:  decimal.RequireFromString("1000.00"),
				AmountOut: decimal.Zero,
			},
		},
		{
			name: "both amounts set",
			tx: &Transaction{
				ReceiptID: "SC12AB34CD",
				Timestamp: ts,
				AmountIn:  decimal.RequireFromString("100.00"),
				AmountOut: decimal.RequireFromString("50.00"),
			},
			wantErr: true,
		},
		{
			name: "both amounts zero",
			tx: &Transaction{
				ReceiptID: "SC12AB34CD",
				Timestamp: ts,
				AmountIn:  decimal.Zero,
				AmountOut: decimal.Zero,
			},
			wantErr: true,
		},
		{
			name: "missing receipt",
			tx: &Transaction{
				Timestamp: ts,
				AmountOut: decimal.RequireFromString("50.00"),
			},
			wantErr: true,
		},
		{
			name: "missing timestamp",
			tx: &Transaction{
				ReceiptID: "SC12AB34CD",
				AmountOut: decimal.RequireFromString("50.00"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestTransactionDirection(t *testing.T) {
	debit := &Transaction{AmountOut: decimal.RequireFromString("50.00"), AmountIn: decimal.Zero}
	credit := &Transaction{AmountIn: decimal.RequireFromString("50.00"), AmountOut: decimal.Zero}

	if !debit.IsDebit() || debit.IsCredit() {
		t.Error("expected debit transaction")
	}
	if !credit.IsCredit() || credit.IsDebit() {
		t.Error("expected credit transaction")
	}
	if !debit.Amount().Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("Amount() = %s, expected 50.00", debit.Amount())
	}
}

func TestDedupKey(t *testing.T) {
	ts := time.Date(2024, 3, 15, 14, 23, 1, 0, time.UTC)

	tx1 := &Transaction{ReceiptID: "SC12AB34CD", Timestamp: ts}
	tx2 := &Transaction{ReceiptID: "SC12AB34CD", Timestamp: ts.In(time.FixedZone("EAT", 3*3600))}
	tx3 := &Transaction{ReceiptID: "SC12AB34CD", Timestamp: ts.Add(time.Second)}

	if tx1.DedupKey() != tx2.DedupKey() {
		t.Error("same instant in different zones should produce the same key")
	}
	if tx1.DedupKey() == tx3.DedupKey() {
		t.Error("different timestamps should produce different keys")
	}
}

func TestTransactionEquals(t *testing.T) {
	ts := time.Date(2024, 3, 15, 14, 23, 1, 0, time.UTC)
	amount := decimal.RequireFromString("50.00")

	base := &Transaction{ReceiptID: "SC12AB34CD", Timestamp: ts, AmountOut: amount, AmountIn: decimal.Zero}
	same := &Transaction{ReceiptID: "SC12AB34CD", Timestamp: ts, AmountOut: amount, AmountIn: decimal.Zero}
	differentAmount := &Transaction{ReceiptID: "SC12AB34CD", Timestamp: ts, AmountOut: decimal.RequireFromString("75.00"), AmountIn: decimal.Zero}

	if !base.Equals(same) {
		t.Error("identical transactions should be equal")
	}
	if base.Equals(differentAmount) {
		t.Error("transactions with different amounts should not be equal")
	}
}

func TestIsPlausibleReceiptID(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"SC12AB34CD", true},
		{"ABC123", true},
		{"AB1", false},
		{"", false},
		{"sc12ab34cd", false},
		{"SC12-AB34", false},
	}

	for _, tt := range tests {
		if got := IsPlausibleReceiptID(tt.input); got != tt.expected {
			t.Errorf("IsPlausibleReceiptID(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestTransactionJSONRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 15, 14, 23, 1, 0, time.UTC)
	tx := &Transaction{
		ReceiptID:    "SC12AB34CD",
		Timestamp:    ts,
		Description:  "Pay Bill to KPLC Prepaid",
		AmountOut:    decimal.RequireFromString("50.00"),
		AmountIn:     decimal.Zero,
		BalanceAfter: decimal.RequireFromString("450.00"),
		BalanceKnown: true,
		Category:     CategoryPayBill,
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Transaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !tx.Equals(&decoded) {
		t.Errorf("round trip mismatch: %+v vs %+v", tx, decoded)
	}
	if decoded.Category != CategoryPayBill {
		t.Errorf("category lost in round trip: %s", decoded.Category)
	}
}

func TestCategoryFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
	}{
		{"PAYBILL", CategoryPayBill},
		{"paybill", CategoryPayBill},
		{" airtime ", CategoryAirtime},
		{"unknown", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		if got := CategoryFromString(tt.input); got != tt.expected {
			t.Errorf("CategoryFromString(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}
