package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the semantic category assigned to a transaction from its
// description. The enumeration is fixed; unknown descriptions fall back
// to CategoryOther.
type Category string

const (
	CategoryAirtime      Category = "AIRTIME"
	CategoryPayBill      Category = "PAYBILL"
	CategorySendMoney    Category = "SEND_MONEY"
	CategoryReceiveMoney Category = "RECEIVE_MONEY"
	CategoryWithdrawal   Category = "WITHDRAWAL"
	CategoryDeposit      Category = "DEPOSIT"
	CategoryBuyGoods     Category = "BUY_GOODS"
	CategoryLoan         Category = "LOAN"
	CategoryOther        Category = "OTHER"
)

// String returns the string representation of the Category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is a member of the fixed enumeration
func (c Category) IsValid() bool {
	switch c {
	case CategoryAirtime, CategoryPayBill, CategorySendMoney, CategoryReceiveMoney,
		CategoryWithdrawal, CategoryDeposit, CategoryBuyGoods, CategoryLoan, CategoryOther:
		return true
	default:
		return false
	}
}

// AllCategories returns every member of the category enumeration, in a
// fixed display order.
func AllCategories() []Category {
	return []Category{
		CategoryAirtime,
		CategoryPayBill,
		CategorySendMoney,
		CategoryReceiveMoney,
		CategoryWithdrawal,
		CategoryDeposit,
		CategoryBuyGoods,
		CategoryLoan,
		CategoryOther,
	}
}

// CategoryFromString resolves a category label, case-insensitively.
// Unknown labels map to CategoryOther.
func CategoryFromString(s string) Category {
	candidate := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range AllCategories() {
		if c == candidate {
			return c
		}
	}
	return CategoryOther
}

// Transaction represents one mobile-money event from a statement.
// Exactly one of AmountIn/AmountOut is non-zero: a statement only ever
// contains its own leg of a transfer. Transactions are immutable once
// parsed; Category is the only field attached later.
type Transaction struct {
	ReceiptID    string          `json:"receipt_id"`
	Timestamp    time.Time       `json:"timestamp"`
	Description  string          `json:"description"`
	AmountIn     decimal.Decimal `json:"amount_in"`
	AmountOut    decimal.Decimal `json:"amount_out"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	// BalanceKnown is false for PDF layouts where the running balance
	// column could not be recovered.
	BalanceKnown bool     `json:"balance_known"`
	Category     Category `json:"category,omitempty"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(receiptID string, ts time.Time, description string, amountIn, amountOut decimal.Decimal) *Transaction {
	return &Transaction{
		ReceiptID:   strings.TrimSpace(receiptID),
		Timestamp:   ts,
		Description: strings.TrimSpace(description),
		AmountIn:    amountIn,
		AmountOut:   amountOut,
	}
}

// WithBalance attaches the stated running balance to the transaction
func (t *Transaction) WithBalance(balance decimal.Decimal) *Transaction {
	t.BalanceAfter = balance
	t.BalanceKnown = true
	return t
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.ReceiptID) == "" {
		return fmt.Errorf("receipt ID cannot be empty")
	}

	if t.Timestamp.IsZero() {
		return fmt.Errorf("completion time cannot be zero")
	}

	if t.AmountIn.IsNegative() || t.AmountOut.IsNegative() {
		return fmt.Errorf("amounts cannot be negative")
	}

	// One side of the money column must carry the transaction.
	if t.AmountIn.IsZero() == t.AmountOut.IsZero() {
		return fmt.Errorf("exactly one of amount_in/amount_out must be non-zero, got in=%s out=%s",
			t.AmountIn.String(), t.AmountOut.String())
	}

	return nil
}

// IsCredit returns true if money was paid into the account
func (t *Transaction) IsCredit() bool {
	return t.AmountIn.IsPositive()
}

// IsDebit returns true if money was withdrawn from the account
func (t *Transaction) IsDebit() bool {
	return t.AmountOut.IsPositive()
}

// Amount returns the single non-zero money figure of the transaction
func (t *Transaction) Amount() decimal.Decimal {
	if t.IsCredit() {
		return t.AmountIn
	}
	return t.AmountOut
}

// DedupKey returns the (receipt_id, timestamp) key used to collapse
// duplicate records. Receipt IDs alone are not guaranteed unique across
// statement sources.
func (t *Transaction) DedupKey() string {
	return t.ReceiptID + "|" + t.Timestamp.UTC().Format(time.RFC3339)
}

// Equals compares two Transaction instances for equality
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.ReceiptID == other.ReceiptID &&
		t.Timestamp.Equal(other.Timestamp) &&
		t.AmountIn.Equal(other.AmountIn) &&
		t.AmountOut.Equal(other.AmountOut)
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Receipt: %s, Time: %s, In: %s, Out: %s, Category: %s}",
		t.ReceiptID, t.Timestamp.Format(time.RFC3339), t.AmountIn.String(), t.AmountOut.String(), t.Category)
}

// MarshalJSON implements custom JSON marshaling for Transaction
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Timestamp    string `json:"timestamp"`
		AmountIn     string `json:"amount_in"`
		AmountOut    string `json:"amount_out"`
		BalanceAfter string `json:"balance_after"`
		*Alias
	}{
		Timestamp:    t.Timestamp.Format(time.RFC3339),
		AmountIn:     t.AmountIn.StringFixed(2),
		AmountOut:    t.AmountOut.StringFixed(2),
		BalanceAfter: t.BalanceAfter.StringFixed(2),
		Alias:        (*Alias)(t),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Transaction
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Timestamp    string `json:"timestamp"`
		AmountIn     string `json:"amount_in"`
		AmountOut    string `json:"amount_out"`
		BalanceAfter string `json:"balance_after"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.Timestamp, err = time.Parse(time.RFC3339, aux.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid timestamp format: %w", err)
	}

	t.AmountIn, err = decimal.NewFromString(aux.AmountIn)
	if err != nil {
		return fmt.Errorf("invalid amount_in format: %w", err)
	}

	t.AmountOut, err = decimal.NewFromString(aux.AmountOut)
	if err != nil {
		return fmt.Errorf("invalid amount_out format: %w", err)
	}

	if aux.BalanceAfter != "" {
		t.BalanceAfter, err = decimal.NewFromString(aux.BalanceAfter)
		if err != nil {
			return fmt.Errorf("invalid balance_after format: %w", err)
		}
	}

	return nil
}

// Utility functions for parsing statement field values

// ParseAmount parses a statement money figure into a two-decimal fixed
// point value. Statement exports carry thousands separators, currency
// markers and stray signs; the money columns are unsigned by layout, so
// any minus sign is stripped rather than honored.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		// Blank money cells mean zero, not missing.
		return decimal.Zero, nil
	}

	replacer := strings.NewReplacer(
		",", "",
		" ", "",
		"KES", "",
		"Ksh", "",
		"KSh", "",
		"-", "",
	)
	cleaned := replacer.Replace(s)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount '%s': %w", s, err)
	}

	return d.Round(2), nil
}

// statementTimeFormats are the completion-time layouts observed in
// mySafaricom and USSD statement exports.
var statementTimeFormats = []string{
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02T15:04:05",
	"02 Jan 2006 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseCompletionTime attempts to parse a completion time using the known
// statement layouts.
func ParseCompletionTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("completion time cannot be empty")
	}

	var lastErr error
	for _, format := range statementTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse completion time '%s': %w", s, lastErr)
}

// MinReceiptIDLength filters out footer garbage that sneaks into
// extracted tables; genuine M-Pesa receipt IDs are 10 characters.
const MinReceiptIDLength = 6

// IsPlausibleReceiptID reports whether a token looks like a statement
// receipt identifier.
func IsPlausibleReceiptID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < MinReceiptIDLength {
		return false
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
