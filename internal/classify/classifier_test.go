package classify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mpesa-statement-analyzer/internal/models"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		description string
		expected    models.Category
	}{
		{"Airtime Purchase", models.CategoryAirtime},
		{"Pay Bill to KPLC Prepaid", models.CategoryPayBill},
		{"Pay Bill Online to 888880 ACC 123", models.CategoryPayBill},
		{"Merchant Payment to NAIVAS LTD", models.CategoryBuyGoods},
		{"Buy Goods - Till 832909", models.CategoryBuyGoods},
		{"Customer Transfer to 0712XXX678 JANE", models.CategorySendMoney},
		{"Funds received from PETER KAMAU", models.CategoryReceiveMoney},
		{"Business Payment from ACME LTD", models.CategoryReceiveMoney},
		{"Customer Withdrawal at Agent 123456", models.CategoryWithdrawal},
		{"Deposit of Funds at Agent", models.CategoryDeposit},
		{"OverDraft of Credit Party Fuliza M-Pesa", models.CategoryLoan},
		{"M-Shwari Loan Repayment", models.CategoryLoan},
		{"Something entirely unrecognized", models.CategoryOther},
		{"", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := c.Classify(tt.description); got != tt.expected {
				t.Errorf("Classify(%q) = %s, expected %s", tt.description, got, tt.expected)
			}
		})
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := NewClassifier(nil)

	variants := []string{
		"pay bill to kplc prepaid",
		"PAY BILL TO KPLC PREPAID",
		"Pay Bill to KPLC Prepaid",
	}

	for _, v := range variants {
		if got := c.Classify(v); got != models.CategoryPayBill {
			t.Errorf("Classify(%q) = %s, expected PAYBILL", v, got)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(nil)
	description := "Pay Bill to KPLC Prepaid"

	first := c.Classify(description)
	for i := 0; i < 100; i++ {
		if got := c.Classify(description); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// A description matching multiple rules takes the earliest rule
	rules := []Rule{
		{Keywords: []string{"special"}, Category: models.CategoryAirtime},
		{Keywords: []string{"special"}, Category: models.CategoryPayBill},
	}
	c := NewClassifier(rules)

	if got := c.Classify("special transaction"); got != models.CategoryAirtime {
		t.Errorf("expected first rule to win, got %s", got)
	}
}

func TestCustomRulesPrecedeDefaults(t *testing.T) {
	rules := append([]Rule{
		{Keywords: []string{"kplc"}, Category: models.CategoryOther},
	}, DefaultRules...)
	c := NewClassifier(rules)

	if got := c.Classify("Pay Bill to KPLC Prepaid"); got != models.CategoryOther {
		t.Errorf("custom rule should take precedence, got %s", got)
	}
}

func TestApply(t *testing.T) {
	c := NewClassifier(nil)
	ts := time.Date(2024, 3, 15, 14, 23, 1, 0, time.UTC)

	transactions := []*models.Transaction{
		models.NewTransaction("AB1234", ts, "Airtime Purchase", decimal.Zero, decimal.RequireFromString("50.00")),
		models.NewTransaction("CD5678", ts, "mystery narration", decimal.Zero, decimal.RequireFromString("75.00")),
	}

	c.Apply(transactions)

	if transactions[0].Category != models.CategoryAirtime {
		t.Errorf("category = %s, expected AIRTIME", transactions[0].Category)
	}
	if transactions[1].Category != models.CategoryOther {
		t.Errorf("category = %s, expected OTHER for unmatched description", transactions[1].Category)
	}
}
