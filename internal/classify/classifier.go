// Package classify assigns a semantic category to each transaction from
// its free-text description. Classification is rule-based and pure: an
// ordered list of keyword rules evaluated top to bottom, first match
// wins, no hidden state and no external lookups.
package classify

import (
	"strings"

	"mpesa-statement-analyzer/internal/models"
)

// Rule pairs a set of description keywords with the category they imply.
// A rule matches when any of its keywords occurs in the lower-cased
// description.
type Rule struct {
	Keywords []string
	Category models.Category
}

// DefaultRules is the ordered rule list for M-Pesa statement wording.
//
// Order matters and is part of the contract: specific wordings sit above
// looser ones so that, for example, "Pay Bill to KPLC" hits the pay-bill
// rule before any transfer rule could claim it. Keep the list as data so
// ordering and coverage stay independently testable.
var DefaultRules = []Rule{
	{Keywords: []string{"airtime"}, Category: models.CategoryAirtime},
	{Keywords: []string{"pay bill", "paybill"}, Category: models.CategoryPayBill},
	{Keywords: []string{"buy goods", "merchant payment", "till"}, Category: models.CategoryBuyGoods},
	{Keywords: []string{"customer transfer", "sent to", "send money"}, Category: models.CategorySendMoney},
	{Keywords: []string{"received from", "funds received", "business payment from"}, Category: models.CategoryReceiveMoney},
	{Keywords: []string{"withdraw"}, Category: models.CategoryWithdrawal},
	{Keywords: []string{"deposit"}, Category: models.CategoryDeposit},
	{Keywords: []string{"loan", "fuliza", "m-shwari", "mshwari"}, Category: models.CategoryLoan},
}

// Classifier evaluates an ordered rule list against descriptions
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier with the given rules, falling back
// to DefaultRules when none are provided.
func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the category for a transaction description. Given the
// same description it always returns the same category; no rule matching
// yields CategoryOther.
func (c *Classifier) Classify(description string) models.Category {
	lowered := strings.ToLower(description)

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Category
			}
		}
	}

	return models.CategoryOther
}

// Apply attaches a category to every transaction in the sequence.
// Attaching the category is the only mutation a parsed transaction
// ever receives.
func (c *Classifier) Apply(transactions []*models.Transaction) {
	for _, tx := range transactions {
		tx.Category = c.Classify(tx.Description)
	}
}
