package analyze

import (
	"time"

	"github.com/google/uuid"

	"mpesa-statement-analyzer/internal/models"
)

// Session binds a parsed statement to a stable identifier so that
// follow-up operations (filtering, reporting, advisor calls) refer to
// one immutable upload. The transaction set is fixed at creation;
// filtering yields views, never mutation.
type Session struct {
	ID           uuid.UUID
	Source       string
	CreatedAt    time.Time
	transactions []*models.Transaction
	summary      *AggregateSummary
}

// NewSession creates a session over a deduplicated, chronologically
// sorted transaction set and computes its summary eagerly.
func NewSession(source string, transactions []*models.Transaction) *Session {
	return &Session{
		ID:           uuid.New(),
		Source:       source,
		CreatedAt:    time.Now(),
		transactions: transactions,
		summary:      Summarize(transactions),
	}
}

// Transactions returns the session's full transaction set
func (s *Session) Transactions() []*models.Transaction {
	return s.transactions
}

// Summary returns the precomputed aggregate summary for the full set
func (s *Session) Summary() *AggregateSummary {
	return s.summary
}

// Count returns the number of transactions in the session
func (s *Session) Count() int {
	return len(s.transactions)
}

// Filter returns the transactions falling within the inclusive date
// range. A zero start or end leaves that bound open.
func (s *Session) Filter(start, end time.Time) []*models.Transaction {
	var filtered []*models.Transaction
	for _, tx := range s.transactions {
		if !start.IsZero() && tx.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && tx.Timestamp.After(end) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}

// FilteredSummary computes the aggregate summary over the date-filtered
// subset. The session's own summary is unaffected.
func (s *Session) FilteredSummary(start, end time.Time) *AggregateSummary {
	return Summarize(s.Filter(start, end))
}
