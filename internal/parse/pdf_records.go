package parse

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"mpesa-statement-analyzer/internal/models"
	"mpesa-statement-analyzer/pkg/errors"
	"mpesa-statement-analyzer/pkg/logger"
)

// PDF statements have no reliable schema: a transaction's description,
// money figures and balance can wrap across several physical lines. The
// scanner below is a two-state machine - awaiting a record start, or
// accumulating a record - keyed on the receipt-ID + completion-time
// pattern that opens every transaction row.

var (
	// recordStartRe matches a receipt identifier followed by a
	// completion-time token at the start of a line.
	recordStartRe = regexp.MustCompile(
		`^([A-Z0-9]{6,})\s+` +
			`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(?::\d{2})?|\d{2}[-/]\d{2}[-/]\d{4} \d{2}:\d{2}(?::\d{2})?)` +
			`\s*(.*)$`)

	// moneyRe matches statement money figures, with or without thousands
	// separators. Statements always print cents, so requiring the two
	// fractional digits keeps dates, phone numbers and account numbers out
	// of the money slots. The plain \d+ alternative keeps a match from
	// starting inside an unseparated figure: the leftmost match over
	// "1250.00" is the full figure, never "250.00".
	moneyRe = regexp.MustCompile(`-?(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}`)

	// creditHintRe marks descriptions whose money figure is paid in
	// rather than withdrawn when the layout leaves the direction
	// ambiguous (no sign, single money column recovered).
	creditHintRe = regexp.MustCompile(`received|deposit|promotion payment|salary payment`)
)

// pendingRecord accumulates one transaction while its lines are scanned
type pendingRecord struct {
	receiptID string
	timeStr   string
	descParts []string
	moneyRaw  []string
	startLine int
}

// scanState is the line scanner state
type scanState int

const (
	awaitingRecordStart scanState = iota
	accumulatingRecord
)

// parseLines handles PDF mode: reassemble wrapped records, then build
// transactions from the accumulated fields.
func (sp *StatementParser) parseLines(ctx context.Context, lines []string, source string) ([]*models.Transaction, *ParseStats, error) {
	stats := NewParseStats()
	var transactions []*models.Transaction

	state := awaitingRecordStart
	var pending *pendingRecord

	emit := func() {
		if pending == nil {
			return
		}
		stats.TotalRecords++
		tx, parseErr := sp.transactionFromPending(pending, source)
		if parseErr != nil {
			stats.AddError(parseErr)
		} else if err := tx.Validate(); err != nil {
			stats.AddError(errors.ParseError(
				errors.CodeInvalidRecord, source, pending.startLine, "record", pending.receiptID, err,
			))
		} else {
			transactions = append(transactions, tx)
			stats.RecordsParsed++
		}
		pending = nil
	}

	for i, line := range lines {
		if cancelled(ctx) {
			return nil, stats, errors.InternalError(errors.CodeCancelled, "statement parsing", ctx.Err())
		}

		if match := recordStartRe.FindStringSubmatch(line); match != nil && models.IsPlausibleReceiptID(match[1]) {
			emit()
			pending = &pendingRecord{
				receiptID: match[1],
				timeStr:   match[2],
				startLine: i + 1,
			}
			pending.consume(match[3])
			state = accumulatingRecord
			continue
		}

		if state == accumulatingRecord && pending != nil {
			// Continuation line: wrapped description text and any money
			// figures that slipped below the first physical line.
			pending.consume(line)
		}
		// Lines before the first record start are page headers and
		// account metadata; ignore them.
	}

	emit()

	if stats.TotalRecords == 0 {
		return nil, stats, errors.FormatError(errors.CodeMissingColumns, source, nil)
	}

	return transactions, stats, nil
}

// consume splits a line fragment into money tokens and description text.
// Money tokens are collected in encounter order; everything else joins
// the description.
func (p *pendingRecord) consume(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}

	matches := moneyRe.FindAllStringIndex(fragment, -1)
	if matches == nil {
		p.descParts = append(p.descParts, fragment)
		return
	}

	prev := 0
	for _, span := range matches {
		if text := strings.TrimSpace(fragment[prev:span[0]]); text != "" {
			p.descParts = append(p.descParts, text)
		}
		p.moneyRaw = append(p.moneyRaw, fragment[span[0]:span[1]])
		prev = span[1]
	}
	if text := strings.TrimSpace(fragment[prev:]); text != "" {
		p.descParts = append(p.descParts, text)
	}
}

// transactionFromPending builds a transaction from an accumulated record.
//
// Money tokens are disambiguated by column position: with three figures
// the layout is [paid in, withdrawn, balance]; with two, the leftmost is
// the transaction amount and the last is the running balance; a single
// figure is the amount with the balance column lost to wrapping. The
// direction of an unsigned lone amount is inferred from the description.
func (sp *StatementParser) transactionFromPending(p *pendingRecord, source string) (*models.Transaction, *errors.AnalyzerError) {
	ts, err := models.ParseCompletionTime(p.timeStr)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidDate, source, p.startLine, "completion_time", p.timeStr, err)
	}

	if len(p.moneyRaw) == 0 {
		return nil, errors.ParseError(errors.CodeMissingField, source, p.startLine, "amount", "", nil)
	}

	description := strings.Join(p.descParts, " ")

	amounts := make([]struct {
		raw   string
		value decimal.Decimal
	}, len(p.moneyRaw))
	for i, raw := range p.moneyRaw {
		value, err := models.ParseAmount(raw)
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidAmount, source, p.startLine, "amount", raw, err)
		}
		amounts[i].raw = raw
		amounts[i].value = value
	}

	tx := models.NewTransaction(p.receiptID, ts, description, decimal.Zero, decimal.Zero)

	switch {
	case len(amounts) >= 3:
		// Paid-in and withdrawn columns both printed; one is zero.
		tx.AmountIn = amounts[0].value
		tx.AmountOut = amounts[1].value
		tx.WithBalance(amounts[len(amounts)-1].value)

	case len(amounts) == 2:
		sp.assignAmount(tx, amounts[0].raw, amounts[0].value, description)
		tx.WithBalance(amounts[1].value)

	default:
		sp.assignAmount(tx, amounts[0].raw, amounts[0].value, description)
	}

	return tx, nil
}

// assignAmount places a single money figure into the paid-in or withdrawn
// slot. A printed minus sign always means withdrawn; otherwise the
// description decides.
func (sp *StatementParser) assignAmount(tx *models.Transaction, raw string, value decimal.Decimal, description string) {
	if strings.HasPrefix(raw, "-") {
		tx.AmountOut = value
		return
	}

	if creditHintRe.MatchString(strings.ToLower(description)) {
		tx.AmountIn = value
		return
	}

	sp.logger.WithFields(logger.Fields{
		"receipt_id": tx.ReceiptID,
	}).Debug("Unsigned amount with no credit hint, treating as withdrawn")
	tx.AmountOut = value
}
