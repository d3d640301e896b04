// Package reporter renders analysis results for human and programmatic
// consumption.
//
// Supported output formats:
//   - Console: Human-readable tabular output for terminal display
//   - JSON: Structured data format for programmatic consumption
//   - CSV: Normalized transaction export for spreadsheet applications
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(nil)
//	err = generator.GenerateReport(session, stats, os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"mpesa-statement-analyzer/internal/analyze"
	"mpesa-statement-analyzer/internal/parse"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	// Output format
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeMonthlyTrend  bool `json:"include_monthly_trend"`
	IncludeTopMerchants  bool `json:"include_top_merchants"`
	IncludeActivityPeaks bool `json:"include_activity_peaks"`
	IncludeParseStats    bool `json:"include_parse_stats"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`

	// Maximum parse error samples to print
	MaxErrorSamples int `json:"max_error_samples"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:               FormatConsole,
		IncludeMonthlyTrend:  true,
		IncludeTopMerchants:  true,
		IncludeActivityPeaks: true,
		IncludeParseStats:    true,
		CSVDelimiter:         ',',
		CSVHeaders:           true,
		MaxErrorSamples:      5,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.MaxErrorSamples < 0 {
		return fmt.Errorf("max error samples cannot be negative, got %d", c.MaxErrorSamples)
	}

	return nil
}

// ReportGenerator renders analysis sessions in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport renders a session and its parse statistics to the writer
func (rg *ReportGenerator) GenerateReport(session *analyze.Session, stats *parse.ParseStats, writer io.Writer) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(session, stats, writer)
	case FormatJSON:
		return rg.generateJSONReport(session, stats, writer)
	case FormatCSV:
		return rg.generateCSVReport(session, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(session *analyze.Session, stats *parse.ParseStats, writer io.Writer) error {
	summary := session.Summary()

	fmt.Fprintf(writer, "M-PESA STATEMENT ANALYSIS\n")
	fmt.Fprintf(writer, "Session: %s\n", session.ID.String())
	fmt.Fprintf(writer, "Source: %s\n", session.Source)
	if !summary.PeriodStart.IsZero() {
		fmt.Fprintf(writer, "Period: %s to %s\n",
			summary.PeriodStart.Format("2006-01-02"),
			summary.PeriodEnd.Format("2006-01-02"))
	}
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== OVERVIEW ===\n")
	rg.printOverview(summary, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== CATEGORY BREAKDOWN ===\n")
	rg.printCategoryBreakdown(summary, writer)
	fmt.Fprintf(writer, "\n")

	if rg.config.IncludeMonthlyTrend && len(summary.MonthlyTrend) > 0 {
		fmt.Fprintf(writer, "=== MONTHLY TREND ===\n")
		rg.printMonthlyTrend(summary, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeTopMerchants && len(summary.TopMerchants) > 0 {
		fmt.Fprintf(writer, "=== TOP RECIPIENTS ===\n")
		rg.printTopMerchants(summary, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeActivityPeaks {
		fmt.Fprintf(writer, "=== ACTIVITY ===\n")
		rg.printActivityPeaks(summary, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeParseStats && stats != nil {
		fmt.Fprintf(writer, "=== PARSE STATISTICS ===\n")
		rg.printParseStats(stats, writer)
	}

	return nil
}

// generateJSONReport generates a structured JSON report
func (rg *ReportGenerator) generateJSONReport(session *analyze.Session, stats *parse.ParseStats, writer io.Writer) error {
	output := map[string]interface{}{
		"session_id": session.ID.String(),
		"source":     session.Source,
		"created_at": session.CreatedAt.Format(time.RFC3339),
		"summary":    session.Summary(),
	}

	if rg.config.IncludeParseStats && stats != nil {
		output["parse_stats"] = map[string]interface{}{
			"total_records":  stats.TotalRecords,
			"records_parsed": stats.RecordsParsed,
			"records_skipped": stats.RecordsSkipped,
			"duplicates":     stats.Duplicates,
		}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(output)
}

// generateCSVReport exports the normalized transactions as CSV
func (rg *ReportGenerator) generateCSVReport(session *analyze.Session, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Receipt_ID",
			"Timestamp",
			"Description",
			"Category",
			"Amount_In",
			"Amount_Out",
			"Balance",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, tx := range session.Transactions() {
		balance := ""
		if tx.BalanceKnown {
			balance = tx.BalanceAfter.StringFixed(2)
		}
		record := []string{
			tx.ReceiptID,
			tx.Timestamp.Format("2006-01-02 15:04:05"),
			tx.Description,
			string(tx.Category),
			tx.AmountIn.StringFixed(2),
			tx.AmountOut.StringFixed(2),
			balance,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction record: %w", err)
		}
	}

	return nil
}

// Helper methods for console output formatting

func (rg *ReportGenerator) printOverview(summary *analyze.AggregateSummary, writer io.Writer) {
	fmt.Fprintf(writer, "Transactions:  %d\n", summary.Overview.TransactionCount)
	fmt.Fprintf(writer, "Total Income:  KES %s\n", summary.Overview.TotalIncome.StringFixed(2))
	fmt.Fprintf(writer, "Total Expense: KES %s\n", summary.Overview.TotalExpense.StringFixed(2))
	fmt.Fprintf(writer, "Net Savings:   KES %s\n", summary.Overview.NetSavings.StringFixed(2))
}

func (rg *ReportGenerator) printCategoryBreakdown(summary *analyze.AggregateSummary, writer io.Writer) {
	if len(summary.CategoryBreakdown) == 0 {
		fmt.Fprintf(writer, "No categorized transactions\n")
		return
	}

	for _, ct := range summary.CategoryBreakdown {
		fmt.Fprintf(writer, "%-14s in: KES %12s  out: KES %12s  (%d transactions)\n",
			string(ct.Category),
			ct.AmountIn.StringFixed(2),
			ct.AmountOut.StringFixed(2),
			ct.Count)
	}
}

func (rg *ReportGenerator) printMonthlyTrend(summary *analyze.AggregateSummary, writer io.Writer) {
	for _, mt := range summary.MonthlyTrend {
		fmt.Fprintf(writer, "%s  income: KES %12s  expense: KES %12s\n",
			mt.Label(),
			mt.Income.StringFixed(2),
			mt.Expense.StringFixed(2))
	}
}

func (rg *ReportGenerator) printTopMerchants(summary *analyze.AggregateSummary, writer io.Writer) {
	for i, mt := range summary.TopMerchants {
		fmt.Fprintf(writer, "  %d. %s: KES %s (%d transactions)\n",
			i+1, mt.Description, mt.AmountOut.StringFixed(2), mt.Count)
	}
}

// printActivityPeaks reports the busiest weekday and hour from the
// activity heatmap rather than dumping the full 7x24 grid.
func (rg *ReportGenerator) printActivityPeaks(summary *analyze.AggregateSummary, writer io.Writer) {
	peakDay, peakHour, peakCount := 0, 0, 0
	for day := 0; day < analyze.DaysOfWeek; day++ {
		for hour := 0; hour < analyze.HoursOfDay; hour++ {
			if summary.DailyActivity[day][hour] > peakCount {
				peakDay, peakHour, peakCount = day, hour, summary.DailyActivity[day][hour]
			}
		}
	}

	if peakCount == 0 {
		fmt.Fprintf(writer, "No activity recorded\n")
		return
	}

	fmt.Fprintf(writer, "Busiest time: %s %02d:00-%02d:59 (%d transactions)\n",
		time.Weekday(peakDay).String(), peakHour, peakHour, peakCount)
}

func (rg *ReportGenerator) printParseStats(stats *parse.ParseStats, writer io.Writer) {
	fmt.Fprintf(writer, "Records Found:   %d\n", stats.TotalRecords)
	fmt.Fprintf(writer, "Records Parsed:  %d\n", stats.RecordsParsed)
	fmt.Fprintf(writer, "Records Skipped: %d\n", stats.RecordsSkipped)
	fmt.Fprintf(writer, "Duplicates:      %d\n", stats.Duplicates)

	if stats.HasErrors() && rg.config.MaxErrorSamples > 0 {
		fmt.Fprintf(writer, "\nSample errors:\n")
		for _, sample := range stats.SampleErrors(rg.config.MaxErrorSamples) {
			fmt.Fprintf(writer, "  - %s\n", sample)
		}
	}
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
