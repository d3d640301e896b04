package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mpesa-statement-analyzer/cmd/analyzer/config"
	"mpesa-statement-analyzer/internal/analyze"
	"mpesa-statement-analyzer/internal/reporter"
)

// Flags for the analyze command
var (
	statementFile string
	outputFormat  string
	outputFile    string
	startDate     string
	endDate       string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an M-Pesa statement file",
	Long: `Analyze extracts transactions from an M-Pesa statement export,
normalizes and categorizes them, and produces a spending summary.

Supported input formats:
- Official M-Pesa PDF statement exports
- CSV statement exports

Examples:
  # Basic analysis with console output
  analyzer analyze --file statement.pdf

  # Export normalized transactions as CSV
  analyzer analyze --file statement.pdf --output-format csv --output-file transactions.csv

  # JSON summary for a date range
  analyzer analyze --file statement.csv --output-format json \
    --start-date 2024-01-01 --end-date 2024-03-31`,

	PreRunE: validateAnalyzeFlags,
	RunE:    runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Required flags
	analyzeCmd.Flags().StringVarP(&statementFile, "file", "i", "", "path to M-Pesa statement file, PDF or CSV (required)")

	// Output flags
	analyzeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	analyzeCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Date filtering flags
	analyzeCmd.Flags().StringVar(&startDate, "start-date", "", "filter start date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&endDate, "end-date", "", "filter end date (YYYY-MM-DD)")

	// Mark required flags
	analyzeCmd.MarkFlagRequired("file")

	// Bind flags to viper
	viper.BindPFlag("file", analyzeCmd.Flags().Lookup("file"))
	viper.BindPFlag("output-format", analyzeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", analyzeCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("start-date", analyzeCmd.Flags().Lookup("start-date"))
	viper.BindPFlag("end-date", analyzeCmd.Flags().Lookup("end-date"))
}

func validateAnalyzeFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	statementFile = viper.GetString("file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	startDate = viper.GetString("start-date")
	endDate = viper.GetString("end-date")

	// Validate required flags
	if statementFile == "" {
		return fmt.Errorf("file is required")
	}

	// Validate file existence
	if err := validateFileExists(statementFile, "statement file"); err != nil {
		return err
	}

	// Validate output format
	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	// Validate dates
	if startDate != "" {
		if _, err := time.Parse("2006-01-02", startDate); err != nil {
			return fmt.Errorf("invalid start date format. Use YYYY-MM-DD: %w", err)
		}
	}
	if endDate != "" {
		if _, err := time.Parse("2006-01-02", endDate); err != nil {
			return fmt.Errorf("invalid end date format. Use YYYY-MM-DD: %w", err)
		}
	}

	// Validate date range
	if startDate != "" && endDate != "" {
		start, _ := time.Parse("2006-01-02", startDate)
		end, _ := time.Parse("2006-01-02", endDate)
		if start.After(end) {
			return fmt.Errorf("start date cannot be after end date")
		}
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

// parseDateRange converts the date flags into filter bounds. The end
// date is extended to the end of its day so the range is inclusive.
func parseDateRange() (time.Time, time.Time) {
	var start, end time.Time
	if startDate != "" {
		start, _ = time.Parse("2006-01-02", startDate)
	}
	if endDate != "" {
		end, _ = time.Parse("2006-01-02", endDate)
		end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}
	return start, end
}

// analyzeStatement runs the pipeline over the statement file and applies
// the date filter. Shared by the analyze and advise commands.
func analyzeStatement(ctx context.Context) (*analyze.Session, *analyze.AggregateSummary, error) {
	pipeline := analyze.NewPipeline(config.CreateClassifier())

	session, stats, err := pipeline.AnalyzeFile(ctx, statementFile)
	if err != nil {
		return nil, nil, err
	}

	if viper.GetBool("verbose") && stats != nil {
		fmt.Fprintf(os.Stderr, "%s\n", stats.String())
	}

	start, end := parseDateRange()
	summary := session.Summary()
	if !start.IsZero() || !end.IsZero() {
		summary = session.FilteredSummary(start, end)
	}

	return session, summary, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	errorHandler := NewCLIErrorHandler()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting statement analysis...\n")
		fmt.Fprintf(os.Stderr, "Statement file: %s\n", statementFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	pipeline := analyze.NewPipeline(config.CreateClassifier())

	session, stats, err := pipeline.AnalyzeFile(ctx, statementFile)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	// Apply date filtering by re-creating the session over the subset.
	// The reporter always renders the session it is handed.
	start, end := parseDateRange()
	if !start.IsZero() || !end.IsZero() {
		session = analyze.NewSession(session.Source, session.Filter(start, end))
	}

	// Generate report
	reportConfig := config.CreateReportConfig(outputFormat)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	// Determine output destination
	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reportGenerator.GenerateReport(session, stats, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Show completion message
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nAnalysis completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Parsed %d transactions (%d skipped, %d duplicates removed).\n",
			stats.RecordsParsed, stats.RecordsSkipped, stats.Duplicates)
	}

	return nil
}
