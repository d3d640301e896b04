package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mpesa-statement-analyzer/cmd/analyzer/config"
	"mpesa-statement-analyzer/internal/advisor"
)

// Flags for the advise command
var adviseModel string

// adviseCmd represents the advise command
var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Get AI financial guidance from a statement",
	Long: `Advise analyzes an M-Pesa statement and requests personalized
financial guidance from the Gemini model.

Only aggregate figures are shared with the model: totals, category
breakdowns, and the spending trend. Individual transactions, receipt
numbers, and recipient names never leave your machine.

Requires a GEMINI_API_KEY set in the environment or a local .env file.

Examples:
  analyzer advise --file statement.pdf
  analyzer advise --file statement.csv --start-date 2024-01-01 --end-date 2024-03-31
  analyzer advise --file statement.pdf --model gemini-2.0-flash`,

	PreRunE: validateAdviseFlags,
	RunE:    runAdvise,
}

func init() {
	rootCmd.AddCommand(adviseCmd)

	adviseCmd.Flags().StringVarP(&statementFile, "file", "i", "", "path to M-Pesa statement file, PDF or CSV (required)")
	adviseCmd.Flags().StringVar(&adviseModel, "model", advisor.DefaultModelName, "Gemini model to use")
	adviseCmd.Flags().StringVar(&startDate, "start-date", "", "filter start date (YYYY-MM-DD)")
	adviseCmd.Flags().StringVar(&endDate, "end-date", "", "filter end date (YYYY-MM-DD)")

	adviseCmd.MarkFlagRequired("file")

	viper.BindPFlag("model", adviseCmd.Flags().Lookup("model"))
}

func validateAdviseFlags(cmd *cobra.Command, args []string) error {
	if statementFile == "" {
		return fmt.Errorf("file is required")
	}
	if err := validateFileExists(statementFile, "statement file"); err != nil {
		return err
	}

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
	if startDate != "" && endDate != "" {
		start, _ := time.Parse("2006-01-02", startDate)
		end, _ := time.Parse("2006-01-02", endDate)
		if start.After(end) {
			return fmt.Errorf("start date cannot be after end date")
		}
	}

	return nil
}

func runAdvise(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	errorHandler := NewCLIErrorHandler()

	advisorConfig := config.CreateAdvisorConfig(viper.GetString("model"))

	// Fail before the (potentially slow) parse if the key is missing
	aiAdvisor, err := advisor.NewAdvisor(advisorConfig)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	session, summary, err := analyzeStatement(ctx)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	if summary.Overview.TransactionCount == 0 {
		return fmt.Errorf("no transactions found in the selected period")
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Session %s: requesting guidance for %d transactions...\n",
			session.ID.String(), summary.Overview.TransactionCount)
	}

	briefing := advisor.BuildBriefing(summary)
	guidance, err := aiAdvisor.Advise(ctx, briefing)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	fmt.Println(guidance)
	return nil
}
