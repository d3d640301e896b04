package config

import (
	"github.com/spf13/viper"

	"mpesa-statement-analyzer/internal/advisor"
	"mpesa-statement-analyzer/internal/classify"
	"mpesa-statement-analyzer/internal/models"
	"mpesa-statement-analyzer/internal/reporter"
)

// CreateClassifier builds the transaction classifier. The default rule
// set covers the standard M-Pesa narration vocabulary; custom rules can
// be layered in front of it via the config file.
func CreateClassifier() *classify.Classifier {
	var rules []classify.Rule

	// Optional user-defined rules from the config file, checked before
	// the built-in set so they take precedence.
	var custom []struct {
		Keywords []string `mapstructure:"keywords"`
		Category string   `mapstructure:"category"`
	}
	if err := viper.UnmarshalKey("classifier.rules", &custom); err == nil {
		for _, c := range custom {
			if len(c.Keywords) == 0 || c.Category == "" {
				continue
			}
			rules = append(rules, classify.Rule{
				Keywords: c.Keywords,
				Category: models.CategoryFromString(c.Category),
			})
		}
	}

	rules = append(rules, classify.DefaultRules...)
	return classify.NewClassifier(rules)
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	// Set output format
	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.IncludeMonthlyTrend = true
		config.IncludeTopMerchants = true
		config.IncludeActivityPeaks = true
		config.IncludeParseStats = true
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludeParseStats = true
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		config.IncludeParseStats = false // CSV is for transaction data
	}

	return config
}

// CreateAdvisorConfig creates the advisor configuration from the
// environment. The key is resolved via viper so it can come from the
// environment, a .env file, or the config file.
func CreateAdvisorConfig(model string) *advisor.Config {
	return &advisor.Config{
		APIKey: viper.GetString("gemini-api-key"),
		Model:  model,
	}
}
