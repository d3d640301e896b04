package config

import (
	"testing"

	"github.com/spf13/viper"

	"mpesa-statement-analyzer/internal/models"
	"mpesa-statement-analyzer/internal/reporter"
)

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		name         string
		format       string
		expectedType reporter.OutputFormat
	}{
		{"console format", "console", reporter.FormatConsole},
		{"json format", "json", reporter.FormatJSON},
		{"csv format", "csv", reporter.FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := CreateReportConfig(tt.format)

			if config.Format != tt.expectedType {
				t.Errorf("expected Format %s, got %s", tt.expectedType, config.Format)
			}

			// Test format-specific settings
			switch tt.format {
			case "console":
				if !config.IncludeMonthlyTrend {
					t.Error("console format should include the monthly trend")
				}
				if !config.IncludeTopMerchants {
					t.Error("console format should include top recipients")
				}
				if !config.IncludeParseStats {
					t.Error("console format should include parse statistics")
				}
			case "json":
				if !config.IncludeParseStats {
					t.Error("JSON format should include parse statistics")
				}
			case "csv":
				if !config.CSVHeaders {
					t.Error("CSV format should include headers")
				}
				if config.CSVDelimiter != ',' {
					t.Error("CSV format should use comma delimiter")
				}
				if config.IncludeParseStats {
					t.Error("CSV format should not include parse statistics")
				}
			}

			// Validate the configuration
			if err := config.Validate(); err != nil {
				t.Errorf("report config should be valid: %v", err)
			}
		})
	}
}

func TestCreateClassifierDefaults(t *testing.T) {
	viper.Reset()

	classifier := CreateClassifier()
	if classifier == nil {
		t.Fatal("expected a classifier")
	}

	// Built-in rules should cover the standard narration vocabulary
	tests := []struct {
		description string
		expected    models.Category
	}{
		{"Pay Bill to KPLC Prepaid Account 123456", models.CategoryPayBill},
		{"Airtime Purchase", models.CategoryAirtime},
		{"Customer Transfer to 0712345678 PETER KAMAU", models.CategorySendMoney},
		{"Unrecognized narration", models.CategoryOther},
	}

	for _, tt := range tests {
		if got := classifier.Classify(tt.description); got != tt.expected {
			t.Errorf("Classify(%q) = %s, want %s", tt.description, got, tt.expected)
		}
	}
}

func TestCreateClassifierCustomRules(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("classifier.rules", []map[string]interface{}{
		{
			"keywords": []string{"kplc"},
			"category": "UTILITY",
		},
		{
			// Missing keywords, should be skipped
			"keywords": []string{},
			"category": "AIRTIME",
		},
	})

	classifier := CreateClassifier()

	// Custom rule takes precedence over the built-in paybill rule, and an
	// unknown category name falls back to OTHER.
	if got := classifier.Classify("Pay Bill to KPLC Prepaid Account 123456"); got != models.CategoryOther {
		t.Errorf("expected custom rule to win with category OTHER, got %s", got)
	}

	// Built-in rules still apply when no custom rule matches
	if got := classifier.Classify("Airtime Purchase"); got != models.CategoryAirtime {
		t.Errorf("expected built-in airtime rule, got %s", got)
	}
}

func TestCreateClassifierCustomCategory(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("classifier.rules", []map[string]interface{}{
		{
			"keywords": []string{"naivas"},
			"category": "BUY_GOODS",
		},
	})

	classifier := CreateClassifier()

	if got := classifier.Classify("Merchant Payment to NAIVAS LTD"); got != models.CategoryBuyGoods {
		t.Errorf("expected BUY_GOODS for custom recipient rule, got %s", got)
	}
}

func TestCreateAdvisorConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("gemini-api-key", "test-key-123")

	config := CreateAdvisorConfig("gemini-2.0-flash")

	if config.APIKey != "test-key-123" {
		t.Errorf("expected APIKey 'test-key-123', got '%s'", config.APIKey)
	}
	if config.Model != "gemini-2.0-flash" {
		t.Errorf("expected Model 'gemini-2.0-flash', got '%s'", config.Model)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("advisor config should be valid: %v", err)
	}
}

func TestCreateAdvisorConfigMissingKey(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	config := CreateAdvisorConfig("gemini-2.0-flash")

	if err := config.Validate(); err == nil {
		t.Error("expected validation error when the API key is not set")
	}
}
