package advisor

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"mpesa-statement-analyzer/pkg/errors"
	"mpesa-statement-analyzer/pkg/logger"
)

// DefaultModelName is the Gemini model used for financial briefings
const DefaultModelName = "gemini-2.0-flash"

// Config holds advisor settings
type Config struct {
	APIKey string
	Model  string
}

// Validate checks the advisor configuration
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.AdvisorError(errors.CodeMissingAPIKey, nil)
	}
	return nil
}

// Advisor turns an aggregate briefing into personalized financial
// guidance. This is the only component that performs network calls.
type Advisor struct {
	config *Config
	logger logger.Logger
}

// NewAdvisor creates an advisor with the given configuration
func NewAdvisor(config *Config) (*Advisor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Model == "" {
		config.Model = DefaultModelName
	}
	return &Advisor{
		config: config,
		logger: logger.WithComponent("advisor"),
	}, nil
}

const advisorPrompt = `You are a friendly personal finance advisor reviewing a summary of a
user's M-Pesa mobile money activity. The summary below contains only
aggregate figures in Kenyan Shillings (KES).

Give practical, encouraging advice in plain language:
1. Comment on the balance between income and spending.
2. Point out the largest spending categories and whether they look high.
3. Suggest one or two concrete savings habits suited to mobile money users.

Keep the response under 250 words. Do not use Markdown tables.

Summary:
`

// Advise sends the briefing to the model and returns its guidance text
func (a *Advisor) Advise(ctx context.Context, briefing *Briefing) (string, error) {
	payload, err := json.MarshalIndent(briefing, "", "  ")
	if err != nil {
		return "", errors.InternalError(errors.CodeUnexpectedError, "briefing encoding", err)
	}

	a.logger.WithFields(logger.Fields{
		"model":        a.config.Model,
		"period_start": briefing.PeriodStart,
		"period_end":   briefing.PeriodEnd,
	}).Info("Requesting financial guidance")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      a.config.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", errors.AdvisorError(errors.CodeModelError, err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: advisorPrompt + string(payload)},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, a.config.Model, contents, nil)
	if err != nil {
		return "", classifyModelError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.AdvisorError(errors.CodeModelError, nil)
	}

	a.logger.WithFields(logger.Fields{"response_chars": len(text)}).Info("Received financial guidance")
	return text, nil
}

// classifyModelError maps transport failures to advisor error codes.
// Rate limiting gets its own code so the CLI can show a friendly
// retry-later message.
func classifyModelError(err error) *errors.AnalyzerError {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") {
		return errors.AdvisorError(errors.CodeRateLimited, err)
	}
	return errors.AdvisorError(errors.CodeModelError, err)
}
