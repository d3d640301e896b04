package analyze

import (
	"context"

	"mpesa-statement-analyzer/internal/classify"
	"mpesa-statement-analyzer/internal/extract"
	"mpesa-statement-analyzer/internal/parse"
	"mpesa-statement-analyzer/pkg/logger"
)

// Pipeline runs the full statement analysis flow: extraction, parsing,
// classification, and session creation.
type Pipeline struct {
	parser     *parse.StatementParser
	classifier *classify.Classifier
	logger     logger.Logger
}

// NewPipeline creates a pipeline with the given classifier. A nil
// classifier falls back to the default rule set.
func NewPipeline(classifier *classify.Classifier) *Pipeline {
	if classifier == nil {
		classifier = classify.NewClassifier(nil)
	}
	return &Pipeline{
		parser:     parse.NewStatementParser(),
		classifier: classifier,
		logger:     logger.WithComponent("pipeline"),
	}
}

// AnalyzeFile extracts, parses, and classifies a statement file and
// returns a session over the result. Parse statistics are returned even
// on success so callers can surface skipped records.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*Session, *parse.ParseStats, error) {
	p.logger.WithFields(logger.Fields{"file": path}).Info("Starting statement analysis")

	doc, err := extract.ExtractFile(path)
	if err != nil {
		return nil, nil, err
	}

	return p.Analyze(ctx, doc)
}

// Analyze runs parsing and classification over an extracted document
func (p *Pipeline) Analyze(ctx context.Context, doc *extract.Document) (*Session, *parse.ParseStats, error) {
	transactions, stats, err := p.parser.Parse(ctx, doc)
	if err != nil {
		return nil, stats, err
	}

	p.classifier.Apply(transactions)

	session := NewSession(doc.Source, transactions)
	p.logger.WithFields(logger.Fields{
		"session_id":   session.ID.String(),
		"file":         doc.Source,
		"format":       string(doc.Format),
		"transactions": len(transactions),
		"skipped":      stats.RecordsSkipped,
		"duplicates":   stats.Duplicates,
	}).Info("Statement analysis complete")

	return session, stats, nil
}
