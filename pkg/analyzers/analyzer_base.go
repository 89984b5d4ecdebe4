package analyzers

import (
	"context"
	"errors"

	"github.com/mindfuljournal/analyzer/internal"
	"github.com/mindfuljournal/analyzer/pkg/llms"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

var log = internal.GetLogger()

// Analyzer names, as reported by /api/v1/analyzers.
const (
	SummarizerName = "summarizer"
	EmotionName    = "emotion"
	RiskName       = "risk"
	KeywordsName   = "keywords"
)

// SummaryClient produces abstractive summaries.
type SummaryClient interface {
	Summarize(ctx context.Context, model, text string, params llms.SummarizationParams) (string, error)
}

// LabelClient runs a text classification model.
type LabelClient interface {
	Classify(ctx context.Context, model, text string) ([]llms.Label, error)
}

// NewAnalyzerError classifies err and tags it with the analyzer name. Errors that are
// already analyzer errors are returned unchanged.
func NewAnalyzerError(name string, err error) error {
	var analyzerErr *models.AnalyzerError
	if errors.As(err, &analyzerErr) {
		return err
	}
	return models.NewAnalyzerError(name, models.CodeOf(err), err)
}
