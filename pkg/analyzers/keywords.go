package analyzers

import (
	"context"

	"github.com/mindfuljournal/analyzer/pkg/keywords"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

var _ models.Analyzer = &KeywordExtractor{}

// KeywordExtractor returns the top ranked keyword phrases of the entry.
type KeywordExtractor struct {
	extractor *keywords.Extractor
	opts      keywords.Options
}

func NewKeywordExtractor(opts keywords.Options) *KeywordExtractor {
	return &KeywordExtractor{extractor: keywords.NewExtractor(opts), opts: opts}
}

func (k *KeywordExtractor) Info() models.AnalyzerInfo {
	return models.AnalyzerInfo{
		Name:    KeywordsName,
		Field:   models.FieldKeywords,
		Backend: "local",
		Model:   "yake",
		Details: map[string]any{
			"top":             k.opts.Top,
			"max_ngram":       k.opts.MaxNgram,
			"dedup_threshold": k.opts.DedupThreshold,
		},
	}
}

func (k *KeywordExtractor) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewAnalyzerError(KeywordsName, err)
	}

	phrases := k.extractor.Phrases(text)
	return &models.AnalyzeResponse{Keywords: &phrases}, nil
}
