package analyzers

import (
	"context"
	"strings"

	"github.com/mindfuljournal/analyzer/internal"
	"github.com/mindfuljournal/analyzer/pkg/llms"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

var (
	_ models.Analyzer = &Summarizer{}
	_ models.Analyzer = &LLMSummarizer{}
)

// Summarizer asks a summarization model on the inference endpoint for a bounded-length
// summary.
type Summarizer struct {
	client SummaryClient
	model  string
	params llms.SummarizationParams
}

func NewSummarizer(client SummaryClient, model string, params llms.SummarizationParams) *Summarizer {
	return &Summarizer{client: client, model: model, params: params}
}

func (s *Summarizer) Info() models.AnalyzerInfo {
	return models.AnalyzerInfo{
		Name:    SummarizerName,
		Field:   models.FieldSummary,
		Backend: "huggingface",
		Model:   s.model,
		Details: map[string]any{
			"min_length": s.params.MinLength,
			"max_length": s.params.MaxLength,
		},
	}
}

func (s *Summarizer) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	summary, err := s.client.Summarize(ctx, s.model, text, s.params)
	if err != nil {
		return nil, NewAnalyzerError(SummarizerName, err)
	}

	return &models.AnalyzeResponse{Summary: &summary}, nil
}

// LLMSummarizer prompts a chat model for the summary.
type LLMSummarizer struct {
	llm      models.LLM
	model    string
	maxWords int
}

func NewLLMSummarizer(llm models.LLM, model string, maxWords int) *LLMSummarizer {
	return &LLMSummarizer{llm: llm, model: model, maxWords: maxWords}
}

func (s *LLMSummarizer) Info() models.AnalyzerInfo {
	return models.AnalyzerInfo{
		Name:    SummarizerName,
		Field:   models.FieldSummary,
		Backend: "openai",
		Model:   s.model,
		Details: map[string]any{"max_words": s.maxWords},
	}
}

func (s *LLMSummarizer) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	prompt, err := internal.ParsePrompt(summaryPromptTemplate, SummaryPromptTemplateData{
		Input:    s.llm.Truncate(text),
		MaxWords: s.maxWords,
	})
	if err != nil {
		return nil, NewAnalyzerError(SummarizerName, err)
	}

	completion, err := s.llm.Call(ctx, prompt)
	if err != nil {
		return nil, NewAnalyzerError(SummarizerName, err)
	}

	summary := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(completion), "Summary:"))
	if summary == "" {
		return nil, models.NewAnalyzerError(
			SummarizerName,
			models.CodeModelOutputInvalid,
			models.ErrModelOutputInvalid,
		)
	}

	return &models.AnalyzeResponse{Summary: &summary}, nil
}
