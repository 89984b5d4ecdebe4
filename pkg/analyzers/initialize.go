package analyzers

import (
	"context"
	"errors"
	"fmt"

	"github.com/mindfuljournal/analyzer/pkg/keywords"
	"github.com/mindfuljournal/analyzer/pkg/llms"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

var ErrNoAnalyzers = errors.New("no analyzers are enabled")

// Initialize builds every enabled analyzer into appState. Any failure, such as a missing
// risk artifact, aborts startup.
func Initialize(ctx context.Context, appState *models.AppState) error {
	log.Info("Initializing analyzers")

	cfg := appState.Config
	var inference *llms.InferenceClient
	inferenceClient := func() (*llms.InferenceClient, error) {
		if inference != nil {
			return inference, nil
		}
		client, err := llms.NewInferenceClient(cfg)
		if err != nil {
			return nil, err
		}
		inference = client
		return inference, nil
	}

	var built []models.Analyzer

	if s := cfg.Analyzers.Summarizer; s.Enabled {
		switch s.Service {
		case "openai":
			llm, err := llms.NewOpenAILLM(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to create summarizer: %w", err)
			}
			built = append(built, NewLLMSummarizer(llm, cfg.LLM.Model, s.MaxLength))
		case "huggingface", "":
			client, err := inferenceClient()
			if err != nil {
				return fmt.Errorf("failed to create summarizer: %w", err)
			}
			built = append(built, NewSummarizer(client, s.Model, llms.SummarizationParams{
				MinLength: s.MinLength,
				MaxLength: s.MaxLength,
			}))
		default:
			return fmt.Errorf("invalid summarizer service: %s", s.Service)
		}
		log.Infof("Summarizer enabled using %s", s.Service)
	}

	if e := cfg.Analyzers.Emotion; e.Enabled {
		client, err := inferenceClient()
		if err != nil {
			return fmt.Errorf("failed to create emotion classifier: %w", err)
		}
		built = append(built, NewEmotionClassifier(client, e.Model, e.Labels))
		log.Infof("Emotion classifier enabled using %s", e.Model)
	}

	if r := cfg.Analyzers.Risk; r.Enabled {
		risk, err := LoadRiskClassifier(r.ArtifactPath, r.AlertThreshold)
		if err != nil {
			return fmt.Errorf("failed to load risk model from %s: %w", r.ArtifactPath, err)
		}
		built = append(built, risk)
		log.Infof("Risk classifier loaded from %s (artifact %s)", r.ArtifactPath, risk.artifact.ID)
	}

	if k := cfg.Analyzers.Keywords; k.Enabled {
		built = append(built, NewKeywordExtractor(keywords.Options{
			Top:            k.Top,
			MaxNgram:       k.MaxNgram,
			WindowSize:     keywords.DefaultWindowSize,
			DedupThreshold: k.DedupThreshold,
		}))
		log.Info("Keyword extractor enabled")
	}

	if len(built) == 0 {
		return ErrNoAnalyzers
	}

	appState.Analyzers = built
	return nil
}
