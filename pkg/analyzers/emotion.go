package analyzers

import (
	"context"
	"fmt"

	"github.com/mindfuljournal/analyzer/pkg/models"
)

var _ models.Analyzer = &EmotionClassifier{}

// EmotionClassifier returns the top label of an emotion classification model.
type EmotionClassifier struct {
	client LabelClient
	model  string
	labels map[string]struct{}
}

// NewEmotionClassifier builds the classifier. When labels is not empty the model's top label
// must be one of them.
func NewEmotionClassifier(client LabelClient, model string, labels []string) *EmotionClassifier {
	e := &EmotionClassifier{client: client, model: model}
	if len(labels) > 0 {
		e.labels = make(map[string]struct{}, len(labels))
		for _, l := range labels {
			e.labels[l] = struct{}{}
		}
	}
	return e
}

func (e *EmotionClassifier) Info() models.AnalyzerInfo {
	info := models.AnalyzerInfo{
		Name:    EmotionName,
		Field:   models.FieldEmotion,
		Backend: "huggingface",
		Model:   e.model,
	}
	if len(e.labels) > 0 {
		info.Details = map[string]any{"labels": len(e.labels)}
	}
	return info
}

func (e *EmotionClassifier) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	labels, err := e.client.Classify(ctx, e.model, text)
	if err != nil {
		return nil, NewAnalyzerError(EmotionName, err)
	}

	top := labels[0].Label
	if e.labels != nil {
		if _, ok := e.labels[top]; !ok {
			return nil, models.NewAnalyzerError(
				EmotionName,
				models.CodeModelOutputInvalid,
				fmt.Errorf("%w: unknown emotion label %q", models.ErrModelOutputInvalid, top),
			)
		}
	}

	return &models.AnalyzeResponse{Emotion: &top}, nil
}
