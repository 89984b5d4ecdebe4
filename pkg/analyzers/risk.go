package analyzers

import (
	"context"

	"github.com/mindfuljournal/analyzer/pkg/models"
	"github.com/mindfuljournal/analyzer/pkg/riskmodel"
)

var _ models.Analyzer = &RiskClassifier{}

const DefaultAlertThreshold = 0.7

// RiskClassifier flags entries that the locally trained risk model classifies as
// self-harm risk with high confidence.
type RiskClassifier struct {
	pipeline  *riskmodel.Pipeline
	artifact  *riskmodel.Artifact
	threshold float64
}

func NewRiskClassifier(pipeline *riskmodel.Pipeline, artifact *riskmodel.Artifact, threshold float64) *RiskClassifier {
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	return &RiskClassifier{pipeline: pipeline, artifact: artifact, threshold: threshold}
}

// LoadRiskClassifier loads a pipeline artifact from disk.
func LoadRiskClassifier(path string, threshold float64) (*RiskClassifier, error) {
	pipeline, artifact, err := riskmodel.LoadPipeline(path)
	if err != nil {
		return nil, err
	}
	return NewRiskClassifier(pipeline, artifact, threshold), nil
}

// ShouldAlert is true only for a positive prediction whose confidence is strictly above
// threshold.
func ShouldAlert(pred riskmodel.Prediction, threshold float64) bool {
	return pred.Label == 1 && pred.Confidence > threshold
}

func (r *RiskClassifier) Info() models.AnalyzerInfo {
	details := map[string]any{"alert_threshold": r.threshold}
	if r.artifact != nil {
		details["artifact_id"] = r.artifact.ID
		details["created_at"] = r.artifact.CreatedAt
		details["vocabulary_size"] = len(r.artifact.Vector.IDF)
		if r.artifact.Training != nil {
			details["train_size"] = r.artifact.Training.TrainSize
			details["test_size"] = r.artifact.Training.TestSize
			details["accuracy"] = r.artifact.Training.Accuracy
		}
	}

	return models.AnalyzerInfo{
		Name:    RiskName,
		Field:   models.FieldAlert,
		Backend: "local",
		Model:   riskmodel.ArtifactFormat,
		Details: details,
	}
}

func (r *RiskClassifier) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewAnalyzerError(RiskName, err)
	}

	pred, err := r.pipeline.PredictOne(text)
	if err != nil {
		return nil, models.NewAnalyzerError(RiskName, models.CodeInternal, err)
	}

	alert := ShouldAlert(pred, r.threshold)
	log.Debugf("risk prediction: class=%s confidence=%.3f alert=%t", pred.Class, pred.Confidence, alert)

	return &models.AnalyzeResponse{Alert: &alert}, nil
}
