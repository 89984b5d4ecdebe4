package riskmodel

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainSynthetic(t *testing.T) *TrainResult {
	t.Helper()

	examples := SyntheticExamples(gofakeit.New(42), 400, 0.3)
	result, err := Train(examples, DefaultTrainOptions())
	require.NoError(t, err)
	return result
}

func TestTrain(t *testing.T) {
	result := trainSynthetic(t)

	assert.Equal(t, 320, result.TrainSize)
	assert.Equal(t, 80, result.TestSize)
	assert.Equal(t, 80, result.Report.Total)
	assert.Greater(t, result.Report.Accuracy, 0.9)
	assert.Equal(t, 24, result.Report.Classes[1].Support)

	require.Len(t, result.Samples, len(SmokeSentences))
	byText := make(map[string]SamplePrediction, len(result.Samples))
	for _, s := range result.Samples {
		byText[s.Text] = s
		assert.GreaterOrEqual(t, s.Confidence, 0.5)
		assert.InDelta(t, 1.0, s.Probabilities[0]+s.Probabilities[1], 1e-12)
	}

	assert.Equal(t, 1, byText["I want to die"].Label)
	assert.Equal(t, PositiveClass, byText["I want to die"].Class)
	assert.Equal(t, 0, byText["Life is good and I am happy"].Label)
	assert.Equal(t, NegativeClass, byText["Life is good and I am happy"].Class)
}

func TestTrainRejectsSingleClass(t *testing.T) {
	examples := SyntheticExamples(gofakeit.New(1), 50, 0)

	_, err := Train(examples, DefaultTrainOptions())
	assert.Error(t, err)
}

func TestPipelinePredictionIsDeterministic(t *testing.T) {
	result := trainSynthetic(t)

	texts := []string{"I want to die", "", "   ", "https://example.com 123"}
	first, err := result.Pipeline.PredictProba(texts)
	require.NoError(t, err)
	second, err := result.Pipeline.PredictProba(texts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// inputs that clean to nothing still get a probability from the intercept alone
	assert.Equal(t, first[1], first[2])
	assert.Equal(t, first[1], first[3])
}

func TestUnfittedPipeline(t *testing.T) {
	p := NewPipeline(DefaultPipelineOptions())

	_, err := p.PredictOne("anything")
	assert.Error(t, err)

	_, err = p.Artifact()
	assert.Error(t, err)

	assert.Error(t, p.Fit(nil, nil))
	assert.Error(t, p.Fit([]string{"a"}, nil))
}

func TestSyntheticExamples(t *testing.T) {
	examples := SyntheticExamples(gofakeit.New(7), 100, 0.25)

	require.Len(t, examples, 100)
	assert.Equal(t, 25, countLabel(examples, 1))
	for _, ex := range examples {
		assert.NotEmpty(t, ex.Text)
	}

	again := SyntheticExamples(gofakeit.New(7), 100, 0.25)
	assert.Equal(t, examples, again)
}
