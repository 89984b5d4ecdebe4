package riskmodel

import (
	"fmt"
)

// SmokeSentences are classified after every training run as a sanity check.
var SmokeSentences = []string{
	"I want to die",
	"Life is good and I am happy",
	"I'm tired of everything",
	"I love spending time with my friends",
	"Nothing feels worth it anymore",
}

// TrainOptions configures a training run.
type TrainOptions struct {
	TestSize float64
	Seed     int64
	Pipeline PipelineOptions
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		TestSize: DefaultTestSize,
		Seed:     DefaultSeed,
		Pipeline: DefaultPipelineOptions(),
	}
}

// SamplePrediction pairs a smoke sentence with its prediction.
type SamplePrediction struct {
	Text string
	Prediction
}

// TrainResult is everything a training run produces.
type TrainResult struct {
	Pipeline  *Pipeline
	Report    Report
	TrainSize int
	TestSize  int
	Samples   []SamplePrediction
}

// Train splits examples, fits a pipeline on the training split only, evaluates it on the
// held-out split and classifies the smoke sentences.
func Train(examples []Example, opts TrainOptions) (*TrainResult, error) {
	train, test, err := StratifiedSplit(examples, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split dataset: %w", err)
	}

	pipeline := NewPipeline(opts.Pipeline)
	if err := pipeline.FitExamples(train); err != nil {
		return nil, err
	}

	testTexts, testLabels := splitExamples(test)
	predicted, err := pipeline.Predict(testTexts)
	if err != nil {
		return nil, err
	}

	report, err := Evaluate(testLabels, predicted, pipeline.Classes[:])
	if err != nil {
		return nil, err
	}

	samples := make([]SamplePrediction, 0, len(SmokeSentences))
	for _, text := range SmokeSentences {
		pred, err := pipeline.PredictOne(text)
		if err != nil {
			return nil, err
		}
		samples = append(samples, SamplePrediction{Text: text, Prediction: pred})
	}

	return &TrainResult{
		Pipeline:  pipeline,
		Report:    report,
		TrainSize: len(train),
		TestSize:  len(test),
		Samples:   samples,
	}, nil
}

// Artifact snapshots the trained pipeline together with its training summary.
func (r *TrainResult) Artifact(dataset string, seed int64) (*Artifact, error) {
	a, err := r.Pipeline.Artifact()
	if err != nil {
		return nil, err
	}
	a.Training = &TrainingSummary{
		Dataset:   dataset,
		TrainSize: r.TrainSize,
		TestSize:  r.TestSize,
		Seed:      seed,
		Accuracy:  r.Report.Accuracy,
	}
	return a, nil
}
