package riskmodel

import (
	"errors"
	"fmt"

	"github.com/mindfuljournal/analyzer/pkg/textclean"
)

const (
	DefaultMaxFeatures = 5000
	DefaultMaxIter     = 500
)

// DefaultNgramRange builds unigrams and bigrams.
var DefaultNgramRange = [2]int{1, 2}

// PipelineOptions configures the vectorizer and classifier stages.
type PipelineOptions struct {
	MaxFeatures int
	NgramRange  [2]int
	MaxIter     int
	C           float64
	ClassWeight string
}

func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		MaxFeatures: DefaultMaxFeatures,
		NgramRange:  DefaultNgramRange,
		MaxIter:     DefaultMaxIter,
		C:           1.0,
		ClassWeight: ClassWeightBalanced,
	}
}

// Pipeline chains the text cleaner, the TF-IDF vectorizer and the logistic classifier.
// A fitted pipeline is immutable and safe for concurrent prediction.
type Pipeline struct {
	Cleaner    *textclean.Cleaner
	Vectorizer *TfidfVectorizer
	Classifier *LogisticRegression
	Classes    [2]string
}

// Prediction is the outcome for one text.
type Prediction struct {
	Label         int
	Class         string
	Probabilities [2]float64
	// Confidence is the probability of the predicted label.
	Confidence float64
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	clf := NewLogisticRegression(opts.MaxIter, opts.ClassWeight)
	if opts.C > 0 {
		clf.C = opts.C
	}

	return &Pipeline{
		Cleaner:    textclean.NewCleaner(),
		Vectorizer: NewTfidfVectorizer(opts.MaxFeatures, opts.NgramRange),
		Classifier: clf,
		Classes:    ClassNames,
	}
}

// Fit trains every stage on texts and their labels.
func (p *Pipeline) Fit(texts []string, labels []int) error {
	if len(texts) != len(labels) {
		return fmt.Errorf("got %d texts but %d labels", len(texts), len(labels))
	}
	if len(texts) == 0 {
		return errors.New("cannot fit on an empty training set")
	}

	cleaned := p.Cleaner.Fit(texts).Transform(texts)

	rows, err := p.Vectorizer.FitTransform(cleaned)
	if err != nil {
		return fmt.Errorf("failed to fit vectorizer: %w", err)
	}

	if err := p.Classifier.Fit(rows, labels, p.Vectorizer.NumFeatures()); err != nil {
		return fmt.Errorf("failed to fit classifier: %w", err)
	}

	return nil
}

// FitExamples is Fit over labeled examples.
func (p *Pipeline) FitExamples(examples []Example) error {
	texts, labels := splitExamples(examples)
	return p.Fit(texts, labels)
}

func (p *Pipeline) rows(texts []string) ([]SparseVector, error) {
	if len(p.Classifier.Coef) != p.Vectorizer.NumFeatures() {
		return nil, errors.New("pipeline is not fitted")
	}
	return p.Vectorizer.Transform(p.Cleaner.Transform(texts))
}

// Predict returns the label of every text.
func (p *Pipeline) Predict(texts []string) ([]int, error) {
	rows, err := p.rows(texts)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(rows))
	for i, row := range rows {
		labels[i] = p.Classifier.Predict(row)
	}
	return labels, nil
}

// PredictProba returns [P(label 0), P(label 1)] for every text.
func (p *Pipeline) PredictProba(texts []string) ([][2]float64, error) {
	rows, err := p.rows(texts)
	if err != nil {
		return nil, err
	}

	probas := make([][2]float64, len(rows))
	for i, row := range rows {
		probas[i] = p.Classifier.PredictProba(row)
	}
	return probas, nil
}

// PredictOne classifies a single text.
func (p *Pipeline) PredictOne(text string) (Prediction, error) {
	rows, err := p.rows([]string{text})
	if err != nil {
		return Prediction{}, err
	}

	row := rows[0]
	label := p.Classifier.Predict(row)
	probas := p.Classifier.PredictProba(row)

	return Prediction{
		Label:         label,
		Class:         p.Classes[label],
		Probabilities: probas,
		Confidence:    probas[label],
	}, nil
}

func splitExamples(examples []Example) ([]string, []int) {
	texts := make([]string, len(examples))
	labels := make([]int, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
		labels[i] = ex.Label
	}
	return texts, labels
}
