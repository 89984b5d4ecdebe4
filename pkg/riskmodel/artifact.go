package riskmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	"github.com/mindfuljournal/analyzer/pkg/textclean"
)

const (
	ArtifactFormat  = "journal-risk-pipeline"
	ArtifactVersion = 1
)

var ErrInvalidArtifact = errors.New("invalid risk pipeline artifact")

var validate = validator.New()

// Artifact is the persisted form of a fitted Pipeline. Everything needed to rebuild the
// pipeline is spelled out: the cleaner identity, the vocabulary with its idf weights and
// the classifier coefficients.
type Artifact struct {
	Format    string           `json:"format"     validate:"required,eq=journal-risk-pipeline" jsonschema:"enum=journal-risk-pipeline"`
	Version   int              `json:"version"    validate:"required,eq=1"`
	ID        string           `json:"id"         validate:"required,uuid"`
	CreatedAt time.Time        `json:"created_at" validate:"required"`
	Cleaner   CleanerSpec      `json:"cleaner"`
	Vector    VectorizerSpec   `json:"vectorizer"`
	Model     ClassifierSpec   `json:"classifier"`
	Training  *TrainingSummary `json:"training,omitempty"`
}

type CleanerSpec struct {
	Name string `json:"name" validate:"required" jsonschema:"description=Identity of the text cleaning transform"`
}

type VectorizerSpec struct {
	StopWords   string         `json:"stop_words"   validate:"omitempty,eq=english"`
	MaxFeatures int            `json:"max_features" validate:"gte=0"`
	NgramRange  [2]int         `json:"ngram_range"`
	Vocabulary  map[string]int `json:"vocabulary"   validate:"required,min=1"`
	IDF         []float64      `json:"idf"          validate:"required,min=1"`
}

type ClassifierSpec struct {
	Classes   []string  `json:"classes"   validate:"len=2,dive,required"`
	Coef      []float64 `json:"coef"      validate:"required,min=1"`
	Intercept float64   `json:"intercept"`
	C         float64   `json:"c"         validate:"gt=0"`
	Iters     int       `json:"n_iter"`
	Converged bool      `json:"converged"`
}

// TrainingSummary records how the artifact was produced.
type TrainingSummary struct {
	Dataset   string  `json:"dataset,omitempty"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
	Seed      int64   `json:"seed"`
	Accuracy  float64 `json:"accuracy"`
}

// Artifact snapshots a fitted pipeline.
func (p *Pipeline) Artifact() (*Artifact, error) {
	if len(p.Classifier.Coef) == 0 || len(p.Classifier.Coef) != p.Vectorizer.NumFeatures() {
		return nil, errors.New("pipeline is not fitted")
	}

	vocab := make(map[string]int, len(p.Vectorizer.Vocabulary))
	for term, idx := range p.Vectorizer.Vocabulary {
		vocab[term] = idx
	}

	return &Artifact{
		Format:    ArtifactFormat,
		Version:   ArtifactVersion,
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Cleaner:   CleanerSpec{Name: p.Cleaner.Name()},
		Vector: VectorizerSpec{
			StopWords:   textclean.StopWordsName,
			MaxFeatures: p.Vectorizer.MaxFeatures,
			NgramRange:  p.Vectorizer.NgramRange,
			Vocabulary:  vocab,
			IDF:         append([]float64(nil), p.Vectorizer.IDF...),
		},
		Model: ClassifierSpec{
			Classes:   []string{p.Classes[0], p.Classes[1]},
			Coef:      append([]float64(nil), p.Classifier.Coef...),
			Intercept: p.Classifier.Intercept,
			C:         p.Classifier.C,
			Iters:     p.Classifier.NIter,
			Converged: p.Classifier.Converged,
		},
	}, nil
}

// Validate checks the schema and the internal consistency of the artifact.
func (a *Artifact) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	if a.Cleaner.Name != textclean.CleanerName {
		return fmt.Errorf(
			"%w: artifact was cleaned with %q but this build provides %q",
			ErrInvalidArtifact,
			a.Cleaner.Name,
			textclean.CleanerName,
		)
	}

	n := len(a.Vector.IDF)
	if len(a.Vector.Vocabulary) != n || len(a.Model.Coef) != n {
		return fmt.Errorf(
			"%w: vocabulary has %d terms, idf %d weights and coef %d weights",
			ErrInvalidArtifact,
			len(a.Vector.Vocabulary),
			n,
			len(a.Model.Coef),
		)
	}

	seen := make([]bool, n)
	for term, idx := range a.Vector.Vocabulary {
		if idx < 0 || idx >= n || seen[idx] {
			return fmt.Errorf("%w: bad index %d for term %q", ErrInvalidArtifact, idx, term)
		}
		seen[idx] = true
	}

	for _, w := range append(append([]float64{a.Model.Intercept}, a.Model.Coef...), a.Vector.IDF...) {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: non-finite weight", ErrInvalidArtifact)
		}
	}

	return nil
}

// Pipeline rebuilds a ready-to-predict pipeline from the artifact.
func (a *Artifact) Pipeline() (*Pipeline, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	vocab := make(map[string]int, len(a.Vector.Vocabulary))
	for term, idx := range a.Vector.Vocabulary {
		vocab[term] = idx
	}

	return &Pipeline{
		Cleaner: textclean.NewCleaner(),
		Vectorizer: &TfidfVectorizer{
			MaxFeatures: a.Vector.MaxFeatures,
			NgramRange:  a.Vector.NgramRange,
			Vocabulary:  vocab,
			IDF:         append([]float64(nil), a.Vector.IDF...),
		},
		Classifier: &LogisticRegression{
			C:         a.Model.C,
			Coef:      append([]float64(nil), a.Model.Coef...),
			Intercept: a.Model.Intercept,
			NIter:     a.Model.Iters,
			Converged: a.Model.Converged,
		},
		Classes: [2]string{a.Model.Classes[0], a.Model.Classes[1]},
	}, nil
}

// SaveArtifact writes the artifact as JSON. The file is written next to its destination and
// renamed into place, so a reader never sees a partial artifact.
func SaveArtifact(path string, a *Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	return &a, nil
}

// LoadPipeline loads an artifact file and rebuilds its pipeline.
func LoadPipeline(path string) (*Pipeline, *Artifact, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := a.Pipeline()
	if err != nil {
		return nil, nil, err
	}
	return p, a, nil
}

// ArtifactJSONSchema documents the artifact file format.
func ArtifactJSONSchema() ([]byte, error) {
	schema := jsonschema.Reflect(&Artifact{})
	if schema == nil {
		return nil, errors.New("generated JSON Schema is nil")
	}
	return schema.MarshalJSON()
}
