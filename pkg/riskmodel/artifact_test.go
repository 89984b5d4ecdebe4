package riskmodel

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactRoundTrip(t *testing.T) {
	result := trainSynthetic(t)

	a, err := result.Artifact("synthetic.csv", DefaultSeed)
	require.NoError(t, err)
	require.NotNil(t, a.Training)
	assert.Equal(t, result.Report.Accuracy, a.Training.Accuracy)

	path := filepath.Join(t.TempDir(), "models", "risk.json")
	require.NoError(t, SaveArtifact(path, a))

	loaded, loadedArtifact, err := LoadPipeline(path)
	require.NoError(t, err)
	assert.Equal(t, a.ID, loadedArtifact.ID)
	assert.Equal(t, "synthetic.csv", loadedArtifact.Training.Dataset)

	want, err := result.Pipeline.PredictProba(SmokeSentences)
	require.NoError(t, err)
	got, err := loaded.PredictProba(SmokeSentences)
	require.NoError(t, err)

	for i := range want {
		assert.InDelta(t, want[i][1], got[i][1], 1e-12, SmokeSentences[i])
	}
}

func TestArtifactValidate(t *testing.T) {
	result := trainSynthetic(t)

	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"wrong format", func(a *Artifact) { a.Format = "pickle" }},
		{"wrong version", func(a *Artifact) { a.Version = 2 }},
		{"bad id", func(a *Artifact) { a.ID = "not-a-uuid" }},
		{"other cleaner", func(a *Artifact) { a.Cleaner.Name = "lowercase/v0" }},
		{"short idf", func(a *Artifact) { a.Vector.IDF = a.Vector.IDF[1:] }},
		{"short coef", func(a *Artifact) { a.Model.Coef = a.Model.Coef[1:] }},
		{"one class", func(a *Artifact) { a.Model.Classes = a.Model.Classes[:1] }},
		{"nan weight", func(a *Artifact) { a.Model.Coef[0] = math.NaN() }},
		{"duplicate index", func(a *Artifact) {
			for term := range a.Vector.Vocabulary {
				a.Vector.Vocabulary[term] = 0
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := result.Pipeline.Artifact()
			require.NoError(t, err)
			require.NoError(t, a.Validate())

			tt.mutate(a)
			assert.ErrorIs(t, a.Validate(), ErrInvalidArtifact)

			_, err = a.Pipeline()
			assert.Error(t, err)
		})
	}
}

func TestLoadArtifactRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o600))
	_, err := LoadArtifact(corrupt)
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o600))
	_, err = LoadArtifact(empty)
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, _, err = LoadPipeline(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestArtifactJSONSchema(t *testing.T) {
	schema, err := ArtifactJSONSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(schema, &doc))
	assert.Contains(t, string(schema), "vectorizer")
	assert.Contains(t, string(schema), "journal-risk-pipeline")
}
