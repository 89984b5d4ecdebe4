package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/mindfuljournal/analyzer/config"
	"github.com/mindfuljournal/analyzer/pkg/riskmodel"
)

const (
	syntheticSize          = 300
	syntheticPositiveShare = 0.3
)

var (
	riskOnce     sync.Once
	riskPipeline *riskmodel.Pipeline
	riskArtifact *riskmodel.Artifact
	riskErr      error
)

// NewTestConfig loads the project's config.yaml with only the local analyzers enabled, so
// tests never reach a remote model.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()

	projectRoot, err := FindProjectRoot()
	if err != nil {
		t.Fatalf("failed to find project root: %v", err)
	}
	cfg, err := config.LoadConfig(filepath.Join(projectRoot, "config.yaml"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	cfg.Analyzers.Summarizer.Enabled = false
	cfg.Analyzers.Emotion.Enabled = false
	cfg.Analyzers.Risk.ArtifactPath = SaveRiskArtifact(t)
	cfg.Tracing.Enabled = false

	return cfg
}

// TrainedRiskPipeline fits a pipeline on a synthetic corpus once per test binary.
func TrainedRiskPipeline(t *testing.T) (*riskmodel.Pipeline, *riskmodel.Artifact) {
	t.Helper()

	riskOnce.Do(func() {
		examples := riskmodel.SyntheticExamples(
			gofakeit.New(riskmodel.DefaultSeed),
			syntheticSize,
			syntheticPositiveShare,
		)
		result, err := riskmodel.Train(examples, riskmodel.DefaultTrainOptions())
		if err != nil {
			riskErr = err
			return
		}
		riskPipeline = result.Pipeline
		riskArtifact, riskErr = result.Artifact("synthetic", riskmodel.DefaultSeed)
	})
	if riskErr != nil {
		t.Fatalf("failed to train risk pipeline: %v", riskErr)
	}

	return riskPipeline, riskArtifact
}

// SaveRiskArtifact writes the trained synthetic artifact into a temp dir and returns its path.
func SaveRiskArtifact(t *testing.T) string {
	t.Helper()

	_, artifact := TrainedRiskPipeline(t)
	path := filepath.Join(t.TempDir(), "risk.json")
	if err := riskmodel.SaveArtifact(path, artifact); err != nil {
		t.Fatalf("failed to save risk artifact: %v", err)
	}
	return path
}

// FindProjectRoot returns the absolute path to the project root directory.
func FindProjectRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("could not get current file path")
	}

	dir := filepath.Dir(currentFilePath)

	for {
		// go.mod marks the project root
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		// If we've reached the top-level directory, the project root is not found.
		if dir == filepath.Dir(dir) {
			return "", fmt.Errorf("project root not found")
		}

		// Move up one directory level.
		dir = filepath.Dir(dir)
	}
}
