package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/dustin/go-humanize"

	"github.com/mindfuljournal/analyzer/config"
	"github.com/mindfuljournal/analyzer/pkg/analyzers"
	"github.com/mindfuljournal/analyzer/pkg/riskmodel"
)

// train fits the risk pipeline on dataset and writes the artifact to output. Empty
// arguments fall back to the configured paths.
func train(w io.Writer, cfg *config.Config, dataset, output string) error {
	if dataset == "" {
		dataset = cfg.Training.Dataset
	}
	if output == "" {
		output = cfg.Analyzers.Risk.ArtifactPath
	}

	examples, stats, err := riskmodel.LoadDataset(dataset)
	if err != nil {
		return err
	}
	log.Infof(
		"Loaded %s rows from %s, kept %s (dropped %d empty, %d with unknown class)",
		humanize.Comma(int64(stats.Rows)),
		dataset,
		humanize.Comma(int64(stats.Kept)),
		stats.DroppedEmpty,
		stats.DroppedClass,
	)

	opts := trainOptions(cfg)
	result, err := riskmodel.Train(examples, opts)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	fmt.Fprintf(w, "Trained on %s entries, evaluated on %s\n\n",
		humanize.Comma(int64(result.TrainSize)), humanize.Comma(int64(result.TestSize)))
	fmt.Fprintln(w, result.Report.String())
	for _, s := range result.Samples {
		fmt.Fprintf(w, "%-40q %-12s %.3f\n", s.Text, s.Class, s.Confidence)
	}

	artifact, err := result.Artifact(filepath.Base(dataset), opts.Seed)
	if err != nil {
		return err
	}
	if err := riskmodel.SaveArtifact(output, artifact); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nArtifact %s written to %s\n", artifact.ID, output)
	return nil
}

func trainOptions(cfg *config.Config) riskmodel.TrainOptions {
	opts := riskmodel.DefaultTrainOptions()
	if cfg.Training.TestSize > 0 {
		opts.TestSize = cfg.Training.TestSize
	}
	if cfg.Training.Seed != 0 {
		opts.Seed = cfg.Training.Seed
	}
	if cfg.Training.MaxFeatures > 0 {
		opts.Pipeline.MaxFeatures = cfg.Training.MaxFeatures
	}
	if cfg.Training.MaxIter > 0 {
		opts.Pipeline.MaxIter = cfg.Training.MaxIter
	}
	return opts
}

// predict loads the artifact and prints the risk label and confidence for text.
func predict(w io.Writer, cfg *config.Config, artifact, text string) error {
	if artifact == "" {
		artifact = cfg.Analyzers.Risk.ArtifactPath
	}

	pipeline, a, err := riskmodel.LoadPipeline(artifact)
	if err != nil {
		return err
	}
	pred, err := pipeline.PredictOne(text)
	if err != nil {
		return err
	}

	threshold := cfg.Analyzers.Risk.AlertThreshold
	if threshold <= 0 {
		threshold = analyzers.DefaultAlertThreshold
	}

	fmt.Fprintf(w, "artifact:   %s\n", a.ID)
	fmt.Fprintf(w, "class:      %s\n", pred.Class)
	fmt.Fprintf(w, "confidence: %.4f\n", pred.Confidence)
	fmt.Fprintf(w, "alert:      %t\n", analyzers.ShouldAlert(pred, threshold))
	return nil
}

// createDataset writes a synthetic labeled CSV in the training dataset format.
func createDataset(output string, count int, positiveShare float64, seed int64) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	examples := riskmodel.SyntheticExamples(gofakeit.New(seed), count, positiveShare)
	if err := riskmodel.WriteDataset(f, examples); err != nil {
		return err
	}
	return f.Close()
}
