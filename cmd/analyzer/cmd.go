package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mindfuljournal/analyzer/config"
	"github.com/mindfuljournal/analyzer/internal"
	"github.com/mindfuljournal/analyzer/pkg/riskmodel"
)

var (
	log = internal.GetLogger()

	cfgFile     string
	showVersion bool
	dumpConfig  bool

	datasetPath  string
	artifactPath string
)

var cmd = &cobra.Command{
	Use:   "analyzer",
	Short: "analyzer summarizes journal entries and flags entries that show signs of self-harm risk",
	Run:   func(cmd *cobra.Command, args []string) { run() },
}

var trainCmd = &cobra.Command{
	Use:     "train",
	Short:   "Train the risk classifier and write the pipeline artifact",
	Example: "analyzer train --dataset ../Suicide_Detection.csv --output suicide_detection_pipeline.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		return train(cmd.OutOrStdout(), cfg, datasetPath, artifactPath)
	},
}

var predictCmd = &cobra.Command{
	Use:     "predict [text]",
	Short:   "Classify a single entry with the trained risk classifier",
	Example: `analyzer predict "I want to die"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		return predict(cmd.OutOrStdout(), cfg, artifactPath, args[0])
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test utilities",
}

var createDatasetCmd = &cobra.Command{
	Use:   "create-dataset",
	Short: "Create a synthetic labeled dataset for testing the training flow",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		output, _ := cmd.Flags().GetString("output")
		share, _ := cmd.Flags().GetFloat64("positive-share")
		seed, _ := cmd.Flags().GetInt64("seed")
		if err := createDataset(output, count, share, seed); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset with %d rows written to %s\n", count, output)
		return nil
	},
}

var dumpJsonSchemaCmd = &cobra.Command{
	Use:     "json-schema",
	Short:   "Generates JSON Schema for the analyzer's configuration file",
	Example: "analyzer json-schema > analyzer_config_schema.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := config.JSONSchema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(schema))
		return nil
	},
}

var dumpArtifactSchemaCmd = &cobra.Command{
	Use:     "artifact-schema",
	Short:   "Generates JSON Schema for the risk pipeline artifact",
	Example: "analyzer artifact-schema > pipeline_schema.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := riskmodel.ArtifactJSONSchema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(schema))
		return nil
	},
}

func init() {
	testCmd.AddCommand(createDatasetCmd)
	cmd.AddCommand(testCmd)
	cmd.AddCommand(trainCmd)
	cmd.AddCommand(predictCmd)
	cmd.AddCommand(dumpJsonSchemaCmd)
	cmd.AddCommand(dumpArtifactSchemaCmd)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config.yaml)")
	cmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "print version number")
	cmd.PersistentFlags().BoolVarP(&dumpConfig, "dump-config", "d", false, "dump config")

	trainCmd.Flags().
		StringVar(&datasetPath, "dataset", "", "CSV dataset with text and class columns (default training.dataset)")
	trainCmd.Flags().
		StringVarP(&artifactPath, "output", "o", "", "artifact output path (default analyzers.risk.artifact_path)")
	predictCmd.Flags().
		StringVar(&artifactPath, "artifact", "", "artifact path (default analyzers.risk.artifact_path)")

	createDatasetCmd.Flags().Int("count", 1000, "Number of rows to generate")
	createDatasetCmd.Flags().String("output", "./test_data/synthetic_dataset.csv", "Path to output dataset")
	createDatasetCmd.Flags().Float64("positive-share", 0.3, "Share of rows labeled suicide")
	createDatasetCmd.Flags().Int64("seed", riskmodel.DefaultSeed, "Random seed")
}

// Execute executes the root cobra command.
func Execute() {
	log.SetLevel(logrus.InfoLevel)

	err := cmd.Execute()

	if err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the config and applies the CLI options shared by every command.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring analyzer: %s", err)
	}

	handleCLIOptions(cfg)
	config.SetLogLevel(cfg)

	return cfg
}
