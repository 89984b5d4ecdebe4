package config

import (
	"errors"
	"strings"
	"time"

	"github.com/mindfuljournal/analyzer/internal"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	EnvPrefix          = "ANALYZER"
	DefaultServiceName = "journal-analyzer"
)

// We're bootstrapping so avoid any imports from other packages
var log = logrus.New()

var defaults = map[string]any{
	"server.host":             "127.0.0.1",
	"server.port":             8000,
	"server.allowed_origins":  []string{"http://localhost:5173"},
	"server.max_request_size": 1 << 20,
	"server.analyze_timeout":  30 * time.Second,

	"log.level": "info",

	"analyzers.summarizer.enabled":    true,
	"analyzers.summarizer.service":    "huggingface",
	"analyzers.summarizer.model":      "facebook/bart-large-cnn",
	"analyzers.summarizer.min_length": 10,
	"analyzers.summarizer.max_length": 50,

	"analyzers.emotion.enabled": true,
	"analyzers.emotion.model":   "j-hartmann/emotion-english-distilroberta-base",
	"analyzers.emotion.labels": []string{
		"anger", "disgust", "fear", "joy", "neutral", "sadness", "surprise",
	},

	"analyzers.risk.enabled":         true,
	"analyzers.risk.artifact_path":   "suicide_detection_pipeline.json",
	"analyzers.risk.alert_threshold": 0.7,

	"analyzers.keywords.enabled":         true,
	"analyzers.keywords.top":             5,
	"analyzers.keywords.max_ngram":       2,
	"analyzers.keywords.dedup_threshold": 0.9,

	"inference.base_url":    "https://api-inference.huggingface.co",
	"inference.timeout":     20 * time.Second,
	"inference.max_retries": 0,

	"llm.model":            "gpt-3.5-turbo",
	"llm.max_input_tokens": 0,
	"llm.temperature":      0.0,

	"tracing.enabled":      false,
	"tracing.endpoint":     "localhost:4318",
	"tracing.service_name": DefaultServiceName,
	"tracing.sample_ratio": 1.0,

	"training.dataset":      "../Suicide_Detection.csv",
	"training.test_size":    0.2,
	"training.seed":         42,
	"training.max_features": 5000,
	"training.max_iter":     500,
}

// LoadConfig loads the config file and ENV variables into a Config struct.
// An empty configFile looks for an optional config.yaml in the working directory.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	// Environment variables take precedence over config file
	loadDotEnv()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
		log.Debug("no config file found, using defaults and environment")
	}

	for key, env := range map[string]string{
		"llm.openai_api_key":  "ANALYZER_OPENAI_API_KEY",
		"inference.api_token": "ANALYZER_HF_API_TOKEN",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDotEnv loads environment variables from .env file
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Debug(".env file not found or unable to load")
	}
}

// SetLogLevel sets the log level based on the config file. Defaults to INFO if not set or invalid
func SetLogLevel(cfg *Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	internal.SetLogLevel(level)
	internal.GetLogger().Info("Log level set to: ", level)
}
