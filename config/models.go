package config

import "time"

// Config holds the configuration of the application
// Use LoadConfig to create a new instance
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    json:"server"`
	Log       LogConfig       `mapstructure:"log"       json:"log"`
	Analyzers AnalyzersConfig `mapstructure:"analyzers" json:"analyzers"`
	Inference InferenceConfig `mapstructure:"inference" json:"inference"`
	LLM       LLM             `mapstructure:"llm"       json:"llm"`
	Tracing   TracingConfig   `mapstructure:"tracing"   json:"tracing"`
	Training  TrainingConfig  `mapstructure:"training"  json:"training"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"             json:"host"`
	Port           int           `mapstructure:"port"             json:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"  json:"allowed_origins"`
	MaxRequestSize int64         `mapstructure:"max_request_size" json:"max_request_size"`
	AnalyzeTimeout time.Duration `mapstructure:"analyze_timeout"  json:"analyze_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error"`
}

// AnalyzersConfig holds the configuration for all analyzers
type AnalyzersConfig struct {
	Summarizer SummarizerConfig `mapstructure:"summarizer" json:"summarizer"`
	Emotion    EmotionConfig    `mapstructure:"emotion"    json:"emotion"`
	Risk       RiskConfig       `mapstructure:"risk"       json:"risk"`
	Keywords   KeywordsConfig   `mapstructure:"keywords"   json:"keywords"`
}

type SummarizerConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Service is either huggingface or openai
	Service   string `mapstructure:"service"    json:"service" jsonschema:"enum=huggingface,enum=openai"`
	Model     string `mapstructure:"model"      json:"model"`
	MinLength int    `mapstructure:"min_length" json:"min_length"`
	MaxLength int    `mapstructure:"max_length" json:"max_length"`
}

type EmotionConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Model   string `mapstructure:"model"   json:"model"`
	// Labels, when set, is the closed set of labels the model may return
	Labels []string `mapstructure:"labels" json:"labels"`
}

type RiskConfig struct {
	Enabled        bool    `mapstructure:"enabled"         json:"enabled"`
	ArtifactPath   string  `mapstructure:"artifact_path"   json:"artifact_path"`
	AlertThreshold float64 `mapstructure:"alert_threshold" json:"alert_threshold"`
}

type KeywordsConfig struct {
	Enabled        bool    `mapstructure:"enabled"         json:"enabled"`
	Top            int     `mapstructure:"top"             json:"top"`
	MaxNgram       int     `mapstructure:"max_ngram"       json:"max_ngram"`
	DedupThreshold float64 `mapstructure:"dedup_threshold" json:"dedup_threshold"`
}

// InferenceConfig points at a Hugging Face compatible inference endpoint
type InferenceConfig struct {
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	// APIToken is loaded from ENV not config file.
	APIToken   string        `mapstructure:"api_token"   json:"-"`
	Timeout    time.Duration `mapstructure:"timeout"     json:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" json:"max_retries"`
}

type LLM struct {
	Model string `mapstructure:"model" json:"model"`
	// OpenAIAPIKey is loaded from ENV not config file.
	OpenAIAPIKey   string  `mapstructure:"openai_api_key"   json:"-"`
	OpenAIEndpoint string  `mapstructure:"openai_endpoint"  json:"openai_endpoint"`
	MaxInputTokens int     `mapstructure:"max_input_tokens" json:"max_input_tokens"`
	Temperature    float64 `mapstructure:"temperature"      json:"temperature"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"      json:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"     json:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"     json:"insecure"`
	ServiceName string  `mapstructure:"service_name" json:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio" json:"sample_ratio"`
}

type TrainingConfig struct {
	Dataset     string  `mapstructure:"dataset"      json:"dataset"`
	TestSize    float64 `mapstructure:"test_size"    json:"test_size"`
	Seed        int64   `mapstructure:"seed"         json:"seed"`
	MaxFeatures int     `mapstructure:"max_features" json:"max_features"`
	MaxIter     int     `mapstructure:"max_iter"     json:"max_iter"`
}
