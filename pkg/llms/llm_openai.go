package llms

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mindfuljournal/analyzer/config"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

const (
	OpenAIAPIKeyNotSetError = "ANALYZER_OPENAI_API_KEY is not set" //nolint:gosec
	defaultEncoding         = "cl100k_base"
)

var _ models.LLM = &OpenAILLM{}

type OpenAILLM struct {
	llm         *openai.LLM
	tkm         *tiktoken.Tiktoken
	maxTokens   int
	temperature float64
}

func NewOpenAILLM(_ context.Context, cfg *config.Config) (*OpenAILLM, error) {
	if cfg.LLM.OpenAIAPIKey == "" {
		return nil, errors.New(OpenAIAPIKeyNotSetError)
	}

	retryableHTTPClient := NewRetryableHTTPClient(cfg.Inference.MaxRetries, cfg.Inference.Timeout)

	options := []openai.Option{
		openai.WithHTTPClient(retryableHTTPClient.StandardClient()),
		openai.WithModel(cfg.LLM.Model),
		openai.WithToken(cfg.LLM.OpenAIAPIKey),
	}
	if cfg.LLM.OpenAIEndpoint != "" {
		options = append(options, openai.WithBaseURL(cfg.LLM.OpenAIEndpoint))
	}

	llm, err := openai.New(options...)
	if err != nil {
		return nil, NewLLMError("failed to create openai client", err)
	}

	o := &OpenAILLM{
		llm:         llm,
		maxTokens:   cfg.LLM.MaxInputTokens,
		temperature: cfg.LLM.Temperature,
	}

	// the tokenizer is only needed to enforce an input budget
	if o.maxTokens > 0 {
		tkm, err := tiktoken.EncodingForModel(cfg.LLM.Model)
		if err != nil {
			tkm, err = tiktoken.GetEncoding(defaultEncoding)
			if err != nil {
				return nil, NewLLMError("failed to load tokenizer", err)
			}
		}
		o.tkm = tkm
	}

	return o, nil
}

func (o *OpenAILLM) Call(ctx context.Context,
	prompt string,
	options ...llms.CallOption,
) (string, error) {
	if len(options) == 0 {
		options = append(options, llms.WithTemperature(o.temperature))
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, o.llm, prompt, options...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %w", models.ErrModelUnavailable, NewLLMError("completion failed", err))
	}

	return completion, nil
}

// GetTokenCount returns the number of tokens in the text
func (o *OpenAILLM) GetTokenCount(text string) (int, error) {
	if o.tkm == nil {
		return 0, errors.New("tokenizer is not loaded, llm.max_input_tokens is 0")
	}
	return len(o.tkm.Encode(text, nil, nil)), nil
}

func (o *OpenAILLM) Truncate(text string) string {
	if o.tkm == nil {
		return text
	}
	tokens := o.tkm.Encode(text, nil, nil)
	if len(tokens) <= o.maxTokens {
		return text
	}
	return o.tkm.Decode(tokens[:o.maxTokens])
}
