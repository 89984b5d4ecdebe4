package models

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// LLM is a text completion backend.
type LLM interface {
	// Call runs a chat completion with prompt as the single user message
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
	// Truncate shortens text to the backend's input token budget
	Truncate(text string) string
}
