package models

import (
	"context"
)

// Response fields, one per analyzer kind.
const (
	FieldSummary  = "summary"
	FieldEmotion  = "emotion"
	FieldAlert    = "alert"
	FieldKeywords = "keywords"
)

// Analyzer derives one signal from a journal entry. Implementations must be safe for
// concurrent use.
type Analyzer interface {
	Info() AnalyzerInfo
	// Analyze returns a response with only this analyzer's field set.
	Analyze(ctx context.Context, text string) (*AnalyzeResponse, error)
}

type AnalyzerInfo struct {
	Name    string         `json:"name"`
	Field   string         `json:"field"`
	Backend string         `json:"backend"`
	Model   string         `json:"model,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type AnalyzeRequest struct {
	Text string `json:"text" validate:"required,notblank"`
}

// AnalyzeResponse carries the fields of the analyzers that succeeded. Fields of disabled
// analyzers are absent; failed analyzers are reported under Errors by field name.
type AnalyzeResponse struct {
	Summary  *string                     `json:"summary,omitempty"`
	Emotion  *string                     `json:"emotion,omitempty"`
	Alert    *bool                       `json:"alert,omitempty"`
	Keywords *[]string                   `json:"keywords,omitempty"`
	Errors   map[string]*AnalyzerFailure `json:"errors,omitempty"`
}

// Merge copies the fields set on other into r.
func (r *AnalyzeResponse) Merge(other *AnalyzeResponse) {
	if other == nil {
		return
	}
	if other.Summary != nil {
		r.Summary = other.Summary
	}
	if other.Emotion != nil {
		r.Emotion = other.Emotion
	}
	if other.Alert != nil {
		r.Alert = other.Alert
	}
	if other.Keywords != nil {
		r.Keywords = other.Keywords
	}
	for field, failure := range other.Errors {
		r.AddFailure(field, failure)
	}
}

func (r *AnalyzeResponse) AddFailure(field string, failure *AnalyzerFailure) {
	if r.Errors == nil {
		r.Errors = make(map[string]*AnalyzerFailure)
	}
	r.Errors[field] = failure
}
