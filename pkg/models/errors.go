package models

import (
	"context"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeEmptyInput         ErrorCode = "EMPTY_INPUT"
	CodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	CodeRequestTooLarge    ErrorCode = "REQUEST_TOO_LARGE"
	CodeModelUnavailable   ErrorCode = "MODEL_UNAVAILABLE"
	CodeModelOutputInvalid ErrorCode = "MODEL_OUTPUT_INVALID"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeCanceled           ErrorCode = "CANCELED"
	CodeInternal           ErrorCode = "INTERNAL"
)

var (
	ErrEmptyInput         = errors.New("text must not be empty")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrRequestTooLarge    = errors.New("request body too large")
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrModelOutputInvalid = errors.New("model returned an invalid output")
	ErrTimeout            = errors.New("analysis timed out")
	ErrCanceled           = errors.New("analysis canceled")
)

var sentinels = map[ErrorCode]error{
	CodeEmptyInput:         ErrEmptyInput,
	CodeInvalidRequest:     ErrInvalidRequest,
	CodeRequestTooLarge:    ErrRequestTooLarge,
	CodeModelUnavailable:   ErrModelUnavailable,
	CodeModelOutputInvalid: ErrModelOutputInvalid,
	CodeTimeout:            ErrTimeout,
	CodeCanceled:           ErrCanceled,
}

// AnalyzerError is the failure of a single analyzer.
type AnalyzerError struct {
	Analyzer string
	Code     ErrorCode
	Err      error
}

func (e *AnalyzerError) Error() string {
	return fmt.Sprintf("%s analyzer failed (%s): %v", e.Analyzer, e.Code, e.Err)
}

func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the code, so errors.Is(err, ErrTimeout) holds for any
// analyzer error with CodeTimeout.
func (e *AnalyzerError) Is(target error) bool {
	sentinel, ok := sentinels[e.Code]
	return ok && sentinel == target
}

func NewAnalyzerError(analyzer string, code ErrorCode, err error) *AnalyzerError {
	return &AnalyzerError{Analyzer: analyzer, Code: code, Err: err}
}

// CodeOf classifies err. Context deadlines map to CodeTimeout and cancellations to
// CodeCanceled; errors without a known
// code map to CodeInternal.
func CodeOf(err error) ErrorCode {
	var analyzerErr *AnalyzerError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &analyzerErr):
		return analyzerErr.Code
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	}
	for code, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeInternal
}

// AnalyzerFailure is how a failed analyzer is reported to clients.
type AnalyzerFailure struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewAnalyzerFailure(err error) *AnalyzerFailure {
	return &AnalyzerFailure{Code: CodeOf(err), Message: err.Error()}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode                   `json:"code"`
	Message string                      `json:"message"`
	Errors  map[string]*AnalyzerFailure `json:"errors,omitempty"`
}
