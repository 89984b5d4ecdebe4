package handlertools

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mindfuljournal/analyzer/internal"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

var log = internal.GetLogger()

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", NotBlank); err != nil {
		log.Errorf("Error registering validation notblank: %v", err)
	}
	return v
}

// NotBlank rejects strings made only of whitespace.
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// RequestError is a request rejected before any analyzer ran.
type RequestError struct {
	Code   models.ErrorCode
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// EncodeJSON encodes data into JSON and writes it to the response writer.
func EncodeJSON(w http.ResponseWriter, data interface{}) error {
	return json.NewEncoder(w).Encode(data)
}

// WriteJSON sets the content type and status, then encodes data.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := EncodeJSON(w, data); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// DecodeAndValidateJSON decodes a JSON request body into data and validates it. Errors are
// returned as *RequestError carrying the code and status to respond with.
func DecodeAndValidateJSON(r *http.Request, data interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &RequestError{
				Code:   models.CodeRequestTooLarge,
				Status: http.StatusRequestEntityTooLarge,
				Err:    fmt.Errorf("request body larger than %d bytes", maxBytesErr.Limit),
			}
		}
		return &RequestError{
			Code:   models.CodeInvalidRequest,
			Status: http.StatusBadRequest,
			Err:    fmt.Errorf("malformed JSON body: %w", err),
		}
	}

	if err := Validate.Struct(data); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			fe := validationErrs[0]
			if fe.Tag() == "required" || fe.Tag() == "notblank" {
				return &RequestError{
					Code:   models.CodeEmptyInput,
					Status: http.StatusBadRequest,
					Err:    fmt.Errorf("%s must not be empty", strings.ToLower(fe.Field())),
				}
			}
		}
		return &RequestError{Code: models.CodeInvalidRequest, Status: http.StatusBadRequest, Err: err}
	}

	return nil
}

// RenderError writes an ErrorResponse. Request errors keep their own code and status; any
// other error is reported as INTERNAL with status.
func RenderError(w http.ResponseWriter, err error, status int) {
	code := models.CodeInternal
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		code = reqErr.Code
		status = reqErr.Status
	}

	if status >= http.StatusInternalServerError {
		log.Error(err)
	} else {
		log.Debug(err)
	}

	WriteJSON(w, status, models.ErrorResponse{Code: code, Message: err.Error()})
}
