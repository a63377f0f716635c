// Package errors provides standardized error handling for the car-market question pipeline
// and its workflow workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeSchemaInvalid    ErrorCode = "SCHEMA_INVALID"
	ErrCodeSourceLoadFailed ErrorCode = "SOURCE_LOAD_FAILED"
	ErrCodeNoDataset        ErrorCode = "NO_DATASET"

	ErrCodeHistoryTokensMissing ErrorCode = "HISTORY_TOKENS_MISSING"
	ErrCodeNoHistoryFiles       ErrorCode = "NO_HISTORY_FILES"
	ErrCodeNoTrendData          ErrorCode = "NO_TREND_DATA"

	ErrCodeInvalidJobInput ErrorCode = "INVALID_JOB_INPUT"
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeLLMTimeout            ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMSynthesisFailed    ErrorCode = "LLM_SYNTHESIS_FAILED"
	ErrCodeChartValidationFailed ErrorCode = "CHART_VALIDATION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// userMessages are the texts shown to the person asking. The three trend failures must
// stay distinguishable.
var userMessages = map[ErrorCode]string{
	ErrCodeSchemaInvalid:         "The dataset is missing required columns (Brand, Model, Price, Year, Kilometers).",
	ErrCodeSourceLoadFailed:      "The data source could not be loaded.",
	ErrCodeNoDataset:             "No dataset is loaded. Upload a listings file first.",
	ErrCodeHistoryTokensMissing:  `Please specify both brand and model, e.g. history line brand-"Toyota" model-"Camry".`,
	ErrCodeNoHistoryFiles:        "No dated market files have been uploaded for the history view.",
	ErrCodeNoTrendData:           "No data found for the requested brand/model in the uploaded history files.",
	ErrCodeLLMTimeout:            "The analysis service timed out.",
	ErrCodeLLMSynthesisFailed:    "The analysis service failed to produce a summary.",
	ErrCodeChartValidationFailed: "The chart data could not be produced.",
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying sentinel so errors.Is keeps working across the wrap.
func (e *StandardError) Unwrap() error { return e.cause }

// UserMessage returns the text to show the person who asked the question.
func (e *StandardError) UserMessage() string {
	if msg, ok := userMessages[e.Code]; ok {
		return msg
	}
	return e.Message
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewSchemaInvalidError reports missing required columns. Fatal for the question.
func NewSchemaInvalidError(cause error) *StandardError {
	return newError(ErrCodeSchemaInvalid, "Dataset schema is invalid", cause, false)
}

// NewSourceLoadFailedError reports an unreadable source at the ingestion boundary.
func NewSourceLoadFailedError(source string, cause error) *StandardError {
	e := newError(ErrCodeSourceLoadFailed, fmt.Sprintf("Failed to load source %q", source), cause, true)
	e.Metadata = map[string]interface{}{"source": source}
	return e
}

// NewNoDatasetError reports a non-trend question asked before any dataset was loaded.
func NewNoDatasetError() *StandardError {
	return newError(ErrCodeNoDataset, "No dataset loaded", nil, false)
}

func NewHistoryTokensMissingError(cause error) *StandardError {
	return newError(ErrCodeHistoryTokensMissing, "History question lacks brand or model token", cause, false)
}

func NewNoHistoryFilesError(cause error) *StandardError {
	return newError(ErrCodeNoHistoryFiles, "No dated market files available", cause, false)
}

func NewNoTrendDataError(cause error) *StandardError {
	return newError(ErrCodeNoTrendData, "No market rows matched the history filters", cause, false)
}

func NewInvalidJobInputError(cause error) *StandardError {
	return newError(ErrCodeInvalidJobInput, "Job variables could not be parsed", cause, false)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	e := newError(ErrCodeSessionNotFound, "Session not found", fmt.Errorf("sessionId: %s", sessionID), false)
	e.Metadata = map[string]interface{}{"sessionId": sessionID}
	return e
}

// NewLLMTimeoutError creates a retryable narrative timeout error.
func NewLLMTimeoutError(cause error) *StandardError {
	return newError(ErrCodeLLMTimeout, "Narrative synthesis timeout", cause, true)
}

// NewLLMSynthesisFailedError creates a retryable narrative API error.
func NewLLMSynthesisFailedError(cause error) *StandardError {
	return newError(ErrCodeLLMSynthesisFailed, "Narrative synthesis API error", cause, true)
}

func NewChartValidationFailedError(cause error) *StandardError {
	return newError(ErrCodeChartValidationFailed, "Chart package failed schema validation", cause, false)
}

// NewInternalError wraps anything unexpected.
func NewInternalError(cause error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", cause, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSourceLoadFailed, ErrCodeLLMSynthesisFailed:
		return 3
	case ErrCodeLLMTimeout:
		return 1
	default:
		return 0 // business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.UserMessage(),
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard returns err as a *StandardError, wrapping it as internal when it is not one.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf returns the error code carried by err, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	return AsStandard(err).Code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "SOURCE") || strings.Contains(codeStr, "DATASET"):
		return "DATA"
	case strings.Contains(codeStr, "HISTORY") || strings.Contains(codeStr, "TREND"):
		return "TREND"
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
