package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a conversion failure
type Kind string

const (
	KindUsage                 Kind = "usage"
	KindNoInputFound          Kind = "no_input_found"
	KindMalformedTimestamp    Kind = "malformed_timestamp"
	KindMissingRequiredColumn Kind = "missing_required_column"
	KindWriteFailure          Kind = "write_failure"
	KindUnexpected            Kind = "unexpected"
)

// Stage names used in ConvertError.Stage
const (
	StageCLI       = "cli"
	StageResolve   = "resolve"
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageReshape   = "reshape"
	StageWrite     = "write"
)

// ConvertError represents a failure in one stage of a conversion run
type ConvertError struct {
	Kind    Kind                   `json:"kind"`
	Stage   string                 `json:"stage,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"cause,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *ConvertError) Error() string {
	if e == nil {
		return "unknown conversion error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *ConvertError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *ConvertError by kind, so sentinel comparisons work
// with errors.Is regardless of message.
func (e *ConvertError) Is(target error) bool {
	t, ok := target.(*ConvertError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// WithContext attaches a key/value pair for structured logging
func (e *ConvertError) WithContext(key string, value interface{}) *ConvertError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Sentinels for errors.Is checks
var (
	ErrUsage                 = &ConvertError{Kind: KindUsage}
	ErrNoInputFound          = &ConvertError{Kind: KindNoInputFound}
	ErrMalformedTimestamp    = &ConvertError{Kind: KindMalformedTimestamp}
	ErrMissingRequiredColumn = &ConvertError{Kind: KindMissingRequiredColumn}
	ErrWriteFailure          = &ConvertError{Kind: KindWriteFailure}
	ErrUnexpected            = &ConvertError{Kind: KindUnexpected}
)

// NewUsageError creates a usage error
func NewUsageError(message string) *ConvertError {
	return &ConvertError{
		Kind:    KindUsage,
		Stage:   StageCLI,
		Message: message,
	}
}

// NewNoInputFoundError creates an error for an empty candidate set
func NewNoInputFoundError(dir string) *ConvertError {
	msg := "No input CSV files found in the current directory."
	if dir != "" && dir != "." {
		msg = fmt.Sprintf("No input CSV files found in %s.", dir)
	}
	return &ConvertError{
		Kind:    KindNoInputFound,
		Stage:   StageResolve,
		Message: msg,
		Context: map[string]interface{}{"dir": dir},
	}
}

// NewMalformedTimestampError creates an error for a date that does not match the input layout
func NewMalformedTimestampError(row int, value string, cause error) *ConvertError {
	return &ConvertError{
		Kind:    KindMalformedTimestamp,
		Stage:   StageNormalize,
		Message: fmt.Sprintf("row %d: time data %q does not match format dd/MM/yyyy HH:mm:ss", row, value),
		Cause:   cause,
		Context: map[string]interface{}{"row": row, "value": value},
	}
}

// NewMissingColumnError creates an error for a required column that is absent
func NewMissingColumnError(stage, column string) *ConvertError {
	return &ConvertError{
		Kind:    KindMissingRequiredColumn,
		Stage:   stage,
		Message: fmt.Sprintf("required column %q not found", column),
		Context: map[string]interface{}{"column": column},
	}
}

// NewWriteFailureError wraps an I/O failure on the output file
func NewWriteFailureError(path string, cause error) *ConvertError {
	return &ConvertError{
		Kind:    KindWriteFailure,
		Stage:   StageWrite,
		Message: fmt.Sprintf("failed to write %s", path),
		Cause:   cause,
		Context: map[string]interface{}{"path": path},
	}
}

// NewUnexpectedError wraps any failure that has no dedicated kind
func NewUnexpectedError(stage, message string, cause error) *ConvertError {
	return &ConvertError{
		Kind:    KindUnexpected,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// KindOf returns the kind of the first ConvertError in err's chain.
// Errors that are not ConvertErrors are reported as KindUnexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ce *ConvertError
	if stderrors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnexpected
}

// ExitCode maps a run result to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
