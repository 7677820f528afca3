// Package errors provides standardized error handling for the remote
// workflow execution client.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Stage Codes
// ==========================

// Stage identifies which phase of an invocation produced an error.
type Stage string

const (
	StageUnreachable Stage = "UNREACHABLE"
	StageParse       Stage = "PARSE_ERROR"
	StageBinding     Stage = "BINDING_ERROR"
	StageSubmission  Stage = "SUBMISSION_ERROR"
	StageExecution   Stage = "EXECUTION_FAILURE"
	StageTimeout     Stage = "TIMEOUT"
	StageCanceled    Stage = "CANCELED"
	StageArtifact    Stage = "ARTIFACT_ERROR"
)

// StageError is a structured invocation error. Message is short and
// user-facing; Details carries diagnostics for logs only.
type StageError struct {
	Stage     Stage     `json:"stage"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StageError) Error() string {
	return fmt.Sprintf("StageError[%s]: %s", e.Stage, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewUnreachableError reports a failed connectivity probe.
func NewUnreachableError(address string) *StageError {
	return &StageError{
		Stage:     StageUnreachable,
		Message:   "unable to connect to remote server",
		Details:   fmt.Sprintf("address: %s", address),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkflowParseError reports workflow text that is not valid graph data.
func NewWorkflowParseError(details string) *StageError {
	return &StageError{
		Stage:     StageParse,
		Message:   "failed to load workflow",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAPIFormatError reports a graph that parsed but is not in the
// submittable numeric-keyed form.
func NewAPIFormatError() *StageError {
	return &StageError{
		Stage:     StageParse,
		Message:   "workflow must be in API format",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBindingParseError reports a node-binding map that is not valid
// structured data.
func NewBindingParseError(details string) *StageError {
	return &StageError{
		Stage:     StageBinding,
		Message:   "invalid node selection data",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyBindingError reports an empty node-binding map.
func NewEmptyBindingError() *StageError {
	return &StageError{
		Stage:     StageBinding,
		Message:   "no nodes selected",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionError reports a failed job submission.
func NewSubmissionError(err error) *StageError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StageError{
		Stage:     StageSubmission,
		Message:   "failed to submit workflow",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExecutionFailureError reports a server-side execution error.
func NewExecutionFailureError(reason string) *StageError {
	return &StageError{
		Stage:     StageExecution,
		Message:   "remote execution failed",
		Details:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError reports a job that produced no terminal event within
// the overall deadline.
func NewTimeoutError(timeout time.Duration) *StageError {
	return &StageError{
		Stage:     StageTimeout,
		Message:   "remote execution timed out",
		Details:   fmt.Sprintf("timeout: %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCanceledError reports a completion wait cut short by the caller
// rather than by the job deadline.
func NewCanceledError(details string) *StageError {
	return &StageError{
		Stage:     StageCanceled,
		Message:   "invocation canceled",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactError reports a failed artifact download or decode. These
// are recovered locally; the affected entry is skipped.
func NewArtifactError(filename string, err error) *StageError {
	details := fmt.Sprintf("filename: %s", filename)
	if err != nil {
		details = fmt.Sprintf("filename: %s, error: %s", filename, err.Error())
	}
	return &StageError{
		Stage:     StageArtifact,
		Message:   "failed to retrieve artifact",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
