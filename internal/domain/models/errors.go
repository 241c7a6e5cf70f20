package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures for transport mapping and metrics.
type ErrorKind string

const (
	KindInvalidRequest   ErrorKind = "invalid_request"
	KindInsufficientData ErrorKind = "insufficient_data"
	KindTraining         ErrorKind = "training"
	KindUpstreamFetch    ErrorKind = "upstream_fetch"
	KindPersistence      ErrorKind = "persistence"
)

// PipelineError is the single structured error surfaced by the forecast
// pipeline. A failed step short-circuits the request; no partial records
// are persisted.
type PipelineError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func InvalidRequestError(format string, a ...interface{}) *PipelineError {
	return &PipelineError{Kind: KindInvalidRequest, Msg: fmt.Sprintf(format, a...)}
}

func InsufficientDataError(format string, a ...interface{}) *PipelineError {
	return &PipelineError{Kind: KindInsufficientData, Msg: fmt.Sprintf(format, a...)}
}

func TrainingError(format string, a ...interface{}) *PipelineError {
	return &PipelineError{Kind: KindTraining, Msg: fmt.Sprintf(format, a...)}
}

func UpstreamFetchError(msg string, err error) *PipelineError {
	return &PipelineError{Kind: KindUpstreamFetch, Msg: msg, Err: err}
}

func PersistenceError(msg string, err error) *PipelineError {
	return &PipelineError{Kind: KindPersistence, Msg: msg, Err: err}
}

// KindOf extracts the error kind, or empty string for foreign errors.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
