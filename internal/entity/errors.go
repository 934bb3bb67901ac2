package entity

import "errors"

var (
	// ErrStrategyDeclined is returned by a strategy that does not handle the input.
	ErrStrategyDeclined = errors.New("strategy declined")
	// ErrSourceUnavailable marks a network or upstream failure inside a strategy.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrExtractionAmbiguous marks model or pattern output that could not be parsed into a record.
	ErrExtractionAmbiguous = errors.New("extraction ambiguous")
	// ErrNotFound means no document or record could be produced for the symbol.
	ErrNotFound = errors.New("not found")
	// ErrPipelineExhausted wraps a failure that aborted a pipeline run.
	ErrPipelineExhausted = errors.New("pipeline exhausted")
	// ErrModelUnavailable means no language model is configured.
	ErrModelUnavailable = errors.New("language model not configured")
)
