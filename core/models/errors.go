package models

import (
	"errors"
	"fmt"
	"math"
)

// Intake errors. Each one is detected before the estimator runs.
var (
	ErrInvalidParameterCount = errors.New("invalid parameter count")
	ErrInvalidSequenceLength = errors.New("invalid sequence length")
	ErrInvalidBatchSize      = errors.New("invalid batch size")
	ErrInvalidPrecision      = errors.New("invalid precision")
	ErrInvalidTask           = errors.New("invalid task")
	ErrCalculationFailure    = errors.New("calculation failure")
)

func invalid(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// ErrorKind returns a stable identifier for an intake or calculation error
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidParameterCount):
		return "invalid_parameter_count"
	case errors.Is(err, ErrInvalidSequenceLength):
		return "invalid_sequence_length"
	case errors.Is(err, ErrInvalidBatchSize):
		return "invalid_batch_size"
	case errors.Is(err, ErrInvalidPrecision):
		return "invalid_precision"
	case errors.Is(err, ErrInvalidTask):
		return "invalid_task"
	case errors.Is(err, ErrCalculationFailure):
		return "calculation_failure"
	default:
		return "unknown"
	}
}

// Validate checks the configuration invariant
func (c Configuration) Validate() error {
	if !(c.Parameters > 0) || math.IsInf(c.Parameters, 0) {
		return invalid(ErrInvalidParameterCount, "parameters must be a finite number greater than 0, got %v", c.Parameters)
	}
	if c.SequenceLength <= 0 {
		return invalid(ErrInvalidSequenceLength, "sequence length must be greater than 0, got %d", c.SequenceLength)
	}
	if c.BatchSize <= 0 {
		return invalid(ErrInvalidBatchSize, "batch size must be greater than 0, got %d", c.BatchSize)
	}
	if !c.Precision.Valid() {
		return invalid(ErrInvalidPrecision, "unknown precision %q", c.Precision)
	}
	if !c.Task.Valid() {
		return invalid(ErrInvalidTask, "unknown task %q", c.Task)
	}
	return nil
}
