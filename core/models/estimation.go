package models

import (
	"strings"
)

// Precision represents the numeric representation used for weights and activations
type Precision string

const (
	PrecisionFP32 Precision = "fp32"
	PrecisionFP16 Precision = "fp16"
	PrecisionINT8 Precision = "int8"
	PrecisionINT4 Precision = "int4"
)

// precisionBytes maps each precision to its bytes-per-value
var precisionBytes = map[Precision]float64{
	PrecisionFP32: 4,
	PrecisionFP16: 2,
	PrecisionINT8: 1,
	PrecisionINT4: 0.5,
}

// Precisions returns every precision in comparison order (widest first)
func Precisions() []Precision {
	return []Precision{PrecisionFP32, PrecisionFP16, PrecisionINT8, PrecisionINT4}
}

// Bytes returns the bytes-per-value for the precision, or 0 if it is not a known precision
func (p Precision) Bytes() float64 {
	return precisionBytes[p]
}

// Valid reports whether p is one of the supported precisions
func (p Precision) Valid() bool {
	_, ok := precisionBytes[p]
	return ok
}

// ParsePrecision parses a precision name such as "FP16" or " int8 "
func ParsePrecision(s string) (Precision, error) {
	p := Precision(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", invalid(ErrInvalidPrecision, "unknown precision %q", s)
	}
	return p, nil
}

// Task represents what the model is being used for
type Task string

const (
	TaskInference Task = "inference"
	TaskTraining  Task = "training"
)

// Valid reports whether t is a supported task
func (t Task) Valid() bool {
	return t == TaskInference || t == TaskTraining
}

// ParseTask parses a task name such as "Training"
func ParseTask(s string) (Task, error) {
	t := Task(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", invalid(ErrInvalidTask, "unknown task %q", s)
	}
	return t, nil
}

// Configuration is a validated estimation request
type Configuration struct {
	Parameters     float64   `json:"parameters"`     // billions of parameters
	SequenceLength int       `json:"sequenceLength"` // tokens
	BatchSize      int       `json:"batchSize"`      // samples per step
	Precision      Precision `json:"precision"`
	Task           Task      `json:"task"`
}

// WithPrecision returns a copy of the configuration using precision p
func (c Configuration) WithPrecision(p Precision) Configuration {
	c.Precision = p
	return c
}

// EstimationResult is the memory breakdown for a configuration.
// All quantities are GiB. Gradients and Optimizer are nil unless the task is training.
type EstimationResult struct {
	ModelWeights      float64  `json:"modelWeights"`
	Activations       float64  `json:"activations"`
	KVCache           float64  `json:"kvCache"`
	Gradients         *float64 `json:"gradients,omitempty"`
	Optimizer         *float64 `json:"optimizer,omitempty"`
	FrameworkOverhead float64  `json:"frameworkOverhead"`
	TotalVRAM         int      `json:"totalVRAM"`
	RecommendedGPUs   []string `json:"recommendedGPUs"`
}

// PrecisionResult is an estimation tagged with the precision it was computed for
type PrecisionResult struct {
	Precision Precision `json:"precision"`
	EstimationResult
}
