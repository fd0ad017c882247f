package intake

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"vram-calculator/core/models"
	"vram-calculator/core/presets"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left empty
const (
	DefaultPrecision = models.PrecisionFP16
	DefaultTask      = models.TaskInference
	DefaultBatchSize = 1
)

// RawInput holds unparsed form values as a user typed them
type RawInput struct {
	Parameters     string `json:"parameters"`
	SequenceLength string `json:"sequenceLength"`
	BatchSize      string `json:"batchSize"`
	Precision      string `json:"precision"`
	Task           string `json:"task"`
}

// ParseForm parses and validates raw form values into a Configuration.
// Validation stops at the first invalid field.
func ParseForm(in RawInput) (models.Configuration, error) {
	var cfg models.Configuration

	params, err := strconv.ParseFloat(strings.TrimSpace(in.Parameters), 64)
	if err != nil || math.IsNaN(params) || math.IsInf(params, 0) || params <= 0 {
		return cfg, fmt.Errorf("%w: %q", models.ErrInvalidParameterCount, in.Parameters)
	}
	cfg.Parameters = params

	cfg.SequenceLength, err = parsePositiveInt(in.SequenceLength)
	if err != nil {
		return cfg, fmt.Errorf("%w: %q", models.ErrInvalidSequenceLength, in.SequenceLength)
	}

	cfg.BatchSize, err = parsePositiveInt(in.BatchSize)
	if err != nil {
		return cfg, fmt.Errorf("%w: %q", models.ErrInvalidBatchSize, in.BatchSize)
	}

	cfg.Precision = DefaultPrecision
	if strings.TrimSpace(in.Precision) != "" {
		if cfg.Precision, err = models.ParsePrecision(in.Precision); err != nil {
			return cfg, err
		}
	}

	cfg.Task = DefaultTask
	if strings.TrimSpace(in.Task) != "" {
		if cfg.Task, err = models.ParseTask(in.Task); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// WithPreset fills empty parameter, sequence length and batch size fields from a preset.
// An unknown preset is reported as an invalid parameter count.
func (in RawInput) WithPreset(id string) (RawInput, error) {
	if id != "" {
		preset, ok := presets.Lookup(id)
		if !ok {
			return in, fmt.Errorf("%w: unknown preset %q", models.ErrInvalidParameterCount, id)
		}
		if strings.TrimSpace(in.Parameters) == "" {
			in.Parameters = strconv.FormatFloat(preset.Parameters, 'f', -1, 64)
		}
		if strings.TrimSpace(in.SequenceLength) == "" {
			in.SequenceLength = strconv.Itoa(preset.SequenceLength)
		}
	}
	if strings.TrimSpace(in.BatchSize) == "" {
		in.BatchSize = strconv.Itoa(DefaultBatchSize)
	}
	return in, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be greater than 0")
	}
	return n, nil
}

// RequestDocument is the YAML request document
type RequestDocument struct {
	Model          RequestDocumentModel `yaml:"model"`
	SequenceLength *int                 `yaml:"sequence_length,omitempty"`
	BatchSize      *int                 `yaml:"batch_size,omitempty"`
	Precision      string               `yaml:"precision,omitempty"`
	Task           string               `yaml:"task,omitempty"`
}

// RequestDocumentModel identifies the model either by preset or by size
type RequestDocumentModel struct {
	Preset     string   `yaml:"preset,omitempty"`
	Parameters *float64 `yaml:"parameters,omitempty"` // billions
}

// ParseYAML parses a YAML request document into a validated Configuration.
// A preset seeds parameters and sequence length; explicit fields override it.
func ParseYAML(doc []byte) (models.Configuration, error) {
	var req RequestDocument
	if err := yaml.Unmarshal(doc, &req); err != nil {
		return models.Configuration{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return req.Configuration()
}

// Configuration resolves the request document into a validated Configuration
func (s RequestDocument) Configuration() (models.Configuration, error) {
	cfg := models.Configuration{
		BatchSize: DefaultBatchSize,
		Precision: DefaultPrecision,
		Task:      DefaultTask,
	}

	if s.Model.Preset != "" {
		preset, ok := presets.Lookup(s.Model.Preset)
		if !ok {
			return cfg, fmt.Errorf("%w: unknown preset %q", models.ErrInvalidParameterCount, s.Model.Preset)
		}
		cfg.Parameters = preset.Parameters
		cfg.SequenceLength = preset.SequenceLength
	}

	if s.Model.Parameters != nil {
		cfg.Parameters = *s.Model.Parameters
	}
	if s.SequenceLength != nil {
		cfg.SequenceLength = *s.SequenceLength
	}
	if s.BatchSize != nil {
		cfg.BatchSize = *s.BatchSize
	}

	var err error
	if s.Precision != "" {
		if cfg.Precision, err = models.ParsePrecision(s.Precision); err != nil {
			return cfg, err
		}
	}
	if s.Task != "" {
		if cfg.Task, err = models.ParseTask(s.Task); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
