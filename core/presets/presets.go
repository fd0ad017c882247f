package presets

import (
	"sort"

	"vram-calculator/core/estimator"
	"vram-calculator/core/models"
)

// Preset is a named, pre-filled model size for a well-known public model
type Preset struct {
	ID             string  `json:"id" yaml:"id"`
	Parameters     float64 `json:"parameters" yaml:"parameters"` // billions
	SequenceLength int     `json:"sequenceLength" yaml:"sequence_length"`
	DisplayName    string  `json:"displayName" yaml:"display_name"`
}

// presets is the static preset table in declaration order
var presets = []Preset{
	{ID: "gpt-3.5-7b", Parameters: 7, SequenceLength: 2048, DisplayName: "GPT-3.5"},
	{ID: "llama-7b", Parameters: 7, SequenceLength: 4096, DisplayName: "LLaMA 7B"},
	{ID: "llama-13b", Parameters: 13, SequenceLength: 4096, DisplayName: "LLaMA 13B"},
	{ID: "llama-30b", Parameters: 30, SequenceLength: 4096, DisplayName: "LLaMA 30B"},
	{ID: "llama-65b", Parameters: 65, SequenceLength: 4096, DisplayName: "LLaMA 65B"},
	{ID: "gpt-j-6b", Parameters: 6, SequenceLength: 2048, DisplayName: "GPT-J 6B"},
	{ID: "opt-66b", Parameters: 66, SequenceLength: 2048, DisplayName: "OPT 66B"},
	{ID: "bloom-176b", Parameters: 176, SequenceLength: 2048, DisplayName: "BLOOM 176B"},
}

// List returns a copy of every preset in declaration order
func List() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Lookup finds a preset by ID
func Lookup(id string) (Preset, bool) {
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// Configuration seeds an estimation request from the preset
func (p Preset) Configuration(batchSize int, precision models.Precision, task models.Task) models.Configuration {
	return models.Configuration{
		Parameters:     p.Parameters,
		SequenceLength: p.SequenceLength,
		BatchSize:      batchSize,
		Precision:      precision,
		Task:           task,
	}
}

// ModelRow is one line of the preset comparison table
type ModelRow struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Parameters float64 `json:"parameters"`
	models.EstimationResult
}

// CompareModels estimates every preset at batch size 1, smallest model first
func CompareModels(precision models.Precision, task models.Task) []ModelRow {
	rows := make([]ModelRow, 0, len(presets))
	for _, p := range presets {
		rows = append(rows, ModelRow{
			Key:              p.ID,
			Name:             p.DisplayName,
			Parameters:       p.Parameters,
			EstimationResult: estimator.Estimate(p.Configuration(1, precision, task)),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Parameters < rows[j].Parameters
	})
	return rows
}
