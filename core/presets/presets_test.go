package presets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vram-calculator/core/estimator"
	"vram-calculator/core/models"
)

func TestLookup(t *testing.T) {
	p, ok := Lookup("llama-13b")
	require.True(t, ok)
	assert.Equal(t, 13.0, p.Parameters)
	assert.Equal(t, 4096, p.SequenceLength)
	assert.Equal(t, "LLaMA 13B", p.DisplayName)

	_, ok = Lookup("gpt-5")
	assert.False(t, ok)
}

func TestListIsACopy(t *testing.T) {
	list := List()
	require.Len(t, list, 8)
	assert.Equal(t, "gpt-3.5-7b", list[0].ID)
	assert.Equal(t, "bloom-176b", list[7].ID)

	list[0].Parameters = 1000
	p, _ := Lookup("gpt-3.5-7b")
	assert.Equal(t, 7.0, p.Parameters)
}

func TestPresetConfiguration(t *testing.T) {
	p, _ := Lookup("gpt-3.5-7b")
	cfg := p.Configuration(1, models.PrecisionFP16, models.TaskInference)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 17, estimator.Estimate(cfg).TotalVRAM)
}

func TestCompareModelsSortedByParameters(t *testing.T) {
	rows := CompareModels(models.PrecisionFP16, models.TaskInference)
	require.Len(t, rows, 8)

	// Stable sort keeps declaration order for the two 7B entries
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	assert.Equal(t, []string{
		"gpt-j-6b", "gpt-3.5-7b", "llama-7b", "llama-13b", "llama-30b", "llama-65b", "opt-66b", "bloom-176b",
	}, keys)

	last := rows[len(rows)-1]
	assert.Equal(t, "BLOOM 176B", last.Name)
	assert.Equal(t, 399, last.TotalVRAM)
	assert.Equal(t, []string{"5x A100 80GB (80GB each)"}, last.RecommendedGPUs)

	for _, r := range rows {
		assert.Nil(t, r.Gradients)
	}
}

func TestCompareModelsTraining(t *testing.T) {
	for _, r := range CompareModels(models.PrecisionINT8, models.TaskTraining) {
		assert.NotNil(t, r.Gradients, r.Key)
		assert.NotNil(t, r.Optimizer, r.Key)
	}
}
