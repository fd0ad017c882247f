package estimator

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vram-calculator/core/catalog"
	"vram-calculator/core/models"
)

func config(params float64, seq, batch int, p models.Precision, task models.Task) models.Configuration {
	return models.Configuration{
		Parameters:     params,
		SequenceLength: seq,
		BatchSize:      batch,
		Precision:      p,
		Task:           task,
	}
}

func TestEstimateReferenceScenario(t *testing.T) {
	cfg := config(7, 2048, 1, models.PrecisionFP16, models.TaskInference)

	d := EstimateDetailed(cfg)
	assert.InDelta(t, 24152.29, d.HiddenSize, 0.01)
	assert.InDelta(t, 1.0, d.NumLayers, 1e-9)
	assert.Equal(t, 14e9, d.ModelWeightsBytes)

	res := d.Result
	assert.Equal(t, 13.04, res.ModelWeights)
	assert.Equal(t, 0.77, res.Activations)
	assert.Equal(t, 0.18, res.KVCache)
	assert.Equal(t, 2.8, res.FrameworkOverhead)
	assert.Equal(t, 17, res.TotalVRAM)
	assert.Nil(t, res.Gradients)
	assert.Nil(t, res.Optimizer)
	assert.Equal(t, []string{"RTX 3090 (24GB)", "RTX 4090 (24GB)", "V100 32GB (32GB)"}, res.RecommendedGPUs)
	assert.Equal(t, 17, int(math.Ceil(d.BaseMemory*1.2)))
}

func TestEstimateTable(t *testing.T) {
	ptr := func(f float64) *float64 { return &f }

	tests := []struct {
		name string
		cfg  models.Configuration
		want models.EstimationResult
	}{
		{
			name: "7B fp32 inference",
			cfg:  config(7, 2048, 1, models.PrecisionFP32, models.TaskInference),
			want: models.EstimationResult{
				ModelWeights: 26.08, Activations: 1.54, KVCache: 0.37, FrameworkOverhead: 5.6, TotalVRAM: 34,
				RecommendedGPUs: []string{"A100 40GB (40GB)", "A6000 (48GB)", "A100 80GB (80GB)"},
			},
		},
		{
			name: "7B int8 inference",
			cfg:  config(7, 2048, 1, models.PrecisionINT8, models.TaskInference),
			want: models.EstimationResult{
				ModelWeights: 6.52, Activations: 0.38, KVCache: 0.09, FrameworkOverhead: 1.4, TotalVRAM: 9,
				RecommendedGPUs: []string{"RTX 3080 (10GB)", "RTX 3060 (12GB)", "RTX 4070 (12GB)"},
			},
		},
		{
			name: "7B int4 inference",
			cfg:  config(7, 2048, 1, models.PrecisionINT4, models.TaskInference),
			want: models.EstimationResult{
				ModelWeights: 3.26, Activations: 0.19, KVCache: 0.05, FrameworkOverhead: 0.7, TotalVRAM: 5,
				RecommendedGPUs: []string{"RTX 3070 (8GB)", "RTX 3080 (10GB)", "RTX 3060 (12GB)"},
			},
		},
		{
			name: "7B fp16 training",
			cfg:  config(7, 2048, 1, models.PrecisionFP16, models.TaskTraining),
			want: models.EstimationResult{
				ModelWeights: 13.04, Activations: 0.77, KVCache: 0.18,
				Gradients: ptr(13.04), Optimizer: ptr(26.08),
				FrameworkOverhead: 10.62, TotalVRAM: 64,
				RecommendedGPUs: []string{"A100 80GB (80GB)", "H100 (80GB)"},
			},
		},
		{
			name: "13B fp16 long context",
			cfg:  config(13, 4096, 1, models.PrecisionFP16, models.TaskInference),
			want: models.EstimationResult{
				ModelWeights: 24.21, Activations: 2.13, KVCache: 0.5, FrameworkOverhead: 5.37, TotalVRAM: 33,
				RecommendedGPUs: []string{"A100 40GB (40GB)", "A6000 (48GB)", "A100 80GB (80GB)"},
			},
		},
		{
			name: "7B fp16 batch 4",
			cfg:  config(7, 4096, 4, models.PrecisionFP16, models.TaskInference),
			want: models.EstimationResult{
				ModelWeights: 13.04, Activations: 6.4, KVCache: 1.47, FrameworkOverhead: 4.18, TotalVRAM: 26,
				RecommendedGPUs: []string{"V100 32GB (32GB)", "A100 40GB (40GB)", "A6000 (48GB)"},
			},
		},
		{
			name: "small model rounds kv cache to zero but keeps it",
			cfg:  config(0.5, 512, 1, models.PrecisionINT4, models.TaskInference),
			want: models.EstimationResult{
				ModelWeights: 0.23, Activations: 0.01, KVCache: 0, FrameworkOverhead: 0.05, TotalVRAM: 1,
				RecommendedGPUs: []string{"RTX 3070 (8GB)", "RTX 3080 (10GB)", "RTX 3060 (12GB)"},
			},
		},
		{
			name: "70B training needs multiple cards",
			cfg:  config(70, 4096, 8, models.PrecisionFP16, models.TaskTraining),
			want: models.EstimationResult{
				ModelWeights: 130.39, Activations: 38.29, KVCache: 9.32,
				Gradients: ptr(130.39), Optimizer: ptr(260.77),
				FrameworkOverhead: 113.83, TotalVRAM: 683,
				RecommendedGPUs: []string{"9x A100 80GB (80GB each)"},
			},
		},
		{
			name: "176B inference needs multiple cards",
			cfg:  config(176, 2048, 1, models.PrecisionFP16, models.TaskInference),
			want: models.EstimationResult{
				ModelWeights: 327.83, Activations: 3.73, KVCache: 0.92, FrameworkOverhead: 66.5, TotalVRAM: 399,
				RecommendedGPUs: []string{"5x A100 80GB (80GB each)"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(tt.cfg))
		})
	}
}

func TestEstimateDeterministic(t *testing.T) {
	cfg := config(13, 4096, 2, models.PrecisionINT8, models.TaskTraining)
	first := Estimate(cfg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Estimate(cfg))
	}
}

func TestEstimateConcurrentCallers(t *testing.T) {
	cfg := config(7, 2048, 1, models.PrecisionFP16, models.TaskInference)
	want := Estimate(cfg)

	var wg sync.WaitGroup
	results := make([]models.EstimationResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Estimate(cfg)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestPrecisionMonotonicity(t *testing.T) {
	for _, params := range []float64{0.5, 1, 7, 13, 65, 176} {
		for _, task := range []models.Task{models.TaskInference, models.TaskTraining} {
			prev := math.MaxInt
			for _, p := range models.Precisions() {
				total := Estimate(config(params, 2048, 2, p, task)).TotalVRAM
				assert.LessOrEqual(t, total, prev, "params=%v task=%s precision=%s", params, task, p)
				prev = total
			}
		}
	}
}

func TestTrainingNeverBelowInference(t *testing.T) {
	for _, params := range []float64{0.1, 3, 7, 30, 66} {
		for _, p := range models.Precisions() {
			inf := Estimate(config(params, 1024, 1, p, models.TaskInference))
			train := Estimate(config(params, 1024, 1, p, models.TaskTraining))

			assert.GreaterOrEqual(t, train.TotalVRAM, inf.TotalVRAM)
			assert.Nil(t, inf.Gradients)
			assert.Nil(t, inf.Optimizer)
			require.NotNil(t, train.Gradients)
			require.NotNil(t, train.Optimizer)
			assert.Equal(t, train.ModelWeights, *train.Gradients)
		}
	}
}

func TestComponentAdditivity(t *testing.T) {
	for _, cfg := range []models.Configuration{
		config(7, 2048, 1, models.PrecisionFP16, models.TaskInference),
		config(13, 4096, 4, models.PrecisionFP32, models.TaskTraining),
		config(65, 4096, 1, models.PrecisionINT4, models.TaskInference),
	} {
		res := Estimate(cfg)
		sum := res.ModelWeights + res.Activations + res.KVCache
		if res.Gradients != nil {
			sum += *res.Gradients
		}
		if res.Optimizer != nil {
			sum += *res.Optimizer
		}
		// Components are rounded to 2 decimals; allow that much slack per term.
		assert.InDelta(t, float64(res.TotalVRAM), math.Ceil(sum*1.2), 1)
		assert.InDelta(t, sum*0.2, res.FrameworkOverhead, 0.03)

		d := EstimateDetailed(cfg)
		assert.Equal(t, int(math.Ceil(d.BaseMemory+d.FrameworkOverhead)), res.TotalVRAM)
		assert.InDelta(t, d.BaseMemory*overheadFraction, d.FrameworkOverhead, 1e-12)
	}
}

func TestBatchAndSequenceScaling(t *testing.T) {
	prev := Estimate(config(7, 256, 1, models.PrecisionFP16, models.TaskInference))
	for _, batch := range []int{2, 4, 8, 16} {
		cur := Estimate(config(7, 256, batch, models.PrecisionFP16, models.TaskInference))
		assert.GreaterOrEqual(t, cur.Activations, prev.Activations)
		assert.GreaterOrEqual(t, cur.KVCache, prev.KVCache)
		assert.GreaterOrEqual(t, cur.TotalVRAM, prev.TotalVRAM)
		prev = cur
	}

	prev = Estimate(config(7, 128, 1, models.PrecisionFP16, models.TaskTraining))
	for _, seq := range []int{512, 2048, 8192, 32768} {
		cur := Estimate(config(7, seq, 1, models.PrecisionFP16, models.TaskTraining))
		assert.GreaterOrEqual(t, cur.Activations, prev.Activations)
		assert.GreaterOrEqual(t, cur.KVCache, prev.KVCache)
		assert.GreaterOrEqual(t, cur.TotalVRAM, prev.TotalVRAM)
		prev = cur
	}
}

func TestRecommendationsFit(t *testing.T) {
	capacity := map[string]int{}
	for _, gpu := range catalog.GPUs() {
		capacity[gpu.String()] = gpu.VRAM
	}

	for _, params := range []float64{1, 7, 13, 30, 65, 176} {
		res := Estimate(config(params, 4096, 1, models.PrecisionFP16, models.TaskTraining))
		require.NotEmpty(t, res.RecommendedGPUs)
		assert.LessOrEqual(t, len(res.RecommendedGPUs), 3)

		if vram, ok := capacity[res.RecommendedGPUs[0]]; ok {
			for _, name := range res.RecommendedGPUs {
				assert.GreaterOrEqual(t, capacity[name], res.TotalVRAM, name)
			}
			assert.LessOrEqual(t, vram, capacity[res.RecommendedGPUs[len(res.RecommendedGPUs)-1]])
			continue
		}

		require.Len(t, res.RecommendedGPUs, 1)
		cards := CardsNeeded(res.TotalVRAM, 80)
		assert.Contains(t, res.RecommendedGPUs[0], "x A100 80GB (80GB each)")
		assert.GreaterOrEqual(t, cards*80, res.TotalVRAM)
		assert.Less(t, (cards-1)*80, res.TotalVRAM)
	}
}

func TestFitsSingleGPU(t *testing.T) {
	assert.True(t, FitsSingleGPU(17, catalog.GPUs()))
	assert.True(t, FitsSingleGPU(80, catalog.GPUs()))
	assert.False(t, FitsSingleGPU(81, catalog.GPUs()))
	assert.False(t, FitsSingleGPU(1, nil))
}

func TestEstimatorCustomCatalog(t *testing.T) {
	e := New([]models.GPU{{Name: "Tiny", VRAM: 4}, {Name: "Small", VRAM: 6}, {Name: "Other", VRAM: 6}})
	res := e.Estimate(config(7, 2048, 1, models.PrecisionFP16, models.TaskInference))
	assert.Equal(t, []string{"3x Small (6GB each)"}, res.RecommendedGPUs)

	res = e.Estimate(config(7, 2048, 1, models.PrecisionINT4, models.TaskInference))
	assert.Equal(t, []string{"Small (6GB)", "Other (6GB)"}, res.RecommendedGPUs)

	assert.Len(t, New(nil).GPUs(), len(catalog.GPUs()))
}

func TestSafeEstimate(t *testing.T) {
	_, err := SafeEstimate(config(0, 2048, 1, models.PrecisionFP16, models.TaskInference))
	assert.ErrorIs(t, err, models.ErrInvalidParameterCount)

	_, err = SafeEstimate(config(7, 2048, 1, "fp8", models.TaskInference))
	assert.ErrorIs(t, err, models.ErrInvalidPrecision)

	res, err := SafeEstimate(config(7, 2048, 1, models.PrecisionFP16, models.TaskInference))
	require.NoError(t, err)
	assert.Equal(t, 17, res.TotalVRAM)
}

func TestDeriveArchitectureGuardsZero(t *testing.T) {
	h, l := deriveArchitecture(0)
	assert.Zero(t, h)
	assert.Zero(t, l)

	h, l = deriveArchitecture(7e9)
	assert.InDelta(t, math.Sqrt(7e9/12), h, 1e-9)
	assert.InDelta(t, 1, l, 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.13, round2(0.125))
	assert.Equal(t, 0.38, round2(0.375))
	assert.Equal(t, 2.67, round2(2.675))
	assert.Equal(t, 1.0, round2(1.005))
	assert.Equal(t, 13.04, round2(14e9/bytesPerGiB))
	assert.Equal(t, 0.0, round2(0.004))
}
