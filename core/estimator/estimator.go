// Package estimator implements the closed-form VRAM model: it maps a model configuration to a
// memory breakdown and a GPU recommendation. Everything here is pure and safe for concurrent use.
package estimator

import (
	"math"

	"vram-calculator/core/catalog"
	"vram-calculator/core/models"
)

const (
	bytesPerGiB = 1024 * 1024 * 1024

	// overheadFraction is the framework/allocator buffer added on top of the modelled memory
	overheadFraction = 0.2
)

// Detail holds the unrounded intermediate terms behind an EstimationResult
type Detail struct {
	Result models.EstimationResult

	TotalParameters float64
	HiddenSize      float64
	NumLayers       float64
	BytesPerValue   float64

	// Byte quantities, before conversion to GiB
	ModelWeightsBytes           float64
	AttentionActivationsBytes   float64
	FeedforwardActivationsBytes float64
	KVCacheBytes                float64

	// GiB quantities, before display rounding
	BaseMemory        float64
	FrameworkOverhead float64
	Total             float64
}

// Estimator estimates VRAM against a read-only GPU catalog
type Estimator struct {
	gpus []models.GPU
}

// New creates an estimator recommending from the given catalog.
// A nil or empty catalog falls back to the built-in device list.
func New(gpus []models.GPU) *Estimator {
	if len(gpus) == 0 {
		gpus = catalog.GPUs()
	} else {
		gpus = append([]models.GPU(nil), gpus...)
	}
	return &Estimator{gpus: gpus}
}

var defaultEstimator = New(nil)

// Estimate computes the memory breakdown for cfg with the built-in GPU catalog.
// cfg must satisfy Configuration.Validate; the result is undefined otherwise.
func Estimate(cfg models.Configuration) models.EstimationResult {
	return defaultEstimator.Estimate(cfg)
}

// EstimateDetailed is Estimate plus the intermediate terms, for explanation views
func EstimateDetailed(cfg models.Configuration) Detail {
	return defaultEstimator.EstimateDetailed(cfg)
}

// SafeEstimate validates cfg before estimating and reports non-finite results
func SafeEstimate(cfg models.Configuration) (models.EstimationResult, error) {
	return defaultEstimator.SafeEstimate(cfg)
}

// Estimate computes the memory breakdown for cfg
func (e *Estimator) Estimate(cfg models.Configuration) models.EstimationResult {
	return e.EstimateDetailed(cfg).Result
}

// SafeEstimate validates cfg before estimating and reports non-finite results
func (e *Estimator) SafeEstimate(cfg models.Configuration) (models.EstimationResult, error) {
	if err := cfg.Validate(); err != nil {
		return models.EstimationResult{}, err
	}

	d := e.EstimateDetailed(cfg)
	for _, v := range []float64{d.HiddenSize, d.NumLayers, d.BaseMemory, d.Total} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.EstimationResult{}, models.ErrCalculationFailure
		}
	}
	return d.Result, nil
}

// EstimateDetailed computes the memory breakdown for cfg along with its intermediate terms
func (e *Estimator) EstimateDetailed(cfg models.Configuration) Detail {
	b := cfg.Precision.Bytes()
	batch := float64(cfg.BatchSize)
	seq := float64(cfg.SequenceLength)

	d := Detail{
		TotalParameters: cfg.Parameters * 1e9,
		BytesPerValue:   b,
	}
	d.HiddenSize, d.NumLayers = deriveArchitecture(d.TotalParameters)

	d.ModelWeightsBytes = d.TotalParameters * b
	d.AttentionActivationsBytes = batch * seq * seq * d.NumLayers * 4 * b
	d.FeedforwardActivationsBytes = batch * seq * d.HiddenSize * d.NumLayers * 8 * b
	d.KVCacheBytes = 2 * batch * seq * d.NumLayers * d.HiddenSize * b

	modelWeights := d.ModelWeightsBytes / bytesPerGiB
	activations := (d.AttentionActivationsBytes + d.FeedforwardActivationsBytes) / bytesPerGiB
	kvCache := d.KVCacheBytes / bytesPerGiB

	var gradients, optimizer float64
	if cfg.Task == models.TaskTraining {
		gradients = modelWeights
		// Adam keeps two moment estimates per parameter
		optimizer = modelWeights * 2
	}

	d.BaseMemory = modelWeights + activations + kvCache + gradients + optimizer
	d.FrameworkOverhead = d.BaseMemory * overheadFraction
	d.Total = d.BaseMemory + d.FrameworkOverhead
	totalVRAM := int(math.Ceil(d.Total))

	d.Result = models.EstimationResult{
		ModelWeights:      round2(modelWeights),
		Activations:       round2(activations),
		KVCache:           round2(kvCache),
		FrameworkOverhead: round2(d.FrameworkOverhead),
		TotalVRAM:         totalVRAM,
		RecommendedGPUs:   Recommend(totalVRAM, e.gpus),
	}
	if gradients > 0 {
		g := round2(gradients)
		d.Result.Gradients = &g
	}
	if optimizer > 0 {
		o := round2(optimizer)
		d.Result.Optimizer = &o
	}

	return d
}

// GPUs returns a copy of the catalog the estimator recommends from
func (e *Estimator) GPUs() []models.GPU {
	return append([]models.GPU(nil), e.gpus...)
}
