package estimator

import "math"

// deriveArchitecture estimates hidden size and layer count from the total parameter count.
//
// The relation hiddenSize = sqrt(params/12), numLayers = sqrt(params/(hiddenSize^2*12)) is an
// empirical Transformer-scaling heuristic, not a property of any real checkpoint. It is kept exactly
// so estimates stay comparable with published reference numbers. Note that it always yields a
// layer count of roughly one.
func deriveArchitecture(totalParams float64) (hiddenSize, numLayers float64) {
	hiddenSize = math.Sqrt(totalParams / 12)
	if hiddenSize == 0 || math.IsNaN(hiddenSize) || math.IsInf(hiddenSize, 0) {
		return 0, 0
	}

	numLayers = math.Sqrt(totalParams / (hiddenSize * hiddenSize * 12))
	if math.IsNaN(numLayers) || math.IsInf(numLayers, 0) {
		numLayers = 0
	}

	return hiddenSize, numLayers
}
