package estimator

import (
	"fmt"
	"math"
	"sort"

	"vram-calculator/core/catalog"
	"vram-calculator/core/models"
)

// maxRecommendations caps the single-device suggestions
const maxRecommendations = 3

// Recommend lists up to three devices able to hold totalVRAM, smallest first.
// When no single device fits it returns one multi-device entry built from the
// largest device in the catalog.
func Recommend(totalVRAM int, gpus []models.GPU) []string {
	// Step 1: Filter devices that can hold the whole model
	var candidates []models.GPU
	for _, gpu := range gpus {
		if gpu.VRAM >= totalVRAM {
			candidates = append(candidates, gpu)
		}
	}

	// Step 2: Smallest sufficient device first, catalog order on ties
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].VRAM < candidates[j].VRAM
	})

	// Step 3: Take up to three
	if len(candidates) > maxRecommendations {
		candidates = candidates[:maxRecommendations]
	}
	recommended := make([]string, 0, maxRecommendations)
	for _, gpu := range candidates {
		recommended = append(recommended, gpu.String())
	}

	// Step 4: Fall back to a multi-device setup
	if len(recommended) == 0 {
		largest, ok := catalog.MaxCapacityGPU(gpus)
		if !ok || largest.VRAM <= 0 {
			return recommended
		}
		recommended = append(recommended, fmt.Sprintf("%dx %s (%dGB each)", CardsNeeded(totalVRAM, largest.VRAM), largest.Name, largest.VRAM))
	}

	return recommended
}

// CardsNeeded returns how many devices of the given capacity hold totalVRAM
func CardsNeeded(totalVRAM, capacity int) int {
	return int(math.Ceil(float64(totalVRAM) / float64(capacity)))
}

// FitsSingleGPU reports whether any device in gpus holds totalVRAM on its own
func FitsSingleGPU(totalVRAM int, gpus []models.GPU) bool {
	for _, gpu := range gpus {
		if gpu.VRAM >= totalVRAM {
			return true
		}
	}
	return false
}
