// Package optimizer ranks cloud GPU instances that can hold an estimated workload.
package optimizer

import (
	"sort"

	"vram-calculator/core/models"
)

// RankInstances returns the instances whose combined GPU memory holds totalVRAM GiB,
// cheapest first. Instances without a known price sort after priced ones; ties are broken
// by smaller GPU memory, then by instance type.
func RankInstances(totalVRAM int, instances []models.GPUInstance) []models.GPUInstance {
	// Step 1: Keep instances that fit the workload
	candidates := make([]models.GPUInstance, 0, len(instances))
	for _, instance := range instances {
		if instance.GPUsPerInstance > 0 && instance.TotalGPUMemory >= totalVRAM {
			candidates = append(candidates, instance)
		}
	}

	// Step 2: Cheapest first, unknown prices last
	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := candidates[i].PricePerHour, candidates[j].PricePerHour
		switch {
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		case pi != nil && pj != nil && *pi != *pj:
			return *pi < *pj
		}

		if candidates[i].TotalGPUMemory != candidates[j].TotalGPUMemory {
			return candidates[i].TotalGPUMemory < candidates[j].TotalGPUMemory
		}
		return candidates[i].InstanceType < candidates[j].InstanceType
	})

	return candidates
}
