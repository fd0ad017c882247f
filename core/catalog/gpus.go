package catalog

import (
	"vram-calculator/core/models"
)

// gpus is the fixed device catalog in declaration order.
// Recommendation ties on capacity keep this order.
var gpus = []models.GPU{
	{Name: "RTX 3060", VRAM: 12},
	{Name: "RTX 3070", VRAM: 8},
	{Name: "RTX 3080", VRAM: 10},
	{Name: "RTX 3090", VRAM: 24},
	{Name: "RTX 4070", VRAM: 12},
	{Name: "RTX 4080", VRAM: 16},
	{Name: "RTX 4090", VRAM: 24},
	{Name: "A100 40GB", VRAM: 40},
	{Name: "A100 80GB", VRAM: 80},
	{Name: "H100", VRAM: 80},
	{Name: "V100 32GB", VRAM: 32},
	{Name: "A6000", VRAM: 48},
	{Name: "A4000", VRAM: 16},
}

// GPUs returns a copy of the device catalog
func GPUs() []models.GPU {
	out := make([]models.GPU, len(gpus))
	copy(out, gpus)
	return out
}

// MaxCapacityGPU returns the first declared device with the largest capacity.
// ok is false for an empty catalog.
func MaxCapacityGPU(devices []models.GPU) (gpu models.GPU, ok bool) {
	for i, d := range devices {
		if i == 0 || d.VRAM > gpu.VRAM {
			gpu = d
			ok = true
		}
	}
	return gpu, ok
}
