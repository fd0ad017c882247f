package optimizer

import (
	"vram-calculator/core/models"
)

// CostForHours calculates the on-demand cost of running one instance for the given hours.
// ok is false when the instance has no known price.
func CostForHours(instance models.GPUInstance, hours float64) (cost float64, ok bool) {
	if instance.PricePerHour == nil || hours <= 0 {
		return 0, instance.PricePerHour != nil
	}
	return *instance.PricePerHour * hours, true
}

// CostPerGiBHour calculates the hourly price of one GiB of GPU memory on the instance
func CostPerGiBHour(instance models.GPUInstance) (float64, bool) {
	if instance.PricePerHour == nil || instance.TotalGPUMemory == 0 {
		return 0, false
	}
	return *instance.PricePerHour / float64(instance.TotalGPUMemory), true
}
