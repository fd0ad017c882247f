package models

import (
	"fmt"
	"time"
)

// GPU represents a single GPU device and its memory capacity
type GPU struct {
	Name string `json:"name"`
	VRAM int    `json:"vram"` // GB
}

// String formats the device the way recommendations list it
func (g GPU) String() string {
	return fmt.Sprintf("%s (%dGB)", g.Name, g.VRAM)
}

// Provider represents a cloud provider
type Provider string

const (
	ProviderAWS Provider = "aws"
)

// GPUInstance represents a cloud instance type with attached GPUs
type GPUInstance struct {
	Provider        Provider  `json:"provider"`
	InstanceType    string    `json:"instance_type"` // "p4d.24xlarge", "g5.xlarge"
	Region          string    `json:"region"`
	GPUType         string    `json:"gpu_type"` // "A100", "A10G"
	GPUsPerInstance int       `json:"gpus_per_instance"`
	TotalGPUMemory  int       `json:"total_gpu_memory_gb"` // GiB across all GPUs
	PricePerHour    *float64  `json:"price_per_hour,omitempty"`
	LastUpdated     time.Time `json:"last_updated"`
}

// MemoryPerGPU returns the memory of one GPU on the instance in GiB
func (i GPUInstance) MemoryPerGPU() int {
	if i.GPUsPerInstance == 0 {
		return 0
	}
	return i.TotalGPUMemory / i.GPUsPerInstance
}
