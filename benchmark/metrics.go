// Package benchmark - Functionality for benchmarking restoration sweeps.
package benchmark

import "time"

// PerformanceMetrics captures detailed performance data for one scenario.
type PerformanceMetrics struct {
	Scenario        Scenario      `json:"scenario"`
	Timestamp       time.Time     `json:"timestamp"`
	TotalDuration   time.Duration `json:"total_duration"`
	SetupDuration   time.Duration `json:"setup_duration"`
	SweepDuration   time.Duration `json:"sweep_duration"`
	SweepsPerSecond float64       `json:"sweeps_per_second"`
	PixelsPerSecond float64       `json:"pixels_per_second"`
	PSNRBefore      float64       `json:"psnr_before"`
	PSNRAfter       float64       `json:"psnr_after"`
	// PSNRBaseline scores a 3x3 box blur of the corrupted input.
	PSNRBaseline    float64       `json:"psnr_baseline"`
	ChangedPixels   float64       `json:"changed_pixels"`
	Checksum        string        `json:"checksum"`
	MemoryStats     MemoryMetrics `json:"memory_stats"`
	CPUStats        CPUMetrics    `json:"cpu_stats"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	PeakHeapBytes   uint64 `json:"peak_heap_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU     int `json:"num_cpu"`
	GOMAXPROCS int `json:"gomaxprocs"`
	Workers    int `json:"workers"`
}
