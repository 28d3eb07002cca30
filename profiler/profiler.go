// Package profiler - Runtime profiling for restoration runs: sweep timings,
// custom metrics and periodic memory samples.
package profiler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// RuntimeProfiler tracks operation timings, custom metrics and memory usage.
//
// It is safe for concurrent use. Timings and metrics can be recorded without
// calling Start; Start only adds background memory sampling and periodic reports.
type RuntimeProfiler struct {
	// Configuration
	reportInterval time.Duration
	sampleInterval time.Duration
	maxSamples     int
	logger         *slog.Logger

	// State management
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	startTime time.Time
	running   bool

	// System metrics
	memStats    runtime.MemStats
	peakHeap    uint64
	memSamples  int
	lastGCCount uint32

	customMetrics  map[string]*MetricTracker
	operationTimes map[string]*TimeTracker
}

// MetricTracker tracks statistics for a custom metric over a sliding window.
type MetricTracker struct {
	values []float64
	sum    float64
	min    float64
	max    float64
	count  int64
}

// TimeTracker tracks operation timing statistics over a sliding window.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	lifetime  time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// ProfilingOptions configures the runtime profiler.
type ProfilingOptions struct {
	// ReportInterval specifies how often to emit status reports (default: 2s).
	// Reports are only emitted between Start and Stop.
	ReportInterval time.Duration `json:"report_interval" yaml:"report_interval"`
	// SampleInterval specifies how often to sample memory (default: 100ms).
	SampleInterval time.Duration `json:"sample_interval" yaml:"sample_interval"`
	// MaxSamples bounds the sliding window of each tracker (default: 600).
	MaxSamples int `json:"max_samples" yaml:"max_samples"`
	// Logger receives status reports (default: slog.Default()).
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// NewRuntimeProfiler creates a new runtime profiler with the specified options.
//
// Arguments:
// - opts: Configuration options for the profiler; zero fields take defaults.
//
// Returns:
// - A configured RuntimeProfiler instance.
func NewRuntimeProfiler(opts ProfilingOptions) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.SampleInterval == 0 {
		opts.SampleInterval = 100 * time.Millisecond
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 600
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		sampleInterval: opts.SampleInterval,
		maxSamples:     opts.MaxSamples,
		logger:         opts.Logger,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		customMetrics:  make(map[string]*MetricTracker),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// Start begins background memory sampling and periodic reporting. Calling Start
// on a running profiler does nothing.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running {
		return
	}
	rp.running = true
	rp.startTime = time.Now()

	rp.wg.Add(2)
	go rp.sampleLoop()
	go func() {
		defer rp.wg.Done()

		ticker := time.NewTicker(rp.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-rp.ctx.Done():
				return
			case <-ticker.C:
				rp.EmitStatusReport()
			}
		}
	}()
}

// Stop halts background work and waits for it to finish. A stopped profiler can
// not be restarted.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

// RecordMetric records a custom metric value.
//
// Arguments:
// - name: The name of the metric.
// - value: The metric value to record.
func (rp *RuntimeProfiler) RecordMetric(name string, value float64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.customMetrics[name]
	if !exists {
		tracker = &MetricTracker{
			values: make([]float64, 0, rp.maxSamples),
			min:    value,
			max:    value,
		}
		rp.customMetrics[name] = tracker
	}

	tracker.values = append(tracker.values, value)
	if len(tracker.values) > rp.maxSamples {
		tracker.sum -= tracker.values[0]
		tracker.values = tracker.values[1:]
	}

	tracker.sum += value
	tracker.count++
	tracker.min = min(tracker.min, value)
	tracker.max = max(tracker.max, value)
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track.
//
// Returns:
// - A function to call when the operation completes.
//
// @example
// defer prof.StartOperation("denoise_sweep")()
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.recordOperationTime(name, time.Since(start))
	}
}

func (rp *RuntimeProfiler) recordOperationTime(name string, duration time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			minTime: duration,
			maxTime: duration,
		}
		rp.operationTimes[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > rp.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.lifetime += duration
	tracker.count++
	tracker.minTime = min(tracker.minTime, duration)
	tracker.maxTime = max(tracker.maxTime, duration)
}

// sampleLoop periodically reads memory statistics until Stop.
func (rp *RuntimeProfiler) sampleLoop() {
	defer rp.wg.Done()

	ticker := time.NewTicker(rp.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rp.ctx.Done():
			return
		case <-ticker.C:
			rp.sampleMemory()
		}
	}
}

func (rp *RuntimeProfiler) sampleMemory() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	runtime.ReadMemStats(&rp.memStats)
	rp.peakHeap = max(rp.peakHeap, rp.memStats.HeapAlloc)
	rp.memSamples++
}

// OperationStats summarises one timed operation. Count, Min, Max and Total
// cover every call; Avg covers the sliding window.
type OperationStats struct {
	Count int64         `json:"count"`
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Total time.Duration `json:"total"`
}

// MetricStats summarises one custom metric.
type MetricStats struct {
	Count int64   `json:"count"`
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Last  float64 `json:"last"`
}

// Report is a point-in-time snapshot of everything the profiler tracks.
type Report struct {
	Uptime        time.Duration             `json:"uptime"`
	Goroutines    int                       `json:"goroutines"`
	HeapAlloc     uint64                    `json:"heap_alloc"`
	PeakHeapAlloc uint64                    `json:"peak_heap_alloc"`
	TotalAlloc    uint64                    `json:"total_alloc"`
	NumGC         uint32                    `json:"num_gc"`
	MemorySamples int                       `json:"memory_samples"`
	Operations    map[string]OperationStats `json:"operations"`
	Metrics       map[string]MetricStats    `json:"metrics"`
}

// Report returns the current statistics. Counts cover every recorded value; the
// averages cover the sliding window.
func (rp *RuntimeProfiler) Report() Report {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	runtime.ReadMemStats(&rp.memStats)
	rp.peakHeap = max(rp.peakHeap, rp.memStats.HeapAlloc)

	report := Report{
		Uptime:        time.Since(rp.startTime),
		Goroutines:    runtime.NumGoroutine(),
		HeapAlloc:     rp.memStats.HeapAlloc,
		PeakHeapAlloc: rp.peakHeap,
		TotalAlloc:    rp.memStats.TotalAlloc,
		NumGC:         rp.memStats.NumGC,
		MemorySamples: rp.memSamples,
		Operations:    make(map[string]OperationStats, len(rp.operationTimes)),
		Metrics:       make(map[string]MetricStats, len(rp.customMetrics)),
	}

	for name, tracker := range rp.operationTimes {
		stats := OperationStats{
			Count: tracker.count,
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
			Total: tracker.lifetime,
		}
		if n := len(tracker.durations); n > 0 {
			stats.Avg = tracker.totalTime / time.Duration(n)
		}
		report.Operations[name] = stats
	}

	for name, tracker := range rp.customMetrics {
		stats := MetricStats{
			Count: tracker.count,
			Min:   tracker.min,
			Max:   tracker.max,
		}
		if n := len(tracker.values); n > 0 {
			stats.Avg = tracker.sum / float64(n)
			stats.Last = tracker.values[n-1]
		}
		report.Metrics[name] = stats
	}

	return report
}

// EmitStatusReport logs the current report at info level.
func (rp *RuntimeProfiler) EmitStatusReport() {
	report := rp.Report()

	rp.logger.Info("runtime profile",
		slog.Duration("uptime", report.Uptime.Truncate(time.Millisecond)),
		slog.Int("goroutines", report.Goroutines),
		slog.String("heap_alloc", FormatBytes(report.HeapAlloc)),
		slog.String("peak_heap_alloc", FormatBytes(report.PeakHeapAlloc)),
		slog.Uint64("num_gc", uint64(report.NumGC)))

	for name, op := range report.Operations {
		rp.logger.Info("operation timing",
			slog.String("operation", name),
			slog.Int64("count", op.Count),
			slog.Duration("avg", op.Avg.Truncate(time.Microsecond)),
			slog.Duration("min", op.Min.Truncate(time.Microsecond)),
			slog.Duration("max", op.Max.Truncate(time.Microsecond)))
	}
	for name, m := range report.Metrics {
		rp.logger.Info("metric",
			slog.String("metric", name),
			slog.Int64("count", m.Count),
			slog.Float64("avg", m.Avg),
			slog.Float64("min", m.Min),
			slog.Float64("max", m.Max),
			slog.Float64("last", m.Last))
	}
}

// FormatBytes formats byte counts in human-readable form.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
