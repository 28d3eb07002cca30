package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/nvr-ai/go-mrf/grid"
	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/metrics"
	"github.com/nvr-ai/go-mrf/noise"
	"github.com/nvr-ai/go-mrf/profiler"
	"github.com/nvr-ai/go-mrf/restore"
)

// ErrInvalidScenario is returned for scenarios that cannot be run.
var ErrInvalidScenario = errors.New("invalid benchmark scenario")

// MaxPSNR stands in for the infinite PSNR of identical grids so results stay
// JSON encodable.
const MaxPSNR = 100.0

// sceneSize is the edge of the synthetic pattern before resizing.
const sceneSize = 32

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios []Scenario
	outputDir string
	logger    *slog.Logger
	mu        sync.RWMutex
	results   []PerformanceMetrics
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - outputDir: Directory for SaveResults; "" disables saving.
//   - logger: Receives progress records; nil uses slog.Default().
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(outputDir string, logger *slog.Logger) *Suite {
	if logger == nil {
		logger = slog.Default()
	}
	return &Suite{
		outputDir: outputDir,
		logger:    logger,
		scenarios: make([]Scenario, 0),
		results:   make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario of set.
func (bs *Suite) AddScenarioSet(set *ScenarioSet) {
	for _, s := range set.Scenarios {
		bs.AddScenario(s)
	}
}

// RunScenario executes a single benchmark scenario: it renders a synthetic
// scene, corrupts it, restores it and scores the result against the scene.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if err := scenario.validate(); err != nil {
		return nil, err
	}

	setupStart := time.Now()
	clean, err := Scene(scenario.Resolution.Width, scenario.Resolution.Height, scenario.Channels)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render scene")
	}
	input, mask, err := corrupt(clean, scenario)
	if err != nil {
		return nil, errors.Wrap(err, "failed to corrupt scene")
	}
	setupDuration := time.Since(setupStart)

	opts := restore.DefaultOptions()
	opts.Lambda = scenario.Lambda
	opts.Cutoff = scenario.Cutoff
	opts.Bit = scenario.Bit
	opts.Workers = scenario.Workers
	opts.Seed = scenario.Seed
	opts.Logger = bs.logger

	// Warmup runs
	warm := opts
	warm.Iterations = 1
	for i := 0; i < scenario.WarmupRuns; i++ {
		if _, err := restoreWith(ctx, scenario.Mode, input, mask, warm); err != nil {
			return nil, errors.Wrap(err, "warmup failed")
		}
	}

	prof := profiler.NewRuntimeProfiler(profiler.ProfilingOptions{Logger: bs.logger, ReportInterval: time.Hour})
	opts.Iterations = scenario.Iterations
	opts.Profiler = prof

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	prof.Start()
	startTime := time.Now()
	res, err := restoreWith(ctx, scenario.Mode, input, mask, opts)
	totalDuration := time.Since(startTime)
	prof.Stop()
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s failed", scenario.Name)
	}

	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)
	report := prof.Report()

	before, err := metrics.PSNR(input, clean)
	if err != nil {
		return nil, err
	}
	after, err := metrics.PSNR(res.Final, clean)
	if err != nil {
		return nil, err
	}
	blurred, err := images.BoxBlur(input, 1, grid.BorderReplicate)
	if err != nil {
		return nil, err
	}
	baseline, err := metrics.PSNR(blurred, clean)
	if err != nil {
		return nil, err
	}

	updates := clean.Len()
	if scenario.Mode == ModeInpaint {
		updates = maskedCount(mask) * scenario.Channels
	}

	pm := &PerformanceMetrics{
		Scenario:      scenario,
		Timestamp:     startTime,
		TotalDuration: totalDuration,
		SetupDuration: setupDuration,
		SweepDuration: report.Operations[sweepOperation(scenario.Mode)].Avg,
		PSNRBefore:    math.Min(before, MaxPSNR),
		PSNRAfter:     math.Min(after, MaxPSNR),
		PSNRBaseline:  math.Min(baseline, MaxPSNR),
		ChangedPixels: report.Metrics[changedMetric(scenario.Mode)].Avg,
		Checksum:      images.ComputeChecksum(res.Final),
		MemoryStats: MemoryMetrics{
			AllocBytes:      endMem.Alloc,
			TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
			SysBytes:        endMem.Sys,
			NumGC:           endMem.NumGC - startMem.NumGC,
			HeapAllocBytes:  endMem.HeapAlloc,
			PeakHeapBytes:   report.PeakHeapAlloc,
		},
		CPUStats: CPUMetrics{
			NumCPU:     runtime.NumCPU(),
			GOMAXPROCS: runtime.GOMAXPROCS(0),
			Workers:    scenario.Workers,
		},
	}
	if secs := totalDuration.Seconds(); secs > 0 {
		pm.SweepsPerSecond = float64(scenario.Iterations) / secs
		pm.PixelsPerSecond = float64(updates*scenario.Iterations) / secs
	}

	return pm, nil
}

// RunAllScenarios executes all configured benchmark scenarios. Failing
// scenarios are logged and skipped.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	bs.mu.Lock()
	scenarios := make([]Scenario, len(bs.scenarios))
	copy(scenarios, bs.scenarios)
	bs.mu.Unlock()

	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return err
		}
		pm, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			bs.logger.Error("scenario failed", slog.String("scenario", scenario.Name), slog.Any("error", err))
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *pm)
		bs.mu.Unlock()

		bs.logger.Info("scenario completed",
			slog.String("scenario", scenario.Name),
			slog.Float64("sweeps_per_second", pm.SweepsPerSecond),
			slog.Float64("psnr_before", pm.PSNRBefore),
			slog.Float64("psnr_after", pm.PSNRAfter))
	}

	if bs.outputDir == "" {
		return nil
	}
	return bs.SaveResults()
}

// SaveResults persists benchmark results to the output directory as JSON and a
// CSV summary.
func (bs *Suite) SaveResults() error {
	results := bs.GetResults()

	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))
	if err := SaveJSON(resultsFile, results); err != nil {
		return err
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return errors.Wrap(err, "failed to save summary CSV")
	}

	bs.logger.Info("results saved", slog.String("results", resultsFile), slog.String("summary", summaryFile))
	return nil
}

// GetResults returns all benchmark results
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]PerformanceMetrics, len(bs.results))
	copy(results, bs.results)
	return results
}

// Run executes scenarios in order and returns their metrics, stopping at the
// first failure.
//
// @example
// results, err := benchmark.Run(ctx, benchmark.QuickScenarios().Scenarios)
func Run(ctx context.Context, scenarios []Scenario) ([]PerformanceMetrics, error) {
	bs := NewSuite("", nil)
	results := make([]PerformanceMetrics, 0, len(scenarios))
	for _, s := range scenarios {
		pm, err := bs.RunScenario(ctx, s)
		if err != nil {
			return results, err
		}
		results = append(results, *pm)
	}
	return results, nil
}

// SaveJSON writes results as indented JSON.
func SaveJSON(path string, results []PerformanceMetrics) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write results file")
	}
	return nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	header := "Scenario,Mode,Resolution,Channels,Workers,Sweeps_Per_Second,Sweep_ms,PSNR_Before,PSNR_After,PSNR_Baseline,Total_Alloc_MB\n"
	if _, err := file.WriteString(header); err != nil {
		return err
	}

	for _, result := range results {
		line := fmt.Sprintf("%s,%s,%s,%d,%d,%.2f,%.3f,%.2f,%.2f,%.2f,%.2f\n",
			result.Scenario.Name,
			result.Scenario.Mode,
			result.Scenario.Resolution.Name,
			result.Scenario.Channels,
			result.Scenario.Workers,
			result.SweepsPerSecond,
			float64(result.SweepDuration.Nanoseconds())/1e6,
			result.PSNRBefore,
			result.PSNRAfter,
			result.PSNRBaseline,
			float64(result.MemoryStats.TotalAllocBytes)/(1024*1024),
		)
		if _, err := file.WriteString(line); err != nil {
			return err
		}
	}
	return file.Sync()
}

// Scene renders a smooth synthetic test image of width x height: a diagonal
// gradient with a bright square, upscaled from a small pattern.
func Scene(width, height, channels int) (*grid.Grid, error) {
	shape := []int{sceneSize, sceneSize}
	if channels == 3 {
		shape = append(shape, 3)
	}
	base, err := grid.New(shape...)
	if err != nil {
		return nil, err
	}
	for r := 0; r < sceneSize; r++ {
		for c := 0; c < sceneSize; c++ {
			for ch := 0; ch < channels; ch++ {
				v := int32(40 + 2*(r+c) + 20*ch)
				if r >= 8 && r < 20 && c >= 12 && c < 24 {
					v = 220 - int32(30*ch)
				}
				base.Set(r, c, ch, v)
			}
		}
	}
	return images.Resize(base, width, height)
}

// corrupt prepares the restoration input. Denoising gets Gaussian noise;
// inpainting gets a random mask whose pixels are overwritten with white.
func corrupt(clean *grid.Grid, s Scenario) (input, mask *grid.Grid, err error) {
	src := rand.NewSource(s.Seed)
	if s.Mode == ModeDenoise {
		input, err = noise.Gaussian(clean, 0, s.NoiseSD, src)
		return input, nil, err
	}

	blank, err := grid.New(clean.Rows(), clean.Cols())
	if err != nil {
		return nil, nil, err
	}
	// All-salt noise on a blank grid marks the missing pixels with 255.
	mask, err = noise.SaltPepper(blank, s.MaskFraction, 0, src)
	if err != nil {
		return nil, nil, err
	}

	input = clean.Clone()
	for r := 0; r < clean.Rows(); r++ {
		for c := 0; c < clean.Cols(); c++ {
			if mask.At(r, c, 0) <= grid.MaskThreshold {
				continue
			}
			for ch := 0; ch < clean.Channels(); ch++ {
				input.Set(r, c, ch, noise.Salt)
			}
		}
	}
	return input, mask, nil
}

func restoreWith(ctx context.Context, mode Mode, input, mask *grid.Grid, opts restore.Options) (*restore.Result, error) {
	if mode == ModeInpaint {
		return restore.Inpaint(ctx, input, mask, opts)
	}
	return restore.Denoise(ctx, input, opts)
}

func maskedCount(mask *grid.Grid) int {
	var n int
	for _, v := range mask.Pix() {
		if v > grid.MaskThreshold {
			n++
		}
	}
	return n
}

func sweepOperation(mode Mode) string {
	return string(mode) + "_sweep"
}

func changedMetric(mode Mode) string {
	return string(mode) + "_changed_pixels"
}

func (s Scenario) validate() error {
	switch {
	case s.Mode != ModeDenoise && s.Mode != ModeInpaint:
		return errors.Wrapf(ErrInvalidScenario, "%s: unknown mode %q", s.Name, s.Mode)
	case s.Resolution.Width <= 0 || s.Resolution.Height <= 0:
		return errors.Wrapf(ErrInvalidScenario, "%s: invalid resolution %dx%d", s.Name, s.Resolution.Width, s.Resolution.Height)
	case s.Channels != 1 && s.Channels != 3:
		return errors.Wrapf(ErrInvalidScenario, "%s: channels must be 1 or 3", s.Name)
	case s.Iterations <= 0:
		return errors.Wrapf(ErrInvalidScenario, "%s: iterations must be positive", s.Name)
	case s.WarmupRuns < 0:
		return errors.Wrapf(ErrInvalidScenario, "%s: warmup runs must be >= 0", s.Name)
	}
	return nil
}
