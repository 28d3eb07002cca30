package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Mode selects the restoration engine under test.
type Mode string

// Mode constants
const (
	ModeDenoise Mode = "denoise"
	ModeInpaint Mode = "inpaint"
)

// Resolution represents image dimensions for benchmarking
type Resolution struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
}

// CommonResolutions are the sizes swept by the predefined scenario sets.
var CommonResolutions = []Resolution{
	{Width: 64, Height: 64, Name: "64x64"},
	{Width: 128, Height: 128, Name: "128x128"},
	{Width: 256, Height: 256, Name: "256x256"},
	{Width: 320, Height: 240, Name: "320x240"},
}

// Scenario defines a specific benchmark configuration.
type Scenario struct {
	Name       string     `json:"name"`
	Mode       Mode       `json:"mode"`
	Resolution Resolution `json:"resolution"`
	Channels   int        `json:"channels"`
	Bit        int        `json:"bit"`
	Iterations int        `json:"iterations"`
	Workers    int        `json:"workers"`
	Lambda     float64    `json:"lambda"`
	Cutoff     float64    `json:"cutoff"`
	// NoiseSD is the Gaussian corruption applied before denoising.
	NoiseSD float64 `json:"noise_sd"`
	// MaskFraction is the share of pixels removed before inpainting.
	MaskFraction float64 `json:"mask_fraction"`
	Seed         uint64  `json:"seed"`
	WarmupRuns   int     `json:"warmup_runs"`
}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a new scenario builder with a 64x64 grayscale
// denoising run of three sweeps.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:         name,
			Mode:         ModeDenoise,
			Resolution:   CommonResolutions[0],
			Channels:     1,
			Bit:          8,
			Iterations:   3,
			Lambda:       1,
			Cutoff:       2000,
			NoiseSD:      20,
			MaskFraction: 0.1,
			Seed:         1,
		},
	}
}

// WithMode sets the engine under test
func (sb *ScenarioBuilder) WithMode(mode Mode) *ScenarioBuilder {
	sb.scenario.Mode = mode
	return sb
}

// WithResolution sets the image resolution
func (sb *ScenarioBuilder) WithResolution(width, height int) *ScenarioBuilder {
	sb.scenario.Resolution = Resolution{
		Width:  width,
		Height: height,
		Name:   fmt.Sprintf("%dx%d", width, height),
	}
	return sb
}

// WithChannels sets grayscale (1) or colour (3) images
func (sb *ScenarioBuilder) WithChannels(channels int) *ScenarioBuilder {
	sb.scenario.Channels = channels
	return sb
}

// WithBit sets the colour depth of the level set
func (sb *ScenarioBuilder) WithBit(bit int) *ScenarioBuilder {
	sb.scenario.Bit = bit
	return sb
}

// WithIterations sets the number of sweeps
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWorkers sets sweep parallelism
func (sb *ScenarioBuilder) WithWorkers(workers int) *ScenarioBuilder {
	sb.scenario.Workers = workers
	return sb
}

// WithWeights sets lambda and cutoff
func (sb *ScenarioBuilder) WithWeights(lambda, cutoff float64) *ScenarioBuilder {
	sb.scenario.Lambda = lambda
	sb.scenario.Cutoff = cutoff
	return sb
}

// WithNoise sets the Gaussian noise deviation
func (sb *ScenarioBuilder) WithNoise(sd float64) *ScenarioBuilder {
	sb.scenario.NoiseSD = sd
	return sb
}

// WithMaskFraction sets the share of missing pixels
func (sb *ScenarioBuilder) WithMaskFraction(fraction float64) *ScenarioBuilder {
	sb.scenario.MaskFraction = fraction
	return sb
}

// WithSeed sets the seed for noise, masks and inpainting priors
func (sb *ScenarioBuilder) WithSeed(seed uint64) *ScenarioBuilder {
	sb.scenario.Seed = seed
	return sb
}

// WithWarmupRuns sets the number of warmup runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

// QuickScenarios returns one small denoising and one small inpainting scenario.
func QuickScenarios() *ScenarioSet {
	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Small grayscale denoise and inpaint runs",
		Scenarios: []Scenario{
			NewScenarioBuilder("denoise_64x64_gray").Build(),
			NewScenarioBuilder("inpaint_64x64_gray").WithMode(ModeInpaint).Build(),
		},
	}
}

// ComprehensiveScenarios sweeps both modes over the common resolutions, both
// channel counts and a range of worker counts.
func ComprehensiveScenarios(workers []int) *ScenarioSet {
	if len(workers) == 0 {
		workers = []int{1, 0}
	}

	scenarios := make([]Scenario, 0)
	for _, mode := range []Mode{ModeDenoise, ModeInpaint} {
		for _, res := range CommonResolutions {
			for _, channels := range []int{1, 3} {
				for _, w := range workers {
					scenario := NewScenarioBuilder(fmt.Sprintf("%s_%s_c%d_w%d", mode, res.Name, channels, w)).
						WithMode(mode).
						WithResolution(res.Width, res.Height).
						WithChannels(channels).
						WithWorkers(w).
						WithWarmupRuns(1).
						Build()
					scenarios = append(scenarios, scenario)
				}
			}
		}
	}

	return &ScenarioSet{
		Name:        "Comprehensive Performance Test",
		Description: "Tests all combinations of modes, resolutions, channels and worker counts",
		Scenarios:   scenarios,
	}
}

// SaveScenarioSet writes a scenario set as indented JSON.
func SaveScenarioSet(set *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario set")
	}
	return nil
}

// LoadScenarioSet reads a scenario set written by SaveScenarioSet.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario set")
	}
	var set ScenarioSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, errors.Wrap(err, "failed to parse scenario set")
	}
	return &set, nil
}
