package noise

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/nvr-ai/go-mrf/grid"
)

func flat(t *testing.T, v int32, shape ...int) *grid.Grid {
	t.Helper()
	g, err := grid.Fill(v, shape...)
	require.NoError(t, err)
	return g
}

func assertInRange(t *testing.T, g *grid.Grid) {
	t.Helper()
	for _, v := range g.Pix() {
		require.GreaterOrEqual(t, v, int32(0))
		require.LessOrEqual(t, v, int32(255))
	}
}

func TestGaussianStatistics(t *testing.T) {
	clean := flat(t, 128, 64, 64)
	noisy, err := Gaussian(clean, 0, 10, rand.NewSource(1))
	require.NoError(t, err)
	assertInRange(t, noisy)
	assert.Equal(t, clean.Shape(), noisy.Shape())

	diff := make([]float64, noisy.Len())
	for i, v := range noisy.Pix() {
		diff[i] = float64(v - 128)
	}
	mean, sd := stat.MeanStdDev(diff, nil)
	// Truncation toward zero pulls the mean down by about half a level.
	assert.InDelta(t, -0.5, mean, 0.5)
	assert.InDelta(t, 10, sd, 1)
	assert.Equal(t, int32(128), clean.Pix()[0], "input is left untouched")
}

func TestGaussianClips(t *testing.T) {
	noisy, err := Gaussian(flat(t, 250, 16, 16, 3), 0, 100, rand.NewSource(2))
	require.NoError(t, err)
	assertInRange(t, noisy)
}

func TestGaussianReproducible(t *testing.T) {
	clean := flat(t, 100, 8, 8)
	a, err := Gaussian(clean, 0, 20, rand.NewSource(9))
	require.NoError(t, err)
	b, err := Gaussian(clean, 0, 20, rand.NewSource(9))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestPoissonShiftsByAmount(t *testing.T) {
	clean := flat(t, 100, 64, 64)
	noisy, err := Poisson(clean, 20, rand.NewSource(3))
	require.NoError(t, err)

	diff := make([]float64, noisy.Len())
	for i, v := range noisy.Pix() {
		diff[i] = float64(v - 100)
	}
	mean, sd := stat.MeanStdDev(diff, nil)
	assert.InDelta(t, 20, mean, 1.5)
	assert.InDelta(t, 20, sd, 2)

	same, err := Poisson(clean, 0, rand.NewSource(3))
	require.NoError(t, err)
	assert.True(t, clean.Equal(same))
}

func TestUniformSharedAcrossChannels(t *testing.T) {
	clean := flat(t, 128, 20, 20, 3)
	noisy, err := Uniform(clean, 10, rand.NewSource(4))
	require.NoError(t, err)

	for r := 0; r < 20; r++ {
		for c := 0; c < 20; c++ {
			v := noisy.At(r, c, 0)
			assert.Equal(t, v, noisy.At(r, c, 1))
			assert.Equal(t, v, noisy.At(r, c, 2))
			assert.LessOrEqual(t, math.Abs(float64(v-128)), 10.0)
		}
	}

	same, err := Uniform(clean, 0, rand.NewSource(4))
	require.NoError(t, err)
	assert.True(t, clean.Equal(same))
}

func TestSaltPepper(t *testing.T) {
	clean := flat(t, 128, 50, 50, 3)

	testCases := []struct {
		name     string
		fraction float64
		pepper   float64
		check    func(t *testing.T, noisy *grid.Grid)
	}{
		{
			name: "none", fraction: 0, pepper: 0.5,
			check: func(t *testing.T, noisy *grid.Grid) { assert.True(t, clean.Equal(noisy)) },
		},
		{
			name: "all_pepper", fraction: 1, pepper: 1,
			check: func(t *testing.T, noisy *grid.Grid) {
				for _, v := range noisy.Pix() {
					require.Equal(t, Pepper, v)
				}
			},
		},
		{
			name: "all_salt", fraction: 1, pepper: 0,
			check: func(t *testing.T, noisy *grid.Grid) {
				for _, v := range noisy.Pix() {
					require.Equal(t, Salt, v)
				}
			},
		},
		{
			name: "mixed", fraction: 0.2, pepper: 0.5,
			check: func(t *testing.T, noisy *grid.Grid) {
				var corrupted int
				for r := 0; r < 50; r++ {
					for c := 0; c < 50; c++ {
						v := noisy.At(r, c, 0)
						require.Equal(t, v, noisy.At(r, c, 1))
						require.Equal(t, v, noisy.At(r, c, 2))
						if v != 128 {
							require.Contains(t, []int32{Pepper, Salt}, v)
							corrupted++
						}
					}
				}
				assert.InDelta(t, 500, corrupted, 100)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			noisy, err := SaltPepper(clean, tc.fraction, tc.pepper, rand.NewSource(5))
			require.NoError(t, err)
			tc.check(t, noisy)
		})
	}
}

func TestInvalidParameters(t *testing.T) {
	g := flat(t, 0, 2, 2)
	src := rand.NewSource(1)

	_, err := SaltPepper(g, 1.5, 0.5, src)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
	_, err = SaltPepper(g, 0.5, -0.1, src)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
	_, err = SaltPepper(g, math.NaN(), 0.5, src)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
	_, err = Gaussian(g, 0, -1, src)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
	_, err = Uniform(g, -1, src)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
	_, err = Poisson(g, -1, src)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
	_, err = Gaussian(nil, 0, 1, src)
	assert.True(t, errors.Is(err, grid.ErrInvalidImageShape))
}

func TestNilSourceRejected(t *testing.T) {
	g := flat(t, 100, 2, 2)

	_, err := Gaussian(g, 0, 20, nil)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
	_, err = Poisson(g, 5, nil)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
	_, err = Uniform(g, 5, nil)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
	_, err = SaltPepper(g, 0.5, 0.5, nil)
	assert.True(t, errors.Is(err, ErrInvalidNoiseParameter))
}
