package energy

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	testCases := []struct {
		bit int
		n   int
		ok  bool
	}{
		{bit: 0},
		{bit: 1, n: 2, ok: true},
		{bit: 8, n: 256, ok: true},
		{bit: 16, n: 65536, ok: true},
		{bit: 17},
	}

	for _, tc := range testCases {
		levels, err := NewLevels(tc.bit)
		if !tc.ok {
			assert.True(t, errors.Is(err, ErrInvalidBitDepth), "bit %d should be rejected", tc.bit)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.n, levels.Len())
		assert.Equal(t, int32(tc.n-1), levels.Max())
		assert.Len(t, levels.Scratch(), tc.n)
	}
}

func TestArgmin(t *testing.T) {
	assert.Equal(t, -1, Argmin(nil))
	assert.Equal(t, 0, Argmin([]float64{3}))
	assert.Equal(t, 2, Argmin([]float64{5, 4, 1, 2}))
	assert.Equal(t, 1, Argmin([]float64{5, 1, 1, 1}), "first occurrence wins ties")
}

func TestDenoiseDataOnly(t *testing.T) {
	levels, err := NewLevels(8)
	require.NoError(t, err)
	e := levels.Scratch()

	nbrs := [8]int32{0, 255, 17, 3, 250, 99, 1, 128}
	for _, center := range []int32{0, 1, 77, 254, 255, 300, -20} {
		Denoise(e, center, &nbrs, 0, 1000)
		expected := center
		if expected < 0 {
			expected = 0
		}
		if expected > 255 {
			expected = 255
		}
		assert.Equal(t, int(expected), Argmin(e), "lambda=0 keeps the observation clipped to the level range")
	}
}

func TestDenoiseCutoffZero(t *testing.T) {
	levels, err := NewLevels(8)
	require.NoError(t, err)
	withSmooth := levels.Scratch()
	dataOnly := levels.Scratch()

	nbrs := [8]int32{10, 20, 30, 40, 50, 60, 70, 80}
	Denoise(withSmooth, 140, &nbrs, 25, 0)
	Denoise(dataOnly, 140, &nbrs, 0, 0)

	assert.Equal(t, dataOnly, withSmooth, "cutoff=0 removes the smoothness term entirely")
	assert.Equal(t, 140, Argmin(withSmooth))
}

func TestDenoiseEnergyValues(t *testing.T) {
	e := make([]float64, 4)
	nbrs := [8]int32{2, 2, 2, 2, 2, 2, 2, 2}
	Denoise(e, 0, &nbrs, 1, 1e9)

	assert.Equal(t, []float64{32, 9, 4, 17}, e)
}

func TestDenoiseTieBreak(t *testing.T) {
	levels, err := NewLevels(8)
	require.NoError(t, err)
	e := levels.Scratch()

	// Three neighbours at 2 pull toward 2, five far outliers are capped equally.
	nbrs := [8]int32{2, 2, 2, 200, 200, 200, 200, 200}
	Denoise(e, 0, &nbrs, 1, 100)

	require.Equal(t, e[1], e[2], "levels 1 and 2 must tie")
	assert.Equal(t, float64(504), e[1])
	assert.Equal(t, 1, Argmin(e), "lower level wins the tie")
}

func TestInpaintTieBreak(t *testing.T) {
	levels, err := NewLevels(8)
	require.NoError(t, err)
	e := levels.Scratch()

	var nbrs [20]int32
	for i := 10; i < 20; i++ {
		nbrs[i] = 3
	}
	Inpaint(e, &nbrs, 9)

	require.Equal(t, e[1], e[2])
	assert.Equal(t, float64(50), e[1])
	assert.Equal(t, float64(90), e[0])
	assert.Equal(t, 1, Argmin(e))
}

func TestInpaintConsensus(t *testing.T) {
	levels, err := NewLevels(8)
	require.NoError(t, err)
	e := levels.Scratch()

	var nbrs [20]int32
	for i := range nbrs {
		nbrs[i] = 50
	}
	nbrs[0], nbrs[7] = 255, 0
	Inpaint(e, &nbrs, 2000)

	assert.Equal(t, 50, Argmin(e), "a robust majority decides the missing value")
}

func BenchmarkDenoise8Bit(b *testing.B) {
	levels, _ := NewLevels(8)
	e := levels.Scratch()
	nbrs := [8]int32{10, 20, 30, 40, 50, 60, 70, 80}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Denoise(e, 45, &nbrs, 1, 1000)
		_ = Argmin(e)
	}
}

func BenchmarkInpaint8Bit(b *testing.B) {
	levels, _ := NewLevels(8)
	e := levels.Scratch()
	var nbrs [20]int32
	for i := range nbrs {
		nbrs[i] = int32(i * 10)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Inpaint(e, &nbrs, 2000)
		_ = Argmin(e)
	}
}
