package metrics

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-mrf/grid"
)

func TestMSE(t *testing.T) {
	a, err := grid.FromSlice([]int32{0, 10, 20, 30}, 2, 2)
	require.NoError(t, err)
	b, err := grid.FromSlice([]int32{2, 10, 16, 30}, 2, 2)
	require.NoError(t, err)

	mse, err := MSE(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, mse, 1e-12)
}

func TestPSNR(t *testing.T) {
	truth, err := grid.Fill(100, 4, 4, 3)
	require.NoError(t, err)

	same, err := PSNR(truth.Clone(), truth)
	require.NoError(t, err)
	assert.True(t, math.IsInf(same, 1))

	off, err := grid.Fill(101, 4, 4, 3)
	require.NoError(t, err)
	psnr, err := PSNR(off, truth)
	require.NoError(t, err)
	assert.InDelta(t, 48.1308, psnr, 1e-4)

	worse, err := grid.Fill(110, 4, 4, 3)
	require.NoError(t, err)
	low, err := PSNR(worse, truth)
	require.NoError(t, err)
	assert.Less(t, low, psnr)
}

func TestShapeMismatch(t *testing.T) {
	_, err := PSNR(grid.MustNew(2, 2), grid.MustNew(2, 2, 3))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = MSE(nil, grid.MustNew(2, 2))
	assert.True(t, errors.Is(err, grid.ErrInvalidImageShape))
}
