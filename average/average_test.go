package average

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-mrf/grid"
)

func frame(t *testing.T, data []int32, shape ...int) *grid.Grid {
	t.Helper()
	g, err := grid.FromSlice(data, shape...)
	require.NoError(t, err)
	return g
}

func TestMean(t *testing.T) {
	testCases := []struct {
		name     string
		frames   [][]int32
		expected []int32
	}{
		{name: "single", frames: [][]int32{{0, 255}}, expected: []int32{0, 255}},
		{name: "truncates", frames: [][]int32{{0, 1}, {255, 2}}, expected: []int32{127, 1}},
		{name: "three", frames: [][]int32{{10, 20}, {20, 20}, {30, 21}}, expected: []int32{20, 20}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frames := make([]*grid.Grid, len(tc.frames))
			for i, data := range tc.frames {
				frames[i] = frame(t, data, 1, 2)
			}
			out, err := Mean(frames)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.Pix())
			assert.Equal(t, []int{1, 2}, out.Shape())
		})
	}
}

func TestMeanColorKeepsShape(t *testing.T) {
	a, err := grid.Fill(100, 2, 3, 3)
	require.NoError(t, err)
	b, err := grid.Fill(201, 2, 3, 3)
	require.NoError(t, err)

	out, err := Mean([]*grid.Grid{a, b})
	require.NoError(t, err)
	expected, err := grid.Fill(150, 2, 3, 3)
	require.NoError(t, err)
	assert.True(t, expected.Equal(out))
}

func TestMeanErrors(t *testing.T) {
	_, err := Mean(nil)
	assert.True(t, errors.Is(err, ErrNoFrames))

	_, err = Mean([]*grid.Grid{grid.MustNew(2, 2), grid.MustNew(2, 3)})
	assert.True(t, errors.Is(err, ErrFrameMismatch))

	_, err = Mean([]*grid.Grid{grid.MustNew(2, 2), grid.MustNew(2, 2, 3)})
	assert.True(t, errors.Is(err, ErrFrameMismatch))

	_, err = Mean([]*grid.Grid{grid.MustNew(2, 2), nil})
	assert.True(t, errors.Is(err, grid.ErrInvalidImageShape))
}

func TestSigmaClippedRejectsOutlier(t *testing.T) {
	var frames []*grid.Grid
	for _, v := range []int32{100, 102, 98, 100, 101, 99, 100, 255} {
		frames = append(frames, frame(t, []int32{v}, 1, 1))
	}

	plain, err := Mean(frames)
	require.NoError(t, err)
	assert.Equal(t, int32(119), plain.Pix()[0])

	clipped, err := SigmaClipped(frames, 1.5)
	require.NoError(t, err)
	assert.Equal(t, int32(100), clipped.Pix()[0])
}

func TestSigmaClippedFallsBackToMean(t *testing.T) {
	frames := []*grid.Grid{frame(t, []int32{0}, 1, 1), frame(t, []int32{10}, 1, 1)}

	out, err := SigmaClipped(frames, 0.5)
	require.NoError(t, err)
	assert.Equal(t, int32(5), out.Pix()[0])
}

func TestSigmaClippedSingleFrame(t *testing.T) {
	f := frame(t, []int32{3, 4, 5, 6}, 2, 2)
	out, err := SigmaClipped([]*grid.Grid{f}, 2)
	require.NoError(t, err)
	assert.True(t, f.Equal(out))
}

func TestSigmaClippedErrors(t *testing.T) {
	_, err := SigmaClipped(nil, 2)
	assert.True(t, errors.Is(err, ErrNoFrames))

	_, err = SigmaClipped([]*grid.Grid{grid.MustNew(1, 1)}, 0)
	assert.True(t, errors.Is(err, ErrInvalidSigma))
}
