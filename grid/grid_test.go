package grid

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesShape(t *testing.T) {
	testCases := []struct {
		name  string
		shape []int
		ok    bool
	}{
		{name: "gray", shape: []int{4, 5}, ok: true},
		{name: "color", shape: []int{4, 5, 3}, ok: true},
		{name: "vector", shape: []int{4}},
		{name: "4d", shape: []int{1, 4, 5, 3}},
		{name: "zero_rows", shape: []int{0, 5}},
		{name: "negative_channels", shape: []int{2, 2, -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := New(tc.shape...)
			if !tc.ok {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidImageShape), "error should wrap ErrInvalidImageShape: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.shape, g.Shape())
			assert.Equal(t, len(tc.shape), g.Dims())
		})
	}
}

func TestGridAccessors(t *testing.T) {
	g := MustNew(2, 3, 3)
	g.Set(1, 2, 1, 42)

	assert.Equal(t, int32(42), g.At(1, 2, 1))
	assert.Equal(t, 3, g.Channels())
	assert.Equal(t, 18, g.Len())
	assert.Equal(t, int32(42), g.Pix()[g.Index(1, 2, 1)])

	clone := g.Clone()
	clone.Set(1, 2, 1, 7)
	assert.Equal(t, int32(42), g.At(1, 2, 1), "clone must not alias the original")
	assert.False(t, g.Equal(clone))
}

func TestFromSliceLengthMismatch(t *testing.T) {
	_, err := FromSlice([]int32{1, 2, 3}, 2, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidImageShape))
}

func TestClip(t *testing.T) {
	g, err := FromSlice([]int32{-5, 10, 300, 255}, 2, 2)
	require.NoError(t, err)

	g.Clip(0, 255)
	assert.Equal(t, []int32{0, 10, 255, 255}, g.Pix())
}

func TestMaskCoords(t *testing.T) {
	mask, err := FromSlice([]int32{
		0, 201, 0,
		200, 0, 255,
	}, 2, 3)
	require.NoError(t, err)

	coords, err := MaskCoords(mask, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []Coord{{Row: 0, Col: 1}, {Row: 1, Col: 2}}, coords, "exactly values above 200 in row-major order")
}

func TestMaskCoordsErrors(t *testing.T) {
	colorMask := MustNew(2, 3, 3)
	_, err := MaskCoords(colorMask, 2, 3)
	assert.True(t, errors.Is(err, ErrInvalidMaskShape))

	_, err = MaskCoords(nil, 2, 3)
	assert.True(t, errors.Is(err, ErrInvalidMaskShape))

	_, err = MaskCoords(MustNew(3, 3), 2, 3)
	assert.True(t, errors.Is(err, ErrMaskMismatch))
}
