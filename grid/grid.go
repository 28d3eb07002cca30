// Package grid - Integer image grids with explicit border padding, neighbourhood
// extraction and double buffering for iterative restoration sweeps.
package grid

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidImageShape is returned when an image is neither 2D nor 3D or has an
	// empty dimension.
	ErrInvalidImageShape = errors.New("invalid image shape")
	// ErrInvalidMaskShape is returned when a mask is not 2D.
	ErrInvalidMaskShape = errors.New("invalid mask shape")
	// ErrMaskMismatch is returned when a mask's spatial shape differs from the image.
	ErrMaskMismatch = errors.New("mask does not match image")
)

// Grid is a row-major, channel-interleaved (HWC) array of integer intensities.
//
// A 2D grid has exactly one channel and reports Dims() == 2.
type Grid struct {
	rows     int
	cols     int
	channels int
	dims     int
	pix      []int32
}

// New creates a zero-valued grid.
//
// Arguments:
// - shape: (rows, cols) for grayscale or (rows, cols, channels) for multi-channel.
//
// Returns:
// - The allocated grid.
// - ErrInvalidImageShape if the shape has the wrong rank or an empty dimension.
//
// @example
// g, err := grid.New(480, 640, 3)
func New(shape ...int) (*Grid, error) {
	if len(shape) != 2 && len(shape) != 3 {
		return nil, errors.Wrapf(ErrInvalidImageShape, "expected 2 or 3 dimensions, got %d", len(shape))
	}
	for i, d := range shape {
		if d <= 0 {
			return nil, errors.Wrapf(ErrInvalidImageShape, "dimension %d has size %d", i, d)
		}
	}

	channels := 1
	if len(shape) == 3 {
		channels = shape[2]
	}

	return &Grid{
		rows:     shape[0],
		cols:     shape[1],
		channels: channels,
		dims:     len(shape),
		pix:      make([]int32, shape[0]*shape[1]*channels),
	}, nil
}

// MustNew is New for shapes known to be valid. It panics on error.
func MustNew(shape ...int) *Grid {
	g, err := New(shape...)
	if err != nil {
		panic(err)
	}
	return g
}

// FromSlice builds a grid from row-major HWC data. The slice is copied.
func FromSlice(data []int32, shape ...int) (*Grid, error) {
	g, err := New(shape...)
	if err != nil {
		return nil, err
	}
	if len(data) != len(g.pix) {
		return nil, errors.Wrapf(ErrInvalidImageShape, "shape %v needs %d values, got %d", shape, len(g.pix), len(data))
	}
	copy(g.pix, data)
	return g, nil
}

// Fill creates a grid where every cell holds v.
func Fill(v int32, shape ...int) (*Grid, error) {
	g, err := New(shape...)
	if err != nil {
		return nil, err
	}
	for i := range g.pix {
		g.pix[i] = v
	}
	return g, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Channels returns the channel count, 1 for 2D grids.
func (g *Grid) Channels() int { return g.channels }

// Dims returns 2 for grayscale grids and 3 for grids with a channel dimension.
func (g *Grid) Dims() int { return g.dims }

// Shape returns (rows, cols) or (rows, cols, channels).
func (g *Grid) Shape() []int {
	if g.dims == 2 {
		return []int{g.rows, g.cols}
	}
	return []int{g.rows, g.cols, g.channels}
}

// Len returns the number of stored values.
func (g *Grid) Len() int { return len(g.pix) }

// Pix exposes the backing slice. Callers that mutate it own the consequences.
func (g *Grid) Pix() []int32 { return g.pix }

// Index returns the offset of (r, c, ch) in Pix.
func (g *Grid) Index(r, c, ch int) int {
	return (r*g.cols+c)*g.channels + ch
}

// At returns the value at (r, c, ch). Use ch == 0 for grayscale grids.
func (g *Grid) At(r, c, ch int) int32 {
	return g.pix[g.Index(r, c, ch)]
}

// Set stores v at (r, c, ch).
func (g *Grid) Set(r, c, ch int, v int32) {
	g.pix[g.Index(r, c, ch)] = v
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := *g
	out.pix = make([]int32, len(g.pix))
	copy(out.pix, g.pix)
	return &out
}

// SameShape reports whether both grids have identical rank and dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.dims == o.dims && g.rows == o.rows && g.cols == o.cols && g.channels == o.channels
}

// Equal reports whether both grids have the same shape and values.
func (g *Grid) Equal(o *Grid) bool {
	if !g.SameShape(o) {
		return false
	}
	for i, v := range g.pix {
		if o.pix[i] != v {
			return false
		}
	}
	return true
}

// Clip limits every value to [lo, hi] in place.
func (g *Grid) Clip(lo, hi int32) {
	for i, v := range g.pix {
		if v < lo {
			g.pix[i] = lo
		} else if v > hi {
			g.pix[i] = hi
		}
	}
}

// String implements fmt.Stringer.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid%v", g.Shape())
}
