package grid

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// FromTensor copies a dense tensor of shape (H, W) or (H, W, C) into a grid.
// Floating point values are truncated toward zero.
//
// Arguments:
// - t: A dense tensor or view backed by int32, int, uint8, float32 or float64.
//
// Returns:
// - The grid.
// - ErrInvalidImageShape for any other rank, or an error for unsupported dtypes.
//
// @example
// t := tensor.New(tensor.WithShape(4, 4), tensor.WithBacking(make([]int32, 16)))
// g, err := grid.FromTensor(t)
func FromTensor(t *tensor.Dense) (*Grid, error) {
	if t == nil {
		return nil, errors.Wrap(ErrInvalidImageShape, "tensor is nil")
	}
	if t.Dims() != 2 && t.Dims() != 3 {
		return nil, errors.Wrapf(ErrInvalidImageShape, "tensor has %d dimensions", t.Dims())
	}
	if t.IsView() {
		dense, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return nil, errors.Errorf("cannot materialize tensor view of type %T", t)
		}
		t = dense
	}

	g, err := New([]int(t.Shape())...)
	if err != nil {
		return nil, err
	}

	n := -1
	switch data := t.Data().(type) {
	case []int32:
		if len(data) == len(g.pix) {
			n = copy(g.pix, data)
		}
	case []int:
		if len(data) == len(g.pix) {
			for i, v := range data {
				g.pix[i] = int32(v)
			}
			n = len(data)
		}
	case []uint8:
		if len(data) == len(g.pix) {
			for i, v := range data {
				g.pix[i] = int32(v)
			}
			n = len(data)
		}
	case []float32:
		if len(data) == len(g.pix) {
			for i, v := range data {
				g.pix[i] = int32(v)
			}
			n = len(data)
		}
	case []float64:
		if len(data) == len(g.pix) {
			for i, v := range data {
				g.pix[i] = int32(v)
			}
			n = len(data)
		}
	default:
		return nil, errors.Errorf("unsupported tensor dtype %v", t.Dtype())
	}
	if n != len(g.pix) {
		return nil, errors.Wrapf(ErrInvalidImageShape, "tensor backing does not cover shape %v", t.Shape())
	}

	return g, nil
}

// ToTensor returns an int32 dense tensor with the grid's shape and a copy of its data.
func (g *Grid) ToTensor() *tensor.Dense {
	backing := make([]int32, len(g.pix))
	copy(backing, g.pix)
	return tensor.New(tensor.WithShape(g.Shape()...), tensor.WithBacking(backing))
}

// FromImage converts a decoded image into a grid.
//
// Arguments:
// - img: The source image.
// - channels: 1 for a 2D luma grid, 3 for an (H, W, 3) RGB grid.
//
// Returns:
// - The grid with 8-bit intensities.
// - ErrInvalidImageShape for other channel counts or empty images.
func FromImage(img image.Image, channels int) (*Grid, error) {
	if channels != 1 && channels != 3 {
		return nil, errors.Wrapf(ErrInvalidImageShape, "unsupported channel count %d", channels)
	}

	bounds := img.Bounds()
	shape := []int{bounds.Dy(), bounds.Dx()}
	if channels == 3 {
		shape = append(shape, 3)
	}
	g, err := New(shape...)
	if err != nil {
		return nil, err
	}

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			px := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			if channels == 1 {
				gray := color.GrayModel.Convert(px).(color.Gray)
				g.Set(y, x, 0, int32(gray.Y))
				continue
			}
			r, gr, b, _ := px.RGBA()
			g.Set(y, x, 0, int32(r>>8))
			g.Set(y, x, 1, int32(gr>>8))
			g.Set(y, x, 2, int32(b>>8))
		}
	}

	return g, nil
}

// ToImage renders the grid as an 8-bit image. Values are clipped to [0, 255].
// Grids with one channel become *image.Gray, grids with three become *image.RGBA.
func (g *Grid) ToImage() (image.Image, error) {
	rect := image.Rect(0, 0, g.cols, g.rows)
	switch g.channels {
	case 1:
		out := image.NewGray(rect)
		for r := 0; r < g.rows; r++ {
			for c := 0; c < g.cols; c++ {
				out.SetGray(c, r, color.Gray{Y: clip8(g.At(r, c, 0))})
			}
		}
		return out, nil
	case 3:
		out := image.NewRGBA(rect)
		for r := 0; r < g.rows; r++ {
			for c := 0; c < g.cols; c++ {
				out.SetRGBA(c, r, color.RGBA{
					R: clip8(g.At(r, c, 0)),
					G: clip8(g.At(r, c, 1)),
					B: clip8(g.At(r, c, 2)),
					A: 255,
				})
			}
		}
		return out, nil
	default:
		return nil, errors.Wrapf(ErrInvalidImageShape, "cannot render %d channels", g.channels)
	}
}

func clip8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
