package grid

import (
	"github.com/pkg/errors"
)

// MaskThreshold is the mask intensity above which a pixel counts as missing.
const MaskThreshold = 200

// Coord is an interior (row, col) position.
type Coord struct {
	Row int
	Col int
}

// MaskCoords collects the positions of missing pixels in row-major order.
//
// Arguments:
// - mask: A 2D grid; cells strictly above MaskThreshold are missing.
// - rows, cols: The spatial shape of the image the mask applies to.
//
// Returns:
// - The ordered coordinate list (possibly empty).
// - ErrInvalidMaskShape if the mask is not 2D, ErrMaskMismatch if its shape differs.
func MaskCoords(mask *Grid, rows, cols int) ([]Coord, error) {
	if mask == nil || mask.Dims() != 2 {
		dims := 0
		if mask != nil {
			dims = mask.Dims()
		}
		return nil, errors.Wrapf(ErrInvalidMaskShape, "mask must be 2D, got %d dimensions", dims)
	}
	if mask.Rows() != rows || mask.Cols() != cols {
		return nil, errors.Wrapf(ErrMaskMismatch, "mask is %dx%d, image is %dx%d", mask.Rows(), mask.Cols(), rows, cols)
	}

	var coords []Coord
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if mask.At(r, c, 0) > MaskThreshold {
				coords = append(coords, Coord{Row: r, Col: c})
			}
		}
	}
	return coords, nil
}
