package images

import (
	"bytes"
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/grid"
)

// ErrInvalidDimensions is returned for non-positive target sizes.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Resize scales g to width x height with Lanczos3 resampling, keeping the
// channel count. Values are clipped to [0,255] first.
//
// Arguments:
// - g: The grid to resize.
// - width: Target column count.
// - height: Target row count.
//
// Returns:
// - The resized grid.
// - error if the dimensions are not positive.
func Resize(g *grid.Grid, width, height int) (*grid.Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "width=%d, height=%d", width, height)
	}
	img, err := g.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to render grid")
	}
	return grid.FromImage(resize.Resize(uint(width), uint(height), img, resize.Lanczos3), g.Channels())
}

// ResizeImageToImage decodes encoded image bytes and resizes them to width x
// height.
func ResizeImageToImage(imageBytes []byte, width, height int, format ImageFormat) (image.Image, error) {
	if len(imageBytes) == 0 {
		return nil, errors.New("empty image data")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "width=%d, height=%d", width, height)
	}

	img, err := Decode(bytes.NewReader(imageBytes), format)
	if err != nil {
		return nil, err
	}
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3), nil
}
