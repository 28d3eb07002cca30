// Package images - Reading, writing and resizing grids as image files.
package images

import (
	"bufio"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/grid"
)

// Load reads an image file into a grid.
//
// Arguments:
// - path: File path; the extension selects the codec.
// - channels: 1 for a 2D grayscale grid, 3 for an (H, W, 3) RGB grid.
//
// Returns:
// - The grid with 8-bit intensities.
// - error if the format is unsupported or decoding fails.
//
// @example
// noisy, err := images.Load("noisy.png", 1)
func Load(path string, channels int) (*grid.Grid, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	img, err := Decode(bufio.NewReader(f), format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return grid.FromImage(img, channels)
}

// Save writes g to path in the format named by its extension. Values are clipped
// to [0,255].
func Save(path string, g *grid.Grid) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	img, err := g.ToImage()
	if err != nil {
		return errors.Wrap(err, "failed to render grid")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create image file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "failed to close image file")
		}
	}()

	w := bufio.NewWriter(f)
	if err := Encode(w, img, format); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return w.Flush()
}
