// Package display shows grids and sweep sequences in an OpenCV window.
package display

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-mrf/grid"
)

// ErrNoFrames is returned when a sequence is empty.
var ErrNoFrames = errors.New("no frames to display")

const (
	keyEscape = 27
	keyQuit   = 'q'
	// pollDelay is the WaitKey delay in milliseconds between redraws.
	pollDelay = 30
	// trackbarName labels the frame selector.
	trackbarName = "frame"
)

// ToMat converts a grid to an 8-bit Mat: CV_8UC1 for grayscale grids and
// CV_8UC3 (BGR) for colour grids. The caller owns the returned Mat.
func ToMat(g *grid.Grid) (gocv.Mat, error) {
	if g == nil {
		return gocv.NewMat(), errors.Wrap(grid.ErrInvalidImageShape, "grid is nil")
	}
	img, err := g.ToImage()
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to render grid")
	}
	if gray, ok := img.(*image.Gray); ok {
		return gocv.ImageGrayToMatGray(gray)
	}
	return gocv.ImageToMatRGB(img)
}

// Show displays g until a key is pressed, the window is closed or ctx ends.
//
// Arguments:
// - ctx: Cancels the viewer.
// - title: Window title.
// - g: The grid to show.
//
// Returns:
// - error if the grid cannot be converted.
func Show(ctx context.Context, title string, g *grid.Grid) error {
	return ShowSequence(ctx, title, []*grid.Grid{g})
}

// ShowSequence displays frames in one window with a trackbar selecting the
// frame, typically the History of a restoration run. Escape or q closes it.
//
// @example
// res, _ := restore.Denoise(ctx, noisy, opts)
// _ = display.ShowSequence(ctx, "denoise", res.History)
func ShowSequence(ctx context.Context, title string, frames []*grid.Grid) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}

	mats := make([]gocv.Mat, 0, len(frames))
	defer func() {
		for _, m := range mats {
			m.Close()
		}
	}()
	for i, f := range frames {
		mat, err := ToMat(f)
		if err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
		mats = append(mats, mat)
	}

	window := gocv.NewWindow(title)
	defer window.Close()

	var trackbar *gocv.Trackbar
	if len(mats) > 1 {
		trackbar = window.CreateTrackbar(trackbarName, len(mats)-1)
	}

	canvas := gocv.NewMat()
	defer canvas.Close()

	for window.IsOpen() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		idx := 0
		if trackbar != nil {
			idx = min(max(trackbar.GetPos(), 0), len(mats)-1)
		}
		annotate(&canvas, mats[idx], idx, len(mats))
		window.IMShow(canvas)

		if key := window.WaitKey(pollDelay); key == keyEscape || key == keyQuit {
			return nil
		}
	}
	return nil
}

// annotate copies src into dst and writes the frame index on sequences.
func annotate(dst *gocv.Mat, src gocv.Mat, idx, total int) {
	src.CopyTo(dst)
	if total < 2 {
		return
	}
	gocv.PutText(dst, fmt.Sprintf("%d/%d", idx, total-1), image.Pt(5, 15),
		gocv.FontHersheyPlain, 1.0, color.RGBA{255, 255, 255, 0}, 1)
}
