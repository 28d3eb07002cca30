// Package util - Helpers for locating and loading frame sequences on disk.
package util

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/grid"
	"github.com/nvr-ai/go-mrf/images"
)

// ErrNoImages is returned when a directory holds no supported image files.
var ErrNoImages = errors.New("no image files found")

// frameNumber matches the last run of digits in a file stem, as in "frame-12".
var frameNumber = regexp.MustCompile(`(\d+)\D*$`)

// ImageFile represents an image file in a frame sequence.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Format is the codec selected by the file extension.
	Format images.ImageFormat
	// Frame is the frame number parsed from the file name, or -1 without one.
	Frame int
}

// ListDirectoryImageFiles lists the supported image files of a directory in
// frame order. Files with a number in their name sort by that number; the rest
// follow by name.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The files in frame order.
// - error: Error if the directory cannot be read.
func ListDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read frame directory")
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := images.FormatFromPath(entry.Name())
		if err != nil {
			continue
		}

		stem := entry.Name()[:len(entry.Name())-len(filepath.Ext(entry.Name()))]
		frame := -1
		if m := frameNumber.FindStringSubmatch(stem); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				frame = n
			}
		}
		files = append(files, ImageFile{
			Path:   filepath.Join(dir, entry.Name()),
			Format: format,
			Frame:  frame,
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if (a.Frame < 0) != (b.Frame < 0) {
			return a.Frame >= 0
		}
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Path < b.Path
	})

	return files, nil
}

// LoadDirectoryFrames loads every supported image of dir as a grid, in frame
// order.
//
// Arguments:
// - dir: Directory path containing the frames.
// - channels: 1 for grayscale grids, 3 for RGB grids.
//
// Returns:
// - The frames.
// - ErrNoImages when the directory holds no supported files.
//
// @example
// frames, err := util.LoadDirectoryFrames("exposures", 3)
// avg, err := average.Mean(frames)
func LoadDirectoryFrames(dir string, channels int) ([]*grid.Grid, error) {
	files, err := ListDirectoryImageFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoImages, "in %s", dir)
	}

	frames := make([]*grid.Grid, 0, len(files))
	for _, f := range files {
		g, err := images.Load(f.Path, channels)
		if err != nil {
			return nil, err
		}
		frames = append(frames, g)
	}
	return frames, nil
}
