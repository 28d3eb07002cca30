package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-mrf/grid"
)

func gradient(t *testing.T, channels int) *grid.Grid {
	t.Helper()
	shape := []int{12, 16}
	if channels == 3 {
		shape = append(shape, 3)
	}
	g, err := grid.New(shape...)
	require.NoError(t, err)
	for r := 0; r < 12; r++ {
		for c := 0; c < 16; c++ {
			for ch := 0; ch < channels; ch++ {
				g.Set(r, c, ch, int32((r*16+c*7+ch*50)%256))
			}
		}
	}
	return g
}

func TestFormatFromPath(t *testing.T) {
	testCases := []struct {
		path     string
		expected ImageFormat
		wantErr  bool
	}{
		{path: "a.png", expected: FormatPNG},
		{path: "a.JPG", expected: FormatJPEG},
		{path: "dir/a.jpeg", expected: FormatJPEG},
		{path: "a.webp", expected: FormatWebP},
		{path: "a.bmp", expected: FormatBMP},
		{path: "a.tif", expected: FormatTIFF},
		{path: "a.tiff", expected: FormatTIFF},
		{path: "a.gif", wantErr: true},
		{path: "noext", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			format, err := FormatFromPath(tc.path)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, format)
		})
	}
}

func TestSaveLoadLossless(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		ext      string
		channels int
	}{
		{ext: ".png", channels: 1},
		{ext: ".png", channels: 3},
		{ext: ".bmp", channels: 1},
		{ext: ".bmp", channels: 3},
		{ext: ".tiff", channels: 1},
		{ext: ".tif", channels: 3},
		{ext: ".webp", channels: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.ext, func(t *testing.T) {
			g := gradient(t, tc.channels)
			path := filepath.Join(dir, "img"+string(rune('0'+tc.channels))+tc.ext)
			require.NoError(t, Save(path, g))

			loaded, err := Load(path, tc.channels)
			require.NoError(t, err)
			assert.Equal(t, g.Shape(), loaded.Shape())
			assert.True(t, g.Equal(loaded), "round trip through %s must be exact", tc.ext)
		})
	}
}

func TestSaveLoadJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.jpg")
	g, err := grid.Fill(120, 16, 16)
	require.NoError(t, err)
	require.NoError(t, Save(path, g))

	loaded, err := Load(path, 1)
	require.NoError(t, err)
	for _, v := range loaded.Pix() {
		assert.InDelta(t, 120, v, 2)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.png"), 1)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "image.gif"), 1)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))
	_, err = Load(bad, 1)
	assert.Error(t, err)

	err = Save(filepath.Join(dir, "out.gif"), grid.MustNew(2, 2))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestResize(t *testing.T) {
	flat, err := grid.Fill(90, 20, 30, 3)
	require.NoError(t, err)

	out, err := Resize(flat, 15, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 15, 3}, out.Shape())
	for _, v := range out.Pix() {
		assert.InDelta(t, 90, v, 1)
	}

	gray, err := Resize(gradient(t, 1), 32, 24)
	require.NoError(t, err)
	assert.Equal(t, []int{24, 32}, gray.Shape())

	_, err = Resize(flat, 0, 10)
	assert.True(t, errors.Is(err, ErrInvalidDimensions))
}

func TestResizeImageToImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	img, err := ResizeImageToImage(buf.Bytes(), 50, 40, FormatJPEG)
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	_, err = ResizeImageToImage(nil, 50, 40, FormatJPEG)
	assert.Error(t, err)
	_, err = ResizeImageToImage([]byte("not a jpeg"), 50, 40, FormatJPEG)
	assert.Error(t, err)
	_, err = ResizeImageToImage(buf.Bytes(), 50, 0, FormatJPEG)
	assert.True(t, errors.Is(err, ErrInvalidDimensions))
}

func TestComputeChecksum(t *testing.T) {
	a := gradient(t, 1)
	assert.Equal(t, ComputeChecksum(a), ComputeChecksum(a.Clone()))

	b := a.Clone()
	b.Set(0, 0, 0, b.At(0, 0, 0)+1)
	assert.NotEqual(t, ComputeChecksum(a), ComputeChecksum(b))

	flat, err := grid.FromSlice(a.Pix(), 16, 12)
	require.NoError(t, err)
	assert.NotEqual(t, ComputeChecksum(a), ComputeChecksum(flat), "shape is part of the checksum")
	assert.Equal(t, "empty", ComputeChecksum(nil))
}
