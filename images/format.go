package images

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned for file extensions without a codec.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageFormat represents supported image formats.
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format, written lossless.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatBMP is the BMP image format.
	FormatBMP ImageFormat = "bmp"
	// FormatTIFF is the TIFF image format.
	FormatTIFF ImageFormat = "tiff"
)

// JPEGQuality is the quality used when saving JPEG files.
const JPEGQuality = 95

var extensions = map[string]ImageFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".webp": FormatWebP,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

// FormatFromPath picks the format from a file extension, case-insensitively.
func FormatFromPath(path string) (ImageFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensions[ext]
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}
	return format, nil
}

// Decode reads one image of the given format.
func Decode(r io.Reader, format ImageFormat) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", format)
	}
	return img, nil
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Lossless: true})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", format)
	}
	return nil
}
