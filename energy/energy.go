// Package energy - Discrete energies for MAP pixel restoration.
//
// Every function evaluates a whole level set at once: the caller supplies a
// scratch vector with one slot per candidate intensity and picks the restored
// value with Argmin.
package energy

import (
	"github.com/pkg/errors"
)

// MaxBitDepth bounds the level set. Evaluation cost grows as 2^bit per pixel.
const MaxBitDepth = 16

// ErrInvalidBitDepth is returned for bit depths outside [1, MaxBitDepth].
var ErrInvalidBitDepth = errors.New("invalid bit depth")

// Levels is the ordered set of candidate intensities 0 .. 2^bit-1.
type Levels struct {
	bit int
	n   int
}

// NewLevels builds the level set for a bit depth.
//
// Arguments:
// - bit: Colour depth; 8 yields 256 levels.
//
// Returns:
// - The level set.
// - ErrInvalidBitDepth if bit is outside [1, MaxBitDepth].
func NewLevels(bit int) (Levels, error) {
	if bit < 1 || bit > MaxBitDepth {
		return Levels{}, errors.Wrapf(ErrInvalidBitDepth, "bit depth %d outside [1, %d]", bit, MaxBitDepth)
	}
	return Levels{bit: bit, n: 1 << bit}, nil
}

// Bit returns the bit depth.
func (l Levels) Bit() int { return l.bit }

// Len returns the number of levels, 2^bit.
func (l Levels) Len() int { return l.n }

// Max returns the highest level, 2^bit-1.
func (l Levels) Max() int32 { return int32(l.n - 1) }

// Scratch allocates an energy vector sized for the level set.
func (l Levels) Scratch() []float64 { return make([]float64, l.n) }

// truncated is the robust penalty min(d^2, cutoff).
func truncated(d, cutoff float64) float64 {
	sq := d * d
	if sq > cutoff {
		return cutoff
	}
	return sq
}

// Denoise writes E(v) = (v - center)^2 + lambda * sum_n min((v - n)^2, cutoff)
// into dst for every level v.
//
// Arguments:
// - dst: Output vector, len(dst) levels are evaluated.
// - center: The observed value of the pixel.
// - nbrs: The eight snapshot neighbours.
// - lambda: Smoothness weight, >= 0.
// - cutoff: Truncation of the quadratic penalty, >= 0.
func Denoise(dst []float64, center int32, nbrs *[8]int32, lambda, cutoff float64) {
	c := float64(center)
	for v := range dst {
		fv := float64(v)
		data := (fv - c) * (fv - c)

		var smooth float64
		if lambda != 0 && cutoff != 0 {
			for _, n := range nbrs {
				smooth += truncated(fv-float64(n), cutoff)
			}
		}
		dst[v] = data + lambda*smooth
	}
}

// Inpaint writes E(v) = sum_n min((v - n)^2, cutoff) over the 20-cell inpainting
// window into dst. There is no data term: the true value is unknown.
func Inpaint(dst []float64, nbrs *[20]int32, cutoff float64) {
	for v := range dst {
		fv := float64(v)
		var e float64
		for _, n := range nbrs {
			e += truncated(fv-float64(n), cutoff)
		}
		dst[v] = e
	}
}

// Argmin returns the index of the smallest energy. Ties resolve to the lowest
// index. It returns -1 only for an empty vector.
func Argmin(e []float64) int {
	if len(e) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(e); i++ {
		if e[i] < e[best] {
			best = i
		}
	}
	return best
}
