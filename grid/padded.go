package grid

import (
	"github.com/pkg/errors"
)

// BorderMode defines how padding cells around the interior are filled.
type BorderMode string

const (
	// BorderZero fills padding with the sentinel value zero.
	BorderZero BorderMode = "zero"
	// BorderReplicate copies the nearest interior edge value.
	BorderReplicate BorderMode = "replicate"
	// BorderMirror reflects interior values around the edge.
	BorderMirror BorderMode = "mirror"
)

// Valid reports whether m is a known border mode.
func (m BorderMode) Valid() bool {
	switch m {
	case BorderZero, BorderReplicate, BorderMirror:
		return true
	}
	return false
}

const (
	// DenoisePad is the border width needed by the 3x3 denoising neighbourhood.
	DenoisePad = 1
	// InpaintPad is the border width needed by the 5x5 inpainting window.
	InpaintPad = 2
	// InpaintNeighbors is the size of the inpainting window: 5x5 minus the centre
	// and the four far corners.
	InpaintNeighbors = 20
)

// Padded is a grid surrounded by a border of fixed width. All accessors take
// interior coordinates; the border is only ever read, never selected as output.
type Padded struct {
	buf  *Grid
	pad  int
	mode BorderMode

	rows     int
	cols     int
	channels int
	dims     int

	rowStride int
	colStride int
}

// Pad copies g into a new padded grid.
//
// Arguments:
// - g: The interior grid.
// - width: Border width in cells (1 for 3x3 windows, 2 for 5x5 windows).
// - mode: How the border is filled.
//
// Returns:
// - The padded grid.
// - error if the width is negative or the mode unknown.
//
// @example
// p, err := grid.Pad(img, grid.DenoisePad, grid.BorderZero)
func Pad(g *Grid, width int, mode BorderMode) (*Padded, error) {
	if width < 0 {
		return nil, errors.Errorf("padding width must be non-negative, got %d", width)
	}
	if !mode.Valid() {
		return nil, errors.Errorf("unknown border mode %q", mode)
	}

	shape := []int{g.rows + 2*width, g.cols + 2*width, g.channels}
	buf, err := New(shape...)
	if err != nil {
		return nil, err
	}

	p := &Padded{
		buf:       buf,
		pad:       width,
		mode:      mode,
		rows:      g.rows,
		cols:      g.cols,
		channels:  g.channels,
		dims:      g.dims,
		rowStride: buf.cols * buf.channels,
		colStride: buf.channels,
	}

	rowLen := g.cols * g.channels
	for r := 0; r < g.rows; r++ {
		src := g.pix[r*rowLen : (r+1)*rowLen]
		off := p.offset(r, 0, 0)
		copy(buf.pix[off:off+rowLen], src)
	}
	p.RefreshBorder()

	return p, nil
}

// Width returns the border width.
func (p *Padded) Width() int { return p.pad }

// Mode returns the border mode.
func (p *Padded) Mode() BorderMode { return p.mode }

// Rows returns the interior row count.
func (p *Padded) Rows() int { return p.rows }

// Cols returns the interior column count.
func (p *Padded) Cols() int { return p.cols }

// Channels returns the channel count.
func (p *Padded) Channels() int { return p.channels }

// offset maps interior coordinates to an index in the padded buffer.
func (p *Padded) offset(r, c, ch int) int {
	return (r+p.pad)*p.rowStride + (c+p.pad)*p.colStride + ch
}

// At returns the interior value at (r, c, ch).
func (p *Padded) At(r, c, ch int) int32 {
	return p.buf.pix[p.offset(r, c, ch)]
}

// Set stores an interior value.
func (p *Padded) Set(r, c, ch int, v int32) {
	p.buf.pix[p.offset(r, c, ch)] = v
}

// Raw returns the full padded buffer including the border.
func (p *Padded) Raw() *Grid { return p.buf }

// Clone returns a deep copy.
func (p *Padded) Clone() *Padded {
	out := *p
	out.buf = p.buf.Clone()
	return &out
}

// CopyFrom overwrites p with the contents of o. Both must share geometry.
func (p *Padded) CopyFrom(o *Padded) {
	copy(p.buf.pix, o.buf.pix)
}

// Unpad strips the border into a new grid with the original rank.
func (p *Padded) Unpad() *Grid {
	out := &Grid{
		rows:     p.rows,
		cols:     p.cols,
		channels: p.channels,
		dims:     p.dims,
		pix:      make([]int32, p.rows*p.cols*p.channels),
	}
	rowLen := p.cols * p.channels
	for r := 0; r < p.rows; r++ {
		off := p.offset(r, 0, 0)
		copy(out.pix[r*rowLen:(r+1)*rowLen], p.buf.pix[off:off+rowLen])
	}
	return out
}

// RefreshBorder re-fills the border from the current interior according to the
// border mode.
func (p *Padded) RefreshBorder() {
	if p.pad == 0 {
		return
	}
	pr, pc := p.buf.rows, p.buf.cols
	for r := 0; r < pr; r++ {
		inRow := r >= p.pad && r < p.pad+p.rows
		for c := 0; c < pc; c++ {
			if inRow && c >= p.pad && c < p.pad+p.cols {
				continue
			}
			dst := r*p.rowStride + c*p.colStride
			if p.mode == BorderZero {
				for ch := 0; ch < p.channels; ch++ {
					p.buf.pix[dst+ch] = 0
				}
				continue
			}
			sr := mapCoord(r-p.pad, p.rows, p.mode)
			sc := mapCoord(c-p.pad, p.cols, p.mode)
			src := p.offset(sr, sc, 0)
			copy(p.buf.pix[dst:dst+p.channels], p.buf.pix[src:src+p.channels])
		}
	}
}

// mapCoord maps an out-of-range interior coordinate back into [0, max).
func mapCoord(coord, max int, mode BorderMode) int {
	switch mode {
	case BorderMirror:
		if max == 1 {
			return 0
		}
		for coord < 0 || coord >= max {
			if coord < 0 {
				coord = -coord - 1
			} else {
				coord = 2*max - coord - 1
			}
		}
		return coord
	default:
		if coord < 0 {
			return 0
		} else if coord >= max {
			return max - 1
		}
		return coord
	}
}

// Neighbors8 writes the 3x3 neighbourhood of interior pixel (r, c, ch), centre
// excluded, in row-major order. Requires a border width of at least 1.
func (p *Padded) Neighbors8(r, c, ch int, dst *[8]int32) {
	i := p.offset(r, c, ch)
	rs, cs := p.rowStride, p.colStride
	pix := p.buf.pix
	dst[0] = pix[i-rs-cs]
	dst[1] = pix[i-rs]
	dst[2] = pix[i-rs+cs]
	dst[3] = pix[i-cs]
	dst[4] = pix[i+cs]
	dst[5] = pix[i+rs-cs]
	dst[6] = pix[i+rs]
	dst[7] = pix[i+rs+cs]
}

// window20 lists the (dr, dc) offsets of the inpainting window in row-major order.
var window20 = [InpaintNeighbors][2]int{
	{-2, -1}, {-2, 0}, {-2, 1},
	{-1, -2}, {-1, -1}, {-1, 0}, {-1, 1}, {-1, 2},
	{0, -2}, {0, -1}, {0, 1}, {0, 2},
	{1, -2}, {1, -1}, {1, 0}, {1, 1}, {1, 2},
	{2, -1}, {2, 0}, {2, 1},
}

// Window20 writes the inpainting window of interior pixel (r, c, ch): the 5x5 block
// without its centre and four corners. Grayscale grids always pass ch == 0.
// Requires a border width of at least 2.
func (p *Padded) Window20(r, c, ch int, dst *[InpaintNeighbors]int32) {
	i := p.offset(r, c, ch)
	pix := p.buf.pix
	for k, d := range window20 {
		dst[k] = pix[i+d[0]*p.rowStride+d[1]*p.colStride]
	}
}
