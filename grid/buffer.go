package grid

// DoubleBuffer pairs a frozen snapshot with a working buffer of the same geometry.
//
// During a sweep every read goes to Front and every write to Back. Swap publishes
// the finished sweep; nothing else ever moves data between the two.
type DoubleBuffer struct {
	front *Padded
	back  *Padded
	swaps int
}

// NewDoubleBuffer takes ownership of initial as the first snapshot and allocates a
// working buffer holding the same values.
func NewDoubleBuffer(initial *Padded) *DoubleBuffer {
	return &DoubleBuffer{
		front: initial,
		back:  initial.Clone(),
	}
}

// Front returns the snapshot that neighbourhood lookups read from.
func (d *DoubleBuffer) Front() *Padded { return d.front }

// Back returns the buffer the current sweep writes into.
func (d *DoubleBuffer) Back() *Padded { return d.back }

// Swaps returns how many sweeps have been published.
func (d *DoubleBuffer) Swaps() int { return d.swaps }

// Swap makes the working buffer the new snapshot and refreshes its border. The old
// snapshot becomes the next working buffer.
func (d *DoubleBuffer) Swap() {
	d.front, d.back = d.back, d.front
	d.front.RefreshBorder()
	d.swaps++
}
