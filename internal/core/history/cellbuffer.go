package history

// CellBuffer accumulates the cells toggled by one gesture.
// Growth doubles the capacity; when it would pass the limit the buffer
// stops recording and remembers that it ran out of room.
type CellBuffer struct {
	coords   []int
	limit    int // maximum cells, 0 for unlimited
	badAlloc bool
}

// NewCellBuffer returns a buffer holding at most limit cells (0 = unlimited).
func NewCellBuffer(limit int) *CellBuffer {
	return &CellBuffer{limit: limit}
}

func (b *CellBuffer) grow() bool {
	n := cap(b.coords)
	if n == 0 {
		n = 2
	} else {
		n *= 2
	}
	if b.limit > 0 && n > 2*b.limit {
		if cap(b.coords) >= 2*b.limit {
			return false
		}
		n = 2 * b.limit
	}
	next := make([]int, len(b.coords), n)
	copy(next, b.coords)
	b.coords = next
	return true
}

// Record appends one cell. Cells past the limit are dropped.
func (b *CellBuffer) Record(x, y int) {
	if b.badAlloc {
		return
	}
	if len(b.coords)+2 > cap(b.coords) && !b.grow() {
		b.badAlloc = true
		return
	}
	b.coords = append(b.coords, x, y)
}

// Len returns the number of recorded cells.
func (b *CellBuffer) Len() int {
	return len(b.coords) / 2
}

// Take moves the recorded cells out, trimmed to size, and resets the buffer.
// dropped reports whether any cells were lost.
func (b *CellBuffer) Take() (cells []int, dropped bool) {
	if len(b.coords) > 0 {
		cells = make([]int, len(b.coords))
		copy(cells, b.coords)
	}
	dropped = b.badAlloc
	b.Discard()
	return cells, dropped
}

// Discard forgets everything recorded so far.
func (b *CellBuffer) Discard() {
	b.coords = nil
	b.badAlloc = false
}
