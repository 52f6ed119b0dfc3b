package types

import "math/big"

// Viewport is the view state restored alongside a generation change:
// the cell at the centre of the view, the scale and the step speed.
type Viewport struct {
	X    *big.Int
	Y    *big.Int
	Mag  int // log2 of pixels (or terminal columns) per cell; negative zooms out
	Warp int // step exponent; generations per step is 2^Warp when positive
}

// NewViewport returns a viewport centred on x, y.
func NewViewport(x, y int64, mag, warp int) Viewport {
	return Viewport{X: big.NewInt(x), Y: big.NewInt(y), Mag: mag, Warp: warp}
}

// Clone returns a deep copy.
func (v Viewport) Clone() Viewport {
	return Viewport{X: cloneInt(v.X), Y: cloneInt(v.Y), Mag: v.Mag, Warp: v.Warp}
}

// Equal compares by value.
func (v Viewport) Equal(o Viewport) bool {
	return eqInt(v.X, o.X) && eqInt(v.Y, o.Y) && v.Mag == o.Mag && v.Warp == o.Warp
}
