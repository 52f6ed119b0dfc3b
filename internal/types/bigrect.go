package types

import (
	"fmt"
	"math/big"
)

// BigRect is a selection rectangle with arbitrary-precision edges.
// A rectangle whose Top is greater than its Bottom means "no selection".
type BigRect struct {
	Top    *big.Int
	Left   *big.Int
	Bottom *big.Int
	Right  *big.Int
}

// NoSelection returns the canonical empty selection.
func NoSelection() BigRect {
	return BigRect{
		Top:    big.NewInt(1),
		Left:   big.NewInt(0),
		Bottom: big.NewInt(0),
		Right:  big.NewInt(0),
	}
}

// BigRectFrom converts an int rectangle.
func BigRectFrom(r Rect) BigRect {
	return BigRect{
		Top:    big.NewInt(int64(r.Top)),
		Left:   big.NewInt(int64(r.Left)),
		Bottom: big.NewInt(int64(r.Bottom)),
		Right:  big.NewInt(int64(r.Right)),
	}
}

// Exists reports whether the rectangle denotes a selection.
func (r BigRect) Exists() bool {
	if r.Top == nil || r.Bottom == nil || r.Left == nil || r.Right == nil {
		return false
	}
	return r.Top.Cmp(r.Bottom) <= 0 && r.Left.Cmp(r.Right) <= 0
}

// Clone returns a deep copy; edges are never shared between records.
func (r BigRect) Clone() BigRect {
	return BigRect{
		Top:    cloneInt(r.Top),
		Left:   cloneInt(r.Left),
		Bottom: cloneInt(r.Bottom),
		Right:  cloneInt(r.Right),
	}
}

// Equal compares edges by value. Nil edges compare equal to each other only.
func (r BigRect) Equal(o BigRect) bool {
	return eqInt(r.Top, o.Top) && eqInt(r.Left, o.Left) &&
		eqInt(r.Bottom, o.Bottom) && eqInt(r.Right, o.Right)
}

// Ints converts the rectangle to int edges. ok is false if any edge
// does not fit in an int.
func (r BigRect) Ints() (Rect, bool) {
	if r.Top == nil || r.Left == nil || r.Bottom == nil || r.Right == nil {
		return Rect{}, false
	}
	for _, v := range []*big.Int{r.Top, r.Left, r.Bottom, r.Right} {
		if !v.IsInt64() || v.Int64() != int64(int(v.Int64())) {
			return Rect{}, false
		}
	}
	return Rect{
		Top:    int(r.Top.Int64()),
		Left:   int(r.Left.Int64()),
		Bottom: int(r.Bottom.Int64()),
		Right:  int(r.Right.Int64()),
	}, true
}

func (r BigRect) String() string {
	if !r.Exists() {
		return "[none]"
	}
	return fmt.Sprintf("[%s,%s..%s,%s]", r.Left, r.Top, r.Right, r.Bottom)
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func eqInt(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Cmp(b) == 0
}
