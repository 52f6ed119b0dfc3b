// Package types holds the small value types shared by the document, the history
// engine and the terminal front end.
package types

import "fmt"

// Cell is a grid coordinate. X grows to the right, Y grows downwards.
type Cell struct {
	X int
	Y int
}

// Rect is a selection rectangle with inclusive int edges.
// It is the form used by rotation records, which only happen inside
// the getcell/setcell limits.
type Rect struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.Bottom < r.Top || r.Right < r.Left
}

// Width returns the number of columns covered.
func (r Rect) Width() int {
	if r.Empty() {
		return 0
	}
	return r.Right - r.Left + 1
}

// Height returns the number of rows covered.
func (r Rect) Height() int {
	if r.Empty() {
		return 0
	}
	return r.Bottom - r.Top + 1
}

// Contains reports whether c lies inside r.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.Left && c.X <= r.Right && c.Y >= r.Top && c.Y <= r.Bottom
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d..%d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}
