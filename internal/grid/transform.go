package grid

import (
	"fmt"
	"sort"

	"github.com/bethropolis/cellundo/internal/core/history"
	"github.com/bethropolis/cellundo/internal/types"
)

// cellsIn returns the live cells inside r grouped by row, rows ascending.
func (d *Document) cellsIn(r types.Rect) ([]int, map[int][]int) {
	rows := make(map[int][]int)
	for c := range d.live {
		if r.Contains(c) {
			rows[c.Y] = append(rows[c.Y], c.X)
		}
	}
	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Ints(ys)
	return ys, rows
}

// transformed maps every live cell in r through f, checking for
// cancellation once per row. Nothing is modified.
func (d *Document) transformed(r types.Rect, f func(x, y int) types.Cell) (map[types.Cell]struct{}, error) {
	ys, rows := d.cellsIn(r)
	out := make(map[types.Cell]struct{})
	for _, y := range ys {
		if d.cancelled() {
			return nil, history.ErrAborted
		}
		for _, x := range rows[y] {
			out[f(x, y)] = struct{}{}
		}
	}
	return out, nil
}

// replace clears old and sets the cells in next.
func (d *Document) replace(old types.Rect, next map[types.Cell]struct{}) {
	_, rows := d.cellsIn(old)
	for y, xs := range rows {
		for _, x := range xs {
			delete(d.live, types.Cell{X: x, Y: y})
		}
	}
	for c := range next {
		d.live[c] = struct{}{}
	}
}

// FlipSelection mirrors the cells in r. A cancelled flip changes nothing.
func (d *Document) FlipSelection(topBottom bool, r types.Rect) error {
	flip := func(x, y int) types.Cell {
		if topBottom {
			return types.Cell{X: x, Y: r.Top + r.Bottom - y}
		}
		return types.Cell{X: r.Left + r.Right - x, Y: y}
	}
	next, err := d.transformed(r, flip)
	if err != nil {
		return fmt.Errorf("flip: %w", err)
	}
	d.replace(r, next)
	return nil
}

// rotatedRect is r turned a quarter about its top-left corner.
func rotatedRect(r types.Rect) types.Rect {
	return types.Rect{
		Top:    r.Top,
		Left:   r.Left,
		Bottom: r.Top + (r.Right - r.Left),
		Right:  r.Left + (r.Bottom - r.Top),
	}
}

// rotation returns the cells of r rotated a quarter turn and the new
// selection. The result keeps r's top-left corner.
func (d *Document) rotation(r types.Rect, clockwise bool) (map[types.Cell]struct{}, types.Rect, error) {
	nr := rotatedRect(r)
	if !inLimits(nr.Right, nr.Bottom) {
		return nil, nr, fmt.Errorf("rotate: %w", ErrOutsideLimits)
	}
	f := func(x, y int) types.Cell {
		if clockwise {
			return types.Cell{X: r.Left + (r.Bottom - y), Y: r.Top + (x - r.Left)}
		}
		return types.Cell{X: r.Left + (y - r.Top), Y: r.Top + (r.Right - x)}
	}
	next, err := d.transformed(r, f)
	if err != nil {
		return nil, nr, fmt.Errorf("rotate: %w", err)
	}
	return next, nr, nil
}

// RotateSelection rotates the selected cells and the selection itself.
func (d *Document) RotateSelection(clockwise bool) error {
	r, ok := d.sel.Ints()
	if !ok || r.Empty() {
		return ErrNoSelection
	}
	next, nr, err := d.rotation(r, clockwise)
	if err != nil {
		return err
	}
	d.replace(r, next)
	d.sel = types.BigRectFrom(nr)
	return nil
}
