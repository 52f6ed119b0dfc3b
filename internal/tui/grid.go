package tui

import (
	"math"
	"math/big"

	"github.com/bethropolis/cellundo/internal/theme"
	"github.com/bethropolis/cellundo/internal/types"
)

// Glyphs used for grid cells. One terminal column per cell.
const (
	LiveRune = 'O'
	DeadRune = ' '
)

// GridSource is what DrawGrid reads from a document.
type GridSource interface {
	Cell(x, y int) int
	Selection() types.BigRect
	Viewport() types.Viewport
}

// Origin returns the cell drawn at the top-left of a w x h area centred on v.
func Origin(v types.Viewport, w, h int) types.Cell {
	return types.Cell{X: clamp(v.X) - w/2, Y: clamp(v.Y) - h/2}
}

// clamp converts a viewport coordinate to an int. Positions beyond the
// 32-bit range are pinned to its edge.
func clamp(v *big.Int) int {
	if v == nil {
		return 0
	}
	if !v.IsInt64() {
		if v.Sign() < 0 {
			return math.MinInt32
		}
		return math.MaxInt32
	}
	n := v.Int64()
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	}
	return int(n)
}

// Follow returns v recentred on cursor when cursor lies outside the w x h
// area v shows. The bool reports whether v changed.
func Follow(v types.Viewport, cursor types.Cell, w, h int) (types.Viewport, bool) {
	if w <= 0 || h <= 0 {
		return v, false
	}
	o := Origin(v, w, h)
	visible := types.Rect{Top: o.Y, Left: o.X, Bottom: o.Y + h - 1, Right: o.X + w - 1}
	if visible.Contains(cursor) {
		return v, false
	}
	next := v.Clone()
	next.X = big.NewInt(int64(cursor.X))
	next.Y = big.NewInt(int64(cursor.Y))
	return next, true
}

// DrawGrid draws src into the top h rows of the screen, highlighting the
// selection and the cursor cell.
func (t *TUI) DrawGrid(src GridSource, cursor types.Cell, th *theme.Theme, h int) {
	w, _ := t.Size()
	if w <= 0 || h <= 0 {
		return
	}

	dead := th.GetStyle(theme.StyleDefault)
	live := th.GetStyle(theme.StyleCell)
	selDead := th.GetStyle(theme.StyleSelection)
	selLive := th.GetStyle(theme.StyleCellSelected)
	cursorStyle := th.GetStyle(theme.StyleCursor)

	sel, hasSel := src.Selection().Ints()
	o := Origin(src.Viewport(), w, h)

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			c := types.Cell{X: o.X + sx, Y: o.Y + sy}
			r, style := DeadRune, dead
			inSel := hasSel && sel.Contains(c)
			if src.Cell(c.X, c.Y) == 1 {
				r, style = LiveRune, live
				if inSel {
					style = selLive
				}
			} else if inSel {
				style = selDead
			}
			if c == cursor {
				style = cursorStyle
			}
			t.screen.SetContent(sx, sy, r, nil, style)
		}
	}
}
