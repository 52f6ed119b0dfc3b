package tui

import (
	"math/big"
	"testing"

	"github.com/bethropolis/cellundo/internal/theme"
	"github.com/bethropolis/cellundo/internal/types"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGrid struct {
	live map[types.Cell]bool
	sel  types.BigRect
	vp   types.Viewport
}

func (g *fakeGrid) Cell(x, y int) int {
	if g.live[types.Cell{X: x, Y: y}] {
		return 1
	}
	return 0
}
func (g *fakeGrid) Selection() types.BigRect { return g.sel }
func (g *fakeGrid) Viewport() types.Viewport { return g.vp }

func newSimTUI(t *testing.T, w, h int) (*TUI, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	ui, err := NewWithScreen(s)
	require.NoError(t, err)
	s.SetSize(w, h)
	t.Cleanup(ui.Close)
	return ui, s
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, types.Cell{X: -5, Y: -2}, Origin(types.NewViewport(0, 0, 0, 0), 10, 4))
	assert.Equal(t, types.Cell{X: 95, Y: -52}, Origin(types.NewViewport(100, -50, 0, 0), 10, 4))

	huge := types.Viewport{X: new(big.Int).Lsh(big.NewInt(1), 80), Y: big.NewInt(0)}
	assert.Equal(t, 1<<31-1-5, Origin(huge, 10, 4).X)
}

func TestFollow(t *testing.T) {
	vp := types.NewViewport(0, 0, 1, 2)

	same, moved := Follow(vp, types.Cell{X: 4, Y: 1}, 10, 4)
	assert.False(t, moved)
	assert.True(t, same.Equal(vp))

	next, moved := Follow(vp, types.Cell{X: 5, Y: 0}, 10, 4)
	require.True(t, moved)
	assert.Equal(t, int64(5), next.X.Int64())
	assert.Equal(t, int64(0), next.Y.Int64())
	assert.Equal(t, 1, next.Mag)
	assert.Equal(t, 2, next.Warp)
	assert.Equal(t, int64(0), vp.X.Int64())
}

func TestDrawGrid(t *testing.T) {
	ui, s := newSimTUI(t, 10, 5)
	g := &fakeGrid{
		live: map[types.Cell]bool{{X: 0, Y: 0}: true, {X: 1, Y: 0}: true},
		sel:  types.BigRectFrom(types.Rect{Top: 0, Left: 1, Bottom: 0, Right: 2}),
		vp:   types.NewViewport(0, 0, 0, 0),
	}
	th := &theme.Dark
	ui.DrawGrid(g, types.Cell{X: -5, Y: -2}, th, 4)

	r, _, style, _ := s.GetContent(5, 2)
	assert.Equal(t, LiveRune, r)
	assert.Equal(t, th.GetStyle(theme.StyleCell), style)

	r, _, style, _ = s.GetContent(6, 2)
	assert.Equal(t, LiveRune, r)
	assert.Equal(t, th.GetStyle(theme.StyleCellSelected), style)

	r, _, style, _ = s.GetContent(7, 2)
	assert.Equal(t, DeadRune, r)
	assert.Equal(t, th.GetStyle(theme.StyleSelection), style)

	_, _, style, _ = s.GetContent(0, 0)
	assert.Equal(t, th.GetStyle(theme.StyleCursor), style)
}
