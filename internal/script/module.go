package script

import (
	"math/big"

	"github.com/bethropolis/cellundo/internal/grid"
	"github.com/bethropolis/cellundo/internal/types"
	lua "github.com/yuin/gopher-lua"
)

// module implements the g table scripts use to drive the editor.
type module struct {
	e *grid.Editor
}

func newModule(e *grid.Editor) *module {
	return &module{e: e}
}

func (m *module) funcs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"setcell": m.setcell,
		"getcell": m.getcell,
		"getpop":  m.getpop,
		"step":    m.step,
		"setrule": m.setrule,
		"getrule": m.getrule,
		"getgen":  m.getgen,
		"setgen":  m.setgen,
		"select":  m.sel,
		"flip":    m.flip,
		"rotate":  m.rotate,
		"setname": m.setname,
		"algo":    m.algo,
		"reset":   m.reset,
		"new":     m.newPattern,
	}
}

// raise reports err as a Lua error prefixed with the function name.
func raise(L *lua.LState, fn string, err error) int {
	L.RaiseError("%s: %v", fn, err)
	return 0
}

// setcell(x, y, state)
func (m *module) setcell(L *lua.LState) int {
	x, y := L.CheckInt(1), L.CheckInt(2)
	state := L.CheckInt(3)
	if state != 0 && state != 1 {
		L.ArgError(3, "state must be 0 or 1")
		return 0
	}
	if err := m.e.SetCell(x, y, state); err != nil {
		return raise(L, "setcell", err)
	}
	return 0
}

// getcell(x, y) -> 0 or 1
func (m *module) getcell(L *lua.LState) int {
	x, y := L.CheckInt(1), L.CheckInt(2)
	L.Push(lua.LNumber(m.e.Document().Cell(x, y)))
	return 1
}

// getpop() -> number of live cells
func (m *module) getpop(L *lua.LState) int {
	L.Push(lua.LNumber(m.e.Document().Population()))
	return 1
}

// step([n])
func (m *module) step(L *lua.LState) int {
	n := L.OptInt(1, 1)
	if n < 0 {
		L.ArgError(1, "negative step")
		return 0
	}
	if err := m.e.Step(n); err != nil {
		return raise(L, "step", err)
	}
	return 0
}

// setrule(rule)
func (m *module) setrule(L *lua.LState) int {
	if err := m.e.SetRule(L.CheckString(1)); err != nil {
		return raise(L, "setrule", err)
	}
	return 0
}

// getrule() -> "B3/S23"
func (m *module) getrule(L *lua.LState) int {
	L.Push(lua.LString(m.e.Document().Rule()))
	return 1
}

// getgen() -> decimal string; generation counts can exceed a Lua number
func (m *module) getgen(L *lua.LState) int {
	L.Push(lua.LString(m.e.Document().Generation().String()))
	return 1
}

// setgen(n) accepts a number or a decimal string.
func (m *module) setgen(L *lua.LState) int {
	gen, ok := new(big.Int).SetString(L.CheckString(1), 10)
	if !ok || gen.Sign() < 0 {
		L.ArgError(1, "generation must be a non-negative integer")
		return 0
	}
	if err := m.e.SetGeneration(gen); err != nil {
		return raise(L, "setgen", err)
	}
	return 0
}

// select(x, y, w, h); select() removes the selection
func (m *module) sel(L *lua.LState) int {
	if L.GetTop() == 0 {
		m.e.Deselect()
		return 0
	}
	x, y := L.CheckInt(1), L.CheckInt(2)
	w, h := L.CheckInt(3), L.CheckInt(4)
	if w <= 0 || h <= 0 {
		L.ArgError(3, "width and height must be positive")
		return 0
	}
	m.e.Select(types.BigRectFrom(types.Rect{Top: y, Left: x, Bottom: y + h - 1, Right: x + w - 1}))
	return 0
}

// flip("tb" | "lr")
func (m *module) flip(L *lua.LState) int {
	var topBottom bool
	switch L.CheckString(1) {
	case "tb":
		topBottom = true
	case "lr":
	default:
		L.ArgError(1, `expected "tb" or "lr"`)
		return 0
	}
	if err := m.e.Flip(topBottom); err != nil {
		return raise(L, "flip", err)
	}
	return 0
}

// rotate("cw" | "acw")
func (m *module) rotate(L *lua.LState) int {
	var clockwise bool
	switch L.CheckString(1) {
	case "cw":
		clockwise = true
	case "acw":
	default:
		L.ArgError(1, `expected "cw" or "acw"`)
		return 0
	}
	if err := m.e.Rotate(clockwise); err != nil {
		return raise(L, "rotate", err)
	}
	return 0
}

// setname(name)
func (m *module) setname(L *lua.LState) int {
	m.e.Rename(L.CheckString(1))
	return 0
}

// algo() toggles hashing.
func (m *module) algo(L *lua.LState) int {
	if err := m.e.ToggleAlgorithm(); err != nil {
		return raise(L, "algo", err)
	}
	return 0
}

// reset() returns to the starting pattern.
func (m *module) reset(L *lua.LState) int {
	if err := m.e.Reset(); err != nil {
		return raise(L, "reset", err)
	}
	return 0
}

// new([name]) empties the universe and forgets the history.
func (m *module) newPattern(L *lua.LState) int {
	if err := m.e.NewPattern(L.OptString(1, "untitled")); err != nil {
		return raise(L, "new", err)
	}
	return 0
}
