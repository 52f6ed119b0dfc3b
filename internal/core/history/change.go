package history

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/bethropolis/cellundo/internal/snapshot"
	"github.com/bethropolis/cellundo/internal/types"
	"github.com/google/uuid"
)

// Change is one reversible entry on the undo or redo stack.
// The set of implementations is closed.
type Change interface {
	// Label is the action name shown after "Undo" or "Redo".
	Label() string
	apply(m *Manager, undo bool) error
	release(m *Manager)
}

// DirtyPair is the document dirty flag before and after a change.
// Only changes that can alter saved file content carry one.
type DirtyPair struct {
	Before bool
	After  bool
}

type dirtyTracked interface {
	dirtyPair() DirtyPair
}

const toGen = "to Gen "

var errFlipBug = errors.New("flip bug detected: no valid selection")

// CellEdits toggles each recorded cell.
type CellEdits struct {
	Action string
	Cells  []int // x, y pairs
	Dirty  DirtyPair
}

// Flip flips the current selection.
type Flip struct {
	TopBottom bool
	Dirty     DirtyPair
}

// RotateCells is a selection rotation done cell by cell.
type RotateCells struct {
	Clockwise bool
	Cells     []int
	OldSel    types.Rect
	NewSel    types.Rect
	Dirty     DirtyPair
}

// RotatePattern is a rotation the host can redo by itself.
type RotatePattern struct {
	Clockwise bool
	Dirty     DirtyPair
}

// SelectionChange replaces the selection rectangle.
type SelectionChange struct {
	Action string
	Prev   types.BigRect
	Next   types.BigRect
}

// GenerationChange restores a document state from a snapshot.
// An empty handle means the starting pattern.
type GenerationChange struct {
	OldGen, NewGen         *big.Int
	OldHandle, NewHandle   snapshot.Handle
	OldRule, NewRule       string
	OldView, NewView       types.Viewport
	OldHashing, NewHashing bool
	PrevSel, NextSel       types.BigRect
	// Script is set when a script produced the run.
	Script bool
}

// SetGeneration replaces the generation count and starting-pattern bundle.
type SetGeneration struct {
	OldGen, NewGen     *big.Int
	OldStart, NewStart StartInfo
	OldFile, NewFile   FileState
}

// NameChange renames a view. View is uuid.Nil once the view is removed.
type NameChange struct {
	View             ViewID
	OldName, NewName string
	OldFile, NewFile FileState
	Dirty            DirtyPair
}

// RuleChange swaps the rule string.
type RuleChange struct {
	OldRule, NewRule string
}

// AlgorithmChange toggles hashing.
type AlgorithmChange struct{}

// ScriptStart and ScriptFinish bracket the changes made by one script.
type ScriptStart struct{}

type ScriptFinish struct{}

func (c *CellEdits) Label() string        { return c.Action }
func (c *Flip) Label() string             { return "Flip" }
func (c *RotateCells) Label() string      { return "Rotation" }
func (c *RotatePattern) Label() string    { return "Rotation" }
func (c *SelectionChange) Label() string  { return c.Action }
func (c *GenerationChange) Label() string { return toGen + c.OldGen.String() }
func (c *SetGeneration) Label() string    { return "Set Generation" }
func (c *NameChange) Label() string       { return "Name Change" }
func (c *RuleChange) Label() string       { return "Rule Change" }
func (c *AlgorithmChange) Label() string  { return "Hashing Change" }
func (c *ScriptStart) Label() string      { return "Script Changes" }
func (c *ScriptFinish) Label() string     { return "Script Changes" }

func (c *CellEdits) dirtyPair() DirtyPair     { return c.Dirty }
func (c *Flip) dirtyPair() DirtyPair          { return c.Dirty }
func (c *RotateCells) dirtyPair() DirtyPair   { return c.Dirty }
func (c *RotatePattern) dirtyPair() DirtyPair { return c.Dirty }
func (c *NameChange) dirtyPair() DirtyPair    { return c.Dirty }

func toggleCells(h Host, cells []int) error {
	for i := 0; i+1 < len(cells); i += 2 {
		x, y := cells[i], cells[i+1]
		if err := h.SetCell(x, y, 1-h.Cell(x, y)); err != nil {
			return fmt.Errorf("toggle cell %d,%d: %w", x, y, err)
		}
	}
	return nil
}

func (c *CellEdits) apply(m *Manager, undo bool) error {
	return toggleCells(m.host, c.Cells)
}

func (c *Flip) apply(m *Manager, undo bool) error {
	r, ok := m.host.Selection().Ints()
	if !ok || r.Empty() {
		m.warn("Flip bug detected in undo history!")
		return errFlipBug
	}
	return m.host.FlipSelection(c.TopBottom, r)
}

func (c *RotateCells) apply(m *Manager, undo bool) error {
	if err := toggleCells(m.host, c.Cells); err != nil {
		return err
	}
	if undo {
		m.host.SetSelection(types.BigRectFrom(c.OldSel))
	} else {
		m.host.SetSelection(types.BigRectFrom(c.NewSel))
	}
	return nil
}

func (c *RotatePattern) apply(m *Manager, undo bool) error {
	return m.host.RotateSelection(c.Clockwise != undo)
}

func (c *SelectionChange) apply(m *Manager, undo bool) error {
	if undo {
		m.host.SetSelection(c.Prev.Clone())
	} else {
		m.host.SetSelection(c.Next.Clone())
	}
	return nil
}

func (c *GenerationChange) apply(m *Manager, undo bool) error {
	st := GenState{Gen: c.NewGen, Rule: c.NewRule, View: c.NewView, Hashing: c.NewHashing}
	h, sel := c.NewHandle, c.NextSel
	if undo {
		st = GenState{Gen: c.OldGen, Rule: c.OldRule, View: c.OldView, Hashing: c.OldHashing}
		h, sel = c.OldHandle, c.PrevSel
	}
	st.Gen = new(big.Int).Set(st.Gen)
	st.View = st.View.Clone()

	var r io.Reader
	if !h.IsStarting() {
		rc, err := m.store.Open(h)
		if err != nil {
			return fmt.Errorf("restore gen %s: %w", st.Gen, err)
		}
		defer rc.Close()
		r = rc
	}
	if err := m.host.RestorePattern(st, r); err != nil {
		return fmt.Errorf("restore gen %s: %w", st.Gen, err)
	}
	m.host.SetSelection(sel.Clone())
	return nil
}

func (c *SetGeneration) apply(m *Manager, undo bool) error {
	gen, start, fs := c.NewGen, c.NewStart, c.NewFile
	if undo {
		gen, start, fs = c.OldGen, c.OldStart, c.OldFile
	}
	m.host.SetGenCount(new(big.Int).Set(gen))
	if c.OldStart.Resource == c.NewStart.Resource {
		// only the count and location changed; keep the current extras
		start = start.withExtras(m.host.Start())
	} else {
		start = start.Clone()
	}
	m.host.SetStart(start)
	m.host.SetFileState(fs)
	return nil
}

func (c *NameChange) apply(m *Manager, undo bool) error {
	if c.View == uuid.Nil {
		return nil
	}
	if undo {
		m.host.SetViewName(c.View, c.OldName)
		m.host.SetFileState(c.OldFile)
	} else {
		m.host.SetViewName(c.View, c.NewName)
		m.host.SetFileState(c.NewFile)
	}
	return nil
}

func (c *RuleChange) apply(m *Manager, undo bool) error {
	if undo {
		return m.host.SetRule(c.OldRule)
	}
	return m.host.SetRule(c.NewRule)
}

func (c *AlgorithmChange) apply(m *Manager, undo bool) error {
	return m.host.ToggleHashing()
}

func (c *ScriptStart) apply(m *Manager, undo bool) error {
	return fmt.Errorf("%w: script start marker replayed", ErrInvariant)
}

func (c *ScriptFinish) apply(m *Manager, undo bool) error {
	return fmt.Errorf("%w: script finish marker replayed", ErrInvariant)
}

func (c *CellEdits) release(m *Manager)       {}
func (c *Flip) release(m *Manager)            {}
func (c *RotateCells) release(m *Manager)     {}
func (c *RotatePattern) release(m *Manager)   {}
func (c *SelectionChange) release(m *Manager) {}
func (c *NameChange) release(m *Manager)      {}
func (c *RuleChange) release(m *Manager)      {}
func (c *AlgorithmChange) release(m *Manager) {}
func (c *ScriptStart) release(m *Manager)     {}
func (c *ScriptFinish) release(m *Manager)    {}

func (c *GenerationChange) release(m *Manager) {
	m.releaseHandle(c.OldHandle)
	m.releaseHandle(c.NewHandle)
}

func (c *SetGeneration) release(m *Manager) {
	m.releaseHandle(c.OldStart.Resource)
	m.releaseHandle(c.NewStart.Resource)
}
