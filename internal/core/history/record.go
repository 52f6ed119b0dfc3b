package history

import (
	"github.com/bethropolis/cellundo/internal/types"
)

// SaveCellChange records that the cell at x, y was toggled by the current gesture.
func (m *Manager) SaveCellChange(x, y int) {
	m.cells.Record(x, y)
}

// ForgetCellChanges drops the cells recorded so far without creating a change.
func (m *Manager) ForgetCellChanges() {
	m.cells.Discard()
}

// RememberCellChanges turns the recorded cells into one change labelled action.
// It returns false and records nothing if no cell was recorded.
func (m *Manager) RememberCellChanges(action string, oldDirty bool) bool {
	cells, dropped := m.cells.Take()
	if len(cells) == 0 {
		return false
	}
	m.push(&CellEdits{
		Action: action,
		Cells:  cells,
		Dirty:  DirtyPair{Before: oldDirty, After: true},
	})
	if dropped {
		m.warn(lackOfMemory)
	}
	return true
}

const lackOfMemory = "Due to lack of memory, some changes can't be undone!"

// RememberFlip records a flip of the current selection.
func (m *Manager) RememberFlip(topBottom, oldDirty bool) {
	m.push(&Flip{TopBottom: topBottom, Dirty: DirtyPair{Before: oldDirty, After: true}})
}

// RememberPatternRotation records a rotation the host can repeat on its own.
func (m *Manager) RememberPatternRotation(clockwise, oldDirty bool) {
	m.push(&RotatePattern{Clockwise: clockwise, Dirty: DirtyPair{Before: oldDirty, After: true}})
}

// RememberRotation records a cell-by-cell rotation: the cells recorded with
// SaveCellChange plus the selection before and after.
func (m *Manager) RememberRotation(clockwise bool, oldSel, newSel types.Rect, oldDirty bool) {
	cells, dropped := m.cells.Take()
	m.push(&RotateCells{
		Clockwise: clockwise,
		Cells:     cells,
		OldSel:    oldSel,
		NewSel:    newSel,
		Dirty:     DirtyPair{Before: oldDirty, After: true},
	})
	if dropped {
		m.warn(lackOfMemory)
	}
}

// RememberSelection records a selection change from prev to the host's
// current selection. Nothing is recorded if the selection is unchanged or
// a generation run is in progress.
func (m *Manager) RememberSelection(action string, prev types.BigRect) {
	next := m.host.Selection()
	if next.Equal(prev) {
		return
	}
	if m.host.Modal().Generating {
		// the run records the overall change
		return
	}
	if !next.Exists() {
		action = "Deselection"
	}
	m.push(&SelectionChange{Action: action, Prev: prev.Clone(), Next: next.Clone()})
}

// RememberNameChange records a change to the current view's name or file
// state. Nothing is recorded if nothing changed.
func (m *Manager) RememberNameChange(oldName string, oldFile FileState, oldDirty bool) {
	view := m.host.CurrentView()
	newName, _ := m.host.ViewName(view)
	newFile := m.host.FileState()
	newDirty := m.host.Dirty()
	if oldName == newName && oldFile == newFile && oldDirty == newDirty {
		return
	}
	m.push(&NameChange{
		View:    view,
		OldName: oldName,
		NewName: newName,
		OldFile: oldFile,
		NewFile: newFile,
		Dirty:   DirtyPair{Before: oldDirty, After: newDirty},
	})
}

// RememberRuleChange records a switch from oldRule to the host's current rule.
func (m *Manager) RememberRuleChange(oldRule string) {
	m.SavePendingChanges()
	newRule := m.host.Rule()
	if oldRule == newRule {
		return
	}
	m.push(&RuleChange{OldRule: oldRule, NewRule: newRule})
}

// RememberAlgoChange records a hashing toggle.
func (m *Manager) RememberAlgoChange() {
	m.SavePendingChanges()
	m.push(&AlgorithmChange{})
}
