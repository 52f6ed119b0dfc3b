package history

import "github.com/bethropolis/cellundo/internal/logger"

const scriptCellAction = "Script Cell Changes"

// BeginScript marks the start of a script's changes. Labels are left alone
// until EndScript.
func (m *Manager) BeginScript() {
	m.undo = append(m.undo, &ScriptStart{})
	m.saveCellChanges = false
	m.saveGenChanges = false
	logger.DebugTagf(logTag, "script started")
}

// EndScript completes pending script changes and closes the group. A script
// that changed nothing leaves no trace in the history.
func (m *Manager) EndScript() {
	m.SavePendingChanges()

	if len(m.undo) == 0 {
		m.warn("Bug detected in EndScript: missing script start marker!")
		m.updateLabels(true)
		return
	}
	if _, ok := top(m.undo).(*ScriptStart); ok {
		m.undo = m.undo[:len(m.undo)-1]
		logger.DebugTagf(logTag, "script made no changes")
	} else {
		m.undo = append(m.undo, &ScriptFinish{})
		logger.DebugTagf(logTag, "script finished (undo=%d)", len(m.undo))
	}
	m.updateLabels(true)
}

// SaveScriptCellChange records a cell toggled by a script. Consecutive script
// cell changes accumulate into one change; oldDirty is the dirty flag before
// the first of them.
func (m *Manager) SaveScriptCellChange(x, y int, oldDirty bool) {
	if !m.saveCellChanges {
		m.savePending(true)
		m.saveCellChanges = true
		m.pendingDirty = oldDirty
	}
	m.cells.Record(x, y)
}

// SavePendingChanges records accumulated script cell changes and any
// coalesced generation run. It does nothing outside a script.
func (m *Manager) SavePendingChanges() {
	if !m.host.ScriptRunning() {
		return
	}
	m.savePending(true)
}

func (m *Manager) savePending(checkGen bool) {
	if m.saveCellChanges {
		m.saveCellChanges = false
		m.RememberCellChanges(scriptCellAction, m.pendingDirty)
	}
	// a run still in progress is finished by its own RememberGenFinish
	if checkGen && m.saveGenChanges && m.startCount == 0 {
		m.saveGenChanges = false
		m.finishRun()
	}
}
