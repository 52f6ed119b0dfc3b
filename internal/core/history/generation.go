package history

import (
	"fmt"
	"math/big"

	"github.com/bethropolis/cellundo/internal/logger"
	"github.com/bethropolis/cellundo/internal/snapshot"
)

// RememberGenStart captures the state before a generation run.
// Nested calls are counted; only the outermost start and finish record.
// While a script runs, consecutive runs coalesce into one change that is
// completed by SavePendingChanges.
func (m *Manager) RememberGenStart() {
	m.startCount++
	if m.startCount > 1 {
		return
	}

	if m.host.ScriptRunning() {
		m.savePending(false)
		if m.saveGenChanges {
			return
		}
		m.saveGenChanges = true
	}

	if m.pending != nil {
		// a previous start was never finished
		m.releaseHandle(m.pending.OldHandle)
	}
	m.pending = m.captureBefore()
	start := m.host.Start()

	if start.Gen != nil && m.pending.OldGen.Cmp(start.Gen) == 0 {
		// the starting pattern already holds this state
		m.pending.OldHandle = snapshot.Starting
		if m.fixSetGen {
			m.fixPendingSetGen(start)
		}
		return
	}
	m.pending.OldHandle = m.beforeHandle(m.pending)
}

// captureBefore records the host's current generation, rule, view,
// algorithm and selection as the "old" side of a GenerationChange.
func (m *Manager) captureBefore() *GenerationChange {
	return &GenerationChange{
		OldGen:     new(big.Int).Set(m.host.Generation()),
		OldRule:    m.host.Rule(),
		OldView:    m.host.Viewport().Clone(),
		OldHashing: m.host.Hashing(),
		PrevSel:    m.host.Selection().Clone(),
	}
}

// beforeHandle reuses the snapshot of the previous run when it ended in a
// compatible state, and saves a fresh one otherwise.
func (m *Manager) beforeHandle(p *GenerationChange) snapshot.Handle {
	if prev, ok := top(m.undo).(*GenerationChange); ok &&
		prev.NewRule == p.OldRule && prev.NewHashing == p.OldHashing &&
		!prev.NewHandle.IsStarting() {
		switch m.opts.Reuse {
		case ReuseShare:
			logger.DebugTagf(logTag, "sharing snapshot %s", prev.NewHandle)
			return m.store.Retain(prev.NewHandle)
		case ReuseCopy:
			h, err := m.store.Copy(prev.NewHandle)
			if err == nil {
				return h
			}
			m.warn("Failed to copy temporary file!")
		}
	}
	return m.saveCurrent()
}

// saveCurrent snapshots the host. On failure the change falls back to the
// starting pattern.
func (m *Manager) saveCurrent() snapshot.Handle {
	h, err := m.store.Save(m.host.WritePattern)
	if err != nil {
		m.warn(fmt.Sprintf("Failed to save snapshot: %v", err))
		return snapshot.Starting
	}
	return h
}

// fixPendingSetGen patches the newest SetGeneration that rotated the
// starting resource with the starting info saved since. fixSetGen stays set:
// the run that follows may be dropped from the redo stack, and the record
// then needs patching again after the next run.
func (m *Manager) fixPendingSetGen(start StartInfo) {
	for i := len(m.undo) - 1; i >= 0; i-- {
		sg, ok := m.undo[i].(*SetGeneration)
		if !ok || sg.OldStart.Resource == sg.NewStart.Resource {
			continue
		}
		sg.NewStart = sg.NewStart.withExtras(start)
		logger.DebugTagf(logTag, "patched set generation record with starting info")
		return
	}
}

// RememberGenFinish records the run started by the matching RememberGenStart.
func (m *Manager) RememberGenFinish() {
	m.startCount--
	if m.startCount > 0 {
		return
	}
	if m.startCount < 0 {
		logger.WarnTagf(logTag, "RememberGenFinish without RememberGenStart")
		m.startCount = 0
		return
	}
	if m.host.ScriptRunning() && m.saveGenChanges {
		return
	}
	m.finishRun()
}

// finishRun pushes the pending GenerationChange, or drops it if the
// generation did not move.
func (m *Manager) finishRun() {
	c := m.pending
	m.pending = nil
	if c == nil {
		return
	}

	gen := m.host.Generation()
	if gen.Cmp(c.OldGen) == 0 {
		m.releaseHandle(c.OldHandle)
		return
	}

	c.NewHandle = snapshot.Starting
	if start := m.host.Start(); start.Gen == nil || gen.Cmp(start.Gen) != 0 {
		c.NewHandle = m.saveCurrent()
	}
	c.NewGen = new(big.Int).Set(gen)
	c.NewRule = m.host.Rule()
	c.NewView = m.host.Viewport().Clone()
	c.NewHashing = m.host.Hashing()
	c.NextSel = m.host.Selection().Clone()
	c.Script = m.host.ScriptRunning()
	m.push(c)
}

// AddGenChange records a run from the starting pattern to the current state.
// The host calls it after clearing history when it wants the run itself to
// remain undoable.
func (m *Manager) AddGenChange() {
	if len(m.undo) > 0 {
		m.warn("AddGenChange bug: undo list NOT empty!")
	}
	if m.pending != nil {
		m.releaseHandle(m.pending.OldHandle)
	}

	start := m.host.Start()
	m.pending = &GenerationChange{
		OldGen:     new(big.Int).Set(start.Gen),
		OldRule:    start.Rule,
		OldView:    start.View.Clone(),
		OldHashing: start.Hashing,
		PrevSel:    start.Selection.Clone(),
		OldHandle:  snapshot.Starting,
	}
	m.saveGenChanges = false
	m.finishRun()

	if len(m.undo) == 0 {
		m.warn("AddGenChange bug: undo list is empty!")
	}
}

// SyncUndoHistory winds the undo stack back after the host reset to its
// starting pattern. Changes move to the redo stack without being applied,
// up to and including the newest run that began at the starting generation
// (and its script start marker, for a scripted run).
func (m *Manager) SyncUndoHistory() error {
	startGen := m.host.Start().Gen
	for len(m.undo) > 0 {
		c := m.moveTop()
		g, ok := c.(*GenerationChange)
		if !ok || startGen == nil || g.OldGen.Cmp(startGen) != 0 {
			continue
		}
		if g.Script {
			for len(m.undo) > 0 {
				if _, ok := m.moveTop().(*ScriptStart); ok {
					break
				}
			}
		}
		logger.DebugTagf(logTag, "synced to starting generation %s", startGen)
		m.updateLabels(false)
		return nil
	}
	m.warn("Bug detected in SyncUndoHistory!")
	m.updateLabels(false)
	return fmt.Errorf("%w: no run from the starting generation", ErrInvariant)
}

// moveTop moves the top undo change to the redo stack without applying it.
func (m *Manager) moveTop() Change {
	c := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, c)
	return c
}
