// Package history records edits to a cellular automaton document and undoes
// or redoes them, including generation runs restored from snapshots and
// whole script runs grouped into one step.
package history

import (
	"errors"
	"fmt"

	"github.com/bethropolis/cellundo/internal/event"
	"github.com/bethropolis/cellundo/internal/logger"
	"github.com/bethropolis/cellundo/internal/snapshot"
)

const logTag = "history"

// ReuseMode selects how a run that starts where the previous one ended
// obtains its "before" snapshot.
type ReuseMode int

const (
	// ReuseCopy duplicates the previous run's snapshot.
	ReuseCopy ReuseMode = iota
	// ReuseShare references the previous run's snapshot.
	ReuseShare
)

// ParseReuseMode maps a config value to a ReuseMode. Unknown values copy.
func ParseReuseMode(s string) ReuseMode {
	if s == "share" {
		return ReuseShare
	}
	return ReuseCopy
}

// Options tunes a Manager.
type Options struct {
	// CellLimit caps the cells recorded per gesture (0 = unlimited).
	CellLimit int
	Reuse     ReuseMode
}

// Manager owns the undo and redo stacks for one document.
// The top of each stack is its last element. A Manager is used from a
// single goroutine.
type Manager struct {
	host   Host
	store  *snapshot.Store
	events *event.Manager
	opts   Options

	undo []Change
	redo []Change

	cells *CellBuffer

	// generation run bookkeeping
	startCount int
	pending    *GenerationChange

	// script bookkeeping
	saveCellChanges bool
	saveGenChanges  bool
	pendingDirty    bool

	fixSetGen bool

	undoLabel string
	redoLabel string
}

// NewManager creates a history manager for host. Snapshots are kept in store,
// whose guard is set to protect the host's starting pattern.
func NewManager(host Host, store *snapshot.Store, events *event.Manager, opts Options) *Manager {
	m := &Manager{
		host:   host,
		store:  store,
		events: events,
		opts:   opts,
		cells:  NewCellBuffer(opts.CellLimit),
	}
	store.SetGuard(m.inUseByHost)
	if host.ScriptRunning() {
		// a script created this document
		m.undo = append(m.undo, &ScriptStart{})
	}
	return m
}

// inUseByHost compares h by value against every place the host keeps
// a reference to its starting pattern.
func (m *Manager) inUseByHost(h snapshot.Handle) bool {
	start := m.host.Start()
	v := string(h)
	return h == start.Resource || v == start.File || v == m.host.FileState().CurrFile
}

func (m *Manager) warn(msg string) {
	logger.WarnTagf(logTag, "%s", msg)
	m.events.Dispatch(event.TypeWarning, event.WarningData{Message: msg})
}

func (m *Manager) releaseHandle(h snapshot.Handle) {
	if err := m.store.Release(h); err != nil {
		m.warn(fmt.Sprintf("Failed to delete snapshot: %v", err))
	}
}

func releaseAll(m *Manager, changes []Change) {
	for _, c := range changes {
		c.release(m)
	}
}

func (m *Manager) clearRedo() {
	if len(m.redo) == 0 {
		return
	}
	releaseAll(m, m.redo)
	m.redo = nil
}

// push records c as the newest change, discarding the redo history.
func (m *Manager) push(c Change) {
	m.clearRedo()
	m.undo = append(m.undo, c)
	logger.DebugTagf(logTag, "recorded %T %q (undo=%d)", c, c.Label(), len(m.undo))
	m.updateLabels(false)
}

func top(stack []Change) Change {
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// CanUndo reports whether Undo would do anything right now.
func (m *Manager) CanUndo() bool {
	return len(m.undo) > 0 && m.quiescent()
}

// CanRedo reports whether Redo would do anything right now.
func (m *Manager) CanRedo() bool {
	return len(m.redo) > 0 && m.quiescent()
}

func (m *Manager) quiescent() bool {
	return !m.host.ScriptRunning() && !m.host.Modal().Any()
}

// Undo reverts the newest change. A script finish marker reverts the whole
// script run. It returns false without error when there is nothing to undo
// or the user aborted; the stacks are then unchanged.
func (m *Manager) Undo() (bool, error) {
	if !m.CanUndo() {
		return false, nil
	}
	if _, ok := top(m.undo).(*ScriptFinish); ok {
		return m.replayScript(true)
	}
	return m.step(true, false)
}

// Redo reapplies the newest undone change. A script start marker replays
// the whole script run.
func (m *Manager) Redo() (bool, error) {
	if !m.CanRedo() {
		return false, nil
	}
	if _, ok := top(m.redo).(*ScriptStart); ok {
		return m.replayScript(false)
	}
	return m.step(false, false)
}

// stacks returns the source and destination stacks for a direction.
func (m *Manager) stacks(undo bool) (*[]Change, *[]Change) {
	if undo {
		return &m.undo, &m.redo
	}
	return &m.redo, &m.undo
}

// step applies the change on top of the source stack and moves it across.
// When silent, failures are logged and the change moves anyway so a grouped
// replay stays aligned with its markers.
func (m *Manager) step(undo, silent bool) (bool, error) {
	src, dst := m.stacks(undo)
	c := top(*src)
	if c == nil {
		return false, fmt.Errorf("%w: step on empty stack", ErrInvariant)
	}

	if err := c.apply(m, undo); err != nil {
		switch {
		case errors.Is(err, ErrInvariant):
			logger.Errorf("History: %v", err)
			return false, err
		case silent:
			logger.WarnTagf(logTag, "grouped step %q failed: %v", c.Label(), err)
		case errors.Is(err, ErrAborted):
			logger.DebugTagf(logTag, "%q aborted", c.Label())
			return false, nil
		default:
			return false, err
		}
	}

	*src = (*src)[:len(*src)-1]
	*dst = append(*dst, c)

	if d, ok := c.(dirtyTracked); ok {
		pair := d.dirtyPair()
		if pair.Before != pair.After {
			dirty := pair.After
			if undo {
				dirty = pair.Before
			}
			m.host.SetDirty(dirty)
			m.events.Dispatch(event.TypeDirtyChanged, event.DirtyChangedData{Dirty: dirty})
		}
	}

	if !silent {
		logger.DebugTagf(logTag, "%s %q (undo=%d redo=%d)", direction(undo), c.Label(), len(m.undo), len(m.redo))
		m.patternChanged()
		m.updateLabels(false)
	}
	return true, nil
}

func direction(undo bool) string {
	if undo {
		return "undid"
	}
	return "redid"
}

// replayScript moves a whole script group between the stacks.
func (m *Manager) replayScript(undo bool) (bool, error) {
	src, dst := m.stacks(undo)
	closing := top(*src)
	*src = (*src)[:len(*src)-1]
	*dst = append(*dst, closing)

	for {
		c := top(*src)
		if c == nil {
			err := fmt.Errorf("%w: %w", ErrInvariant, ErrNoStartMarker)
			logger.Errorf("History: %v", err)
			return false, err
		}
		if isOpening(c, undo) {
			*src = (*src)[:len(*src)-1]
			*dst = append(*dst, c)
			break
		}
		if _, err := m.step(undo, true); err != nil {
			return false, err
		}
	}

	logger.DebugTagf(logTag, "%s script changes (undo=%d redo=%d)", direction(undo), len(m.undo), len(m.redo))
	m.patternChanged()
	m.updateLabels(false)
	return true, nil
}

// isOpening reports whether c ends a grouped replay in the given direction.
func isOpening(c Change, undo bool) bool {
	if undo {
		_, ok := c.(*ScriptStart)
		return ok
	}
	_, ok := c.(*ScriptFinish)
	return ok
}

func (m *Manager) patternChanged() {
	m.events.Dispatch(event.TypePatternChanged, event.PatternChangedData{
		Generation: m.host.Generation().String(),
		Rule:       m.host.Rule(),
	})
}

// undoLabelOf and redoLabelOf show the generation a GenerationChange returns to.
func undoLabelOf(c Change) string {
	if g, ok := c.(*GenerationChange); ok {
		return toGen + g.OldGen.String()
	}
	return c.Label()
}

func redoLabelOf(c Change) string {
	if g, ok := c.(*GenerationChange); ok {
		return toGen + g.NewGen.String()
	}
	return c.Label()
}

// updateLabels refreshes the labels and notifies subscribers. Labels are
// frozen while a script runs unless force is set.
func (m *Manager) updateLabels(force bool) {
	if !force && m.host.ScriptRunning() {
		return
	}
	m.undoLabel, m.redoLabel = "", ""
	if c := top(m.undo); c != nil {
		m.undoLabel = undoLabelOf(c)
	}
	if c := top(m.redo); c != nil {
		m.redoLabel = redoLabelOf(c)
	}

	data := event.HistoryChangedData{}
	if m.undoLabel != "" {
		data.UndoLabel = "Undo " + m.undoLabel
	}
	if m.redoLabel != "" {
		data.RedoLabel = "Redo " + m.redoLabel
	}
	m.events.Dispatch(event.TypeHistoryChanged, data)
}

// UndoLabel returns the action Undo would revert, or "".
func (m *Manager) UndoLabel() string { return m.undoLabel }

// RedoLabel returns the action Redo would reapply, or "".
func (m *Manager) RedoLabel() string { return m.redoLabel }

// UndoLen and RedoLen report the stack depths.
func (m *Manager) UndoLen() int { return len(m.undo) }
func (m *Manager) RedoLen() int { return len(m.redo) }

// Peek returns the change on top of the undo (or redo) stack, or nil.
func (m *Manager) Peek(undo bool) Change {
	if undo {
		return top(m.undo)
	}
	return top(m.redo)
}

// Clear drops both stacks and any pending bookkeeping. While a script runs
// a fresh start marker is pushed so the script's finish marker still matches.
func (m *Manager) Clear() {
	m.cells.Discard()
	if m.pending != nil {
		m.releaseHandle(m.pending.OldHandle)
		m.pending = nil
	}
	m.startCount = 0

	releaseAll(m, m.undo)
	releaseAll(m, m.redo)
	m.undo, m.redo = nil, nil
	m.fixSetGen = false

	if m.host.ScriptRunning() {
		m.undo = append(m.undo, &ScriptStart{})
		m.saveCellChanges = false
		m.saveGenChanges = false
	} else {
		m.updateLabels(false)
	}
	logger.DebugTagf(logTag, "cleared")
}

// NotifyViewRemoved invalidates every name change that refers to id.
func (m *Manager) NotifyViewRemoved(id ViewID) {
	n := 0
	for _, stack := range [][]Change{m.undo, m.redo} {
		for _, c := range stack {
			if nc, ok := c.(*NameChange); ok && nc.View == id {
				nc.View = ViewID{}
				n++
			}
		}
	}
	logger.DebugTagf(logTag, "view %s removed, %d name change(s) invalidated", id, n)
}
