package grid

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/bethropolis/cellundo/internal/core/history"
	"github.com/bethropolis/cellundo/internal/event"
	"github.com/bethropolis/cellundo/internal/logger"
	"github.com/bethropolis/cellundo/internal/snapshot"
	"github.com/bethropolis/cellundo/internal/types"
)

// Editor performs user and script commands on a Document and records each
// one in the history.
type Editor struct {
	doc    *Document
	hist   *history.Manager
	events *event.Manager

	strokeDirty bool

	// drag selection
	anchor  types.Cell
	selPrev types.BigRect
}

// NewEditor creates a document and its history.
func NewEditor(store *snapshot.Store, events *event.Manager, name string, rule Rule, opts history.Options) (*Editor, error) {
	doc, err := NewDocument(store, name, rule)
	if err != nil {
		return nil, err
	}
	return &Editor{
		doc:    doc,
		hist:   history.NewManager(doc, store, events, opts),
		events: events,
	}, nil
}

// Document returns the edited document.
func (e *Editor) Document() *Document { return e.doc }

// History returns the history manager.
func (e *Editor) History() *history.Manager { return e.hist }

// Close releases the document's resources.
func (e *Editor) Close() error {
	e.hist.Clear()
	return e.doc.Close()
}

func (e *Editor) changed() {
	e.events.Dispatch(event.TypePatternChanged, event.PatternChangedData{
		Generation: e.doc.gen.String(),
		Rule:       e.doc.Rule(),
	})
}

func (e *Editor) markDirty() {
	if !e.doc.dirty {
		e.doc.dirty = true
		e.events.Dispatch(event.TypeDirtyChanged, event.DirtyChangedData{Dirty: true})
	}
}

// ToggleCell flips one cell as part of a drawing stroke. The stroke becomes
// a single change when EndStroke is called.
func (e *Editor) ToggleCell(x, y int) error {
	if e.doc.scripting {
		return e.SetCell(x, y, 1-e.doc.Cell(x, y))
	}
	if !e.doc.modal.Drawing {
		e.doc.modal.Drawing = true
		e.strokeDirty = e.doc.dirty
	}
	if err := e.doc.SetCell(x, y, 1-e.doc.Cell(x, y)); err != nil {
		return err
	}
	e.hist.SaveCellChange(x, y)
	e.markDirty()
	e.changed()
	return nil
}

// EndStroke finishes the current drawing stroke.
func (e *Editor) EndStroke() {
	if !e.doc.modal.Drawing {
		return
	}
	e.doc.modal.Drawing = false
	e.hist.RememberCellChanges("Drawing", e.strokeDirty)
}

// SetCell sets one cell to state.
func (e *Editor) SetCell(x, y, state int) error {
	if e.doc.Cell(x, y) == state {
		return nil
	}
	oldDirty := e.doc.dirty
	if err := e.doc.SetCell(x, y, state); err != nil {
		return err
	}
	if e.doc.scripting {
		e.hist.SaveScriptCellChange(x, y, oldDirty)
	} else {
		e.hist.SaveCellChange(x, y)
		e.hist.RememberCellChanges("Cell Change", oldDirty)
	}
	e.markDirty()
	e.changed()
	return nil
}

// Step advances n generations as one run.
func (e *Editor) Step(n int) error {
	if n <= 0 {
		return nil
	}
	e.EndStroke()
	if e.doc.gen.Cmp(e.doc.start.Gen) == 0 {
		if err := e.doc.SaveStartingPattern(); err != nil {
			return err
		}
	}

	e.hist.RememberGenStart()
	e.doc.modal.Generating = true
	e.doc.Advance(n)
	e.doc.modal.Generating = false
	e.hist.RememberGenFinish()

	logger.DebugTagf(logTag, "stepped to gen %s (pop %d)", e.doc.gen, len(e.doc.live))
	e.changed()
	return nil
}

func (e *Editor) selectionRect() (types.Rect, error) {
	r, ok := e.doc.sel.Ints()
	if !ok || r.Empty() {
		return r, ErrNoSelection
	}
	return r, nil
}

// Flip mirrors the selection. A cancelled flip records nothing.
func (e *Editor) Flip(topBottom bool) error {
	e.EndStroke()
	e.hist.SavePendingChanges()
	r, err := e.selectionRect()
	if err != nil {
		return err
	}
	oldDirty := e.doc.dirty
	if err := e.doc.FlipSelection(topBottom, r); err != nil {
		return err
	}
	e.markDirty()
	e.hist.RememberFlip(topBottom, oldDirty)
	e.changed()
	return nil
}

// Rotate turns the selection a quarter. When the selection holds the whole
// pattern the rotation is recorded as a pattern rotation, otherwise every
// changed cell is recorded.
func (e *Editor) Rotate(clockwise bool) error {
	e.EndStroke()
	e.hist.SavePendingChanges()
	r, err := e.selectionRect()
	if err != nil {
		return err
	}
	oldDirty := e.doc.dirty

	if pb, ok := e.doc.Bounds(); !ok || containsRect(r, pb) {
		if err := e.doc.RotateSelection(clockwise); err != nil {
			return err
		}
		e.markDirty()
		e.hist.RememberPatternRotation(clockwise, oldDirty)
		e.changed()
		return nil
	}

	next, nr, err := e.doc.rotation(r, clockwise)
	if err != nil {
		return err
	}
	// cells that change state: everything live in r plus everything in next
	_, rows := e.doc.cellsIn(r)
	touched := make(map[types.Cell]struct{}, len(next))
	for y, xs := range rows {
		for _, x := range xs {
			touched[types.Cell{X: x, Y: y}] = struct{}{}
		}
	}
	for c := range next {
		touched[c] = struct{}{}
	}
	for c := range touched {
		_, want := next[c]
		cur := e.doc.Cell(c.X, c.Y) == 1
		if want == cur {
			continue
		}
		if err := e.doc.SetCell(c.X, c.Y, 1-e.doc.Cell(c.X, c.Y)); err != nil {
			return err
		}
		e.hist.SaveCellChange(c.X, c.Y)
	}
	e.doc.sel = types.BigRectFrom(nr)
	e.markDirty()
	e.hist.RememberRotation(clockwise, r, nr, oldDirty)
	e.changed()
	return nil
}

func containsRect(outer, inner types.Rect) bool {
	return inner.Top >= outer.Top && inner.Bottom <= outer.Bottom &&
		inner.Left >= outer.Left && inner.Right <= outer.Right
}

// Select replaces the selection.
func (e *Editor) Select(sel types.BigRect) {
	e.EndStroke()
	e.hist.SavePendingChanges()
	prev := e.doc.Selection()
	e.doc.SetSelection(sel)
	e.hist.RememberSelection("Selection", prev)
}

// BeginSelect starts a drag selection anchored at c.
func (e *Editor) BeginSelect(c types.Cell) {
	e.EndStroke()
	e.hist.SavePendingChanges()
	e.EndSelect()
	e.anchor = c
	e.selPrev = e.doc.Selection()
	e.doc.modal.Selecting = true
	e.doc.SetSelection(types.BigRectFrom(types.Rect{Top: c.Y, Left: c.X, Bottom: c.Y, Right: c.X}))
}

// DragSelect extends the drag selection to the rectangle spanning the
// anchor and c.
func (e *Editor) DragSelect(c types.Cell) {
	if !e.doc.modal.Selecting {
		return
	}
	r := types.Rect{
		Top:    min(e.anchor.Y, c.Y),
		Left:   min(e.anchor.X, c.X),
		Bottom: max(e.anchor.Y, c.Y),
		Right:  max(e.anchor.X, c.X),
	}
	e.doc.SetSelection(types.BigRectFrom(r))
}

// EndSelect finishes the drag and records it as one selection change.
func (e *Editor) EndSelect() {
	if !e.doc.modal.Selecting {
		return
	}
	e.doc.modal.Selecting = false
	e.hist.RememberSelection("Selection", e.selPrev)
}

// Selecting reports whether a drag selection is in progress.
func (e *Editor) Selecting() bool { return e.doc.modal.Selecting }

// Deselect removes the selection.
func (e *Editor) Deselect() {
	e.Select(types.NoSelection())
}

// SetRule switches the rule.
func (e *Editor) SetRule(rule string) error {
	e.EndStroke()
	e.hist.SavePendingChanges()
	old := e.doc.Rule()
	if err := e.doc.SetRule(rule); err != nil {
		return err
	}
	e.hist.RememberRuleChange(old)
	e.changed()
	return nil
}

// ToggleAlgorithm switches hashing on or off.
func (e *Editor) ToggleAlgorithm() error {
	e.EndStroke()
	e.hist.SavePendingChanges()
	if err := e.doc.ToggleHashing(); err != nil {
		return err
	}
	e.hist.RememberAlgoChange()
	return nil
}

// SetGeneration changes the generation count without running. If the
// pattern is at its starting generation, or moves to or before it, the
// starting generation follows.
func (e *Editor) SetGeneration(gen *big.Int) error {
	e.EndStroke()
	e.hist.SavePendingChanges()
	oldGen := e.doc.Generation()
	if oldGen.Cmp(gen) == 0 {
		return nil
	}
	oldStartGen := new(big.Int).Set(e.doc.start.Gen)
	oldSave := e.doc.file.SaveStart

	if oldGen.Cmp(e.doc.start.Gen) == 0 || gen.Cmp(e.doc.start.Gen) <= 0 {
		e.doc.start.Gen = new(big.Int).Set(gen)
		e.doc.file.SaveStart = true
	}
	e.doc.SetGenCount(gen)
	err := e.hist.RememberSetGen(oldGen, gen, oldStartGen, oldSave)
	e.changed()
	return err
}

// Rename changes the current view's name.
func (e *Editor) Rename(name string) {
	e.EndStroke()
	e.hist.SavePendingChanges()
	id := e.doc.CurrentView()
	oldName, _ := e.doc.ViewName(id)
	oldFile := e.doc.file
	oldDirty := e.doc.dirty
	e.doc.SetViewName(id, name)
	e.hist.RememberNameChange(oldName, oldFile, oldDirty)
}

// SetFile records the file the current view was saved to, marking it clean.
func (e *Editor) SetFile(path, name string) {
	e.EndStroke()
	e.hist.SavePendingChanges()
	id := e.doc.CurrentView()
	oldName, _ := e.doc.ViewName(id)
	oldFile := e.doc.file
	oldDirty := e.doc.dirty

	e.doc.SetViewName(id, name)
	e.doc.file.CurrFile = path
	if e.doc.dirty {
		e.doc.dirty = false
		e.events.Dispatch(event.TypeDirtyChanged, event.DirtyChangedData{Dirty: false})
	}
	e.hist.RememberNameChange(oldName, oldFile, oldDirty)
}

// Reset returns to the starting pattern. Outside a script the history is
// wound back to match; inside one the reset is recorded as a run.
func (e *Editor) Reset() error {
	e.EndStroke()
	if e.doc.gen.Cmp(e.doc.start.Gen) == 0 {
		return nil
	}
	if e.doc.scripting {
		e.hist.SavePendingChanges()
		e.hist.RememberGenStart()
	}
	if err := e.doc.ResetToStart(); err != nil {
		if e.doc.scripting {
			e.hist.RememberGenFinish()
		}
		return err
	}
	e.changed()
	if e.doc.scripting {
		e.hist.RememberGenFinish()
		return nil
	}
	return e.hist.SyncUndoHistory()
}

// NewPattern empties the document and clears the history.
func (e *Editor) NewPattern(name string) error {
	e.EndStroke()
	e.doc.live = make(map[types.Cell]struct{})
	e.doc.gen = new(big.Int)
	e.doc.sel = types.NoSelection()
	e.doc.dirty = false
	e.doc.file = history.FileState{}
	e.doc.views[e.doc.current].name = name
	if err := e.doc.SaveStartingPattern(); err != nil {
		return err
	}
	e.hist.Clear()
	e.changed()
	return nil
}

// Open replaces the document with the pattern read from r and clears the
// history. The pattern's generation becomes the starting generation.
func (e *Editor) Open(name string, r io.Reader) error {
	p, err := ReadXRLE(r)
	if err != nil {
		return err
	}
	rule := e.doc.rule
	if p.Rule != "" {
		if rule, err = ParseRule(p.Rule); err != nil {
			return err
		}
	}
	live := make(map[types.Cell]struct{}, len(p.Cells))
	for _, c := range p.Cells {
		if !inLimits(c.X, c.Y) {
			return fmt.Errorf("open %s: cell %d,%d: %w", name, c.X, c.Y, ErrOutsideLimits)
		}
		live[c] = struct{}{}
	}

	e.EndStroke()
	e.EndSelect()
	e.doc.live = live
	e.doc.rule = rule
	e.doc.gen = new(big.Int).Set(p.Gen)
	e.doc.sel = types.NoSelection()
	e.doc.dirty = false
	e.doc.file = history.FileState{CurrFile: name}
	e.doc.views[e.doc.current].name = name
	if err := e.doc.SaveStartingPattern(); err != nil {
		return err
	}
	e.hist.Clear()
	logger.DebugTagf(logTag, "opened %s: %d cells at gen %s", name, len(live), p.Gen)
	e.changed()
	return nil
}

// CloneView adds a view onto the same pattern and history.
func (e *Editor) CloneView() history.ViewID {
	name, _ := e.doc.ViewName(e.doc.CurrentView())
	return e.doc.addView(name)
}

// SwitchView makes id the current view.
func (e *Editor) SwitchView(id history.ViewID) error {
	e.EndStroke()
	return e.doc.switchView(id)
}

// RemoveView deletes a view. Name changes recorded for it become no-ops.
func (e *Editor) RemoveView(id history.ViewID) error {
	e.EndStroke()
	if e.doc.findView(id) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownView, id)
	}
	if err := e.doc.removeView(id); err != nil {
		return err
	}
	e.hist.NotifyViewRemoved(id)
	e.events.Dispatch(event.TypeViewRemoved, event.ViewRemovedData{ViewID: id.String()})
	return nil
}

// Undo reverts the newest change. A false result with a nil error means
// nothing happened.
func (e *Editor) Undo() (bool, error) {
	e.EndStroke()
	return e.hist.Undo()
}

// Redo reapplies the newest undone change.
func (e *Editor) Redo() (bool, error) {
	e.EndStroke()
	return e.hist.Redo()
}

// BeginScript enters script mode. Changes made until EndScript undo as one.
func (e *Editor) BeginScript() error {
	if e.doc.scripting {
		return errors.New("script already running")
	}
	e.EndStroke()
	e.doc.scripting = true
	e.hist.BeginScript()
	e.events.Dispatch(event.TypeScriptStarted, nil)
	return nil
}

// EndScript leaves script mode and publishes the grouped change.
func (e *Editor) EndScript(scriptErr error) {
	if !e.doc.scripting {
		return
	}
	e.hist.EndScript()
	e.doc.scripting = false
	e.changed()
	e.events.Dispatch(event.TypeScriptFinished, event.ScriptFinishedData{Err: scriptErr})
}
