package history_test

import (
	"errors"
	"math/big"
	"sort"
	"testing"

	"github.com/bethropolis/cellundo/internal/core/history"
	"github.com/bethropolis/cellundo/internal/event"
	"github.com/bethropolis/cellundo/internal/grid"
	"github.com/bethropolis/cellundo/internal/snapshot"
	"github.com/bethropolis/cellundo/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T, opts history.Options) (*grid.Editor, *snapshot.Store, *event.Manager) {
	t.Helper()
	store := snapshot.NewStore(snapshot.NewMemoryBackend(), false)
	events := event.NewManager()
	e, err := grid.NewEditor(store, events, "untitled", grid.Life, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = e.Close()
		_ = store.Close()
	})
	return e, store, events
}

func draw(t *testing.T, e *grid.Editor, cells ...types.Cell) {
	t.Helper()
	for _, c := range cells {
		require.NoError(t, e.ToggleCell(c.X, c.Y))
	}
	e.EndStroke()
}

func rect(top, left, bottom, right int) types.BigRect {
	return types.BigRectFrom(types.Rect{Top: top, Left: left, Bottom: bottom, Right: right})
}

// docState is everything a round trip must bring back.
type docState struct {
	Cells   []types.Cell
	Gen     string
	Rule    string
	Sel     string
	Hashing bool
	Dirty   bool
	Name    string
}

func stateOf(e *grid.Editor) docState {
	d := e.Document()
	cells := d.LiveCells()
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	name, _ := d.ViewName(d.CurrentView())
	return docState{
		Cells:   cells,
		Gen:     d.Generation().String(),
		Rule:    d.Rule(),
		Sel:     d.Selection().String(),
		Hashing: d.Hashing(),
		Dirty:   d.Dirty(),
		Name:    name,
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	var states []docState
	record := func() { states = append(states, stateOf(e)) }

	record()
	draw(t, e, types.Cell{X: 0, Y: 1}, types.Cell{X: 1, Y: 1}, types.Cell{X: 2, Y: 1})
	record()
	e.Select(rect(0, 0, 2, 2))
	record()
	require.NoError(t, e.Flip(true))
	record()
	require.NoError(t, e.Rotate(true))
	record()
	require.NoError(t, e.Step(2))
	record()
	require.NoError(t, e.SetRule("B36/S23"))
	record()
	require.NoError(t, e.ToggleAlgorithm())
	record()
	require.NoError(t, e.Step(1))
	record()
	require.NoError(t, e.SetGeneration(big.NewInt(10)))
	record()
	e.Rename("blinker")
	record()

	h := e.History()
	require.Equal(t, len(states)-1, h.UndoLen())

	for i := len(states) - 1; i > 0; i-- {
		ok, err := e.Undo()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, states[i-1], stateOf(e), "after undoing step %d", i)
	}
	assert.False(t, h.CanUndo())

	for i := 1; i < len(states); i++ {
		ok, err := e.Redo()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, states[i], stateOf(e), "after redoing step %d", i)
	}
	assert.False(t, h.CanRedo())
}

func TestNewChangeClearsRedo(t *testing.T) {
	e, store, _ := newEditor(t, history.Options{})
	draw(t, e, types.Cell{X: 0, Y: 0}, types.Cell{X: 1, Y: 0})
	require.NoError(t, e.Step(1))
	run, ok := e.History().Peek(true).(*history.GenerationChange)
	require.True(t, ok)
	require.True(t, store.Exists(run.NewHandle))

	_, err := e.Undo()
	require.NoError(t, err)
	assert.Equal(t, 1, e.History().RedoLen())

	draw(t, e, types.Cell{X: 5, Y: 5})
	assert.Equal(t, 0, e.History().RedoLen())
	assert.False(t, e.History().CanRedo())
	// the dropped run's snapshot went with it
	assert.False(t, store.Exists(run.NewHandle))
}

func TestUndoUnavailableWhileModalOrScripting(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	draw(t, e, types.Cell{X: 0, Y: 0})

	e.Document().SetModal(history.ModalState{Selecting: true})
	assert.False(t, e.History().CanUndo())
	ok, err := e.History().Undo()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, e.History().UndoLen())
	e.Document().SetModal(history.ModalState{})

	require.NoError(t, e.BeginScript())
	assert.False(t, e.History().CanUndo())
	ok, err = e.History().Undo()
	assert.NoError(t, err)
	assert.False(t, ok)
	e.EndScript(nil)

	assert.True(t, e.History().CanUndo())
}

func TestEmptyGestureRecordsNothing(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	assert.False(t, e.History().RememberCellChanges("Drawing", false))
	assert.Equal(t, 0, e.History().UndoLen())
	assert.False(t, e.Document().Dirty())
}

func TestCellLimitWarns(t *testing.T) {
	e, _, events := newEditor(t, history.Options{CellLimit: 2})
	var warnings []string
	events.Subscribe(event.TypeWarning, func(ev event.Event) bool {
		warnings = append(warnings, ev.Data.(event.WarningData).Message)
		return false
	})

	draw(t, e, types.Cell{X: 0, Y: 0}, types.Cell{X: 1, Y: 0}, types.Cell{X: 2, Y: 0})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "lack of memory")

	c, ok := e.History().Peek(true).(*history.CellEdits)
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 1, 0}, c.Cells)
}

func TestGenerationUndoRestoresCapturedState(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	d := e.Document()
	h := e.History()

	require.NoError(t, d.SetCell(0, 0, 1))
	require.NoError(t, d.SetCell(1, 0, 1))
	require.NoError(t, d.SetCell(0, 1, 1))
	require.NoError(t, d.SetCell(1, 1, 1))
	view := types.NewViewport(5, 6, 2, 1)
	d.SetViewport(view)
	sel := rect(-1, -1, 2, 2)
	d.SetSelection(sel)
	require.NoError(t, d.SaveStartingPattern())

	// the run changes the rule twice and wanders off
	h.RememberGenStart()
	d.Advance(1)
	require.NoError(t, d.SetRule("B36/S23"))
	d.Advance(1)
	require.NoError(t, d.SetRule("B2/S34"))
	d.SetViewport(types.NewViewport(-40, 7, -1, 3))
	d.SetSelection(types.NoSelection())
	require.NoError(t, d.ToggleHashing())
	h.RememberGenFinish()
	assert.Equal(t, "to Gen 0", h.UndoLabel())

	ok, err := h.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0", d.Generation().String())
	assert.Equal(t, "B3/S23", d.Rule())
	assert.True(t, view.Equal(d.Viewport()))
	assert.True(t, sel.Equal(d.Selection()))
	assert.False(t, d.Hashing())
	assert.Equal(t, 4, d.Population())
	assert.Equal(t, "to Gen 2", h.RedoLabel())

	ok, err = h.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", d.Generation().String())
	assert.Equal(t, "B2/S34", d.Rule())
	assert.True(t, types.NewViewport(-40, 7, -1, 3).Equal(d.Viewport()))
	assert.False(t, d.Selection().Exists())
	assert.True(t, d.Hashing())
}

func TestRunWithoutProgressRecordsNothing(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	h := e.History()
	h.RememberGenStart()
	h.RememberGenStart()
	h.RememberGenFinish()
	assert.Equal(t, 0, h.UndoLen())
	h.RememberGenFinish()
	assert.Equal(t, 0, h.UndoLen())
}

func TestConsecutiveRunsShareSnapshot(t *testing.T) {
	e, store, _ := newEditor(t, history.Options{Reuse: history.ReuseShare})
	draw(t, e, types.Cell{X: 0, Y: 0}, types.Cell{X: 1, Y: 0}, types.Cell{X: 2, Y: 0})

	require.NoError(t, e.Step(1))
	first := e.History().Peek(true).(*history.GenerationChange)
	assert.True(t, first.OldHandle.IsStarting())

	require.NoError(t, e.Step(1))
	second := e.History().Peek(true).(*history.GenerationChange)
	assert.Equal(t, first.NewHandle, second.OldHandle)
	assert.Equal(t, 2, store.Refs(first.NewHandle))

	_, err := e.Undo()
	require.NoError(t, err)
	assert.Equal(t, "1", e.Document().Generation().String())
	assert.Equal(t, 1, e.Document().Cell(1, -1))
}

func TestConsecutiveRunsCopySnapshot(t *testing.T) {
	e, store, _ := newEditor(t, history.Options{Reuse: history.ReuseCopy})
	draw(t, e, types.Cell{X: 0, Y: 0}, types.Cell{X: 1, Y: 0}, types.Cell{X: 2, Y: 0})

	require.NoError(t, e.Step(1))
	first := e.History().Peek(true).(*history.GenerationChange)
	require.NoError(t, e.Step(1))
	second := e.History().Peek(true).(*history.GenerationChange)

	assert.NotEqual(t, first.NewHandle, second.OldHandle)
	assert.Equal(t, 1, store.Refs(first.NewHandle))
	assert.True(t, store.Exists(second.OldHandle))
}

func TestInterveningChangeBreaksSnapshotReuse(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	draw(t, e, types.Cell{X: 0, Y: 0}, types.Cell{X: 1, Y: 0}, types.Cell{X: 2, Y: 0})
	require.NoError(t, e.Step(1))
	first := e.History().Peek(true).(*history.GenerationChange)

	require.NoError(t, e.ToggleAlgorithm())
	require.NoError(t, e.Step(1))
	second := e.History().Peek(true).(*history.GenerationChange)
	assert.NotEqual(t, first.NewHandle, second.OldHandle)
}

func TestGuardProtectsStartingPattern(t *testing.T) {
	e, store, _ := newEditor(t, history.Options{})
	d := e.Document()
	draw(t, e, types.Cell{X: 0, Y: 0}, types.Cell{X: 1, Y: 0}, types.Cell{X: 2, Y: 0})
	require.NoError(t, e.Step(10))

	run := e.History().Peek(true).(*history.GenerationChange)
	h := run.NewHandle
	require.False(t, h.IsStarting())

	// the host adopts the run's snapshot as its starting pattern
	start := d.Start()
	start.Resource = h
	start.File = string(h)
	start.Gen = big.NewInt(10)
	d.SetStart(start)
	assert.Equal(t, 2, store.Refs(h))

	e.History().Clear()
	assert.Equal(t, 1, store.Refs(h))

	// a stray release of the host's reference must not delete the pattern
	require.NoError(t, store.Release(h))
	assert.Equal(t, 0, store.Refs(h))
	assert.True(t, store.Exists(h))
}

func TestAbortedUndoLeavesStacks(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	draw(t, e, types.Cell{X: 0, Y: 0})
	e.Select(rect(0, 0, 1, 1))
	require.NoError(t, e.Flip(true))
	require.Equal(t, 3, e.History().UndoLen())

	e.Document().SetCanceler(func() bool { return true })
	ok, err := e.Undo()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, e.History().UndoLen())
	assert.Equal(t, 0, e.History().RedoLen())
	assert.Equal(t, "Flip", e.History().UndoLabel())
	assert.Equal(t, 1, e.Document().Cell(0, 1))

	e.Document().SetCanceler(nil)
	ok, err = e.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, e.Document().Cell(0, 0))
}

func TestDirtyFlagFollowsUndo(t *testing.T) {
	e, _, events := newEditor(t, history.Options{})
	var flips []bool
	events.Subscribe(event.TypeDirtyChanged, func(ev event.Event) bool {
		flips = append(flips, ev.Data.(event.DirtyChangedData).Dirty)
		return false
	})

	draw(t, e, types.Cell{X: 3, Y: 3})
	assert.True(t, e.Document().Dirty())

	_, err := e.Undo()
	require.NoError(t, err)
	assert.False(t, e.Document().Dirty())
	_, err = e.Redo()
	require.NoError(t, err)
	assert.True(t, e.Document().Dirty())
	assert.Equal(t, []bool{true, false, true}, flips)
}

func TestSelectionLabels(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	e.Select(rect(0, 0, 4, 4))
	assert.Equal(t, "Selection", e.History().UndoLabel())

	// unchanged selection records nothing
	e.Select(rect(0, 0, 4, 4))
	assert.Equal(t, 1, e.History().UndoLen())

	e.Deselect()
	assert.Equal(t, "Deselection", e.History().UndoLabel())

	_, err := e.Undo()
	require.NoError(t, err)
	assert.True(t, rect(0, 0, 4, 4).Equal(e.Document().Selection()))
	assert.Equal(t, "Deselection", e.History().RedoLabel())
}

func TestScriptChangesUndoAsOne(t *testing.T) {
	e, _, events := newEditor(t, history.Options{})
	var labels []event.HistoryChangedData
	events.Subscribe(event.TypeHistoryChanged, func(ev event.Event) bool {
		labels = append(labels, ev.Data.(event.HistoryChangedData))
		return false
	})
	before := stateOf(e)

	require.NoError(t, e.BeginScript())
	require.NoError(t, e.SetCell(0, 1, 1))
	require.NoError(t, e.SetCell(1, 1, 1))
	require.NoError(t, e.SetCell(2, 1, 1))
	require.NoError(t, e.Step(1))
	require.NoError(t, e.Step(1))
	require.NoError(t, e.SetRule("B36/S23"))
	assert.Empty(t, labels, "labels stay frozen while a script runs")
	e.EndScript(nil)

	after := stateOf(e)
	require.NotEmpty(t, labels)
	assert.Equal(t, "Undo Script Changes", labels[len(labels)-1].UndoLabel)

	// start marker, cells, one coalesced run, rule, finish marker
	assert.Equal(t, 5, e.History().UndoLen())
	assert.IsType(t, &history.ScriptFinish{}, e.History().Peek(true))

	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, stateOf(e))
	assert.Equal(t, 0, e.History().UndoLen())
	assert.Equal(t, "Script Changes", e.History().RedoLabel())

	ok, err = e.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, after, stateOf(e))
	assert.Equal(t, "2", after.Gen)
	assert.Equal(t, "B36/S23", after.Rule)
}

func TestEmptyScriptLeavesNoEntry(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	draw(t, e, types.Cell{X: 0, Y: 0})

	require.NoError(t, e.BeginScript())
	require.NoError(t, e.SetCell(0, 0, 1)) // already set
	e.EndScript(nil)

	assert.Equal(t, 1, e.History().UndoLen())
	assert.Equal(t, "Drawing", e.History().UndoLabel())
}

func TestNameChangeForRemovedView(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	d := e.Document()
	main := d.CurrentView()

	clone := e.CloneView()
	require.NoError(t, e.SwitchView(clone))
	e.Rename("clone")
	require.NoError(t, e.SwitchView(main))
	e.Rename("main")

	require.NoError(t, e.RemoveView(clone))

	_, err := e.Undo()
	require.NoError(t, err)
	name, _ := d.ViewName(main)
	assert.Equal(t, "untitled", name)

	// the removed view's record is kept but does nothing
	nc, ok := e.History().Peek(true).(*history.NameChange)
	require.True(t, ok)
	assert.Equal(t, history.ViewID{}, nc.View)
	ok, err = e.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	name, _ = d.ViewName(main)
	assert.Equal(t, "untitled", name)

	_, err = e.Redo()
	require.NoError(t, err)
	_, err = e.Redo()
	require.NoError(t, err)
	name, _ = d.ViewName(main)
	assert.Equal(t, "main", name)
}

func TestResetSyncsHistory(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	draw(t, e, types.Cell{X: 0, Y: 1}, types.Cell{X: 1, Y: 1}, types.Cell{X: 2, Y: 1})
	require.NoError(t, e.Step(1))
	require.NoError(t, e.SetRule("B36/S23"))
	require.NoError(t, e.Step(2))
	require.Equal(t, 4, e.History().UndoLen())

	require.NoError(t, e.Reset())
	assert.Equal(t, "0", e.Document().Generation().String())
	assert.Equal(t, 1, e.History().UndoLen(), "drawing stays undoable")
	assert.Equal(t, 3, e.History().RedoLen())

	// redo replays from the reset state
	_, err := e.Redo()
	require.NoError(t, err)
	assert.Equal(t, "1", e.Document().Generation().String())
}

func TestResetSyncsScriptedRun(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	draw(t, e, types.Cell{X: 0, Y: 1}, types.Cell{X: 1, Y: 1}, types.Cell{X: 2, Y: 1})

	require.NoError(t, e.BeginScript())
	require.NoError(t, e.Step(2))
	e.EndScript(nil)
	require.Equal(t, 4, e.History().UndoLen())

	require.NoError(t, e.Reset())
	assert.Equal(t, 1, e.History().UndoLen())
	assert.Equal(t, 3, e.History().RedoLen())

	ok, err := e.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", e.Document().Generation().String())
	assert.Equal(t, 4, e.History().UndoLen())
}

func TestSyncWithoutRunIsInvariantError(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	e.Select(rect(0, 0, 1, 1))

	err := e.History().SyncUndoHistory()
	assert.ErrorIs(t, err, history.ErrInvariant)
	assert.Equal(t, 0, e.History().UndoLen())
	assert.Equal(t, 1, e.History().RedoLen())
}

func TestAddGenChange(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	draw(t, e, types.Cell{X: 0, Y: 1}, types.Cell{X: 1, Y: 1}, types.Cell{X: 2, Y: 1})
	require.NoError(t, e.Step(5))

	h := e.History()
	h.Clear()
	assert.Equal(t, 0, h.UndoLen())
	h.AddGenChange()
	require.Equal(t, 1, h.UndoLen())
	assert.Equal(t, "to Gen 0", h.UndoLabel())

	_, err := e.Undo()
	require.NoError(t, err)
	assert.Equal(t, "0", e.Document().Generation().String())
	assert.Equal(t, 1, e.Document().Cell(0, 1))
}

func TestSetGenerationRotatesStartingResource(t *testing.T) {
	e, store, _ := newEditor(t, history.Options{})
	d := e.Document()
	require.NoError(t, d.SetCell(0, 0, 1))
	original := d.Start().Resource

	require.NoError(t, e.Step(10)) // the lone cell dies
	require.Equal(t, 0, d.Population())

	require.NoError(t, e.SetGeneration(big.NewInt(0)))
	assert.NotEqual(t, original, d.Start().Resource)
	assert.True(t, store.Exists(original))
	assert.Equal(t, "0", d.Start().Gen.String())

	// the next run saves its starting pattern into the fresh resource
	require.NoError(t, e.SetCell(5, 5, 1))
	require.NoError(t, e.Step(1))

	for i := 0; i < 3; i++ {
		_, err := e.Undo()
		require.NoError(t, err)
	}
	assert.Equal(t, "10", d.Generation().String())
	assert.Equal(t, original, d.Start().Resource)

	require.NoError(t, e.Reset())
	assert.Equal(t, "0", d.Generation().String())
	assert.Equal(t, 1, d.Cell(0, 0))
	assert.Equal(t, 0, d.Cell(5, 5))
}

var errDiskFull = errors.New("disk full")

// fullBackend fails every write while full is set.
type fullBackend struct {
	*snapshot.MemoryBackend
	full bool
}

func (b *fullBackend) Put(key string, data []byte) error {
	if b.full {
		return errDiskFull
	}
	return b.MemoryBackend.Put(key, data)
}

func TestSetGenerationWithoutFreshResource(t *testing.T) {
	backend := &fullBackend{MemoryBackend: snapshot.NewMemoryBackend()}
	store := snapshot.NewStore(backend, false)
	e, err := grid.NewEditor(store, event.NewManager(), "untitled", grid.Life, history.Options{})
	require.NoError(t, err)
	defer store.Close()
	defer e.Close()
	d := e.Document()

	glider := []types.Cell{{X: 1, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}}
	draw(t, e, glider...)
	require.NoError(t, e.Step(10))
	undoLen := e.History().UndoLen()
	start := d.Start()

	backend.full = true
	err = e.SetGeneration(big.NewInt(0))
	assert.ErrorIs(t, err, snapshot.ErrIO)
	assert.Equal(t, "10", d.Generation().String())
	assert.Equal(t, "0", d.Start().Gen.String())
	assert.Equal(t, start.Resource, d.Start().Resource)
	assert.Equal(t, undoLen, e.History().UndoLen())
	backend.full = false

	// a later run must not overwrite the pattern the first run restores
	require.NoError(t, e.Step(1))
	for i := 0; i < 2; i++ {
		ok, err := e.Undo()
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, "0", d.Generation().String())
	assert.Equal(t, 5, d.Population())
	for _, c := range glider {
		assert.Equal(t, 1, d.Cell(c.X, c.Y), c)
	}

	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, d.Population())
	assert.False(t, e.History().CanUndo())
}

func TestRunAfterSetGenerationCompletesRecord(t *testing.T) {
	e, _, _ := newEditor(t, history.Options{})
	d := e.Document()
	require.NoError(t, d.SetCell(0, 0, 1))
	require.NoError(t, e.Step(10))
	require.NoError(t, e.SetGeneration(big.NewInt(0)))
	rotated := d.Start().Resource

	require.NoError(t, e.SetRule("B36/S23"))
	require.NoError(t, e.Step(1))

	for i := 0; i < 4; i++ {
		ok, err := e.Undo()
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, "B3/S23", d.Start().Rule)

	for i := 0; i < 2; i++ {
		ok, err := e.Redo()
		require.NoError(t, err)
		require.True(t, ok)
	}
	// the set generation record now carries what the later run saved
	assert.Equal(t, "0", d.Generation().String())
	assert.Equal(t, rotated, d.Start().Resource)
	assert.Equal(t, "B36/S23", d.Start().Rule)
}

func TestReuseModeDefaultsToCopy(t *testing.T) {
	assert.Equal(t, history.ReuseCopy, history.Options{}.Reuse)
	for in, want := range map[string]history.ReuseMode{
		"":      history.ReuseCopy,
		"copy":  history.ReuseCopy,
		"bogus": history.ReuseCopy,
		"share": history.ReuseShare,
	} {
		assert.Equal(t, want, history.ParseReuseMode(in), in)
	}
}
