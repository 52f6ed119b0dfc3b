// Package grid is a sparse two-state cellular automaton document and the
// editor commands that record their changes in a history.Manager.
package grid

import (
	"fmt"
	"io"
	"math/big"

	"github.com/bethropolis/cellundo/internal/core/history"
	"github.com/bethropolis/cellundo/internal/logger"
	"github.com/bethropolis/cellundo/internal/snapshot"
	"github.com/bethropolis/cellundo/internal/types"
	"github.com/google/uuid"
)

const logTag = "grid"

// view is one named window onto the shared pattern.
type view struct {
	id        history.ViewID
	name      string
	startName string
}

// Document holds the pattern, simulation state and the starting-pattern
// bundle. It implements history.Host.
type Document struct {
	store *snapshot.Store

	live    map[types.Cell]struct{}
	rule    Rule
	gen     *big.Int
	hashing bool

	sel      types.BigRect
	viewport types.Viewport

	start history.StartInfo
	file  history.FileState

	views   []*view
	current int

	dirty     bool
	scripting bool
	modal     history.ModalState
	cancel    func() bool
}

var _ history.Host = (*Document)(nil)

// NewDocument creates an empty document named name whose starting pattern is
// kept in store.
func NewDocument(store *snapshot.Store, name string, rule Rule) (*Document, error) {
	d := &Document{
		store:    store,
		live:     make(map[types.Cell]struct{}),
		rule:     rule,
		gen:      new(big.Int),
		sel:      types.NoSelection(),
		viewport: types.NewViewport(0, 0, 0, 0),
		views:    []*view{{id: uuid.New(), name: name, startName: name}},
	}
	h, err := store.Reserve()
	if err != nil {
		return nil, fmt.Errorf("reserve starting pattern: %w", err)
	}
	d.start.Resource = h
	if err := d.SaveStartingPattern(); err != nil {
		return nil, err
	}
	return d, nil
}

// Close releases the starting pattern.
func (d *Document) Close() error {
	h := d.start.Resource
	d.start.Resource = snapshot.Starting
	return d.store.Release(h)
}

// SetCanceler installs the callback consulted during long transforms.
func (d *Document) SetCanceler(fn func() bool) { d.cancel = fn }

func (d *Document) cancelled() bool {
	return d.cancel != nil && d.cancel()
}

// Population returns the number of live cells.
func (d *Document) Population() int { return len(d.live) }

// LiveCells returns a copy of the live cells.
func (d *Document) LiveCells() []types.Cell {
	out := make([]types.Cell, 0, len(d.live))
	for c := range d.live {
		out = append(out, c)
	}
	return out
}

// Bounds returns the bounding box of the pattern.
func (d *Document) Bounds() (types.Rect, bool) { return bounds(d.live) }

func (d *Document) Cell(x, y int) int {
	if _, ok := d.live[types.Cell{X: x, Y: y}]; ok {
		return 1
	}
	return 0
}

func (d *Document) SetCell(x, y, state int) error {
	if !inLimits(x, y) {
		return fmt.Errorf("set cell %d,%d: %w", x, y, ErrOutsideLimits)
	}
	c := types.Cell{X: x, Y: y}
	if state == 0 {
		delete(d.live, c)
	} else {
		d.live[c] = struct{}{}
	}
	return nil
}

func (d *Document) Selection() types.BigRect { return d.sel.Clone() }

func (d *Document) SetSelection(sel types.BigRect) { d.sel = sel.Clone() }

func (d *Document) Viewport() types.Viewport { return d.viewport.Clone() }

// SetViewport moves the view.
func (d *Document) SetViewport(v types.Viewport) { d.viewport = v.Clone() }

func (d *Document) Generation() *big.Int { return new(big.Int).Set(d.gen) }

func (d *Document) SetGenCount(gen *big.Int) { d.gen = new(big.Int).Set(gen) }

func (d *Document) Rule() string { return d.rule.String() }

func (d *Document) SetRule(s string) error {
	r, err := ParseRule(s)
	if err != nil {
		return err
	}
	d.rule = r
	return nil
}

func (d *Document) Hashing() bool { return d.hashing }

func (d *Document) ToggleHashing() error {
	d.hashing = !d.hashing
	logger.DebugTagf(logTag, "hashing %v", d.hashing)
	return nil
}

// Advance runs n generations.
func (d *Document) Advance(n int) {
	for i := 0; i < n; i++ {
		d.live = nextGeneration(d.live, d.rule)
	}
	d.gen.Add(d.gen, big.NewInt(int64(n)))
}

func (d *Document) WritePattern(w io.Writer) error {
	return WriteXRLE(w, d.live, d.gen, d.rule.String())
}

// WriteSelection encodes the live cells inside the selection.
func (d *Document) WriteSelection(w io.Writer) error {
	r, ok := d.sel.Ints()
	if !ok || r.Empty() {
		return ErrNoSelection
	}
	in := make(map[types.Cell]struct{})
	for c := range d.live {
		if r.Contains(c) {
			in[c] = struct{}{}
		}
	}
	return WriteXRLE(w, in, d.gen, d.rule.String())
}

// loadPattern replaces the cells with the pattern read from r.
func (d *Document) loadPattern(r io.Reader) error {
	p, err := ReadXRLE(r)
	if err != nil {
		return err
	}
	live := make(map[types.Cell]struct{}, len(p.Cells))
	for _, c := range p.Cells {
		if !inLimits(c.X, c.Y) {
			return fmt.Errorf("load cell %d,%d: %w", c.X, c.Y, ErrOutsideLimits)
		}
		live[c] = struct{}{}
	}
	d.live = live
	return nil
}

// loadStartingPattern reloads the cells saved by SaveStartingPattern.
func (d *Document) loadStartingPattern() error {
	rc, err := d.store.Open(d.start.Resource)
	if err != nil {
		return fmt.Errorf("open starting pattern: %w", err)
	}
	defer rc.Close()
	return d.loadPattern(rc)
}

func (d *Document) RestorePattern(st history.GenState, r io.Reader) error {
	var err error
	if r == nil {
		err = d.loadStartingPattern()
	} else {
		err = d.loadPattern(r)
	}
	if err != nil {
		return err
	}
	if err := d.SetRule(st.Rule); err != nil {
		return err
	}
	d.gen = new(big.Int).Set(st.Gen)
	d.viewport = st.View.Clone()
	d.hashing = st.Hashing
	return nil
}

// SaveStartingPattern writes the current pattern into the starting resource
// and records the state a reset returns to.
func (d *Document) SaveStartingPattern() error {
	if err := d.store.Write(d.start.Resource, d.WritePattern); err != nil {
		return fmt.Errorf("save starting pattern: %w", err)
	}
	d.start.Gen = new(big.Int).Set(d.gen)
	d.start.File = string(d.start.Resource)
	d.start.Dirty = d.dirty
	d.start.Hashing = d.hashing
	d.start.Rule = d.rule.String()
	d.start.View = d.viewport.Clone()
	d.start.Selection = d.sel.Clone()
	d.start.Name = d.views[d.current].name
	d.start.CloneNames = d.cloneNames(func(v *view) string { return v.name })
	for _, v := range d.views {
		v.startName = v.name
	}
	logger.DebugTagf(logTag, "saved starting pattern at gen %s", d.gen)
	return nil
}

// ResetToStart restores the starting pattern and its state.
func (d *Document) ResetToStart() error {
	if err := d.loadStartingPattern(); err != nil {
		return err
	}
	if err := d.SetRule(d.start.Rule); err != nil {
		return err
	}
	d.gen = new(big.Int).Set(d.start.Gen)
	d.hashing = d.start.Hashing
	d.viewport = d.start.View.Clone()
	d.sel = d.start.Selection.Clone()
	d.dirty = d.start.Dirty
	for _, v := range d.views {
		v.name = v.startName
	}
	return nil
}

func (d *Document) cloneNames(pick func(*view) string) map[history.ViewID]string {
	if len(d.views) < 2 {
		return nil
	}
	names := make(map[history.ViewID]string, len(d.views)-1)
	for i, v := range d.views {
		if i != d.current {
			names[v.id] = pick(v)
		}
	}
	return names
}

func (d *Document) Start() history.StartInfo { return d.start.Clone() }

// SetStart installs info as the starting bundle. The document keeps a
// reference on its starting resource.
func (d *Document) SetStart(info history.StartInfo) {
	old := d.start.Resource
	if info.Resource != old {
		d.store.Retain(info.Resource)
	}
	d.start = info.Clone()
	d.views[d.current].startName = info.Name
	for _, v := range d.views {
		if name, ok := info.CloneNames[v.id]; ok {
			v.startName = name
		}
	}
	if info.Resource != old {
		if err := d.store.Release(old); err != nil {
			logger.WarnTagf(logTag, "release old starting pattern: %v", err)
		}
	}
}

func (d *Document) FileState() history.FileState { return d.file }

func (d *Document) SetFileState(fs history.FileState) { d.file = fs }

func (d *Document) CurrentView() history.ViewID { return d.views[d.current].id }

func (d *Document) ViewName(id history.ViewID) (string, bool) {
	if v := d.findView(id); v != nil {
		return v.name, true
	}
	return "", false
}

func (d *Document) SetViewName(id history.ViewID, name string) {
	if v := d.findView(id); v != nil {
		v.name = name
	}
}

func (d *Document) findView(id history.ViewID) *view {
	for _, v := range d.views {
		if v.id == id {
			return v
		}
	}
	return nil
}

// Views returns the view ids in creation order.
func (d *Document) Views() []history.ViewID {
	ids := make([]history.ViewID, len(d.views))
	for i, v := range d.views {
		ids[i] = v.id
	}
	return ids
}

// addView creates a clone named name and returns its id.
func (d *Document) addView(name string) history.ViewID {
	v := &view{id: uuid.New(), name: name, startName: name}
	d.views = append(d.views, v)
	return v.id
}

// removeView deletes a view. The current view moves to the first one if it
// was removed.
func (d *Document) removeView(id history.ViewID) error {
	if len(d.views) == 1 {
		return ErrLastView
	}
	for i, v := range d.views {
		if v.id != id {
			continue
		}
		cur := d.views[d.current].id
		d.views = append(d.views[:i], d.views[i+1:]...)
		d.current = 0
		for j, w := range d.views {
			if w.id == cur {
				d.current = j
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownView, id)
}

// switchView makes id the current view.
func (d *Document) switchView(id history.ViewID) error {
	for i, v := range d.views {
		if v.id == id {
			d.current = i
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownView, id)
}

func (d *Document) Dirty() bool { return d.dirty }

func (d *Document) SetDirty(dirty bool) { d.dirty = dirty }

func (d *Document) ScriptRunning() bool { return d.scripting }

func (d *Document) Modal() history.ModalState { return d.modal }

// SetModal replaces the modal interaction flags.
func (d *Document) SetModal(m history.ModalState) { d.modal = m }
