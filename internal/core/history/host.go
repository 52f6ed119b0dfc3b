package history

import (
	"io"
	"maps"
	"math/big"

	"github.com/bethropolis/cellundo/internal/snapshot"
	"github.com/bethropolis/cellundo/internal/types"
	"github.com/google/uuid"
)

// ViewID identifies a logical view. uuid.Nil is never a live view.
type ViewID = uuid.UUID

// Host is the editor state the history manager records and restores.
// Implementations perform raw mutations only; they must not call back
// into the Manager from these methods.
type Host interface {
	Cell(x, y int) int
	SetCell(x, y, state int) error
	// FlipSelection flips the cells inside r. It returns an error wrapping
	// ErrAborted if the user cancels, leaving the cells unchanged.
	FlipSelection(topBottom bool, r types.Rect) error
	// RotateSelection rotates the selected pattern in place, including the
	// selection edges. Cancellation is reported like FlipSelection.
	RotateSelection(clockwise bool) error

	Selection() types.BigRect
	SetSelection(sel types.BigRect)
	Viewport() types.Viewport

	Generation() *big.Int
	SetGenCount(gen *big.Int)
	Rule() string
	SetRule(rule string) error
	Hashing() bool
	ToggleHashing() error

	// WritePattern serializes the full document state.
	WritePattern(w io.Writer) error
	// RestorePattern loads the document from r and then applies st.
	// A nil r means "reload the starting pattern".
	RestorePattern(st GenState, r io.Reader) error

	Start() StartInfo
	SetStart(info StartInfo)
	FileState() FileState
	SetFileState(fs FileState)

	CurrentView() ViewID
	ViewName(id ViewID) (string, bool)
	SetViewName(id ViewID, name string)

	Dirty() bool
	SetDirty(dirty bool)
	ScriptRunning() bool
	Modal() ModalState
}

// ModalState lists the interactions during which undo is unavailable.
type ModalState struct {
	Drawing         bool
	Selecting       bool
	WaitingForClick bool
	Generating      bool
}

// Any reports whether some modal interaction is in progress.
func (m ModalState) Any() bool {
	return m.Drawing || m.Selecting || m.WaitingForClick || m.Generating
}

// GenState is the simulation and view state restored with a snapshot.
type GenState struct {
	Gen     *big.Int
	Rule    string
	View    types.Viewport
	Hashing bool
}

// StartInfo is the starting-pattern bundle a reset returns to.
type StartInfo struct {
	Gen *big.Int
	// Resource holds the saved starting pattern.
	Resource snapshot.Handle
	// File is the pattern file a reset reloads, if any.
	File       string
	Dirty      bool
	Hashing    bool
	Rule       string
	View       types.Viewport
	Selection  types.BigRect
	Name       string
	CloneNames map[ViewID]string
}

// Clone returns a deep copy.
func (s StartInfo) Clone() StartInfo {
	c := s
	if s.Gen != nil {
		c.Gen = new(big.Int).Set(s.Gen)
	}
	c.View = s.View.Clone()
	c.Selection = s.Selection.Clone()
	c.CloneNames = maps.Clone(s.CloneNames)
	return c
}

// withExtras returns s with everything but Gen, Resource and File taken from o.
func (s StartInfo) withExtras(o StartInfo) StartInfo {
	o = o.Clone()
	o.Gen, o.Resource, o.File = s.Gen, s.Resource, s.File
	return o
}

// FileState is the document's current file and whether a reset reloads it.
type FileState struct {
	CurrFile  string
	SaveStart bool
}
