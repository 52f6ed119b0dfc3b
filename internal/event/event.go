// Package event is the synchronous event bus connecting the history engine,
// the document and the front end.
package event

import "github.com/gdamore/tcell/v2"

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// History events
	TypeHistoryChanged // Undo/redo labels changed
	TypeDirtyChanged   // Document dirty flag flipped by an undo or redo
	TypeWarning        // Non-fatal warning (memory pressure, snapshot I/O)

	// Document events
	TypePatternChanged // Cells, generation or rule changed; redraw needed
	TypeViewRemoved    // A logical view was deleted
	TypeCursorMoved

	// Input events
	TypeKeyPressed

	// Automation events
	TypeScriptStarted
	TypeScriptFinished

	// Application lifecycle events
	TypeAppReady
	TypeAppQuit
)

var typeNames = map[Type]string{
	TypeUnknown:        "Unknown",
	TypeHistoryChanged: "HistoryChanged",
	TypeDirtyChanged:   "DirtyChanged",
	TypeWarning:        "Warning",
	TypePatternChanged: "PatternChanged",
	TypeViewRemoved:    "ViewRemoved",
	TypeCursorMoved:    "CursorMoved",
	TypeKeyPressed:     "KeyPressed",
	TypeScriptStarted:  "ScriptStarted",
	TypeScriptFinished: "ScriptFinished",
	TypeAppReady:       "AppReady",
	TypeAppQuit:        "AppQuit",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// HistoryChangedData carries the labels shown for the Undo and Redo commands.
// A label is empty when its stack is empty.
type HistoryChangedData struct {
	UndoLabel string
	RedoLabel string
}

// DirtyChangedData carries the new dirty state.
type DirtyChangedData struct {
	Dirty bool
}

// WarningData carries a message to show non-modally.
type WarningData struct {
	Message string
}

// PatternChangedData describes the document after a change.
type PatternChangedData struct {
	Generation string
	Rule       string
}

// ViewRemovedData names the removed view.
type ViewRemovedData struct {
	ViewID string
}

// CursorMovedData contains the new cursor cell.
type CursorMovedData struct {
	X, Y int
}

// KeyPressedData contains the raw tcell key event.
type KeyPressedData struct {
	KeyEvent *tcell.EventKey
}

// ScriptFinishedData reports how a script ended.
type ScriptFinishedData struct {
	Err error
}
