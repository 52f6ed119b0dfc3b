// Package input maps terminal key events to editor actions.
package input

// Action is an editor command bound to a key.
type Action int

const (
	ActionUnknown Action = iota
	ActionQuit
	ActionForceQuit

	// Cursor
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionMovePageUp
	ActionMovePageDown

	// Pattern editing
	ActionToggleCell
	ActionStep
	ActionRun
	ActionFlipTopBottom
	ActionFlipLeftRight
	ActionRotateClockwise
	ActionRotateAnticlockwise
	ActionSelect
	ActionDeselect
	ActionToggleAlgorithm
	ActionReset
	ActionCopySelection
	ActionRunScript

	// History
	ActionUndo
	ActionRedo

	// Command line
	ActionEnterCommandMode
	ActionInsertRune
	ActionExecute
	ActionCancel
	ActionDeleteBackward
)

var actionNames = map[Action]string{
	ActionUnknown:             "Unknown",
	ActionQuit:                "Quit",
	ActionForceQuit:           "ForceQuit",
	ActionMoveUp:              "MoveUp",
	ActionMoveDown:            "MoveDown",
	ActionMoveLeft:            "MoveLeft",
	ActionMoveRight:           "MoveRight",
	ActionMovePageUp:          "MovePageUp",
	ActionMovePageDown:        "MovePageDown",
	ActionToggleCell:          "ToggleCell",
	ActionStep:                "Step",
	ActionRun:                 "Run",
	ActionFlipTopBottom:       "FlipTopBottom",
	ActionFlipLeftRight:       "FlipLeftRight",
	ActionRotateClockwise:     "RotateClockwise",
	ActionRotateAnticlockwise: "RotateAnticlockwise",
	ActionSelect:              "Select",
	ActionDeselect:            "Deselect",
	ActionToggleAlgorithm:     "ToggleAlgorithm",
	ActionReset:               "Reset",
	ActionCopySelection:       "CopySelection",
	ActionRunScript:           "RunScript",
	ActionUndo:                "Undo",
	ActionRedo:                "Redo",
	ActionEnterCommandMode:    "EnterCommandMode",
	ActionInsertRune:          "InsertRune",
	ActionExecute:             "Execute",
	ActionCancel:              "Cancel",
	ActionDeleteBackward:      "DeleteBackward",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// IsMovement reports whether a moves the cursor.
func (a Action) IsMovement() bool {
	switch a {
	case ActionMoveUp, ActionMoveDown, ActionMoveLeft, ActionMoveRight,
		ActionMovePageUp, ActionMovePageDown:
		return true
	}
	return false
}

// ActionEvent is a decoded key event. Rune is set for every printable key,
// so the command line can take the character whatever it is bound to.
type ActionEvent struct {
	Action Action
	Rune   rune
}
