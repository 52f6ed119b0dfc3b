package modehandler

import (
	"errors"

	"github.com/bethropolis/cellundo/internal/core/history"
	"github.com/bethropolis/cellundo/internal/event"
	"github.com/bethropolis/cellundo/internal/grid"
	"github.com/bethropolis/cellundo/internal/input"
	"github.com/bethropolis/cellundo/internal/logger"
)

// defaultPage is the page step when the view size is unknown.
const defaultPage = 10

// handleActionNormal runs an action in ModeNormal. Space and movement keep
// a drawing stroke open; any other key ends it first.
func (mh *ModeHandler) handleActionNormal(ae input.ActionEvent) bool {
	action := ae.Action
	switch action {
	case input.ActionUnknown, input.ActionInsertRune, input.ActionExecute, input.ActionDeleteBackward:
		return false
	}

	if !action.IsMovement() && action != input.ActionToggleCell {
		mh.editor.EndStroke()
	}
	if mh.editor.Selecting() && !action.IsMovement() && action != input.ActionSelect {
		mh.editor.EndSelect()
		if action == input.ActionCancel {
			return true
		}
	}
	if action != input.ActionQuit {
		mh.forceQuitPending = false
	}

	switch action {
	case input.ActionMoveUp:
		mh.moveCursor(0, -1)
	case input.ActionMoveDown:
		mh.moveCursor(0, 1)
	case input.ActionMoveLeft:
		mh.moveCursor(-1, 0)
	case input.ActionMoveRight:
		mh.moveCursor(1, 0)
	case input.ActionMovePageUp:
		mh.moveCursor(0, -mh.page())
	case input.ActionMovePageDown:
		mh.moveCursor(0, mh.page())

	case input.ActionToggleCell:
		mh.report("Toggle", mh.editor.ToggleCell(mh.cursor.X, mh.cursor.Y))
	case input.ActionStep:
		mh.report("Step", mh.editor.Step(1))
	case input.ActionRun:
		mh.report("Run", mh.editor.Step(mh.stepSize))
	case input.ActionFlipTopBottom:
		mh.report("Flip", mh.editor.Flip(true))
	case input.ActionFlipLeftRight:
		mh.report("Flip", mh.editor.Flip(false))
	case input.ActionRotateClockwise:
		mh.report("Rotate", mh.editor.Rotate(true))
	case input.ActionRotateAnticlockwise:
		mh.report("Rotate", mh.editor.Rotate(false))
	case input.ActionSelect:
		if mh.editor.Selecting() {
			mh.editor.EndSelect()
		} else {
			mh.editor.BeginSelect(mh.cursor)
		}
	case input.ActionDeselect:
		mh.editor.Deselect()
	case input.ActionToggleAlgorithm:
		mh.report("Algorithm", mh.editor.ToggleAlgorithm())
	case input.ActionReset:
		mh.report("Reset", mh.editor.Reset())

	case input.ActionUndo:
		mh.undoRedo(true)
	case input.ActionRedo:
		mh.undoRedo(false)

	case input.ActionCopySelection:
		if mh.copy == nil {
			mh.statusBar.SetTemporaryMessage("Clipboard unavailable")
			break
		}
		if err := mh.copy(); err != nil {
			mh.report("Copy", err)
			break
		}
		mh.statusBar.SetTemporaryMessage("Selection copied")
	case input.ActionRunScript:
		if mh.runScript != nil {
			mh.report("Script", mh.runScript())
		}

	case input.ActionEnterCommandMode:
		mh.currentMode = ModeCommand
		mh.cmdBuffer = mh.cmdBuffer[:0]
		mh.statusBar.SetPrompt(":")
		logger.Debugf("ModeHandler: Entering Command Mode")
	case input.ActionCancel:
		mh.statusBar.ResetTemporaryMessage()

	case input.ActionQuit:
		mh.requestQuit()
	case input.ActionForceQuit:
		mh.quit()
	}
	return true
}

// report shows err as a warning. An aborted operation is not an error.
func (mh *ModeHandler) report(what string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, history.ErrAborted):
		mh.statusBar.SetTemporaryMessage("%s cancelled", what)
	case errors.Is(err, grid.ErrNoSelection):
		mh.statusBar.SetWarning("%s: there is no selection", what)
	default:
		logger.Warnf("%s failed: %v", what, err)
		mh.statusBar.SetWarning("%s failed: %v", what, err)
	}
}

func (mh *ModeHandler) undoRedo(undo bool) {
	verb, can := "redo", mh.editor.History().CanRedo()
	if undo {
		verb, can = "undo", mh.editor.History().CanUndo()
	}
	if !can {
		mh.statusBar.SetTemporaryMessage("Nothing to %s", verb)
		return
	}

	var ok bool
	var err error
	if undo {
		ok, err = mh.editor.Undo()
	} else {
		ok, err = mh.editor.Redo()
	}
	switch {
	case err != nil:
		logger.Errorf("%s failed: %v", verb, err)
		mh.statusBar.SetWarning("Cannot %s: %v", verb, err)
	case !ok:
		mh.statusBar.SetTemporaryMessage("%s cancelled", verb)
	}
}

func (mh *ModeHandler) page() int {
	if mh.viewH > 1 {
		return mh.viewH - 1
	}
	return defaultPage
}

func (mh *ModeHandler) moveCursor(dx, dy int) {
	next := mh.cursor
	next.X = max(-grid.Limit, min(grid.Limit, next.X+dx))
	next.Y = max(-grid.Limit, min(grid.Limit, next.Y+dy))
	if next == mh.cursor {
		return
	}
	mh.cursor = next
	if mh.editor.Selecting() {
		mh.editor.DragSelect(next)
	}
	mh.follow()
	mh.eventManager.Dispatch(event.TypeCursorMoved, event.CursorMovedData{X: next.X, Y: next.Y})
}

// requestQuit quits, asking for confirmation first when there are unsaved
// changes.
func (mh *ModeHandler) requestQuit() {
	if mh.editor.Document().Dirty() && !mh.forceQuitPending {
		mh.statusBar.SetWarning("Unsaved changes! Press q again or Ctrl+Q to force quit.")
		mh.forceQuitPending = true
		return
	}
	mh.quit()
}

func (mh *ModeHandler) quit() {
	if mh.quitting {
		return
	}
	mh.quitting = true
	close(mh.quitSignal)
}
