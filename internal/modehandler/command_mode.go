package modehandler

import (
	"strings"

	"github.com/bethropolis/cellundo/internal/input"
	"github.com/bethropolis/cellundo/internal/logger"
)

// handleActionCommand edits and runs the command line.
func (mh *ModeHandler) handleActionCommand(ae input.ActionEvent) bool {
	switch ae.Action {
	case input.ActionExecute:
		mh.leaveCommandMode()
		mh.executeCommand()
		return true

	case input.ActionCancel:
		mh.leaveCommandMode()
		logger.Debugf("ModeHandler: Canceled Command Mode via Escape")
		return true

	case input.ActionDeleteBackward:
		if len(mh.cmdBuffer) == 0 {
			mh.leaveCommandMode()
			return true
		}
		mh.cmdBuffer = mh.cmdBuffer[:len(mh.cmdBuffer)-1]

	default:
		if ae.Rune == 0 {
			return false
		}
		mh.cmdBuffer = append(mh.cmdBuffer, ae.Rune)
	}

	mh.statusBar.SetPrompt(":" + string(mh.cmdBuffer))
	return true
}

func (mh *ModeHandler) leaveCommandMode() {
	mh.currentMode = ModeNormal
	mh.statusBar.SetPrompt("")
}

// executeCommand parses and runs the command line, then clears it.
func (mh *ModeHandler) executeCommand() {
	line := string(mh.cmdBuffer)
	mh.cmdBuffer = mh.cmdBuffer[:0]

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	name, args := parts[0], parts[1:]

	switch name {
	case "q":
		mh.requestQuit()
		return
	case "q!":
		mh.quit()
		return
	}

	fn, ok := mh.commands[name]
	if !ok {
		mh.statusBar.SetWarning("Unknown command: %s", name)
		return
	}
	logger.Debugf("ModeHandler: Executing command ':%s' with args %v", name, args)
	if err := fn(args); err != nil {
		mh.statusBar.SetWarning("Error executing command '%s': %v", name, err)
	}
}

// CommandLine returns the text being typed in command mode.
func (mh *ModeHandler) CommandLine() string {
	if mh.currentMode != ModeCommand {
		return ""
	}
	return string(mh.cmdBuffer)
}
