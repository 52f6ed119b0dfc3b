// Package modehandler turns key events into editor commands. It owns the
// cursor, the command line and the registry of ":" commands.
package modehandler

import (
	"errors"
	"fmt"

	"github.com/bethropolis/cellundo/internal/commands"
	"github.com/bethropolis/cellundo/internal/event"
	"github.com/bethropolis/cellundo/internal/grid"
	"github.com/bethropolis/cellundo/internal/input"
	"github.com/bethropolis/cellundo/internal/logger"
	"github.com/bethropolis/cellundo/internal/statusbar"
	"github.com/bethropolis/cellundo/internal/tui"
	"github.com/bethropolis/cellundo/internal/types"
	"github.com/gdamore/tcell/v2"
)

// InputMode is the current interpretation of keys.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeCommand
)

// ModeHandler dispatches key events to the editor.
type ModeHandler struct {
	editor         *grid.Editor
	inputProcessor *input.InputProcessor
	eventManager   *event.Manager
	statusBar      *statusbar.StatusBar
	quitSignal     chan<- struct{}

	stepSize  int
	copy      func() error
	runScript func() error

	cursor           types.Cell
	viewW, viewH     int
	currentMode      InputMode
	cmdBuffer        []rune
	commands         map[string]commands.CommandFunc
	forceQuitPending bool
	quitting         bool
}

// Config holds the dependencies of a ModeHandler. Copy and RunScript are
// optional.
type Config struct {
	Editor         *grid.Editor
	InputProcessor *input.InputProcessor
	EventManager   *event.Manager
	StatusBar      *statusbar.StatusBar
	QuitSignal     chan<- struct{}
	StepSize       int
	Copy           func() error
	RunScript      func() error
}

// New creates a ModeHandler.
func New(cfg Config) *ModeHandler {
	if cfg.Editor == nil || cfg.InputProcessor == nil || cfg.EventManager == nil || cfg.StatusBar == nil || cfg.QuitSignal == nil {
		panic("modehandler.New: Missing required dependencies in Config")
	}
	if cfg.StepSize <= 0 {
		cfg.StepSize = 1
	}
	return &ModeHandler{
		editor:         cfg.Editor,
		inputProcessor: cfg.InputProcessor,
		eventManager:   cfg.EventManager,
		statusBar:      cfg.StatusBar,
		quitSignal:     cfg.QuitSignal,
		stepSize:       cfg.StepSize,
		copy:           cfg.Copy,
		runScript:      cfg.RunScript,
		currentMode:    ModeNormal,
		commands:       make(map[string]commands.CommandFunc),
	}
}

// HandleKeyEvent runs the action bound to ev. It reports whether the screen
// needs a redraw.
func (mh *ModeHandler) HandleKeyEvent(ev *tcell.EventKey) bool {
	mh.eventManager.Dispatch(event.TypeKeyPressed, event.KeyPressedData{KeyEvent: ev})

	actionEvent := mh.inputProcessor.ProcessEvent(ev)
	switch mh.currentMode {
	case ModeNormal:
		return mh.handleActionNormal(actionEvent)
	case ModeCommand:
		return mh.handleActionCommand(actionEvent)
	default:
		logger.Debugf("Warning: Unknown input mode: %v", mh.currentMode)
		return false
	}
}

// RegisterCommand adds a ":" command.
func (mh *ModeHandler) RegisterCommand(name string, fn commands.CommandFunc) error {
	if name == "" {
		return errors.New("command name cannot be empty")
	}
	if _, exists := mh.commands[name]; exists {
		return fmt.Errorf("command '%s' already registered", name)
	}
	mh.commands[name] = fn
	logger.Debugf("ModeHandler: Registered command ':%s'", name)
	return nil
}

// SetViewSize tells the handler how many cells the grid area shows, so the
// viewport can follow the cursor.
func (mh *ModeHandler) SetViewSize(w, h int) {
	mh.viewW, mh.viewH = w, h
	mh.follow()
}

// Cursor returns the cell under the cursor.
func (mh *ModeHandler) Cursor() types.Cell { return mh.cursor }

// GetCurrentMode returns the current input mode.
func (mh *ModeHandler) GetCurrentMode() InputMode { return mh.currentMode }

// follow recentres the document viewport when the cursor has left it.
func (mh *ModeHandler) follow() {
	doc := mh.editor.Document()
	if v, moved := tui.Follow(doc.Viewport(), mh.cursor, mh.viewW, mh.viewH); moved {
		doc.SetViewport(v)
	}
}
