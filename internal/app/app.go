// Package app wires the editor, its history store and the terminal front end
// together and runs the main loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bethropolis/cellundo/internal/commands"
	"github.com/bethropolis/cellundo/internal/config"
	"github.com/bethropolis/cellundo/internal/core/history"
	"github.com/bethropolis/cellundo/internal/event"
	"github.com/bethropolis/cellundo/internal/grid"
	"github.com/bethropolis/cellundo/internal/input"
	"github.com/bethropolis/cellundo/internal/logger"
	"github.com/bethropolis/cellundo/internal/modehandler"
	"github.com/bethropolis/cellundo/internal/script"
	"github.com/bethropolis/cellundo/internal/snapshot"
	"github.com/bethropolis/cellundo/internal/statusbar"
	"github.com/bethropolis/cellundo/internal/theme"
	"github.com/bethropolis/cellundo/internal/tui"
	"github.com/gdamore/tcell/v2"
)

// App encapsulates the core components and main loop of the editor.
type App struct {
	tuiManager   *tui.TUI
	editor       *grid.Editor
	store        *snapshot.Store
	runner       *script.Runner
	themes       *theme.Manager
	statusBar    *statusbar.StatusBar
	eventManager *event.Manager
	modeHandler  *modehandler.ModeHandler
	scriptFile   string

	// Channels managed by the App
	quit          chan struct{}
	redrawRequest chan struct{}
	screenEvents  chan tcell.Event

	// events read while a long operation polled for Esc
	deferred  []tcell.Event
	closeOnce sync.Once
}

// NewApp creates the terminal and the editor for cfg. If path is not empty
// the pattern stored there is opened; a missing file starts an empty pattern
// that :w will save to path.
func NewApp(cfg *config.Config, path string) (*App, error) {
	tuiManager, err := tui.New()
	if err != nil {
		return nil, fmt.Errorf("TUI initialization failed: %w", err)
	}
	a, err := newApp(cfg, path, tuiManager)
	if err != nil {
		tuiManager.Close()
		return nil, err
	}
	return a, nil
}

func newApp(cfg *config.Config, path string, tuiManager *tui.TUI) (*App, error) {
	backend, err := snapshot.OpenBackend(cfg.History.SnapshotBackend, cfg.History.SnapshotDir)
	if err != nil {
		return nil, fmt.Errorf("open snapshot backend: %w", err)
	}
	store := snapshot.NewStore(backend, cfg.History.Compress)

	rule, err := grid.ParseRule(cfg.Editor.Rule)
	if err != nil {
		logger.Warnf("Invalid rule '%s' in config, using %s: %v", cfg.Editor.Rule, grid.Life, err)
		rule = grid.Life
	}

	eventManager := event.NewManager()
	name := "untitled"
	if path != "" {
		name = filepath.Base(path)
	}
	editor, err := grid.NewEditor(store, eventManager, name, rule, history.Options{
		CellLimit: cfg.History.CellBufferLimit,
		Reuse:     history.ParseReuseMode(cfg.History.SnapshotReuse),
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create editor: %w", err)
	}

	themes := theme.NewManager(theme.DefaultDir())
	if cfg.Editor.Theme != "" {
		if err := themes.SetTheme(cfg.Editor.Theme); err != nil {
			logger.Warnf("Theme '%s' not available: %v", cfg.Editor.Theme, err)
		}
	}

	statusBar := statusbar.New(statusbar.Config{MessageTimeout: config.MessageTimeout})
	quitChan := make(chan struct{})

	a := &App{
		tuiManager:    tuiManager,
		editor:        editor,
		store:         store,
		runner:        script.NewRunner(editor, cfg.Script.TimeoutDuration()),
		themes:        themes,
		statusBar:     statusBar,
		eventManager:  eventManager,
		scriptFile:    cfg.Script.File,
		quit:          quitChan,
		redrawRequest: make(chan struct{}, 1),
		screenEvents:  make(chan tcell.Event, 16),
	}

	a.modeHandler = modehandler.New(modehandler.Config{
		Editor:         editor,
		InputProcessor: input.NewInputProcessor(),
		EventManager:   eventManager,
		StatusBar:      statusBar,
		QuitSignal:     quitChan,
		StepSize:       cfg.Editor.StepSize,
		Copy:           a.copySelection,
		RunScript:      a.runScript,
	})

	commands.RegisterEditorCommands(a.modeHandler, editor, statusBar)
	commands.RegisterFileCommands(a.modeHandler, editor, statusBar)
	commands.RegisterThemeCommands(a.modeHandler, themes, statusBar)
	commands.RegisterScriptCommands(a.modeHandler, a.runner, cfg.Script.File, statusBar)

	editor.Document().SetCanceler(a.cancelRequested)
	a.subscribe()

	if path != "" {
		if err := a.openPattern(path); err != nil {
			logger.Warnf("Could not open '%s': %v", path, err)
			statusBar.SetWarning("Could not open %s: %v", path, err)
		}
	}
	a.updateStatusBarContent()
	return a, nil
}

// openPattern loads path into the editor. A file that does not exist yet
// only becomes the save target.
func (a *App) openPattern(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := a.editor.Document()
		fileState := doc.FileState()
		fileState.CurrFile = path
		doc.SetFileState(fileState)
		a.statusBar.SetTemporaryMessage("New file %s", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return a.editor.Open(path, f)
}

func (a *App) runScript() error {
	return a.runner.RunFile(context.Background(), a.scriptFile)
}

// Run starts the application's main loop. Key handling and drawing both
// happen on the calling goroutine; a second goroutine only reads the screen.
func (a *App) Run() error {
	defer a.Close()

	go a.pollEvents()

	a.eventManager.Dispatch(event.TypeAppReady, nil)
	a.statusBar.SetTemporaryMessage("cellundo - space toggles, n steps, u undoes, :q quits")
	a.requestRedraw()

	for {
		for len(a.deferred) > 0 {
			ev := a.deferred[0]
			a.deferred = a.deferred[1:]
			a.handleEvent(ev)
		}

		select {
		case <-a.quit:
			a.eventManager.Dispatch(event.TypeAppQuit, nil)
			if a.editor.Document().Dirty() {
				logger.Warnf("Exited with unsaved changes.")
			}
			logger.Infof("Exiting application.")
			return nil
		case ev := <-a.screenEvents:
			a.handleEvent(ev)
		case <-a.redrawRequest:
			a.drawEditor()
		}
	}
}

// pollEvents forwards screen events until the screen is finalized.
func (a *App) pollEvents() {
	for {
		ev := a.tuiManager.PollEvent()
		if ev == nil {
			return
		}
		a.screenEvents <- ev
	}
}

// handleEvent delegates key events to the mode handler.
func (a *App) handleEvent(ev tcell.Event) {
	needsRedraw := false

	switch eventData := ev.(type) {
	case *tcell.EventResize:
		a.tuiManager.GetScreen().Sync()
		needsRedraw = true
	case *tcell.EventKey:
		needsRedraw = a.modeHandler.HandleKeyEvent(eventData)
	}

	if needsRedraw {
		a.requestRedraw()
	}
}

// cancelRequested reports whether Esc has been pressed. Long flips and
// rotations call it between rows. Other events are kept for the main loop.
func (a *App) cancelRequested() bool {
	for {
		select {
		case ev := <-a.screenEvents:
			if key, ok := ev.(*tcell.EventKey); ok && key.Key() == tcell.KeyEscape {
				return true
			}
			a.deferred = append(a.deferred, ev)
		default:
			return false
		}
	}
}

// requestRedraw sends a redraw signal non-blockingly.
func (a *App) requestRedraw() {
	select {
	case a.redrawRequest <- struct{}{}:
	default:
	}
}

// Close restores the terminal and releases the document and its snapshot
// store. It is safe to call more than once.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.tuiManager.Close()
		err = errors.Join(a.editor.Close(), a.store.Close())
	})
	return err
}
