package modehandler

import (
	"errors"
	"testing"
	"time"

	"github.com/bethropolis/cellundo/internal/commands"
	"github.com/bethropolis/cellundo/internal/core/history"
	"github.com/bethropolis/cellundo/internal/event"
	"github.com/bethropolis/cellundo/internal/grid"
	"github.com/bethropolis/cellundo/internal/input"
	"github.com/bethropolis/cellundo/internal/snapshot"
	"github.com/bethropolis/cellundo/internal/statusbar"
	"github.com/bethropolis/cellundo/internal/types"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mh     *ModeHandler
	editor *grid.Editor
	status *statusbar.StatusBar
	quit   chan struct{}
	copies int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := snapshot.NewStore(snapshot.NewMemoryBackend(), false)
	events := event.NewManager()
	e, err := grid.NewEditor(store, events, "untitled", grid.Life, history.Options{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = e.Close()
		_ = store.Close()
	})

	f := &fixture{
		editor: e,
		status: statusbar.New(statusbar.Config{MessageTimeout: time.Hour}),
		quit:   make(chan struct{}),
	}
	f.mh = New(Config{
		Editor:         e,
		InputProcessor: input.NewInputProcessor(),
		EventManager:   events,
		StatusBar:      f.status,
		QuitSignal:     f.quit,
		StepSize:       4,
		Copy: func() error {
			f.copies++
			return nil
		},
	})
	f.mh.SetViewSize(20, 10)
	return f
}

func (f *fixture) keys(s string) {
	for _, r := range s {
		f.mh.HandleKeyEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func (f *fixture) key(k tcell.Key) bool {
	return f.mh.HandleKeyEvent(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func (f *fixture) quitClosed() bool {
	select {
	case <-f.quit:
		return true
	default:
		return false
	}
}

func TestDrawStrokeAndUndo(t *testing.T) {
	f := newFixture(t)
	f.keys(" ")
	f.key(tcell.KeyRight)
	f.keys(" ")
	f.key(tcell.KeyRight)
	f.keys(" ")
	assert.True(t, f.editor.Document().Modal().Drawing)
	assert.Equal(t, types.Cell{X: 2, Y: 0}, f.mh.Cursor())

	f.keys("u")
	assert.Equal(t, 0, f.editor.Document().Population())
	assert.Equal(t, 0, f.editor.History().UndoLen())

	f.keys("U")
	assert.Equal(t, 3, f.editor.Document().Population())
	assert.Equal(t, "Drawing", f.editor.History().UndoLabel())
}

func TestRunAndStep(t *testing.T) {
	f := newFixture(t)
	f.keys(" ")
	f.key(tcell.KeyRight)
	f.keys(" ")
	f.key(tcell.KeyRight)
	f.keys(" ")

	f.keys("n")
	assert.Equal(t, "1", f.editor.Document().Generation().String())
	f.keys("g")
	assert.Equal(t, "5", f.editor.Document().Generation().String())

	f.keys("0")
	assert.Equal(t, "0", f.editor.Document().Generation().String())
	assert.Equal(t, "Drawing", f.editor.History().UndoLabel())
}

func TestUndoEndsDragSelection(t *testing.T) {
	f := newFixture(t)
	f.keys(" ")
	f.keys("s")
	f.key(tcell.KeyRight)
	f.key(tcell.KeyDown)
	assert.True(t, f.editor.Selecting())

	f.keys("u")
	assert.False(t, f.editor.Selecting())
	assert.False(t, f.editor.Document().Selection().Exists())
	assert.Equal(t, "Drawing", f.editor.History().UndoLabel())
	assert.Equal(t, "Selection", f.editor.History().RedoLabel())
}

func TestNothingToUndo(t *testing.T) {
	f := newFixture(t)
	f.keys("u")
	assert.Equal(t, "Nothing to undo", f.status.Message())
	f.keys("U")
	assert.Equal(t, "Nothing to redo", f.status.Message())
}

func TestSelectionKeys(t *testing.T) {
	f := newFixture(t)
	f.keys(" s")
	f.key(tcell.KeyRight)
	f.keys("s")
	r, ok := f.editor.Document().Selection().Ints()
	require.True(t, ok)
	assert.Equal(t, types.Rect{Top: 0, Left: 0, Bottom: 0, Right: 1}, r)

	f.keys("h")
	assert.Equal(t, 0, f.editor.Document().Cell(0, 0))
	assert.Equal(t, 1, f.editor.Document().Cell(1, 0))

	f.keys("y")
	assert.Equal(t, 1, f.copies)
	assert.Equal(t, "Selection copied", f.status.Message())

	f.keys("x")
	assert.False(t, f.editor.Document().Selection().Exists())
	f.keys("v")
	assert.Equal(t, "Flip: there is no selection", f.status.Message())
}

func TestCommandMode(t *testing.T) {
	f := newFixture(t)
	var got []string
	require.NoError(t, f.mh.RegisterCommand("echo", func(args []string) error {
		got = args
		return nil
	}))
	assert.Error(t, f.mh.RegisterCommand("echo", func([]string) error { return nil }))

	f.keys(":echo u s")
	assert.Equal(t, ModeCommand, f.mh.GetCurrentMode())
	assert.Equal(t, "echo u s", f.mh.CommandLine())
	assert.Equal(t, ":echo u s", f.status.Prompt())
	f.key(tcell.KeyBackspace2)
	f.keys("x")
	f.key(tcell.KeyEnter)

	assert.Equal(t, ModeNormal, f.mh.GetCurrentMode())
	assert.Equal(t, []string{"u", "x"}, got)
	assert.Equal(t, "", f.status.Prompt())
	assert.Equal(t, 0, f.editor.History().UndoLen())

	f.keys(":nope")
	f.key(tcell.KeyEnter)
	assert.Equal(t, "Unknown command: nope", f.status.Message())

	require.NoError(t, f.mh.RegisterCommand("fail", func([]string) error { return errors.New("bad") }))
	f.keys(":fail")
	f.key(tcell.KeyEnter)
	assert.Equal(t, "Error executing command 'fail': bad", f.status.Message())

	f.keys(":abc")
	f.key(tcell.KeyEscape)
	assert.Equal(t, ModeNormal, f.mh.GetCurrentMode())
	assert.Equal(t, "", f.mh.CommandLine())
}

func TestEditorCommandsThroughCommandLine(t *testing.T) {
	f := newFixture(t)
	commands.RegisterEditorCommands(f.mh, f.editor, f.status)

	f.keys(":rule B36/S23")
	f.key(tcell.KeyEnter)
	assert.Equal(t, "B36/S23", f.editor.Document().Rule())

	f.keys("u")
	assert.Equal(t, "B3/S23", f.editor.Document().Rule())
}

func TestQuitNeedsConfirmationWhenDirty(t *testing.T) {
	f := newFixture(t)
	f.keys(" ")
	f.keys("q")
	assert.False(t, f.quitClosed())
	assert.Contains(t, f.status.Message(), "Unsaved changes")

	f.keys("q")
	assert.True(t, f.quitClosed())
	f.keys("q")
}

func TestQuitCleanAndForce(t *testing.T) {
	f := newFixture(t)
	f.keys(":q")
	f.key(tcell.KeyEnter)
	assert.True(t, f.quitClosed())

	g := newFixture(t)
	g.keys(" ")
	g.key(tcell.KeyCtrlQ)
	assert.True(t, g.quitClosed())
}

func TestCursorFollowsViewport(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.key(tcell.KeyRight)
	}
	vp := f.editor.Document().Viewport()
	assert.Equal(t, int64(10), vp.X.Int64())

	f.key(tcell.KeyPgDn)
	assert.Equal(t, 9, f.mh.Cursor().Y)
}

func TestUnknownKeyNeedsNoRedraw(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.key(tcell.KeyF5))
	assert.False(t, f.key(tcell.KeyEnter))
}
