package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bethropolis/cellundo/internal/config"
	"github.com/bethropolis/cellundo/internal/grid"
	"github.com/bethropolis/cellundo/internal/tui"
	"github.com/bethropolis/cellundo/internal/types"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, path string) (*App, tcell.SimulationScreen) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := config.NewDefaultConfig()
	cfg.History.SnapshotBackend = config.BackendMemory

	s := tcell.NewSimulationScreen("UTF-8")
	ui, err := tui.NewWithScreen(s)
	require.NoError(t, err)
	s.SetSize(80, 20)

	a, err := newApp(cfg, path, ui)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, s
}

func rowText(s tcell.SimulationScreen, y int) string {
	w, _ := s.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestKeysUpdateStatusBar(t *testing.T) {
	a, s := newTestApp(t, "")

	a.handleEvent(key(' '))
	a.handleEvent(key('n'))
	a.drawEditor()

	_, h := s.Size()
	row := rowText(s, h-1)
	assert.Contains(t, row, "untitled [+]")
	assert.Contains(t, row, "Gen 1")
	assert.Contains(t, row, "Pop 0")
	assert.Contains(t, row, "Undo ")

	a.handleEvent(key('u'))
	a.drawEditor()
	row = rowText(s, h-1)
	assert.Contains(t, row, "Gen 0")
	assert.Contains(t, row, "Pop 1")
	assert.Contains(t, row, "Redo ")
}

func TestOpenPatternAtStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blinker.rle")
	require.NoError(t, os.WriteFile(path, []byte("x = 3, y = 1, rule = B36/S23\n3o!\n"), 0o644))

	a, _ := newTestApp(t, path)
	doc := a.editor.Document()
	assert.Equal(t, 3, doc.Population())
	assert.Equal(t, "B36/S23", doc.Rule())
	assert.Equal(t, path, doc.FileState().CurrFile)
	assert.False(t, doc.Dirty())
	assert.False(t, a.editor.History().CanUndo())
}

func TestMissingFileBecomesSaveTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.rle")

	a, _ := newTestApp(t, path)
	doc := a.editor.Document()
	assert.Equal(t, 0, doc.Population())
	assert.Equal(t, path, doc.FileState().CurrFile)
	name, ok := doc.ViewName(doc.CurrentView())
	require.True(t, ok)
	assert.Equal(t, "new.rle", name)
	assert.False(t, a.editor.History().CanUndo())

	require.NoError(t, a.editor.SetCell(0, 0, 1))
	a.handleEvent(key(':'))
	a.handleEvent(key('w'))
	a.handleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.False(t, doc.Dirty())
}

func TestCopySelection(t *testing.T) {
	var copied []string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	defer func() { writeClipboard = orig }()

	a, _ := newTestApp(t, "")
	assert.ErrorIs(t, a.copySelection(), grid.ErrNoSelection)

	require.NoError(t, a.editor.SetCell(1, 1, 1))
	a.editor.Select(types.BigRectFrom(types.Rect{Top: 0, Left: 0, Bottom: 2, Right: 2}))
	require.NoError(t, a.copySelection())
	require.Len(t, copied, 1)
	assert.Contains(t, copied[0], "x = 3, y = 3")
}

func TestScriptFailureShowsWarning(t *testing.T) {
	a, _ := newTestApp(t, "")
	a.scriptFile = filepath.Join(t.TempDir(), "bad.lua")
	require.NoError(t, os.WriteFile(a.scriptFile, []byte(`g.setcell(0, 0, 1) error("boom")`), 0o644))

	err := a.runScript()
	require.Error(t, err)
	assert.Contains(t, a.statusBar.Message(), "boom")
	assert.Equal(t, 1, a.editor.Document().Population())
}

func TestCancelRequestedKeepsOtherEvents(t *testing.T) {
	a, _ := newTestApp(t, "")
	assert.False(t, a.cancelRequested())

	a.screenEvents <- key('n')
	a.screenEvents <- tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)
	assert.True(t, a.cancelRequested())
	require.Len(t, a.deferred, 1)
	assert.Equal(t, 'n', a.deferred[0].(*tcell.EventKey).Rune())
}

func TestResizeRequestsRedraw(t *testing.T) {
	a, _ := newTestApp(t, "")
	select {
	case <-a.redrawRequest:
	default:
	}

	a.handleEvent(tcell.NewEventResize(100, 30))
	assert.Len(t, a.redrawRequest, 1)
}

func TestQuitCommandClosesSignal(t *testing.T) {
	a, _ := newTestApp(t, "")
	a.handleEvent(key(':'))
	a.handleEvent(key('q'))
	a.handleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	select {
	case <-a.quit:
	default:
		t.Fatal("quit signal not closed")
	}
}
