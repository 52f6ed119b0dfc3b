package app

import (
	"github.com/bethropolis/cellundo/internal/config"
	"github.com/bethropolis/cellundo/internal/theme"
)

// drawEditor clears the screen and redraws the grid and the status bar.
func (a *App) drawEditor() {
	width, height := a.tuiManager.Size()
	gridHeight := height - config.StatusBarHeight
	a.modeHandler.SetViewSize(width, gridHeight)
	a.updateStatusBarContent()

	th := a.themes.Current()
	a.tuiManager.SetStyle(th.GetStyle(theme.StyleDefault))
	a.tuiManager.Clear()
	a.tuiManager.DrawGrid(a.editor.Document(), a.modeHandler.Cursor(), th, gridHeight)
	a.statusBar.Draw(a.tuiManager.GetScreen(), width, height, th)
	a.tuiManager.Show()
}

// updateStatusBarContent pushes the document summary to the status bar.
func (a *App) updateStatusBarContent() {
	doc := a.editor.Document()
	name, _ := doc.ViewName(doc.CurrentView())
	a.statusBar.SetPattern(name, doc.Generation().String(), doc.Rule(), doc.Population(), doc.Hashing())
	a.statusBar.SetDirty(doc.Dirty())
	a.statusBar.SetCursor(a.modeHandler.Cursor())
}
