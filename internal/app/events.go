package app

import (
	"github.com/bethropolis/cellundo/internal/event"
	"github.com/bethropolis/cellundo/internal/logger"
)

func (a *App) subscribe() {
	a.eventManager.Subscribe(event.TypeHistoryChanged, a.handleHistoryChanged)
	a.eventManager.Subscribe(event.TypeDirtyChanged, a.handleDirtyChanged)
	a.eventManager.Subscribe(event.TypeWarning, a.handleWarning)
	a.eventManager.Subscribe(event.TypePatternChanged, a.handlePatternChanged)
	a.eventManager.Subscribe(event.TypeScriptFinished, a.handleScriptFinished)
}

// handleHistoryChanged shows the labels of the Undo and Redo commands.
func (a *App) handleHistoryChanged(e event.Event) bool {
	if data, ok := e.Data.(event.HistoryChangedData); ok {
		a.statusBar.SetHistory(data.UndoLabel, data.RedoLabel)
	}
	return false
}

func (a *App) handleDirtyChanged(e event.Event) bool {
	if data, ok := e.Data.(event.DirtyChangedData); ok {
		a.statusBar.SetDirty(data.Dirty)
	}
	return false
}

func (a *App) handleWarning(e event.Event) bool {
	if data, ok := e.Data.(event.WarningData); ok {
		a.statusBar.SetWarning("%s", data.Message)
	}
	return false
}

func (a *App) handlePatternChanged(e event.Event) bool {
	a.updateStatusBarContent()
	a.requestRedraw()
	return false
}

func (a *App) handleScriptFinished(e event.Event) bool {
	data, ok := e.Data.(event.ScriptFinishedData)
	if !ok {
		logger.Warnf("App: ScriptFinished event with unexpected data type: %T", e.Data)
		return false
	}
	if data.Err != nil {
		a.statusBar.SetWarning("%v", data.Err)
	}
	return false
}
