package input

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func TestProcessEvent(t *testing.T) {
	p := NewInputProcessor()
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want ActionEvent
	}{
		{"arrow", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), ActionEvent{Action: ActionMoveLeft}},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), ActionEvent{Action: ActionToggleCell, Rune: ' '}},
		{"undo", tcell.NewEventKey(tcell.KeyRune, 'u', tcell.ModNone), ActionEvent{Action: ActionUndo, Rune: 'u'}},
		{"redo shifted", tcell.NewEventKey(tcell.KeyRune, 'U', tcell.ModShift), ActionEvent{Action: ActionRedo, Rune: 'U'}},
		{"rotate anticlockwise", tcell.NewEventKey(tcell.KeyRune, 'R', tcell.ModNone), ActionEvent{Action: ActionRotateAnticlockwise, Rune: 'R'}},
		{"unbound rune", tcell.NewEventKey(tcell.KeyRune, 'B', tcell.ModNone), ActionEvent{Action: ActionInsertRune, Rune: 'B'}},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'u', tcell.ModAlt), ActionEvent{Action: ActionUnknown, Rune: 'u'}},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), ActionEvent{Action: ActionExecute}},
		{"ctrl z", tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl), ActionEvent{Action: ActionUndo}},
		{"function key", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), ActionEvent{Action: ActionUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ProcessEvent(tt.ev))
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "RotateClockwise", ActionRotateClockwise.String())
	assert.Equal(t, "Unknown", Action(999).String())
	assert.True(t, ActionMovePageDown.IsMovement())
	assert.False(t, ActionUndo.IsMovement())
}
