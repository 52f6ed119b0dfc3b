package input

import (
	"github.com/gdamore/tcell/v2"
)

// Keymap maps special keys to actions.
type Keymap map[tcell.Key]Action

// RuneKeymap maps plain characters to actions.
type RuneKeymap map[rune]Action

// InputProcessor translates tcell key events into ActionEvents.
type InputProcessor struct {
	keymap     Keymap
	runeKeymap RuneKeymap
}

// NewInputProcessor creates a processor with the default bindings.
func NewInputProcessor() *InputProcessor {
	p := &InputProcessor{
		keymap:     make(Keymap),
		runeKeymap: make(RuneKeymap),
	}
	p.loadDefaultBindings()
	return p
}

func (p *InputProcessor) loadDefaultBindings() {
	p.keymap[tcell.KeyUp] = ActionMoveUp
	p.keymap[tcell.KeyDown] = ActionMoveDown
	p.keymap[tcell.KeyLeft] = ActionMoveLeft
	p.keymap[tcell.KeyRight] = ActionMoveRight
	p.keymap[tcell.KeyPgUp] = ActionMovePageUp
	p.keymap[tcell.KeyPgDn] = ActionMovePageDown
	p.keymap[tcell.KeyEnter] = ActionExecute
	p.keymap[tcell.KeyEscape] = ActionCancel
	p.keymap[tcell.KeyBackspace] = ActionDeleteBackward
	p.keymap[tcell.KeyBackspace2] = ActionDeleteBackward
	p.keymap[tcell.KeyCtrlC] = ActionQuit
	p.keymap[tcell.KeyCtrlQ] = ActionForceQuit
	p.keymap[tcell.KeyCtrlZ] = ActionUndo
	p.keymap[tcell.KeyCtrlY] = ActionRedo

	p.runeKeymap[' '] = ActionToggleCell
	p.runeKeymap['n'] = ActionStep
	p.runeKeymap['g'] = ActionRun
	p.runeKeymap['v'] = ActionFlipTopBottom
	p.runeKeymap['h'] = ActionFlipLeftRight
	p.runeKeymap['r'] = ActionRotateClockwise
	p.runeKeymap['R'] = ActionRotateAnticlockwise
	p.runeKeymap['s'] = ActionSelect
	p.runeKeymap['x'] = ActionDeselect
	p.runeKeymap['a'] = ActionToggleAlgorithm
	p.runeKeymap['u'] = ActionUndo
	p.runeKeymap['U'] = ActionRedo
	p.runeKeymap['0'] = ActionReset
	p.runeKeymap['y'] = ActionCopySelection
	p.runeKeymap['l'] = ActionRunScript
	p.runeKeymap['q'] = ActionQuit
	p.runeKeymap[':'] = ActionEnterCommandMode
}

// ProcessEvent returns the action bound to ev. Unbound printable keys
// become ActionInsertRune.
func (p *InputProcessor) ProcessEvent(ev *tcell.EventKey) ActionEvent {
	key := ev.Key()
	if key == tcell.KeyRune {
		r := ev.Rune()
		if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) != 0 {
			return ActionEvent{Action: ActionUnknown, Rune: r}
		}
		if action, ok := p.runeKeymap[r]; ok {
			return ActionEvent{Action: action, Rune: r}
		}
		return ActionEvent{Action: ActionInsertRune, Rune: r}
	}
	if action, ok := p.keymap[key]; ok {
		return ActionEvent{Action: action}
	}
	return ActionEvent{Action: ActionUnknown}
}
