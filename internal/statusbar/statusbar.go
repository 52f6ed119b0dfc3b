// Package statusbar draws the bottom line of the editor: pattern name,
// dirty marker, generation, rule, cursor and the undo/redo labels, or a
// transient message in their place.
package statusbar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bethropolis/cellundo/internal/theme"
	"github.com/bethropolis/cellundo/internal/types"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Config defines the behavior of the status bar.
type Config struct {
	MessageTimeout time.Duration
}

type messageKind int

const (
	kindMessage messageKind = iota
	kindWarning
)

// StatusBar holds the status line state. Setters may be called from any
// goroutine; Draw runs on the UI goroutine.
type StatusBar struct {
	config Config
	now    func() time.Time
	mu     sync.Mutex

	name       string
	dirty      bool
	generation string
	rule       string
	population int
	hashing    bool
	cursor     types.Cell
	undoLabel  string
	redoLabel  string

	prompt string // command line being typed, shown until cleared

	tempMessage     string
	tempKind        messageKind
	tempMessageTime time.Time
}

// New creates a StatusBar.
func New(config Config) *StatusBar {
	return &StatusBar{config: config, now: time.Now, generation: "0"}
}

// SetPattern updates the document summary.
func (sb *StatusBar) SetPattern(name, generation, rule string, population int, hashing bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.name = name
	sb.generation = generation
	sb.rule = rule
	sb.population = population
	sb.hashing = hashing
}

func (sb *StatusBar) SetDirty(dirty bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.dirty = dirty
}

func (sb *StatusBar) SetCursor(c types.Cell) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.cursor = c
}

// SetHistory sets the labels of the next undo and redo; empty hides them.
func (sb *StatusBar) SetHistory(undoLabel, redoLabel string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.undoLabel = undoLabel
	sb.redoLabel = redoLabel
}

// SetPrompt shows text as the command line. An empty text hides it.
func (sb *StatusBar) SetPrompt(text string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.prompt = text
}

// SetTemporaryMessage displays a message for the configured duration.
func (sb *StatusBar) SetTemporaryMessage(format string, args ...interface{}) {
	sb.setTemp(kindMessage, fmt.Sprintf(format, args...))
}

// SetWarning displays a warning for the configured duration.
func (sb *StatusBar) SetWarning(format string, args ...interface{}) {
	sb.setTemp(kindWarning, fmt.Sprintf(format, args...))
}

func (sb *StatusBar) setTemp(kind messageKind, msg string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = msg
	sb.tempKind = kind
	sb.tempMessageTime = sb.now()
}

// ResetTemporaryMessage clears any temporary message.
func (sb *StatusBar) ResetTemporaryMessage() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = ""
	sb.tempMessageTime = time.Time{}
}

// Message returns the temporary message, or "" once it has expired.
func (sb *StatusBar) Message() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.tempMessageTime.IsZero() || sb.now().Sub(sb.tempMessageTime) > sb.config.MessageTimeout {
		return ""
	}
	return sb.tempMessage
}

// Prompt returns the command line text.
func (sb *StatusBar) Prompt() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.prompt
}

// summary builds the left-hand text. Caller holds mu.
func (sb *StatusBar) summary() string {
	name := sb.name
	if name == "" {
		name = "[untitled]"
	}
	if sb.dirty {
		name += " [+]"
	}
	algo := ""
	if sb.hashing {
		algo = " hash"
	}
	return fmt.Sprintf("%s | Gen %s | %s%s | Pop %d | %d,%d",
		name, sb.generation, sb.rule, algo, sb.population, sb.cursor.X, sb.cursor.Y)
}

// historyText builds the right-hand text. Caller holds mu.
func (sb *StatusBar) historyText() string {
	var parts []string
	if sb.undoLabel != "" {
		parts = append(parts, sb.undoLabel)
	}
	if sb.redoLabel != "" {
		parts = append(parts, sb.redoLabel)
	}
	return strings.Join(parts, " | ")
}

// Draw renders the status bar on the last screen row.
func (sb *StatusBar) Draw(screen tcell.Screen, width, height int, th *theme.Theme) {
	if height <= 0 || width <= 0 {
		return
	}
	y := height - 1

	sb.mu.Lock()
	active := !sb.tempMessageTime.IsZero() && sb.now().Sub(sb.tempMessageTime) <= sb.config.MessageTimeout
	if !sb.tempMessageTime.IsZero() && !active {
		sb.tempMessage = ""
		sb.tempMessageTime = time.Time{}
	}

	base := th.GetStyle(theme.StyleStatusBar)
	var left, right string
	leftStyle := base
	switch {
	case sb.prompt != "":
		left = sb.prompt
		leftStyle = th.GetStyle(theme.StyleStatusBarMessage)
	case active:
		left = sb.tempMessage
		leftStyle = th.GetStyle(theme.StyleStatusBarMessage)
		if sb.tempKind == kindWarning {
			leftStyle = th.GetStyle(theme.StyleStatusBarWarning)
		}
	default:
		left = sb.summary()
		if sb.dirty {
			leftStyle = th.GetStyle(theme.StyleStatusBarModified)
		}
		right = sb.historyText()
	}
	sb.mu.Unlock()

	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, base)
	}
	used := drawString(screen, 0, y, width, left, leftStyle)
	if right == "" {
		return
	}
	rw := uniseg.StringWidth(right)
	if used+1+rw <= width {
		drawString(screen, width-rw, y, width, right, base)
	}
}

// drawString draws s from column x, stopping before maxX. It returns the
// column after the last cluster drawn.
func drawString(screen tcell.Screen, x, y, maxX int, s string, style tcell.Style) int {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		w := gr.Width()
		if x+w > maxX {
			break
		}
		runes := gr.Runes()
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}
