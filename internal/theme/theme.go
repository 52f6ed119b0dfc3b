// Package theme maps style names used by the grid view and status bar to
// tcell styles. Themes are built in or loaded from TOML files.
package theme

import (
	"strings"

	"github.com/bethropolis/cellundo/internal/logger"
	"github.com/gdamore/tcell/v2"
)

// Style names looked up by the renderer.
const (
	StyleDefault           = "Default"
	StyleCell              = "Cell"
	StyleCellSelected      = "Cell.selected"
	StyleSelection         = "Selection"
	StyleCursor            = "Cursor"
	StyleStatusBar         = "StatusBar"
	StyleStatusBarModified = "StatusBar.modified"
	StyleStatusBarMessage  = "StatusBar.message"
	StyleStatusBarWarning  = "StatusBar.warning"
)

// Theme is a named set of styles.
type Theme struct {
	Name   string
	IsDark bool
	Styles map[string]tcell.Style
}

// GetStyle returns the style for name. A dotted name falls back to its base
// ("StatusBar.warning" -> "StatusBar"), then to "Default".
func (t *Theme) GetStyle(name string) tcell.Style {
	if style, ok := t.Styles[name]; ok {
		return style
	}

	if dot := strings.Index(name, "."); dot != -1 {
		if style, ok := t.Styles[name[:dot]]; ok {
			return style
		}
	}

	if def, ok := t.Styles[StyleDefault]; ok {
		return def
	}

	logger.Warnf("Theme '%s': Style '%s' and 'Default' style not found, using tcell default.", t.Name, name)
	return tcell.StyleDefault
}

// Built-in themes.
var (
	Dark  Theme
	Light Theme
)

func init() {
	bar := tcell.NewHexColor(0x2a2f38)
	fg := tcell.NewHexColor(0xc5cdd9)
	dim := tcell.NewHexColor(0x5c6370)
	green := tcell.NewHexColor(0x98c379)
	yellow := tcell.NewHexColor(0xe5c07b)
	red := tcell.NewHexColor(0xe06c75)
	blue := tcell.NewHexColor(0x61afef)

	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(dim)
	Dark = Theme{
		Name:   "Cellundo Dark",
		IsDark: true,
		Styles: map[string]tcell.Style{
			StyleDefault:           base,
			StyleCell:              base.Foreground(green).Bold(true),
			StyleCellSelected:      base.Background(tcell.NewHexColor(0x3e4451)).Foreground(green).Bold(true),
			StyleSelection:         base.Background(tcell.NewHexColor(0x3e4451)),
			StyleCursor:            base.Reverse(true),
			StyleStatusBar:         tcell.StyleDefault.Background(bar).Foreground(fg),
			StyleStatusBarModified: tcell.StyleDefault.Background(bar).Foreground(yellow),
			StyleStatusBarMessage:  tcell.StyleDefault.Background(bar).Foreground(blue).Bold(true),
			StyleStatusBarWarning:  tcell.StyleDefault.Background(bar).Foreground(red).Bold(true),
		},
	}

	lbar := tcell.NewHexColor(0xe5e5e6)
	lfg := tcell.NewHexColor(0x383a42)
	lbase := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.NewHexColor(0xa0a1a7))
	Light = Theme{
		Name: "Cellundo Light",
		Styles: map[string]tcell.Style{
			StyleDefault:           lbase,
			StyleCell:              lbase.Foreground(tcell.NewHexColor(0x50a14f)).Bold(true),
			StyleSelection:         lbase.Background(tcell.NewHexColor(0xd0d0d0)),
			StyleCellSelected:      lbase.Background(tcell.NewHexColor(0xd0d0d0)).Foreground(tcell.NewHexColor(0x50a14f)).Bold(true),
			StyleCursor:            lbase.Reverse(true),
			StyleStatusBar:         tcell.StyleDefault.Background(lbar).Foreground(lfg),
			StyleStatusBarModified: tcell.StyleDefault.Background(lbar).Foreground(tcell.NewHexColor(0xc18401)),
			StyleStatusBarWarning:  tcell.StyleDefault.Background(lbar).Foreground(tcell.NewHexColor(0xe45649)).Bold(true),
		},
	}
}
