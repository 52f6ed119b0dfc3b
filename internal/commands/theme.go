package commands

import (
	"fmt"
	"strings"

	"github.com/bethropolis/cellundo/internal/theme"
)

// ThemeAPI is the theme access the :theme commands need.
type ThemeAPI interface {
	Current() *theme.Theme
	SetTheme(name string) error
	ListThemes() []string
}

// RegisterThemeCommands registers :theme and :themes.
func RegisterThemeCommands(reg Registrar, themes ThemeAPI, status Status) {
	register(reg, map[string]CommandFunc{
		"theme": func(args []string) error {
			if len(args) == 0 {
				status.SetTemporaryMessage("Current theme: %s", themes.Current().Name)
				return nil
			}
			name := strings.Join(args, " ")
			if err := themes.SetTheme(name); err != nil {
				return fmt.Errorf("theme '%s' not found. Available: %s", name, strings.Join(themes.ListThemes(), ", "))
			}
			status.SetTemporaryMessage("Theme set to: %s", themes.Current().Name)
			return nil
		},
		"themes": func(args []string) error {
			status.SetTemporaryMessage("Available themes: %s", strings.Join(themes.ListThemes(), ", "))
			return nil
		},
	})
}
