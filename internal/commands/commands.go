// Package commands implements the ":" commands of the editor.
package commands

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bethropolis/cellundo/internal/grid"
	"github.com/bethropolis/cellundo/internal/logger"
	"github.com/bethropolis/cellundo/internal/types"
)

// CommandFunc runs a command with its whitespace-separated arguments.
type CommandFunc func(args []string) error

// Registrar accepts command registrations.
type Registrar interface {
	RegisterCommand(name string, fn CommandFunc) error
}

// Status shows command feedback.
type Status interface {
	SetTemporaryMessage(format string, args ...interface{})
}

func register(reg Registrar, cmds map[string]CommandFunc) {
	for name, fn := range cmds {
		if err := reg.RegisterCommand(name, fn); err != nil {
			logger.Warnf("Failed to register ':%s' command: %v", name, err)
		}
	}
}

// RegisterEditorCommands registers the pattern commands.
func RegisterEditorCommands(reg Registrar, ed *grid.Editor, status Status) {
	register(reg, map[string]CommandFunc{
		"rule": func(args []string) error {
			if len(args) != 1 {
				status.SetTemporaryMessage("Rule: %s", ed.Document().Rule())
				return nil
			}
			return ed.SetRule(args[0])
		},
		"gen": func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: gen <n>")
			}
			gen, ok := new(big.Int).SetString(args[0], 10)
			if !ok || gen.Sign() < 0 {
				return fmt.Errorf("bad generation %q", args[0])
			}
			return ed.SetGeneration(gen)
		},
		"step": func(args []string) error {
			n := 1
			if len(args) > 0 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 0 {
					return fmt.Errorf("bad step count %q", args[0])
				}
				n = v
			}
			return ed.Step(n)
		},
		"name": func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("usage: name <new name>")
			}
			ed.Rename(strings.Join(args, " "))
			return nil
		},
		"select": func(args []string) error {
			if len(args) == 0 {
				ed.Deselect()
				return nil
			}
			if len(args) != 4 {
				return fmt.Errorf("usage: select <x> <y> <w> <h>")
			}
			var v [4]int
			for i, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("bad number %q", a)
				}
				v[i] = n
			}
			if v[2] <= 0 || v[3] <= 0 {
				return fmt.Errorf("width and height must be positive")
			}
			ed.Select(types.BigRectFrom(types.Rect{Top: v[1], Left: v[0], Bottom: v[1] + v[3] - 1, Right: v[0] + v[2] - 1}))
			return nil
		},
		"new": func(args []string) error {
			name := "untitled"
			if len(args) > 0 {
				name = strings.Join(args, " ")
			}
			return ed.NewPattern(name)
		},
		"reset": func(args []string) error {
			return ed.Reset()
		},
	})
}

// RegisterFileCommands registers :w and :open.
func RegisterFileCommands(reg Registrar, ed *grid.Editor, status Status) {
	register(reg, map[string]CommandFunc{
		"w": func(args []string) error {
			path := ed.Document().FileState().CurrFile
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no file name")
			}
			if err := writePattern(ed.Document(), path); err != nil {
				return err
			}
			ed.SetFile(path, filepath.Base(path))
			status.SetTemporaryMessage("Wrote %s", path)
			return nil
		},
		"open": func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: open <file>")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := ed.Open(args[0], f); err != nil {
				return err
			}
			status.SetTemporaryMessage("Opened %s", args[0])
			return nil
		},
	})
}

func writePattern(doc *grid.Document, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return doc.WritePattern(f)
}
