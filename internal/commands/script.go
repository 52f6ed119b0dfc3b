package commands

import (
	"context"
)

// ScriptRunner runs a script file.
type ScriptRunner interface {
	RunFile(ctx context.Context, path string) error
}

// RegisterScriptCommands registers :script [file]. Without an argument it
// runs defaultFile.
func RegisterScriptCommands(reg Registrar, runner ScriptRunner, defaultFile string, status Status) {
	register(reg, map[string]CommandFunc{
		"script": func(args []string) error {
			path := defaultFile
			if len(args) > 0 {
				path = args[0]
			}
			if err := runner.RunFile(context.Background(), path); err != nil {
				return err
			}
			status.SetTemporaryMessage("Ran %s", path)
			return nil
		},
	})
}
