// Package script runs Lua scripts against a grid.Editor. Everything a script
// changes is grouped so that a single undo reverts the whole run.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bethropolis/cellundo/internal/grid"
	"github.com/bethropolis/cellundo/internal/logger"
	lua "github.com/yuin/gopher-lua"
)

const logTag = "script"

// ErrScriptRunning is returned when a script is started while another runs.
var ErrScriptRunning = errors.New("a script is already running")

// Runner executes scripts one at a time.
type Runner struct {
	editor  *grid.Editor
	timeout time.Duration
}

// NewRunner creates a runner for editor. A zero timeout means scripts run
// until they finish or ctx is cancelled.
func NewRunner(editor *grid.Editor, timeout time.Duration) *Runner {
	return &Runner{editor: editor, timeout: timeout}
}

// newState returns a Lua state with only the base, table, string and math
// libraries and without the functions that load code from disk.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(luaPrint))
	return L
}

func luaPrint(L *lua.LState) int {
	n := L.GetTop()
	args := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		args = append(args, L.ToStringMeta(L.Get(i)).String())
	}
	logger.InfoTagf(logTag, "%s", fmt.Sprint(args...))
	return 0
}

// Run executes src. name is used in errors and logs. The document is in
// script mode for the whole run; an error still ends it so the changes made
// so far undo as one.
func (r *Runner) Run(ctx context.Context, name, src string) error {
	if r.editor.Document().ScriptRunning() {
		return ErrScriptRunning
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	L := newState()
	defer L.Close()
	L.SetContext(ctx)
	L.SetGlobal("g", L.SetFuncs(L.NewTable(), newModule(r.editor).funcs()))

	if err := r.editor.BeginScript(); err != nil {
		return fmt.Errorf("%w: %v", ErrScriptRunning, err)
	}
	logger.DebugTagf(logTag, "running %s", name)
	start := time.Now()

	err := doWithRecovery(func() error { return L.DoString(src) })
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		err = fmt.Errorf("script %s: %w", name, err)
	}
	r.editor.EndScript(err)

	if err != nil {
		logger.WarnTagf(logTag, "%v", err)
		return err
	}
	logger.DebugTagf(logTag, "%s finished in %s", name, time.Since(start))
	return nil
}

// RunFile reads and runs the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return r.Run(ctx, path, string(src))
}

func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
