// internal/config/flags.go
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/bethropolis/cellundo/internal/logger"
)

// Flags holds values parsed from command-line flags.
type Flags struct {
	set *flag.FlagSet

	ConfigFilePath  string
	Version         bool
	LogLevel        string
	LogFilePath     string
	EnableTags      string
	DisableTags     string
	EnablePkgs      string
	DisablePkgs     string
	DebugLog        bool
	Rule            string
	StepSize        int
	SnapshotBackend string
	SnapshotDir     string
	SnapshotReuse   string
	Compress        bool
	CellLimit       int
	ScriptFile      string
}

// NewFlags defines the command-line flags on a new flag set.
func NewFlags(name string) *Flags {
	f := &Flags{set: flag.NewFlagSet(name, flag.ContinueOnError)}
	s := f.set
	s.StringVar(&f.ConfigFilePath, "config", "", fmt.Sprintf("Path to TOML configuration file (default ~/.config/%s/%s)", AppName, DefaultConfigFileName))
	s.BoolVar(&f.Version, "version", false, "Show version information and exit")
	s.StringVar(&f.LogLevel, "loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	s.StringVar(&f.LogFilePath, "logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	s.StringVar(&f.EnableTags, "log-tags", "", "Comma-separated list of tags to enable - Overrides config file")
	s.StringVar(&f.DisableTags, "log-disable-tags", "", "Comma-separated list of tags to disable - Overrides config file")
	s.StringVar(&f.EnablePkgs, "log-packages", "", "Comma-separated list of packages to enable - Overrides config file")
	s.StringVar(&f.DisablePkgs, "log-disable-packages", "", "Comma-separated list of packages to disable - Overrides config file")
	s.BoolVar(&f.DebugLog, "debug-log", false, "Trace the logger filtering decisions to stderr")
	s.StringVar(&f.Rule, "rule", "", "Initial rule in B/S notation - Overrides config file")
	s.IntVar(&f.StepSize, "step", 0, "Generations advanced by the run command - Overrides config file")
	s.StringVar(&f.SnapshotBackend, "snapshots", "", "Snapshot backend (file, bolt, badger, memory) - Overrides config file")
	s.StringVar(&f.SnapshotDir, "snapshot-dir", "", "Directory for snapshot storage - Overrides config file")
	s.StringVar(&f.SnapshotReuse, "snapshot-reuse", "", "Reuse mode for consecutive runs (share, copy) - Overrides config file")
	s.BoolVar(&f.Compress, "compress", true, "Gzip snapshot payloads - Overrides config file")
	s.IntVar(&f.CellLimit, "cell-limit", 0, "Maximum cells recorded per gesture (0 = unlimited) - Overrides config file")
	s.StringVar(&f.ScriptFile, "script", "", "Lua script run by the script command - Overrides config file")
	return f
}

// Parse parses args and returns the remaining non-flag arguments.
func (f *Flags) Parse(args []string) ([]string, error) {
	if err := f.set.Parse(args); err != nil {
		return nil, err
	}
	return f.set.Args(), nil
}

// ApplyOverrides updates cfg with values from flags that were actually set.
func (f *Flags) ApplyOverrides(cfg *Config) {
	f.set.Visit(func(fl *flag.Flag) {
		logger.DebugTagf("config", "Applying flag override: %s=%s", fl.Name, fl.Value.String())
		switch fl.Name {
		case "loglevel":
			if f.LogLevel != "" {
				cfg.Logger.LogLevel = f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = f.LogFilePath
		case "log-tags":
			cfg.Logger.EnabledTags = splitCommaList(f.EnableTags)
		case "log-disable-tags":
			cfg.Logger.DisabledTags = splitCommaList(f.DisableTags)
		case "log-packages":
			cfg.Logger.EnabledPackages = splitCommaList(f.EnablePkgs)
		case "log-disable-packages":
			cfg.Logger.DisabledPackages = splitCommaList(f.DisablePkgs)
		case "debug-log":
			logger.SetFilterDebug(f.DebugLog)
		case "rule":
			if f.Rule != "" {
				cfg.Editor.Rule = f.Rule
			}
		case "step":
			if f.StepSize > 0 {
				cfg.Editor.StepSize = f.StepSize
			}
		case "snapshots":
			cfg.History.SnapshotBackend = f.SnapshotBackend
		case "snapshot-dir":
			cfg.History.SnapshotDir = f.SnapshotDir
		case "snapshot-reuse":
			cfg.History.SnapshotReuse = f.SnapshotReuse
		case "compress":
			cfg.History.Compress = f.Compress
		case "cell-limit":
			if f.CellLimit >= 0 {
				cfg.History.CellBufferLimit = f.CellLimit
			}
		case "script":
			if f.ScriptFile != "" {
				cfg.Script.File = f.ScriptFile
			}
		}
	})
}

func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
