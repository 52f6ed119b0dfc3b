// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/cellundo/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger  logger.Config `toml:"logger"`
	Editor  EditorConfig  `toml:"editor"`
	History HistoryConfig `toml:"history"`
	Script  ScriptConfig  `toml:"script"`
}

// EditorConfig holds document and front-end settings.
type EditorConfig struct {
	Rule     string `toml:"rule"`
	StepSize int    `toml:"step_size"`
	Theme    string `toml:"theme"`
}

// HistoryConfig holds undo engine settings.
type HistoryConfig struct {
	// SnapshotBackend selects where generation snapshots live:
	// "file", "bolt", "badger" or "memory".
	SnapshotBackend string `toml:"snapshot_backend"`
	// SnapshotDir is the directory for snapshot files or databases.
	// Empty uses a fresh directory under os.TempDir().
	SnapshotDir string `toml:"snapshot_dir"`
	// SnapshotReuse is "copy" (duplicate the previous snapshot, the
	// default) or "share" (reference it) when consecutive runs are compatible.
	SnapshotReuse string `toml:"snapshot_reuse"`
	// Compress gzips snapshot payloads.
	Compress bool `toml:"compress"`
	// CellBufferLimit caps the cells recorded per gesture; further cells are
	// dropped with a memory warning. 0 means unlimited.
	CellBufferLimit int `toml:"cell_buffer_limit"`
}

// ScriptConfig holds automation settings.
type ScriptConfig struct {
	// Timeout bounds a single script run, e.g. "30s".
	Timeout string `toml:"timeout"`
	// File is the script run by the front end's script command.
	File string `toml:"file"`
}

// TimeoutDuration parses Timeout, falling back to the default.
func (s ScriptConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return DefaultScriptTimeout
	}
	return d
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			LogLevel:    "info",
			LogFilePath: "",
		},
		Editor: EditorConfig{
			Rule:     DefaultRule,
			StepSize: DefaultStepSize,
		},
		History: HistoryConfig{
			SnapshotBackend: DefaultSnapshotBackend,
			SnapshotReuse:   DefaultSnapshotReuse,
			Compress:        true,
		},
		Script: ScriptConfig{
			Timeout: DefaultScriptTimeout.String(),
			File:    DefaultScriptFile,
		},
	}
}

// loadFromFile decodes a TOML file over cfg. A missing file is not an error.
func loadFromFile(filePath string, cfg *Config) error {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		logger.Warnf("Config file '%s': Unrecognized keys: %v", filePath, undecoded)
	}
	return nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Editor.Rule == "" {
		c.Editor.Rule = defaults.Editor.Rule
	}
	if c.Editor.StepSize <= 0 {
		c.Editor.StepSize = defaults.Editor.StepSize
	}

	switch c.History.SnapshotBackend {
	case BackendFile, BackendBolt, BackendBadger, BackendMemory:
	default:
		logger.Warnf("Config: unknown snapshot backend '%s', using '%s'", c.History.SnapshotBackend, defaults.History.SnapshotBackend)
		c.History.SnapshotBackend = defaults.History.SnapshotBackend
	}
	switch c.History.SnapshotReuse {
	case ReuseShare, ReuseCopy:
	default:
		c.History.SnapshotReuse = defaults.History.SnapshotReuse
	}
	if c.History.CellBufferLimit < 0 {
		c.History.CellBufferLimit = 0
	}

	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.Script.File == "" {
		c.Script.File = defaults.Script.File
	}
}

// DefaultPath returns the config file location under the user config dir,
// or "" if it cannot be determined.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, AppName, DefaultConfigFileName)
}

// Load builds a configuration from defaults, the TOML file at path (or the
// default location when path is empty) and flag overrides, then validates it.
func Load(path string, flags *Flags) (*Config, error) {
	cfg := NewDefaultConfig()

	effectivePath := path
	if effectivePath == "" {
		effectivePath = DefaultPath()
	}

	var err error
	if effectivePath != "" {
		err = loadFromFile(effectivePath, cfg)
	}

	if flags != nil {
		flags.ApplyOverrides(cfg)
	}

	cfg.validate()
	return cfg, err
}

// LoadConfig loads the process configuration once; later calls return the same result.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	loadOnce.Do(func() {
		loadedConfig, loadErr = Load(configFilePath, flags)
	})
	return loadedConfig, loadErr
}

// Get returns the loaded application configuration. Panics if LoadConfig wasn't called.
func Get() *Config {
	if loadedConfig == nil {
		panic("config.Get() called before config.LoadConfig()")
	}
	return loadedConfig
}
