package config

import "time"

// Base application details
const AppName = "cellundo"
const ThemesDirName = "themes"
const DefaultThemeFileName = "theme.toml"   // Active theme file
const DefaultConfigFileName = "config.toml" // Main config file
const DefaultLogFileName = "cellundo.log"

// UI Layout
const StatusBarHeight = 1

// Status Bar
const MessageTimeout = 4 * time.Second

// Editor defaults
const DefaultRule = "B3/S23"
const DefaultStepSize = 10
const DefaultScriptFile = "script.lua"

// History defaults
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendBadger = "badger"
	BackendMemory = "memory"

	ReuseShare = "share"
	ReuseCopy  = "copy"
)

const DefaultSnapshotBackend = BackendFile
const DefaultSnapshotReuse = ReuseCopy
const DefaultScriptTimeout = 30 * time.Second
