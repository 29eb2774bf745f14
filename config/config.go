package config

import (
	"os"
	"path/filepath"
)

// DefaultKeywords is the keyword file used when none is configured.
const DefaultKeywords = "./config/keyword.xml"

// Config represents the complete vipl configuration
type Config struct {
	BaseDir  string        `yaml:"-"` // Directory containing config file, for resolving relative paths
	Path     string        `yaml:"-"` // Config file that was loaded, empty for defaults
	Keywords string        `yaml:"keywords"`
	Match    string        `yaml:"match"` // "delimited" or "prefix"
	REPL     REPLConfig    `yaml:"repl"`
	Logging  LoggingConfig `yaml:"logging"`
}

// REPLConfig holds interactive session settings
type REPLConfig struct {
	History string `yaml:"history"` // History file (default: $TMPDIR/.vipl_history)
	Watch   bool   `yaml:"watch"`   // Reload the keyword file when it changes
}

// LoggingConfig holds diagnostic logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Output string `yaml:"output"` // stderr, stdout, or file path
}

// Defaults returns a Config with default values
func Defaults() *Config {
	return &Config{
		Match: "delimited",
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
		},
	}
}

// KeywordsPath returns the keyword file and whether it was set explicitly
// rather than falling back to DefaultKeywords.
func (c *Config) KeywordsPath() (string, bool) {
	if c.Keywords == "" {
		return DefaultKeywords, false
	}
	return c.Keywords, true
}

// HistoryPath returns the REPL history file.
func (c *Config) HistoryPath() string {
	if c.REPL.History == "" {
		return filepath.Join(os.TempDir(), ".vipl_history")
	}
	return c.REPL.History
}
