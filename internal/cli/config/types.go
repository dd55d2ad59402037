// Package config loads xmirlint CLI configuration.
//
// Sources, lowest to highest precedence: built-in defaults, xmirlint.yaml,
// XMIRLINT_* environment variables, explicitly set command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	Output      string        `koanf:"output"`
	Verbose     bool          `koanf:"verbose"`
	Severity    string        `koanf:"severity"`
	StatePath   string        `koanf:"state_path"`
	PatternsDir string        `koanf:"patterns_dir"`
	Concurrency int           `koanf:"concurrency"`
	MaxSteps    uint64        `koanf:"max_steps"`
	Lint        LintConfig    `koanf:"lint"`
	Tagger      TaggerConfig  `koanf:"tagger"`
	Server      ServerConfig  `koanf:"server"`
	Timeout     time.Duration `koanf:"timeout"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
}

// LintConfig selects rules and tunes them.
type LintConfig struct {
	// Disabled lists rule names that never run
	Disabled []string `koanf:"disabled"`
	// Severity overrides the default severity per rule name
	Severity map[string]string `koanf:"severity"`
	// Rules holds per-rule options, e.g. rules.alias-too-long.max_parts
	Rules map[string]map[string]any `koanf:"rules"`
}

// TaggerConfig selects the part-of-speech tagger.
type TaggerConfig struct {
	Kind    string        `koanf:"kind"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Lexicon string        `koanf:"lexicon"`
}

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// Default configuration values.
const (
	DefaultConfigFile = "xmirlint.yaml"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultSeverity   = "info"
	DefaultTagger     = "lexicon"
	DefaultPort       = 8765
	DefaultTimeout    = 5 * time.Minute
	EnvPrefix         = "XMIRLINT_"
)
