// Package config loads per-module compilation options from a TOML
// manifest, the same format and decoding discipline this repo's source
// material uses for its own project manifest.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"vela/internal/trace"
)

// Compilation holds the options that drive one run of the middle-end:
// which diagnostics are promoted to errors, how deep generic
// instantiation may recurse before it's treated as a runaway expansion,
// and how the run should be traced.
type Compilation struct {
	Package     PackageConfig     `toml:"package"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Limits      LimitsConfig      `toml:"limits"`
	Trace       TraceConfig       `toml:"trace"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// DiagnosticsConfig controls which normally-warning-level conditions are
// escalated to hard errors for this compilation.
type DiagnosticsConfig struct {
	WarningsAsErrors bool `toml:"warnings_as_errors"`
}

// LimitsConfig bounds otherwise-unbounded recursive work.
type LimitsConfig struct {
	// MaxGenericDepth is a depth limit for nested generic instantiation.
	// Load reads it and fills in its default; CollectGenericInstance does
	// not read it, so instantiation chains are not bounded by it.
	MaxGenericDepth int `toml:"max_generic_depth"`
}

// TraceConfig configures the trace package for this run.
type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"` // "-" for stderr, else a file path
}

// Default returns the options used when no manifest is present.
func Default() Compilation {
	return Compilation{
		Limits: LimitsConfig{MaxGenericDepth: 64},
		Trace:  TraceConfig{Level: "off", Output: "-"},
	}
}

// Load reads and validates a compilation manifest from path.
func Load(path string) (Compilation, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Compilation{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Compilation{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if cfg.Limits.MaxGenericDepth <= 0 {
		cfg.Limits.MaxGenericDepth = 64
	}
	return cfg, nil
}

// TraceLevel parses the configured trace level, falling back to off on
// an empty or invalid setting rather than failing the whole load.
func (c Compilation) TraceLevel() trace.Level {
	lvl, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.LevelOff
	}
	return lvl
}
