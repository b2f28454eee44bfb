package config

import "runtime"

// Config represents the complete tidyherd configuration: the scalar options
// that shape a run plus the static tables consumed by the dispatcher core.
type Config struct {
	// Root is the analysis root directory that is walked for candidate files.
	Root string `yaml:"root"`

	// BuildDir is the compilation-database directory passed to the tool (-p).
	BuildDir string `yaml:"build_dir"`

	// Tool is the analysis tool binary, resolved on PATH or given as a path.
	Tool string `yaml:"tool"`

	// Checks is the global check-filter string, passed through verbatim.
	Checks string `yaml:"checks,omitempty"`

	// Fix enables the tool's apply-fixes mode.
	Fix bool `yaml:"fix,omitempty"`

	// Jobs is the worker count; it also bounds the task queue.
	Jobs int `yaml:"jobs"`

	// LogLevel controls diagnostic logging (DEBUG/INFO/WARN/ERROR).
	LogLevel string `yaml:"log_level"`

	// LogDB is an optional SQLite path for the per-task run log.
	LogDB string `yaml:"log_db,omitempty"`

	// Excludes lists relative-path prefixes whose subtrees are never analyzed.
	Excludes []string `yaml:"excludes,omitempty"`

	// Extensions is the file-extension allow-list (leading dot included).
	Extensions []string `yaml:"extensions"`

	// Overrides maps a normalized relative path to the check names suppressed
	// for that file only. Exact match, no globbing.
	Overrides map[string][]string `yaml:"overrides,omitempty"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Root:     ".",
		Tool:     "clang-tidy",
		Jobs:     runtime.NumCPU(),
		LogLevel: "info",
		Extensions: []string{
			".cpp", ".cc", ".cxx", ".c", ".h", ".hpp", ".hh",
		},
		Overrides: make(map[string][]string),
	}
}
