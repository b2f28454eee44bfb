package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and parses configuration from a YAML file, applies defaults,
// and validates the result. The static tables (excludes, extensions,
// overrides) are fixed data: they are loaded once here and never reloaded.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg = applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills unset fields from Defaults().
func applyDefaults(cfg *Config) *Config {
	def := Defaults()

	if cfg.Root == "" {
		cfg.Root = def.Root
	}
	if cfg.Tool == "" {
		cfg.Tool = def.Tool
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = def.Jobs
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = def.Extensions
	}
	if cfg.Overrides == nil {
		cfg.Overrides = make(map[string][]string)
	}
	return cfg
}

// Validate checks field-level constraints. Existence checks for the root,
// build dir, and tool binary belong to the doctor, not here.
func Validate(cfg *Config) error {
	if cfg.Jobs < 1 {
		return fmt.Errorf("jobs must be >= 1, got %d", cfg.Jobs)
	}

	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extensions[%d]: %q must start with a dot", i, ext)
		}
	}

	for i, prefix := range cfg.Excludes {
		if strings.TrimSpace(prefix) == "" {
			return fmt.Errorf("excludes[%d] is empty", i)
		}
	}

	for path, checks := range cfg.Overrides {
		if strings.Contains(path, `\`) {
			return fmt.Errorf("overrides path %q must use forward slashes", path)
		}
		if strings.HasPrefix(path, "./") {
			return fmt.Errorf("overrides path %q must not start with ./", path)
		}
		if len(checks) == 0 {
			return fmt.Errorf("overrides path %q has no suppressed checks", path)
		}
		for _, c := range checks {
			if strings.TrimSpace(c) == "" {
				return fmt.Errorf("overrides path %q contains an empty check name", path)
			}
		}
	}

	return nil
}
