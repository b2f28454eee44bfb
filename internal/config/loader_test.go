package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tidyherd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "build_dir: build\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "clang-tidy", cfg.Tool)
	assert.Equal(t, "build", cfg.BuildDir)
	assert.GreaterOrEqual(t, cfg.Jobs, 1)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Contains(t, cfg.Extensions, ".cpp")
	assert.Contains(t, cfg.Extensions, ".hpp")
	assert.NotNil(t, cfg.Overrides)
}

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
root: src
build_dir: out
tool: clang-tidy-18
checks: "-*,bugprone-*"
fix: true
jobs: 8
log_level: debug
excludes:
  - thirdparty/
  - generated
extensions: [".cpp", ".hpp"]
overrides:
  src/legacy.cpp:
    - modernize-use-auto
    - readability-magic-numbers
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.Root)
	assert.Equal(t, "out", cfg.BuildDir)
	assert.Equal(t, "clang-tidy-18", cfg.Tool)
	assert.Equal(t, "-*,bugprone-*", cfg.Checks)
	assert.True(t, cfg.Fix)
	assert.Equal(t, 8, cfg.Jobs)
	assert.Equal(t, []string{"thirdparty/", "generated"}, cfg.Excludes)
	assert.Equal(t, []string{".cpp", ".hpp"}, cfg.Extensions)
	assert.Equal(t,
		[]string{"modernize-use-auto", "readability-magic-numbers"},
		cfg.Overrides["src/legacy.cpp"])
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "jobs: [not an int\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "negative jobs",
			mutate:  func(c *Config) { c.Jobs = -1 },
			wantErr: "jobs must be >= 1",
		},
		{
			name:    "extension without dot",
			mutate:  func(c *Config) { c.Extensions = []string{"cpp"} },
			wantErr: "must start with a dot",
		},
		{
			name:    "empty exclude",
			mutate:  func(c *Config) { c.Excludes = []string{"  "} },
			wantErr: "excludes[0] is empty",
		},
		{
			name:    "override with backslash",
			mutate:  func(c *Config) { c.Overrides = map[string][]string{`src\a.cpp`: {"x"}} },
			wantErr: "forward slashes",
		},
		{
			name:    "override with leading dot slash",
			mutate:  func(c *Config) { c.Overrides = map[string][]string{"./a.cpp": {"x"}} },
			wantErr: "must not start with ./",
		},
		{
			name:    "override with no checks",
			mutate:  func(c *Config) { c.Overrides = map[string][]string{"a.cpp": {}} },
			wantErr: "no suppressed checks",
		},
		{
			name:    "override with empty check name",
			mutate:  func(c *Config) { c.Overrides = map[string][]string{"a.cpp": {" "}} },
			wantErr: "empty check name",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Defaults()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
