// Package doctor validates the environment a run needs before any work starts.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mfletch/tidyherd/internal/config"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Check runs every precondition against cfg and returns a result. The
// dispatcher trusts these checks; it never re-validates.
func Check(cfg *config.Config) *Result {
	r := &Result{Valid: true}

	checkRoot(r, cfg)
	checkBuildDir(r, cfg)
	checkTool(r, cfg)
	checkJobs(r, cfg)
	checkOverrides(r, cfg)
	checkExcludes(r, cfg)

	r.Valid = len(r.Errors) == 0
	return r
}

func addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

func checkRoot(r *Result, cfg *config.Config) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		addError(r, "root", "root", fmt.Sprintf("analysis root %q does not exist", cfg.Root))
		return
	}
	if !info.IsDir() {
		addError(r, "root", "root", fmt.Sprintf("analysis root %q is not a directory", cfg.Root))
	}
}

func checkBuildDir(r *Result, cfg *config.Config) {
	if cfg.BuildDir == "" {
		addError(r, "build_dir", "build_dir", "build_dir is required")
		return
	}
	info, err := os.Stat(cfg.BuildDir)
	if err != nil {
		addError(r, "build_dir", "build_dir", fmt.Sprintf("build directory %q does not exist", cfg.BuildDir))
		return
	}
	if !info.IsDir() {
		addError(r, "build_dir", "build_dir", fmt.Sprintf("build directory %q is not a directory", cfg.BuildDir))
		return
	}
	ccPath := filepath.Join(cfg.BuildDir, "compile_commands.json")
	if _, err := os.Stat(ccPath); err != nil {
		addWarning(r, "build_dir", "build_dir",
			fmt.Sprintf("no compile_commands.json in %q; the tool may not find compilation flags", cfg.BuildDir))
	}
}

func checkTool(r *Result, cfg *config.Config) {
	if cfg.Tool == "" {
		addError(r, "tool", "tool", "tool is required")
		return
	}
	if _, err := exec.LookPath(cfg.Tool); err != nil {
		addError(r, "tool", "tool", fmt.Sprintf("tool %q not found or not executable: %v", cfg.Tool, err))
	}
}

func checkJobs(r *Result, cfg *config.Config) {
	if cfg.Jobs < 1 {
		addError(r, "jobs", "jobs", fmt.Sprintf("jobs must be >= 1, got %d", cfg.Jobs))
	}
}

// checkOverrides warns about override entries that can never match a task:
// the enumerator yields forward-slash relative paths in the extension
// allow-list, so anything else in the table is dead weight.
func checkOverrides(r *Result, cfg *config.Config) {
	for path := range cfg.Overrides {
		field := fmt.Sprintf("overrides.%s", path)
		if strings.HasPrefix(path, "/") {
			addWarning(r, "overrides", field, "override path is absolute; task paths are root-relative")
			continue
		}
		ext := filepath.Ext(path)
		allowed := false
		for _, e := range cfg.Extensions {
			if ext == e {
				allowed = true
				break
			}
		}
		if !allowed {
			addWarning(r, "overrides", field,
				fmt.Sprintf("override path extension %q is not in the allow-list; entry will never match", ext))
		}
	}
}

func checkExcludes(r *Result, cfg *config.Config) {
	for i, prefix := range cfg.Excludes {
		if strings.HasPrefix(prefix, "/") {
			addWarning(r, "excludes", fmt.Sprintf("excludes[%d]", i),
				"exclude prefix is absolute; prefixes match root-relative paths")
		}
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Environment valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "Environment valid (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Environment invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
