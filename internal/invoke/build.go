// Package invoke constructs analysis-tool argument vectors.
package invoke

import "strings"

// Options carries everything Build needs besides the target path.
type Options struct {
	BuildDir     string
	Checks       string   // global check-filter string, passed through verbatim
	Suppressions []string // per-file checks to negate, in table order
	Fix          bool
}

// Build returns the argument vector for one tool invocation, excluding the
// tool binary itself. Order is fixed: quiet flag, database dir, combined
// checks flag, fix flag, target. The checks value negates each per-file
// suppression first and appends the global filter last, so the tool's
// later-entry-wins grammar applies the global filter on top of suppressions.
// The checks flag is omitted entirely when both parts are empty.
func Build(opts Options, target string) []string {
	args := []string{"-quiet", "-p", opts.BuildDir}

	parts := make([]string, 0, len(opts.Suppressions)+1)
	for _, name := range opts.Suppressions {
		parts = append(parts, "-"+name)
	}
	if opts.Checks != "" {
		parts = append(parts, opts.Checks)
	}
	if len(parts) > 0 {
		args = append(args, "-checks="+strings.Join(parts, ","))
	}

	if opts.Fix {
		args = append(args, "-fix")
	}

	return append(args, target)
}

// Cmdline renders the echoed command line for a tool invocation, so a human
// can copy-paste and reproduce any single task.
func Cmdline(tool string, args []string) string {
	return tool + " " + strings.Join(args, " ")
}
