// Package report post-processes and serializes per-task tool output.
package report

import (
	"regexp"
	"strings"
)

// warningTrailer matches the tool's "N warning(s) generated." summary line.
var warningTrailer = regexp.MustCompile(`^\d+ warnings? generated\.$`)

// Reconcile strips the tool's warning-count trailer from stderr when it is
// the final line, and returns both streams otherwise unchanged. The trailer
// is noise, not an actionable diagnostic. A diagnostic that merely contains
// the phrase somewhere earlier in stderr is left alone; only the final line
// is tested. stdout is never modified.
func Reconcile(stdout, stderr string) (string, string) {
	trimmed := strings.TrimSuffix(stderr, "\n")
	if trimmed == "" {
		return stdout, stderr
	}

	idx := strings.LastIndexByte(trimmed, '\n')
	last := trimmed[idx+1:]
	if !warningTrailer.MatchString(last) {
		return stdout, stderr
	}

	if idx < 0 {
		return stdout, ""
	}
	return stdout, trimmed[:idx+1]
}
