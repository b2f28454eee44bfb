// Package override holds the per-file check-suppression table.
package override

// Table maps a normalized relative file path to the ordered list of check
// names suppressed for that file. Read-only after construction.
type Table struct {
	entries map[string][]string
}

// NewTable builds a Table from a path -> suppressions map. The map is copied;
// later mutation of the argument does not affect the table.
func NewTable(entries map[string][]string) *Table {
	t := &Table{entries: make(map[string][]string, len(entries))}
	for path, checks := range entries {
		cp := make([]string, len(checks))
		copy(cp, checks)
		t.entries[path] = cp
	}
	return t
}

// Lookup returns the suppressed checks for an exact path match, or nil when
// the path has no override. No globbing, no prefix matching.
func (t *Table) Lookup(path string) []string {
	return t.entries[path]
}

// Len returns the number of configured overrides.
func (t *Table) Len() int {
	return len(t.entries)
}
