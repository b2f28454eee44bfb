package override

import "testing"

func TestLookupExactMatch(t *testing.T) {
	t.Parallel()

	table := NewTable(map[string][]string{
		"src/legacy.cpp": {"modernize-use-auto", "readability-magic-numbers"},
		"include/api.h":  {"misc-unused-parameters"},
	})

	got := table.Lookup("src/legacy.cpp")
	if len(got) != 2 || got[0] != "modernize-use-auto" || got[1] != "readability-magic-numbers" {
		t.Fatalf("unexpected suppressions: %v", got)
	}
}

func TestLookupUnmatchedReturnsNil(t *testing.T) {
	t.Parallel()

	table := NewTable(map[string][]string{
		"src/legacy.cpp": {"modernize-use-auto"},
	})

	if got := table.Lookup("src/other.cpp"); got != nil {
		t.Fatalf("expected nil for unmatched path, got %v", got)
	}
}

func TestLookupNoPrefixMatching(t *testing.T) {
	t.Parallel()

	table := NewTable(map[string][]string{
		"src": {"some-check"},
	})

	if got := table.Lookup("src/legacy.cpp"); got != nil {
		t.Fatalf("expected no prefix matching, got %v", got)
	}
	if got := table.Lookup("src/"); got != nil {
		t.Fatalf("expected no prefix matching, got %v", got)
	}
}

func TestNewTableCopiesInput(t *testing.T) {
	t.Parallel()

	src := map[string][]string{"a.cpp": {"check-one"}}
	table := NewTable(src)

	src["a.cpp"][0] = "mutated"
	if got := table.Lookup("a.cpp"); got[0] != "check-one" {
		t.Fatalf("table aliased caller's slice: %v", got)
	}
}

func TestLen(t *testing.T) {
	t.Parallel()

	table := NewTable(map[string][]string{"a.cpp": {"x"}, "b.cpp": {"y"}})
	if table.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", table.Len())
	}
}
