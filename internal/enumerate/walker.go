// Package enumerate walks the analysis root and yields candidate files.
package enumerate

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Walk traverses root and calls fn for every candidate file, as a path
// relative to root with forward-slash separators and no leading "./".
//
// A directory whose relative path starts with any exclude prefix is skipped
// along with its whole subtree. Files are yielded only when their extension
// is in the allow-list. Traversal order is directory order; callers must not
// depend on it. Errors from an unreadable subdirectory or from fn propagate
// and abort the walk.
func Walk(root string, excludes, extensions []string, fn func(rel string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if hasExcludedPrefix(rel, excludes) {
				return fs.SkipDir
			}
			return nil
		}

		if hasExcludedPrefix(rel, excludes) {
			return nil
		}
		if !allowedExtension(rel, extensions) {
			return nil
		}
		return fn(rel)
	})
}

// hasExcludedPrefix reports whether rel falls under any exclude prefix.
// Plain string-prefix match against the root-relative path.
func hasExcludedPrefix(rel string, excludes []string) bool {
	for _, prefix := range excludes {
		if strings.HasPrefix(rel, prefix) {
			return true
		}
	}
	return false
}

// allowedExtension reports whether rel's extension is in the allow-list.
func allowedExtension(rel string, extensions []string) bool {
	ext := filepath.Ext(rel)
	for _, allowed := range extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
