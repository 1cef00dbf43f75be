package util

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

// NormalizePatternPath cleans and normalizes paths for matcher/pattern usage.
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// ModuleNameForPath derives the dotted Python module name of file relative
// to root: "pkg/sub/mod.py" is "pkg.sub.mod" and "pkg/__init__.py" is "pkg".
// Files outside root fall back to their base name.
func ModuleNameForPath(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(file)
	}
	rel = NormalizePatternPath(filepath.ToSlash(rel))
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	rel = strings.TrimSuffix(rel, "/__init__")
	if rel == "__init__" {
		rel = path.Base(NormalizePatternPath(filepath.ToSlash(root)))
	}
	return strings.ReplaceAll(rel, "/", ".")
}

// IsDottedIdentifier reports whether s is a dotted Python module path such
// as "gi.repository". Segments follow Python's identifier rules, so
// non-ASCII letters are allowed.
func IsDottedIdentifier(s string) bool {
	for _, seg := range strings.Split(s, ".") {
		if !isIdentifier(seg) {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
