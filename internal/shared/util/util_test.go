package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./foo/bar  ", expected: "foo/bar"},
		{name: "Relative", input: "foo/../bar", expected: "bar"},
		{name: "Backslashes", input: `foo\bar`, expected: "foo/bar"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizePatternPath(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestModuleNameForPath(t *testing.T) {
	t.Parallel()

	root := filepath.Join("work", "project")
	cases := []struct {
		name     string
		file     string
		expected string
	}{
		{name: "TopLevel", file: filepath.Join(root, "app.py"), expected: "app"},
		{name: "Nested", file: filepath.Join(root, "pkg", "ui", "window.py"), expected: "pkg.ui.window"},
		{name: "Stub", file: filepath.Join(root, "pkg", "types.pyi"), expected: "pkg.types"},
		{name: "Package", file: filepath.Join(root, "pkg", "__init__.py"), expected: "pkg"},
		{name: "RootPackage", file: filepath.Join(root, "__init__.py"), expected: "project"},
		{name: "Outside", file: filepath.Join("elsewhere", "tool.py"), expected: "tool"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ModuleNameForPath(root, tc.file); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestEnsureParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "deeper", "gi.db")
	if err := EnsureParentDir(path); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected a directory")
	}
	if err := EnsureParentDir("gi.db"); err != nil {
		t.Fatalf("bare file name should be a no-op: %v", err)
	}
}

func TestIsDottedIdentifier(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"gi.repository":    true,
		"pgi.repository_2": true,
		"_private":         true,
		"gí.repositório":   true,
		"":                 false,
		"gi..repository":   false,
		"gi.repository.":   false,
		"1gi":              false,
		"gi.2x":            false,
		"gi.repo-sitory":   false,
	}
	for in, want := range cases {
		if got := IsDottedIdentifier(in); got != want {
			t.Errorf("IsDottedIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}
