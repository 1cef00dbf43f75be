package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gibridge/internal/core/ports"
	"gibridge/internal/shared/util"

	"github.com/gobwas/glob"
)

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func uniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = filepath.Clean(abs)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}

// ScanDirectories lists the Python sources under paths. A path naming a
// file is returned as is when the parser supports it.
func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string

	dirGlobs, err := compileGlobs(excludeDirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(excludeFiles, "exclude file")
	if err != nil {
		return nil, err
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path == root {
					return nil
				}
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !a.Parser.IsSupportedPath(path) {
				return nil
			}
			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// ProcessFile parses path, asks the bridge for its synthetic dependencies
// and records both in the host graph.
func (a *App) ProcessFile(path string, roots []string) (ports.FileDependencies, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ports.FileDependencies{}, err
	}
	file, err := a.Parser.ParseFile(path, content)
	if err != nil {
		return ports.FileDependencies{}, err
	}

	entries, diags := a.Plugin().Dependencies(file)
	a.Graph.AddFile(path, moduleName(path, roots), entries)

	return ports.FileDependencies{
		Path:        path,
		Entries:     entries,
		Diagnostics: diags,
	}, nil
}

func moduleName(path string, roots []string) string {
	root, err := findContainingRoot(path, roots)
	if err != nil {
		return util.ModuleNameForPath(filepath.Dir(path), path)
	}
	return util.ModuleNameForPath(root, path)
}

func findContainingRoot(path string, roots []string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve file path %q: %w", path, err)
	}

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("resolve scan path %q: %w", root, err)
		}
		if info, err := os.Stat(absRoot); err == nil && !info.IsDir() {
			absRoot = filepath.Dir(absRoot)
		}

		rel, err := filepath.Rel(absRoot, absPath)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))) {
			return absRoot, nil
		}
	}

	return "", fmt.Errorf("python file %q is not under any scan path", path)
}
