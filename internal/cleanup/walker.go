package cleanup

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/IGLOU-EU/go-wildcard"
)

// skipDirs are never descended into. Generated trees would only slow the
// walk down and must never be rewritten by cleanup rules.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".devenv":      true,
	"__pycache__":  true,
	".venv":        true,
}

// Tree is the walked file inventory, paths relative to the root with
// forward slashes.
type Tree struct {
	Root  string
	Files []string
	Dirs  []string
}

// WalkTree enumerates the project tree once; rules match against it.
func WalkTree(root string) (*Tree, error) {
	t := &Tree{Root: root}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			t.Dirs = append(t.Dirs, rel)
			return nil
		}
		t.Files = append(t.Files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// MatchGlob reports whether the relative path matches a rule glob.
// go-wildcard's '*' crosses path separators, so "*.ts" matches nested
// files; a leading "**/" is additionally tried stripped so the common
// double-star convention also matches files at the root.
func MatchGlob(pattern, relpath string) bool {
	if wildcard.Match(pattern, relpath) {
		return true
	}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		return wildcard.Match(rest, relpath)
	}
	return false
}

// matchAny reports whether any pattern matches.
func matchAny(patterns []string, relpath string) bool {
	for _, p := range patterns {
		if MatchGlob(p, relpath) {
			return true
		}
	}
	return false
}

// fileExists reports whether rel exists under root as a regular file.
func fileExists(root, rel string) bool {
	info, err := os.Stat(filepath.Join(root, rel))
	return err == nil && !info.IsDir()
}
