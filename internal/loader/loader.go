// Package loader finds lesson files in a corpus directory and reads and writes
// them through an afero filesystem.
package loader

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/palemoky/morning-reading/internal/errors"
	"github.com/palemoky/morning-reading/internal/lesson"
)

// DefaultExcludes are skipped whatever the configured excludes are.
var DefaultExcludes = []string{
	"**/.*",
	"**/.*/**",
	"**/*.tmp",
}

// Discover walks root and returns the files, relative to root and slash
// separated, matching at least one include pattern and no exclude pattern.
// The result is sorted so that runs are reproducible.
func Discover(fs afero.Fs, root string, includes, excludes []string) ([]string, error) {
	if len(includes) == 0 {
		return []string{}, nil
	}

	for _, p := range slices.Concat(includes, excludes) {
		if err := validatePattern(p); err != nil {
			return nil, errors.InvalidConfig("%v", err)
		}
	}
	excludes = slices.Concat(DefaultExcludes, excludes)

	info, err := fs.Stat(root)
	if err != nil {
		return nil, errors.IO(root, "stat", err)
	}
	if !info.IsDir() {
		return nil, errors.IO(root, "stat", fmt.Errorf("not a directory"))
	}

	var files []string
	err = afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchesAny(includes, rel) && !matchesAny(excludes, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.IO(root, "walk", err)
	}

	slices.Sort(files)
	return files, nil
}

func validatePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid glob pattern %q", pattern)
	}
	clean := path.Clean(filepath.ToSlash(pattern))
	if path.IsAbs(clean) || filepath.IsAbs(pattern) {
		return fmt.Errorf("absolute paths not allowed: %s", pattern)
	}
	if slices.Contains(strings.Split(clean, "/"), "..") {
		return fmt.Errorf("parent directory references not allowed: %s", pattern)
	}
	return nil
}

// matchesAny tests the relative path and, for patterns without a slash, the
// base name, so "draft.txt" excludes the file at any depth.
func matchesAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
		if !strings.Contains(p, "/") && doublestar.MatchUnvalidated(p, base) {
			return true
		}
	}
	return false
}

// Load reads and decodes the lesson file at name.
func Load(fs afero.Fs, name string) (*lesson.Document, error) {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, errors.IO(name, "read", err)
	}
	doc, err := lesson.Decode(data)
	if err != nil {
		return nil, errors.MalformedInput(name, err)
	}
	return doc, nil
}

// Save encodes doc and replaces the file at name. The content is written to a
// sibling temporary file first and renamed over the original, keeping its mode.
func Save(fs afero.Fs, name string, doc *lesson.Document) error {
	data, err := lesson.Encode(doc)
	if err != nil {
		return errors.IO(name, "encode", err)
	}

	mode := os.FileMode(0o644)
	if info, err := fs.Stat(name); err == nil {
		mode = info.Mode().Perm()
	}

	tmp := name + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, mode); err != nil {
		return errors.IO(name, "write", err)
	}
	if err := fs.Rename(tmp, name); err != nil {
		_ = fs.Remove(tmp)
		return errors.IO(name, "rename", err)
	}
	return nil
}
