package common

import (
	"path"
	"path/filepath"
	"strings"
)

// PackageName returns the package a specification directory belongs to:
// the final element of the directory path.
// Returns empty string if dir is empty.
func PackageName(dir string) string {
	if dir == "" {
		return ""
	}

	return filepath.Base(filepath.Clean(dir))
}

// YamlID returns the extension-less, slash-separated path of a file relative
// to its package directory, e.g. "custom/gri" for "custom/gri.yaml".
func YamlID(relPath string) string {
	rel := filepath.ToSlash(relPath)
	rel = strings.TrimPrefix(rel, "./")

	return strings.TrimSuffix(rel, path.Ext(rel))
}
