package utils

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// CleanRemotePath normalises a path on the remote (always slash separated) side.
// An empty input stays empty.
func CleanRemotePath(p string) string {
	if p == "" {
		return ""
	}
	// Collapse doubled separators and "." / ".." segments.
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean(p)
}
