package config

import (
	"os"
	"path/filepath"
	"strings"
)

// baseDir is the directory relative runtime paths hang off: the working
// directory, or the executable's directory when the former is unknown.
func baseDir() string {
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	return "."
}

// ResolveRuntimePath returns raw as an absolute, cleaned path. An empty raw
// falls back to fallbackSubdir under the base directory.
func ResolveRuntimePath(raw, fallbackSubdir string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallbackSubdir)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(baseDir(), target)
}
