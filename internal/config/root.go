package config

import (
	"os"
	"path/filepath"
)

// FindProjectRoot walks up from start looking for a directory containing
// .git. When none is found it returns the absolute start directory and
// found=false.
func FindProjectRoot(start string) (root string, found bool, err error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", false, err
	}

	current := abs
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current, true, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs, false, nil
		}
		current = parent
	}
}
