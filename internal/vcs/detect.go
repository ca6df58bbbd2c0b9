package vcs

import (
	"os"
	"path/filepath"
)

// Detect determines the VCS type for a directory.
// Priority (highest to lowest):
//  1. Configured type (if set and non-empty)
//  2. Auto-detect: check for .jj directory first, then .git, walking up
//     to the repository root
//  3. Default: git
func Detect(dir string, configured VCSType) VCSType {
	if configured != "" {
		return configured
	}
	return AutoDetect(dir)
}

// AutoDetect checks dir and its parents for VCS directories.
// Returns VCSTypeJJ if .jj is found first, VCSTypeGit if .git is.
// Defaults to VCSTypeGit if neither is found.
func AutoDetect(dir string) VCSType {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	for {
		// Check for jj first (higher priority, colocated repos have both)
		if _, err := os.Stat(filepath.Join(abs, ".jj")); err == nil {
			return VCSTypeJJ
		}
		if _, err := os.Stat(filepath.Join(abs, ".git")); err == nil {
			return VCSTypeGit
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			break
		}
		abs = parent
	}
	return VCSTypeGit
}
