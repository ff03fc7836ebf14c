package resolve

import (
	"fmt"
	"os"
	"path/filepath"
)

// SymlinkInfo reports whether path is a symbolic link, using os.Lstat so the
// link itself (not its target) is inspected.
func SymlinkInfo(path string) (isSymlink bool, err error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("lstat %s: %w", path, err)
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// ResolveSymlink follows path through its symlink chain and returns the real
// path. A dangling symlink (target does not exist) returns an error.
func ResolveSymlink(path string) (string, error) {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolving symlink %s: %w", path, err)
	}
	return real, nil
}
