// Package txn implements the transaction manager: it
// stages every write to a temp file beside its target and commits via
// atomic rename, so a crash or error mid-run never leaves a target
// truncated or half-written.
package txn

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/harvx/rewrite/internal/plan"
)

// Staged is one file staged for commit: its final destination, the temp
// file holding the new content, and the permission bits to apply before
// rename.
type Staged struct {
	Dest     string
	TempPath string
	Mode     os.FileMode
}

// Stage writes content to a temp file in the same directory as dest -- same
// filesystem guarantees os.Rename is atomic -- and returns a handle the
// caller commits or discards later. It never touches dest itself.
//
// The temp file name mixes an xxh3 hash of dest's path with a uuid so
// concurrent or repeated runs against the same target never collide, and a
// leftover temp file from a previous crash is trivially distinguishable
// from a real target by its ".rwx-" prefix.
func Stage(dest string, content []byte, mode os.FileMode) (*Staged, error) {
	dir := filepath.Dir(dest)
	name := fmt.Sprintf(".rwx-%016x-%s.tmp", xxh3.HashString(dest), uuid.NewString())
	tempPath := filepath.Join(dir, name)

	if err := os.WriteFile(tempPath, content, mode); err != nil {
		return nil, fmt.Errorf("staging %s: %w", dest, err)
	}
	// os.WriteFile's mode is filtered by the process umask; set the exact
	// bits so they are in place before rename.
	if err := os.Chmod(tempPath, mode); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("setting mode on staged %s: %w", dest, err)
	}
	return &Staged{Dest: dest, TempPath: tempPath, Mode: mode}, nil
}

// ResolveMode computes the permission bits Stage should apply, per the
// plan's PermissionsMode: preserve copies existingMode (or falls back to
// 0644 for a target that doesn't exist yet), fixed always applies
// p.FixedPermBits.
func ResolveMode(p *plan.Plan, existingMode os.FileMode, existed bool) os.FileMode {
	if p.Permissions == plan.PermissionsFixed {
		return os.FileMode(p.FixedPermBits)
	}
	if existed {
		return existingMode
	}
	return 0o644
}

// Commit atomically renames the staged temp file onto its destination.
func (s *Staged) Commit() error {
	if err := os.Rename(s.TempPath, s.Dest); err != nil {
		return fmt.Errorf("committing %s: %w", s.Dest, err)
	}
	return nil
}

// Discard removes the staged temp file without touching the destination.
// Safe to call after a successful Commit (the temp file is already gone and
// os.Remove on a missing file is treated as success).
func (s *Staged) Discard() error {
	err := os.Remove(s.TempPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("discarding staged file for %s: %w", s.Dest, err)
	}
	return nil
}
