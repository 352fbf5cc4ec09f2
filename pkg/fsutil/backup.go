package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DefaultBackupSuffix is appended to a file's path to name its backup.
const DefaultBackupSuffix = ".wrapfix.bak"

// Backups controls sidecar backups of rewritten files.
type Backups struct {
	Enabled bool

	// Suffix names the backup; empty means DefaultBackupSuffix.
	Suffix string
}

// Path returns the backup path for path.
func (b Backups) Path(path string) string {
	if b.Suffix == "" {
		return path + DefaultBackupSuffix
	}
	return path + b.Suffix
}

// Create saves original as the backup of the snapshotted file. An existing
// backup is never overwritten, so it keeps the text from before the first
// rewrite. It returns the backup path, or "" when nothing was written.
func (b Backups) Create(ctx context.Context, snap *Snapshot, original string) (string, error) {
	if !b.Enabled {
		return "", nil
	}
	if snap == nil {
		return "", ErrNilSnapshot
	}

	backupPath := b.Path(snap.Path)
	if _, err := os.Stat(backupPath); err == nil {
		return "", nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat backup %s: %w", backupPath, err)
	}

	if err := WriteAtomic(ctx, backupPath, []byte(original), snap.Mode); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return backupPath, nil
}

// Restore copies the backup of path back over it and removes the backup.
// It reports false when there is no backup.
func (b Backups) Restore(ctx context.Context, path string) (bool, error) {
	backupPath := b.Path(path)
	content, snap, err := Load(ctx, backupPath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read backup: %w", err)
	}

	if err := WriteAtomic(ctx, path, []byte(content), snap.Mode); err != nil {
		return false, fmt.Errorf("restore %s: %w", path, err)
	}
	if err := os.Remove(backupPath); err != nil {
		return true, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}

// Exists reports whether path has a backup.
func (b Backups) Exists(path string) bool {
	_, err := os.Stat(b.Path(path))
	return err == nil
}
