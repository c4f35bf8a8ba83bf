package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// BackupMode selects where backups live.
type BackupMode string

const (
	// BackupModeSidecar keeps the backup next to the file, named with BackupSuffix.
	BackupModeSidecar BackupMode = "sidecar"

	// BackupModeNone keeps no backups.
	BackupModeNone BackupMode = "none"
)

// BackupSuffix is appended to a file name to form its sidecar backup.
const BackupSuffix = ".gocleanup.bak"

// BackupConfig says whether Save backs files up, and how.
type BackupConfig struct {
	Enabled bool
	Mode    BackupMode
}

// DefaultBackupConfig has backups off, in sidecar mode once enabled.
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{Mode: BackupModeSidecar}
}

// BackupPath is where the backup of path lives, or "" for BackupModeNone.
// Any other mode is treated as sidecar.
func BackupPath(path string, mode BackupMode) string {
	if mode == BackupModeNone {
		return ""
	}
	return path + BackupSuffix
}

// BackupExists reports whether path has a backup.
func BackupExists(path string, mode BackupMode) bool {
	bak := BackupPath(path, mode)
	if bak == "" {
		return false
	}
	_, err := os.Stat(bak)
	return err == nil
}

// CreateBackup saves the current content of path as its backup. An existing
// backup is never overwritten, so it always holds the content from before the
// first write. It reports whether a backup was made; a missing path is not an
// error.
func CreateBackup(ctx context.Context, path string, cfg BackupConfig) (bool, error) {
	bak := BackupPath(path, cfg.Mode)
	if !cfg.Enabled || bak == "" || BackupExists(path, cfg.Mode) {
		return false, nil
	}
	copied, err := copyFile(ctx, path, bak)
	if err != nil {
		return false, fmt.Errorf("backup %s: %w", path, err)
	}
	return copied, nil
}

// Restore puts the backup of path back in place and removes the backup
// unless keep is set. It reports false when path has no backup.
func Restore(ctx context.Context, path string, mode BackupMode, keep bool) (bool, error) {
	bak := BackupPath(path, mode)
	if bak == "" {
		return false, nil
	}
	copied, err := copyFile(ctx, bak, path)
	if err != nil {
		return false, fmt.Errorf("restore %s: %w", path, err)
	}
	if !copied || keep {
		return copied, nil
	}
	if err := ignoreMissing(os.Remove(bak)); err != nil {
		return true, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}

// copyFile atomically copies src to dst, keeping the permission bits. It
// returns false without error when src does not exist.
func copyFile(ctx context.Context, src, dst string) (bool, error) {
	snap, err := Read(ctx, src)
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := WriteAtomic(ctx, dst, snap.Content, snap.Mode.Perm()); err != nil {
		return false, err
	}
	return true, nil
}
