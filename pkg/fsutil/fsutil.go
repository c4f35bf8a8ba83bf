// Package fsutil reads source files into snapshots and writes clean up
// results back safely: atomically, with optional backups, and never over a
// file that changed since it was read.
package fsutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNilSnapshot is returned when a nil Snapshot is passed.
	ErrNilSnapshot = errors.New("nil snapshot")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrModified indicates the file changed on disk after it was read.
	ErrModified = errors.New("file modified since read")
)

// Snapshot is the content of a file together with the metadata needed to
// tell whether the file changed afterwards.
type Snapshot struct {
	// Path is the path the file was read from.
	Path string

	// Content is the file content at read time.
	Content []byte

	// Mode is the file's permission and mode bits.
	Mode os.FileMode

	// ModTime is the file's modification time.
	ModTime time.Time

	// Size is the file size in bytes.
	Size int64

	// Hash is the SHA-256 hash of Content.
	Hash [32]byte
}

// Read reads the file at path into a Snapshot.
func Read(ctx context.Context, path string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, classify(path, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, classify(path, err)
	}

	return &Snapshot{
		Path:    path,
		Content: content,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, nil
}

func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
}

// Modified reports whether the file differs from the snapshot. A deleted
// file counts as modified.
//
// Mod time and size are compared first; if they match the content is
// re-hashed, which also catches edits within the timestamp granularity.
func (s *Snapshot) Modified(ctx context.Context) (bool, error) {
	if s == nil {
		return false, ErrNilSnapshot
	}
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("check modified: %w", err)
	}

	stat, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", s.Path, err)
	}
	if !stat.ModTime().Equal(s.ModTime) || stat.Size() != s.Size {
		return true, nil
	}

	content, err := os.ReadFile(s.Path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return sha256.Sum256(content) != s.Hash, nil
}

// Save writes content over the snapshot's file. It fails with ErrModified,
// leaving the file untouched, if the file changed since the snapshot was
// taken. A backup is created first when backup is enabled. The file mode is
// preserved. Returns false without writing if content equals the snapshot.
func Save(ctx context.Context, s *Snapshot, content []byte, backup BackupConfig) (bool, error) {
	if s == nil {
		return false, ErrNilSnapshot
	}
	if bytes.Equal(s.Content, content) {
		return false, nil
	}

	modified, err := s.Modified(ctx)
	if err != nil {
		return false, err
	}
	if modified {
		return false, fmt.Errorf("save %s: %w", s.Path, ErrModified)
	}

	if _, err := CreateBackup(ctx, s.Path, backup); err != nil {
		return false, err
	}
	if err := WriteAtomic(ctx, s.Path, content, s.Mode.Perm()); err != nil {
		return false, err
	}
	return true, nil
}
