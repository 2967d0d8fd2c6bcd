// Package fsutil provides the file operations shared by project
// generation and workspace cleanup. Removals tolerate missing entries.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// IsFile reports whether path names an existing regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// RemoveFile removes a regular file. It reports false without error when
// there is nothing to remove. Read-only files are made writable first.
func RemoveFile(path string) (bool, error) {
	if !IsFile(path) {
		return false, nil
	}
	if err := makeWritable(path); err != nil {
		return false, fmt.Errorf("failed to clear read-only attribute of %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return true, nil
}

// RemoveDir removes a directory tree. It reports false when path is not a
// directory. Entries that cannot be removed are skipped; the returned error
// only lists what was left behind.
func RemoveDir(path string) (bool, error) {
	if !IsDir(path) {
		return false, nil
	}
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err == nil {
			_ = makeWritable(p)
		}
		return nil
	})
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return true, fmt.Errorf("failed to remove directory %s completely: %w", path, err)
	}
	return true, nil
}

// CopyFile copies source to destination, replacing an old destination.
func CopyFile(source, destination string) error {
	if _, err := RemoveFile(destination); err != nil {
		return err
	}

	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", source, err)
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destination, err)
	}
	out, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destination, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", source, destination, err)
	}
	return out.Close()
}
