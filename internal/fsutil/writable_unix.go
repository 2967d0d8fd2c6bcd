//go:build !windows

package fsutil

import "os"

// makeWritable gives the owner write access so the entry can be removed
// from a read-only directory tree.
func makeWritable(path string) error {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink != 0 {
		return nil
	}
	mode := info.Mode().Perm()
	if mode&0200 != 0 {
		return nil
	}
	return os.Chmod(path, mode|0200)
}
