//go:build windows

package fsutil

import (
	"golang.org/x/sys/windows"
)

// makeWritable clears FILE_ATTRIBUTE_READONLY; Windows refuses to delete
// read-only files.
func makeWritable(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return nil
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY == 0 {
		return nil
	}
	return windows.SetFileAttributes(p, attrs&^windows.FILE_ATTRIBUTE_READONLY)
}
