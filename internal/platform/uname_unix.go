//go:build unix

package platform

import "golang.org/x/sys/unix"

// kernelName returns the sysname field of uname(2), or "" if the call fails.
func kernelName() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Sysname[:])
}
