//go:build linux || darwin

package util

import (
	"fmt"
	"os"
	"syscall"
)

// CheckPermissions verifies that the file is a regular file safe to take
// directions from: a file the caller owns must not be writable by group
// or others, since its content decides who may drive the host. When
// strict is set it must not be accessible to them at all. Files owned by
// another user are left to that user's judgement.
func CheckPermissions(fname string, strict bool) error {

	fi, err := os.Stat(fname)
	if err != nil || !fi.Mode().IsRegular() {
		return fmt.Errorf("not a regular file %s", fname)
	}

	var uid int
	if stat, ok := fi.Sys().(*syscall.Stat_t); ok {
		uid = int(stat.Uid)
	}
	mask := os.FileMode(022)
	if strict {
		mask = 077
	}
	perm := fi.Mode().Perm()
	if uid == os.Getuid() && perm&mask != 0 {
		return fmt.Errorf("bad permissions %o for file %s", perm, fname)
	}
	return nil
}
