//go:build windows

package util

import (
	"fmt"
	"os"
)

// CheckPermissions only ensures the file is regular. Unix permission bits
// mean nothing here and the per-user profile ACLs already scope access.
func CheckPermissions(fname string, _ bool) error {
	fi, err := os.Stat(fname)
	if err != nil || !fi.Mode().IsRegular() {
		return fmt.Errorf("not a regular file %s", fname)
	}
	return nil
}
