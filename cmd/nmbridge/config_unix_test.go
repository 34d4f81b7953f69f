//go:build linux || darwin

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigRejectsWritableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`debug = true`), 0600); err != nil {
		t.Fatal(err)
	}
	// Chmod separately, WriteFile's mode is subject to the umask.
	if err := os.Chmod(path, 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(dir, path); err == nil {
		t.Error("expected error for world writable file")
	}
}
