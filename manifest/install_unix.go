//go:build linux || darwin

package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// manifestDir returns the per-user directory browser b scans for host
// manifests.
func manifestDir(home string, b Browser) (string, error) {
	mac := runtime.GOOS == "darwin"
	switch b {
	case Chrome:
		if mac {
			return filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "NativeMessagingHosts"), nil
		}
		return filepath.Join(home, ".config", "google-chrome", "NativeMessagingHosts"), nil
	case Chromium:
		if mac {
			return filepath.Join(home, "Library", "Application Support", "Chromium", "NativeMessagingHosts"), nil
		}
		return filepath.Join(home, ".config", "chromium", "NativeMessagingHosts"), nil
	case Firefox:
		if mac {
			return filepath.Join(home, "Library", "Application Support", "Mozilla", "NativeMessagingHosts"), nil
		}
		return filepath.Join(home, ".mozilla", "native-messaging-hosts"), nil
	default:
		return "", fmt.Errorf("unsupported browser %q", b)
	}
}

// Install writes h's manifest for every listed browser under the given
// home directory and returns the paths it created. Directories are
// created as needed; an existing manifest with the same name is
// overwritten.
func Install(home string, h *Host, browsers []Browser) ([]string, error) {
	var written []string
	for _, b := range browsers {
		data, err := h.Render(b)
		if err != nil {
			return written, err
		}
		dir, err := manifestDir(home, b)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return written, fmt.Errorf("manifest: creating %s: %w", dir, err)
		}
		fname := filepath.Join(dir, h.Name+".json")
		if err := os.WriteFile(fname, data, 0644); err != nil {
			return written, fmt.Errorf("manifest: writing %s: %w", fname, err)
		}
		written = append(written, fname)
	}
	return written, nil
}

// Uninstall removes the manifests Install would have written for name and
// returns the paths it removed. Manifests already absent are skipped, not
// reported as errors.
func Uninstall(home, name string, browsers []Browser) ([]string, error) {
	var removed []string
	for _, b := range browsers {
		dir, err := manifestDir(home, b)
		if err != nil {
			return removed, err
		}
		fname := filepath.Join(dir, name+".json")
		if err := os.Remove(fname); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("manifest: removing %s: %w", fname, err)
		}
		removed = append(removed, fname)
	}
	return removed, nil
}
