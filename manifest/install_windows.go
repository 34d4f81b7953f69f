//go:build windows

package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// registryPath returns the HKEY_CURRENT_USER subkey browser b scans for
// host manifest locations.
func registryPath(b Browser) (string, error) {
	switch b {
	case Chrome:
		return `Software\Google\Chrome\NativeMessagingHosts`, nil
	case Chromium:
		return `Software\Chromium\NativeMessagingHosts`, nil
	case Firefox:
		return `Software\Mozilla\NativeMessagingHosts`, nil
	default:
		return "", fmt.Errorf("unsupported browser %q", b)
	}
}

// Install writes h's manifest files under home and points each browser's
// registry key at its file. Returns the manifest paths it created. The
// dialects differ, so every browser gets its own file.
func Install(home string, h *Host, browsers []Browser) ([]string, error) {
	dir := filepath.Join(home, ".nmbridge")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("manifest: creating %s: %w", dir, err)
	}
	var written []string
	for _, b := range browsers {
		data, err := h.Render(b)
		if err != nil {
			return written, err
		}
		fname := filepath.Join(dir, fmt.Sprintf("%s.%s.json", h.Name, b))
		if err := os.WriteFile(fname, data, 0644); err != nil {
			return written, fmt.Errorf("manifest: writing %s: %w", fname, err)
		}
		path, err := registryPath(b)
		if err != nil {
			return written, err
		}
		key, _, err := registry.CreateKey(registry.CURRENT_USER, path+`\`+h.Name, registry.SET_VALUE)
		if err != nil {
			return written, fmt.Errorf("manifest: creating %s registry key: %w", b, err)
		}
		err = key.SetStringValue("", fname)
		key.Close()
		if err != nil {
			return written, fmt.Errorf("manifest: pointing %s registry key at %s: %w", b, fname, err)
		}
		written = append(written, fname)
	}
	return written, nil
}

// Uninstall deletes the registry keys and manifest files Install created
// for name and returns the file paths it removed. Registrations already
// absent are skipped, not reported as errors.
func Uninstall(home, name string, browsers []Browser) ([]string, error) {
	dir := filepath.Join(home, ".nmbridge")
	var removed []string
	for _, b := range browsers {
		path, err := registryPath(b)
		if err != nil {
			return removed, err
		}
		if err := registry.DeleteKey(registry.CURRENT_USER, path+`\`+name); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return removed, fmt.Errorf("manifest: deleting %s registry key: %w", b, err)
		}
		fname := filepath.Join(dir, fmt.Sprintf("%s.%s.json", name, b))
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
