// Package manifest writes and removes the JSON manifests browsers read
// to locate native messaging hosts. Chromium based browsers and Firefox
// use different manifest dialects and different registration spots:
// per-user directories on Linux and macOS, per-user registry keys on
// Windows. The package covers both, keyed by browser.
package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Browser identifies a supported manifest dialect and location set.
type Browser string

const (
	Chrome   Browser = "chrome"
	Chromium Browser = "chromium"
	Firefox  Browser = "firefox"
)

// ParseBrowsers maps configuration names onto known browsers, dropping
// duplicates while keeping order.
func ParseBrowsers(names []string) ([]Browser, error) {
	seen := make(map[Browser]bool, len(names))
	out := make([]Browser, 0, len(names))
	for _, n := range names {
		b := Browser(strings.ToLower(n))
		switch b {
		case Chrome, Chromium, Firefox:
		default:
			return nil, fmt.Errorf("unknown browser %q", n)
		}
		if seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out, nil
}

// Host describes one native messaging host registration.
type Host struct {
	Name        string   // dot separated host identifier, e.g. "com.rupor.nmbridge"
	Description string
	Path        string   // absolute path of the host binary
	Origins     []string // chrome-extension:// origins admitted by Chromium browsers
	Extensions  []string // extension IDs admitted by Firefox
}

// reName is the only host name shape browsers accept: dot separated runs
// of lowercase alphanumerics and underscores.
var reName = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

// Validate reports the first problem that would make browser b reject
// the manifest outright.
func (h *Host) Validate(b Browser) error {
	if !reName.MatchString(h.Name) {
		return fmt.Errorf("invalid host name %q", h.Name)
	}
	if h.Path == "" {
		return fmt.Errorf("host %s has no binary path", h.Name)
	}
	if !filepath.IsAbs(h.Path) {
		return fmt.Errorf("host binary path %q is not absolute", h.Path)
	}
	switch b {
	case Chrome, Chromium:
		if len(h.Origins) == 0 {
			return fmt.Errorf("%s manifest for %s needs at least one allowed origin", b, h.Name)
		}
	case Firefox:
		if len(h.Extensions) == 0 {
			return fmt.Errorf("firefox manifest for %s needs at least one allowed extension", h.Name)
		}
	default:
		return fmt.Errorf("unsupported browser %q", b)
	}
	return nil
}

// chromeManifest is the dialect Chromium based browsers read.
type chromeManifest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Path           string   `json:"path"`
	Type           string   `json:"type"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// firefoxManifest names the admitted callers by extension ID instead.
type firefoxManifest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Path              string   `json:"path"`
	Type              string   `json:"type"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

// Render produces the manifest JSON for one browser.
func (h *Host) Render(b Browser) ([]byte, error) {
	if err := h.Validate(b); err != nil {
		return nil, err
	}
	var m any
	if b == Firefox {
		m = firefoxManifest{
			Name:              h.Name,
			Description:       h.Description,
			Path:              h.Path,
			Type:              "stdio",
			AllowedExtensions: h.Extensions,
		}
	} else {
		m = chromeManifest{
			Name:           h.Name,
			Description:    h.Description,
			Path:           h.Path,
			Type:           "stdio",
			AllowedOrigins: normalizeOrigins(h.Origins),
		}
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: encoding %s dialect: %w", b, err)
	}
	return append(out, '\n'), nil
}

// normalizeOrigins appends the trailing slash Chrome requires on
// extension origins.
func normalizeOrigins(origins []string) []string {
	out := make([]string, len(origins))
	for i, o := range origins {
		if !strings.HasSuffix(o, "/") {
			o += "/"
		}
		out[i] = o
	}
	return out
}
