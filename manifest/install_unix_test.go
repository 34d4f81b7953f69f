//go:build linux || darwin

package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestInstallUninstall(t *testing.T) {
	home := t.TempDir()
	h := validHost()
	browsers := []Browser{Chrome, Firefox}

	written, err := Install(home, h, browsers)
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("Install wrote %d manifests, want 2: %v", len(written), written)
	}

	chromeDir := filepath.Join(home, ".config", "google-chrome", "NativeMessagingHosts")
	firefoxDir := filepath.Join(home, ".mozilla", "native-messaging-hosts")
	if runtime.GOOS == "darwin" {
		chromeDir = filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "NativeMessagingHosts")
		firefoxDir = filepath.Join(home, "Library", "Application Support", "Mozilla", "NativeMessagingHosts")
	}
	wantPaths := []string{
		filepath.Join(chromeDir, h.Name+".json"),
		filepath.Join(firefoxDir, h.Name+".json"),
	}
	for i, want := range wantPaths {
		if written[i] != want {
			t.Errorf("manifest %d written to %s, want %s", i, written[i], want)
		}
		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("reading installed manifest: %v", err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("installed manifest %s is not valid JSON: %v", want, err)
		}
		if m["name"] != h.Name {
			t.Errorf("manifest name = %v, want %q", m["name"], h.Name)
		}
	}

	removed, err := Uninstall(home, h.Name, browsers)
	if err != nil {
		t.Fatalf("Uninstall failed: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("Uninstall removed %d manifests, want 2: %v", len(removed), removed)
	}
	for _, p := range wantPaths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("manifest %s still present after Uninstall", p)
		}
	}

	// A second Uninstall finds nothing and reports nothing.
	removed, err = Uninstall(home, h.Name, browsers)
	if err != nil {
		t.Fatalf("repeated Uninstall failed: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("repeated Uninstall removed %v, want nothing", removed)
	}
}

func TestInstallRejectsInvalidHost(t *testing.T) {
	home := t.TempDir()
	h := validHost()
	h.Origins = nil

	if _, err := Install(home, h, []Browser{Chrome}); err == nil {
		t.Fatal("Install accepted a chrome manifest without origins")
	}
	// Nothing may be left behind when validation fails.
	if entries, err := os.ReadDir(home); err == nil && len(entries) != 0 {
		t.Errorf("failed Install left %d entries under home", len(entries))
	}
}
