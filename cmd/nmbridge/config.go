package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rupor-github/nmbridge/util"
)

// config carries the resolved host configuration.
type config struct {
	LineEnding        string
	Debug             bool
	LogFile           string
	Exclusive         bool
	AllowedOrigins    []string
	AllowedExtensions []string
	BlockedSchemes    []string
	Manifest          manifestConfig
}

type manifestConfig struct {
	Name        string
	Description string
	Path        string
	Browsers    []string
}

// fileConfig is the TOML shape of the configuration file.
type fileConfig struct {
	LineEnding        string       `toml:"line_ending"`
	Debug             bool         `toml:"debug"`
	LogFile           string       `toml:"log_file"`
	Exclusive         bool         `toml:"exclusive"`
	AllowedOrigins    []string     `toml:"allowed_origins"`
	AllowedExtensions []string     `toml:"allowed_extensions"`
	BlockedSchemes    []string     `toml:"blocked_schemes"`
	Manifest          fileManifest `toml:"manifest"`
}

type fileManifest struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Path        string   `toml:"path"`
	Browsers    []string `toml:"browsers"`
}

func defaultConfig() *config {
	return &config{
		Manifest: manifestConfig{
			Name:        "com.rupor.nmbridge",
			Description: "Clipboard and URL bridge for browser extensions",
			Browsers:    []string{"chrome", "firefox"},
		},
	}
}

// loadConfig reads the configuration file and overlays it onto defaults.
// An empty path means the default location, where a missing file is fine;
// a path given explicitly must exist.
func loadConfig(home, path string) (*config, error) {

	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, ".nmbridge", "config.toml")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}

	// The file decides who may drive the host, refuse one others can edit.
	if err := util.CheckPermissions(path, false); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("line_ending") {
		le := strings.ToLower(strings.TrimSpace(raw.LineEnding))
		if le != "" && le != "lf" && le != "crlf" {
			return nil, fmt.Errorf("load config: bad line_ending %q", raw.LineEnding)
		}
		cfg.LineEnding = le
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	if meta.IsDefined("log_file") {
		cfg.LogFile = strings.TrimSpace(raw.LogFile)
	}
	if meta.IsDefined("exclusive") {
		cfg.Exclusive = raw.Exclusive
	}
	if meta.IsDefined("allowed_origins") {
		for _, o := range trimList(raw.AllowedOrigins) {
			if !strings.HasPrefix(o, "chrome-extension://") {
				log.Printf("Ignoring allowed_origins entry %q\n", o)
				continue
			}
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if meta.IsDefined("allowed_extensions") {
		for _, e := range trimList(raw.AllowedExtensions) {
			if !strings.Contains(e, "@") && !strings.HasPrefix(e, "{") {
				log.Printf("Ignoring allowed_extensions entry %q\n", e)
				continue
			}
			cfg.AllowedExtensions = append(cfg.AllowedExtensions, e)
		}
	}
	if meta.IsDefined("blocked_schemes") {
		cfg.BlockedSchemes = trimList(raw.BlockedSchemes)
	}
	if meta.IsDefined("manifest", "name") {
		cfg.Manifest.Name = strings.TrimSpace(raw.Manifest.Name)
	}
	if meta.IsDefined("manifest", "description") {
		cfg.Manifest.Description = strings.TrimSpace(raw.Manifest.Description)
	}
	if meta.IsDefined("manifest", "path") {
		cfg.Manifest.Path = strings.TrimSpace(raw.Manifest.Path)
	}
	if meta.IsDefined("manifest", "browsers") {
		cfg.Manifest.Browsers = trimList(raw.Manifest.Browsers)
	}
	return cfg, nil
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
