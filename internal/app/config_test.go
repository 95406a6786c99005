package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Browser.Headless {
		t.Error("default browser must be headless")
	}
	if cfg.Browser.Timeout != 30*time.Second {
		t.Errorf("Browser.Timeout = %v, want 30s", cfg.Browser.Timeout)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %q, want text", cfg.Output.Format)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "browser:\n  headless: false\n  timeout: 10s\noutput:\n  format: json\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Browser.Headless {
		t.Error("headless should be overridden to false")
	}
	if cfg.Browser.Timeout != 10*time.Second {
		t.Errorf("Browser.Timeout = %v, want 10s", cfg.Browser.Timeout)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
	// Untouched sections keep their defaults.
	if cfg.Watch.Interval != 60*time.Second {
		t.Errorf("Watch.Interval = %v, want 60s", cfg.Watch.Interval)
	}
}

func TestLoad_RejectsInvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown format")
	}
}
