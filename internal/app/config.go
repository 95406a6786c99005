// Package app holds runtime configuration. Probe endpoint lists and
// heuristic thresholds are fixed constants in their packages; config covers
// only the ambient surface (browser runtime, output, watch cadence).
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// Config holds all application configuration.
type Config struct {
	Browser BrowserConfig `koanf:"browser" validate:"required"`
	Output  OutputConfig  `koanf:"output"`
	Watch   WatchConfig   `koanf:"watch" validate:"required"`
}

// BrowserConfig holds settings for the headless probe session.
type BrowserConfig struct {
	// ChromePath overrides binary discovery; empty lets chromedp find one.
	ChromePath string        `koanf:"chrome_path"`
	Headless   bool          `koanf:"headless"`
	NoSandbox  bool          `koanf:"no_sandbox"`
	Timeout    time.Duration `koanf:"timeout" validate:"required"`
}

// OutputConfig selects report rendering.
type OutputConfig struct {
	// Format is "text" or "json".
	Format string `koanf:"format" validate:"omitempty,oneof=text json"`
	// Path writes the report to a file instead of stdout when set.
	Path string `koanf:"path"`
}

// WatchConfig holds the periodic re-collection settings.
type WatchConfig struct {
	Interval time.Duration `koanf:"interval" validate:"required"`
	Timeout  time.Duration `koanf:"timeout" validate:"required"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless: true,
			Timeout:  30 * time.Second,
		},
		Output: OutputConfig{Format: "text"},
		Watch: WatchConfig{
			Interval: 60 * time.Second,
			Timeout:  45 * time.Second,
		},
	}
}

// Load reads configuration from a YAML file layered over the defaults and
// validates the result. A missing file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
		if err := k.Unmarshal("", cfg); err != nil {
			return nil, fmt.Errorf("unmarshaling config: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ConfigFrom extracts the Config from the CLI command metadata.
func ConfigFrom(cmd *cli.Command) (*Config, error) {
	v, ok := cmd.Root().Metadata["config"]
	if !ok {
		return nil, fmt.Errorf("config not found in command metadata")
	}
	cfg, ok := v.(*Config)
	if !ok {
		return nil, fmt.Errorf("config has unexpected type %T", v)
	}
	return cfg, nil
}
