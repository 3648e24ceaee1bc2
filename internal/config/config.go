// Package config loads m3u8write settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every invocation of the tool.
// Command line flags take precedence over both the file and the environment.
type Config struct {
	LogLevel          string `yaml:"logLevel"`
	Format            string `yaml:"format"`
	Strict            bool   `yaml:"strict"`
	RFCClosedCaptions bool   `yaml:"rfcClosedCaptions"`
	Concurrency       int    `yaml:"concurrency"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:    "info",
		Format:      "auto",
		Concurrency: 4,
	}
}

// Load reads path (when non-empty) over the defaults and then applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, dst *Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config: unsupported file extension %q (want .yaml or .yml)", ext)
	}
	f, err := os.Open(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return fmt.Errorf("config: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: %s: multiple YAML documents are not supported", path)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("M3U8_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("M3U8_FORMAT"); ok && v != "" {
		cfg.Format = v
	}
	var err error
	if cfg.Strict, err = envBool("M3U8_STRICT", cfg.Strict); err != nil {
		return err
	}
	if cfg.RFCClosedCaptions, err = envBool("M3U8_RFC_CLOSED_CAPTIONS", cfg.RFCClosedCaptions); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("M3U8_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: M3U8_CONCURRENCY: %w", err)
		}
		cfg.Concurrency = n
	}
	return nil
}

// envBool accepts the strconv.ParseBool spellings plus yes/no and on/off.
func envBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("config: %s: invalid boolean %q", key, v)
	}
	return b, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: logLevel: %w", err)
	}
	switch strings.ToLower(c.Format) {
	case "auto", "json", "yaml", "yml":
	default:
		return fmt.Errorf("config: format: unknown value %q", c.Format)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("config: concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
