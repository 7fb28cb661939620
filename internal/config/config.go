// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the catalog DSN goes to the OS keychain.
//
// Values are resolved in three layers: the config file, then the PXF_HOST and
// PXF_PORT environment variables, then command-line flags (applied by cmd).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pxfbridge/cli/internal/xdg"
)

const (
	DefaultHost          = "localhost"
	DefaultPort          = 5888
	DefaultServicePrefix = "pxf"

	EnvHost = "PXF_HOST"
	EnvPort = "PXF_PORT"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel string        `json:"log_level"`
	PXF      PXFConfig     `json:"pxf"`
	Segment  SegmentConfig `json:"segment"`
}

// PXFConfig addresses the remote data-access service.
type PXFConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	ServicePrefix string `json:"service_prefix"`
	// LegacyURI puts the resource path into endpoint URIs for older services.
	LegacyURI bool `json:"legacy_uri"`
}

// SegmentConfig identifies this worker among the ones sharing a scan.
type SegmentConfig struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		PXF: PXFConfig{
			Host:          DefaultHost,
			Port:          DefaultPort,
			ServicePrefix: DefaultServicePrefix,
		},
		Segment: SegmentConfig{ID: 0, Count: 1},
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration and applies environment overrides. A missing file
// yields the defaults.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}
	c, err := loadFile(p)
	if err != nil {
		return c, err
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, nil
}

func loadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", p, err)
	}
	c.fillDefaults()
	return c, nil
}

// fillDefaults restores defaults for fields a partial file left empty.
func (c *Config) fillDefaults() {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.PXF.Host == "" {
		c.PXF.Host = d.PXF.Host
	}
	if c.PXF.Port == 0 {
		c.PXF.Port = d.PXF.Port
	}
	if c.PXF.ServicePrefix == "" {
		c.PXF.ServicePrefix = d.PXF.ServicePrefix
	}
	if c.Segment.Count == 0 {
		c.Segment.Count = d.Segment.Count
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if host, ok := lookup(EnvHost); ok && strings.TrimSpace(host) != "" {
		c.PXF.Host = strings.TrimSpace(host)
	}
	if raw, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("unable to parse PXF port number %s=%s", EnvPort, raw)
		}
		c.PXF.Port = port
	}
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
