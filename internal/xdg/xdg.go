// Package xdg resolves XDG Base Directory paths for pxfbridge.
//
// Directories fall back to the traditional locations under the home directory
// when the XDG variables are unset, and are created private (0700).
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "pxfbridge"

// ConfigDir returns $XDG_CONFIG_HOME/pxfbridge, or ~/.config/pxfbridge.
func ConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

func appDir(env string, fallback ...string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
