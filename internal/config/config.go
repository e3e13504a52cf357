// Package config resolves qiloDB's data root and reads its optional
// qilodb.toml installation-settings file.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
)

const (
	appDirName      = "qilodb"
	settingsFile    = "qilodb.toml"
	defaultMaxTries = 4
)

// settings is the optional qilodb.toml document.
type settings struct {
	DataRoot string `toml:"data_root"`
	MaxTries int    `toml:"max_tries"`
}

// Config is the resolved installation configuration: where the data root
// lives and how many passphrase attempts are allowed before a wipe.
type Config struct {
	DataRoot string
	MaxTries int
}

// Load resolves the data root (OS-default application-data path, unless
// overridden by an adjacent qilodb.toml) and ensures it exists. The
// settings file, if present, is read from the same default directory that
// would otherwise hold the data root.
func Load() (*Config, error) {
	defaultRoot, err := defaultDataRoot()
	if err != nil {
		return nil, err
	}

	cfg := &Config{DataRoot: defaultRoot, MaxTries: defaultMaxTries}

	settingsPath := filepath.Join(filepath.Dir(defaultRoot), settingsFile)
	if _, err := os.Stat(settingsPath); err == nil {
		var s settings
		if _, err := toml.DecodeFile(settingsPath, &s); err != nil {
			return nil, qerrors.Programf("could not read %s: %v", settingsFile, err)
		}
		if s.DataRoot != "" {
			cfg.DataRoot = s.DataRoot
		}
		if s.MaxTries > 0 {
			cfg.MaxTries = s.MaxTries
		}
	}

	if err := os.MkdirAll(cfg.DataRoot, 0o700); err != nil {
		return nil, qerrors.Programf("could not create data root %s: %v", cfg.DataRoot, err)
	}
	return cfg, nil
}

// defaultDataRoot returns the OS-specific default application-data
// directory for qiloDB: %APPDATA%\qilodb on Windows, ~/Library/Application
// Support/qilodb on macOS, and $XDG_DATA_HOME/qilodb (or ~/.local/share/qilodb)
// elsewhere.
func defaultDataRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", qerrors.Programf("could not resolve home directory: %v", err)
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDirName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", appDirName), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDirName), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		return filepath.Join(home, ".local", "share", appDirName), nil
	}
}
