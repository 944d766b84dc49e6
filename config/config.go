// Package config loads and saves Pendragon's TOML-backed settings: the
// default context capacities a machine is built with, extra syscall
// registrations, and inspector display toggles.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the full set of user-adjustable settings.
type Config struct {
	Execution struct {
		StackCapacity uint64 `toml:"stack_capacity"`
		CodeCapacity  uint64 `toml:"code_capacity"`
		DataCapacity  uint64 `toml:"data_capacity"`
		MaxCycles     uint64 `toml:"max_cycles"`
		DefaultEntry  string `toml:"default_entry"`
	} `toml:"execution"`

	Syscalls struct {
		Register map[string]uint16 `toml:"register"`
	} `toml:"syscalls"`

	Inspector struct {
		HistorySize  int    `toml:"history_size"`
		ShowFlags    bool   `toml:"show_flags"`
		NumberFormat string `toml:"number_format"` // hex, dec
	} `toml:"inspector"`
}

// DefaultConfig matches the capacities named in the external interface
// contract: a 1 KiB stack, 64 KiB code segment, 32 KiB data segment.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.StackCapacity = 1024
	cfg.Execution.CodeCapacity = 64 * 1024
	cfg.Execution.DataCapacity = 32 * 1024
	cfg.Execution.MaxCycles = 1000000
	cfg.Execution.DefaultEntry = "0x0000"

	cfg.Syscalls.Register = map[string]uint16{}

	cfg.Inspector.HistorySize = 1000
	cfg.Inspector.ShowFlags = true
	cfg.Inspector.NumberFormat = "hex"

	return cfg
}

// GetConfigPath returns the platform-specific config file path, creating
// its containing directory if needed.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "pendragon")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "pendragon")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path, creating
// it if needed.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "pendragon", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "pendragon", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}
	return logDir
}

// Load loads configuration from the default config file path.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path. A missing file is not an
// error: it yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if cfg.Syscalls.Register == nil {
		cfg.Syscalls.Register = map[string]uint16{}
	}
	return cfg, nil
}

// Save saves configuration to the default config file path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path, creating its directory if needed.
func (c *Config) SaveTo(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(path) // #nosec G304 -- caller-supplied config path
	if err != nil {
		return fmt.Errorf("config: failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("config: failed to close %s: %w", path, closeErr)
		}
	}()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: failed to encode: %w", err)
	}
	return nil
}
