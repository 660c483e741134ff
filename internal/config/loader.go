package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".torctl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .torctl configuration file.
// All fields are optional; missing values fall back to the defaults.
//
// Example:
//
//	socks: 127.0.0.1:9050
//	control:
//	  host: localhost
//	  port: 9051
//	  password: "my-control-password"
type File struct {
	// Socks is the Tor SOCKS5 proxy address in "host:port" format.
	Socks string `yaml:"socks,omitempty"`

	// Control holds the ControlPort endpoint settings.
	Control FileControl `yaml:"control,omitempty"`
}

// FileControl is the control section of the configuration file.
type FileControl struct {
	// Host is the ControlPort host.
	Host string `yaml:"host,omitempty"`

	// Port is the ControlPort TCP port.
	Port int `yaml:"port,omitempty"`

	// Password is the ControlPort password.
	Password string `yaml:"password,omitempty"`
}

// LoadConfigFile loads endpoint settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply overlays the file's settings onto the given Config.
// Only fields that are set in the file are applied; zero values are ignored
// so that CLI flags and defaults survive an incomplete file.
func (cf *File) Apply(cfg *Config) {
	if cf.Socks != "" {
		cfg.SocksAddress = cf.Socks
	}
	if cf.Control.Host != "" {
		cfg.Control.Host = cf.Control.Host
	}
	if cf.Control.Port != 0 {
		cfg.Control.Port = cf.Control.Port
	}
	if cf.Control.Password != "" {
		cfg.Control.Password = cf.Control.Password
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .torctl in the current directory
// 3. Look for .torctl in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
