package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".acctexport"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
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
	if cf.Server.Headers == nil {
		cf.Server.Headers = make(map[string]string)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .acctexport in the current directory
// 3. Look for .acctexport in the XDG config directory
// 4. Look for .acctexport in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), DefaultConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// ApplyFile copies every value set in cf onto c.
func (c *Config) ApplyFile(cf *File) {
	if cf == nil {
		return
	}
	if cf.Server.URL != "" {
		c.ServerURL = cf.Server.URL
	}
	if cf.Server.Username != "" {
		c.Username = cf.Server.Username
	}
	if cf.Server.Password != "" {
		c.Password = cf.Server.Password
	}
	if len(cf.Server.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range cf.Server.Headers {
			c.Headers[k] = v
		}
	}
	if cf.Server.UserAgent != "" {
		c.UserAgent = cf.Server.UserAgent
	}
	if cf.Tor.Mode != "" {
		c.TorMode = cf.Tor.Mode
	}
	if cf.Tor.Proxy != "" {
		c.TorProxyAddress = cf.Tor.Proxy
	}
	if cf.Tor.StartupTimeout != 0 {
		c.TorStartupTimeout = cf.Tor.StartupTimeout
	}
	if cf.DataDir != "" {
		c.DataDir = expandHome(cf.DataDir)
	}
	if cf.Timeout != 0 {
		c.Timeout = cf.Timeout
	}
	if cf.MaxBodySize != 0 {
		c.MaxBodySize = cf.MaxBodySize
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
