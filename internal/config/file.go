package config

import "time"

// ServerSection is the "server" block of the config file.
type ServerSection struct {
	// URL is the base URL of the account service.
	URL string `yaml:"url,omitempty"`

	// Username and Password are sent as HTTP basic auth. The username is
	// usually the account's phone number.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the default User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// TorSection is the "tor" block of the config file.
type TorSection struct {
	// Mode is off, external or embedded.
	Mode string `yaml:"mode,omitempty"`

	// Proxy is the SOCKS5 address used in external mode.
	Proxy string `yaml:"proxy,omitempty"`

	// StartupTimeout bounds embedded daemon bootstrap.
	StartupTimeout time.Duration `yaml:"startupTimeout,omitempty"`
}

// File represents the structure of the .acctexport configuration file.
// Every field is optional; unset fields keep their defaults.
type File struct {
	Server ServerSection `yaml:"server,omitempty"`
	Tor    TorSection    `yaml:"tor,omitempty"`

	// DataDir is where the report cache lives.
	DataDir string `yaml:"dataDir,omitempty"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxBodySize caps the size of a downloaded report in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`
}
