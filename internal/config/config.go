package config

import (
	"net"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/acctexport/internal/model"
	"github.com/nao1215/acctexport/internal/tor"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "acctexport"

	// DefaultTimeout bounds one report request. Reports are generated on
	// demand by the service and can take a while; Tor adds latency on top.
	DefaultTimeout = 60 * time.Second

	// DefaultTorMode sends requests directly.
	DefaultTorMode = string(tor.ModeOff)

	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTorStartupTimeout is the embedded daemon bootstrap limit.
	DefaultTorStartupTimeout = tor.DefaultStartupTimeout

	// DefaultUserAgent identifies this tool to the account service.
	DefaultUserAgent = "acctexport/1.0 (+https://github.com/nao1215/acctexport)"

	// DefaultMaxBodySize caps a downloaded report at 16MB.
	DefaultMaxBodySize = 16 * 1024 * 1024
)

// Config holds all configuration options. It is populated from defaults,
// then the config file, then CLI flags, and passed down explicitly.
type Config struct {
	// ServerURL is the base URL of the account service.
	ServerURL string

	// Username and Password are the account credentials used for HTTP
	// basic auth. They are never logged.
	Username string
	Password string

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string

	// UserAgent is the User-Agent header.
	UserAgent string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// MaxBodySize is the largest accepted report in bytes; 0 uses the default.
	MaxBodySize int64

	// TorMode is off, external or embedded.
	TorMode string

	// TorProxyAddress is the SOCKS5 proxy used in external mode.
	TorProxyAddress string

	// TorStartupTimeout bounds embedded daemon bootstrap.
	TorStartupTimeout time.Duration

	// DataDir is the directory holding the report cache database.
	// Defaults to the XDG data directory (~/.local/share/acctexport on Linux).
	DataDir string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit config file; empty means search.
	ConfigFilePath string

	// ExportJSON and ExportText select the export format. At most one may
	// be set; neither means JSON.
	ExportJSON bool
	ExportText bool

	// OutputPath is where export writes the artifact. Empty means the
	// artifact's suggested file name in the current directory.
	OutputPath string

	// Stdout makes export write the artifact to standard output.
	Stdout bool

	// StatusJSON and StatusMarkdown select the status output format.
	StatusJSON     bool
	StatusMarkdown bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Headers:           make(map[string]string),
		UserAgent:         DefaultUserAgent,
		Timeout:           DefaultTimeout,
		MaxBodySize:       DefaultMaxBodySize,
		TorMode:           DefaultTorMode,
		TorProxyAddress:   DefaultTorProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DataDir:           XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for acctexport.
// On Linux: ~/.local/share/acctexport
// On macOS: ~/Library/Application Support/acctexport
// On Windows: %LOCALAPPDATA%\acctexport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for acctexport.
// On Linux: ~/.config/acctexport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ExportFormat returns the selected export format.
func (c *Config) ExportFormat() model.ExportFormat {
	if c.ExportText {
		return model.ExportFormatText
	}
	return model.ExportFormatJSON
}

// TorModeValue returns the parsed Tor mode. Call Validate first.
func (c *Config) TorModeValue() tor.Mode {
	mode, err := tor.ParseMode(c.TorMode)
	if err != nil {
		return tor.ModeOff
	}
	return mode
}

// Validate checks the options shared by every command.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if _, err := tor.ParseMode(c.TorMode); err != nil {
		return ErrInvalidTorMode
	}
	if c.ExportJSON && c.ExportText {
		return ErrConflictingExportFormats
	}
	if c.StatusJSON && c.StatusMarkdown {
		return ErrConflictingStatusFormats
	}
	if c.OutputPath != "" && c.Stdout {
		return ErrConflictingOutputs
	}
	return nil
}

// ValidateServer checks the options needed to contact the account service.
func (c *Config) ValidateServer() error {
	if c.ServerURL == "" {
		return ErrNoServerURL
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Host == "" {
		return ErrInvalidServerURL
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !isLoopback(u.Hostname()) {
			return ErrInsecureServerURL
		}
	default:
		return ErrInvalidServerURL
	}
	return nil
}

// ServerHostPort returns the host and port of ServerURL, defaulting the
// port from the scheme. Call ValidateServer first.
func (c *Config) ServerHostPort() (string, uint16) {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return "", 0
	}
	port := uint16(443)
	if u.Scheme == "http" {
		port = 80
	}
	if p := u.Port(); p != "" {
		if n, err := net.LookupPort("tcp", p); err == nil && n > 0 && n < 65536 {
			port = uint16(n)
		}
	}
	return u.Hostname(), port
}

// isLoopback reports whether host is localhost or a loopback address.
func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
