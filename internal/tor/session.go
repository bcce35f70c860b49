package tor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Mode selects how account service requests reach the network.
type Mode string

const (
	// ModeOff sends requests directly.
	ModeOff Mode = "off"
	// ModeExternal uses a Tor SOCKS5 proxy that is already running.
	ModeExternal Mode = "external"
	// ModeEmbedded starts a private Tor daemon.
	ModeEmbedded Mode = "embedded"
)

// ParseMode parses a mode name. The empty string means ModeOff.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeOff:
		return ModeOff, nil
	case ModeExternal:
		return ModeExternal, nil
	case ModeEmbedded:
		return ModeEmbedded, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// SessionConfig describes the transport to set up.
type SessionConfig struct {
	Mode Mode
	// ProxyAddress is used in external mode.
	ProxyAddress string
	// ProbeHost and ProbePort are sent in the CONNECT request that checks
	// the proxy. They are normally the account service's host and port.
	ProbeHost string
	ProbePort uint16
	// Timeout is the HTTP request timeout.
	Timeout time.Duration
	// StartupTimeout bounds embedded daemon bootstrap.
	StartupTimeout time.Duration
}

// Session is a ready-to-use transport. Close must be called when done.
//
// Design decision: We hide the three transport modes behind one type so
// the rest of the program only ever asks for an *http.Client. In off mode
// the session is a plain client with the configured timeout. In external
// mode the proxy has already been probed with a SOCKS5 CONNECT to the
// account host, so a misconfigured proxy is reported before any
// credentials are sent. In embedded mode the session owns the Tor daemon
// and Close stops it.
//
// TLS verification stays on in every mode. The account service is a
// clearnet HTTPS host, and Tor only changes the route to it.
type Session struct {
	client   *Client
	embedded *EmbeddedTor
	timeout  time.Duration
}

// Connect prepares the transport described by cfg. In external mode the
// proxy is probed first; in embedded mode a daemon is started.
func Connect(ctx context.Context, cfg SessionConfig) (*Session, error) {
	switch cfg.Mode {
	case "", ModeOff:
		return &Session{timeout: cfg.Timeout}, nil

	case ModeExternal:
		client, err := NewClient(cfg.ProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		if status := client.CheckConnection(ctx, cfg.ProbeHost, cfg.ProbePort); status != ProxyStatusOK {
			return nil, fmt.Errorf("tor proxy %s: %w", cfg.ProxyAddress, status.Err())
		}
		return &Session{client: client, timeout: cfg.Timeout}, nil

	case ModeEmbedded:
		embedded := NewEmbeddedTor(WithStartupTimeout(cfg.StartupTimeout))
		if err := embedded.Start(ctx); err != nil {
			return nil, err
		}
		client, err := embedded.NewClient(cfg.Timeout)
		if err != nil {
			return nil, errors.Join(err, embedded.Stop())
		}
		return &Session{client: client, embedded: embedded, timeout: cfg.Timeout}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, string(cfg.Mode))
	}
}

// HTTPClient returns the client to use for account service requests.
func (s *Session) HTTPClient() *http.Client {
	if s.client == nil {
		return &http.Client{Timeout: s.timeout}
	}
	return s.client.HTTPClient()
}

// UsesTor reports whether requests are routed through Tor.
func (s *Session) UsesTor() bool {
	return s.client != nil
}

// ProxyAddress returns the SOCKS5 address in use, or "" in off mode.
func (s *Session) ProxyAddress() string {
	if s.client == nil {
		return ""
	}
	return s.client.ProxyAddress()
}

// Close stops the embedded daemon, if any.
func (s *Session) Close() error {
	if s.embedded == nil {
		return nil
	}
	return s.embedded.Stop()
}
