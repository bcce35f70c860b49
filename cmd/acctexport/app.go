package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/acctexport/internal/config"
	"github.com/nao1215/acctexport/internal/coordinator"
	"github.com/nao1215/acctexport/internal/keyvalue"
	seclog "github.com/nao1215/acctexport/internal/log"
	"github.com/nao1215/acctexport/internal/remote"
	"github.com/nao1215/acctexport/internal/store"
	"github.com/nao1215/acctexport/internal/tor"
)

// app bundles what every command needs: configuration, logger and the
// open report cache. Close must be called when the command is done.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *keyvalue.SQLite
	store  *store.ReportStore
	stderr io.Writer
}

// newApp loads the configuration and opens the report cache.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := seclog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	db, err := keyvalue.Open(cfg.DataDir, keyvalue.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open report cache: %w", err)
	}
	logger.Debug("report cache opened", "path", db.Path())

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		store:  store.New(db),
		stderr: cmd.ErrOrStderr(),
	}, nil
}

// Close releases the report cache.
func (a *app) Close() error {
	return a.db.Close()
}

// coordinator returns a coordinator over the cache. client may be nil for
// commands that never download.
func (a *app) coordinator(ctx context.Context, client coordinator.ReportClient) *coordinator.Coordinator {
	return coordinator.New(ctx, client, a.store,
		coordinator.WithLogger(a.logger),
		coordinator.WithExportFormat(a.cfg.ExportFormat()),
	)
}

// reportClient connects the configured transport and returns a client for
// the account service. The returned session must be closed.
func (a *app) reportClient(ctx context.Context) (*remote.Client, *tor.Session, error) {
	if err := a.cfg.ValidateServer(); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	host, port := a.cfg.ServerHostPort()
	mode := a.cfg.TorModeValue()
	if mode == tor.ModeEmbedded {
		fmt.Fprintln(a.stderr, "Starting embedded Tor daemon (this can take a few minutes)...")
	}

	session, err := tor.Connect(ctx, tor.SessionConfig{
		Mode:           mode,
		ProxyAddress:   a.cfg.TorProxyAddress,
		ProbeHost:      host,
		ProbePort:      port,
		Timeout:        a.cfg.Timeout,
		StartupTimeout: a.cfg.TorStartupTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up %s transport: %w", mode, err)
	}
	if session.UsesTor() {
		a.logger.Info("routing requests through Tor", "proxy", session.ProxyAddress())
	}

	client, err := remote.NewClient(a.cfg.ServerURL,
		remote.WithHTTPClient(session.HTTPClient()),
		remote.WithCredentials(a.cfg.Username, a.cfg.Password),
		remote.WithHeaders(a.cfg.Headers),
		remote.WithUserAgent(a.cfg.UserAgent),
		remote.WithMaxBodySize(a.cfg.MaxBodySize),
		remote.WithLogger(a.logger),
	)
	if err != nil {
		return nil, nil, errors.Join(err, session.Close())
	}
	return client, session, nil
}

// buildConfig creates a Config from defaults, the config file and flags,
// in that order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.Verbose, err = cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; a searched one may not.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := applyCommandFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyCommandFlags copies the flags a subcommand defines onto cfg.
// Flags the user did not set leave the file or default value alone.
func applyCommandFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var err error
	if flags.Changed("server") {
		if cfg.ServerURL, err = flags.GetString("server"); err != nil {
			return err
		}
	}
	if flags.Changed("username") {
		if cfg.Username, err = flags.GetString("username"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("tor") {
		if cfg.TorMode, err = flags.GetString("tor"); err != nil {
			return err
		}
	}
	if flags.Changed("tor-proxy") {
		if cfg.TorProxyAddress, err = flags.GetString("tor-proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
			return err
		}
	}
	if flags.Lookup("text") != nil {
		if cfg.ExportJSON, err = flags.GetBool("json"); err != nil {
			return err
		}
		if cfg.ExportText, err = flags.GetBool("text"); err != nil {
			return err
		}
		if cfg.OutputPath, err = flags.GetString("output"); err != nil {
			return err
		}
		if cfg.Stdout, err = flags.GetBool("stdout"); err != nil {
			return err
		}
	}
	if flags.Lookup("markdown") != nil {
		if cfg.StatusJSON, err = flags.GetBool("json"); err != nil {
			return err
		}
		if cfg.StatusMarkdown, err = flags.GetBool("markdown"); err != nil {
			return err
		}
	}
	return nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
