// Package cli implements the vfconsole command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/videofonik/vfconsole/pkg/api"
	"github.com/videofonik/vfconsole/pkg/buildinfo"
	"github.com/videofonik/vfconsole/pkg/cache"
	"github.com/videofonik/vfconsole/pkg/config"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/observability"
	"github.com/videofonik/vfconsole/pkg/pipeline"
	"github.com/videofonik/vfconsole/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "vfconsole"

	// cacheScope prefixes CLI cache keys so a shared Redis or MongoDB cache
	// can also serve preview servers.
	cacheScope = "cli:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
	apiURL     string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "vfconsole manages interactive video projects",
		Long: `vfconsole is the admin console for interactive video projects: sign in,
manage projects and their question/answer trees, render the tree as a diagram
and edit it in an interactive terminal shell or a local preview server.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.Register(observability.NewLogObserver(c.Logger))
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/vfconsole/config.toml)")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "backend API URL (overrides config and "+config.EnvAPIURL+")")

	root.AddCommand(c.authCommand())
	root.AddCommand(c.projectsCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.embedCommand())
	root.AddCommand(c.openCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file and applies flag overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		if err := vferrors.ValidateURL(c.apiURL); err != nil {
			return fmt.Errorf("--api-url: %w", err)
		}
		cfg.APIURL = c.apiURL
	}
	for _, key := range cfg.Unknown {
		c.Logger.Warn("unknown config key", "key", key, "file", cfg.Path)
	}
	c.Config = cfg
	return nil
}

// settings returns the loaded configuration, falling back to the defaults for
// callers that run outside the command tree (tests).
func (c *CLI) settings() *config.Config {
	if c.Config == nil {
		cfg := config.Default()
		c.Config = &cfg
	}
	return c.Config
}

// =============================================================================
// API Client Factory
// =============================================================================

// sessionStore opens the session of the command line user.
func (c *CLI) sessionStore() (*session.CLIStore, error) {
	return session.NewCLIStore(c.settings().Session.Dir)
}

// credentials returns the token source for API calls: VFCONSOLE_TOKEN when
// set, the stored login session otherwise.
func (c *CLI) credentials() (api.Credentials, error) {
	if tok := c.settings().Token; tok != "" {
		return api.StaticToken(tok), nil
	}
	store, err := c.sessionStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

// newClient creates an API client for the configured backend.
func (c *CLI) newClient() (*api.Client, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	return c.newClientWith(creds), nil
}

func (c *CLI) newClientWith(creds api.Credentials) *api.Client {
	cfg := c.settings()
	opts := []api.Option{
		api.WithTimeout(cfg.Timeout.Duration),
		api.WithHeader("User-Agent", buildinfo.UserAgent(appName)),
	}
	if creds != nil {
		opts = append(opts, api.WithCredentials(creds))
	}
	return api.NewClient(cfg.APIURL, opts...)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f pipeline.Fetcher, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(f, ch, cache.NewScopedKeyer(nil, cacheScope), c.Logger), nil
}

// pipelineOptions returns pipeline options carrying the configured spacing
// and cache TTL.
func (c *CLI) pipelineOptions() pipeline.Options {
	cfg := c.settings()
	return pipeline.Options{
		HorizontalSpacing: cfg.Layout.HorizontalSpacing,
		VerticalSpacing:   cfg.Layout.VerticalSpacing,
		TTL:               cfg.Cache.TTL.Duration,
		Logger:            c.Logger,
	}
}

// openCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching; remote backends that fail are reported.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.settings().CacheConfig()
	ch, err := cache.Open(ctx, cfg)
	if err != nil {
		if cfg.Backend == "" || cfg.Backend == cache.BackendFile {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, fmt.Errorf("open %s cache: %w", cfg.Backend, err)
	}
	return ch, nil
}

// =============================================================================
// Error Helpers
// =============================================================================

// explain turns an API error into a message for the terminal, with a hint
// when the user needs to sign in.
func explain(err error) error {
	if errors.Is(err, session.ErrExpired) {
		return fmt.Errorf("session expired (run '%s auth login')", appName)
	}
	switch vferrors.GetCode(err) {
	case vferrors.ErrCodeUnauthorized, vferrors.ErrCodeSessionExpired:
		return fmt.Errorf("%s (run '%s auth login')", vferrors.UserMessage(err), appName)
	case "":
		return err
	default:
		return fmt.Errorf("%s", vferrors.UserMessage(err))
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{string(pipeline.DefaultFormats[0])}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
