package cli

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/videofonik/vfconsole/internal/server"
	"github.com/videofonik/vfconsole/pkg/api"
	"github.com/videofonik/vfconsole/pkg/buildinfo"
	"github.com/videofonik/vfconsole/pkg/session"
)

// serveCommand creates the serve command, the local preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		open         bool
		noCache      bool
		requireLogin bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local preview server for project layouts",
		Long: `Run a local HTTP server that serves laid-out projects.

Each project is available as flow-graph JSON, DOT and rendered diagrams, and
node commands can be posted to it:

  GET  /projects/<id>                 HTML preview
  GET  /projects/<id>/layout          flow-graph JSON
  GET  /projects/<id>/render/svg      diagram (also dot, json, pdf, png)
  POST /projects/<id>/commands        node_id, action, question | text, video

Requests without a browser session use your command line login unless
--require-login is set. Browser sessions are kept in the configured session
backend (file or redis).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			if addr == "" {
				addr = cfg.Serve.Addr
			}

			sessions, closeSessions, err := c.serverSessions(ctx)
			if err != nil {
				return err
			}
			defer closeSessions()

			ch, err := c.openCache(ctx, noCache)
			if err != nil {
				return err
			}

			var fallback api.Credentials
			if !requireLogin {
				if fallback, err = c.credentials(); err != nil {
					return err
				}
			}

			srv, err := server.New(server.Config{
				APIURL: cfg.APIURL,
				ClientOptions: []api.Option{
					api.WithTimeout(cfg.Timeout.Duration),
					api.WithHeader("User-Agent", buildinfo.UserAgent(appName)),
				},
				Sessions:       sessions,
				SessionTTL:     sessionTTL,
				Fallback:       fallback,
				Cache:          ch,
				Pipeline:       c.pipelineOptions(),
				AllowedOrigins: cfg.Serve.AllowedOrigins,
				Logger:         c.Logger,
			})
			if err != nil {
				ch.Close()
				return err
			}
			defer srv.Close()

			return srv.ListenAndServe(ctx, addr, func(a net.Addr) {
				base := "http://" + a.String()
				printSuccess("Preview server on %s", StyleLink.Render(base))
				printDetail("Backend: %s", cfg.APIURL)
				printDetail("Press Ctrl+C to stop")
				if open {
					if err := openBrowser(base + "/projects"); err != nil {
						printWarning("Could not open browser: %v", err)
					}
				}
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8090)")
	cmd.Flags().BoolVar(&open, "open", false, "open the project list in a browser")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&requireLogin, "require-login", false, "do not fall back to the command line login")
	return cmd
}

// serverSessions opens the configured browser session store.
func (c *CLI) serverSessions(ctx context.Context) (session.Store, func(), error) {
	cfg := c.settings().Session
	if cfg.Backend == "redis" {
		store, err := session.NewRedisStore(ctx, session.RedisConfig{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	store, err := session.NewFileStore(cfg.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	return store, func() {
		if err := store.Cleanup(context.Background()); err != nil {
			c.Logger.Debug("session cleanup", "err", err)
		}
	}, nil
}

// openBrowser opens rawURL with the platform's default handler.
func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
