// Package config loads the vfconsole configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/vfconsole/config.toml
// (~/.config/vfconsole/config.toml by default). Every setting is optional:
//
//	api_url = "https://api.videofonik.com"
//	timeout = "60s"
//
//	[layout]
//	horizontal_spacing = 400
//	vertical_spacing = 250
//
//	[cache]
//	backend = "file"          # file, redis, mongo or none
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[session]
//	backend = "file"          # file or redis
//
//	[serve]
//	addr = "127.0.0.1:8090"
//
// Environment variables override the file: VFCONSOLE_API_URL,
// VFCONSOLE_TOKEN and VFCONSOLE_CONFIG (an alternative file path).
// Command line flags override both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/videofonik/vfconsole/pkg/api"
	"github.com/videofonik/vfconsole/pkg/cache"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/layout"
)

// Environment variables read by Load.
const (
	EnvAPIURL = "VFCONSOLE_API_URL"
	EnvToken  = "VFCONSOLE_TOKEN"
	EnvConfig = "VFCONSOLE_CONFIG"
)

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Layout holds the layout spacing.
type Layout struct {
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
}

// Cache selects the render artifact cache.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// Session selects where login sessions are kept.
type Session struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// Serve configures the preview server.
type Serve struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"` // CORS origins, e.g. a local widget dev server
}

// Config is the complete console configuration.
type Config struct {
	APIURL  string   `toml:"api_url"`
	Timeout Duration `toml:"timeout"`
	Layout  Layout   `toml:"layout"`
	Cache   Cache    `toml:"cache"`
	Session Session  `toml:"session"`
	Serve   Serve    `toml:"serve"`

	// Token comes from VFCONSOLE_TOKEN only; it is never read from the file.
	Token string `toml:"-"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`

	// Unknown lists keys present in the file that no setting consumes.
	Unknown []string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:  api.DefaultBaseURL,
		Timeout: Duration{60 * time.Second},
		Layout: Layout{
			HorizontalSpacing: layout.HorizontalSpacing,
			VerticalSpacing:   layout.VerticalSpacing,
		},
		Cache: Cache{
			Backend: cache.BackendFile,
			TTL:     Duration{24 * time.Hour},
		},
		Session: Session{Backend: "file"},
		Serve:   Serve{Addr: "127.0.0.1:8090", AllowedOrigins: []string{"http://localhost:*"}},
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(base, "vfconsole", "config.toml"), nil
}

// Load reads the configuration. path takes precedence over VFCONSOLE_CONFIG,
// which takes precedence over DefaultPath. A missing file at the default
// location is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfig); env != "" {
			path, explicit = env, true
		}
	}
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	path = expandHome(path)

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		cfg.Path = path
		for _, key := range md.Undecoded() {
			cfg.Unknown = append(cfg.Unknown, key.String())
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config file %s not found", path)
	default:
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.Token = v
	}
}

// Validate checks the configuration for values the console cannot use.
func (c *Config) Validate() error {
	if err := vferrors.ValidateURL(c.APIURL); err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Layout.HorizontalSpacing < 0 || c.Layout.VerticalSpacing < 0 {
		return fmt.Errorf("layout spacing must not be negative")
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	case cache.BackendMongo:
		if c.Cache.MongoURI == "" {
			return fmt.Errorf("cache.mongo_uri is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Session.Backend {
	case "", "file":
	case "redis":
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("session.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	return nil
}

// CacheConfig returns the cache backend settings.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     expandHome(c.Cache.Dir),
		Redis:   cache.RedisConfig{Addr: c.Cache.RedisAddr, Password: c.Cache.RedisPassword},
		Mongo:   cache.MongoConfig{URI: c.Cache.MongoURI, Database: c.Cache.MongoDatabase},
	}
}

// LayoutOptions returns the layout options for the configured spacing.
func (c *Config) LayoutOptions() []layout.Option {
	return []layout.Option{layout.WithSpacing(c.Layout.HorizontalSpacing, c.Layout.VerticalSpacing)}
}

// Write stores the configuration as TOML at path, creating parent
// directories.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
