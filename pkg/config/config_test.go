package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/videofonik/vfconsole/pkg/cache"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvToken, "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Default()
	if cfg.APIURL != want.APIURL || cfg.Timeout != want.Timeout || cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty when no file exists", cfg.Path)
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
api_url = "http://localhost:8000"
timeout = "5s"
colour = "blue"

[layout]
horizontal_spacing = 300

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "1h"

[serve]
addr = ":9000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" || cfg.Timeout.Duration != 5*time.Second {
		t.Errorf("api settings = %q %v", cfg.APIURL, cfg.Timeout)
	}
	if cfg.Layout.HorizontalSpacing != 300 || cfg.Layout.VerticalSpacing != 250 {
		t.Errorf("layout = %+v, want partial override", cfg.Layout)
	}
	if cfg.Cache.TTL.Duration != time.Hour || cfg.Serve.Addr != ":9000" {
		t.Errorf("cache/serve = %+v %+v", cfg.Cache, cfg.Serve)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if len(cfg.Unknown) != 1 || cfg.Unknown[0] != "colour" {
		t.Errorf("Unknown = %v, want [colour]", cfg.Unknown)
	}

	cc := cfg.CacheConfig()
	if cc.Backend != cache.BackendRedis || cc.Redis.Addr != "localhost:6379" {
		t.Errorf("CacheConfig() = %+v", cc)
	}
	if len(cfg.LayoutOptions()) != 1 {
		t.Error("LayoutOptions() should return the spacing option")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `api_url = "http://file.example.com"`)
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvAPIURL, "http://env.example.com")
	t.Setenv(EnvToken, "tok")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("VFCONSOLE_CONFIG not honoured: Path = %q", cfg.Path)
	}
	if cfg.APIURL != "http://env.example.com" {
		t.Errorf("APIURL = %q, env should win over file", cfg.APIURL)
	}
	if cfg.Token != "tok" {
		t.Errorf("Token = %q", cfg.Token)
	}
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", `api_url = `, "parse config"},
		{"bad duration", `timeout = "soon"`, "parse config"},
		{"bad url", `api_url = "ftp://x"`, "api_url"},
		{"unknown cache", "[cache]\nbackend = \"memcached\"", "unknown cache backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"", "redis_addr"},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"", "mongo_uri"},
		{"unknown session", "[session]\nbackend = \"sql\"", "unknown session backend"},
		{"negative spacing", "[layout]\nvertical_spacing = -1", "spacing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("explicit missing file should fail")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.APIURL = "http://localhost:8000"
	cfg.Token = "secret"
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "secret") {
		t.Error("token must not be written to the config file")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.APIURL != cfg.APIURL || got.Timeout != cfg.Timeout || got.Cache.TTL != cfg.Cache.TTL {
		t.Errorf("round trip = %+v", got)
	}
}
