package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/helmdraw/internal/api"
	"github.com/matzehuels/helmdraw/pkg/document"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

// isolateConfig keeps tests away from the user's config and cache.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := loadConfig(viper.New(), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Serve.Addr != api.DefaultAddr {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, api.DefaultAddr)
	}
	if cfg.Serve.DocumentTTL != document.DefaultTTL {
		t.Errorf("Serve.DocumentTTL = %v, want %v", cfg.Serve.DocumentTTL, document.DefaultTTL)
	}
	if cfg.Render.Style != pipeline.DefaultStyle || cfg.Render.Scale != pipeline.DefaultScale {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Cache.RedisAddr != "" {
		t.Errorf("Cache.RedisAddr = %q, want empty", cfg.Cache.RedisAddr)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	isolateConfig(t)

	path := filepath.Join(t.TempDir(), "helmdraw.toml")
	data := `monomers = "extra.toml"

[layout]
spacing = 55.0

[render]
style = "outline"

[serve]
addr = ":9000"
document_ttl = "2h"
allowed_origins = ["https://example.org"]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HELMDRAW_CACHE_REDIS_ADDR", "localhost:6379")
	t.Setenv("HELMDRAW_RENDER_STYLE", "simple")

	cfg, err := loadConfig(viper.New(), path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Monomers != "extra.toml" {
		t.Errorf("Monomers = %q", cfg.Monomers)
	}
	if cfg.Layout.Spacing != 55 {
		t.Errorf("Layout.Spacing = %v, want 55", cfg.Layout.Spacing)
	}
	if cfg.Serve.Addr != ":9000" || cfg.Serve.DocumentTTL != 2*time.Hour {
		t.Errorf("Serve = %+v", cfg.Serve)
	}
	if len(cfg.Serve.AllowedOrigins) != 1 || cfg.Serve.AllowedOrigins[0] != "https://example.org" {
		t.Errorf("Serve.AllowedOrigins = %v", cfg.Serve.AllowedOrigins)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache.RedisAddr = %q, want env value", cfg.Cache.RedisAddr)
	}
	if cfg.Render.Style != "simple" {
		t.Errorf("Render.Style = %q, env should win over the file", cfg.Render.Style)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	isolateConfig(t)
	if _, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loadConfig accepted a missing explicit file")
	}
}

func TestConfigApply(t *testing.T) {
	cfg := Config{
		Layout: LayoutConfig{Spacing: 50, MaxOverlapIterations: 20},
		Render: RenderConfig{Style: "outline", Scale: 3, Engine: "dot"},
	}
	opts := pipeline.Options{Spacing: 30, Style: "simple"}
	cfg.apply(&opts)

	if opts.Spacing != 30 {
		t.Errorf("Spacing = %v, flag value should win", opts.Spacing)
	}
	if opts.MaxOverlapIterations != 20 || opts.Scale != 3 || opts.Engine != "dot" {
		t.Errorf("apply left defaults unset: %+v", opts)
	}
	if opts.Style != "simple" {
		t.Errorf("Style = %q, want simple", opts.Style)
	}
}
