package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/helmdraw/internal/api"
	"github.com/matzehuels/helmdraw/pkg/document"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

// configName is the file looked up in the working directory.
const configName = "helmdraw.toml"

// envPrefix prefixes environment overrides: HELMDRAW_CACHE_REDIS_ADDR sets
// cache.redis_addr.
const envPrefix = "HELMDRAW"

// CacheConfig selects the cache backend. A Redis address takes precedence
// over the on-disk cache.
type CacheConfig struct {
	Dir           string `mapstructure:"dir"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	Prefix        string `mapstructure:"prefix"`
}

// LayoutConfig holds geometry defaults. Zero keeps the built-in value.
type LayoutConfig struct {
	Spacing              float64 `mapstructure:"spacing"`
	BranchOffset         float64 `mapstructure:"branch_offset"`
	StrandGap            float64 `mapstructure:"strand_gap"`
	RowGap               float64 `mapstructure:"row_gap"`
	DockOffset           float64 `mapstructure:"dock_offset"`
	MaxOverlapIterations int     `mapstructure:"max_overlap_iterations"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Style  string  `mapstructure:"style"`
	Scale  float64 `mapstructure:"scale"`
	Engine string  `mapstructure:"engine"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	DocumentTTL     time.Duration `mapstructure:"document_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Config is the merged result of the config file, the environment and the
// built-in defaults.
type Config struct {
	// Monomers names a TOML library merged over the built-in one.
	Monomers string       `mapstructure:"monomers"`
	Cache    CacheConfig  `mapstructure:"cache"`
	Layout   LayoutConfig `mapstructure:"layout"`
	Render   RenderConfig `mapstructure:"render"`
	Serve    ServeConfig  `mapstructure:"serve"`
}

// loadConfig reads path, or the first of ./helmdraw.toml and
// $XDG_CONFIG_HOME/helmdraw/config.toml that exists. A missing default file
// is not an error; a missing explicit one is.
func loadConfig(v *viper.Viper, path string) (Config, error) {
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so that environment-only values reach
	// Unmarshal.
	defaults := map[string]any{
		"monomers":                      "",
		"cache.dir":                     "",
		"cache.redis_addr":              "",
		"cache.redis_password":          "",
		"cache.redis_db":                0,
		"cache.prefix":                  "",
		"layout.spacing":                0.0,
		"layout.branch_offset":          0.0,
		"layout.strand_gap":             0.0,
		"layout.row_gap":                0.0,
		"layout.dock_offset":            0.0,
		"layout.max_overlap_iterations": 0,
		"render.style":                  pipeline.DefaultStyle,
		"render.scale":                  pipeline.DefaultScale,
		"render.engine":                 "",
		"serve.addr":                    api.DefaultAddr,
		"serve.allowed_origins":         []string{},
		"serve.max_body_bytes":          api.DefaultMaxBodyBytes,
		"serve.document_ttl":            document.DefaultTTL,
		"serve.cleanup_interval":        5 * time.Minute,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path == "" {
		path = findConfig()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func findConfig() string {
	candidates := []string{configName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, appName, "config.toml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// apply copies configured defaults into opts where opts has no value yet.
func (c Config) apply(opts *pipeline.Options) {
	setFloat := func(dst *float64, v float64) {
		if *dst == 0 {
			*dst = v
		}
	}
	setFloat(&opts.Spacing, c.Layout.Spacing)
	setFloat(&opts.BranchOffset, c.Layout.BranchOffset)
	setFloat(&opts.StrandGap, c.Layout.StrandGap)
	setFloat(&opts.RowGap, c.Layout.RowGap)
	setFloat(&opts.DockOffset, c.Layout.DockOffset)
	setFloat(&opts.Scale, c.Render.Scale)
	if opts.MaxOverlapIterations == 0 {
		opts.MaxOverlapIterations = c.Layout.MaxOverlapIterations
	}
	if opts.Style == "" {
		opts.Style = c.Render.Style
	}
	if opts.Engine == "" {
		opts.Engine = c.Render.Engine
	}
}
