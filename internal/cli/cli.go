// Package cli implements the helmdraw command-line interface.
//
// Commands read notation from an argument, a file or stdin ("-"), run it
// through the pipeline and write the results to files or stdout. Settings
// come from helmdraw.toml and HELMDRAW_* environment variables; flags
// override both.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/helmdraw/pkg/buildinfo"
	"github.com/matzehuels/helmdraw/pkg/cache"
	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "helmdraw"

const monomerLibraryTTL = 24 * time.Hour

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath   string
	monomersPath string
	noCache      bool
	db           monomer.Database
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
		Use:          appName,
		Short:        "Helmdraw edits and draws HELM-style biopolymer notation",
		Long:         `Helmdraw parses HELM-style notation for peptides, nucleic acids and chemical modifiers into a monomer graph, edits it while keeping the notation canonical, and lays it out as a 2D schematic.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./helmdraw.toml)")
	root.PersistentFlags().StringVar(&c.monomersPath, "monomers", "", "TOML monomer library (file or URL) merged over the built-in one")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.canonicalCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.replaceCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// init loads the configuration and the monomer library.
func (c *CLI) init(ctx context.Context) error {
	cfg, err := loadConfig(viper.New(), c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.monomersPath != "" {
		c.Config.Monomers = c.monomersPath
	}

	db := monomer.Default()
	if src := c.Config.Monomers; src != "" {
		extra, err := c.loadMonomers(ctx, src)
		if err != nil {
			return err
		}
		db = db.Merge(extra)
		c.Logger.Debug("loaded monomer library", "source", src, "monomers", extra.Len())
	}
	c.db = db
	return nil
}

// loadMonomers reads a library from a file or URL. Downloaded libraries
// are kept in the cache for a day.
func (c *CLI) loadMonomers(ctx context.Context, src string) (*monomer.Library, error) {
	if !monomer.IsURL(src) {
		return monomer.LoadFile(src)
	}

	ch, _, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	key := "monomers:" + cache.Hash([]byte(src))
	if data, hit, err := ch.Get(ctx, key); err == nil && hit {
		if lib, err := monomer.Load(bytes.NewReader(data)); err == nil {
			return lib, nil
		}
	}

	data, err := monomer.Fetch(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	if err := ch.Set(ctx, key, data, monomerLibraryTTL); err != nil {
		c.Logger.Warn("cache write failed", "err", err)
	}
	return monomer.Load(bytes.NewReader(data))
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

// monomers returns the loaded library, or the built-in one when init has
// not run.
func (c *CLI) monomers() monomer.Database {
	if c.db == nil {
		return monomer.Default()
	}
	return c.db
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, keyer, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, keyer, c.monomers(), c.Logger), nil
}

// newCache opens the configured cache: Redis when an address is set, the
// on-disk cache otherwise. An unusable cache directory disables caching
// instead of failing the command.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	keyer := cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	if c.noCache {
		return cache.NewNullCache(), keyer, nil
	}
	if addr := c.Config.Cache.RedisAddr; addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     addr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
			Prefix:   c.Config.Cache.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("using redis cache", "addr", addr)
		return rc, keyer, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache(), keyer, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache(), keyer, nil
	}
	return fc, keyer, nil
}

// cacheDir returns the configured cache directory, or the user cache
// directory (~/.cache/helmdraw on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.Dir()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{diagram.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
