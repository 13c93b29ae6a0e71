package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/helmdraw/pkg/cache"
	"github.com/matzehuels/helmdraw/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached layouts and artifacts",
		Long: `Clear all cached layouts and artifacts.

With a Redis cache configured, only keys under the configured prefix are
removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.noCache {
				printInfo("Caching is disabled")
				return nil
			}
			ch, _, err := c.newCache(cmd.Context())
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo("Nothing to clear")
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "clear cache")
			}

			printSuccess("Cleared cache")
			if addr := c.Config.Cache.RedisAddr; addr != "" {
				printDetail("Redis: %s (prefix %q)", addr, c.Config.Cache.Prefix)
			} else if dir, err := c.cacheDir(); err == nil {
				printDetail("Directory: %s", dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "get cache dir")
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
