package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shotlist/internal/imageinfo"
	"shotlist/internal/probecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the image probe cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func withProbeCache(cmd *cobra.Command, ctx *commandContext, fn func(*probecache.Cache) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Probe cache is disabled (set cache.enabled = true)")
	}
	cache, err := probecache.Open(cmd.Context(), cfg.Cache.Path, logger)
	if err != nil {
		return err
	}
	defer cache.Close()
	return fn(cache)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show probe cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProbeCache(cmd, ctx, func(cache *probecache.Cache) error {
				count, err := cache.Count(cmd.Context())
				if err != nil {
					return err
				}
				size := imageinfo.NotAvailable
				if info, err := os.Stat(cache.Path()); err == nil {
					size = imageinfo.FileSize(info.Size())
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Path:    %s\n", cache.Path())
				fmt.Fprintf(out, "Entries: %d\n", count)
				fmt.Fprintf(out, "Size:    %s\n", size)
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop cached probes for files that no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProbeCache(cmd, ctx, func(cache *probecache.Cache) error {
				removed, err := cache.Prune(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale entr(ies)\n", removed)
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProbeCache(cmd, ctx, func(cache *probecache.Cache) error {
				if err := cache.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Probe cache cleared")
				return nil
			})
		},
	}
}
