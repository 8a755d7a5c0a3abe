package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/reachable/pkg/document"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the reachability set cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show entry count, size and age",
				Action: runCacheStats,
			},
			{
				Name:      "clear",
				Usage:     "Remove cached sets, for the given documents or all of them",
				ArgsUsage: "[document...]",
				Action:    runCacheClear,
			},
		},
	}
}

func runCacheStats(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := newCache(c, cfg)
	if err != nil {
		return err
	}
	if !store.Enabled() {
		color.Yellow("Cache is disabled")
		return nil
	}
	stats, err := store.GetStats()
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Directory: %s\n", cfg.Cache.Dir)
	fmt.Fprintf(w, "Entries:   %d\n", stats.Entries)
	fmt.Fprintf(w, "Size:      %d bytes\n", stats.TotalSize)
	if stats.Entries > 0 {
		fmt.Fprintf(w, "Oldest:    %s\n", stats.OldestAge.Round(time.Second))
		fmt.Fprintf(w, "Newest:    %s\n", stats.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClear(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := newCache(c, cfg)
	if err != nil {
		return err
	}

	if c.Args().Len() == 0 {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		color.Green("Cache cleared")
		return nil
	}

	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := store.Invalidate(document.Hash(data)); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	color.Green("Removed %d cached sets", c.Args().Len())
	return nil
}
