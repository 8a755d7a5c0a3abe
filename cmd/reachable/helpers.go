package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/reachable/internal/cache"
	"github.com/panbanda/reachable/internal/output"
	"github.com/panbanda/reachable/pkg/analyzer/reachability"
	"github.com/panbanda/reachable/pkg/config"
)

// getPaths returns paths from positional args, defaulting to ["."].
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig reads --config when given, otherwise the first config file in
// the working directory, otherwise the defaults. An explicit file that fails
// to load is an error.
func loadConfig(c *cli.Context) (*config.Config, string, error) {
	path := c.String("config")
	if path == "" {
		path = config.Find(".")
	}
	if path == "" {
		return config.DefaultConfig(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// newLogger writes text records to stderr. --verbose forces debug.
func newLogger(c *cli.Context, cfg *config.Config) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if c.Bool("verbose") || cfg.Output.Verbose {
		level = min(level, slog.LevelDebug)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	name := c.String("format")
	if name == "" {
		name = cfg.Output.Format
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, c.String("output"), cfg.Output.Color)
}

func newCache(c *cli.Context, cfg *config.Config) (*cache.Cache, error) {
	enabled := cfg.Cache.Enabled && !c.Bool("no-cache")
	cc, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, enabled)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cc, nil
}

// analyzerOptions maps configuration onto analyzer options. parallelism
// overrides the configured value when positive.
func analyzerOptions(cfg *config.Config, logger *slog.Logger, parallelism int) []reachability.Option {
	if parallelism <= 0 {
		parallelism = cfg.Analysis.Parallelism
	}
	return []reachability.Option{
		reachability.WithParallelism(parallelism),
		reachability.WithLogger(logger),
		reachability.WithMaxFileSize(cfg.Analysis.MaxDocumentSize),
		reachability.WithSchemaValidation(cfg.Analysis.ValidateSchema),
	}
}
