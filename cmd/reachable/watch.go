package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/reachable/internal/output"
	"github.com/panbanda/reachable/pkg/analyzer/reachability"
	"github.com/panbanda/reachable/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Recompute reachability whenever a document changes",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period before a changed document is analyzed",
			},
			&cli.IntFlag{
				Name:  "parallel",
				Usage: "Shard each traversal over N goroutines (default from config)",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	paths := getPaths(c)

	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(c, cfg)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(paths[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	watcher, err := watch.NewWatcher(absPath, cfg, c.Duration("debounce"))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	store, err := newCache(c, cfg)
	if err != nil {
		return err
	}
	a := reachability.New(append(analyzerOptions(cfg, logger, c.Int("parallel")),
		reachability.WithCache(store))...)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status := output.NewWriterFormatter(os.Stdout, output.FormatText, cfg.Output.Color)
	watcher.SetCallback(func(changed string) {
		analysis, err := a.Analyze(ctx, []string{changed})
		if err != nil {
			status.Error("%v", err)
			return
		}
		for _, u := range analysis.Units {
			if u.Failed() {
				status.Warning("inconsistent document: %s", u.Error)
				continue
			}
			source := "computed"
			if u.Cached {
				source = "cached"
			}
			status.Success("%d of %d nodes reachable (%s, fingerprint %s)", u.Count, u.Nodes, source, u.Fingerprint)
		}
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nStopping watch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
