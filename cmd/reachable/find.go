package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/reachable/internal/fileproc"
	"github.com/panbanda/reachable/internal/output"
	"github.com/panbanda/reachable/internal/progress"
	"github.com/panbanda/reachable/internal/scanner"
	"github.com/panbanda/reachable/pkg/analyzer/reachability"
)

func findCmd() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Compute the reachability set of IR documents",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "parallel",
				Usage: "Shard each traversal over N goroutines (default from config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Documents processed at once (default 2*NumCPU)",
			},
			&cli.BoolFlag{
				Name:  "ids-only",
				Usage: "Print bare node ids, one per line",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Do not draw a progress bar",
			},
		},
		Action: runFindCmd,
	}
}

func runFindCmd(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(c, cfg)
	if err != nil {
		return err
	}

	files, err := scanner.NewScanner(cfg).ScanPaths(getPaths(c))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No documents found")
		return nil
	}

	store, err := newCache(c, cfg)
	if err != nil {
		return err
	}
	opts := append(analyzerOptions(cfg, logger, c.Int("parallel")),
		reachability.WithCache(store),
		reachability.WithWorkers(c.Int("workers")))

	var tracker *progress.Tracker
	if len(files) > 1 && !c.Bool("no-progress") {
		tracker = progress.NewTracker("Finding reachable items", len(files))
		opts = append(opts, reachability.WithProgress(func(int, int, string) { tracker.Tick() }))
	}

	a := reachability.New(opts...)
	defer a.Close()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	analysis, analyzeErr := a.Analyze(ctx, files)
	var perrs *fileproc.ProcessingErrors
	if analyzeErr != nil && !errors.As(analyzeErr, &perrs) {
		if tracker != nil {
			tracker.FinishError(analyzeErr)
		}
		return analyzeErr
	}
	if tracker != nil {
		tracker.FinishSuccess()
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if c.Bool("ids-only") {
		writeIDs(formatter, analysis)
	} else if err := formatter.Output(findReport(analysis)); err != nil {
		return err
	}

	return batchError(analysis, perrs)
}

func writeIDs(f *output.Formatter, analysis *reachability.Analysis) {
	w := f.Writer()
	for _, u := range analysis.Units {
		if len(analysis.Units) > 1 {
			fmt.Fprintf(w, "# %s\n", u.File)
		}
		if u.Set == nil {
			continue
		}
		for _, id := range u.Set.IDs() {
			fmt.Fprintln(w, id)
		}
	}
}

func findReport(analysis *reachability.Analysis) *output.Report {
	report := &output.Report{Title: "Reachable items", Data: analysis}
	for _, u := range analysis.Units {
		title := u.File
		if u.Name != "" {
			title = u.Name + " (" + u.File + ")"
		}
		if u.Failed() {
			report.Sections = append(report.Sections, &output.Section{Title: title, Content: u.Error})
			continue
		}

		rows := make([][]string, 0, len(u.Entries))
		for _, e := range u.Entries {
			rows = append(rows, []string{strconv.FormatUint(uint64(e.ID), 10), e.Kind, e.Name, e.Location})
		}
		footer := []string{"", "", fmt.Sprintf("%d of %d nodes", u.Count, u.Nodes), "fingerprint " + u.Fingerprint}
		report.Sections = append(report.Sections,
			output.NewTable(title, []string{"ID", "Kind", "Name", "Location"}, rows, footer, u))
	}

	s := analysis.Summary
	lines := []string{
		fmt.Sprintf("Documents:    %d", s.Documents),
		fmt.Sprintf("Analyzed:     %d (%d from cache)", s.Analyzed, s.Cached),
		fmt.Sprintf("Reachable:    %d", s.Reachable),
	}
	if s.Failed > 0 || s.Inconsistent > 0 {
		lines = append(lines, fmt.Sprintf("Failed:       %d to load, %d inconsistent", s.Failed, s.Inconsistent))
	}
	report.Sections = append(report.Sections, &output.Section{Title: "Summary", Content: strings.Join(lines, "\n")})
	return report
}

// batchError turns load failures and aborted units into the command's
// error so the exit status reflects them.
func batchError(analysis *reachability.Analysis, perrs *fileproc.ProcessingErrors) error {
	var errs []error
	if perrs != nil {
		errs = append(errs, perrs)
	}
	for _, u := range analysis.Units {
		if u.Failed() {
			errs = append(errs, errors.New(u.Error))
		}
	}
	return errors.Join(errs...)
}
