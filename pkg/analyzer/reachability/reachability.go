// Package reachability runs the reachability pass over batches of IR
// documents, with caching and per-document reports.
package reachability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/panbanda/reachable/internal/cache"
	"github.com/panbanda/reachable/internal/fileproc"
	"github.com/panbanda/reachable/pkg/analyzer"
	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/document"
	"github.com/panbanda/reachable/pkg/reachable"
)

// Analyzer computes reachability sets for documents.
type Analyzer struct {
	workers     int
	parallelism int
	cache       *cache.Cache
	logger      *slog.Logger
	maxFileSize int64
	validate    bool
	progress    analyzer.ProgressFunc
}

var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds how many documents are processed at once (0 = 2*NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithParallelism shards each document's traversal over n goroutines.
func WithParallelism(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.parallelism = n
		}
	}
}

// WithCache reuses sets computed for identical document contents.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithLogger sets the logger handed to the pass.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxFileSize rejects documents larger than n bytes (0 = no limit).
func WithMaxFileSize(n int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = n
	}
}

// WithSchemaValidation toggles schema checks on load.
func WithSchemaValidation(enabled bool) Option {
	return func(a *Analyzer) {
		a.validate = enabled
	}
}

// WithProgress reports every finished document to fn.
func WithProgress(fn analyzer.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.progress = fn
	}
}

// New creates an analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parallelism: 1,
		logger:      slog.New(slog.DiscardHandler),
		validate:    true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close is a no-op.
func (a *Analyzer) Close() {}

// Analyze processes files and returns one unit per loadable document.
// Documents that fail to load are reported through a
// *fileproc.ProcessingErrors returned alongside the partial analysis.
// A document whose inputs are inconsistent yields a unit with Error set
// and no entries.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	local := analyzer.NewTracker(a.progress)
	local.SetTotal(len(files))
	shared := analyzer.TrackerFromContext(ctx)
	if shared != nil {
		shared.Add(len(files))
	}

	units, errs := fileproc.ForEachFile(ctx, files, a.workers,
		func(ctx context.Context, path string) (*Unit, error) {
			defer func() {
				local.Tick(path)
				if shared != nil {
					shared.Tick(path)
				}
			}()
			return a.analyzeFile(ctx, path)
		}, nil)

	sort.SliceStable(units, func(i, j int) bool { return units[i].File < units[j].File })
	analysis := &Analysis{Units: units}
	analysis.Summary.Documents = len(files)
	for _, u := range units {
		analysis.Summary.Analyzed++
		if u.Cached {
			analysis.Summary.Cached++
		}
		if u.Failed() {
			analysis.Summary.Inconsistent++
			continue
		}
		analysis.Summary.Reachable += u.Count
	}

	if errs != nil {
		analysis.Summary.Failed = len(errs.Errors)
		return analysis, errs
	}
	return analysis, nil
}

func (a *Analyzer) load(path string) (*document.Unit, string, error) {
	doc, data, err := document.Load(path,
		document.WithSchemaValidation(a.validate),
		document.WithMaxSize(a.maxFileSize))
	if err != nil {
		return nil, "", err
	}
	u, err := document.Build(doc)
	if err != nil {
		return nil, "", fmt.Errorf("build: %w", err)
	}
	return u, document.Hash(data), nil
}

func (a *Analyzer) finder(opts ...reachable.Option) *reachable.Finder {
	opts = append([]reachable.Option{
		reachable.WithLogger(a.logger),
		reachable.WithParallelism(a.parallelism),
	}, opts...)
	return reachable.New(opts...)
}

func describe(m *ast.Map, id ast.NodeID) Entry {
	d := m.Describe(id)
	e := Entry{ID: id, Kind: d.Kind, Name: d.Name}
	if d.Span.IsValid() {
		e.Location = d.Span.String()
	}
	return e
}

// inconsistent reports whether err means the inputs broke a guarantee of an
// earlier pass, as opposed to the run being interrupted.
func inconsistent(err error) bool {
	var rerr *reachable.Error
	return errors.As(err, &rerr) || errors.Is(err, reachable.ErrInvalidInput)
}

func (a *Analyzer) analyzeFile(ctx context.Context, path string) (*Unit, error) {
	du, hash, err := a.load(path)
	if err != nil {
		return nil, err
	}

	unit := &Unit{
		File:  path,
		Name:  du.Name,
		Hash:  hash,
		Nodes: du.Map.Len(),
	}

	set, hit := a.cache.Get(hash)
	if !hit {
		set, err = a.finder().Find(ctx, du.Crate, du.Inputs())
		if err != nil {
			if !inconsistent(err) {
				return nil, err
			}
			unit.Error = err.Error()
			a.logger.Warn("reachability aborted", "file", path, "err", err)
			return unit, nil
		}
		if err := a.cache.Put(hash, set); err != nil {
			a.logger.Warn("cache write failed", "file", path, "err", err)
		}
	}

	unit.Set = set
	unit.Cached = hit
	unit.Count = set.Len()
	unit.Fingerprint = fmt.Sprintf("%016x", set.Fingerprint())
	unit.Entries = make([]Entry, 0, set.Len())
	for _, id := range set.IDs() {
		unit.Entries = append(unit.Entries, describe(du.Map, id))
	}

	a.logger.Debug("document analyzed",
		"file", path,
		"reachable", unit.Count,
		"nodes", unit.Nodes,
		"cached", hit)
	return unit, nil
}
