// Package reachable computes the reachability set of a compilation unit: the
// items whose interface or body metadata must be serialized because another
// unit may reference, inline or instantiate them.
//
// An item is reachable when it is exported (explicitly or because its module
// declares no export list), when it is referenced from the body of a generic or
// inline function that is itself reachable, or when it is an impl or a struct
// with a destructor, which are always kept.
package reachable

import (
	"context"
	"log/slog"

	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/resolve"
)

// LevelTrace is a log level below Debug used for per-node marking.
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

// ItemTree maps node ids to the entities they name.
type ItemTree interface {
	Find(id ast.NodeID) (ast.Entry, bool)
}

// ExportTable returns the explicit export list of a module, if any.
type ExportTable interface {
	Exports(mod ast.NodeID) ([]resolve.Export, bool)
}

// Bindings maps path expression and path type ids to definitions.
type Bindings interface {
	Lookup(id ast.NodeID) (resolve.Def, bool)
}

// MethodTable maps field expression ids to method origins.
type MethodTable interface {
	Origin(expr ast.NodeID) (resolve.MethodOrigin, bool)
}

// Inputs are the read-only tables produced by earlier passes.
type Inputs struct {
	Items   ItemTree
	Exports ExportTable
	Defs    Bindings
	Methods MethodTable
}

func (in Inputs) validate() error {
	switch {
	case in.Items == nil:
		return invalidInput("missing item tree")
	case in.Exports == nil:
		return invalidInput("missing export table")
	case in.Defs == nil:
		return invalidInput("missing name bindings")
	case in.Methods == nil:
		return invalidInput("missing method table")
	}
	return nil
}

// Finder computes reachability sets.
type Finder struct {
	logger      *slog.Logger
	parallelism int
	tracer      Tracer
}

// Option is a functional option for configuring Finder.
type Option func(*Finder)

// WithLogger sets the logger. Marking is logged at LevelTrace.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

// WithParallelism shards the traversal of the crate root over n goroutines.
// Values below 2 keep the traversal sequential.
func WithParallelism(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.parallelism = n
		}
	}
}

// WithTracer reports every followed edge to t.
func WithTracer(t Tracer) Option {
	return func(f *Finder) {
		if t != nil {
			f.tracer = t
		}
	}
}

// New creates a Finder.
func New(opts ...Option) *Finder {
	f := &Finder{
		parallelism: 1,
		tracer:      nopTracer{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find computes the reachability set of crate with default options.
func Find(crate *ast.Crate, in Inputs, opts ...Option) (*Set, error) {
	return New(opts...).Find(context.Background(), crate, in)
}

// Find computes the reachability set of crate. On error no set is returned.
func (f *Finder) Find(ctx context.Context, crate *ast.Crate, in Inputs) (*Set, error) {
	if crate == nil || crate.Module == nil {
		return nil, invalidInput("missing crate root")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		set *Set
		err error
	)
	if f.parallelism > 1 {
		set, err = f.findParallel(ctx, crate, in)
	} else {
		t := f.newTraversal(crate, in, NewSet())
		err = t.traverseRoot()
		set = t.set
	}
	if err != nil {
		return nil, err
	}

	t := f.newTraversal(crate, in, set)
	if err := t.retain(); err != nil {
		return nil, err
	}

	if logEnabled(f.logger, slog.LevelDebug) {
		f.logger.LogAttrs(ctx, slog.LevelDebug, "reachability computed",
			slog.String("crate", crate.Name),
			slog.Int("reachable", set.Len()),
			slog.Int("parallelism", f.parallelism))
	}
	return set, nil
}

func (f *Finder) newTraversal(crate *ast.Crate, in Inputs, set *Set) *traversal {
	return &traversal{
		crate:  crate,
		in:     in,
		set:    set,
		tracer: f.tracer,
		logger: f.logger,
		trace:  logEnabled(f.logger, LevelTrace),
	}
}

// logEnabled returns true if logging is enabled at the given level.
func logEnabled(logger *slog.Logger, level slog.Level) bool {
	return logger != nil && logger.Enabled(context.Background(), level)
}
