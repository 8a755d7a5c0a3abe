package reachable

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/resolve"
)

// shard is one independent seed of the root traversal.
type shard struct {
	export *resolve.Export
	item   *ast.Item
}

func rootShards(crate *ast.Crate, in Inputs) []shard {
	if exports, ok := in.Exports.Exports(ast.CrateNodeID); ok {
		shards := make([]shard, len(exports))
		for i := range exports {
			shards[i] = shard{export: &exports[i]}
		}
		return shards
	}
	shards := make([]shard, 0, len(crate.Module.Items))
	for _, it := range crate.Module.Items {
		shards = append(shards, shard{item: it})
	}
	return shards
}

// findParallel computes the closure of every root seed on its own set and
// unions the results. The closure of a seed does not depend on what other
// seeds marked, so the union equals the sequential result.
func (f *Finder) findParallel(ctx context.Context, crate *ast.Crate, in Inputs) (*Set, error) {
	shards := rootShards(crate, in)
	sets := make([]*Set, len(shards))
	errs := make([]error, len(shards))

	if logEnabled(f.logger, slog.LevelDebug) {
		f.logger.LogAttrs(ctx, slog.LevelDebug, "parallel traversal",
			slog.Int("shards", len(shards)),
			slog.Int("workers", f.parallelism))
	}

	p := pool.New().WithMaxGoroutines(f.parallelism).WithContext(ctx).WithCancelOnError()
	for i, sh := range shards {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := f.newTraversal(crate, in, NewSet())
			var err error
			if sh.export != nil {
				err = t.traverseDefID(ast.CrateNodeID, sh.export.ID, ReasonExport)
			} else {
				err = t.traverseItem(ast.CrateNodeID, sh.item, ReasonImplicitExport)
			}
			sets[i], errs[i] = t.set, err
			return err
		})
	}
	waitErr := p.Wait()

	// Prefer the error of the earliest shard that ran to completion.
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	if waitErr != nil {
		return nil, waitErr
	}

	set := NewSet()
	for _, s := range sets {
		set.Union(s)
	}
	return set, nil
}
