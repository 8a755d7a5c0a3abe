package reachability

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/reachable/internal/cache"
	"github.com/panbanda/reachable/internal/fileproc"
	"github.com/panbanda/reachable/internal/testutil"
	"github.com/panbanda/reachable/pkg/analyzer"
	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/reachable"
)

var (
	demoDoc    = filepath.Join("..", "..", "document", "testdata", "demo.ir.yaml")
	smallDoc   = filepath.Join("..", "..", "document", "testdata", "small.ir.json")
	unboundDoc = filepath.Join("..", "..", "document", "testdata", "unbound.ir.yaml")
)

func entryIDs(u *Unit) []ast.NodeID {
	ids := make([]ast.NodeID, len(u.Entries))
	for i, e := range u.Entries {
		ids[i] = e.ID
	}
	return ids
}

func TestAnalyze_Units(t *testing.T) {
	a := New()
	defer a.Close()

	analysis, err := a.Analyze(context.Background(), []string{smallDoc, demoDoc})
	require.NoError(t, err)
	require.Len(t, analysis.Units, 2)

	demo, small := analysis.Units[0], analysis.Units[1]
	assert.Equal(t, demoDoc, demo.File)
	assert.Equal(t, "demo", demo.Name)
	assert.Equal(t, []ast.NodeID{1, 4, 11, 13, 14, 15, 16, 17, 18, 19}, entryIDs(demo))
	assert.Equal(t, 10, demo.Count)
	assert.Len(t, demo.Fingerprint, 16)
	assert.False(t, demo.Cached)
	assert.NotEmpty(t, demo.Hash)

	main := demo.Entries[0]
	assert.Equal(t, "fn", main.Kind)
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, demoDoc+":1:1", main.Location)

	assert.Equal(t, []ast.NodeID{1, 3, 4}, entryIDs(small))

	assert.Equal(t, Summary{Documents: 2, Analyzed: 2, Reachable: 13}, analysis.Summary)
}

func TestAnalyze_InconsistentDocument(t *testing.T) {
	analysis, err := New().Analyze(context.Background(), []string{unboundDoc, smallDoc})
	require.NoError(t, err)
	require.Len(t, analysis.Units, 2)

	var broken *Unit
	for _, u := range analysis.Units {
		if u.File == unboundDoc {
			broken = u
		}
	}
	require.NotNil(t, broken)
	assert.True(t, broken.Failed())
	assert.Contains(t, broken.Error, "unbound node id 2")
	assert.Nil(t, broken.Set)
	assert.Empty(t, broken.Entries)
	assert.Zero(t, broken.Count)

	assert.Equal(t, 1, analysis.Summary.Inconsistent)
	assert.Equal(t, 3, analysis.Summary.Reachable)
}

func TestAnalyze_LoadFailures(t *testing.T) {
	dir := t.TempDir()
	bad := testutil.WriteFile(t, dir, "bad.ir.yaml", "items:\n  - {id: 1, kind: widget}\n")
	missing := filepath.Join(dir, "missing.ir.yaml")

	analysis, err := New().Analyze(context.Background(), []string{bad, smallDoc, missing})
	require.Error(t, err)

	var perrs *fileproc.ProcessingErrors
	require.True(t, errors.As(err, &perrs))
	require.Len(t, perrs.Errors, 2)
	assert.Equal(t, bad, perrs.Errors[0].Path)
	assert.Equal(t, missing, perrs.Errors[1].Path)

	require.Len(t, analysis.Units, 1)
	assert.Equal(t, smallDoc, analysis.Units[0].File)
	assert.Equal(t, 3, analysis.Summary.Documents)
	assert.Equal(t, 2, analysis.Summary.Failed)
}

func TestAnalyze_SchemaValidationToggle(t *testing.T) {
	dir := t.TempDir()
	// extra top-level keys are rejected by the schema only
	doc := testutil.WriteFile(t, dir, "extra.ir.yaml", "name: x\nowner: someone\nitems:\n  - {id: 1, kind: fn, name: f}\n")

	_, err := New().Analyze(context.Background(), []string{doc})
	require.Error(t, err)

	analysis, err := New(WithSchemaValidation(false)).Analyze(context.Background(), []string{doc})
	require.NoError(t, err)
	assert.Equal(t, []ast.NodeID{1}, entryIDs(analysis.Units[0]))
}

func TestAnalyze_MaxFileSize(t *testing.T) {
	_, err := New(WithMaxFileSize(8)).Analyze(context.Background(), []string{demoDoc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit is 8")
}

func TestAnalyze_Cache(t *testing.T) {
	c, err := cache.New(t.TempDir(), 0, true)
	require.NoError(t, err)
	a := New(WithCache(c))

	first, err := a.Analyze(context.Background(), []string{demoDoc})
	require.NoError(t, err)
	require.False(t, first.Units[0].Cached)

	second, err := a.Analyze(context.Background(), []string{demoDoc})
	require.NoError(t, err)
	u := second.Units[0]
	assert.True(t, u.Cached)
	assert.Equal(t, first.Units[0].Fingerprint, u.Fingerprint)
	assert.Equal(t, first.Units[0].Entries, u.Entries)
	assert.Equal(t, 1, second.Summary.Cached)
}

func TestAnalyze_InconsistentResultsAreNotCached(t *testing.T) {
	c, err := cache.New(t.TempDir(), 0, true)
	require.NoError(t, err)
	a := New(WithCache(c))

	for range 2 {
		analysis, err := a.Analyze(context.Background(), []string{unboundDoc})
		require.NoError(t, err)
		assert.False(t, analysis.Units[0].Cached)
		assert.True(t, analysis.Units[0].Failed())
	}
}

func TestAnalyze_ParallelMatchesSequential(t *testing.T) {
	seq, err := New().Analyze(context.Background(), []string{demoDoc})
	require.NoError(t, err)
	par, err := New(WithParallelism(4), WithWorkers(2)).Analyze(context.Background(), []string{demoDoc})
	require.NoError(t, err)

	assert.Equal(t, seq.Units[0].Fingerprint, par.Units[0].Fingerprint)
	assert.True(t, seq.Units[0].Set.Equal(par.Units[0].Set))
}

func TestAnalyze_Progress(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	a := New(WithProgress(func(done, total int, path string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		paths = append(paths, path)
	}))

	shared := analyzer.NewTracker(nil)
	ctx := analyzer.WithTracker(context.Background(), shared)
	_, err := a.Analyze(ctx, []string{demoDoc, smallDoc, unboundDoc})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{demoDoc, smallDoc, unboundDoc}, paths)
	assert.Equal(t, 3, shared.Current())
	assert.Equal(t, 3, shared.Total())
}

func TestAnalyze_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analysis, err := New().Analyze(ctx, []string{demoDoc, smallDoc})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, analysis.Units)
}

func TestTrace(t *testing.T) {
	tr, err := New().Trace(context.Background(), demoDoc)
	require.NoError(t, err)
	assert.Equal(t, 10, tr.Set.Len())

	chain := tr.Graph.Why(11)
	require.NotEmpty(t, chain)
	assert.Equal(t, ast.CrateNodeID, chain[0].From)
	assert.Equal(t, ast.NodeID(11), chain[len(chain)-1].To)

	assert.Nil(t, tr.Graph.Why(24), "private::helper is never reached")
}

func TestTrace_Inconsistent(t *testing.T) {
	_, err := New().Trace(context.Background(), unboundDoc)
	assert.ErrorIs(t, err, reachable.ErrUnboundPath)
}

func TestTrace_Explain(t *testing.T) {
	tr, err := New().Trace(context.Background(), demoDoc)
	require.NoError(t, err)

	ex := tr.Explain(11)
	assert.True(t, ex.Reachable)
	assert.Equal(t, "apply", ex.Node.Name)
	require.NotEmpty(t, ex.Chain)
	assert.Equal(t, "crate", ex.Chain[0].From.Kind)
	assert.Equal(t, ast.NodeID(11), ex.Chain[len(ex.Chain)-1].To.ID)
	for _, link := range ex.Chain {
		assert.NotEmpty(t, link.Reason)
	}

	hidden := tr.Explain(24)
	assert.False(t, hidden.Reachable)
	assert.Equal(t, "helper", hidden.Node.Name)
	assert.Empty(t, hidden.Chain)
}

func TestTrace_Cycles(t *testing.T) {
	doc := testutil.WriteFile(t, t.TempDir(), "rec.ir.yaml", `name: rec
items:
  - id: 1
    kind: fn
    name: even
    generics: [T]
    body: {expr: {id: 2, kind: path, path: odd}}
  - id: 3
    kind: fn
    name: odd
    generics: [T]
    body: {expr: {id: 4, kind: path, path: even}}
defs:
  "2": {kind: fn, node: 3}
  "4": {kind: fn, node: 1}
`)
	tr, err := New().Trace(context.Background(), doc)
	require.NoError(t, err)

	cycles := tr.Cycles()
	require.Len(t, cycles, 1)
	require.Len(t, cycles[0], 2)
	assert.Equal(t, "even", cycles[0][0].Name)
	assert.Equal(t, "odd", cycles[0][1].Name)

	none, err := New().Trace(context.Background(), smallDoc)
	require.NoError(t, err)
	assert.Empty(t, none.Cycles())
}
