package reachability

import (
	"context"

	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/document"
	"github.com/panbanda/reachable/pkg/explain"
	"github.com/panbanda/reachable/pkg/reachable"
)

// Trace is a single document analyzed with provenance recording.
type Trace struct {
	Unit  *document.Unit
	Set   *reachable.Set
	Graph *explain.Graph
}

// Trace analyzes one document, recording why every node became reachable.
// The cache is bypassed since a cached set carries no provenance.
func (a *Analyzer) Trace(ctx context.Context, path string) (*Trace, error) {
	du, _, err := a.load(path)
	if err != nil {
		return nil, err
	}
	g := explain.New()
	set, err := a.finder(reachable.WithTracer(g)).Find(ctx, du.Crate, du.Inputs())
	if err != nil {
		return nil, err
	}
	return &Trace{Unit: du, Set: set, Graph: g}, nil
}

// Link is one step of an explanation.
type Link struct {
	From   Entry  `json:"from" toon:"from"`
	To     Entry  `json:"to" toon:"to"`
	Reason string `json:"reason" toon:"reason"`
}

// Explanation says whether a node is reachable and by which chain of edges
// from the crate root.
type Explanation struct {
	File      string `json:"file" toon:"file"`
	Node      Entry  `json:"node" toon:"node"`
	Reachable bool   `json:"reachable" toon:"reachable"`
	Chain     []Link `json:"chain,omitempty" toon:"chain,omitempty"`
}

// Explain builds the explanation for id.
func (t *Trace) Explain(id ast.NodeID) *Explanation {
	ex := &Explanation{
		File:      t.Unit.File,
		Node:      describe(t.Unit.Map, id),
		Reachable: t.Set.Contains(id),
	}
	if !ex.Reachable {
		return ex
	}
	for _, step := range t.Graph.Why(id) {
		ex.Chain = append(ex.Chain, Link{
			From:   describe(t.Unit.Map, step.From),
			To:     describe(t.Unit.Map, step.To),
			Reason: step.Why,
		})
	}
	return ex
}

// Cycles returns the groups of reachable nodes that reach each other.
func (t *Trace) Cycles() [][]Entry {
	var groups [][]Entry
	for _, ids := range t.Graph.Cycles() {
		group := make([]Entry, len(ids))
		for i, id := range ids {
			group[i] = describe(t.Unit.Map, id)
		}
		groups = append(groups, group)
	}
	return groups
}
