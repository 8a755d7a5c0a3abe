// Package explain records why nodes became reachable and answers provenance
// queries over the recorded edges.
package explain

import (
	"slices"
	"sync"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/reachable"
)

// Step is one edge of a provenance chain.
type Step struct {
	From   ast.NodeID       `json:"from"`
	To     ast.NodeID       `json:"to"`
	Reason reachable.Reason `json:"-"`
	Why    string           `json:"reason"`
}

type edgeKey struct {
	from, to ast.NodeID
}

// Graph is a reachable.Tracer that keeps the edges it is told about.
// It is safe for concurrent use.
type Graph struct {
	mu      sync.Mutex
	g       *simple.DirectedGraph
	reasons map[edgeKey]reachable.Reason
}

var _ reachable.Tracer = (*Graph)(nil)

// New returns an empty graph containing only the crate root.
func New() *Graph {
	g := &Graph{
		g:       simple.NewDirectedGraph(),
		reasons: make(map[edgeKey]reachable.Reason),
	}
	g.addNode(ast.CrateNodeID)
	return g
}

func (g *Graph) addNode(id ast.NodeID) {
	if g.g.Node(int64(id)) == nil {
		g.g.AddNode(simple.Node(id))
	}
}

// Reach records an edge. Only the first reason for an edge is kept.
func (g *Graph) Reach(from, to ast.NodeID, why reachable.Reason) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := edgeKey{from, to}
	if _, seen := g.reasons[key]; seen {
		return
	}
	g.reasons[key] = why
	g.addNode(from)
	g.addNode(to)
	// gonum simple graphs do not support self-loops
	if from != to {
		g.g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}
}

// Edges returns the number of distinct recorded edges.
func (g *Graph) Edges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reasons)
}

// Why returns the shortest chain of edges from the crate root to id, or nil
// when id was never reached.
func (g *Graph) Why(id ast.NodeID) []Step {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id == ast.CrateNodeID || g.g.Node(int64(id)) == nil {
		return nil
	}
	shortest := path.DijkstraFrom(simple.Node(ast.CrateNodeID), g.g)
	nodes, _ := shortest.To(int64(id))
	if len(nodes) < 2 {
		return nil
	}
	steps := make([]Step, 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		from, to := ast.NodeID(nodes[i-1].ID()), ast.NodeID(nodes[i].ID())
		why := g.reasons[edgeKey{from, to}]
		steps = append(steps, Step{From: from, To: to, Reason: why, Why: why.String()})
	}
	return steps
}

// Cycles returns groups of nodes that reach each other, each sorted by id,
// ordered by their smallest id.
func (g *Graph) Cycles() [][]ast.NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	var groups [][]ast.NodeID
	for _, scc := range topo.TarjanSCC(g.g) {
		if len(scc) < 2 {
			continue
		}
		groups = append(groups, nodeIDs(scc))
	}
	slices.SortFunc(groups, func(a, b []ast.NodeID) int {
		return int(a[0]) - int(b[0])
	})
	return groups
}

func nodeIDs(nodes []graph.Node) []ast.NodeID {
	ids := make([]ast.NodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = ast.NodeID(n.ID())
	}
	slices.Sort(ids)
	return ids
}
