package reachability

import (
	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/reachable"
)

// Entry describes one reachable node.
type Entry struct {
	ID       ast.NodeID `json:"id" toon:"id"`
	Kind     string     `json:"kind" toon:"kind"`
	Name     string     `json:"name" toon:"name"`
	Location string     `json:"location,omitempty" toon:"location,omitempty"`
}

// Unit is the result for one document.
type Unit struct {
	File        string  `json:"file" toon:"file"`
	Name        string  `json:"name,omitempty" toon:"name,omitempty"`
	Hash        string  `json:"hash" toon:"hash"`
	Nodes       int     `json:"nodes" toon:"nodes"`
	Count       int     `json:"reachable" toon:"reachable"`
	Fingerprint string  `json:"fingerprint,omitempty" toon:"fingerprint,omitempty"`
	Cached      bool    `json:"cached" toon:"cached"`
	Error       string  `json:"error,omitempty" toon:"error,omitempty"`
	Entries     []Entry `json:"entries,omitempty" toon:"entries,omitempty"`

	// Set is nil when the pass reported an internal inconsistency.
	Set *reachable.Set `json:"-" toon:"-"`
}

// Failed reports whether the pass aborted on this unit.
func (u *Unit) Failed() bool {
	return u.Error != ""
}

// Summary aggregates a batch.
type Summary struct {
	Documents    int `json:"documents" toon:"documents"`
	Analyzed     int `json:"analyzed" toon:"analyzed"`
	Failed       int `json:"failed" toon:"failed"`
	Inconsistent int `json:"inconsistent" toon:"inconsistent"`
	Cached       int `json:"cached" toon:"cached"`
	Reachable    int `json:"reachable" toon:"reachable"`
}

// Analysis is the result of a batch, with units sorted by file.
type Analysis struct {
	Units   []*Unit `json:"units" toon:"units"`
	Summary Summary `json:"summary" toon:"summary"`
}
